package entry

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTimestampIsUTCSecondPrecision(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	at := time.Date(2025, 3, 9, 17, 30, 45, 987654321, loc)
	assert.Equal(t, "2025-03-09T12:30:45Z", Timestamp(at))
}

func TestLineSubstitutesPlaceholder(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	g := NewGeneratorWithSource([]string{"X {ts}"}, "", rand.New(rand.NewSource(1)), fixedClock(at))

	assert.Equal(t, "- X 2025-01-02T03:04:05Z\n", g.Line())
}

func TestLineUsesCustomPrefix(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	g := NewGeneratorWithSource([]string{"X {ts}"}, "AUTO", rand.New(rand.NewSource(1)), fixedClock(at))

	assert.Equal(t, "AUTO X 2025-01-02T03:04:05Z\n", g.Line())
}

func TestLineEndsWithExactlyOneNewline(t *testing.T) {
	templates := []string{
		"no newline",
		"one newline\n",
		"many newlines\n\n\n",
	}
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	for _, templ := range templates {
		g := NewGeneratorWithSource([]string{templ}, "", rand.New(rand.NewSource(1)), fixedClock(at))
		line := g.Line()
		assert.True(t, strings.HasSuffix(line, "\n"), "entry must end with a newline")
		assert.False(t, strings.HasSuffix(line, "\n\n"), "entry must not end with multiple newlines")
	}
}

func TestLinePicksFromPool(t *testing.T) {
	pool := []string{"alpha", "beta", "gamma"}
	g := NewGeneratorWithSource(pool, "", rand.New(rand.NewSource(42)), time.Now)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		line := strings.TrimSpace(strings.TrimPrefix(g.Line(), "- "))
		seen[line] = true
	}
	for _, templ := range pool {
		assert.True(t, seen[templ], "template %q never selected in 100 draws", templ)
	}
}

func TestNewGeneratorFallsBackToDefaultPool(t *testing.T) {
	g := NewGenerator(nil, "")
	assert.Equal(t, len(DefaultPool()), g.PoolSize())
}

func TestDefaultPoolIsACopy(t *testing.T) {
	pool := DefaultPool()
	pool[0] = "mutated"
	assert.NotEqual(t, "mutated", DefaultPool()[0])
}

func TestLoadPool(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "templates.txt")
	content := "first {ts}\n\n  second  \n\t\nthird\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	pool, err := LoadPool(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"first {ts}", "second", "third"}, pool)
}

func TestLoadPoolEmptyFileIsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n \n\t\n"), 0o644))

	_, err := LoadPool(path)
	assert.Error(t, err)
}

func TestLoadPoolMissingFileIsError(t *testing.T) {
	_, err := LoadPool(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
