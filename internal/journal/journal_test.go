package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureCreatesFileWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes", "TODO.md")
	j := New(path)

	require.NoError(t, j.Ensure())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Header, string(data))
}

func TestEnsureLeavesExistingFileUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "TODO.md")
	existing := "# my own notes\n- something\n"
	require.NoError(t, os.WriteFile(path, []byte(existing), 0o644))

	require.NoError(t, New(path).Ensure())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, existing, string(data))
}

func TestAppendPreservesOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "TODO.md")
	j := New(path)
	require.NoError(t, j.Ensure())

	const n = 5
	for i := 0; i < n; i++ {
		require.NoError(t, j.Append(fmt.Sprintf("- entry %d\n", i)))
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	require.True(t, strings.HasPrefix(content, Header))
	lines := strings.Split(strings.TrimSuffix(strings.TrimPrefix(content, Header), "\n"), "\n")
	require.Len(t, lines, n)
	for i, line := range lines {
		assert.Equal(t, fmt.Sprintf("- entry %d", i), line)
	}
}

func TestAppendNeverRewrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "TODO.md")
	j := New(path)
	require.NoError(t, j.Ensure())
	require.NoError(t, j.Append("- first\n"))

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, j.Append("- second\n"))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(after), string(before)))
}
