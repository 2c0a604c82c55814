package entry

import (
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/gitdrip/gitdrip/internal/errors"
)

// TimestampLayout renders UTC timestamps at second precision with a Z suffix.
// The same format is used inside generated entries and in commit messages.
const TimestampLayout = "2006-01-02T15:04:05Z"

// Placeholder is substituted with the current timestamp in templates.
const Placeholder = "{ts}"

// defaultBullet prefixes entries when no custom prefix is configured.
const defaultBullet = "-"

// defaultTemplates is the built-in template pool used when no custom source is
// supplied or the custom source yields nothing usable.
var defaultTemplates = []string{
	"TODO: Add a short example for the API (created {ts}).",
	"NOTE: Quick optimization idea documented — revisit later ({ts}).",
	"DOC: Minor README tweak suggested ({ts}).",
	"TASK: Write unit test for recently added util function ({ts}).",
	"LOG: Small refactor done locally; details in code comments ({ts}).",
	"CHORE: Update dependency checklist in docs ({ts}).",
	"IDEA: Possible feature — add bulk import endpoint ({ts}).",
}

// DefaultPool returns a copy of the built-in template pool.
func DefaultPool() []string {
	pool := make([]string, len(defaultTemplates))
	copy(pool, defaultTemplates)
	return pool
}

// LoadPool reads newline-separated templates from path. Blank lines and
// surrounding whitespace are dropped. A readable file that yields zero usable
// templates is an error, so callers can fall back to the default pool.
func LoadPool(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read templates from %s", path)
	}

	var pool []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			pool = append(pool, line)
		}
	}

	if len(pool) == 0 {
		return nil, errors.New("template file contains no usable templates")
	}
	return pool, nil
}

// Timestamp formats t in the shared UTC second-precision layout.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Generator produces one entry line per cycle from a template pool. The
// random source and clock are injectable so tests can pin template choice
// and timestamps.
type Generator struct {
	pool   []string
	prefix string
	rng    *rand.Rand
	now    func() time.Time
}

// NewGenerator creates a Generator over pool. prefix replaces the default
// list-bullet marker when non-empty.
func NewGenerator(pool []string, prefix string) *Generator {
	return NewGeneratorWithSource(pool, prefix, rand.New(rand.NewSource(time.Now().UnixNano())), time.Now)
}

// NewGeneratorWithSource creates a Generator with an explicit random source
// and clock.
func NewGeneratorWithSource(pool []string, prefix string, rng *rand.Rand, now func() time.Time) *Generator {
	if len(pool) == 0 {
		pool = DefaultPool()
	}
	if prefix == "" {
		prefix = defaultBullet
	}
	return &Generator{
		pool:   pool,
		prefix: prefix,
		rng:    rng,
		now:    now,
	}
}

// PoolSize returns the number of templates in the pool.
func (g *Generator) PoolSize() int {
	return len(g.pool)
}

// Line generates one entry: a uniformly chosen template with the timestamp
// placeholder substituted, prefixed, and terminated with exactly one newline
// regardless of how the template ended.
func (g *Generator) Line() string {
	templ := g.pool[g.rng.Intn(len(g.pool))]
	line := strings.ReplaceAll(templ, Placeholder, Timestamp(g.now()))
	line = g.prefix + " " + line
	return strings.TrimRight(line, "\n") + "\n"
}
