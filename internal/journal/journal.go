// Package journal owns the target file the loop appends entries to. The file
// is created once with a fixed human-readable header and only ever grows;
// nothing here truncates or rewrites existing content.
package journal

import (
	"os"
	"path/filepath"

	"github.com/gitdrip/gitdrip/internal/errors"
)

// Header is written once when the target file is first created, so downstream
// diffs and history start clean.
const Header = "# Micro updates\n\nThis file collects tiny, useful notes and TODOs created automatically.\n\n"

// Journal is an append-only text file at a fixed path.
type Journal struct {
	path string
}

// New creates a Journal for the given absolute path.
func New(path string) *Journal {
	return &Journal{path: path}
}

// Path returns the journal's file path.
func (j *Journal) Path() string {
	return j.path
}

// Ensure creates the parent directory and, if the file does not exist yet,
// the file itself with the fixed header block. An existing file is left
// untouched.
func (j *Journal) Ensure() error {
	if dir := filepath.Dir(j.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create directory for %s", j.path)
		}
	}

	_, err := os.Stat(j.path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to stat %s", j.path)
	}

	if err := os.WriteFile(j.path, []byte(Header), 0o644); err != nil {
		return errors.Wrapf(err, "failed to create %s", j.path)
	}
	return nil
}

// Append writes entry verbatim to the end of the file.
func (j *Journal) Append(entry string) error {
	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s for append", j.path)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(entry); err != nil {
		return errors.Wrapf(err, "failed to append to %s", j.path)
	}
	return nil
}
