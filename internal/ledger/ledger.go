// Package ledger persists the identifiers of events that were already
// alerted, so repeated invocations never notify the same occasion twice.
//
// Access discipline: load once at start, mutate in memory, write once at the
// end. This is only safe when invocations do not overlap.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	logx "econalert/pkg/logx"
)

// ErrCorrupt means the ledger file exists but does not hold a JSON array of strings.
var ErrCorrupt = errors.New("ledger corrupt")

// Ledger is the in-memory identifier set of one run. Not safe for concurrent use.
type Ledger struct {
	path string
	log  logx.Logger

	ids      map[string]struct{}
	dirty    bool
	readOnly bool
}

// ErrReadOnly is returned when persisting a ledger opened with OpenReadOnly.
var ErrReadOnly = errors.New("ledger is read-only")

// Load reads the identifier set at path. A missing file is an empty set.
// Unparseable content returns an error wrapping ErrCorrupt.
func Load(path string) (map[string]struct{}, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]struct{}{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", path, err)
	}

	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	ids := make(map[string]struct{}, len(list))
	for _, id := range list {
		if id = strings.TrimSpace(id); id != "" {
			ids[id] = struct{}{}
		}
	}
	return ids, nil
}

// Open loads the ledger at path. A corrupt file is moved aside to
// <path>.corrupt and the run starts from an empty set; only I/O errors
// other than "not found" are returned.
func Open(path string, log logx.Logger) (*Ledger, error) {
	return open(path, log, false)
}

// OpenReadOnly loads the ledger at path without ever touching the file: a
// corrupt file stays where it is and reads as an empty set. Add still works
// in memory; SaveIfChanged is a no-op and Reset fails.
func OpenReadOnly(path string, log logx.Logger) (*Ledger, error) {
	return open(path, log, true)
}

func open(path string, log logx.Logger, readOnly bool) (*Ledger, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("ledger path is required")
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	ids, err := Load(path)
	switch {
	case errors.Is(err, ErrCorrupt) && readOnly:
		log.Warn("ledger corrupt; reading as empty", logx.String("path", path), logx.Err(err))
		ids = map[string]struct{}{}
	case errors.Is(err, ErrCorrupt):
		backup := path + ".corrupt"
		if rerr := os.Rename(path, backup); rerr != nil {
			log.Warn("ledger backup failed", logx.String("path", path), logx.Err(rerr))
			backup = ""
		}
		log.Warn("ledger corrupt; starting empty", logx.String("path", path), logx.String("backup", backup), logx.Err(err))
		ids = map[string]struct{}{}
	case err != nil:
		return nil, err
	}

	log.Debug("ledger loaded", logx.String("path", path), logx.Int("ids", len(ids)), logx.Bool("read_only", readOnly))
	return &Ledger{path: path, log: log, ids: ids, readOnly: readOnly}, nil
}

func (l *Ledger) Path() string { return l.path }

func (l *Ledger) Len() int { return len(l.ids) }

func (l *Ledger) Contains(id string) bool {
	_, ok := l.ids[id]
	return ok
}

// Add records id. Adding an id that is already present does not mark the
// ledger as changed.
func (l *Ledger) Add(id string) {
	if id == "" || l.Contains(id) {
		return
	}
	l.ids[id] = struct{}{}
	l.dirty = true
}

// Changed reports whether Add introduced a new id since Open or the last save.
func (l *Ledger) Changed() bool { return l.dirty }

// IDs returns the identifiers in ascending order.
func (l *Ledger) IDs() []string {
	out := make([]string, 0, len(l.ids))
	for id := range l.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// SaveIfChanged writes the set back only when it changed.
// It reports whether a write happened.
func (l *Ledger) SaveIfChanged() (bool, error) {
	if !l.dirty || l.readOnly {
		return false, nil
	}
	if err := Save(l.path, l.IDs()); err != nil {
		return false, err
	}
	l.dirty = false
	l.log.Debug("ledger saved", logx.String("path", l.path), logx.Int("ids", len(l.ids)))
	return true, nil
}

// Reset drops every id and persists the empty set immediately.
func (l *Ledger) Reset() error {
	if l.readOnly {
		return ErrReadOnly
	}
	l.ids = map[string]struct{}{}
	l.dirty = false
	return Save(l.path, []string{})
}

// Save atomically replaces the file at path with ids as a JSON array:
// write a temp file in the same directory, fsync, then rename over.
func Save(path string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ledger mkdir: %w", err)
	}

	b, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("ledger marshal: %w", err)
	}

	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("ledger temp file: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("ledger write: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("ledger sync: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("ledger close: %w", err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("ledger chmod: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("ledger rename: %w", err)
	}
	return nil
}
