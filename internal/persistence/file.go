package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"voteledger/pkg/platform/sentinel"
)

// File keeps the snapshot in a single JSON file, replaced atomically on every
// save via temp file + rename.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the snapshot location.
func (f *File) Path() string { return f.path }

func (f *File) Load(_ context.Context) (Snapshot, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot %s: %w", f.path, err)
	}
	snap, err := Decode(raw)
	if err != nil {
		// Keep the unreadable bytes around; the next save overwrites the path.
		aside := fmt.Sprintf("%s.corrupt-%d", f.path, time.Now().Unix())
		if renameErr := os.Rename(f.path, aside); renameErr == nil {
			return Snapshot{}, fmt.Errorf("%w (moved to %s)", err, aside)
		}
		return Snapshot{}, err
	}
	return snap, nil
}

func (f *File) Save(_ context.Context, snap Snapshot) error {
	raw, err := Encode(snap)
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
