// Package savefile stores a single saved game as a JSON file.
package savefile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cory-johannsen/dicebound/internal/game/session"
)

// Store keeps the saved game at a fixed path. It implements session.Store.
type Store struct {
	path string
}

// New returns a Store writing to path.
//
// Precondition: path must be non-empty.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the save file location.
func (s *Store) Path() string { return s.path }

// Load reads and decodes the save file.
//
// Postcondition: Returns session.ErrNoSave when the file does not exist, or
// an error wrapping session.ErrCorruptSave when it cannot be decoded or has
// another format version.
func (s *Store) Load(ctx context.Context) (*session.SaveState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, session.ErrNoSave
		}
		return nil, fmt.Errorf("reading save %s: %w", s.path, err)
	}

	var st session.SaveState
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %w", session.ErrCorruptSave, s.path, err)
	}
	if st.Version != session.SaveVersion {
		return nil, fmt.Errorf("%w: %s has version %d, want %d", session.ErrCorruptSave, s.path, st.Version, session.SaveVersion)
	}
	return &st, nil
}

// Save writes st through a temporary file in the same directory and renames
// it over the save file, so a crash never leaves a partial save behind.
//
// Precondition: st must be non-nil.
func (s *Store) Save(ctx context.Context, st *session.SaveState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding save: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating save directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp save: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp save: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp save: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replacing save %s: %w", s.path, err)
	}
	return nil
}

// Delete removes the save file. A missing file is not an error.
func (s *Store) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting save %s: %w", s.path, err)
	}
	return nil
}
