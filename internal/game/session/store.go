package session

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Store persists a single saved game.
type Store interface {
	// Load returns the saved state, or ErrNoSave when nothing is saved.
	Load(ctx context.Context) (*SaveState, error)
	Save(ctx context.Context, st *SaveState) error
	Delete(ctx context.Context) error
}

// LoadOrNew resumes the saved game in store, or starts a new one when there is
// no usable save. A save that fails to load or restore is deleted.
//
// Postcondition: returns a non-nil session unless the rules or a fresh game
// cannot be built; resumed reports whether the save was used.
func LoadOrNew(ctx context.Context, store Store, deps Deps) (s *GameSession, resumed bool, err error) {
	if err := deps.Rules.Validate(); err != nil {
		return nil, false, err
	}
	st, err := store.Load(ctx)
	if err == nil {
		s, err = Restore(st, deps)
		if err == nil {
			deps.Logger.Info("game resumed", zap.Int("stake", s.stake), zap.String("blind", string(s.blind)))
			return s, true, nil
		}
	}
	if !errors.Is(err, ErrNoSave) {
		deps.Logger.Warn("discarding unusable save", zap.Error(err))
		if derr := store.Delete(ctx); derr != nil {
			deps.Logger.Warn("deleting save failed", zap.Error(derr))
		}
	}
	s, err = New(deps)
	if err != nil {
		return nil, false, err
	}
	return s, false, nil
}
