package session

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalAction marks a command that is not available in the current
	// phase. The session state is unchanged and callers may ignore it.
	ErrIllegalAction = errors.New("illegal action")
	// ErrInvalidSelection marks a rejected command; the wrapped message is
	// meant for the player. The session state is unchanged.
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrGameOver is returned by every command once the game has ended.
	ErrGameOver = errors.New("game over")
	// ErrNoSave is returned by a Store with nothing saved.
	ErrNoSave = errors.New("no saved game")
	// ErrCorruptSave is returned when saved state cannot be restored.
	ErrCorruptSave = errors.New("corrupt saved game")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSelection, fmt.Sprintf(format, args...))
}

func rejected(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidSelection, err)
}
