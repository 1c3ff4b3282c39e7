package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/dicebound/internal/game/session"
)

// SaveRepository keeps one saved game per slot in the saves table. It
// implements session.Store for a single slot.
type SaveRepository struct {
	db   *pgxpool.Pool
	slot string
}

// NewSaveRepository creates a SaveRepository for slot backed by the given pool.
//
// Precondition: db must be a valid, open connection pool; slot must be non-empty.
func NewSaveRepository(db *pgxpool.Pool, slot string) *SaveRepository {
	return &SaveRepository{db: db, slot: slot}
}

// Slot returns the save slot this repository reads and writes.
func (r *SaveRepository) Slot() string { return r.slot }

// Load returns the state saved in the slot.
//
// Postcondition: Returns session.ErrNoSave when the slot is empty, or an
// error wrapping session.ErrCorruptSave when the stored state cannot be
// decoded.
func (r *SaveRepository) Load(ctx context.Context) (*session.SaveState, error) {
	var raw []byte
	err := r.db.QueryRow(ctx,
		`SELECT state FROM saves WHERE slot = $1`,
		r.slot,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrNoSave
		}
		return nil, fmt.Errorf("querying save %q: %w", r.slot, err)
	}

	var st session.SaveState
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("%w: decoding save %q: %w", session.ErrCorruptSave, r.slot, err)
	}
	return &st, nil
}

// Save writes st to the slot, replacing any earlier save.
//
// Precondition: st must be non-nil.
func (r *SaveRepository) Save(ctx context.Context, st *session.SaveState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding save: %w", err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO saves (slot, version, state, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (slot) DO UPDATE
		 SET version = EXCLUDED.version, state = EXCLUDED.state, updated_at = EXCLUDED.updated_at`,
		r.slot, st.Version, raw, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("writing save %q: %w", r.slot, err)
	}
	return nil
}

// Delete removes the slot's save. Deleting an empty slot is not an error.
func (r *SaveRepository) Delete(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM saves WHERE slot = $1`, r.slot); err != nil {
		return fmt.Errorf("deleting save %q: %w", r.slot, err)
	}
	return nil
}

// Slots lists every occupied save slot with its last update time, most
// recent first.
func (r *SaveRepository) Slots(ctx context.Context) ([]SlotInfo, error) {
	rows, err := r.db.Query(ctx,
		`SELECT slot, version, updated_at FROM saves ORDER BY updated_at DESC, slot`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing saves: %w", err)
	}
	infos, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (SlotInfo, error) {
		var info SlotInfo
		err := row.Scan(&info.Slot, &info.Version, &info.UpdatedAt)
		return info, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning saves: %w", err)
	}
	return infos, nil
}

// SlotInfo describes one occupied save slot.
type SlotInfo struct {
	Slot      string
	Version   int
	UpdatedAt time.Time
}
