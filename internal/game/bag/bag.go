// Package bag implements the dice bag store: the owned-dice template (the full
// bag) and the draw pool refilled from it.
package bag

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicebound/internal/game/dice"
)

// ErrExhausted is returned when a draw is attempted with no owned dice left.
var ErrExhausted = errors.New("bag: no dice left to draw")

// RefillPolicy controls how the pool is rebuilt when it runs short.
type RefillPolicy int

const (
	// RefillFull restores every owned die not currently in the hand.
	RefillFull RefillPolicy = iota
	// RefillHalf restores a shuffled half of the full bag, rounded up.
	RefillHalf
)

// Store owns every die in the game.
//
// Invariant: every die in the pool and every die checked out to the hand is
// also in the full bag (by id); no id appears in both the pool and the hand.
// It is not safe for concurrent use; the caller must serialise access.
type Store struct {
	full   []*dice.Die
	pool   []*dice.Die
	out    map[string]bool
	policy RefillPolicy
	src    dice.Source
	logger *zap.Logger
}

// New creates a Store owning owned, with the pool initially full.
//
// Precondition: src and logger must be non-nil; ids in owned must be unique.
// Postcondition: Len() == FullLen() == len(owned).
func New(owned []*dice.Die, src dice.Source, logger *zap.Logger) *Store {
	s := &Store{
		full:   append([]*dice.Die(nil), owned...),
		out:    make(map[string]bool),
		src:    src,
		logger: logger,
	}
	s.pool = append([]*dice.Die(nil), s.full...)
	return s
}

// Restore rebuilds a Store from persisted state. Pool and hand ids that do not
// resolve to an owned die are dropped.
//
// Postcondition: the store invariant holds.
func Restore(owned []*dice.Die, poolIDs, handIDs []string, src dice.Source, logger *zap.Logger) *Store {
	s := &Store{
		full:   append([]*dice.Die(nil), owned...),
		out:    make(map[string]bool),
		src:    src,
		logger: logger,
	}
	for _, id := range handIDs {
		if s.Find(id) != nil {
			s.out[id] = true
		}
	}
	for _, id := range poolIDs {
		if d := s.Find(id); d != nil && !s.out[id] && !s.inPool(id) {
			s.pool = append(s.pool, d)
		}
	}
	return s
}

// SetRefillPolicy selects how the next undersupplied draw refills the pool.
func (s *Store) SetRefillPolicy(p RefillPolicy) { s.policy = p }

// RefillPolicy returns the active refill policy.
func (s *Store) RefillPolicy() RefillPolicy { return s.policy }

// Draw removes up to n distinct dice uniformly at random from the pool and
// checks them out to the hand. When the pool holds fewer than n dice it is
// refilled first according to the active policy. Fewer than n dice are
// returned only when the owned dice not already in hand cannot cover n.
//
// Precondition: n >= 0.
// Postcondition: returned dice are absent from the pool and marked as in hand;
// returns ErrExhausted if the full bag is empty.
func (s *Store) Draw(n int) ([]*dice.Die, error) {
	if len(s.full) == 0 {
		return nil, ErrExhausted
	}
	if len(s.pool) < n {
		s.refill()
	}
	drawn := make([]*dice.Die, 0, n)
	for len(drawn) < n && len(s.pool) > 0 {
		i := s.src.Intn(len(s.pool))
		d := s.pool[i]
		s.pool = append(s.pool[:i], s.pool[i+1:]...)
		s.out[d.ID] = true
		drawn = append(drawn, d)
	}
	s.logger.Debug("bag draw",
		zap.Int("requested", n),
		zap.Int("drawn", len(drawn)),
		zap.Int("pool", len(s.pool)),
		zap.Int("owned", len(s.full)),
	)
	return drawn, nil
}

// CanDraw reports whether Draw(n) would return n dice. It changes nothing.
func (s *Store) CanDraw(n int) bool {
	if len(s.full) == 0 {
		return false
	}
	if len(s.pool) >= n {
		return true
	}
	avail := 0
	for _, d := range s.full {
		if !s.out[d.ID] {
			avail++
		}
	}
	return min(avail, s.refillLimit()) >= n
}

// refillLimit is the most dice a refill may place in the pool.
func (s *Store) refillLimit() int {
	if s.policy == RefillHalf {
		return (len(s.full) + 1) / 2
	}
	return len(s.full)
}

func (s *Store) refill() {
	var avail []*dice.Die
	for _, d := range s.full {
		if !s.out[d.ID] {
			avail = append(avail, d)
		}
	}
	if s.policy == RefillHalf {
		dice.Shuffle(s.src, len(avail), func(i, j int) { avail[i], avail[j] = avail[j], avail[i] })
	}
	if limit := s.refillLimit(); len(avail) > limit {
		avail = avail[:limit]
	}
	s.pool = avail
	s.logger.Debug("bag refill",
		zap.Int("pool", len(s.pool)),
		zap.Int("owned", len(s.full)),
		zap.Bool("half", s.policy == RefillHalf),
	)
}

// Release returns checked-out dice to the spent state: they leave the hand
// but re-enter the pool only on the next refill.
func (s *Store) Release(ids ...string) {
	for _, id := range ids {
		delete(s.out, id)
	}
}

// Reset releases every die and rebuilds the full pool (round start).
//
// Postcondition: Len() == FullLen().
func (s *Store) Reset() {
	s.out = make(map[string]bool)
	s.pool = append([]*dice.Die(nil), s.full...)
}

// Add places a newly acquired die into both the full bag and the pool.
//
// Precondition: d.ID must not already be owned.
func (s *Store) Add(d *dice.Die) error {
	if s.Find(d.ID) != nil {
		return fmt.Errorf("bag: die %q already owned", d.ID)
	}
	s.full = append(s.full, d)
	s.pool = append(s.pool, d)
	return nil
}

// Remove permanently destroys the die with id (breakage or sacrifice).
//
// Postcondition: id is absent from the full bag, the pool, and the hand set.
// Returns false if id was not owned.
func (s *Store) Remove(id string) bool {
	found := false
	for i, d := range s.full {
		if d.ID == id {
			s.full = append(s.full[:i], s.full[i+1:]...)
			found = true
			break
		}
	}
	for i, d := range s.pool {
		if d.ID == id {
			s.pool = append(s.pool[:i], s.pool[i+1:]...)
			break
		}
	}
	delete(s.out, id)
	if found {
		s.logger.Debug("die destroyed", zap.String("die", id), zap.Int("owned", len(s.full)))
	}
	return found
}

// Find returns the owned die with id, or nil.
func (s *Store) Find(id string) *dice.Die {
	for _, d := range s.full {
		if d.ID == id {
			return d
		}
	}
	return nil
}

func (s *Store) inPool(id string) bool {
	for _, d := range s.pool {
		if d.ID == id {
			return true
		}
	}
	return false
}

// InHand reports whether id is currently checked out.
func (s *Store) InHand(id string) bool { return s.out[id] }

// Len returns the number of dice in the pool.
func (s *Store) Len() int { return len(s.pool) }

// FullLen returns the number of owned dice.
func (s *Store) FullLen() int { return len(s.full) }

// Pool returns a snapshot of the pool.
func (s *Store) Pool() []*dice.Die { return append([]*dice.Die(nil), s.pool...) }

// Full returns a snapshot of the full bag.
func (s *Store) Full() []*dice.Die { return append([]*dice.Die(nil), s.full...) }

// PoolIDs returns the ids in the pool, in pool order.
func (s *Store) PoolIDs() []string {
	ids := make([]string, len(s.pool))
	for i, d := range s.pool {
		ids[i] = d.ID
	}
	return ids
}
