package handlers_test

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dicebound/internal/content"
	"github.com/cory-johannsen/dicebound/internal/frontend/command"
	"github.com/cory-johannsen/dicebound/internal/frontend/handlers"
	"github.com/cory-johannsen/dicebound/internal/game/dice"
	"github.com/cory-johannsen/dicebound/internal/game/session"
)

type memStore struct {
	mu      sync.Mutex
	st      *session.SaveState
	saved   int
	deleted bool
}

func (m *memStore) Load(context.Context) (*session.SaveState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.st == nil {
		return nil, session.ErrNoSave
	}
	return m.st, nil
}

func (m *memStore) Save(_ context.Context, st *session.SaveState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st = st
	m.saved++
	return nil
}

func (m *memStore) Delete(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st = nil
	m.deleted = true
	return nil
}

func testDeps(t *testing.T) session.Deps {
	t.Helper()
	cat, err := content.Default()
	require.NoError(t, err)
	return session.Deps{
		Content: cat,
		Source:  dice.NewSeededSource(21),
		Logger:  zap.NewNop(),
		Rules:   session.DefaultRules(),
	}
}

func newConsole(t *testing.T, input string) (*handlers.Console, *memStore, *bytes.Buffer) {
	t.Helper()
	deps := testDeps(t)
	s, err := session.New(deps)
	require.NoError(t, err)
	store := &memStore{}
	out := &bytes.Buffer{}
	return handlers.NewConsole(s, deps, store, strings.NewReader(input), out, false), store, out
}

// TestAllCommandHandlersAreWired asserts that every Handler constant
// registered in BuiltinCommands has a corresponding dispatch entry.
//
// Postcondition: every cmd.Handler in BuiltinCommands() is a key in Handlers().
func TestAllCommandHandlersAreWired(t *testing.T) {
	registered := handlers.Handlers()
	for _, cmd := range command.BuiltinCommands() {
		if _, ok := registered[cmd.Handler]; !ok {
			t.Errorf("handler %q is in BuiltinCommands() but missing from Handlers()", cmd.Handler)
		}
	}
}

func TestExec_PlaysAHand(t *testing.T) {
	c, store, out := newConsole(t, "")
	ctx := context.Background()

	assert.False(t, c.Exec(ctx, "roll"))
	assert.Equal(t, session.PhaseRoll, c.Session().Phase())
	assert.False(t, c.Exec(ctx, "hold 12345"))
	for _, h := range c.Session().Held() {
		assert.True(t, h)
	}

	out.Reset()
	assert.False(t, c.Exec(ctx, "preview"))
	preview := out.String()
	assert.Contains(t, preview, "base")

	out.Reset()
	assert.False(t, c.Exec(ctx, "score"))
	assert.Equal(t, 3, c.Session().HandsLeft())
	assert.Contains(t, out.String(), "base")
	assert.Equal(t, 3, store.saved)
	require.NotNil(t, store.st)
	assert.Equal(t, 3, store.st.HandsLeft)
}

func TestExec_ReadOnlyCommandsDoNotSave(t *testing.T) {
	c, store, out := newConsole(t, "")
	ctx := context.Background()

	for _, line := range []string{"status", "help", "help rr", "pouch", "", "   "} {
		c.Exec(ctx, line)
	}
	assert.Zero(t, store.saved)
	assert.Contains(t, out.String(), "Reroll the dice that are not held")
}

func TestExec_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown":      "Unknown command \"fly\"",
		"wrong phase":  "You can't do that in the discard phase.",
		"usage":        "Usage: buy <offer>",
		"bad position": "usage: hold <die>...",
		"no such die":  "no die in slot 9",
	}
	lines := map[string][]string{
		"unknown":      {"fly"},
		"wrong phase":  {"buy 1"},
		"usage":        {"buy"},
		"bad position": {"roll", "hold x"},
		"no such die":  {"roll", "hold 9"},
	}
	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			c, _, out := newConsole(t, "")
			for _, l := range lines[name] {
				c.Exec(context.Background(), l)
			}
			assert.Contains(t, out.String(), want)
		})
	}
}

func TestExec_DiscardSelection(t *testing.T) {
	c, _, _ := newConsole(t, "")
	ctx := context.Background()
	before := c.Session().Hand()[0].Die.ID

	c.Exec(ctx, "select 1")
	assert.True(t, c.Session().DiscardSelected()[0])
	c.Exec(ctx, "discard")
	assert.Equal(t, 1, c.Session().DiscardsUsed())
	assert.NotEqual(t, before, c.Session().Hand()[0].Die.ID)
}

func TestExec_Pouch(t *testing.T) {
	c, _, _ := newConsole(t, "")
	pouches := testDeps(t).Content.PouchList()
	require.NotEmpty(t, pouches)

	c.Exec(context.Background(), "pouch "+pouches[0].ID)
	assert.Equal(t, pouches[0].ID, c.Session().Pouch())
}

func TestExec_NewGame(t *testing.T) {
	c, _, _ := newConsole(t, "")
	ctx := context.Background()
	first := c.Session()
	c.Exec(ctx, "roll")

	c.Exec(ctx, "new")
	assert.NotSame(t, first, c.Session())
	assert.Equal(t, session.PhaseDiscard, c.Session().Phase())
}

func TestExec_GameOverDeletesSave(t *testing.T) {
	deps := testDeps(t)
	d := dice.NewDie(dice.Red)
	st := &session.SaveState{
		Version:         session.SaveVersion,
		CurrentStake:    2,
		CurrentBlind:    session.Boss,
		RerollAllowance: 2,
		Phase:           session.PhaseGameOver,
		FullBag:         []*dice.Die{d},
		Bag:             []string{d.ID},
	}
	s, err := session.Restore(st, deps)
	require.NoError(t, err)
	store := &memStore{st: st}
	out := &bytes.Buffer{}
	c := handlers.NewConsole(s, deps, store, strings.NewReader(""), out, false)

	c.Exec(context.Background(), "roll")
	assert.Contains(t, out.String(), "The game is over")
	assert.False(t, store.deleted)

	assert.True(t, c.Exec(context.Background(), "quit"))
	assert.True(t, store.deleted)
}

func TestStart_RunsUntilQuit(t *testing.T) {
	c, store, out := newConsole(t, "status\nroll\nquit\nroll\n")
	require.NoError(t, c.Start())

	assert.Equal(t, session.PhaseRoll, c.Session().Phase())
	assert.Contains(t, out.String(), "Goodbye.")
	assert.Equal(t, 2, store.saved)
}

func TestStart_EOF(t *testing.T) {
	c, store, _ := newConsole(t, "roll\n")
	require.NoError(t, c.Start())
	assert.Equal(t, 1, store.saved)

	c.Stop()
	assert.Equal(t, 2, store.saved)
	assert.Equal(t, session.PhaseRoll, store.st.Phase)
}
