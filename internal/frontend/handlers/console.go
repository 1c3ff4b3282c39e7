// Package handlers runs the interactive console: it reads command lines,
// dispatches them to the game session, and keeps the save current.
package handlers

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicebound/internal/frontend/command"
	"github.com/cory-johannsen/dicebound/internal/frontend/render"
	"github.com/cory-johannsen/dicebound/internal/game/session"
)

const prompt = "> "

// Console is a line-oriented game client. It implements lifecycle.Service:
// Start runs the read loop and Stop saves the game.
type Console struct {
	mu       sync.Mutex
	session  *session.GameSession
	deps     session.Deps
	store    session.Store
	registry *command.Registry
	render   *render.Renderer
	in       io.Reader
	out      io.Writer
	logger   *zap.Logger
}

// NewConsole creates a Console playing s and persisting to store.
//
// Precondition: s, store, in, and out must be non-nil; deps must be the
// dependencies s was built with, used again by the new command.
// Postcondition: Returns a Console ready to Start.
func NewConsole(s *session.GameSession, deps session.Deps, store session.Store, in io.Reader, out io.Writer, color bool) *Console {
	return &Console{
		session:  s,
		deps:     deps,
		store:    store,
		registry: command.DefaultRegistry(),
		render:   render.New(color),
		in:       in,
		out:      out,
		logger:   deps.Logger,
	}
}

// Session returns the session currently being played.
func (c *Console) Session() *session.GameSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Start prints the game state and processes input lines until quit or the
// end of input.
//
// Postcondition: returns nil on quit or EOF, or the read error.
func (c *Console) Start() error {
	c.write(c.render.Status(c.Session()))
	c.write(prompt)

	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		if quit := c.Exec(context.Background(), scanner.Text()); quit {
			return nil
		}
		c.write(prompt)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}

// Stop persists the current game.
func (c *Console) Stop() {
	ctx := context.Background()
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.persist(ctx); err != nil {
		c.logger.Warn("saving on shutdown failed", zap.Error(err))
		return
	}
	c.logger.Info("game saved on shutdown")
}

// Exec runs one command line and autosaves afterwards.
//
// Postcondition: returns true when the line asked to quit.
func (c *Console) Exec(ctx context.Context, line string) (quit bool) {
	parsed := command.Parse(line)
	if parsed.Command == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cmd, ok := c.registry.Resolve(parsed.Command)
	if !ok {
		c.write(fmt.Sprintf("Unknown command %q. Type help for a list.\n", parsed.Command))
		return false
	}
	if len(parsed.Args) < cmd.MinArgs {
		c.write(fmt.Sprintf("Usage: %s\n", cmd.Usage))
		return false
	}
	fn, ok := handlerMap[cmd.Handler]
	if !ok {
		c.logger.Error("command has no handler", zap.String("command", cmd.Name))
		return false
	}

	res, err := fn(&handlerContext{console: c, cmd: cmd, parsed: parsed})
	if err != nil {
		c.write(c.describe(err))
		return false
	}
	if res.output != "" {
		c.write(res.output)
	}
	if res.changed {
		if err := c.persist(ctx); err != nil {
			c.logger.Warn("autosave failed", zap.Error(err))
			c.write("Autosave failed; see the log.\n")
		}
	}
	return res.quit
}

// persist saves the session, or deletes the save once the game is over.
//
// Precondition: c.mu is held.
func (c *Console) persist(ctx context.Context) error {
	if c.session.Phase() == session.PhaseGameOver {
		return c.store.Delete(ctx)
	}
	return c.store.Save(ctx, c.session.Snapshot())
}

func (c *Console) write(s string) {
	if _, err := io.WriteString(c.out, s); err != nil {
		c.logger.Debug("console write failed", zap.Error(err))
	}
}
