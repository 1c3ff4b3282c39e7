package handlers

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/dicebound/internal/frontend/command"
	"github.com/cory-johannsen/dicebound/internal/game/session"
)

// handlerContext carries all inputs a handler needs.
type handlerContext struct {
	console *Console
	cmd     *command.Command
	parsed  command.ParseResult
}

// handlerResult is returned by every handler. changed marks a state change
// worth saving; quit ends the read loop.
type handlerResult struct {
	output  string
	changed bool
	quit    bool
}

type handlerFunc func(hctx *handlerContext) (handlerResult, error)

// Handlers returns the map from Handler constant to handler function.
// Exported so tests can verify every built-in command is wired.
func Handlers() map[string]handlerFunc {
	return handlerMap
}

// handlerMap is the single source of truth for console command dispatch.
var handlerMap = map[string]handlerFunc{
	command.HandlerHold:       handleHold,
	command.HandlerSelect:     handleSelect,
	command.HandlerDiscard:    handleDiscard,
	command.HandlerRoll:       handleRoll,
	command.HandlerReroll:     handleReroll,
	command.HandlerScore:      handleScore,
	command.HandlerPreview:    handlePreview,
	command.HandlerBuy:        handleBuy,
	command.HandlerSell:       handleSell,
	command.HandlerMove:       handleMove,
	command.HandlerPack:       handlePack,
	command.HandlerShopReroll: handleShopReroll,
	command.HandlerNext:       handleNext,
	command.HandlerRune:       handleRune,
	command.HandlerPouch:      handlePouch,
	command.HandlerStatus:     handleStatus,
	command.HandlerNew:        handleNew,
	command.HandlerHelp:       handleHelp,
	command.HandlerQuit:       handleQuit,
}

// describe turns a command error into a player-facing line.
func (c *Console) describe(err error) string {
	switch {
	case errors.Is(err, session.ErrGameOver):
		return "The game is over. Type new to start again.\n"
	case errors.Is(err, session.ErrIllegalAction):
		return fmt.Sprintf("You can't do that in the %s phase.\n", c.session.Phase())
	case errors.Is(err, session.ErrInvalidSelection):
		return err.Error() + "\n"
	default:
		return "Error: " + err.Error() + "\n"
	}
}

// usageError reports a malformed argument; it is shown verbatim.
func usageError(hctx *handlerContext, err error) error {
	return fmt.Errorf("%w: %s (usage: %s)", session.ErrInvalidSelection, err.Error(), hctx.cmd.Usage)
}

// status is the result of a state-changing command: the fresh game view.
func status(hctx *handlerContext) handlerResult {
	c := hctx.console
	return handlerResult{output: c.render.Status(c.session), changed: true}
}

// toggleEach applies toggle to every listed position, stopping at the first
// error.
func toggleEach(hctx *handlerContext, toggle func(int) error) (handlerResult, error) {
	idx, err := command.Indices(hctx.parsed.Args)
	if err != nil {
		return handlerResult{}, usageError(hctx, err)
	}
	for _, i := range idx {
		if err := toggle(i); err != nil {
			return handlerResult{output: hctx.console.render.Hand(hctx.console.session), changed: true}, err
		}
	}
	return handlerResult{output: hctx.console.render.Hand(hctx.console.session), changed: true}, nil
}

func handleHold(hctx *handlerContext) (handlerResult, error) {
	return toggleEach(hctx, hctx.console.session.ToggleHold)
}

func handleSelect(hctx *handlerContext) (handlerResult, error) {
	return toggleEach(hctx, hctx.console.session.ToggleDiscard)
}

func handleDiscard(hctx *handlerContext) (handlerResult, error) {
	if err := hctx.console.session.Discard(); err != nil {
		return handlerResult{}, err
	}
	return status(hctx), nil
}

func handleRoll(hctx *handlerContext) (handlerResult, error) {
	if err := hctx.console.session.StartRollPhase(); err != nil {
		return handlerResult{}, err
	}
	return status(hctx), nil
}

func handleReroll(hctx *handlerContext) (handlerResult, error) {
	c := hctx.console
	rep, err := c.session.Reroll()
	if err != nil {
		return handlerResult{}, err
	}
	res := status(hctx)
	if rep != nil {
		res.output = "Out of rerolls, scoring the held dice.\n" + c.render.Report(rep) + res.output
	}
	return res, nil
}

func handleScore(hctx *handlerContext) (handlerResult, error) {
	c := hctx.console
	rep, err := c.session.ScoreAndNewTurn()
	if err != nil {
		return handlerResult{}, err
	}
	res := status(hctx)
	res.output = c.render.Report(rep) + res.output
	return res, nil
}

func handlePreview(hctx *handlerContext) (handlerResult, error) {
	c := hctx.console
	if c.session.Phase() != session.PhaseRoll {
		return handlerResult{}, session.ErrIllegalAction
	}
	return handlerResult{output: c.render.Result(c.session.Preview())}, nil
}

// indexed runs op with the command's first positional argument.
func indexed(hctx *handlerContext, op func(int) error) (handlerResult, error) {
	i, err := command.Index(hctx.parsed.Args[0])
	if err != nil {
		return handlerResult{}, usageError(hctx, err)
	}
	if err := op(i); err != nil {
		return handlerResult{}, err
	}
	return status(hctx), nil
}

func handleBuy(hctx *handlerContext) (handlerResult, error) {
	return indexed(hctx, hctx.console.session.BuyCharm)
}

func handleSell(hctx *handlerContext) (handlerResult, error) {
	return indexed(hctx, hctx.console.session.SellCharm)
}

func handlePack(hctx *handlerContext) (handlerResult, error) {
	return indexed(hctx, hctx.console.session.BuyPack)
}

func handleMove(hctx *handlerContext) (handlerResult, error) {
	idx, err := command.Indices(hctx.parsed.Args[:2])
	if err != nil {
		return handlerResult{}, usageError(hctx, err)
	}
	if err := hctx.console.session.ReorderCharm(idx[0], idx[1]); err != nil {
		return handlerResult{}, err
	}
	return handlerResult{output: hctx.console.render.Charms(hctx.console.session), changed: true}, nil
}

func handleShopReroll(hctx *handlerContext) (handlerResult, error) {
	if err := hctx.console.session.RerollShop(); err != nil {
		return handlerResult{}, err
	}
	return status(hctx), nil
}

func handleNext(hctx *handlerContext) (handlerResult, error) {
	if err := hctx.console.session.AdvanceBlind(); err != nil {
		return handlerResult{}, err
	}
	return status(hctx), nil
}

func handleRune(hctx *handlerContext) (handlerResult, error) {
	slot, err := command.Index(hctx.parsed.Args[0])
	if err != nil {
		return handlerResult{}, usageError(hctx, err)
	}
	dice, err := command.Indices(hctx.parsed.Args[1:])
	if err != nil {
		return handlerResult{}, usageError(hctx, err)
	}
	if err := hctx.console.session.ApplyRuneEffect(slot, dice); err != nil {
		return handlerResult{}, err
	}
	return status(hctx), nil
}

func handlePouch(hctx *handlerContext) (handlerResult, error) {
	c := hctx.console
	if len(hctx.parsed.Args) == 0 {
		return handlerResult{output: c.render.Pouches(c.deps.Content.PouchList())}, nil
	}
	if err := c.session.ApplyPouch(hctx.parsed.Args[0]); err != nil {
		return handlerResult{}, err
	}
	return status(hctx), nil
}

func handleStatus(hctx *handlerContext) (handlerResult, error) {
	c := hctx.console
	return handlerResult{output: c.render.Status(c.session)}, nil
}

func handleNew(hctx *handlerContext) (handlerResult, error) {
	c := hctx.console
	s, err := session.New(c.deps)
	if err != nil {
		return handlerResult{}, err
	}
	c.session = s
	c.logger.Info("new game started")
	return status(hctx), nil
}

func handleHelp(hctx *handlerContext) (handlerResult, error) {
	topic := ""
	if len(hctx.parsed.Args) > 0 {
		topic = hctx.parsed.Args[0]
	}
	return handlerResult{output: hctx.console.render.Help(hctx.console.registry, topic)}, nil
}

func handleQuit(hctx *handlerContext) (handlerResult, error) {
	return handlerResult{output: "Goodbye.\n", changed: true, quit: true}, nil
}
