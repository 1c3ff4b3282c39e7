// Package command provides the console command registry, parser, and built-in
// command definitions.
package command

// Categories for organizing commands.
const (
	CategoryTurn   = "turn"
	CategoryShop   = "shop"
	CategoryRune   = "rune"
	CategorySystem = "system"
)

// Handler identifiers mapping commands to game session operations.
const (
	HandlerHold       = "hold"
	HandlerSelect     = "select"
	HandlerDiscard    = "discard"
	HandlerRoll       = "roll"
	HandlerReroll     = "reroll"
	HandlerScore      = "score"
	HandlerPreview    = "preview"
	HandlerBuy        = "buy"
	HandlerSell       = "sell"
	HandlerMove       = "move"
	HandlerPack       = "pack"
	HandlerShopReroll = "shopreroll"
	HandlerNext       = "next"
	HandlerRune       = "rune"
	HandlerPouch      = "pouch"
	HandlerStatus     = "status"
	HandlerNew        = "new"
	HandlerHelp       = "help"
	HandlerQuit       = "quit"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the argument shape, e.g. "hold <die>...".
	Usage string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command (turn, shop, rune, system).
	Category string
	// Handler maps to the session operation that runs the command.
	Handler string
	// MinArgs is the fewest arguments the command accepts.
	MinArgs int
}

// BuiltinCommands returns all built-in console commands.
func BuiltinCommands() []Command {
	return []Command{
		// Turn commands
		{Name: "hold", Aliases: []string{"h"}, Usage: "hold <die>...", Help: "Toggle hold on dice (roll phase)", Category: CategoryTurn, Handler: HandlerHold, MinArgs: 1},
		{Name: "select", Aliases: []string{"sel", "x"}, Usage: "select <die>...", Help: "Toggle discard selection on dice (discard phase)", Category: CategoryTurn, Handler: HandlerSelect, MinArgs: 1},
		{Name: "discard", Aliases: []string{"d"}, Usage: "discard", Help: "Replace the selected dice with fresh draws", Category: CategoryTurn, Handler: HandlerDiscard},
		{Name: "roll", Aliases: []string{"r"}, Usage: "roll", Help: "End discarding and roll the hand", Category: CategoryTurn, Handler: HandlerRoll},
		{Name: "reroll", Aliases: []string{"rr"}, Usage: "reroll", Help: "Reroll the dice that are not held", Category: CategoryTurn, Handler: HandlerReroll},
		{Name: "score", Aliases: []string{"s", "play"}, Usage: "score", Help: "Score the held dice and start the next hand", Category: CategoryTurn, Handler: HandlerScore},
		{Name: "preview", Aliases: []string{"p"}, Usage: "preview", Help: "Show what the held dice would score", Category: CategoryTurn, Handler: HandlerPreview},

		// Shop commands
		{Name: "buy", Aliases: []string{"b"}, Usage: "buy <offer>", Help: "Buy a charm from the shop", Category: CategoryShop, Handler: HandlerBuy, MinArgs: 1},
		{Name: "sell", Aliases: nil, Usage: "sell <charm>", Help: "Sell an equipped charm", Category: CategoryShop, Handler: HandlerSell, MinArgs: 1},
		{Name: "move", Aliases: []string{"mv"}, Usage: "move <from> <to>", Help: "Reorder an equipped charm", Category: CategoryShop, Handler: HandlerMove, MinArgs: 2},
		{Name: "pack", Aliases: []string{"open"}, Usage: "pack <pack>", Help: "Buy and open a pack from the shop", Category: CategoryShop, Handler: HandlerPack, MinArgs: 1},
		{Name: "shopreroll", Aliases: []string{"sr"}, Usage: "shopreroll", Help: "Pay to reroll the shop offers", Category: CategoryShop, Handler: HandlerShopReroll},
		{Name: "next", Aliases: []string{"n"}, Usage: "next", Help: "Leave the shop and start the next blind", Category: CategoryShop, Handler: HandlerNext},

		// Rune commands
		{Name: "rune", Aliases: []string{"use", "u"}, Usage: "rune <slot> [die...]", Help: "Use a rune from the tray on the given dice", Category: CategoryRune, Handler: HandlerRune, MinArgs: 1},
		{Name: "pouch", Aliases: nil, Usage: "pouch [id]", Help: "List pouches, or pick one before your first action", Category: CategoryRune, Handler: HandlerPouch},

		// System commands
		{Name: "status", Aliases: []string{"st", "look", "l"}, Usage: "status", Help: "Show the game state", Category: CategorySystem, Handler: HandlerStatus},
		{Name: "new", Aliases: nil, Usage: "new", Help: "Abandon this run and start a new game", Category: CategorySystem, Handler: HandlerNew},
		{Name: "help", Aliases: []string{"?"}, Usage: "help [command]", Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"q", "exit"}, Usage: "quit", Help: "Save and quit", Category: CategorySystem, Handler: HandlerQuit},
	}
}
