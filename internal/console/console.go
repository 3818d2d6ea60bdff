// Package console runs a local game from a line-based command stream.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/hailam/chessmatch/internal/board"
	"github.com/hailam/chessmatch/internal/game"
	"github.com/hailam/chessmatch/internal/storage"
)

// Default identities for games started without names.
const (
	DefaultWhite game.PlayerID = "white"
	DefaultBlack game.PlayerID = "black"
)

var errUsage = errors.New("usage")

// Console reads commands from in and writes replies to out.
type Console struct {
	in  io.Reader
	out io.Writer

	store  *storage.Storage
	logger *log.Logger

	game         *game.Game
	white, black game.PlayerID
	enforce      bool
}

// Option configures a Console.
type Option func(*Console)

// WithStore enables the save, load and games commands.
func WithStore(s *storage.Storage) Option {
	return func(c *Console) { c.store = s }
}

// WithLogger sets where rejected moves are logged.
func WithLogger(l *log.Logger) Option {
	return func(c *Console) { c.logger = l }
}

// WithEnforceCaptureTurn sets the capture rule for games the console starts.
func WithEnforceCaptureTurn(enforce bool) Option {
	return func(c *Console) { c.enforce = enforce }
}

// New creates a console with a fresh game between DefaultWhite and
// DefaultBlack.
func New(in io.Reader, out io.Writer, opts ...Option) (*Console, error) {
	c := &Console{
		in:      in,
		out:     out,
		logger:  log.New(io.Discard, "", 0),
		white:   DefaultWhite,
		black:   DefaultBlack,
		enforce: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.handleNew(nil); err != nil {
		return nil, err
	}
	return c, nil
}

// Game returns the current game.
func (c *Console) Game() *game.Game { return c.game }

// Run processes commands until quit or end of input.
func (c *Console) Run() error {
	scanner := bufio.NewScanner(c.in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "quit", "exit":
			return nil
		case "help":
			c.handleHelp()
		case "new":
			err = c.handleNew(args)
		case "fen":
			err = c.handleFEN(args)
		case "d":
			fmt.Fprint(c.out, c.game.Position().String())
		case "turn":
			c.handleTurn()
		case "move":
			err = c.handleMove(args)
		case "capture":
			err = c.handleCapture(args)
		case "history":
			c.handleHistory()
		case "captured":
			c.handleCaptured()
		case "attacks":
			err = c.handleAttacks(args)
		case "save":
			err = c.handleSave()
		case "load":
			err = c.handleLoad(args)
		case "games":
			err = c.handleGames()
		default:
			err = fmt.Errorf("unknown command %q", cmd)
		}

		if err != nil {
			fmt.Fprintf(c.out, "error: %v\n", err)
		}
	}

	return scanner.Err()
}

func (c *Console) handleHelp() {
	fmt.Fprintln(c.out, "commands:")
	fmt.Fprintln(c.out, "  new [white black]                     start a game")
	fmt.Fprintln(c.out, "  fen <fen>                             start a game from a position")
	fmt.Fprintln(c.out, "  d                                     show the board")
	fmt.Fprintln(c.out, "  turn                                  show whose turn it is")
	fmt.Fprintln(c.out, "  move <player> <e2e4> <code>           move a piece")
	fmt.Fprintln(c.out, "  capture <player> <e4d5> <code> <code> capture a piece")
	fmt.Fprintln(c.out, "  history | captured                    list moves or taken pieces")
	fmt.Fprintln(c.out, "  attacks <square> <code> [blockers]    show an attack set")
	fmt.Fprintln(c.out, "  save | load <id> | games              use the game store")
	fmt.Fprintln(c.out, "  quit")
}

func (c *Console) gameOptions() []game.Option {
	return []game.Option{
		game.WithEnforceCaptureTurn(c.enforce),
		game.WithLogger(c.logger),
	}
}

func (c *Console) newID() (string, error) {
	if c.store == nil {
		return "local", nil
	}
	return c.store.NextGameID()
}

// handleNew starts a game from the start position.
//   - new
//   - new <white> <black>
func (c *Console) handleNew(args []string) error {
	white, black := c.white, c.black
	switch len(args) {
	case 0:
	case 2:
		white, black = game.PlayerID(args[0]), game.PlayerID(args[1])
	default:
		return fmt.Errorf("%w: new [white black]", errUsage)
	}

	id, err := c.newID()
	if err != nil {
		return err
	}
	g, err := game.New(id, game.NewOwners(white, black), c.gameOptions()...)
	if err != nil {
		return err
	}
	c.game = g
	c.white, c.black = white, black
	fmt.Fprintf(c.out, "game %s: %s (white) vs %s (black)\n", g.ID(), c.white, c.black)
	return nil
}

func (c *Console) handleFEN(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: fen <placement> <side> [...]", errUsage)
	}

	id, err := c.newID()
	if err != nil {
		return err
	}
	g, err := game.NewFromFEN(id, strings.Join(args, " "), game.NewOwners(c.white, c.black), c.gameOptions()...)
	if err != nil {
		return err
	}
	c.game = g
	fmt.Fprintf(c.out, "game %s: %s\n", g.ID(), g.FEN())
	return nil
}

func (c *Console) handleTurn() {
	owners := c.game.Owners()
	player, _ := owners.Player(c.game.Turn())
	fmt.Fprintf(c.out, "%s to move (%s)\n", c.game.Turn(), player)
}

func (c *Console) handleMove(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("%w: move <player> <e2e4> <code>", errUsage)
	}
	m, err := board.ParseMove(args[1])
	if err != nil {
		return err
	}
	if err := c.game.ApplyMove(game.PlayerID(args[0]), m.From(), m.To(), args[2]); err != nil {
		return err
	}
	c.report()
	return nil
}

func (c *Console) handleCapture(args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("%w: capture <player> <e4d5> <code> <captured>", errUsage)
	}
	m, err := board.ParseMove(args[1])
	if err != nil {
		return err
	}
	if err := c.game.ApplyCapture(game.PlayerID(args[0]), m.From(), m.To(), args[2], args[3]); err != nil {
		return err
	}
	c.report()
	return nil
}

// report prints the last accepted move.
func (c *Console) report() {
	hist := c.game.History()
	rec := hist[len(hist)-1]
	if rec.IsCapture() {
		fmt.Fprintf(c.out, "ok %d. %s %s%s x%s\n", rec.Ply, rec.Piece.Code(), rec.From, rec.To, rec.Captured.Code())
	} else {
		fmt.Fprintf(c.out, "ok %d. %s %s%s\n", rec.Ply, rec.Piece.Code(), rec.From, rec.To)
	}
}

func (c *Console) handleHistory() {
	for _, rec := range c.game.History() {
		line := fmt.Sprintf("%d. %s %s %s%s", rec.Ply, rec.Color, rec.Piece.Code(), rec.From, rec.To)
		if rec.IsCapture() {
			line += " x" + rec.Captured.Code()
		}
		fmt.Fprintln(c.out, line)
	}
}

func (c *Console) handleCaptured() {
	codes := make([]string, 0, len(c.game.Captured()))
	for _, p := range c.game.Captured() {
		codes = append(codes, p.Code())
	}
	fmt.Fprintf(c.out, "captured: %s\n", strings.Join(codes, " "))
}

// handleAttacks prints the attack set of a piece code on a square.
//   - attacks d4 wR
//   - attacks d4 wR 0x0000080000200000
func (c *Console) handleAttacks(args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("%w: attacks <square> <code> [blockers]", errUsage)
	}
	sq, err := board.ParseSquare(args[0])
	if err != nil {
		return err
	}
	piece, err := board.ParsePieceCode(args[1])
	if err != nil {
		return err
	}

	var blockers board.Bitboard
	if len(args) == 3 {
		v, err := strconv.ParseUint(args[2], 0, 64)
		if err != nil {
			return fmt.Errorf("blockers %q: %w", args[2], err)
		}
		blockers = board.Bitboard(v)
	}

	attacks := board.Attacks(piece, sq, blockers)
	fmt.Fprint(c.out, attacks.String())

	names := make([]string, 0, attacks.PopCount())
	for _, s := range attacks.Squares() {
		names = append(names, s.String())
	}
	fmt.Fprintf(c.out, "%s on %s: %s\n", piece.Code(), sq, strings.Join(names, " "))
	return nil
}

func (c *Console) requireStore() error {
	if c.store == nil {
		return errors.New("no game store configured")
	}
	return nil
}

func (c *Console) handleSave() error {
	if err := c.requireStore(); err != nil {
		return err
	}
	if err := c.store.SaveGame(c.game); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "saved %s\n", c.game.ID())
	return nil
}

func (c *Console) handleLoad(args []string) error {
	if err := c.requireStore(); err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: load <id>", errUsage)
	}
	g, err := c.store.LoadGame(args[0], game.WithLogger(c.logger))
	if err != nil {
		return err
	}
	c.game = g
	owners := g.Owners()
	c.white, _ = owners.Player(board.White)
	c.black, _ = owners.Player(board.Black)
	fmt.Fprintf(c.out, "game %s: %s\n", g.ID(), g.FEN())
	return nil
}

func (c *Console) handleGames() error {
	if err := c.requireStore(); err != nil {
		return err
	}
	ids, err := c.store.ListGames()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "games: %s\n", strings.Join(ids, " "))
	return nil
}
