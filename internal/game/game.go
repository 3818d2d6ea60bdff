// Package game holds a two-player game: the board, who owns which color and
// whose turn it is. Moves and captures are checked against the owners and
// the board before anything changes.
package game

import (
	"fmt"
	"log"
	"time"

	"github.com/hailam/chessmatch/internal/board"
)

// PlayerID identifies a participant. It is opaque to the game.
type PlayerID string

// Owners maps each of the two players to the color they play.
type Owners map[PlayerID]board.Color

// NewOwners is shorthand for the usual two-entry owners map.
func NewOwners(white, black PlayerID) Owners {
	return Owners{white: board.White, black: board.Black}
}

// Player returns the identity playing c.
func (o Owners) Player(c board.Color) (PlayerID, bool) {
	for id, color := range o {
		if color == c {
			return id, true
		}
	}
	return "", false
}

func (o Owners) validate() error {
	if len(o) != 2 {
		return fmt.Errorf("%w: want 2 players, got %d", ErrInvalidOwners, len(o))
	}
	var seen [2]bool
	for id, c := range o {
		if id == "" {
			return fmt.Errorf("%w: empty player id", ErrInvalidOwners)
		}
		if c != board.White && c != board.Black {
			return fmt.Errorf("%w: player %q has color %d", ErrInvalidOwners, id, c)
		}
		if seen[c] {
			return fmt.Errorf("%w: %s assigned twice", ErrInvalidOwners, c)
		}
		seen[c] = true
	}
	return nil
}

// Options tune rule enforcement.
type Options struct {
	// EnforceCaptureTurn applies the owner and turn checks to captures as
	// well as moves. When false any caller may submit a capture; the board
	// still only accepts pieces of the side to move.
	EnforceCaptureTurn bool `json:"enforceCaptureTurn"`
}

// DefaultOptions returns the options a game gets when none are given.
func DefaultOptions() Options {
	return Options{EnforceCaptureTurn: true}
}

// Option configures a Game.
type Option func(*Game)

// WithEnforceCaptureTurn sets Options.EnforceCaptureTurn.
func WithEnforceCaptureTurn(enforce bool) Option {
	return func(g *Game) { g.opts.EnforceCaptureTurn = enforce }
}

// WithLogger sets the logger rejected attempts are reported to.
func WithLogger(l *log.Logger) Option {
	return func(g *Game) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Game) {
		if now != nil {
			g.now = now
		}
	}
}

// MoveRecord is one accepted move or capture.
type MoveRecord struct {
	Ply      int          `json:"ply"`
	Color    board.Color  `json:"color"`
	Piece    board.Piece  `json:"piece"`
	From     board.Square `json:"from"`
	To       board.Square `json:"to"`
	Captured board.Piece  `json:"captured"`
	FEN      string       `json:"fen"`
}

// IsCapture reports whether the record removed a piece.
func (r MoveRecord) IsCapture() bool {
	return r.Captured != board.NoPiece
}

// Game is a single match. It does no locking; callers serialise writers.
type Game struct {
	id     string
	pos    *board.Position
	owners Owners
	opts   Options

	history  []MoveRecord
	captured []board.Piece

	createdAt time.Time
	updatedAt time.Time

	logger *log.Logger
	now    func() time.Time
}

// New starts a game from the standard position with White to move.
func New(id string, owners Owners, opts ...Option) (*Game, error) {
	return newGame(id, board.NewPosition(), owners, opts...)
}

// NewFromFEN starts a game from an arbitrary position.
func NewFromFEN(id, fen string, owners Owners, opts ...Option) (*Game, error) {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	return newGame(id, pos, owners, opts...)
}

func newGame(id string, pos *board.Position, owners Owners, opts ...Option) (*Game, error) {
	if err := owners.validate(); err != nil {
		return nil, err
	}

	g := &Game{
		id:     id,
		pos:    pos,
		owners: make(Owners, len(owners)),
		opts:   DefaultOptions(),
		logger: log.Default(),
		now:    time.Now,
	}
	for p, c := range owners {
		g.owners[p] = c
	}
	for _, opt := range opts {
		opt(g)
	}
	g.createdAt = g.now().UTC()
	g.updatedAt = g.createdAt
	return g, nil
}

// ID returns the game identifier.
func (g *Game) ID() string { return g.id }

// Turn returns the color to move.
func (g *Game) Turn() board.Color { return g.pos.SideToMove }

// Options returns the rule options the game was created with.
func (g *Game) Options() Options { return g.opts }

// Owners returns a copy of the owners map.
func (g *Game) Owners() Owners {
	out := make(Owners, len(g.owners))
	for p, c := range g.owners {
		out[p] = c
	}
	return out
}

// ColorOf returns the color player plays.
func (g *Game) ColorOf(player PlayerID) (board.Color, error) {
	c, ok := g.owners[player]
	if !ok {
		return board.NoColor, fmt.Errorf("%w: %q", ErrUnknownPlayer, player)
	}
	return c, nil
}

// Opponent returns the other participant.
func (g *Game) Opponent(player PlayerID) (PlayerID, error) {
	c, err := g.ColorOf(player)
	if err != nil {
		return "", err
	}
	opp, _ := g.owners.Player(c.Other())
	return opp, nil
}

// History returns the accepted moves, oldest first.
func (g *Game) History() []MoveRecord {
	return append([]MoveRecord(nil), g.history...)
}

// Captured returns the pieces taken so far, in order.
func (g *Game) Captured() []board.Piece {
	return append([]board.Piece(nil), g.captured...)
}

// Ply returns the number of accepted moves.
func (g *Game) Ply() int { return len(g.history) }

// FEN returns the current position.
func (g *Game) FEN() string { return g.pos.FEN() }

// Position returns a copy of the board.
func (g *Game) Position() *board.Position { return g.pos.Copy() }

// Hash returns the Zobrist hash of the current position.
func (g *Game) Hash() uint64 { return g.pos.Hash }

// CreatedAt returns when the game was started.
func (g *Game) CreatedAt() time.Time { return g.createdAt }

// UpdatedAt returns when the last move was accepted, or CreatedAt before any.
func (g *Game) UpdatedAt() time.Time { return g.updatedAt }

// ApplyMove moves the piece with the given code from one square to an empty
// square. Checks run in order: piece code, caller, turn, board. A rejected
// move changes nothing.
func (g *Game) ApplyMove(player PlayerID, from, to board.Square, code string) error {
	piece, err := board.ParsePieceCode(code)
	if err != nil {
		return err
	}
	if err := g.checkTurn(player); err != nil {
		return err
	}

	if !g.pos.SelectPieceToMove(from, to, piece) {
		g.logger.Printf("game %s: rejected move %s %s%s by %q", g.id, code, from, to, player)
		return fmt.Errorf("%w: %s %s%s", ErrIllegalMove, code, from, to)
	}

	g.commit(piece, from, to, board.NoPiece)
	return nil
}

// ApplyCapture takes the piece coded captured on to with the piece coded code
// on from. Caller and turn are only checked when EnforceCaptureTurn is set.
func (g *Game) ApplyCapture(player PlayerID, from, to board.Square, code, captured string) error {
	piece, err := board.ParsePieceCode(code)
	if err != nil {
		return err
	}
	victim, err := board.ParsePieceCode(captured)
	if err != nil {
		return err
	}
	if g.opts.EnforceCaptureTurn {
		if err := g.checkTurn(player); err != nil {
			return err
		}
	}

	if !g.pos.CapturePiece(from, to, piece, victim) {
		g.logger.Printf("game %s: rejected capture %s %s%s x %s by %q", g.id, code, from, to, captured, player)
		return fmt.Errorf("%w: %s %s%s x %s", ErrIllegalMove, code, from, to, captured)
	}

	g.captured = append(g.captured, victim)
	g.commit(piece, from, to, victim)
	return nil
}

func (g *Game) checkTurn(player PlayerID) error {
	c, err := g.ColorOf(player)
	if err != nil {
		return err
	}
	if c != g.pos.SideToMove {
		return fmt.Errorf("%w: %s to move", ErrNotYourTurn, g.pos.SideToMove)
	}
	return nil
}

// commit flips the turn and records an accepted move. The board has already
// been changed by the oracle.
func (g *Game) commit(piece board.Piece, from, to board.Square, captured board.Piece) {
	mover := g.pos.SideToMove
	g.pos.SwitchSide()
	g.history = append(g.history, MoveRecord{
		Ply:      len(g.history) + 1,
		Color:    mover,
		Piece:    piece,
		From:     from,
		To:       to,
		Captured: captured,
		FEN:      g.pos.FEN(),
	})
	g.updatedAt = g.now().UTC()
}
