package game

import (
	"fmt"
	"time"

	"github.com/hailam/chessmatch/internal/board"
)

// Snapshot is the serialisable form of a Game.
type Snapshot struct {
	ID        string        `json:"id"`
	FEN       string        `json:"fen"`
	Owners    Owners        `json:"owners"`
	Options   Options       `json:"options"`
	History   []MoveRecord  `json:"history"`
	Captured  []board.Piece `json:"captured"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Snapshot captures the full game state.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		ID:        g.id,
		FEN:       g.pos.FEN(),
		Owners:    g.Owners(),
		Options:   g.opts,
		History:   g.History(),
		Captured:  g.Captured(),
		CreatedAt: g.createdAt,
		UpdatedAt: g.updatedAt,
	}
}

// Restore rebuilds a game from a snapshot. Options passed here apply after
// the snapshot's own options.
func Restore(s Snapshot, opts ...Option) (*Game, error) {
	pos, err := board.ParseFEN(s.FEN)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	base := []Option{WithEnforceCaptureTurn(s.Options.EnforceCaptureTurn)}
	g, err := newGame(s.ID, pos, s.Owners, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	g.history = append([]MoveRecord(nil), s.History...)
	g.captured = append([]board.Piece(nil), s.Captured...)
	if !s.CreatedAt.IsZero() {
		g.createdAt = s.CreatedAt
	}
	if !s.UpdatedAt.IsZero() {
		g.updatedAt = s.UpdatedAt
	}
	return g, nil
}
