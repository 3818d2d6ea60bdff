package game

import (
	"errors"

	"github.com/hailam/chessmatch/internal/board"
)

var (
	ErrNotYourTurn   = errors.New("not your turn")
	ErrIllegalMove   = errors.New("illegal move")
	ErrUnknownPlayer = errors.New("unknown player")
	ErrInvalidOwners = errors.New("invalid owners")
	ErrInvalidState  = errors.New("invalid game state")

	// ErrUnknownPieceCode is the board error, re-exported so callers of this
	// package need not import board to match it.
	ErrUnknownPieceCode = board.ErrUnknownPieceCode
)
