package board

import "errors"

var (
	ErrInvalidSquare    = errors.New("invalid square")
	ErrUnknownPieceCode = errors.New("unknown piece code")
	ErrUnknownColor     = errors.New("unknown color")
	ErrInvalidFEN       = errors.New("invalid FEN")
	ErrInvalidMove      = errors.New("invalid move string")
)
