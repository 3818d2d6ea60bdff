package board

import "fmt"

// Move encodes a from/to square pair in 16 bits:
// bits 0-5:  from square (0-63)
// bits 6-11: to square (0-63)
type Move uint16

// NoMove represents an invalid or null move.
const NoMove Move = 0

// NewMove creates a move.
func NewMove(from, to Square) Move {
	return Move(from) | Move(to)<<6
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x3F)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

// String returns the coordinate form of the move (e.g., "e2e4").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	return m.From().String() + m.To().String()
}

// ParseMove parses a coordinate move string such as "e2e4".
func ParseMove(s string) (Move, error) {
	if len(s) != 4 {
		return NoMove, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, fmt.Errorf("%w: %q: %v", ErrInvalidMove, s, err)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, fmt.Errorf("%w: %q: %v", ErrInvalidMove, s, err)
	}
	if from == to {
		return NoMove, fmt.Errorf("%w: %q: from and to are the same square", ErrInvalidMove, s)
	}

	return NewMove(from, to), nil
}
