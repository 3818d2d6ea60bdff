package board

import (
	"fmt"
	"strings"
)

// Position is the board: one bitboard per piece kind and color plus the
// color whose turn it is.
type Position struct {
	// Piece bitboards: [Color][PieceType]
	Pieces [2][6]Bitboard

	// Occupancy bitboards (cached for efficiency)
	Occupied    [2]Bitboard // All pieces of each color
	AllOccupied Bitboard    // All pieces on the board

	SideToMove Color

	// Zobrist hash, kept in step with every mutation
	Hash uint64
}

// NewPosition creates the starting position.
func NewPosition() *Position {
	pos, _ := ParseFEN(StartFEN)
	return pos
}

// Copy creates a deep copy of the position.
func (p *Position) Copy() *Position {
	newPos := *p
	return &newPos
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (p *Position) PieceAt(sq Square) Piece {
	if !sq.IsValid() {
		return NoPiece
	}
	bb := SquareBB(sq)

	if p.AllOccupied&bb == 0 {
		return NoPiece
	}

	c := Black
	if p.Occupied[White]&bb != 0 {
		c = White
	}

	for pt := Pawn; pt <= King; pt++ {
		if p.Pieces[c][pt]&bb != 0 {
			return NewPiece(pt, c)
		}
	}

	return NoPiece
}

// IsEmpty returns true if the square is empty.
func (p *Position) IsEmpty(sq Square) bool {
	return p.AllOccupied&SquareBB(sq) == 0
}

// SwitchSide hands the move to the other color.
func (p *Position) SwitchSide() {
	p.SideToMove = p.SideToMove.Other()
	p.Hash ^= zobristSideToMove
}

// SelectPieceToMove moves piece from one empty-destination square to
// another if the piece stands on from, belongs to the side to move and can
// reach to. It reports whether the move was made; on false the position is
// unchanged. The side to move is not switched.
func (p *Position) SelectPieceToMove(from, to Square, piece Piece) bool {
	if !p.owns(from, piece) || !to.IsValid() || !p.IsEmpty(to) {
		return false
	}

	var reach Bitboard
	if piece.Type() == Pawn {
		reach = p.pawnPushTargets(from, piece.Color())
	} else {
		reach = Attacks(piece, from, p.AllOccupied)
	}
	if !reach.IsSet(to) {
		return false
	}

	p.movePiece(piece, from, to)
	return true
}

// CapturePiece takes captured on to with piece from from. The captured piece
// must belong to the opponent, must not be a king, and must be attacked by
// piece. It reports whether the capture was made; on false the position is
// unchanged. The side to move is not switched.
func (p *Position) CapturePiece(from, to Square, piece, captured Piece) bool {
	if !p.owns(from, piece) || !to.IsValid() {
		return false
	}
	if captured >= NoPiece || captured.Type() == King || captured.Color() == piece.Color() {
		return false
	}
	if p.PieceAt(to) != captured {
		return false
	}
	if !Attacks(piece, from, p.AllOccupied).IsSet(to) {
		return false
	}

	p.removePiece(captured, to)
	p.movePiece(piece, from, to)
	return true
}

// owns reports whether piece stands on sq and belongs to the side to move.
func (p *Position) owns(sq Square, piece Piece) bool {
	if !sq.IsValid() || piece >= NoPiece {
		return false
	}
	return piece.Color() == p.SideToMove && p.PieceAt(sq) == piece
}

// pawnPushTargets returns the push squares not blocked by any piece. The
// double step needs the square it jumps over to be empty as well.
func (p *Position) pawnPushTargets(sq Square, c Color) Bitboard {
	pushes := PawnPushes(sq, c) &^ p.AllOccupied

	var single Bitboard
	if c == White {
		single = SquareBB(sq).North()
	} else {
		single = SquareBB(sq).South()
	}
	if single&pushes == 0 {
		return Empty
	}
	return pushes
}

// setPiece places a piece on a square.
func (p *Position) setPiece(piece Piece, sq Square) {
	if piece == NoPiece {
		return
	}
	c := piece.Color()
	pt := piece.Type()
	bb := SquareBB(sq)

	p.Pieces[c][pt] |= bb
	p.Occupied[c] |= bb
	p.AllOccupied |= bb
	p.Hash ^= zobristPiece[c][pt][sq]
}

// removePiece removes a known piece from a square.
func (p *Position) removePiece(piece Piece, sq Square) {
	c := piece.Color()
	pt := piece.Type()
	bb := SquareBB(sq)

	p.Pieces[c][pt] &^= bb
	p.Occupied[c] &^= bb
	p.AllOccupied &^= bb
	p.Hash ^= zobristPiece[c][pt][sq]
}

// movePiece moves a known piece between squares; to must be empty.
func (p *Position) movePiece(piece Piece, from, to Square) {
	c := piece.Color()
	pt := piece.Type()
	moveBB := SquareBB(from) | SquareBB(to)

	p.Pieces[c][pt] ^= moveBB
	p.Occupied[c] ^= moveBB
	p.AllOccupied ^= moveBB
	p.Hash ^= zobristPiece[c][pt][from] ^ zobristPiece[c][pt][to]
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			piece := p.PieceAt(NewSquare(file, rank))
			if piece == NoPiece {
				sb.WriteString(". ")
			} else {
				sb.WriteString(piece.String() + " ")
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", p.SideToMove)
	fmt.Fprintf(&sb, "Hash: %016x\n", p.Hash)
	return sb.String()
}

