package board

// Pre-computed attack tables for non-sliding pieces
var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard // [Color][Square]
	pawnPushes    [2][64]Bitboard // [Color][Square] - single and double push targets
)

func init() {
	for sq := A1; sq <= H8; sq++ {
		knightAttacks[sq] = knightAttacksFrom(sq)
		kingAttacks[sq] = kingAttacksFrom(sq)
		for c := White; c <= Black; c++ {
			pawnAttacks[c][sq] = pawnAttacksFrom(sq, c)
			pawnPushes[c][sq] = pawnPushesFrom(sq, c)
		}
	}
	initMagics() // From magic.go
}

// pawnPushesFrom includes the double step only from the starting side of the
// A3 (White) or H6 (Black) boundary.
func pawnPushesFrom(sq Square, c Color) Bitboard {
	bb := SquareBB(sq)

	if c == White {
		pushes := bb << 8
		if sq < A3 {
			pushes |= bb << 16
		}
		return pushes
	}

	pushes := bb >> 8
	if sq > H6 {
		pushes |= bb >> 16
	}
	return pushes
}

func pawnAttacksFrom(sq Square, c Color) Bitboard {
	bb := SquareBB(sq)

	if c == White {
		return (bb<<9)&NotFileA | (bb<<7)&NotFileH
	}
	return (bb>>9)&NotFileH | (bb>>7)&NotFileA
}

func knightAttacksFrom(sq Square) Bitboard {
	bb := SquareBB(sq)

	// Knight moves: 2+1 or 1+2 in any direction
	attacks := Empty

	// Up/down 2, left/right 1
	attacks |= (bb << 17) & NotFileA // NNE
	attacks |= (bb << 15) & NotFileH // NNW
	attacks |= (bb >> 17) & NotFileH // SSW
	attacks |= (bb >> 15) & NotFileA // SSE

	// Up/down 1, left/right 2
	attacks |= (bb << 10) & NotFileAB // ENE
	attacks |= (bb << 6) & NotFileGH  // WNW
	attacks |= (bb >> 10) & NotFileGH // WSW
	attacks |= (bb >> 6) & NotFileAB  // ESE

	return attacks
}

func kingAttacksFrom(sq Square) Bitboard {
	bb := SquareBB(sq)

	attacks := bb.North() | bb.South()
	attacks |= bb.East() | bb.West()
	attacks |= bb.NorthEast() | bb.NorthWest()
	attacks |= bb.SouthEast() | bb.SouthWest()

	return attacks
}

// KnightAttacks returns the knight attack bitboard for a square.
func KnightAttacks(sq Square) Bitboard {
	return knightAttacks[sq]
}

// KingAttacks returns the king attack bitboard for a square.
func KingAttacks(sq Square) Bitboard {
	return kingAttacks[sq]
}

// PawnAttacks returns the pawn attack bitboard for a square and color.
func PawnAttacks(sq Square, c Color) Bitboard {
	return pawnAttacks[c][sq]
}

// PawnPushes returns the forward push targets for a pawn, including the
// double step from its starting side of the board. Occupancy is not checked.
func PawnPushes(sq Square, c Color) Bitboard {
	return pawnPushes[c][sq]
}

// KnightAttackTable returns the knight attacks for all 64 squares.
func KnightAttackTable() [64]Bitboard {
	return knightAttacks
}

// KingAttackTable returns the king attacks for all 64 squares.
func KingAttackTable() [64]Bitboard {
	return kingAttacks
}

// PawnAttackTable returns the pawn captures of one color for all 64 squares.
func PawnAttackTable(c Color) [64]Bitboard {
	return pawnAttacks[c]
}

// PawnPushTable returns the pawn pushes of one color for all 64 squares.
func PawnPushTable(c Color) [64]Bitboard {
	return pawnPushes[c]
}

// BishopAttacks returns the bishop attack bitboard for a square with given occupancy.
func BishopAttacks(sq Square, occupied Bitboard) Bitboard {
	return getBishopAttacks(sq, occupied)
}

// RookAttacks returns the rook attack bitboard for a square with given occupancy.
func RookAttacks(sq Square, occupied Bitboard) Bitboard {
	return getRookAttacks(sq, occupied)
}

// QueenAttacks returns the queen attack bitboard for a square with given occupancy.
func QueenAttacks(sq Square, occupied Bitboard) Bitboard {
	return BishopAttacks(sq, occupied) | RookAttacks(sq, occupied)
}

// Attacks returns the squares attacked by piece from sq. Pawns report their
// capture set, not their pushes.
func Attacks(piece Piece, sq Square, occupied Bitboard) Bitboard {
	switch piece.Type() {
	case Pawn:
		return PawnAttacks(sq, piece.Color())
	case Knight:
		return KnightAttacks(sq)
	case Bishop:
		return BishopAttacks(sq, occupied)
	case Rook:
		return RookAttacks(sq, occupied)
	case Queen:
		return QueenAttacks(sq, occupied)
	case King:
		return KingAttacks(sq)
	}
	return Empty
}
