package board

// Sliding attacks computed by ray casting over the supplied blockers. These
// are the reference results; the magic tables in magic.go are built from
// them and must agree for every square and occupancy.

// SlidingAttacks returns the squares reachable by a rook, bishop or queen on
// sq. Each ray includes the first blocked square and stops there. Other
// piece types return Empty.
func SlidingAttacks(sq Square, kind PieceType, blockers Bitboard) Bitboard {
	switch kind {
	case Rook:
		return rookRays(sq, blockers)
	case Bishop:
		return bishopRays(sq, blockers)
	case Queen:
		return rookRays(sq, blockers) | bishopRays(sq, blockers)
	}
	return Empty
}

func rookRays(sq Square, blockers Bitboard) Bitboard {
	var attacks Bitboard
	file, rank := sq.File(), sq.Rank()

	// Up
	for r := rank + 1; r <= 7; r++ {
		s := SquareBB(NewSquare(file, r))
		attacks |= s
		if blockers&s != 0 {
			break
		}
	}

	// Down
	for r := rank - 1; r >= 0; r-- {
		s := SquareBB(NewSquare(file, r))
		attacks |= s
		if blockers&s != 0 {
			break
		}
	}

	// Right
	for f := file + 1; f <= 7; f++ {
		s := SquareBB(NewSquare(f, rank))
		attacks |= s
		if blockers&s != 0 {
			break
		}
	}

	// Left
	for f := file - 1; f >= 0; f-- {
		s := SquareBB(NewSquare(f, rank))
		attacks |= s
		if blockers&s != 0 {
			break
		}
	}

	return attacks
}

// bishopRays walks rank by rank and derives the file from the distance
// travelled, halting a ray as soon as the file leaves the board.
func bishopRays(sq Square, blockers Bitboard) Bitboard {
	var attacks Bitboard
	file, rank := sq.File(), sq.Rank()

	for _, df := range [2]int{1, -1} {
		// Up
		for r := rank + 1; r <= 7; r++ {
			f := file + df*(r-rank)
			if f < 0 || f > 7 {
				break
			}
			s := SquareBB(NewSquare(f, r))
			attacks |= s
			if blockers&s != 0 {
				break
			}
		}

		// Down
		for r := rank - 1; r >= 0; r-- {
			f := file + df*(rank-r)
			if f < 0 || f > 7 {
				break
			}
			s := SquareBB(NewSquare(f, r))
			attacks |= s
			if blockers&s != 0 {
				break
			}
		}
	}

	return attacks
}
