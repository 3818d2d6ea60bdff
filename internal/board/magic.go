package board

import "math/bits"

// Magic bitboard lookup for sliding piece attacks.
// Magic numbers are searched at start-up from a fixed seed; every candidate
// is accepted only if it hashes all relevant occupancies without a harmful
// collision, so lookups always agree with SlidingAttacks.

// Magic holds the magic bitboard data for a single square.
type Magic struct {
	Mask   Bitboard // Relevant occupancy mask (excludes edges)
	Magic  uint64   // Magic multiplier
	Shift  uint8    // Bits to shift right
	Offset uint32   // Index into attack table
}

var (
	bishopMagics [64]Magic
	rookMagics   [64]Magic

	// Attack tables (fancy magic bitboards)
	bishopTable [5248]Bitboard   // Total bishop attack table entries
	rookTable   [102400]Bitboard // Total rook attack table entries
)

const magicSeed = 0x5A17C0DE2024BEEF

func initMagics() {
	rng := newPRNG(magicSeed)
	initSliderMagics(Bishop, bishopMagics[:], bishopTable[:], rng)
	initSliderMagics(Rook, rookMagics[:], rookTable[:], rng)
}

func initSliderMagics(kind PieceType, magics []Magic, table []Bitboard, rng *prng) {
	var offset uint32
	for sq := A1; sq <= H8; sq++ {
		mask := sliderMask(sq, kind)
		n := mask.PopCount()
		entries := uint32(1) << n

		slot := table[offset : offset+entries]
		magics[sq] = Magic{
			Mask:   mask,
			Magic:  findMagic(sq, kind, mask, slot, rng),
			Shift:  uint8(64 - n),
			Offset: offset,
		}
		offset += entries
	}
}

// sliderMask returns the relevant occupancy mask: the empty-board rays with
// the final square of each ray removed, since a piece there never blocks
// anything further.
func sliderMask(sq Square, kind PieceType) Bitboard {
	if kind == Bishop {
		return SlidingAttacks(sq, Bishop, Empty) &^ (Rank1 | Rank8 | FileA | FileH)
	}

	file, rank := sq.File(), sq.Rank()
	var mask Bitboard

	for f := 1; f < 7; f++ {
		if f != file {
			mask |= SquareBB(NewSquare(f, rank))
		}
	}
	for r := 1; r < 7; r++ {
		if r != rank {
			mask |= SquareBB(NewSquare(file, r))
		}
	}

	return mask
}

// findMagic fills slot with the attack sets for every subset of mask and
// returns the multiplier that indexes them.
func findMagic(sq Square, kind PieceType, mask Bitboard, slot []Bitboard, rng *prng) uint64 {
	n := mask.PopCount()
	shift := uint(64 - n)

	occupancies := make([]Bitboard, 0, len(slot))
	reference := make([]Bitboard, 0, len(slot))

	// Carry-Rippler enumeration of all subsets of mask.
	for subset := Empty; ; {
		occupancies = append(occupancies, subset)
		reference = append(reference, SlidingAttacks(sq, kind, subset))
		subset = (subset - mask) & mask
		if subset == 0 {
			break
		}
	}

	used := make([]int, len(slot))
	for attempt := 1; ; attempt++ {
		magic := rng.sparse()
		if bits.OnesCount64((uint64(mask)*magic)&0xFF00000000000000) < 6 {
			continue
		}

		ok := true
		for i, occ := range occupancies {
			idx := (uint64(occ) * magic) >> shift
			if used[idx] != attempt {
				used[idx] = attempt
				slot[idx] = reference[i]
			} else if slot[idx] != reference[i] {
				ok = false
				break
			}
		}
		if ok {
			return magic
		}
	}
}

// getBishopAttacks returns bishop attacks using magic bitboards.
func getBishopAttacks(sq Square, occupied Bitboard) Bitboard {
	m := &bishopMagics[sq]
	idx := ((uint64(occupied) & uint64(m.Mask)) * m.Magic) >> m.Shift
	return bishopTable[m.Offset+uint32(idx)]
}

// getRookAttacks returns rook attacks using magic bitboards.
func getRookAttacks(sq Square, occupied Bitboard) Bitboard {
	m := &rookMagics[sq]
	idx := ((uint64(occupied) & uint64(m.Mask)) * m.Magic) >> m.Shift
	return rookTable[m.Offset+uint32(idx)]
}
