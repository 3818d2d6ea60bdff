package board

import (
	"strings"
	"testing"

	chess "github.com/corentings/chess/v2"
)

func mustFEN(t *testing.T, fen string) *Position {
	t.Helper()
	pos, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

func TestStartPosition(t *testing.T) {
	pos := NewPosition()

	if pos.SideToMove != White {
		t.Errorf("side to move = %s, want White", pos.SideToMove)
	}
	if pos.AllOccupied.PopCount() != 32 {
		t.Errorf("start position has %d pieces, want 32", pos.AllOccupied.PopCount())
	}
	if pos.PieceAt(E1) != WhiteKing || pos.PieceAt(D8) != BlackQueen || pos.PieceAt(G1) != WhiteKnight {
		t.Errorf("unexpected back rank:%s", pos)
	}
	if pos.PieceAt(E4) != NoPiece || !pos.IsEmpty(E4) {
		t.Errorf("e4 should be empty")
	}
	if pos.Hash != pos.ComputeHash() {
		t.Errorf("hash %016x, recomputed %016x", pos.Hash, pos.ComputeHash())
	}
}

func TestSelectPieceToMove(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		from  Square
		to    Square
		piece Piece
		ok    bool
	}{
		{"pawn single step", StartFEN, E2, E3, WhitePawn, true},
		{"pawn double step", StartFEN, E2, E4, WhitePawn, true},
		{"pawn triple step", StartFEN, E2, E5, WhitePawn, false},
		{"pawn sideways", StartFEN, E2, F3, WhitePawn, false},
		{"knight jump over pawns", StartFEN, G1, F3, WhiteKnight, true},
		{"knight to own piece", StartFEN, G1, E2, WhiteKnight, false},
		{"bishop blocked", StartFEN, C1, E3, WhiteBishop, false},
		{"wrong piece on square", StartFEN, G1, F3, WhiteBishop, false},
		{"empty origin", StartFEN, E4, E5, WhitePawn, false},
		{"black piece on white turn", StartFEN, E7, E5, BlackPawn, false},
		{"black pawn on black turn", "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b - - 0 1", E7, E5, BlackPawn, true},
		{"double step over piece", "rnbqkbnr/pppppppp/8/8/8/4N3/PPPPPPPP/R1BQKBNR w - - 0 1", E2, E4, WhitePawn, false},
		{"double step onto piece", "rnbqkbnr/pppp1ppp/8/8/4p3/8/PPPPPPPP/RNBQKBNR w - - 0 1", E2, E4, WhitePawn, false},
		{"pawn push onto enemy", "4k3/8/8/8/8/4p3/4P3/4K3 w - - 0 1", E2, E3, WhitePawn, false},
		{"rook along open file", "4k3/8/8/8/8/8/8/R3K3 w - - 0 1", A1, A8, WhiteRook, true},
		{"rook through piece", "4k3/8/8/8/p7/8/8/R3K3 w - - 0 1", A1, A8, WhiteRook, false},
		{"queen diagonal", "4k3/8/8/8/8/8/8/3QK3 w - - 0 1", D1, H5, WhiteQueen, true},
		{"king one step", "4k3/8/8/8/8/8/8/4K3 w - - 0 1", E1, D2, WhiteKing, true},
		{"king two steps", "4k3/8/8/8/8/8/8/4K3 w - - 0 1", E1, E3, WhiteKing, false},
		{"invalid destination", StartFEN, G1, NoSquare, WhiteKnight, false},
		{"unknown piece", StartFEN, G1, F3, NoPiece, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustFEN(t, tc.fen)
			before := *pos

			ok := pos.SelectPieceToMove(tc.from, tc.to, tc.piece)
			if ok != tc.ok {
				t.Fatalf("SelectPieceToMove(%s, %s, %q) = %v, want %v", tc.from, tc.to, tc.piece.Code(), ok, tc.ok)
			}

			if !ok {
				if *pos != before {
					t.Fatalf("rejected move changed the position")
				}
				return
			}
			if pos.PieceAt(tc.to) != tc.piece || !pos.IsEmpty(tc.from) {
				t.Errorf("piece not moved:%s", pos)
			}
			if pos.SideToMove != before.SideToMove {
				t.Errorf("side to move switched by the oracle")
			}
			if pos.Hash != pos.ComputeHash() {
				t.Errorf("incremental hash out of step")
			}
		})
	}
}

func TestCapturePiece(t *testing.T) {
	const scandi = "rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w - - 0 1"

	tests := []struct {
		name     string
		fen      string
		from     Square
		to       Square
		piece    Piece
		captured Piece
		ok       bool
	}{
		{"pawn takes pawn", scandi, E4, D5, WhitePawn, BlackPawn, true},
		{"wrong captured piece", scandi, E4, D5, WhitePawn, BlackKnight, false},
		{"pawn captures forward", "4k3/8/8/8/4p3/4P3/8/4K3 w - - 0 1", E3, E4, WhitePawn, BlackPawn, false},
		{"capture own piece", StartFEN, G1, E2, WhiteKnight, WhitePawn, false},
		{"capture empty square", StartFEN, G1, F3, WhiteKnight, BlackPawn, false},
		{"rook takes behind blocker", "4k3/r7/8/p7/8/8/8/R3K3 w - - 0 1", A1, A7, WhiteRook, BlackRook, false},
		{"rook takes first blocker", "4k3/r7/8/p7/8/8/8/R3K3 w - - 0 1", A1, A5, WhiteRook, BlackPawn, true},
		{"king cannot be captured", "4k3/8/8/8/8/8/8/R3K3 w - - 0 1", A1, A8, WhiteRook, BlackKing, false},
		{"king cannot be captured on e8", "4k3/8/8/8/8/8/8/4RK2 w - - 0 1", E1, E8, WhiteRook, BlackKing, false},
		{"knight capture", "4k3/8/8/3p4/8/4N3/8/4K3 w - - 0 1", E3, D5, WhiteKnight, BlackPawn, true},
		{"black captures on black turn", "4k3/8/8/3p4/4P3/8/8/4K3 b - - 0 1", D5, E4, BlackPawn, WhitePawn, true},
		{"black captures on white turn", "4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1", D5, E4, BlackPawn, WhitePawn, false},
		{"no captured piece", scandi, E4, D5, WhitePawn, NoPiece, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustFEN(t, tc.fen)
			before := *pos

			ok := pos.CapturePiece(tc.from, tc.to, tc.piece, tc.captured)
			if ok != tc.ok {
				t.Fatalf("CapturePiece(%s, %s, %q, %q) = %v, want %v",
					tc.from, tc.to, tc.piece.Code(), tc.captured.Code(), ok, tc.ok)
			}

			if !ok {
				if *pos != before {
					t.Fatalf("rejected capture changed the position")
				}
				return
			}
			if pos.PieceAt(tc.to) != tc.piece || !pos.IsEmpty(tc.from) {
				t.Errorf("capture not applied:%s", pos)
			}
			if pos.AllOccupied.PopCount() != before.AllOccupied.PopCount()-1 {
				t.Errorf("piece count %d, want %d", pos.AllOccupied.PopCount(), before.AllOccupied.PopCount()-1)
			}
			if pos.Hash != pos.ComputeHash() {
				t.Errorf("incremental hash out of step")
			}
		})
	}
}

func TestSwitchSide(t *testing.T) {
	pos := NewPosition()
	pos.SwitchSide()
	if pos.SideToMove != Black {
		t.Fatalf("side to move = %s, want Black", pos.SideToMove)
	}
	if pos.Hash != pos.ComputeHash() {
		t.Errorf("hash not updated on side switch")
	}
	pos.SwitchSide()
	if pos.SideToMove != White {
		t.Fatalf("side to move = %s, want White", pos.SideToMove)
	}
}

// Every legal quiet move or plain capture reported by an independent rules
// implementation must be accepted by the oracle. The oracle ignores checks,
// so the reverse does not hold.
func TestOracleAcceptsLegalMoves(t *testing.T) {
	fens := []string{
		StartFEN,
		"r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b - - 0 1",
		"rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w - - 0 1",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w - - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	}

	for _, fen := range fens {
		opt, err := chess.FEN(fen)
		if err != nil {
			t.Fatalf("chess.FEN(%q): %v", fen, err)
		}
		g := chess.NewGame(opt)
		pos := mustFEN(t, fen)

		for _, mv := range g.ValidMoves() {
			if mv.HasTag(chess.KingSideCastle) || mv.HasTag(chess.QueenSideCastle) ||
				mv.HasTag(chess.EnPassant) || mv.Promo() != chess.NoPieceType {
				continue
			}

			from, to := Square(mv.S1()), Square(mv.S2())
			piece := pos.PieceAt(from)
			cp := pos.Copy()

			var ok bool
			if mv.HasTag(chess.Capture) {
				ok = cp.CapturePiece(from, to, piece, cp.PieceAt(to))
			} else {
				ok = cp.SelectPieceToMove(from, to, piece)
			}
			if !ok {
				t.Errorf("%s: oracle rejected legal move %s%s (%q)", fen, from, to, piece.Code())
			}
		}
	}
}

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R b - - 0 1",
		"8/8/8/8/8/8/8/K6k w - - 0 1",
	}

	for _, fen := range fens {
		pos := mustFEN(t, fen)
		if got := pos.FEN(); got != fen {
			t.Errorf("FEN() = %q, want %q", got, fen)
		}

		// The exported FEN must be readable by other chess tooling.
		opt, err := chess.FEN(pos.FEN())
		if err != nil {
			t.Fatalf("chess.FEN(%q): %v", pos.FEN(), err)
		}
		g := chess.NewGame(opt)
		placement := strings.Fields(fen)[0]
		if got := g.Position().Board().String(); got != placement {
			t.Errorf("chess board = %q, want %q", got, placement)
		}
	}
}

func TestParseFENIgnoresCastlingFields(t *testing.T) {
	pos := mustFEN(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	if pos.SideToMove != Black {
		t.Errorf("side to move = %s, want Black", pos.SideToMove)
	}
	if pos.PieceAt(E4) != WhitePawn {
		t.Errorf("e4 = %q, want wP", pos.PieceAt(E4).Code())
	}
	if pos.Hash != pos.ComputeHash() {
		t.Errorf("hash mismatch after parse")
	}
}

func TestParseFENErrors(t *testing.T) {
	bad := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w - - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNRR w - - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBN w - - 0 1",
		"rnbqkbnr/ppppxppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x - - 0 1",
	}

	for _, fen := range bad {
		if _, err := ParseFEN(fen); err == nil {
			t.Errorf("ParseFEN(%q) succeeded, want error", fen)
		}
	}
}
