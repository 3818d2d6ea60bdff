package game

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/hailam/chessmatch/internal/board"
)

const (
	alice PlayerID = "alice"
	bob   PlayerID = "bob"
)

type step struct {
	player   PlayerID
	move     string
	code     string
	captured string
}

func newTestGame(t *testing.T, opts ...Option) (*Game, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	opts = append([]Option{WithLogger(log.New(&buf, "", 0))}, opts...)
	g, err := New("g1", NewOwners(alice, bob), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g, &buf
}

func play(t *testing.T, g *Game, steps ...step) {
	t.Helper()
	for _, s := range steps {
		m, err := board.ParseMove(s.move)
		if err != nil {
			t.Fatalf("ParseMove(%q): %v", s.move, err)
		}
		if s.captured != "" {
			err = g.ApplyCapture(s.player, m.From(), m.To(), s.code, s.captured)
		} else {
			err = g.ApplyMove(s.player, m.From(), m.To(), s.code)
		}
		if err != nil {
			t.Fatalf("%s %s %s: %v", s.player, s.code, s.move, err)
		}
	}
}

func TestNewValidatesOwners(t *testing.T) {
	tests := []struct {
		name   string
		owners Owners
	}{
		{"same player both colors", NewOwners(alice, alice)},
		{"empty id", NewOwners("", bob)},
		{"one player", Owners{alice: board.White}},
		{"both white", Owners{alice: board.White, bob: board.White}},
		{"bad color", Owners{alice: board.White, bob: board.NoColor}},
		{"nil", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New("g", tc.owners); !errors.Is(err, ErrInvalidOwners) {
				t.Errorf("New error = %v, want ErrInvalidOwners", err)
			}
		})
	}
}

func TestNewGame(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	g, err := New("g1", NewOwners(alice, bob), WithClock(func() time.Time { return fixed }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if g.Turn() != board.White {
		t.Errorf("Turn() = %s, want White", g.Turn())
	}
	if g.FEN() != board.StartFEN {
		t.Errorf("FEN() = %q", g.FEN())
	}
	if !g.Options().EnforceCaptureTurn {
		t.Error("EnforceCaptureTurn should default to true")
	}
	if g.Ply() != 0 || len(g.History()) != 0 || len(g.Captured()) != 0 {
		t.Error("new game should have no history")
	}
	if !g.CreatedAt().Equal(fixed) || !g.UpdatedAt().Equal(fixed) {
		t.Errorf("timestamps = %v %v, want %v", g.CreatedAt(), g.UpdatedAt(), fixed)
	}
}

func TestColorOfAndOpponent(t *testing.T) {
	g, _ := newTestGame(t)

	if c, err := g.ColorOf(alice); err != nil || c != board.White {
		t.Errorf("ColorOf(alice) = %v, %v", c, err)
	}
	if c, err := g.ColorOf(bob); err != nil || c != board.Black {
		t.Errorf("ColorOf(bob) = %v, %v", c, err)
	}
	if p, err := g.Opponent(alice); err != nil || p != bob {
		t.Errorf("Opponent(alice) = %q, %v", p, err)
	}
	if p, err := g.Opponent(bob); err != nil || p != alice {
		t.Errorf("Opponent(bob) = %q, %v", p, err)
	}
	if _, err := g.Opponent("mallory"); !errors.Is(err, ErrUnknownPlayer) {
		t.Errorf("Opponent(mallory) error = %v", err)
	}
}

func TestTurnAlternation(t *testing.T) {
	g, _ := newTestGame(t)

	moves := []step{
		{alice, "e2e4", "wP", ""},
		{bob, "e7e5", "bP", ""},
		{alice, "g1f3", "wN", ""},
		{bob, "b8c6", "bN", ""},
		{alice, "f1c4", "wB", ""},
	}
	for i, s := range moves {
		play(t, g, s)
		want := board.White
		if (i+1)%2 == 1 {
			want = board.Black
		}
		if g.Turn() != want {
			t.Fatalf("after %d moves Turn() = %s, want %s", i+1, g.Turn(), want)
		}
	}

	hist := g.History()
	if len(hist) != len(moves) {
		t.Fatalf("history has %d records, want %d", len(hist), len(moves))
	}
	for i, rec := range hist {
		if rec.Ply != i+1 {
			t.Errorf("record %d has ply %d", i, rec.Ply)
		}
		if rec.Piece.Code() != moves[i].code {
			t.Errorf("record %d piece %q, want %q", i, rec.Piece.Code(), moves[i].code)
		}
		if rec.From.String()+rec.To.String() != moves[i].move {
			t.Errorf("record %d is %s%s, want %s", i, rec.From, rec.To, moves[i].move)
		}
		if rec.IsCapture() {
			t.Errorf("record %d marked as capture", i)
		}
	}
	if last := hist[len(hist)-1]; last.FEN != g.FEN() {
		t.Errorf("last record FEN %q differs from game FEN %q", last.FEN, g.FEN())
	}
}

func TestRejectedMoveChangesNothing(t *testing.T) {
	g, logs := newTestGame(t)
	play(t, g, step{alice, "e2e4", "wP", ""})

	before := g.Snapshot()

	tests := []struct {
		name   string
		player PlayerID
		move   string
		code   string
		want   error
	}{
		{"unknown code", bob, "e7e5", "bX", ErrUnknownPieceCode},
		{"empty code", bob, "e7e5", "", ErrUnknownPieceCode},
		{"unknown player", "mallory", "e7e5", "bP", ErrUnknownPlayer},
		{"not your turn", alice, "d2d4", "wP", ErrNotYourTurn},
		{"wrong piece on square", bob, "e7e5", "bN", ErrIllegalMove},
		{"moving opponent piece", bob, "d2d4", "wP", ErrIllegalMove},
		{"pawn too far", bob, "e7e4", "bP", ErrIllegalMove},
		{"blocked slider", bob, "f8c5", "bB", ErrIllegalMove},
		{"destination occupied", bob, "b8d7", "bN", ErrIllegalMove},
		{"empty origin", bob, "e5e4", "bP", ErrIllegalMove},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := board.ParseMove(tc.move)
			if err != nil {
				t.Fatalf("ParseMove: %v", err)
			}
			err = g.ApplyMove(tc.player, m.From(), m.To(), tc.code)
			if !errors.Is(err, tc.want) {
				t.Fatalf("ApplyMove error = %v, want %v", err, tc.want)
			}

			after := g.Snapshot()
			if after.FEN != before.FEN || len(after.History) != len(before.History) || g.Turn() != board.Black {
				t.Errorf("rejected move changed state: %q -> %q", before.FEN, after.FEN)
			}
		})
	}

	if !strings.Contains(logs.String(), "rejected move") {
		t.Errorf("illegal moves were not logged: %q", logs.String())
	}
}

func TestCapture(t *testing.T) {
	g, _ := newTestGame(t)
	play(t, g,
		step{alice, "e2e4", "wP", ""},
		step{bob, "d7d5", "bP", ""},
		step{alice, "e4d5", "wP", "bP"},
	)

	if g.Turn() != board.Black {
		t.Errorf("Turn() = %s after capture, want Black", g.Turn())
	}
	if got := g.Captured(); len(got) != 1 || got[0] != board.BlackPawn {
		t.Errorf("Captured() = %v, want [bP]", got)
	}
	last := g.History()[2]
	if !last.IsCapture() || last.Captured != board.BlackPawn || last.Color != board.White {
		t.Errorf("last record = %+v", last)
	}

	pos := g.Position()
	if pos.PieceAt(board.D5) != board.WhitePawn || !pos.IsEmpty(board.E4) {
		t.Errorf("board after exd5:%s", pos)
	}

	// Queen recaptures along the open file.
	play(t, g, step{bob, "d8d5", "bQ", "wP"})
	if got := g.Captured(); len(got) != 2 || got[1] != board.WhitePawn {
		t.Errorf("Captured() = %v, want [bP wP]", got)
	}
}

func TestCaptureRejections(t *testing.T) {
	g, logs := newTestGame(t)
	play(t, g,
		step{alice, "e2e4", "wP", ""},
		step{bob, "d7d5", "bP", ""},
	)
	before := g.FEN()

	tests := []struct {
		name     string
		player   PlayerID
		move     string
		code     string
		captured string
		want     error
	}{
		{"unknown capturer", alice, "e4d5", "wZ", "bP", ErrUnknownPieceCode},
		{"unknown victim", alice, "e4d5", "wP", "b?", ErrUnknownPieceCode},
		{"not your turn", bob, "d5e4", "bP", "wP", ErrNotYourTurn},
		{"unknown player", "mallory", "e4d5", "wP", "bP", ErrUnknownPlayer},
		{"wrong victim code", alice, "e4d5", "wP", "bN", ErrIllegalMove},
		{"own piece", alice, "d1d2", "wQ", "wP", ErrIllegalMove},
		{"not attacked", alice, "e4e5", "wP", "bP", ErrIllegalMove},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := board.ParseMove(tc.move)
			if err != nil {
				t.Fatalf("ParseMove: %v", err)
			}
			err = g.ApplyCapture(tc.player, m.From(), m.To(), tc.code, tc.captured)
			if !errors.Is(err, tc.want) {
				t.Fatalf("ApplyCapture error = %v, want %v", err, tc.want)
			}
			if g.FEN() != before || g.Turn() != board.White || len(g.Captured()) != 0 {
				t.Errorf("rejected capture changed state")
			}
		})
	}

	if !strings.Contains(logs.String(), "rejected capture") {
		t.Errorf("illegal captures were not logged: %q", logs.String())
	}
}

func TestCaptureKingRejected(t *testing.T) {
	g, err := NewFromFEN("k", "4k3/8/8/8/8/8/8/4R2K w - - 0 1", NewOwners(alice, bob), WithLogger(log.New(&bytes.Buffer{}, "", 0)))
	if err != nil {
		t.Fatalf("NewFromFEN: %v", err)
	}
	if err := g.ApplyCapture(alice, board.E1, board.E8, "wR", "bK"); !errors.Is(err, ErrIllegalMove) {
		t.Errorf("capturing the king: err = %v, want ErrIllegalMove", err)
	}
}

func TestRelaxedCaptureTurn(t *testing.T) {
	g, _ := newTestGame(t, WithEnforceCaptureTurn(false))
	play(t, g,
		step{alice, "e2e4", "wP", ""},
		step{bob, "d7d5", "bP", ""},
	)

	// Any caller may submit the capture, including one not in the game.
	if err := g.ApplyCapture("mallory", board.E4, board.D5, "wP", "bP"); err != nil {
		t.Fatalf("relaxed capture by outsider: %v", err)
	}
	if g.Turn() != board.Black {
		t.Errorf("Turn() = %s, want Black", g.Turn())
	}

	// The board still only accepts the side to move.
	if err := g.ApplyCapture(alice, board.D1, board.D5, "wQ", "wP"); !errors.Is(err, ErrIllegalMove) {
		t.Errorf("white capture on Black's turn: err = %v, want ErrIllegalMove", err)
	}

	// Moves keep the strict checks.
	if err := g.ApplyMove(alice, board.D2, board.D4, "wP"); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("ApplyMove out of turn: err = %v, want ErrNotYourTurn", err)
	}
}

func TestSnapshotRestore(t *testing.T) {
	g, _ := newTestGame(t, WithEnforceCaptureTurn(false))
	play(t, g,
		step{alice, "e2e4", "wP", ""},
		step{bob, "d7d5", "bP", ""},
		step{alice, "e4d5", "wP", "bP"},
	)

	data, err := json.Marshal(g.Snapshot())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	r, err := Restore(snap)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if r.ID() != g.ID() || r.FEN() != g.FEN() || r.Turn() != g.Turn() || r.Hash() != g.Hash() {
		t.Errorf("restored game differs: %q %s vs %q %s", r.FEN(), r.Turn(), g.FEN(), g.Turn())
	}
	if r.Options() != g.Options() {
		t.Errorf("options %+v, want %+v", r.Options(), g.Options())
	}
	if len(r.History()) != 3 || r.History()[2] != g.History()[2] {
		t.Errorf("history not restored: %+v", r.History())
	}
	if len(r.Captured()) != 1 || r.Captured()[0] != board.BlackPawn {
		t.Errorf("captured not restored: %v", r.Captured())
	}
	if !r.CreatedAt().Equal(g.CreatedAt()) {
		t.Errorf("CreatedAt %v, want %v", r.CreatedAt(), g.CreatedAt())
	}

	// The restored game keeps playing.
	if err := r.ApplyMove(bob, board.D8, board.D6, "bQ"); err != nil {
		t.Fatalf("ApplyMove after restore: %v", err)
	}
	if r.Turn() != board.White || r.Ply() != 4 {
		t.Errorf("after restore and move: turn %s ply %d", r.Turn(), r.Ply())
	}
}

func TestRestoreRejectsBadSnapshots(t *testing.T) {
	if _, err := Restore(Snapshot{ID: "x", FEN: "garbage", Owners: NewOwners(alice, bob)}); !errors.Is(err, ErrInvalidState) {
		t.Errorf("bad FEN: err = %v, want ErrInvalidState", err)
	}
	// Stored owners were validated on the way in, so bad ones mean a corrupt entry.
	_, err := Restore(Snapshot{ID: "x", FEN: board.StartFEN})
	if !errors.Is(err, ErrInvalidState) || errors.Is(err, ErrInvalidOwners) {
		t.Errorf("no owners: err = %v, want ErrInvalidState only", err)
	}
}
