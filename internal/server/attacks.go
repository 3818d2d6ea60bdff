package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/hailam/chessmatch/internal/board"
	"github.com/hailam/chessmatch/internal/render"
)

const (
	defaultDiagramSize = 400
	maxDiagramSize     = 2048
)

type attackQuery struct {
	square   board.Square
	piece    board.Piece
	blockers board.Bitboard
}

type attackResponse struct {
	Square   board.Square   `json:"square"`
	Piece    board.Piece    `json:"piece"`
	Blockers string         `json:"blockers"`
	Attacks  string         `json:"attacks"`
	Squares  []board.Square `json:"squares"`
	Pushes   []board.Square `json:"pushes,omitempty"`
}

// parseAttackQuery reads square, piece and blockers from the query string.
// Blockers are a 64-bit mask in any base strconv accepts ("0x..." for hex).
func parseAttackQuery(r *http.Request) (attackQuery, error) {
	q := r.URL.Query()

	sq, err := board.ParseSquare(q.Get("square"))
	if err != nil {
		return attackQuery{}, err
	}
	piece, err := board.ParsePieceCode(q.Get("piece"))
	if err != nil {
		return attackQuery{}, err
	}

	var blockers uint64
	if raw := q.Get("blockers"); raw != "" {
		blockers, err = strconv.ParseUint(raw, 0, 64)
		if err != nil {
			return attackQuery{}, fmt.Errorf("%w: blockers %q", errBadRequest, raw)
		}
	}

	return attackQuery{square: sq, piece: piece, blockers: board.Bitboard(blockers)}, nil
}

func (s *Server) handleAttacks(w http.ResponseWriter, r *http.Request) {
	q, err := parseAttackQuery(r)
	if err != nil {
		s.fail(w, err)
		return
	}

	attacks := board.Attacks(q.piece, q.square, q.blockers)
	resp := attackResponse{
		Square:   q.square,
		Piece:    q.piece,
		Blockers: fmt.Sprintf("%#016x", uint64(q.blockers)),
		Attacks:  fmt.Sprintf("%#016x", uint64(attacks)),
		Squares:  attacks.Squares(),
	}
	if q.piece.Type() == board.Pawn {
		resp.Pushes = board.PawnPushes(q.square, q.piece.Color()).Squares()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAttacksPNG(w http.ResponseWriter, r *http.Request) {
	q, err := parseAttackQuery(r)
	if err != nil {
		s.fail(w, err)
		return
	}

	size := defaultDiagramSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		size, err = strconv.Atoi(raw)
		if err != nil || size < render.MinSize || size > maxDiagramSize {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("size must be between %d and %d", render.MinSize, maxDiagramSize))
			return
		}
	}

	d := render.Diagram{
		Origin:   q.square,
		Piece:    q.piece,
		Attacks:  board.Attacks(q.piece, q.square, q.blockers),
		Blockers: q.blockers,
	}
	img, err := d.Render(size)
	if err != nil {
		s.fail(w, err)
		return
	}

	var buf bytes.Buffer
	if err := render.WritePNG(&buf, img); err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(buf.Bytes())
}
