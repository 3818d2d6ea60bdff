package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/hailam/chessmatch/internal/board"
	"github.com/hailam/chessmatch/internal/game"
	"github.com/hailam/chessmatch/internal/storage"
)

type createGameRequest struct {
	White              game.PlayerID `json:"white"`
	Black              game.PlayerID `json:"black"`
	EnforceCaptureTurn *bool         `json:"enforceCaptureTurn,omitempty"`
}

type moveRequest struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Piece    string `json:"piece"`
	Captured string `json:"captured,omitempty"`
}

// gameState is the wire form of a game.
type gameState struct {
	ID        string            `json:"id"`
	FEN       string            `json:"fen"`
	Turn      board.Color       `json:"turn"`
	White     game.PlayerID     `json:"white"`
	Black     game.PlayerID     `json:"black"`
	Options   game.Options      `json:"options"`
	Ply       int               `json:"ply"`
	History   []game.MoveRecord `json:"history"`
	Captured  []board.Piece     `json:"captured"`
	Hash      string            `json:"hash"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func stateOf(g *game.Game) gameState {
	owners := g.Owners()
	white, _ := owners.Player(board.White)
	black, _ := owners.Player(board.Black)

	return gameState{
		ID:        g.ID(),
		FEN:       g.FEN(),
		Turn:      g.Turn(),
		White:     white,
		Black:     black,
		Options:   g.Options(),
		Ply:       g.Ply(),
		History:   g.History(),
		Captured:  g.Captured(),
		Hash:      fmt.Sprintf("%016x", g.Hash()),
		CreatedAt: g.CreatedAt(),
		UpdatedAt: g.UpdatedAt(),
	}
}

func etag(g *game.Game) string {
	return `"` + strconv.Itoa(g.Ply()) + "-" + fmt.Sprintf("%016x", g.Hash()) + `"`
}

func playerOf(r *http.Request) game.PlayerID {
	return game.PlayerID(r.Header.Get(PlayerHeader))
}

func (s *Server) loadGame(id string) (*game.Game, error) {
	return s.store.LoadGame(id, game.WithLogger(s.logger))
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, err)
		return
	}

	enforce := s.cfg.EnforceCaptureTurn
	if req.EnforceCaptureTurn != nil {
		enforce = *req.EnforceCaptureTurn
	}

	id, err := s.store.NextGameID()
	if err != nil {
		s.fail(w, err)
		return
	}
	g, err := game.New(id, game.NewOwners(req.White, req.Black),
		game.WithEnforceCaptureTurn(enforce),
		game.WithLogger(s.logger),
	)
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := s.store.SaveGame(g); err != nil {
		s.fail(w, err)
		return
	}
	s.record(storage.OutcomeGameCreated)

	w.Header().Set("Location", "/games/"+id)
	w.Header().Set("ETag", etag(g))
	writeJSON(w, http.StatusCreated, stateOf(g))
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.ListGames()
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"games": ids})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.loadGame(mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err)
		return
	}

	tag := etag(g)
	if r.Header.Get("If-None-Match") == tag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", tag)
	writeJSON(w, http.StatusOK, stateOf(g))
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	unlock := s.lockGame(id)
	defer unlock()

	g, err := s.loadGame(id)
	if err != nil {
		s.fail(w, err)
		return
	}
	if _, err := g.ColorOf(playerOf(r)); err != nil {
		s.fail(w, err)
		return
	}
	if err := s.store.DeleteGame(id); err != nil {
		s.fail(w, err)
		return
	}
	s.hub.drop(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	g, err := s.loadGame(mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err)
		return
	}
	owners := g.Owners()
	player, _ := owners.Player(g.Turn())
	writeJSON(w, http.StatusOK, map[string]any{"turn": g.Turn(), "player": player})
}

func (s *Server) handleOpponent(w http.ResponseWriter, r *http.Request) {
	g, err := s.loadGame(mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err)
		return
	}
	opp, err := g.Opponent(playerOf(r))
	if err != nil {
		s.fail(w, err)
		return
	}
	c, _ := g.ColorOf(opp)
	writeJSON(w, http.StatusOK, map[string]any{"opponent": opp, "color": c})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, false)
}

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, true)
}

// mutate runs one move or capture: load, apply, save, broadcast, all under
// the game's lock. Nothing is saved when the game rejects the attempt.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, capture bool) {
	var req moveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, err)
		return
	}
	from, err := board.ParseSquare(req.From)
	if err != nil {
		s.fail(w, err)
		return
	}
	to, err := board.ParseSquare(req.To)
	if err != nil {
		s.fail(w, err)
		return
	}

	id := mux.Vars(r)["id"]
	unlock := s.lockGame(id)
	defer unlock()

	g, err := s.loadGame(id)
	if err != nil {
		s.fail(w, err)
		return
	}

	player := playerOf(r)
	outcome := storage.OutcomeMove
	if capture {
		outcome = storage.OutcomeCapture
		err = g.ApplyCapture(player, from, to, req.Piece, req.Captured)
	} else {
		err = g.ApplyMove(player, from, to, req.Piece)
	}
	if err != nil {
		s.record(storage.OutcomeRejected)
		s.fail(w, err)
		return
	}

	if err := s.store.SaveGame(g); err != nil {
		s.fail(w, err)
		return
	}
	s.record(outcome)

	state := stateOf(g)
	s.hub.broadcast(id, state)

	w.Header().Set("ETag", etag(g))
	writeJSON(w, http.StatusOK, state)
}
