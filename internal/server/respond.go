package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/hailam/chessmatch/internal/board"
	"github.com/hailam/chessmatch/internal/game"
	"github.com/hailam/chessmatch/internal/storage"
)

var errBadRequest = errors.New("bad request")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps package errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, board.ErrUnknownPieceCode),
		errors.Is(err, board.ErrInvalidSquare),
		errors.Is(err, board.ErrInvalidMove),
		errors.Is(err, board.ErrUnknownColor),
		errors.Is(err, game.ErrInvalidOwners),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrUnknownPlayer),
		errors.Is(err, game.ErrNotYourTurn):
		return http.StatusForbidden
	case errors.Is(err, storage.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrIllegalMove):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// fail answers with the status for err. Internal errors are logged and not
// echoed.
func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Printf("internal error: %v", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
