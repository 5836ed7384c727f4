package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/crackit-game/crackit/internal/shared"
	"github.com/crackit-game/crackit/pkg/models"
)

func writeJSON(w http.ResponseWriter, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(data)
}

func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, data)
}

func respondErrorJSON(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, models.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

// respondError maps the service error vocabulary onto HTTP statuses.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		respondErrorJSON(w, http.StatusNotFound, err.Error())
	case errors.Is(err, shared.ErrUsernameTaken):
		respondErrorJSON(w, http.StatusConflict, err.Error())
	case errors.Is(err, shared.ErrCodeExpired), errors.Is(err, shared.ErrInvalidCode):
		respondErrorJSON(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, shared.ErrValidation):
		respondErrorJSON(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrLevelCoolingDown):
		respondErrorJSON(w, http.StatusConflict, err.Error())
	default:
		respondErrorJSON(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// levelResponse redacts a level for the wire: the solution never leaves
// the server, only its length.
func levelResponse(level *models.Level) models.LevelResponse {
	resp := models.LevelResponse{
		ID:           level.ID,
		Tier:         level.Tier,
		Length:       len(level.Solution),
		Tries:        level.Tries,
		Participants: level.Participants,
		Solver:       level.Solver,
	}
	if level.Delay != nil {
		delay := level.Delay.UTC().Format(time.RFC3339)
		resp.Delay = &delay
	}
	return resp
}
