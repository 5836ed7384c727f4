package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/crackit-game/crackit/internal/server/services"
	"github.com/crackit-game/crackit/pkg/models"
	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
)

type LevelHandler struct {
	levelService *services.LevelService
}

func NewLevelHandler(levelService *services.LevelService) *LevelHandler {
	return &LevelHandler{
		levelService: levelService,
	}
}

func (h *LevelHandler) ListLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.levelService.GetAllLevels(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	responses := lo.Map(levels, func(level models.Level, _ int) models.LevelResponse {
		return levelResponse(&level)
	})
	respondJSON(w, http.StatusOK, responses)
}

func (h *LevelHandler) GetCurrentLevel(w http.ResponseWriter, r *http.Request) {
	tier, ok := tierParam(w, r)
	if !ok {
		return
	}

	level, err := h.levelService.GetCurrentLevel(r.Context(), tier)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, levelResponse(level))
}

func (h *LevelHandler) SubmitGuess(w http.ResponseWriter, r *http.Request) {
	claims := GetUserClaims(r)
	if claims == nil {
		respondErrorJSON(w, http.StatusUnauthorized, "missing authorization claims")
		return
	}

	tier, ok := tierParam(w, r)
	if !ok {
		return
	}

	var req models.GuessRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Guess == "" {
		respondErrorJSON(w, http.StatusBadRequest, "guess is required")
		return
	}

	solved, err := h.levelService.SubmitGuess(r.Context(), tier, claims.Username, normalizeGuess(req.Guess))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, models.GuessResponse{Solved: solved})
}

func tierParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	tier, err := strconv.Atoi(chi.URLParam(r, "tier"))
	if err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "tier must be a number")
		return 0, false
	}
	return tier, true
}

// normalizeGuess uppercases the guess and splits it into single
// characters; the comparison downstream is exact.
func normalizeGuess(guess string) []string {
	return strings.Split(strings.ToUpper(strings.TrimSpace(guess)), "")
}
