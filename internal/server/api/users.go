package api

import (
	"net/http"
	"time"

	"github.com/crackit-game/crackit/internal/server/services"
	"github.com/crackit-game/crackit/pkg/models"
	"github.com/samber/lo"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// Leaderboard returns all users already ranked.
func (h *UserHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.Leaderboard(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	entries := lo.Map(users, func(user models.User, i int) models.LeaderboardEntry {
		entry := models.LeaderboardEntry{
			Rank:     i + 1,
			Username: user.Username,
			Won:      user.Won,
			Tries:    user.Tries,
			Online:   user.Online,
		}
		if user.LastSeen != nil {
			entry.LastSeen = user.LastSeen.UTC().Format(time.RFC3339)
		}
		return entry
	})

	respondJSON(w, http.StatusOK, entries)
}

func (h *UserHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	claims := GetUserClaims(r)
	if claims == nil {
		respondErrorJSON(w, http.StatusUnauthorized, "missing authorization claims")
		return
	}

	if err := h.userService.Heartbeat(r.Context(), claims.Username); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}
