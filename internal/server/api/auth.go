package api

import (
	"net/http"
	"time"

	"github.com/crackit-game/crackit/internal/server/services"
	"github.com/crackit-game/crackit/pkg/models"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest

	if err := decodeJSON(r, &req); err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Email == "" {
		respondErrorJSON(w, http.StatusBadRequest, "username and email are required")
		return
	}

	user, err := h.authService.Register(r.Context(), req.Username, req.Email, req.BackupEmail)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, models.RegisterResponse{
		Message: "Account created",
		User:    *user,
	})
}

func (h *AuthHandler) RequestCode(w http.ResponseWriter, r *http.Request) {
	var req models.RequestCodeRequest

	if err := decodeJSON(r, &req); err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" {
		respondErrorJSON(w, http.StatusBadRequest, "username is required")
		return
	}

	expiresIn, err := h.authService.RequestCode(r.Context(), req.Username)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, models.RequestCodeResponse{
		Message:   "Code sent to email",
		ExpiresIn: expiresIn,
	})
}

func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyCodeRequest

	if err := decodeJSON(r, &req); err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Code == "" {
		respondErrorJSON(w, http.StatusBadRequest, "username and code are required")
		return
	}

	session, token, expiresAt, err := h.authService.VerifyCode(r.Context(), req.Username, req.Code)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, models.VerifyCodeResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
		Session:   *session,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetUserClaims(r)
	if claims == nil {
		respondErrorJSON(w, http.StatusUnauthorized, "missing authorization claims")
		return
	}

	if err := h.authService.Logout(r.Context(), claims.Username); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}
