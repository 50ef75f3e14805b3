package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-user-service/internal/jwt"
	"github.com/sbilibin2017/gw-user-service/internal/logger"
	"github.com/sbilibin2017/gw-user-service/internal/services"
)

// Refresher defines the interface that the token refresh service must implement.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

// RefreshRequest represents the JSON body for token refresh
// swagger:model RefreshRequest
type RefreshRequest struct {
	// Refresh token obtained at login or registration
	// required: true
	RefreshToken string `json:"refreshToken"`
}

// RefreshData carries the reissued token pair
// swagger:model RefreshData
type RefreshData struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshResponse is the envelope for a successful refresh
// swagger:model RefreshResponse
type RefreshResponse struct {
	Success bool        `json:"success"`
	Data    RefreshData `json:"data"`
}

// NewRefreshHandler returns an HTTP handler for token refresh.
// @Summary Refresh tokens
// @Description Verifies a refresh token and reissues both tokens.
// @Tags auth
// @Accept json
// @Produce json
// @Param refreshRequest body handlers.RefreshRequest true "Refresh request"
// @Success 200 {object} handlers.RefreshResponse "New token pair"
// @Failure 400 {object} handlers.ErrorResponse "Missing refresh token"
// @Failure 401 {object} handlers.ErrorResponse "Invalid refresh token"
// @Router /api/auth/refresh [post]
func NewRefreshHandler(svc Refresher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RefreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.RefreshToken == "" {
			writeError(w, http.StatusBadRequest, "Refresh token is required")
			return
		}

		pair, err := svc.Refresh(r.Context(), req.RefreshToken)
		if err != nil {
			if errors.Is(err, jwt.ErrInvalidToken) {
				writeError(w, http.StatusUnauthorized, "Invalid refresh token")
				return
			}
			logger.Log.Errorw("token refresh failed", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusOK, RefreshResponse{
			Success: true,
			Data: RefreshData{
				Token:        pair.Token,
				RefreshToken: pair.RefreshToken,
			},
		})
	}
}
