package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-user-service/internal/jwt"
	"github.com/sbilibin2017/gw-user-service/internal/logger"
)

// PasswordResetter defines the interface for the reset-password flow.
type PasswordResetter interface {
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// ResetPasswordRequest represents the JSON body for password reset
// swagger:model ResetPasswordRequest
type ResetPasswordRequest struct {
	// Password reset token
	// required: true
	Token string `json:"token"`

	// New password
	// required: true
	NewPassword string `json:"newPassword"`
}

// NewResetPasswordHandler returns an HTTP handler for password reset.
// @Summary Reset password with a token
// @Tags auth
// @Accept json
// @Produce json
// @Param resetPasswordRequest body handlers.ResetPasswordRequest true "Reset password request"
// @Success 200 {object} handlers.MessageResponse "Password reset"
// @Failure 400 {object} handlers.ErrorResponse "Missing fields"
// @Failure 401 {object} handlers.ErrorResponse "Invalid or expired reset token"
// @Router /api/auth/reset-password [post]
func NewResetPasswordHandler(svc PasswordResetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ResetPasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Token == "" || req.NewPassword == "" {
			writeError(w, http.StatusBadRequest, "Token and new password are required")
			return
		}

		if err := svc.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
			if errors.Is(err, jwt.ErrInvalidToken) {
				writeError(w, http.StatusUnauthorized, "Invalid or expired reset token")
				return
			}
			logger.Log.Errorw("reset password failed", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeMessage(w, http.StatusOK, "Password reset successfully")
	}
}
