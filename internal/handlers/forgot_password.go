package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sbilibin2017/gw-user-service/internal/logger"
)

// PasswordForgetter defines the interface for the forgot-password flow.
type PasswordForgetter interface {
	ForgotPassword(ctx context.Context, email string) error
}

// ForgotPasswordRequest represents the JSON body for a reset request
// swagger:model ForgotPasswordRequest
type ForgotPasswordRequest struct {
	// Email
	// required: true
	// example: john@example.com
	Email string `json:"email"`
}

// NewForgotPasswordHandler returns an HTTP handler for password reset requests.
// The response is identical whether or not the email exists.
// @Summary Request a password reset
// @Tags auth
// @Accept json
// @Produce json
// @Param forgotPasswordRequest body handlers.ForgotPasswordRequest true "Forgot password request"
// @Success 200 {object} handlers.MessageResponse "Generic confirmation"
// @Failure 400 {object} handlers.ErrorResponse "Missing email"
// @Router /api/auth/forgot-password [post]
func NewForgotPasswordHandler(svc PasswordForgetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ForgotPasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Email == "" {
			writeError(w, http.StatusBadRequest, "Email is required")
			return
		}

		if err := svc.ForgotPassword(r.Context(), req.Email); err != nil {
			logger.Log.Errorw("forgot password failed", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeMessage(w, http.StatusOK, "If the email exists, a password reset link has been sent")
	}
}
