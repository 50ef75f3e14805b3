package handlers

import (
	"net/http"
)

// NewLogoutHandler returns an HTTP handler for logout.
// Tokens are stateless, so there is nothing to invalidate server-side;
// clients discard their tokens.
// @Summary User logout
// @Tags auth
// @Produce json
// @Success 200 {object} handlers.MessageResponse "Logged out"
// @Router /api/auth/logout [post]
func NewLogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusOK, "Logged out successfully")
	}
}
