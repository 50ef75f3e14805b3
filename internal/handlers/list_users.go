package handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/gw-user-service/internal/logger"
	"github.com/sbilibin2017/gw-user-service/internal/models"
)

// UserLister defines the interface for listing users.
type UserLister interface {
	List(ctx context.Context) ([]models.User, int, error)
}

// UsersResponse is the envelope for the user list
// swagger:model UsersResponse
type UsersResponse struct {
	// Always true
	Success bool `json:"success"`

	// Users ordered by creation time descending
	Data []models.User `json:"data"`

	// Number of users returned
	Total int `json:"total"`
}

// NewListUsersHandler returns an HTTP handler listing all users.
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} handlers.UsersResponse "All users plus a count"
// @Failure 401 {object} handlers.ErrorResponse "Missing access token"
// @Failure 403 {object} handlers.ErrorResponse "Invalid or expired token"
// @Router /api/users [get]
func NewListUsersHandler(svc UserLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, total, err := svc.List(r.Context())
		if err != nil {
			logger.Log.Errorw("failed to list users", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusOK, UsersResponse{
			Success: true,
			Data:    users,
			Total:   total,
		})
	}
}
