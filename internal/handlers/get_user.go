package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-user-service/internal/logger"
	"github.com/sbilibin2017/gw-user-service/internal/models"
	"github.com/sbilibin2017/gw-user-service/internal/services"
)

// UserGetter defines the interface for fetching a single user.
type UserGetter interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// UserResponse is the envelope for a single user
// swagger:model UserResponse
type UserResponse struct {
	// Always true
	Success bool `json:"success"`

	// The user
	Data models.User `json:"data"`
}

// NewGetUserHandler returns an HTTP handler fetching a user by id.
// @Summary Get user by id
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User id"
// @Success 200 {object} handlers.UserResponse "The user"
// @Failure 400 {object} handlers.ErrorResponse "Invalid user id"
// @Failure 404 {object} handlers.ErrorResponse "User not found"
// @Router /api/users/{id} [get]
func NewGetUserHandler(svc UserGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid user id")
			return
		}

		user, err := svc.Get(r.Context(), userID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				writeError(w, http.StatusNotFound, "User not found")
				return
			}
			logger.Log.Errorw("failed to get user", "userID", userID, "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusOK, UserResponse{Success: true, Data: *user})
	}
}
