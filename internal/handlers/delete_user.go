package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-user-service/internal/logger"
	"github.com/sbilibin2017/gw-user-service/internal/services"
)

// UserDeleter defines the interface for deleting users.
type UserDeleter interface {
	Delete(ctx context.Context, userID uuid.UUID) error
}

// NewDeleteUserHandler returns an HTTP handler deleting a user.
// @Summary Delete user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User id"
// @Success 200 {object} handlers.MessageResponse "User deleted"
// @Failure 400 {object} handlers.ErrorResponse "Invalid user id"
// @Failure 404 {object} handlers.ErrorResponse "User not found"
// @Router /api/users/{id} [delete]
func NewDeleteUserHandler(svc UserDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid user id")
			return
		}

		if err := svc.Delete(r.Context(), userID); err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				writeError(w, http.StatusNotFound, "User not found")
				return
			}
			logger.Log.Errorw("failed to delete user", "userID", userID, "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeMessage(w, http.StatusOK, "User deleted successfully")
	}
}
