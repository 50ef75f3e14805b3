package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-user-service/internal/logger"
	"github.com/sbilibin2017/gw-user-service/internal/models"
	"github.com/sbilibin2017/gw-user-service/internal/services"
)

// UserUpdater defines the interface for updating users.
type UserUpdater interface {
	Update(ctx context.Context, userID uuid.UUID, email, username string) (*models.User, error)
}

// UpdateUserRequest represents the JSON body for user update
// swagger:model UpdateUserRequest
type UpdateUserRequest struct {
	// Email
	// required: true
	// example: john@example.com
	Email string `json:"email"`

	// Username
	// required: true
	// example: john_doe
	Username string `json:"username"`
}

// NewUpdateUserHandler returns an HTTP handler updating a user.
// @Summary Update user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User id"
// @Param updateUserRequest body handlers.UpdateUserRequest true "User update request"
// @Success 200 {object} handlers.UserResponse "Updated user"
// @Failure 400 {object} handlers.ErrorResponse "Missing fields / email or username already taken"
// @Failure 404 {object} handlers.ErrorResponse "User not found"
// @Router /api/users/{id} [put]
func NewUpdateUserHandler(svc UserUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid user id")
			return
		}

		var req UpdateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Email == "" || req.Username == "" {
			writeError(w, http.StatusBadRequest, "Email and username are required")
			return
		}

		user, err := svc.Update(r.Context(), userID, req.Email, req.Username)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUserNotFound):
				writeError(w, http.StatusNotFound, "User not found")
			case errors.Is(err, services.ErrUserAlreadyExists):
				writeError(w, http.StatusBadRequest, "User already exists with this email or username")
			default:
				logger.Log.Errorw("failed to update user", "userID", userID, "err", err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		writeJSON(w, http.StatusOK, UserResponse{Success: true, Data: *user})
	}
}
