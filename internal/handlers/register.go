package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-user-service/internal/logger"
	"github.com/sbilibin2017/gw-user-service/internal/models"
	"github.com/sbilibin2017/gw-user-service/internal/services"
)

// Registerer defines the interface that the service must implement.
type Registerer interface {
	Register(ctx context.Context, email, username, password string) (*models.AuthUser, *services.TokenPair, error)
}

// RegisterRequest represents the JSON body for user registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	// Email
	// required: true
	// example: john@example.com
	Email string `json:"email"`

	// Username
	// required: true
	// example: john_doe
	Username string `json:"username"`

	// Password
	// required: true
	// example: secret123
	Password string `json:"password"`
}

// AuthData is the payload returned on successful registration or login
// swagger:model AuthData
type AuthData struct {
	// Public user representation
	User models.AuthUser `json:"user"`

	// Access token, valid for one hour
	Token string `json:"token"`

	// Refresh token, valid for seven days
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse is the envelope for successful authentication
// swagger:model AuthResponse
type AuthResponse struct {
	// Always true
	Success bool `json:"success"`

	// Tokens and user
	Data AuthData `json:"data"`
}

// NewRegisterHandler returns an HTTP handler for user registration.
// @Summary Register a new user
// @Description Creates a new user account with unique email and username and returns an initial token pair.
// @Tags auth
// @Accept json
// @Produce json
// @Param registerRequest body handlers.RegisterRequest true "User registration request"
// @Success 201 {object} handlers.AuthResponse "User successfully registered"
// @Failure 400 {object} handlers.ErrorResponse "Missing or invalid fields / email or username already taken"
// @Router /api/auth/register [post]
func NewRegisterHandler(svc Registerer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Email == "" || req.Username == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "Email, username, and password are required")
			return
		}
		if !validEmail(req.Email) {
			writeError(w, http.StatusBadRequest, "Invalid email address")
			return
		}
		if !validUsername(req.Username) {
			writeError(w, http.StatusBadRequest, "Username must be 3-20 characters of letters, digits, or underscore")
			return
		}

		user, pair, err := svc.Register(r.Context(), req.Email, req.Username, req.Password)
		if err != nil {
			if errors.Is(err, services.ErrUserAlreadyExists) {
				writeError(w, http.StatusBadRequest, "User already exists with this email or username")
				return
			}
			logger.Log.Errorw("registration failed", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusCreated, AuthResponse{
			Success: true,
			Data: AuthData{
				User:         *user,
				Token:        pair.Token,
				RefreshToken: pair.RefreshToken,
			},
		})
	}
}
