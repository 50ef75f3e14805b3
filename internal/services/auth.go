package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-user-service/internal/jwt"
	"github.com/sbilibin2017/gw-user-service/internal/logger"
	"github.com/sbilibin2017/gw-user-service/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// Error variables
var (
	ErrUserAlreadyExists  = errors.New("user already exists with this email or username")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrUserNotFound       = errors.New("user not found")
)

// bcryptCost is the work factor used for all password hashes.
const bcryptCost = 12

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByEmail(ctx context.Context, email string) (*models.UserDB, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*models.UserDB, error)
	GetByEmailOrUsername(ctx context.Context, email, username string) (*models.UserDB, error)
	List(ctx context.Context) ([]models.UserDB, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Insert(ctx context.Context, email, username, passwordHash string) (*models.UserDB, error)
	Update(ctx context.Context, userID uuid.UUID, email, username string) (*models.UserDB, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	TouchLastLogin(ctx context.Context, userID uuid.UUID) error
	Delete(ctx context.Context, userID uuid.UUID) (bool, error)
}

// TokenIssuer defines the token operations the auth flow needs.
type TokenIssuer interface {
	GenerateAccess(ctx context.Context, userID uuid.UUID, email, username, role string) (string, error)
	GenerateRefresh(ctx context.Context, userID uuid.UUID, email string) (string, error)
	GenerateReset(ctx context.Context, userID uuid.UUID, email string) (string, error)
	ParseRefresh(ctx context.Context, tokenString string) (*jwt.Claims, error)
	ParseReset(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// EventPublisher publishes domain events. Implementations are
// best-effort and must never fail the calling request.
type EventPublisher interface {
	Publish(ctx context.Context, event models.UserEvent)
}

// TokenPair is an access/refresh token pair issued on authentication.
type TokenPair struct {
	Token        string
	RefreshToken string
}

// AuthService handles registration, login and the password lifecycle.
type AuthService struct {
	reader UserReader
	writer UserWriter
	tokens TokenIssuer
	events EventPublisher
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(reader UserReader, writer UserWriter, tokens TokenIssuer, events EventPublisher) *AuthService {
	return &AuthService{
		reader: reader,
		writer: writer,
		tokens: tokens,
		events: events,
	}
}

// Register creates a new user and issues an initial token pair.
func (svc *AuthService) Register(ctx context.Context, email, username, password string) (*models.AuthUser, *TokenPair, error) {
	existing, err := svc.reader.GetByEmailOrUsername(ctx, email, username)
	if err != nil {
		logger.Log.Errorw("failed to check user exists", "err", err)
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, ErrUserAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return nil, nil, err
	}

	user, err := svc.writer.Insert(ctx, email, username, string(hashedPassword))
	if err != nil {
		if isConflict(err) {
			return nil, nil, ErrUserAlreadyExists
		}
		logger.Log.Errorw("failed to save user", "err", err)
		return nil, nil, err
	}

	pair, err := svc.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	svc.events.Publish(ctx, newEvent(models.EventUserRegistered, user.UserID, map[string]any{
		"email":    user.Email,
		"username": user.Username,
	}))

	logger.Log.Infow("new user registered", "email", user.Email)

	public := user.AuthPublic()
	return &public, pair, nil
}

// Login authenticates a user by email and password. A missing user and
// a wrong password are indistinguishable to the caller.
func (svc *AuthService) Login(ctx context.Context, email, password string) (*models.AuthUser, *TokenPair, error) {
	user, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, nil, ErrAccountDeactivated
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if err := svc.writer.TouchLastLogin(ctx, user.UserID); err != nil {
		logger.Log.Errorw("failed to update last login", "userID", user.UserID, "err", err)
		return nil, nil, err
	}

	pair, err := svc.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	svc.events.Publish(ctx, newEvent(models.EventUserLogin, user.UserID, map[string]any{
		"email": user.Email,
	}))

	logger.Log.Infow("user logged in", "email", user.Email)

	public := user.AuthPublic()
	return &public, pair, nil
}

// Refresh reissues both tokens from a valid refresh token.
func (svc *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := svc.tokens.ParseRefresh(ctx, refreshToken)
	if err != nil {
		return nil, jwt.ErrInvalidToken
	}

	token, err := svc.tokens.GenerateAccess(ctx, claims.UserID, claims.Email, claims.Username, claims.Role)
	if err != nil {
		logger.Log.Errorw("failed to generate access token", "err", err)
		return nil, err
	}

	newRefresh, err := svc.tokens.GenerateRefresh(ctx, claims.UserID, claims.Email)
	if err != nil {
		logger.Log.Errorw("failed to generate refresh token", "err", err)
		return nil, err
	}

	return &TokenPair{Token: token, RefreshToken: newRefresh}, nil
}

// ForgotPassword issues a password-reset token when the email exists.
// It succeeds either way so callers cannot probe for accounts.
func (svc *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return err
	}
	if user == nil {
		return nil
	}

	// Delivery is out of band; the token is not persisted.
	if _, err := svc.tokens.GenerateReset(ctx, user.UserID, user.Email); err != nil {
		logger.Log.Errorw("failed to generate reset token", "err", err)
		return err
	}

	logger.Log.Infow("password reset requested", "email", email)
	return nil
}

// ResetPassword redeems a password-reset token and stores a new hash.
func (svc *AuthService) ResetPassword(ctx context.Context, tokenString, newPassword string) error {
	claims, err := svc.tokens.ParseReset(ctx, tokenString)
	if err != nil {
		return jwt.ErrInvalidToken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return err
	}

	if err := svc.writer.UpdatePassword(ctx, claims.UserID, string(hashedPassword)); err != nil {
		logger.Log.Errorw("failed to update password", "userID", claims.UserID, "err", err)
		return err
	}

	svc.events.Publish(ctx, newEvent(models.EventPasswordReset, claims.UserID, nil))

	logger.Log.Infow("password reset completed", "userID", claims.UserID)
	return nil
}

func (svc *AuthService) issueTokens(ctx context.Context, user *models.UserDB) (*TokenPair, error) {
	token, err := svc.tokens.GenerateAccess(ctx, user.UserID, user.Email, user.Username, user.Role)
	if err != nil {
		logger.Log.Errorw("failed to generate access token", "err", err)
		return nil, err
	}

	refreshToken, err := svc.tokens.GenerateRefresh(ctx, user.UserID, user.Email)
	if err != nil {
		logger.Log.Errorw("failed to generate refresh token", "err", err)
		return nil, err
	}

	return &TokenPair{Token: token, RefreshToken: refreshToken}, nil
}
