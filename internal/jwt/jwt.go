package jwt

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token lifetimes. Access and reset tokens are short-lived, refresh
// tokens cover a week.
const (
	AccessTokenTTL  = time.Hour
	RefreshTokenTTL = 7 * 24 * time.Hour
	ResetTokenTTL   = time.Hour
)

// TypePasswordReset marks single-purpose password-reset tokens.
// Tokens without this discriminator are rejected on redemption.
const TypePasswordReset = "password_reset"

// ErrInvalidToken is returned for any signature, expiry, or shape
// failure. Callers do not get to distinguish the cases.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carried by every token issued by this service.
// Username is present on access tokens only, Type on reset tokens only.
type Claims struct {
	UserID   uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Username string    `json:"username,omitempty"`
	Role     string    `json:"role,omitempty"`
	Type     string    `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// JWT issues and verifies the three token kinds. Access and reset
// tokens share the access secret; refresh tokens use a distinct one so
// the kinds cannot be replayed for each other.
type JWT struct {
	accessSecret  []byte
	refreshSecret []byte
}

// New creates a JWT service. Both secrets must be configured.
func New(accessSecret, refreshSecret string) (*JWT, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("jwt secrets not configured")
	}
	return &JWT{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
	}, nil
}

// GenerateAccess issues an access token carrying id, email, username
// and role.
func (j *JWT) GenerateAccess(ctx context.Context, userID uuid.UUID, email, username, role string) (string, error) {
	return j.sign(j.accessSecret, Claims{
		UserID:   userID,
		Email:    email,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(AccessTokenTTL)),
		},
	})
}

// GenerateRefresh issues a refresh token carrying id and email.
func (j *JWT) GenerateRefresh(ctx context.Context, userID uuid.UUID, email string) (string, error) {
	return j.sign(j.refreshSecret, Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(RefreshTokenTTL)),
		},
	})
}

// GenerateReset issues a password-reset token with the type discriminator.
func (j *JWT) GenerateReset(ctx context.Context, userID uuid.UUID, email string) (string, error) {
	return j.sign(j.accessSecret, Claims{
		UserID: userID,
		Email:  email,
		Type:   TypePasswordReset,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ResetTokenTTL)),
		},
	})
}

// ParseAccess verifies an access token and returns its claims.
func (j *JWT) ParseAccess(ctx context.Context, tokenString string) (*Claims, error) {
	return j.parse(j.accessSecret, tokenString)
}

// ParseRefresh verifies a refresh token and returns its claims.
func (j *JWT) ParseRefresh(ctx context.Context, tokenString string) (*Claims, error) {
	return j.parse(j.refreshSecret, tokenString)
}

// ParseReset verifies a password-reset token. Tokens signed with the
// right secret but missing the password_reset type are rejected.
func (j *JWT) ParseReset(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := j.parse(j.accessSecret, tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != TypePasswordReset {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// TokenFromRequest extracts the bearer token from the Authorization header.
func (j *JWT) TokenFromRequest(ctx context.Context, r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header missing")
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", errors.New("invalid authorization header format")
	}

	return parts[1], nil
}

func (j *JWT) sign(secret []byte, claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (j *JWT) parse(secret []byte, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
