package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-user-service/internal/logger"
	"github.com/sbilibin2017/gw-user-service/internal/models"
	"github.com/sbilibin2017/gw-user-service/internal/repositories"
	"golang.org/x/crypto/bcrypt"
)

// isConflict reports whether a store error means a duplicate unique field.
func isConflict(err error) bool {
	return errors.Is(err, repositories.ErrUniqueViolation)
}

func newEvent(eventType string, userID uuid.UUID, data map[string]any) models.UserEvent {
	return models.UserEvent{
		Type:      eventType,
		UserID:    userID.String(),
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// UserService implements the protected CRUD operations on users.
type UserService struct {
	reader UserReader
	writer UserWriter
	events EventPublisher
}

// NewUserService creates a new UserService instance.
func NewUserService(reader UserReader, writer UserWriter, events EventPublisher) *UserService {
	return &UserService{
		reader: reader,
		writer: writer,
		events: events,
	}
}

// List returns all users ordered by creation time descending, plus a count.
func (svc *UserService) List(ctx context.Context) ([]models.User, int, error) {
	rows, err := svc.reader.List(ctx)
	if err != nil {
		logger.Log.Errorw("failed to list users", "err", err)
		return nil, 0, err
	}

	users := make([]models.User, 0, len(rows))
	for i := range rows {
		users = append(users, rows[i].Public())
	}
	return users, len(users), nil
}

// Get returns a single user by id.
func (svc *UserService) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := svc.reader.GetByID(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to get user", "userID", userID, "err", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	public := user.Public()
	return &public, nil
}

// Create inserts a new user with a hashed password.
func (svc *UserService) Create(ctx context.Context, email, username, password string) (*models.User, error) {
	existing, err := svc.reader.GetByEmailOrUsername(ctx, email, username)
	if err != nil {
		logger.Log.Errorw("failed to check user exists", "err", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return nil, err
	}

	user, err := svc.writer.Insert(ctx, email, username, string(hashedPassword))
	if err != nil {
		if isConflict(err) {
			return nil, ErrUserAlreadyExists
		}
		logger.Log.Errorw("failed to save user", "err", err)
		return nil, err
	}

	svc.events.Publish(ctx, newEvent(models.EventUserCreated, user.UserID, map[string]any{
		"email":    user.Email,
		"username": user.Username,
	}))

	public := user.Public()
	return &public, nil
}

// Update changes email and username of an existing user.
func (svc *UserService) Update(ctx context.Context, userID uuid.UUID, email, username string) (*models.User, error) {
	user, err := svc.writer.Update(ctx, userID, email, username)
	if err != nil {
		if isConflict(err) {
			return nil, ErrUserAlreadyExists
		}
		logger.Log.Errorw("failed to update user", "userID", userID, "err", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	svc.events.Publish(ctx, newEvent(models.EventUserUpdated, user.UserID, map[string]any{
		"email":    user.Email,
		"username": user.Username,
	}))

	public := user.Public()
	return &public, nil
}

// Delete removes a user by id.
func (svc *UserService) Delete(ctx context.Context, userID uuid.UUID) error {
	deleted, err := svc.writer.Delete(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to delete user", "userID", userID, "err", err)
		return err
	}
	if !deleted {
		return ErrUserNotFound
	}

	svc.events.Publish(ctx, newEvent(models.EventUserDeleted, userID, nil))
	return nil
}
