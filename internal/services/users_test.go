package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-user-service/internal/models"
	"github.com/sbilibin2017/gw-user-service/internal/repositories"
	"github.com/sbilibin2017/gw-user-service/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestUserService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("returns public users and count", func(t *testing.T) {
		mockReader := services.NewMockUserReader(ctrl)
		svc := services.NewUserService(mockReader, services.NewMockUserWriter(ctrl), services.NewMockEventPublisher(ctrl))

		rows := []models.UserDB{
			{UserID: uuid.New(), Email: "a@b.c", Username: "a", PasswordHash: "hash", CreatedAt: time.Now()},
			{UserID: uuid.New(), Email: "b@b.c", Username: "b", PasswordHash: "hash", CreatedAt: time.Now()},
		}
		mockReader.EXPECT().List(gomock.Any()).Return(rows, nil)

		users, total, err := svc.List(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, users, 2)
		assert.Equal(t, rows[0].UserID, users[0].ID)
	})

	t.Run("empty list", func(t *testing.T) {
		mockReader := services.NewMockUserReader(ctrl)
		svc := services.NewUserService(mockReader, services.NewMockUserWriter(ctrl), services.NewMockEventPublisher(ctrl))

		mockReader.EXPECT().List(gomock.Any()).Return(nil, nil)

		users, total, err := svc.List(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, 0, total)
		assert.Empty(t, users)
	})

	t.Run("reader error", func(t *testing.T) {
		mockReader := services.NewMockUserReader(ctrl)
		svc := services.NewUserService(mockReader, services.NewMockUserWriter(ctrl), services.NewMockEventPublisher(ctrl))

		mockReader.EXPECT().List(gomock.Any()).Return(nil, errors.New("db error"))

		_, _, err := svc.List(context.Background())
		assert.EqualError(t, err, "db error")
	})
}

func TestUserService_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()

	t.Run("found", func(t *testing.T) {
		mockReader := services.NewMockUserReader(ctrl)
		svc := services.NewUserService(mockReader, services.NewMockUserWriter(ctrl), services.NewMockEventPublisher(ctrl))

		mockReader.EXPECT().
			GetByID(gomock.Any(), userID).
			Return(&models.UserDB{UserID: userID, Email: "a@b.c", Username: "a"}, nil)

		user, err := svc.Get(context.Background(), userID)
		assert.NoError(t, err)
		assert.Equal(t, userID, user.ID)
	})

	t.Run("not found", func(t *testing.T) {
		mockReader := services.NewMockUserReader(ctrl)
		svc := services.NewUserService(mockReader, services.NewMockUserWriter(ctrl), services.NewMockEventPublisher(ctrl))

		mockReader.EXPECT().GetByID(gomock.Any(), userID).Return(nil, nil)

		user, err := svc.Get(context.Background(), userID)
		assert.ErrorIs(t, err, services.ErrUserNotFound)
		assert.Nil(t, user)
	})
}

func TestUserService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("successful create publishes event", func(t *testing.T) {
		mockReader := services.NewMockUserReader(ctrl)
		mockWriter := services.NewMockUserWriter(ctrl)
		mockEvents := services.NewMockEventPublisher(ctrl)
		svc := services.NewUserService(mockReader, mockWriter, mockEvents)

		stored := &models.UserDB{UserID: uuid.New(), Email: "a@b.c", Username: "alice"}
		mockReader.EXPECT().GetByEmailOrUsername(gomock.Any(), "a@b.c", "alice").Return(nil, nil)
		mockWriter.EXPECT().Insert(gomock.Any(), "a@b.c", "alice", gomock.Any()).Return(stored, nil)
		mockEvents.EXPECT().Publish(gomock.Any(), gomock.Any())

		user, err := svc.Create(context.Background(), "a@b.c", "alice", "pass123")
		assert.NoError(t, err)
		assert.Equal(t, stored.UserID, user.ID)
	})

	t.Run("duplicate email or username", func(t *testing.T) {
		mockReader := services.NewMockUserReader(ctrl)
		svc := services.NewUserService(mockReader, services.NewMockUserWriter(ctrl), services.NewMockEventPublisher(ctrl))

		mockReader.EXPECT().
			GetByEmailOrUsername(gomock.Any(), "a@b.c", "alice").
			Return(&models.UserDB{UserID: uuid.New()}, nil)

		user, err := svc.Create(context.Background(), "a@b.c", "alice", "pass123")
		assert.ErrorIs(t, err, services.ErrUserAlreadyExists)
		assert.Nil(t, user)
	})

	t.Run("insert race maps to already exists", func(t *testing.T) {
		mockReader := services.NewMockUserReader(ctrl)
		mockWriter := services.NewMockUserWriter(ctrl)
		svc := services.NewUserService(mockReader, mockWriter, services.NewMockEventPublisher(ctrl))

		mockReader.EXPECT().GetByEmailOrUsername(gomock.Any(), "a@b.c", "alice").Return(nil, nil)
		mockWriter.EXPECT().Insert(gomock.Any(), "a@b.c", "alice", gomock.Any()).Return(nil, repositories.ErrUniqueViolation)

		_, err := svc.Create(context.Background(), "a@b.c", "alice", "pass123")
		assert.ErrorIs(t, err, services.ErrUserAlreadyExists)
	})
}

func TestUserService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()

	t.Run("successful update publishes event", func(t *testing.T) {
		mockWriter := services.NewMockUserWriter(ctrl)
		mockEvents := services.NewMockEventPublisher(ctrl)
		svc := services.NewUserService(services.NewMockUserReader(ctrl), mockWriter, mockEvents)

		mockWriter.EXPECT().
			Update(gomock.Any(), userID, "new@b.c", "newname").
			Return(&models.UserDB{UserID: userID, Email: "new@b.c", Username: "newname"}, nil)
		mockEvents.EXPECT().Publish(gomock.Any(), gomock.Any())

		user, err := svc.Update(context.Background(), userID, "new@b.c", "newname")
		assert.NoError(t, err)
		assert.Equal(t, "new@b.c", user.Email)
	})

	t.Run("not found", func(t *testing.T) {
		mockWriter := services.NewMockUserWriter(ctrl)
		svc := services.NewUserService(services.NewMockUserReader(ctrl), mockWriter, services.NewMockEventPublisher(ctrl))

		mockWriter.EXPECT().Update(gomock.Any(), userID, "new@b.c", "newname").Return(nil, nil)

		user, err := svc.Update(context.Background(), userID, "new@b.c", "newname")
		assert.ErrorIs(t, err, services.ErrUserNotFound)
		assert.Nil(t, user)
	})

	t.Run("conflict", func(t *testing.T) {
		mockWriter := services.NewMockUserWriter(ctrl)
		svc := services.NewUserService(services.NewMockUserReader(ctrl), mockWriter, services.NewMockEventPublisher(ctrl))

		mockWriter.EXPECT().
			Update(gomock.Any(), userID, "taken@b.c", "taken").
			Return(nil, repositories.ErrUniqueViolation)

		_, err := svc.Update(context.Background(), userID, "taken@b.c", "taken")
		assert.ErrorIs(t, err, services.ErrUserAlreadyExists)
	})
}

func TestUserService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()

	t.Run("successful delete publishes event", func(t *testing.T) {
		mockWriter := services.NewMockUserWriter(ctrl)
		mockEvents := services.NewMockEventPublisher(ctrl)
		svc := services.NewUserService(services.NewMockUserReader(ctrl), mockWriter, mockEvents)

		mockWriter.EXPECT().Delete(gomock.Any(), userID).Return(true, nil)
		mockEvents.EXPECT().Publish(gomock.Any(), gomock.Any())

		assert.NoError(t, svc.Delete(context.Background(), userID))
	})

	t.Run("not found", func(t *testing.T) {
		mockWriter := services.NewMockUserWriter(ctrl)
		svc := services.NewUserService(services.NewMockUserReader(ctrl), mockWriter, services.NewMockEventPublisher(ctrl))

		mockWriter.EXPECT().Delete(gomock.Any(), userID).Return(false, nil)

		assert.ErrorIs(t, svc.Delete(context.Background(), userID), services.ErrUserNotFound)
	})
}
