package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
)

type noopInvalidator struct{}

func (noopInvalidator) Notify(string) {}

type fixture struct {
	db      *gorm.DB
	users   UserService
	posts   PostService
	notifns NotificationService
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Follow{}, &model.Post{},
		&model.Like{}, &model.Comment{}, &model.Notification{},
	))

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	return &fixture{
		db:      db,
		users:   NewUserService(db, userRepo, followRepo, postRepo, noopInvalidator{}),
		posts:   NewPostService(db, postRepo, followRepo, likeRepo, commentRepo, nil, noopInvalidator{}),
		notifns: NewNotificationService(notificationRepo),
	}
}

func (f *fixture) mustUser(t *testing.T, username string) *model.User {
	t.Helper()
	u := &model.User{
		ID:         uuid.New().String(),
		ExternalID: "ext-" + username,
		Name:       username,
		Username:   username,
		Email:      username + "@example.com",
	}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

func (f *fixture) notificationsFor(t *testing.T, userID string) []model.Notification {
	t.Helper()
	var ns []model.Notification
	require.NoError(t, f.db.Where("user_id = ?", userID).Find(&ns).Error)
	return ns
}

var ctx = context.Background()
