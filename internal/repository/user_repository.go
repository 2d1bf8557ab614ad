package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/social-feed/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// ListRecent 按账号创建时间倒序，排除 excludeID
	ListRecent(ctx context.Context, excludeID string, limit int) ([]*model.User, error)
	// ListByIDsRecent 取给定 ID 集合内的账号，按创建时间倒序，最多 limit 条
	ListByIDsRecent(ctx context.Context, ids []string, limit int) ([]*model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepository{db: db} }

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *userRepository) GetByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	return r.getOne(ctx, "external_id = ?", externalID)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, "username = ?", username)
}

// getOne 未命中返回 (nil, nil)，由 service 决定是否视为错误
func (r *userRepository) getOne(ctx context.Context, query string, arg interface{}) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) ListRecent(ctx context.Context, excludeID string, limit int) ([]*model.User, error) {
	var res []*model.User
	q := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Find(&res).Error
	return res, err
}

func (r *userRepository) ListByIDsRecent(ctx context.Context, ids []string, limit int) ([]*model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var res []*model.User
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at DESC").
		Limit(limit).
		Find(&res).Error
	return res, err
}
