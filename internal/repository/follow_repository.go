package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/social-feed/internal/model"
)

type FollowRepository interface {
	Create(ctx context.Context, followerID, followeeID string) error
	Delete(ctx context.Context, followerID, followeeID string) error
	Exists(ctx context.Context, followerID, followeeID string) (bool, error)
	// FolloweeIDs 某用户关注的全部账号 ID（hop 1）
	FolloweeIDs(ctx context.Context, followerID string) ([]string, error)
	// FolloweeIDsOf 一组账号各自关注的账号 ID 并集，去重（hop 2）
	FolloweeIDsOf(ctx context.Context, followerIDs []string) ([]string, error)
	ListFollowing(ctx context.Context, followerID string, offset, limit int) ([]*model.User, error)
	ListFollowers(ctx context.Context, followeeID string, offset, limit int) ([]*model.User, error)
	CountFollowing(ctx context.Context, followerID string) (int64, error)
	CountFollowers(ctx context.Context, followeeID string) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository { return &followRepository{db: db} }

func (r *followRepository) Create(ctx context.Context, followerID, followeeID string) error {
	f := &model.Follow{ID: uuid.New().String(), FollowerID: followerID, FolloweeID: followeeID}
	// 幂等：重复关注不报错
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(f).Error
}

func (r *followRepository) Delete(ctx context.Context, followerID, followeeID string) error {
	return r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&model.Follow{}).Error
}

func (r *followRepository) Exists(ctx context.Context, followerID, followeeID string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *followRepository) FolloweeIDs(ctx context.Context, followerID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Select("followee_id").
		Where("follower_id = ?", followerID).
		Scan(&ids).Error
	return ids, err
}

func (r *followRepository) FolloweeIDsOf(ctx context.Context, followerIDs []string) ([]string, error) {
	if len(followerIDs) == 0 {
		return nil, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Distinct("followee_id").
		Where("follower_id IN ?", followerIDs).
		Scan(&ids).Error
	return ids, err
}

func (r *followRepository) ListFollowing(ctx context.Context, followerID string, offset, limit int) ([]*model.User, error) {
	var res []*model.User
	err := r.db.WithContext(ctx).
		Table("follows").
		Select("users.*").
		Joins("JOIN users ON users.id = follows.followee_id").
		Where("follows.follower_id = ?", followerID).
		Order("follows.created_at DESC").
		Offset(offset).Limit(limit).
		Scan(&res).Error
	return res, err
}

func (r *followRepository) ListFollowers(ctx context.Context, followeeID string, offset, limit int) ([]*model.User, error) {
	var res []*model.User
	err := r.db.WithContext(ctx).
		Table("follows").
		Select("users.*").
		Joins("JOIN users ON users.id = follows.follower_id").
		Where("follows.followee_id = ?", followeeID).
		Order("follows.created_at DESC").
		Offset(offset).Limit(limit).
		Scan(&res).Error
	return res, err
}

func (r *followRepository) CountFollowing(ctx context.Context, followerID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("follower_id = ?", followerID).Count(&cnt).Error
	return cnt, err
}

func (r *followRepository) CountFollowers(ctx context.Context, followeeID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("followee_id = ?", followeeID).Count(&cnt).Error
	return cnt, err
}
