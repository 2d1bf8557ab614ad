package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/social-feed/internal/model"
)

type LikeRepository interface {
	Exists(ctx context.Context, userID, postID string) (bool, error)
	Delete(ctx context.Context, userID, postID string) error
	// ListByPostIDs 帖子集合的全部点赞（feed 批量装配用）
	ListByPostIDs(ctx context.Context, postIDs []string) ([]*model.Like, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository { return &likeRepository{db: db} }

func (r *likeRepository) Exists(ctx context.Context, userID, postID string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *likeRepository) Delete(ctx context.Context, userID, postID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&model.Like{}).Error
}

func (r *likeRepository) ListByPostIDs(ctx context.Context, postIDs []string) ([]*model.Like, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var res []*model.Like
	err := r.db.WithContext(ctx).Where("post_id IN ?", postIDs).Find(&res).Error
	return res, err
}
