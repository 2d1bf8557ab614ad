package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/social-feed/internal/model"
)

type CommentRepository interface {
	// GetByID 未命中返回 (nil, nil)
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	UpdateContent(ctx context.Context, id, content string) error
	// ListByPostIDs 帖子集合的全部评论 + 作者摘要，帖内创建时间升序
	ListByPostIDs(ctx context.Context, postIDs []string) ([]model.CommentView, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository { return &commentRepository{db: db} }

func (r *commentRepository) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *commentRepository) UpdateContent(ctx context.Context, id, content string) error {
	return r.db.WithContext(ctx).
		Model(&model.Comment{}).
		Where("id = ?", id).
		Update("content", content).Error
}

func (r *commentRepository) ListByPostIDs(ctx context.Context, postIDs []string) ([]model.CommentView, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	type row struct {
		model.Comment
		AuthorName     string
		AuthorUsername string
		AuthorImage    string
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Table("comments").
		Select("comments.*, users.name AS author_name, users.username AS author_username, users.image AS author_image").
		Joins("JOIN users ON users.id = comments.author_id").
		Where("comments.post_id IN ?", postIDs).
		Order("comments.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	res := make([]model.CommentView, len(rows))
	for i, row := range rows {
		res[i] = model.CommentView{
			Comment: row.Comment,
			Author: model.UserSummary{
				ID:       row.AuthorID,
				Name:     row.AuthorName,
				Username: row.AuthorUsername,
				Image:    row.AuthorImage,
			},
		}
	}
	return res, nil
}
