package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/social-feed/internal/model"
)

type NotificationRepository interface {
	// ListByUser 某用户收到的通知，最新在前，含触发者摘要与关联帖子
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.NotificationView, error)
	MarkRead(ctx context.Context, userID string, ids []string) error
	CountUnread(ctx context.Context, userID string) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.NotificationView, error) {
	type row struct {
		model.Notification
		CreatorName     string
		CreatorUsername string
		CreatorImage    string
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Table("notifications").
		Select("notifications.*, users.name AS creator_name, users.username AS creator_username, users.image AS creator_image").
		Joins("JOIN users ON users.id = notifications.creator_id").
		Where("notifications.user_id = ?", userID).
		Order("notifications.created_at DESC").
		Offset(offset).Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	// 批量带出关联帖子
	postIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.PostID != "" {
			postIDs = append(postIDs, row.PostID)
		}
	}
	posts := map[string]*model.Post{}
	if len(postIDs) > 0 {
		var ps []*model.Post
		if err := r.db.WithContext(ctx).Where("id IN ?", postIDs).Find(&ps).Error; err != nil {
			return nil, err
		}
		for _, p := range ps {
			posts[p.ID] = p
		}
	}

	res := make([]model.NotificationView, len(rows))
	for i, row := range rows {
		res[i] = model.NotificationView{
			Notification: row.Notification,
			Creator: model.UserSummary{
				ID:       row.CreatorID,
				Name:     row.CreatorName,
				Username: row.CreatorUsername,
				Image:    row.CreatorImage,
			},
			Post: posts[row.PostID],
		}
	}
	return res, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID string, ids []string) error {
	q := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ?", userID)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	return q.Update("read", true).Error
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&cnt).Error
	return cnt, err
}
