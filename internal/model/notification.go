package model

import "time"

// 通知类型
const (
	NotificationLike    = "LIKE"
	NotificationComment = "COMMENT"
	NotificationFollow  = "FOLLOW"
)

// Notification 行为副作用记录；与触发写入同事务落库，actor == recipient 时不产生
type Notification struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	Type      string    `gorm:"type:varchar(16);index:idx_notification_type;not null"`
	UserID    string    `gorm:"type:varchar(36);index:idx_notification_user;not null"` // 接收者
	CreatorID string    `gorm:"type:varchar(36);not null"`                             // 触发者
	PostID    string    `gorm:"type:varchar(36)"`
	CommentID string    `gorm:"type:varchar(36)"`
	Read      bool      `gorm:"default:false;index:idx_notification_read"`
	CreatedAt time.Time `gorm:"index:idx_notification_created"`
}

func (Notification) TableName() string { return "notifications" }

// NotificationView 通知 + 触发者摘要与关联帖子
type NotificationView struct {
	Notification
	Creator UserSummary `json:"creator"`
	Post    *Post       `json:"post,omitempty"`
}
