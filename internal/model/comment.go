package model

import "time"

// Comment 帖子评论，帖内按创建时间升序
type Comment struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	PostID    string    `gorm:"type:varchar(36);index:idx_comment_post;not null"`
	AuthorID  string    `gorm:"type:varchar(36);index:idx_comment_author;not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Comment) TableName() string { return "comments" }

// CommentView 评论 + 作者摘要
type CommentView struct {
	Comment
	Author UserSummary `json:"author"`
}
