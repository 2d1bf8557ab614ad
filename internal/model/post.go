package model

import "time"

// Post 内容主体
type Post struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	AuthorID  string    `gorm:"type:varchar(36);index:idx_post_author;not null"`
	Content   string    `gorm:"type:text"`
	Image     string    `gorm:"type:varchar(512)"`
	CreatedAt time.Time `gorm:"index:idx_post_created"`
	UpdatedAt time.Time
}

func (Post) TableName() string { return "posts" }

// FeedPost feed 中的帖子视图：作者摘要 + 评论 + 点赞集合 + 计数
type FeedPost struct {
	Post
	Author       UserSummary   `json:"author"`
	Comments     []CommentView `json:"comments"`
	LikerIDs     []string      `json:"liker_ids"`
	LikeCount    int64         `json:"like_count"`
	CommentCount int64         `json:"comment_count"`
}
