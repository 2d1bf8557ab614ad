package model

import "time"

// User 账号（首次登录时按外部认证 ID 幂等创建）
type User struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)"`
	ExternalID string    `gorm:"type:varchar(64);uniqueIndex:ux_user_external;not null"`
	Name       string    `gorm:"type:varchar(128)"`
	Username   string    `gorm:"type:varchar(64);uniqueIndex:ux_user_username;not null"`
	Email      string    `gorm:"type:varchar(255)"`
	Image      string    `gorm:"type:varchar(512)"`
	Bio        string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"index:idx_user_created"`
	UpdatedAt  time.Time
}

func (User) TableName() string { return "users" }

// UserSummary 嵌入 feed/评论/通知的作者摘要
type UserSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Image    string `json:"image"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Username: u.Username, Image: u.Image}
}
