package model

import "time"

// Like 点赞；(account_id, post_id) 唯一，开关语义
type Like struct {
	ID        string   `gorm:"primaryKey;type:varchar(36)"`
	AccountID string   `gorm:"type:varchar(36);uniqueIndex:ux_like_account_post;not null"`
	Account   *Account `gorm:"constraint:OnDelete:CASCADE"`
	PostID    string   `gorm:"type:varchar(36);index;uniqueIndex:ux_like_account_post;not null"`
	Post      *Post    `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

func (Like) TableName() string { return "likes" }
