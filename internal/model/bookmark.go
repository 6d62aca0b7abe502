package model

import "time"

// Bookmark 收藏；(account_id, post_id) 唯一
type Bookmark struct {
	ID        string   `gorm:"primaryKey;type:varchar(36)"`
	AccountID string   `gorm:"type:varchar(36);index;uniqueIndex:ux_bookmark_account_post;not null"`
	Account   *Account `gorm:"constraint:OnDelete:CASCADE"`
	PostID    string   `gorm:"type:varchar(36);uniqueIndex:ux_bookmark_account_post;not null"`
	Post      *Post    `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

func (Bookmark) TableName() string { return "bookmarks" }
