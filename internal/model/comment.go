package model

import "time"

// Comment 评论；ParentID 为空表示顶层评论
type Comment struct {
	ID        string   `gorm:"primaryKey;type:varchar(36)"`
	PostID    string   `gorm:"type:varchar(36);index;not null"`
	Post      *Post    `gorm:"constraint:OnDelete:CASCADE"`
	AuthorID  string   `gorm:"type:varchar(36);index;not null"`
	Author    *Account `gorm:"constraint:OnDelete:CASCADE"`
	ParentID  *string  `gorm:"type:varchar(36);index"`
	Parent    *Comment `gorm:"constraint:OnDelete:CASCADE"`
	Content   string   `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Comment) TableName() string { return "comments" }
