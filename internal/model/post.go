package model

import "time"

// Post 内容主体
type Post struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)"`
	AuthorID   string    `gorm:"type:varchar(36);index:idx_post_author_created,priority:1;not null"`
	Author     *Account  `gorm:"constraint:OnDelete:CASCADE"`
	CategoryID *string   `gorm:"type:varchar(36);index"`
	Category   *Category `gorm:"constraint:OnDelete:SET NULL"`
	Content    string    `gorm:"type:text;not null"`
	Tags       []Tag     `gorm:"many2many:post_tags;constraint:OnDelete:CASCADE"`
	Files      []PostFile
	CreatedAt  time.Time `gorm:"index:idx_post_author_created,priority:2;index"`
	UpdatedAt  time.Time
}

func (Post) TableName() string { return "posts" }

// PostFile 帖子附件，按 Position 排序
type PostFile struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	PostID    string `gorm:"type:varchar(36);index;not null"`
	Post      *Post  `gorm:"constraint:OnDelete:CASCADE"`
	Reference string `gorm:"type:varchar(255);not null"` // media reference
	Position  int    `gorm:"not null;default:0"`
	CreatedAt time.Time
}

func (PostFile) TableName() string { return "post_files" }
