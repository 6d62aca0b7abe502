package model

import "time"

type ResourceCategory string

const (
	ResourceProtocols ResourceCategory = "protocols"
	ResourceTemplates ResourceCategory = "templates"
	ResourceArticles  ResourceCategory = "articles"
	ResourceTools     ResourceCategory = "tools"
	ResourceLinks     ResourceCategory = "links"
)

// ResourceCategories 固定枚举，顺序即展示顺序
var ResourceCategories = []ResourceCategory{
	ResourceProtocols, ResourceTemplates, ResourceArticles, ResourceTools, ResourceLinks,
}

func (c ResourceCategory) Valid() bool {
	for _, v := range ResourceCategories {
		if v == c {
			return true
		}
	}
	return false
}

// Label is the human readable name, e.g. "Protocols".
func (c ResourceCategory) Label() string {
	if c == "" {
		return ""
	}
	return string(c[0]-'a'+'A') + string(c[1:])
}

type Resource struct {
	ID          string           `gorm:"primaryKey;type:varchar(36)"`
	Title       string           `gorm:"type:varchar(200);not null"`
	Description string           `gorm:"type:text;not null"`
	Category    ResourceCategory `gorm:"type:varchar(20);index;not null"`
	ImageURL    string           `gorm:"type:varchar(500)"`
	Link        string           `gorm:"type:varchar(500)"`
	CreatedByID string           `gorm:"type:varchar(36);index;not null"`
	CreatedBy   *Account         `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `gorm:"index"`
	UpdatedAt   time.Time
}

func (Resource) TableName() string { return "resources" }
