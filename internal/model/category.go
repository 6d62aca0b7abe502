package model

// DefaultCategoryColor is used when a category is created without a color.
const DefaultCategoryColor = "#007bff"

type Category struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	Name        string `gorm:"type:varchar(100);uniqueIndex:ux_categories_name;not null"`
	Description string `gorm:"type:text"`
	Color       string `gorm:"type:varchar(7);not null;default:'#007bff'"`
}

func (Category) TableName() string { return "categories" }
