package model

type Tag struct {
	ID   string `gorm:"primaryKey;type:varchar(36)"`
	Name string `gorm:"type:varchar(50);uniqueIndex:ux_tags_name;not null"`
}

func (Tag) TableName() string { return "tags" }
