package model

// All 返回需要迁移的全部模型（按依赖顺序）
func All() []interface{} {
	return []interface{}{
		&Account{},
		&OTP{},
		&Follow{},
		&Category{},
		&Tag{},
		&Post{},
		&PostFile{},
		&Bookmark{},
		&Like{},
		&Comment{},
		&Resource{},
	}
}
