package model

import "time"

// Account 用户账号；PasswordHash 为空表示不可用密码（OTP 自动创建的账号）
type Account struct {
	ID           string `gorm:"primaryKey;type:varchar(36)"`
	Email        string `gorm:"type:varchar(254);uniqueIndex:ux_accounts_email;not null"`
	Username     string `gorm:"type:varchar(150);uniqueIndex:ux_accounts_username;not null"`
	PasswordHash string `gorm:"type:varchar(100);not null;default:''"`
	FirstName    string `gorm:"type:varchar(150)"`
	LastName     string `gorm:"type:varchar(150)"`
	Profession   string `gorm:"type:varchar(100)"`
	Country      string `gorm:"type:varchar(100)"`
	Avatar       string `gorm:"type:varchar(255)"` // media reference
	IsStaff      bool   `gorm:"not null;default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Account) TableName() string { return "accounts" }

func (a *Account) HasUsablePassword() bool { return a.PasswordHash != "" }
