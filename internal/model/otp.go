package model

import "time"

// OTP 一次性验证码；校验成功后写 ConsumedAt，不删除
type OTP struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)"`
	AccountID  string    `gorm:"type:varchar(36);index:idx_otp_account_code;not null"`
	Account    *Account  `gorm:"constraint:OnDelete:CASCADE"`
	Code       string    `gorm:"type:varchar(12);index:idx_otp_account_code;not null"`
	ExpiresAt  time.Time `gorm:"not null"`
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

func (OTP) TableName() string { return "otps" }

// Expired reports whether the code can no longer be used at now.
func (o *OTP) Expired(now time.Time) bool { return now.After(o.ExpiresAt) }
