package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/lablinker/internal/model"
)

type OTPRepository interface {
	Create(ctx context.Context, otp *model.OTP) error
	// FindActive 返回该账号下最新一条未使用的匹配验证码（可能已过期）
	FindActive(ctx context.Context, accountID, code string) (*model.OTP, error)
	// Consume 条件更新 consumed_at，返回 false 表示已被并发使用
	Consume(ctx context.Context, id string, at time.Time) (bool, error)
}

type otpRepository struct {
	db *gorm.DB
}

func NewOTPRepository(db *gorm.DB) OTPRepository { return &otpRepository{db: db} }

func (r *otpRepository) Create(ctx context.Context, otp *model.OTP) error {
	return translate(r.db.WithContext(ctx).Create(otp).Error)
}

func (r *otpRepository) FindActive(ctx context.Context, accountID, code string) (*model.OTP, error) {
	var o model.OTP
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND code = ? AND consumed_at IS NULL", accountID, code).
		Order("created_at DESC, id DESC").
		First(&o).Error
	if err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (r *otpRepository) Consume(ctx context.Context, id string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.OTP{}).
		Where("id = ? AND consumed_at IS NULL", id).
		Update("consumed_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
