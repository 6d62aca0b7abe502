package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/lablinker/config"
	"github.com/d60-Lab/lablinker/internal/model"
	"github.com/d60-Lab/lablinker/internal/repository"
	"github.com/d60-Lab/lablinker/pkg/apperr"
	"github.com/d60-Lab/lablinker/pkg/logger"
	"github.com/d60-Lab/lablinker/pkg/mailer"
	"github.com/d60-Lab/lablinker/pkg/token"
)

// bcrypt 只使用前 72 字节
const maxPasswordBytes = 72

// Session 登录成功后返回给客户端
type Session struct {
	AccountID string `json:"account_id"`
	token.Pair
}

// AuthService OTP 与密码认证
type AuthService interface {
	RequestOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (*Session, error)
	Signup(ctx context.Context, email, password string) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	ResetPassword(ctx context.Context, accountID, currentPassword, newPassword string) error
}

type authService struct {
	accounts repository.AccountRepository
	otps     repository.OTPRepository
	issuer   *token.Issuer
	mail     mailer.Sender
	otpTTL   time.Duration
	otpLen   int

	now      func() time.Time
	genCode  func(n int) (string, error)
	hashCost int
}

func NewAuthService(
	accounts repository.AccountRepository,
	otps repository.OTPRepository,
	issuer *token.Issuer,
	mail mailer.Sender,
	cfg config.OTPConfig,
) AuthService {
	ttl, n := cfg.TTL, cfg.Length
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if n <= 0 {
		n = 6
	}
	return &authService{
		accounts: accounts,
		otps:     otps,
		issuer:   issuer,
		mail:     mail,
		otpTTL:   ttl,
		otpLen:   n,
		now:      time.Now,
		genCode:  randomDigits,
		hashCost: bcrypt.DefaultCost,
	}
}

// randomDigits 每一位独立均匀取自 0-9
func randomDigits(n int) (string, error) {
	var sb strings.Builder
	sb.Grow(n)
	ten := big.NewInt(10)
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		sb.WriteByte(byte('0' + d.Int64()))
	}
	return sb.String(), nil
}

func validEmail(email string) error {
	if email == "" {
		return invalid("email is required")
	}
	if err := validate.Var(email, "email,max=254"); err != nil {
		return invalid("invalid email address")
	}
	return nil
}

func validPassword(field, pw string) error {
	if pw == "" {
		return invalid("%s is required", field)
	}
	if len(pw) > maxPasswordBytes {
		return invalid("%s must be at most %d bytes", field, maxPasswordBytes)
	}
	return nil
}

func (s *authService) RequestOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := validEmail(email); err != nil {
		return err
	}

	acc, err := s.findOrProvision(ctx, email)
	if err != nil {
		return err
	}

	code, err := s.genCode(s.otpLen)
	if err != nil {
		return internal("generate otp", err)
	}
	now := s.now()
	otp := &model.OTP{
		ID:        uuid.New().String(),
		AccountID: acc.ID,
		Code:      code,
		ExpiresAt: now.Add(s.otpTTL),
		CreatedAt: now,
	}
	if err := s.otps.Create(ctx, otp); err != nil {
		return internal("store otp", err)
	}

	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(s.otpTTL.Minutes()))
	if err := s.mail.Send(ctx, "Your LabLinker verification code", body, acc.Email); err != nil {
		return apperr.Wrap(apperr.Internal, "send otp mail", err)
	}
	logger.Info("otp issued", zap.String("account_id", acc.ID))
	return nil
}

// findOrProvision 首次请求 OTP 时自动创建账号，用户名取邮箱本地部分
func (s *authService) findOrProvision(ctx context.Context, email string) (*model.Account, error) {
	acc, err := s.accounts.GetByEmail(ctx, email)
	if err == nil {
		return acc, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, internal("load account", err)
	}

	base := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		base = email[:i]
	}
	const attempts = 3
	for i := 0; i < attempts; i++ {
		username, err := s.freeUsername(ctx, base, i)
		if err != nil {
			return nil, err
		}
		acc, _, err = s.accounts.FindOrCreateByEmail(ctx, &model.Account{
			ID:       uuid.New().String(),
			Email:    email,
			Username: username,
		})
		if err == nil {
			return acc, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, internal("provision account", err)
		}
	}
	return nil, internal("provision account", fmt.Errorf("no free username for %q", base))
}

func (s *authService) freeUsername(ctx context.Context, base string, attempt int) (string, error) {
	candidate := base
	if attempt > 0 {
		candidate = base + "-" + uuid.New().String()[:8]
	}
	taken, err := s.accounts.ExistsByUsername(ctx, candidate)
	if err != nil {
		return "", internal("check username", err)
	}
	if taken {
		candidate = base + "-" + uuid.New().String()[:8]
	}
	return candidate, nil
}

func (s *authService) VerifyOTP(ctx context.Context, email, code string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || code == "" {
		return nil, invalid("email and otp are required")
	}
	acc, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, notFoundOr(err, ErrAccountNotFound, "load account")
	}

	otp, err := s.otps.FindActive(ctx, acc.ID, code)
	if err != nil {
		return nil, notFoundOr(err, ErrInvalidOTP, "load otp")
	}
	now := s.now()
	if otp.Expired(now) {
		return nil, ErrInvalidOTP
	}
	ok, err := s.otps.Consume(ctx, otp.ID, now)
	if err != nil {
		return nil, internal("consume otp", err)
	}
	if !ok {
		return nil, ErrInvalidOTP
	}
	return s.session(acc.ID)
}

func (s *authService) Signup(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if err := validEmail(email); err != nil {
		return nil, err
	}
	if err := validPassword("password", password); err != nil {
		return nil, err
	}

	exists, err := s.accounts.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, internal("check email", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, internal("hash password", err)
	}
	acc := &model.Account{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     email,
		PasswordHash: string(hash),
	}
	if err := s.accounts.Create(ctx, acc); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, internal("create account", err)
	}
	return s.session(acc.ID)
}

func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, invalid("email and password are required")
	}
	acc, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, notFoundOr(err, ErrBadCredentials, "load account")
	}
	if !acc.HasUsablePassword() ||
		bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	return s.session(acc.ID)
}

func (s *authService) ResetPassword(ctx context.Context, accountID, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return invalid("current_password and new_password are required")
	}
	if err := validPassword("new_password", newPassword); err != nil {
		return err
	}
	acc, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return notFoundOr(err, ErrAccountNotFound, "load account")
	}
	if !acc.HasUsablePassword() ||
		bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(currentPassword)) != nil {
		return ErrWrongPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.hashCost)
	if err != nil {
		return internal("hash password", err)
	}
	if err := s.accounts.UpdatePassword(ctx, acc.ID, string(hash)); err != nil {
		return notFoundOr(err, ErrAccountNotFound, "update password")
	}
	return nil
}

func (s *authService) session(accountID string) (*Session, error) {
	pair, err := s.issuer.Issue(accountID)
	if err != nil {
		return nil, internal("issue tokens", err)
	}
	return &Session{AccountID: accountID, Pair: pair}, nil
}
