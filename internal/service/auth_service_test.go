package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/lablinker/internal/model"
	"github.com/d60-Lab/lablinker/pkg/apperr"
	"github.com/d60-Lab/lablinker/pkg/token"
)

func TestRandomDigits(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := randomDigits(6)
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
}

func TestRequestOTP_ProvisionsAccountAndMails(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.auth.RequestOTP(ctx, "New.User@X.com"))

	var acc model.Account
	require.NoError(t, e.db.First(&acc, "email = ?", "new.user@x.com").Error)
	assert.Equal(t, "new.user", acc.Username)
	assert.False(t, acc.HasUsablePassword())

	require.Len(t, e.mail.sent, 1)
	assert.Equal(t, []string{"new.user@x.com"}, e.mail.sent[0].to)

	var otp model.OTP
	require.NoError(t, e.db.First(&otp, "account_id = ?", acc.ID).Error)
	assert.Len(t, otp.Code, 6)
	assert.Contains(t, e.mail.sent[0].body, otp.Code)
	assert.WithinDuration(t, otp.CreatedAt.Add(5*time.Minute), otp.ExpiresAt, time.Second)

	// 第二次请求不再创建账号，旧验证码也不作废
	require.NoError(t, e.auth.RequestOTP(ctx, "new.user@x.com"))
	var accounts, otps int64
	e.db.Model(&model.Account{}).Count(&accounts)
	e.db.Model(&model.OTP{}).Count(&otps)
	assert.EqualValues(t, 1, accounts)
	assert.EqualValues(t, 2, otps)
}

func TestRequestOTP_UsernameCollision(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.auth.RequestOTP(ctx, "sam@a.com"))
	require.NoError(t, e.auth.RequestOTP(ctx, "sam@b.com"))

	var acc model.Account
	require.NoError(t, e.db.First(&acc, "email = ?", "sam@b.com").Error)
	assert.True(t, strings.HasPrefix(acc.Username, "sam-"))
}

func TestRequestOTP_Errors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	err := e.auth.RequestOTP(ctx, "")
	assert.True(t, apperr.IsKind(err, apperr.InvalidInput))
	err = e.auth.RequestOTP(ctx, "not-an-email")
	assert.True(t, apperr.IsKind(err, apperr.InvalidInput))

	e.mail.err = errors.New("smtp down")
	err = e.auth.RequestOTP(ctx, "a@x.com")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Internal))
}

func TestVerifyOTP_Scenario(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	e.auth.now = func() time.Time { return t0 }
	e.auth.genCode = func(int) (string, error) { return "123456", nil }

	require.NoError(t, e.auth.RequestOTP(ctx, "a@x.com"))

	// T+6m：已过期，即使数字匹配
	e.auth.now = func() time.Time { return t0.Add(6 * time.Minute) }
	_, err := e.auth.VerifyOTP(ctx, "a@x.com", "123456")
	assert.ErrorIs(t, err, ErrInvalidOTP)

	e.auth.now = func() time.Time { return t0.Add(time.Minute) }
	_, err = e.auth.VerifyOTP(ctx, "a@x.com", "654321")
	assert.ErrorIs(t, err, ErrInvalidOTP)

	sess, err := e.auth.VerifyOTP(ctx, "a@x.com", "123456")
	require.NoError(t, err)
	claims, err := e.issuer.Parse(sess.Access, token.Access)
	require.NoError(t, err)
	assert.Equal(t, sess.AccountID, claims.AccountID)
	_, err = e.issuer.Parse(sess.Refresh, token.Refresh)
	require.NoError(t, err)

	// 单次使用
	_, err = e.auth.VerifyOTP(ctx, "a@x.com", "123456")
	assert.ErrorIs(t, err, ErrInvalidOTP)

	_, err = e.auth.VerifyOTP(ctx, "nobody@x.com", "123456")
	assert.ErrorIs(t, err, ErrAccountNotFound)
	_, err = e.auth.VerifyOTP(ctx, "a@x.com", "")
	assert.True(t, apperr.IsKind(err, apperr.InvalidInput))
}

func TestVerifyOTP_ConcurrentSingleUse(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.auth.genCode = func(int) (string, error) { return "111111", nil }
	require.NoError(t, e.auth.RequestOTP(ctx, "a@x.com"))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.auth.VerifyOTP(ctx, "a@x.com", "111111"); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, ok)
}

func TestSignupLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	sess, err := e.auth.Signup(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Access)

	_, err = e.auth.Signup(ctx, "a@x.com", "pw2")
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.True(t, apperr.IsKind(err, apperr.Conflict))

	var acc model.Account
	require.NoError(t, e.db.First(&acc, "email = ?", "a@x.com").Error)
	assert.Equal(t, "a@x.com", acc.Username)
	assert.NotEqual(t, "pw", acc.PasswordHash)

	_, err = e.auth.Signup(ctx, "b@x.com", "")
	assert.True(t, apperr.IsKind(err, apperr.InvalidInput))
	_, err = e.auth.Signup(ctx, "b@x.com", strings.Repeat("x", 73))
	assert.True(t, apperr.IsKind(err, apperr.InvalidInput))

	got, err := e.auth.Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, sess.AccountID, got.AccountID)

	_, err = e.auth.Login(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = e.auth.Login(ctx, "nobody@x.com", "pw")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestLogin_OTPOnlyAccountHasNoPassword(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.auth.RequestOTP(ctx, "otp@x.com"))
	_, err := e.auth.Login(ctx, "otp@x.com", "")
	assert.True(t, apperr.IsKind(err, apperr.InvalidInput))
	_, err = e.auth.Login(ctx, "otp@x.com", "anything")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestResetPassword(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sess, err := e.auth.Signup(ctx, "a@x.com", "old")
	require.NoError(t, err)

	err = e.auth.ResetPassword(ctx, sess.AccountID, "", "new")
	assert.True(t, apperr.IsKind(err, apperr.InvalidInput))
	err = e.auth.ResetPassword(ctx, sess.AccountID, "wrong", "new")
	assert.ErrorIs(t, err, ErrWrongPassword)

	require.NoError(t, e.auth.ResetPassword(ctx, sess.AccountID, "old", "new"))
	_, err = e.auth.Login(ctx, "a@x.com", "old")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = e.auth.Login(ctx, "a@x.com", "new")
	assert.NoError(t, err)
}
