package service

import (
	"errors"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/d60-Lab/lablinker/internal/repository"
	"github.com/d60-Lab/lablinker/pkg/apperr"
)

var (
	ErrFollowSelf        = apperr.New(apperr.InvalidInput, "cannot follow self")
	ErrNotFollowing      = apperr.New(apperr.NotFound, "not following this user")
	ErrAccountNotFound   = apperr.New(apperr.NotFound, "account not found")
	ErrPostNotFound      = apperr.New(apperr.NotFound, "post not found")
	ErrCommentNotFound   = apperr.New(apperr.NotFound, "comment not found")
	ErrCategoryNotFound  = apperr.New(apperr.NotFound, "category not found")
	ErrBookmarkNotFound  = apperr.New(apperr.NotFound, "bookmark not found")
	ErrResourceNotFound  = apperr.New(apperr.NotFound, "resource not found")
	ErrEmailTaken        = apperr.New(apperr.Conflict, "email already registered")
	ErrUsernameTaken     = apperr.New(apperr.Conflict, "username already taken")
	ErrCategoryExists    = apperr.New(apperr.Conflict, "category already exists")
	ErrAlreadyBookmarked = apperr.New(apperr.Conflict, "post already bookmarked")
	ErrBadCredentials    = apperr.New(apperr.InvalidCredential, "invalid email or password")
	ErrInvalidOTP        = apperr.New(apperr.InvalidCredential, "invalid or expired code")
	ErrWrongPassword     = apperr.New(apperr.InvalidCredential, "current password is incorrect")
	ErrForbidden         = apperr.New(apperr.Forbidden, "permission denied")
	ErrParentMismatch    = apperr.New(apperr.InvalidInput, "parent comment belongs to another post")
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var validate = validator.New()

// Actor 发起请求的已认证账号
type Actor struct {
	ID      string
	IsStaff bool
}

// CanModify reports whether the actor owns ownerID's data or is staff.
func (a Actor) CanModify(ownerID string) bool { return a.ID == ownerID || a.IsStaff }

// normalizePage 返回合法的 page、pageSize 与 offset
func normalizePage(page, pageSize int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	// 超大页码不回绕，offset 钳到上限，结果为空
	if page-1 > math.MaxInt/pageSize {
		return page, pageSize, math.MaxInt
	}
	return page, pageSize, (page - 1) * pageSize
}

// NormalizePage is exported for handlers echoing the effective page back.
func NormalizePage(page, pageSize int) (int, int) {
	p, s, _ := normalizePage(page, pageSize)
	return p, s
}

// notFoundOr 把仓储层 ErrNotFound 映射成 nf，其余错误视为内部错误
func notFoundOr(err error, nf *apperr.Error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nf
	}
	return internal(op, err)
}

func internal(op string, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Wrap(apperr.Internal, op, err)
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func invalid(format string, args ...any) error {
	return apperr.Newf(apperr.InvalidInput, format, args...)
}
