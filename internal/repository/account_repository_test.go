package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/lablinker/internal/model"
	"github.com/d60-Lab/lablinker/internal/testutil"
)

func TestAccountRepository_CreateDuplicate(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	a := &model.Account{ID: uuid.New().String(), Email: "a@x.com", Username: "a@x.com"}
	require.NoError(t, repo.Create(ctx, a))

	dup := &model.Account{ID: uuid.New().String(), Email: "a@x.com", Username: "other"}
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrDuplicate)

	got, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := repo.ExistsByUsername(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAccountRepository_FindOrCreateByEmail(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	first, created, err := repo.FindOrCreateByEmail(ctx, &model.Account{ID: uuid.New().String(), Email: "b@x.com", Username: "b"})
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := repo.FindOrCreateByEmail(ctx, &model.Account{ID: uuid.New().String(), Email: "b@x.com", Username: "b1"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)

	// 用户名被占用且 email 不存在
	_, _, err = repo.FindOrCreateByEmail(ctx, &model.Account{ID: uuid.New().String(), Email: "c@x.com", Username: "b"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestAccountRepository_UpdateAndList(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()
	a := testutil.CreateAccount(t, db)
	b := testutil.CreateAccount(t, db)

	require.NoError(t, repo.Update(ctx, a.ID, map[string]interface{}{"country": "NL"}))
	require.NoError(t, repo.UpdatePassword(ctx, a.ID, "hash"))
	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "NL", got.Country)
	assert.True(t, got.HasUsablePassword())

	assert.ErrorIs(t, repo.Update(ctx, a.ID, map[string]interface{}{"username": b.Username}), ErrDuplicate)
	assert.ErrorIs(t, repo.Update(ctx, "missing", map[string]interface{}{"country": "NL"}), ErrNotFound)

	list, err := repo.ListByIDs(ctx, []string{a.ID, b.ID, "missing"})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	all, err := repo.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAccountRepository_DeleteCascades(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()
	a := testutil.CreateAccount(t, db)
	b := testutil.CreateAccount(t, db)

	postA := testutil.CreatePost(t, db, a.ID, "by a", time.Now())
	postB := testutil.CreatePost(t, db, b.ID, "by b", time.Now())

	_, err := NewFollowRepository(db).Create(ctx, a.ID, b.ID)
	require.NoError(t, err)
	_, err = NewFollowRepository(db).Create(ctx, b.ID, a.ID)
	require.NoError(t, err)
	_, err = NewLikeRepository(db).Toggle(ctx, a.ID, postB.ID)
	require.NoError(t, err)
	_, err = NewLikeRepository(db).Toggle(ctx, b.ID, postA.ID)
	require.NoError(t, err)
	require.NoError(t, NewBookmarkRepository(db).Create(ctx, a.ID, postB.ID))
	require.NoError(t, NewOTPRepository(db).Create(ctx, &model.OTP{ID: uuid.New().String(), AccountID: a.ID, Code: "123456", ExpiresAt: time.Now()}))

	comments := NewCommentRepository(db)
	top := &model.Comment{ID: uuid.New().String(), PostID: postB.ID, AuthorID: a.ID, Content: "hi"}
	require.NoError(t, comments.Create(ctx, top))
	reply := &model.Comment{ID: uuid.New().String(), PostID: postB.ID, AuthorID: b.ID, ParentID: &top.ID, Content: "re"}
	require.NoError(t, comments.Create(ctx, reply))
	other := &model.Comment{ID: uuid.New().String(), PostID: postB.ID, AuthorID: b.ID, Content: "stays"}
	require.NoError(t, comments.Create(ctx, other))

	require.NoError(t, repo.Delete(ctx, a.ID))
	assert.ErrorIs(t, repo.Delete(ctx, a.ID), ErrNotFound)

	count := func(m interface{}) int64 {
		var n int64
		require.NoError(t, db.Model(m).Count(&n).Error)
		return n
	}
	assert.Zero(t, count(&model.Follow{}))
	assert.Zero(t, count(&model.Like{}))
	assert.Zero(t, count(&model.Bookmark{}))
	assert.Zero(t, count(&model.OTP{}))
	assert.EqualValues(t, 1, count(&model.Post{}))
	assert.EqualValues(t, 1, count(&model.Comment{}))
	assert.EqualValues(t, 1, count(&model.Account{}))
}
