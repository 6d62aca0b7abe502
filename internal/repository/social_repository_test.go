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

func TestLikeRepository_Toggle(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()
	a, b := testutil.CreateAccount(t, db), testutil.CreateAccount(t, db)
	p := testutil.CreatePost(t, db, a.ID, "x", time.Now())

	liked, err := repo.Toggle(ctx, b.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	_, err = repo.Toggle(ctx, a.ID, p.ID)
	require.NoError(t, err)

	likes, err := repo.ListByPost(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, likes, 2)
	assert.Equal(t, b.ID, likes[0].AccountID)

	counts, err := repo.CountByPosts(ctx, []string{p.ID, "none"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts[p.ID])
	assert.Zero(t, counts["none"])

	liked, err = repo.Toggle(ctx, b.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	ids, err := repo.LikerIDsByPosts(ctx, []string{p.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, ids[p.ID])
}

func TestBookmarkRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewBookmarkRepository(db)
	ctx := context.Background()
	a := testutil.CreateAccount(t, db)
	p1 := testutil.CreatePost(t, db, a.ID, "1", time.Now())
	p2 := testutil.CreatePost(t, db, a.ID, "2", time.Now())

	require.NoError(t, repo.Create(ctx, a.ID, p1.ID))
	assert.ErrorIs(t, repo.Create(ctx, a.ID, p1.ID), ErrDuplicate)

	marked, err := repo.BookmarkedPostIDs(ctx, a.ID, []string{p1.ID, p2.ID})
	require.NoError(t, err)
	assert.True(t, marked[p1.ID])
	assert.False(t, marked[p2.ID])

	list, err := repo.ListByAccount(ctx, a.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)

	ok, err := repo.Delete(ctx, a.ID, p1.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Delete(ctx, a.ID, p1.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCommentRepository_DeleteSubtree(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()
	a := testutil.CreateAccount(t, db)
	p := testutil.CreatePost(t, db, a.ID, "x", time.Now())

	mk := func(parent *string) *model.Comment {
		c := &model.Comment{ID: uuid.New().String(), PostID: p.ID, AuthorID: a.ID, ParentID: parent, Content: "c"}
		require.NoError(t, repo.Create(ctx, c))
		return c
	}
	root := mk(nil)
	child := mk(&root.ID)
	grand := mk(&child.ID)
	sibling := mk(nil)
	_ = grand

	counts, err := repo.CountByPosts(ctx, []string{p.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 4, counts[p.ID])

	require.NoError(t, repo.DeleteSubtree(ctx, root.ID))
	assert.ErrorIs(t, repo.DeleteSubtree(ctx, root.ID), ErrNotFound)

	rest, err := repo.ListByPost(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, sibling.ID, rest[0].ID)

	require.NoError(t, repo.UpdateContent(ctx, sibling.ID, "edited"))
	got, err := repo.GetByID(ctx, sibling.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Content)
}

func TestCategoryRepository_DeleteNullsPosts(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()
	a := testutil.CreateAccount(t, db)

	c := &model.Category{ID: uuid.New().String(), Name: "Bio", Color: model.DefaultCategoryColor}
	require.NoError(t, repo.Create(ctx, c))
	assert.ErrorIs(t, repo.Create(ctx, &model.Category{ID: uuid.New().String(), Name: "Bio"}), ErrDuplicate)

	p := testutil.CreatePost(t, db, a.ID, "x", time.Now())
	require.NoError(t, db.Model(p).Update("category_id", c.ID).Error)

	require.NoError(t, repo.Update(ctx, c.ID, map[string]interface{}{"color": "#ffffff"}))
	require.NoError(t, repo.Delete(ctx, c.ID))
	assert.ErrorIs(t, repo.Delete(ctx, c.ID), ErrNotFound)

	var got model.Post
	require.NoError(t, db.First(&got, "id = ?", p.ID).Error)
	assert.Nil(t, got.CategoryID)
}

func TestResourceRepository_List(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewResourceRepository(db)
	ctx := context.Background()
	a, b := testutil.CreateAccount(t, db), testutil.CreateAccount(t, db)

	base := time.Now().Add(-time.Hour)
	for i, r := range []model.Resource{
		{Title: "PCR protocol", Description: "steps", Category: model.ResourceProtocols, CreatedByID: a.ID},
		{Title: "Aligner", Description: "sequence tool", Category: model.ResourceTools, CreatedByID: b.ID},
		{Title: "Zebrafish", Description: "protocol notes", Category: model.ResourceArticles, CreatedByID: a.ID},
	} {
		r := r
		r.ID = uuid.New().String()
		r.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, &r))
	}

	titles := func(f ResourceFilter) []string {
		res, err := repo.List(ctx, f, 0, 0)
		require.NoError(t, err)
		out := make([]string, 0, len(res))
		for _, r := range res {
			out = append(out, r.Title)
		}
		return out
	}
	assert.Equal(t, []string{"Zebrafish", "Aligner", "PCR protocol"}, titles(ResourceFilter{}))
	assert.Equal(t, []string{"Aligner", "PCR protocol", "Zebrafish"}, titles(ResourceFilter{Ordering: "title"}))
	assert.Equal(t, []string{"Aligner"}, titles(ResourceFilter{Category: model.ResourceTools}))
	assert.Equal(t, []string{"PCR protocol", "Zebrafish"}, titles(ResourceFilter{Search: "PROTOCOL", Ordering: "created_at"}))
	assert.Equal(t, []string{"Zebrafish", "PCR protocol"}, titles(ResourceFilter{CreatedByID: a.ID}))

	assert.True(t, ValidResourceOrdering("-title"))
	assert.False(t, ValidResourceOrdering("id"))
}
