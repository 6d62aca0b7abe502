package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/lablinker/pkg/apperr"
)

func TestPost_CreateUpdateDelete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author, other := e.actor(t), e.actor(t)
	admin := e.staff(t)

	cat, err := e.cats.Create(ctx, admin, CategoryInput{Name: "Genomics"})
	require.NoError(t, err)
	assert.Equal(t, "#007bff", cat.Color)

	p, err := e.posts.Create(ctx, author, PostInput{
		Content:    "**bold**",
		CategoryID: &cat.ID,
		Tags:       []string{"dna", "rna"},
		Files:      []string{"files/a.pdf"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"dna", "rna"}, p.Tags)
	assert.Contains(t, p.ContentHTML, "<strong>bold</strong>")
	require.Len(t, p.Files, 1)
	assert.Equal(t, "https://cdn.test/files/a.pdf", p.Files[0].URL)
	require.NotNil(t, p.Category)
	assert.Equal(t, "Genomics", p.Category.Name)

	_, err = e.posts.Create(ctx, author, PostInput{Content: "  "})
	assert.True(t, apperr.IsKind(err, apperr.InvalidInput))
	missing := "missing"
	_, err = e.posts.Create(ctx, author, PostInput{Content: "x", CategoryID: &missing})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	content := "edited"
	_, err = e.posts.Update(ctx, other, p.ID, PostUpdate{Content: &content})
	assert.ErrorIs(t, err, ErrForbidden)
	// 管理员也不能编辑他人帖子
	_, err = e.posts.Update(ctx, admin, p.ID, PostUpdate{Content: &content})
	assert.ErrorIs(t, err, ErrForbidden)

	none := ""
	tags := []string{"protein"}
	up, err := e.posts.Update(ctx, author, p.ID, PostUpdate{Content: &content, CategoryID: &none, Tags: &tags, Files: []string{"files/b.pdf"}})
	require.NoError(t, err)
	assert.Equal(t, "edited", up.Content)
	assert.Nil(t, up.Category)
	assert.Equal(t, []string{"protein"}, up.Tags)
	require.Len(t, up.Files, 2)
	assert.Equal(t, "files/b.pdf", up.Files[1].Reference)

	list, err := e.posts.List(ctx, "", 1, 20)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.ErrorIs(t, e.posts.Delete(ctx, other, p.ID), ErrForbidden)
	require.NoError(t, e.posts.Delete(ctx, admin, p.ID))
	_, err = e.posts.Get(ctx, "", p.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestCategory_StaffOnly(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.actor(t)
	admin := e.staff(t)

	_, err := e.cats.Create(ctx, u, CategoryInput{Name: "Bio"})
	assert.ErrorIs(t, err, ErrForbidden)

	c, err := e.cats.Create(ctx, admin, CategoryInput{Name: "Bio", Color: "#ff0000"})
	require.NoError(t, err)
	_, err = e.cats.Create(ctx, admin, CategoryInput{Name: "Bio"})
	assert.ErrorIs(t, err, ErrCategoryExists)
	_, err = e.cats.Create(ctx, admin, CategoryInput{Name: "Chem", Color: "red"})
	assert.True(t, apperr.IsKind(err, apperr.InvalidInput))

	p, err := e.posts.Create(ctx, u, PostInput{Content: "x", CategoryID: &c.ID})
	require.NoError(t, err)
	byCat, err := e.posts.ListByCategory(ctx, "", c.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, byCat, 1)

	name := "Biology"
	got, err := e.cats.Update(ctx, admin, c.ID, CategoryPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Biology", got.Name)

	assert.ErrorIs(t, e.cats.Delete(ctx, u, c.ID), ErrForbidden)
	require.NoError(t, e.cats.Delete(ctx, admin, c.ID))
	_, err = e.cats.Get(ctx, c.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	view, err := e.posts.Get(ctx, u.ID, p.ID)
	require.NoError(t, err)
	assert.Nil(t, view.Category)
}

func TestBookmarks(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.actor(t)
	p1, err := e.posts.Create(ctx, u, PostInput{Content: "1"})
	require.NoError(t, err)
	p2, err := e.posts.Create(ctx, u, PostInput{Content: "2"})
	require.NoError(t, err)

	require.NoError(t, e.bookmarks.Bookmark(ctx, u.ID, p1.ID))
	require.NoError(t, e.bookmarks.Bookmark(ctx, u.ID, p2.ID))
	err = e.bookmarks.Bookmark(ctx, u.ID, p1.ID)
	assert.ErrorIs(t, err, ErrAlreadyBookmarked)
	assert.True(t, apperr.IsKind(err, apperr.Conflict))
	assert.ErrorIs(t, e.bookmarks.Bookmark(ctx, u.ID, "missing"), ErrPostNotFound)

	list, err := e.bookmarks.List(ctx, u.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, p2.ID, list[0].ID)
	assert.True(t, list[0].IsBookmarked)

	require.NoError(t, e.bookmarks.Unbookmark(ctx, u.ID, p1.ID))
	assert.ErrorIs(t, e.bookmarks.Unbookmark(ctx, u.ID, p1.ID), ErrBookmarkNotFound)

	view, err := e.posts.Get(ctx, u.ID, p1.ID)
	require.NoError(t, err)
	assert.False(t, view.IsBookmarked)
}

func TestComments_TreeAndCascade(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author, other := e.actor(t), e.actor(t)
	admin := e.staff(t)
	p, err := e.posts.Create(ctx, author, PostInput{Content: "post"})
	require.NoError(t, err)

	root, err := e.comments.Add(ctx, author.ID, p.ID, "root", nil)
	require.NoError(t, err)
	r1, err := e.comments.Add(ctx, other.ID, p.ID, "r1", &root.ID)
	require.NoError(t, err)
	r2, err := e.comments.Add(ctx, author.ID, p.ID, "r2", &root.ID)
	require.NoError(t, err)
	deep, err := e.comments.Add(ctx, author.ID, p.ID, "deep", &r1.ID)
	require.NoError(t, err)
	second, err := e.comments.Add(ctx, other.ID, p.ID, "second", nil)
	require.NoError(t, err)

	top, err := e.comments.ListTopLevel(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, root.ID, top[0].ID)
	assert.Equal(t, second.ID, top[1].ID)
	require.Len(t, top[0].Replies, 2)
	assert.Equal(t, r1.ID, top[0].Replies[0].ID)
	assert.Equal(t, r2.ID, top[0].Replies[1].ID)
	require.Len(t, top[0].Replies[0].Replies, 1)
	assert.Equal(t, deep.ID, top[0].Replies[0].Replies[0].ID)

	view, err := e.posts.Get(ctx, "", p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, view.CommentCount)

	got, err := e.comments.Get(ctx, r1.ID)
	require.NoError(t, err)
	require.Len(t, got.Replies, 1)

	_, err = e.comments.Edit(ctx, author, r1.ID, "hijack")
	assert.ErrorIs(t, err, ErrForbidden)
	edited, err := e.comments.Edit(ctx, other, r1.ID, "r1 edited")
	require.NoError(t, err)
	assert.Equal(t, "r1 edited", edited.Content)

	assert.ErrorIs(t, e.comments.Delete(ctx, other, root.ID), ErrForbidden)
	require.NoError(t, e.comments.Delete(ctx, admin, root.ID))

	top, err = e.comments.ListTopLevel(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, second.ID, top[0].ID)
	_, err = e.comments.Get(ctx, deep.ID)
	assert.ErrorIs(t, err, ErrCommentNotFound)
}

func TestComments_Errors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.actor(t)
	p1, err := e.posts.Create(ctx, u, PostInput{Content: "1"})
	require.NoError(t, err)
	p2, err := e.posts.Create(ctx, u, PostInput{Content: "2"})
	require.NoError(t, err)
	c, err := e.comments.Add(ctx, u.ID, p1.ID, "c", nil)
	require.NoError(t, err)

	_, err = e.comments.Add(ctx, u.ID, "missing", "x", nil)
	assert.ErrorIs(t, err, ErrPostNotFound)
	_, err = e.comments.Add(ctx, u.ID, p2.ID, "x", &c.ID)
	assert.ErrorIs(t, err, ErrParentMismatch)
	bad := "missing"
	_, err = e.comments.Add(ctx, u.ID, p1.ID, "x", &bad)
	assert.ErrorIs(t, err, ErrCommentNotFound)
	_, err = e.comments.Add(ctx, u.ID, p1.ID, "", nil)
	assert.True(t, apperr.IsKind(err, apperr.InvalidInput))
	_, err = e.comments.ListTopLevel(ctx, "missing")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestResources(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner, other := e.actor(t), e.actor(t)
	admin := e.staff(t)

	r, err := e.resources.Create(ctx, owner, ResourceInput{
		Title: "PCR", Description: "steps", Category: "protocols", Link: "https://example.com/pcr",
	})
	require.NoError(t, err)
	assert.Equal(t, "Protocols", r.CategoryLabel)
	assert.Equal(t, owner.ID, r.CreatedBy.ID)

	_, err = e.resources.Create(ctx, owner, ResourceInput{Title: "x", Description: "y", Category: "videos"})
	assert.True(t, apperr.IsKind(err, apperr.InvalidInput))
	_, err = e.resources.Create(ctx, owner, ResourceInput{Title: "x", Description: "y", Category: "tools", Link: "not a url"})
	assert.True(t, apperr.IsKind(err, apperr.InvalidInput))
	_, err = e.resources.Create(ctx, other, ResourceInput{Title: "Aligner", Description: "tool", Category: "tools"})
	require.NoError(t, err)

	list, err := e.resources.List(ctx, ResourceQuery{Ordering: "title"}, 1, 20)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Aligner", list[0].Title)
	_, err = e.resources.List(ctx, ResourceQuery{Ordering: "id"}, 1, 20)
	assert.True(t, apperr.IsKind(err, apperr.InvalidInput))

	mine, err := e.resources.Mine(ctx, owner, 1, 20)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	title := "PCR v2"
	_, err = e.resources.Update(ctx, other, r.ID, ResourcePatch{Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)
	up, err := e.resources.Update(ctx, admin, r.ID, ResourcePatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "PCR v2", up.Title)

	assert.ErrorIs(t, e.resources.Delete(ctx, other, r.ID), ErrForbidden)
	require.NoError(t, e.resources.Delete(ctx, owner, r.ID))
	_, err = e.resources.Get(ctx, r.ID)
	assert.ErrorIs(t, err, ErrResourceNotFound)

	cats := e.resources.Categories()
	require.Len(t, cats, 5)
	assert.Equal(t, ResourceCategoryView{Value: "protocols", Label: "Protocols"}, cats[0])
}
