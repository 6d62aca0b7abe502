// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/lablinker/internal/model"
	"github.com/d60-Lab/lablinker/pkg/database"
)

var seq atomic.Int64

// NewTestDB opens a migrated in-memory sqlite database that is closed when tb ends.
func NewTestDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	db, err := database.OpenSQLite(":memory:", nil)
	require.NoError(tb, err)
	sqlDB, err := db.DB()
	require.NoError(tb, err)
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(tb, database.Migrate(db))
	return db
}

// CreateAccount inserts an account with a unique email and username.
func CreateAccount(tb testing.TB, db *gorm.DB, mutate ...func(*model.Account)) *model.Account {
	tb.Helper()
	n := seq.Add(1)
	a := &model.Account{
		ID:       uuid.New().String(),
		Email:    fmt.Sprintf("user%d@example.com", n),
		Username: fmt.Sprintf("user%d", n),
	}
	for _, m := range mutate {
		m(a)
	}
	require.NoError(tb, db.Create(a).Error)
	return a
}

// CreatePost inserts a post by authorID; at overrides CreatedAt when non-zero.
func CreatePost(tb testing.TB, db *gorm.DB, authorID, content string, at time.Time) *model.Post {
	tb.Helper()
	p := &model.Post{ID: uuid.New().String(), AuthorID: authorID, Content: content, CreatedAt: at, UpdatedAt: at}
	require.NoError(tb, db.Omit("Author", "Category", "Tags", "Files").Create(p).Error)
	return p
}
