package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/d60-Lab/lablinker/config"
	"github.com/d60-Lab/lablinker/internal/cache"
	"github.com/d60-Lab/lablinker/internal/model"
	"github.com/d60-Lab/lablinker/internal/repository"
	"github.com/d60-Lab/lablinker/internal/testutil"
	"github.com/d60-Lab/lablinker/pkg/media"
	"github.com/d60-Lab/lablinker/pkg/token"
)

type sentMail struct {
	subject, body string
	to            []string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, subject, body string, to ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{subject: subject, body: body, to: to})
	return nil
}

// env wires every service over one sqlite database.
type env struct {
	db        *gorm.DB
	mail      *fakeMailer
	issuer    *token.Issuer
	auth      *authService
	accounts  AccountService
	relations RelationshipService
	feed      FeedService
	posts     PostService
	cats      CategoryService
	bookmarks BookmarkService
	comments  CommentService
	likes     LikeService
	resources ResourceService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewTestDB(t)

	accountRepo := repository.NewAccountRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	bookmarkRepo := repository.NewBookmarkRepository(db)
	resourceRepo := repository.NewResourceRepository(db)

	profiles := cache.NewProfileCache(nil, accountRepo, time.Minute)
	resolver := media.NewStaticResolver("https://cdn.test")
	issuer := token.NewIssuer("test-secret", "lablinker", 5*time.Minute, time.Hour)
	mail := &fakeMailer{}

	auth := NewAuthService(accountRepo, repository.NewOTPRepository(db), issuer, mail, config.OTPConfig{TTL: 5 * time.Minute, Length: 6}).(*authService)
	auth.hashCost = bcrypt.MinCost

	return &env{
		db:        db,
		mail:      mail,
		issuer:    issuer,
		auth:      auth,
		accounts:  NewAccountService(accountRepo, followRepo, profiles, resolver),
		relations: NewRelationshipService(followRepo, accountRepo, profiles, resolver),
		feed:      NewFeedService(postRepo, likeRepo, commentRepo, bookmarkRepo, profiles, resolver),
		posts:     NewPostService(postRepo, categoryRepo, likeRepo, commentRepo, bookmarkRepo, profiles, resolver),
		cats:      NewCategoryService(categoryRepo),
		bookmarks: NewBookmarkService(bookmarkRepo, postRepo, likeRepo, commentRepo, profiles, resolver),
		comments:  NewCommentService(commentRepo, postRepo, profiles, resolver),
		likes:     NewLikeService(likeRepo, postRepo, profiles, resolver),
		resources: NewResourceService(resourceRepo, profiles, resolver),
	}
}

func (e *env) actor(t *testing.T) Actor {
	t.Helper()
	a := testutil.CreateAccount(t, e.db)
	return Actor{ID: a.ID}
}

func (e *env) staff(t *testing.T) Actor {
	t.Helper()
	a := testutil.CreateAccount(t, e.db, func(a *model.Account) { a.IsStaff = true })
	return Actor{ID: a.ID, IsStaff: true}
}
