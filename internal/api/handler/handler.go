package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/lablinker/internal/api/middleware"
	"github.com/d60-Lab/lablinker/internal/service"
	"github.com/d60-Lab/lablinker/pkg/response"
)

// Services 处理器依赖的业务服务
type Services struct {
	Auth      service.AuthService
	Accounts  service.AccountService
	Relations service.RelationshipService
	Posts     service.PostService
	Feed      service.FeedService
	Category  service.CategoryService
	Bookmarks service.BookmarkService
	Likes     service.LikeService
	Comments  service.CommentService
	Resources service.ResourceService
}

type Handler struct {
	authService     service.AuthService
	accountService  service.AccountService
	relService      service.RelationshipService
	postService     service.PostService
	feedService     service.FeedService
	categoryService service.CategoryService
	bookmarkService service.BookmarkService
	likeService     service.LikeService
	commentService  service.CommentService
	resourceService service.ResourceService
}

func New(s Services) *Handler {
	return &Handler{
		authService:     s.Auth,
		accountService:  s.Accounts,
		relService:      s.Relations,
		postService:     s.Posts,
		feedService:     s.Feed,
		categoryService: s.Category,
		bookmarkService: s.Bookmarks,
		likeService:     s.Likes,
		commentService:  s.Comments,
		resourceService: s.Resources,
	}
}

// actor 取当前登录账号；路由未挂 Auth 中间件时写 401 并返回 false
func actor(c *gin.Context) (service.Actor, bool) {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication credentials were not provided")
		return service.Actor{}, false
	}
	return a, true
}

// viewerID 可选登录时的当前账号，匿名为空
func viewerID(c *gin.Context) string {
	a, _ := middleware.ActorFrom(c)
	return a.ID
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))
	return service.NormalizePage(page, pageSize)
}

func pageOf(c *gin.Context, page, pageSize int, list interface{}) {
	response.Success(c, response.Page{Page: page, PageSize: pageSize, List: list})
}
