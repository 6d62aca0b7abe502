package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/lablinker/internal/service"
	"github.com/d60-Lab/lablinker/pkg/apperr"
	"github.com/d60-Lab/lablinker/pkg/response"
	"github.com/d60-Lab/lablinker/pkg/token"
)

const actorKey = "lablinker_actor"

// ActorResolver 把 token 中的账号 ID 还原为 Actor（service.AccountService 满足）
type ActorResolver interface {
	Resolve(ctx context.Context, id string) (service.Actor, error)
}

// Auth 校验 Bearer access token；required 为 false 时无 token 也放行
func Auth(issuer *token.Issuer, accounts ActorResolver, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearer(c.GetHeader("Authorization"))
		if !ok {
			if required {
				response.Unauthorized(c, "authentication credentials were not provided")
				c.Abort()
				return
			}
			c.Next()
			return
		}

		claims, err := issuer.Parse(raw, token.Access)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, token.ErrExpiredToken) {
				msg = "token expired"
			}
			response.Unauthorized(c, msg)
			c.Abort()
			return
		}

		actor, err := accounts.Resolve(c.Request.Context(), claims.AccountID)
		if err != nil {
			if apperr.IsKind(err, apperr.NotFound) {
				response.Unauthorized(c, "account no longer exists")
			} else {
				response.InternalError(c, err)
			}
			c.Abort()
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

func bearer(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	raw := strings.TrimSpace(header[len(prefix):])
	return raw, raw != ""
}

// ActorFrom returns the authenticated actor, if any.
func ActorFrom(c *gin.Context) (service.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return service.Actor{}, false
	}
	a, ok := v.(service.Actor)
	return a, ok
}
