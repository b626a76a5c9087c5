package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/anggol23/Be-Resonansi/internal/auth"
	"github.com/anggol23/Be-Resonansi/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	identityContextKey = "identity"
	requestTimeout     = 5 * time.Second
)

// 拒绝原因，用于日志和 auth_rejections_total 指标
const (
	rejectMissing = "missing"
	rejectExpired = "expired"
	rejectInvalid = "invalid"
	rejectRevoked = "revoked"
)

const invalidTokenMessage = "Invalid or expired token"

// identityHandler is a handler that runs behind Authenticate and receives
// the caller explicitly.
type identityHandler func(c *gin.Context, identity auth.Identity)

// Authenticate JWT 认证中间件。没有令牌返回 401，令牌无效或过期返回 403。
func (h *HTTPHandler) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			h.reject(c, rejectMissing, nil)
			Unauthorized(c, "Unauthorized")
			return
		}
		identity, ok := h.resolveIdentity(c, token)
		if !ok {
			return
		}
		c.Set(identityContextKey, identity)
		c.Next()
	}
}

// OptionalAuthenticate attaches the caller when a valid token is present and
// otherwise continues anonymously.
func (h *HTTPHandler) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		identity, err := h.auth.Authenticate(ctx, token)
		cancel()
		if err == nil {
			c.Set(identityContextKey, identity)
		}
		c.Next()
	}
}

func (h *HTTPHandler) resolveIdentity(c *gin.Context, token string) (auth.Identity, bool) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	identity, err := h.auth.Authenticate(ctx, token)
	switch {
	case err == nil:
		return identity, true
	case errors.Is(err, auth.ErrTokenExpired):
		h.reject(c, rejectExpired, err)
		ErrorResponse(c, http.StatusForbidden, ErrCodeTokenExpired, invalidTokenMessage)
	case errors.Is(err, service.ErrSessionRevoked):
		h.reject(c, rejectRevoked, err)
		ErrorResponse(c, http.StatusForbidden, ErrCodeTokenInvalid, invalidTokenMessage)
	case errors.Is(err, auth.ErrTokenInvalid):
		h.reject(c, rejectInvalid, err)
		ErrorResponse(c, http.StatusForbidden, ErrCodeTokenInvalid, invalidTokenMessage)
	default:
		h.respondError(c, err)
	}
	return auth.Identity{}, false
}

func (h *HTTPHandler) reject(c *gin.Context, reason string, err error) {
	h.metrics.AuthRejected(reason)
	entry := logrus.WithFields(logrus.Fields{
		"reason":    reason,
		"path":      c.Request.URL.Path,
		"client_ip": c.ClientIP(),
	})
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Warn("authentication rejected")
}

// RequireRole 角色守卫中间件，必须放在 Authenticate 之后。
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			panic("api: RequireRole used without Authenticate")
		}
		if identity.Role != role {
			Forbidden(c, "You are not allowed to perform this action")
			return
		}
		c.Next()
	}
}

// IdentityFrom 从上下文获取当前认证用户
func IdentityFrom(c *gin.Context) (auth.Identity, bool) {
	value, exists := c.Get(identityContextKey)
	if !exists {
		return auth.Identity{}, false
	}
	identity, ok := value.(auth.Identity)
	return identity, ok
}

// withIdentity adapts an identityHandler. The route must be behind
// Authenticate.
func withIdentity(next identityHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			panic("api: handler requires an authenticated identity")
		}
		next(c, identity)
	}
}

// callerOf returns the caller for routes where authentication is optional.
func callerOf(c *gin.Context) *auth.Identity {
	identity, ok := IdentityFrom(c)
	if !ok {
		return nil
	}
	return &identity
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}
