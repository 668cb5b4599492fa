package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/library-catalog/internal/domain/identity"
	apperrors "github.com/xiebiao/library-catalog/pkg/errors"
	"github.com/xiebiao/library-catalog/pkg/jwt"
	"github.com/xiebiao/library-catalog/pkg/response"
)

// Context中的key
const (
	keyUserID      = "user_id"
	keyEmail       = "email"
	keyNickname    = "nickname"
	keyAccessToken = "access_token"
)

// Blacklist Token黑名单(redis.SessionStore满足此接口)
type Blacklist interface {
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}

// AuthMiddleware JWT认证中间件
// 设计说明：
// 1. 从Header提取Token并检查黑名单
// 2. 解析出的用户写入gin.Context，同时以identity.Identity写入请求的context.Context
// 3. 领域层只认identity.Identity，不依赖gin
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	blacklist  Blacklist
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, blacklist Blacklist) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		blacklist:  blacklist,
	}
}

// RequireAuth 要求登录
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if err := m.authenticate(c, token); err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth 有Token则解析，无效Token按匿名处理
// 用于公开接口(目录浏览)也需要识别当前用户的场景
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			_ = m.authenticate(c, token)
		}
		c.Next()
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context, token string) error {
	// 已登出或被强制失效的Token
	blocked, err := m.blacklist.IsInBlacklist(c.Request.Context(), token)
	if err != nil {
		return err
	}
	if blocked {
		return apperrors.New(apperrors.ErrCodeTokenExpired, "Token已失效，请重新登录")
	}

	claims, err := m.jwtManager.ParseToken(token)
	if err != nil {
		return err
	}

	c.Set(keyUserID, claims.UserID)
	c.Set(keyEmail, claims.Email)
	c.Set(keyNickname, claims.Nickname)
	c.Set(keyAccessToken, token)
	c.Request = c.Request.WithContext(identity.WithIdentity(c.Request.Context(), identity.User(claims.UserID)))
	return nil
}

// bearerToken 格式：Authorization: Bearer <token>
func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// CurrentIdentity 当前调用者，未登录为匿名
func CurrentIdentity(c *gin.Context) identity.Identity {
	return identity.FromContext(c.Request.Context())
}

// GetUserID 从Context获取当前登录用户ID，未登录返回0
func GetUserID(c *gin.Context) uint {
	if userID, exists := c.Get(keyUserID); exists {
		if uid, ok := userID.(uint); ok {
			return uid
		}
	}
	return 0
}

// GetAccessToken 当前请求使用的Access Token
func GetAccessToken(c *gin.Context) string {
	return c.GetString(keyAccessToken)
}
