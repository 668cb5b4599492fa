package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionCookie 匿名会话cookie名
const SessionCookie = "sid"

const keySessionID = "session_id"

// Session 为每个浏览器分配会话ID，用于首页访问计数
// cookie有效期与访问计数的过期时间一致
func Session(maxAge time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(SessionCookie)
		if err != nil || sid == "" {
			sid = uuid.New().String()
		}
		// 每次访问都续期
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, sid, int(maxAge.Seconds()), "/", "", false, true)
		c.Set(keySessionID, sid)
		c.Next()
	}
}

// GetSessionID 当前会话ID，未经过Session中间件时为空
func GetSessionID(c *gin.Context) string {
	return c.GetString(keySessionID)
}
