package middleware

import (
	"strings"

	"snap2cook/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// UsernameKey gin context 中保存登入使用者名稱的鍵
const UsernameKey = "username"

// TokenValidator 驗證 bearer token 並回傳使用者名稱
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// RequireAuth 要求有效的 bearer token
func RequireAuth(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abortWithError(c, common.ErrUnauthorized)
			return
		}

		username, err := v.ValidateToken(token)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(UsernameKey, username)
		c.Next()
	}
}

// OptionalAuth 有 token 且有效時設定使用者，否則以匿名身分繼續
func OptionalAuth(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if username, err := v.ValidateToken(token); err == nil {
				c.Set(UsernameKey, username)
			}
		}
		c.Next()
	}
}

// Username 取得已驗證的使用者名稱
func Username(c *gin.Context) (string, bool) {
	username := c.GetString(UsernameKey)
	return username, username != ""
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func abortWithError(c *gin.Context, err error) {
	ce, ok := common.AsCustomError(err)
	if !ok {
		ce = common.ErrUnauthorized
	}
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(ce.Status, common.ErrorResponse{Code: ce.Code, Message: ce.Message})
}
