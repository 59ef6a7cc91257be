package mockapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// TokenVerifier 令牌校验
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// AuthMiddleware 认证中间件
// 缺少或无效的Bearer令牌直接返回HTTP 401
// 参数: verifier 令牌校验器
// 返回值: gin.HandlerFunc 中间件函数
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 获取Authorization头
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, failure(http.StatusUnauthorized, "missing authorization header"))
			return
		}

		// 检查Bearer token格式
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, failure(http.StatusUnauthorized, "invalid authorization header format"))
			return
		}

		claims, err := verifier.Verify(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, failure(http.StatusUnauthorized, "invalid token"))
			return
		}

		c.Set(principalKey, claims)
		c.Next()
	}
}

// RequireAdmin 仅管理员可访问
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(principalKey)
		claims, ok := value.(*Claims)
		if !exists || !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, failure(http.StatusUnauthorized, "user not authenticated"))
			return
		}
		if claims.UserType != userTypeAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, failure(http.StatusForbidden, "insufficient permissions"))
			return
		}
		c.Next()
	}
}
