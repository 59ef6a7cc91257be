package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vera-byte/drone-console/pkg/model"
)

// ErrNoToken 当前未登录
var ErrNoToken = errors.New("not logged in")

// Claims 令牌载荷
type Claims struct {
	UserID   int64          `json:"userId"`
	Username string         `json:"username"`
	UserType model.UserType `json:"userType"`
	jwt.RegisteredClaims
}

// Expired 令牌是否已过期，没有过期时间时视为未过期
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !c.ExpiresAt.Time.After(now)
}

// ParseClaims 解析令牌载荷，不校验签名
// 签名由服务端校验，客户端只读取展示所需的字段
// 参数: token 会话令牌
// 返回值: *Claims 载荷, error 错误信息
func ParseClaims(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse token claims: %w", err)
	}
	return claims, nil
}
