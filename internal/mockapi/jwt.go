package mockapi

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims 令牌载荷，字段与用户服务签发的一致
type Claims struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	UserType int    `json:"userType"`
	jwt.RegisteredClaims
}

// Issuer HS512令牌签发与校验
type Issuer struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewIssuer 创建令牌签发器
// 参数: secret 签名密钥, expiration 有效期
// 返回值: *Issuer 签发器实例
func NewIssuer(secret string, expiration time.Duration) *Issuer {
	return &Issuer{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

// Issue 签发令牌
func (i *Issuer) Issue(u *user) (string, error) {
	now := i.now()
	claims := Claims{
		UserID:   u.ID,
		Username: u.Username,
		UserType: u.UserType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expiration)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify 校验令牌签名和有效期
func (i *Issuer) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
