package model

import (
	"fmt"
	"strconv"
	"strings"
)

// UserType 用户类型
type UserType int

const (
	// UserTypeCustomer 普通用户（下单用户）
	UserTypeCustomer UserType = 0
	// UserTypePilot 飞手
	UserTypePilot UserType = 1
	// UserTypeAdmin 管理员
	UserTypeAdmin UserType = 2
	// UserTypeMerchant 商家
	UserTypeMerchant UserType = 3
)

var userTypeNames = map[UserType]string{
	UserTypeCustomer: "CUSTOMER",
	UserTypePilot:    "PILOT",
	UserTypeAdmin:    "ADMIN",
	UserTypeMerchant: "MERCHANT",
}

// String 返回后端使用的枚举名
func (t UserType) String() string {
	if name, ok := userTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN(" + strconv.Itoa(int(t)) + ")"
}

// UnmarshalJSON 兼容数字编码和枚举名两种格式
// 后端VO序列化为枚举名，而JWT载荷中是数字
func (t *UserType) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == "" {
		return nil
	}
	if raw[0] == '"' {
		name, err := strconv.Unquote(raw)
		if err != nil {
			return fmt.Errorf("invalid user type %s: %w", raw, err)
		}
		for code, n := range userTypeNames {
			if strings.EqualFold(n, name) {
				*t = code
				return nil
			}
		}
		if code, err := strconv.Atoi(name); err == nil {
			*t = UserType(code)
			return nil
		}
		return fmt.Errorf("unknown user type %q", name)
	}
	code, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid user type %s: %w", raw, err)
	}
	*t = UserType(code)
	return nil
}

// User 用户信息结构
// 对客户端而言仅用于展示
type User struct {
	ID            int64    `json:"id"`
	Username      string   `json:"username"`
	Nickname      string   `json:"nickname"`
	Avatar        string   `json:"avatar,omitempty"`
	Phone         string   `json:"phone,omitempty"`
	Email         string   `json:"email,omitempty"`
	UserType      UserType `json:"userType"`
	UserTypeDesc  string   `json:"userTypeDesc,omitempty"`
	Status        int      `json:"status"`
	StatusDesc    string   `json:"statusDesc,omitempty"`
	CreateTime    string   `json:"createTime,omitempty"`
	UpdateTime    string   `json:"updateTime,omitempty"`
	LastLoginTime string   `json:"lastLoginTime,omitempty"`
}

// Enabled 账户是否启用（0-禁用，1-启用）
func (u *User) Enabled() bool {
	return u.Status == 1
}

// DisplayName 优先使用昵称
func (u *User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Username
}

// LoginRequest 登录请求结构
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest 注册请求结构
type RegisterRequest struct {
	Username string   `json:"username" binding:"required"`
	Password string   `json:"password" binding:"required"`
	Nickname string   `json:"nickname,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	Email    string   `json:"email,omitempty"`
	UserType UserType `json:"userType"`
}

// UserQuery 用户分页查询条件
type UserQuery struct {
	Current  int    `json:"current"`
	Size     int    `json:"size"`
	Username string `json:"username,omitempty"`
	Status   *int   `json:"status,omitempty"`
}

// Page 分页数据
type Page[T any] struct {
	Records []T   `json:"records"`
	Total   int64 `json:"total"`
	Size    int64 `json:"size"`
	Current int64 `json:"current"`
	Pages   int64 `json:"pages"`
}
