package client

import (
	"context"
	"strconv"

	"github.com/vera-byte/drone-console/pkg/model"
)

// UserAPI 用户服务接口
type UserAPI interface {
	// Login 用户登录
	// 参数: ctx 上下文, req 登录凭证
	// 返回值: string 会话令牌, error 错误信息
	Login(ctx context.Context, req model.LoginRequest) (string, error)

	// GetUserInfo 获取用户信息
	// 参数: ctx 上下文, id 用户ID
	// 返回值: *model.User 用户信息, error 错误信息
	GetUserInfo(ctx context.Context, id int64) (*model.User, error)

	// Health 健康检查
	// 参数: ctx 上下文
	// 返回值: string 服务状态, error 错误信息
	Health(ctx context.Context) (string, error)
}

// UserAdminAPI 用户管理接口
type UserAdminAPI interface {
	UserAPI

	Register(ctx context.Context, req model.RegisterRequest) (bool, error)
	PageUsers(ctx context.Context, query model.UserQuery) (*model.Page[model.User], error)
	UpdateUserStatus(ctx context.Context, id int64, status int) (bool, error)
	DeleteUser(ctx context.Context, id int64) (bool, error)
	CheckUsername(ctx context.Context, username string) (bool, error)
}

const userBasePath = "/api/user"

// userClient 用户服务客户端实现
type userClient struct {
	http *HTTPClient
}

// NewUserAPI 创建用户服务客户端
// 参数: c HTTP客户端
// 返回值: UserAdminAPI 客户端接口
func NewUserAPI(c *HTTPClient) UserAdminAPI {
	return &userClient{http: c}
}

// Login 用户登录
func (u *userClient) Login(ctx context.Context, req model.LoginRequest) (string, error) {
	return Post[string](ctx, u.http, userBasePath+"/login", req)
}

// GetUserInfo 获取用户信息
func (u *userClient) GetUserInfo(ctx context.Context, id int64) (*model.User, error) {
	return Get[*model.User](ctx, u.http, userPath(id))
}

// Health 健康检查
func (u *userClient) Health(ctx context.Context) (string, error) {
	return Get[string](ctx, u.http, userBasePath+"/health")
}

// Register 用户注册
func (u *userClient) Register(ctx context.Context, req model.RegisterRequest) (bool, error) {
	return Post[bool](ctx, u.http, userBasePath+"/register", req)
}

// PageUsers 分页查询用户
func (u *userClient) PageUsers(ctx context.Context, query model.UserQuery) (*model.Page[model.User], error) {
	opts := []RequestOption{
		WithQuery("current", strconv.Itoa(query.Current)),
		WithQuery("size", strconv.Itoa(query.Size)),
	}
	if query.Username != "" {
		opts = append(opts, WithQuery("username", query.Username))
	}
	if query.Status != nil {
		opts = append(opts, WithQuery("status", strconv.Itoa(*query.Status)))
	}
	return Get[*model.Page[model.User]](ctx, u.http, userBasePath+"/page", opts...)
}

// UpdateUserStatus 切换用户状态
func (u *userClient) UpdateUserStatus(ctx context.Context, id int64, status int) (bool, error) {
	return Put[bool](ctx, u.http, userPath(id)+"/status", nil, WithQuery("status", strconv.Itoa(status)))
}

// DeleteUser 删除用户
func (u *userClient) DeleteUser(ctx context.Context, id int64) (bool, error) {
	return Delete[bool](ctx, u.http, userPath(id))
}

// CheckUsername 检查用户名是否已存在
func (u *userClient) CheckUsername(ctx context.Context, username string) (bool, error) {
	return Get[bool](ctx, u.http, userBasePath+"/check/username", WithQuery("username", username))
}

func userPath(id int64) string {
	return userBasePath + "/" + strconv.FormatInt(id, 10)
}
