package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/vera-byte/drone-console/internal/token"
	"github.com/vera-byte/drone-console/pkg/client"
	"github.com/vera-byte/drone-console/pkg/model"
)

// 会话提示信息
const (
	MsgLoginSucceeded = "login succeeded"
	MsgLoggedOut      = "logged out"
	MsgEmptyToken     = "login failed: no token returned"
)

// ErrEmptyToken 登录接口成功返回但没有令牌
var ErrEmptyToken = errors.New("login returned an empty token")

// Store 会话状态
// 持有令牌、用户信息和登录状态，登录状态由令牌是否为空推导
type Store struct {
	api      client.UserAPI
	tokens   token.Store
	notifier client.Notifier
	logger   *zap.Logger

	mu       sync.RWMutex
	token    string
	userInfo *model.User
}

// New 创建会话状态并从持久化存储恢复令牌
// 参数: ctx 上下文, api 用户接口, tokens 令牌存储, notifier 提示通道, logger 日志器
// 返回值: *Store 会话实例
func New(ctx context.Context, api client.UserAPI, tokens token.Store, notifier client.Notifier, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		api:      api,
		tokens:   tokens,
		notifier: notifier,
		logger:   logger,
	}
	s.Reload(ctx)
	return s
}

// Reload 丢弃内存状态，重新从持久化存储推导
// 读取失败时按未登录处理
func (s *Store) Reload(ctx context.Context) {
	persisted, err := s.tokens.Load(ctx)
	if err != nil {
		s.logger.Warn("Failed to read persisted token", zap.Error(err))
		persisted = ""
	}

	s.mu.Lock()
	s.token = persisted
	s.userInfo = nil
	s.mu.Unlock()
}

// Token 当前令牌
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// UserInfo 缓存的用户信息，可能为nil
func (s *Store) UserInfo() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userInfo
}

// IsLoggedIn 是否已登录
func (s *Store) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Claims 解析当前令牌的载荷
func (s *Store) Claims() (*Claims, error) {
	return ParseClaims(s.Token())
}

// Login 登录
// 成功时保存令牌并持久化；失败时保持未登录，错误已由客户端提示，这里只记录日志
// 参数: ctx 上下文, req 登录凭证
// 返回值: Result[string] 成功时为令牌
func (s *Store) Login(ctx context.Context, req model.LoginRequest) Result[string] {
	result, err := s.api.Login(ctx, req)
	if err != nil {
		s.logger.Error("Login failed", zap.String("username", req.Username), zap.Error(err))
		return fail[string](err)
	}
	// 客户端认为请求成功，不会提示，这里补一次失败提示
	if result == "" {
		s.logger.Error("Login failed", zap.String("username", req.Username), zap.Error(ErrEmptyToken))
		if s.notifier != nil {
			s.notifier.Error(MsgEmptyToken)
		}
		return fail[string](ErrEmptyToken)
	}

	s.mu.Lock()
	s.token = result
	s.mu.Unlock()

	if err := s.tokens.Save(ctx, result); err != nil {
		s.logger.Error("Failed to persist token", zap.Error(err))
	}

	s.notify(MsgLoginSucceeded)
	s.logger.Info("Login succeeded", zap.String("username", req.Username))
	return ok(result)
}

// Logout 退出登录，无条件成功
// 参数: ctx 上下文
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.token = ""
	s.userInfo = nil
	s.mu.Unlock()

	if err := s.tokens.Remove(ctx); err != nil {
		s.logger.Error("Failed to remove persisted token", zap.Error(err))
	}

	s.notify(MsgLoggedOut)
}

// FetchUserInfo 获取并缓存用户信息
// 失败时记录日志并保留原有用户信息
// 参数: ctx 上下文, id 用户ID
// 返回值: Result[*model.User] 成功时为用户信息
func (s *Store) FetchUserInfo(ctx context.Context, id int64) Result[*model.User] {
	user, err := s.api.GetUserInfo(ctx, id)
	if err != nil {
		s.logger.Error("Failed to fetch user info", zap.Int64("id", id), zap.Error(err))
		return fail[*model.User](err)
	}

	s.mu.Lock()
	s.userInfo = user
	s.mu.Unlock()
	return ok(user)
}

// ClearUserInfo 清除用户信息，不影响登录状态
func (s *Store) ClearUserInfo() {
	s.mu.Lock()
	s.userInfo = nil
	s.mu.Unlock()
}

func (s *Store) notify(message string) {
	if s.notifier != nil {
		s.notifier.Success(message)
	}
}
