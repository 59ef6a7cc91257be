package console

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vera-byte/drone-console/internal/config"
	"github.com/vera-byte/drone-console/internal/router"
	"github.com/vera-byte/drone-console/internal/session"
	"github.com/vera-byte/drone-console/internal/token"
	"github.com/vera-byte/drone-console/pkg/client"
)

// Console 控制台上下文
// 组装令牌存储、HTTP客户端、用户接口、会话和路由
type Console struct {
	Config  *config.Config
	Logger  *zap.Logger
	Tokens  token.Store
	HTTP    *client.HTTPClient
	Users   client.UserAdminAPI
	Session *session.Store
	Router  *router.Router

	closers []func() error
}

// New 创建控制台上下文
// 参数: ctx 上下文, cfg 配置, logger 日志器, notifier 提示通道
// 返回值: *Console 控制台实例, error 错误信息
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, notifier client.Notifier) (*Console, error) {
	tokens, closer, err := OpenTokenStore(ctx, cfg.Token)
	if err != nil {
		return nil, err
	}
	return Assemble(ctx, cfg, logger, notifier, tokens, closer)
}

// Assemble 使用给定的令牌存储组装控制台
func Assemble(ctx context.Context, cfg *config.Config, logger *zap.Logger, notifier client.Notifier, tokens token.Store, closer func() error) (*Console, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Console{Config: cfg, Logger: logger, Tokens: tokens}
	if closer != nil {
		c.closers = append(c.closers, closer)
	}

	// 401时强制跳转，路由在会话创建之后才可用
	var rt *router.Router
	nav := client.NavigatorFunc(func(path string) {
		if rt != nil {
			rt.HardRedirect(path)
		}
	})

	c.HTTP = client.NewHTTPClient(client.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.RequestTimeout(),
		Tokens:    tokens,
		Notifier:  notifier,
		Navigator: nav,
		Logger:    logger.Named("http"),
	})
	c.Users = client.NewUserAPI(c.HTTP)
	c.Session = session.New(ctx, c.Users, tokens, notifier, logger.Named("session"))

	var err error
	rt, err = router.New(router.DefaultRoutes(), c.Session,
		router.WithProductName(cfg.Console.ProductName),
		router.WithLogger(logger.Named("router")))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("build route table: %w", err)
	}
	rt.OnReload(func() {
		c.Session.Reload(context.Background())
	})
	c.Router = rt

	return c, nil
}

// OpenTokenStore 按配置打开令牌存储
// 参数: ctx 上下文, cfg 令牌配置
// 返回值: token.Store 存储, func() error 关闭函数（可能为nil）, error 错误信息
func OpenTokenStore(ctx context.Context, cfg config.TokenConfig) (token.Store, func() error, error) {
	switch cfg.Store {
	case "", "file":
		path := cfg.File
		if path == "" {
			var err error
			if path, err = token.DefaultFilePath(); err != nil {
				return nil, nil, err
			}
		}
		return token.NewFileStore(path), nil, nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		store := token.NewRedisStore(rdb, cfg.RedisKey)
		return store, store.Close, nil
	case "memory":
		return token.NewMemoryStore(""), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported token store: %s", cfg.Store)
	}
}

// Close 释放资源
func (c *Console) Close() error {
	var first error
	for _, closer := range c.closers {
		if err := closer(); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}
