package client

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL 默认接口地址
	DefaultBaseURL = "http://localhost:8080"
	// DefaultTimeout 单次请求超时时间
	DefaultTimeout = 10 * time.Second
	// LoginPath 登录页路径
	LoginPath = "/login"

	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-Id"
)

// TokenStore 持久化令牌的读取与清除
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Remove(ctx context.Context) error
}

// Notifier 用户可见的提示通道
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Navigator 强制跳转（不经过路由守卫）
type Navigator interface {
	HardRedirect(path string)
}

// NavigatorFunc 函数形式的 Navigator
type NavigatorFunc func(path string)

// HardRedirect 调用 f(path)
func (f NavigatorFunc) HardRedirect(path string) {
	f(path)
}

// Options HTTP客户端配置
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	Tokens    TokenStore
	Notifier  Notifier
	Navigator Navigator
	Logger    *zap.Logger
}

// HTTPClient 带令牌注入和统一响应处理的HTTP客户端
type HTTPClient struct {
	rest      *resty.Client
	tokens    TokenStore
	notifier  Notifier
	navigator Navigator
	logger    *zap.Logger
}

// NewHTTPClient 创建HTTP客户端
// 参数: opts 客户端配置
// 返回值: *HTTPClient 客户端实例
func NewHTTPClient(opts Options) *HTTPClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	c := &HTTPClient{
		tokens:    opts.Tokens,
		notifier:  opts.Notifier,
		navigator: opts.Navigator,
		logger:    opts.Logger,
	}

	c.rest = resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Content-Type", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal).
		SetLogger(opts.Logger.Sugar()).
		OnBeforeRequest(c.attachToken)

	return c
}

// attachToken 请求拦截：存在持久化令牌时附加Bearer凭证
func (c *HTTPClient) attachToken(_ *resty.Client, req *resty.Request) error {
	req.SetHeader(headerRequestID, uuid.NewString())
	if c.tokens == nil {
		return nil
	}
	token, err := c.tokens.Load(req.Context())
	if err != nil {
		c.logger.Warn("Failed to load persisted token, sending unauthenticated", zap.Error(err))
		return nil
	}
	if token != "" {
		req.SetHeader(headerAuthorization, "Bearer "+token)
	}
	return nil
}

// RequestOption 单次请求配置
type RequestOption func(*callConfig)

type callConfig struct {
	headers map[string]string
	query   map[string]string
	timeout time.Duration
}

// WithHeader 设置请求头
func WithHeader(key, value string) RequestOption {
	return func(c *callConfig) {
		c.headers[key] = value
	}
}

// WithQuery 设置查询参数
func WithQuery(key, value string) RequestOption {
	return func(c *callConfig) {
		c.query[key] = value
	}
}

// WithTimeout 覆盖本次请求的超时时间（只能比客户端超时更短）
func WithTimeout(d time.Duration) RequestOption {
	return func(c *callConfig) {
		c.timeout = d
	}
}

// Do 发送请求并把业务数据解码到 result
// 参数: ctx 上下文, method 请求方法, path 请求路径, body 请求体(可为nil), result 结果指针(可为nil), opts 单次请求配置
// 返回值: error 失败时为 *Error
func (c *HTTPClient) Do(ctx context.Context, method, path string, body, result interface{}, opts ...RequestOption) error {
	cfg := callConfig{headers: map[string]string{}, query: map[string]string{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	req := c.rest.R().
		SetContext(ctx).
		SetHeaders(cfg.headers).
		SetQueryParams(cfg.query)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)

	status := 0
	var raw []byte
	if err == nil && resp != nil {
		status = resp.StatusCode()
		raw = resp.Body()
	}

	outcome := Classify(status, raw, err)
	if outcome.OK() && result != nil && len(outcome.Data) > 0 && string(outcome.Data) != "null" {
		if derr := json.Unmarshal(outcome.Data, result); derr != nil {
			outcome = Outcome{Kind: KindApplication, Status: status, Message: MsgRequestFailed, Err: derr}
		}
	}

	c.logger.Debug("API request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Stringer("outcome", outcome.Kind))

	return c.settle(ctx, outcome)
}

// settle 执行分类结果对应的副作用
// 每次失败只提示一次；401时清除令牌并强制跳转登录页
func (c *HTTPClient) settle(ctx context.Context, o Outcome) error {
	if o.OK() {
		return nil
	}

	if o.Kind == KindUnauthorized {
		if c.tokens != nil {
			if err := c.tokens.Remove(context.WithoutCancel(ctx)); err != nil {
				c.logger.Error("Failed to remove persisted token", zap.Error(err))
			}
		}
		if c.navigator != nil {
			c.navigator.HardRedirect(LoginPath)
		}
	}

	if c.notifier != nil {
		c.notifier.Error(o.Message)
	}

	return &Error{
		Kind:    o.Kind,
		Status:  o.Status,
		Code:    o.Code,
		Message: o.Message,
		Err:     o.Err,
	}
}

// Get 发送GET请求并返回解包后的数据
func Get[T any](ctx context.Context, c *HTTPClient, path string, opts ...RequestOption) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodGet, path, nil, &out, opts...)
	return out, err
}

// Post 发送POST请求并返回解包后的数据
func Post[T any](ctx context.Context, c *HTTPClient, path string, body interface{}, opts ...RequestOption) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodPost, path, body, &out, opts...)
	return out, err
}

// Put 发送PUT请求并返回解包后的数据
func Put[T any](ctx context.Context, c *HTTPClient, path string, body interface{}, opts ...RequestOption) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodPut, path, body, &out, opts...)
	return out, err
}

// Delete 发送DELETE请求并返回解包后的数据
func Delete[T any](ctx context.Context, c *HTTPClient, path string, opts ...RequestOption) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodDelete, path, nil, &out, opts...)
	return out, err
}
