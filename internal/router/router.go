package router

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// maxRedirects 单次导航允许的最大跳转次数
const maxRedirects = 10

// ErrTooManyRedirects 导航陷入重定向循环
var ErrTooManyRedirects = errors.New("too many redirects")

// SessionState 守卫所需的登录状态
type SessionState interface {
	IsLoggedIn() bool
}

// Location 解析后的导航位置
type Location struct {
	Path string
	Name string
	Meta Meta
	// Record 匹配到的路由记录
	Record Record
	// RedirectedFrom 路由级重定向前的路径
	RedirectedFrom string
}

// Router 路由器
// 路由表在创建时展开，之后不再变化
type Router struct {
	records  []Record
	byPath   map[string]int
	catchAll int
	session  SessionState
	product  string
	logger   *zap.Logger

	mu          sync.Mutex
	current     Location
	title       string
	history     []string
	reloadHooks []func()
}

// Option 路由器选项
type Option func(*Router)

// WithProductName 设置标题后缀
func WithProductName(name string) Option {
	return func(r *Router) {
		if name != "" {
			r.product = name
		}
	}
}

// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New 创建路由器
// 参数: routes 路由树, session 登录状态, opts 选项
// 返回值: *Router 路由器实例, error 路由表不合法时返回
func New(routes []Route, session SessionState, opts ...Option) (*Router, error) {
	if err := Validate(routes); err != nil {
		return nil, err
	}

	r := &Router{
		records:  Flatten(routes),
		byPath:   make(map[string]int),
		catchAll: -1,
		session:  session,
		product:  DefaultProductName,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	for i, rec := range r.records {
		if rec.CatchAll {
			r.catchAll = i
			continue
		}
		r.byPath[strings.ToLower(rec.FullPath)] = i
	}
	return r, nil
}

// Records 展开后的路由记录
func (r *Router) Records() []Record {
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Resolve 解析路径，跟随路由级重定向
// 匹配不区分大小写，未匹配的路径落到兜底路由
// 参数: path 目标路径
// 返回值: Location 解析结果, error 没有兜底路由或重定向循环时返回
func (r *Router) Resolve(path string) (Location, error) {
	path = normalize(path)
	origin := ""

	for hops := 0; hops <= maxRedirects; hops++ {
		// 路径匹配不区分大小写，命中后使用声明的路径
		idx, ok := r.byPath[strings.ToLower(path)]
		if !ok {
			if r.catchAll < 0 {
				return Location{}, fmt.Errorf("no route matches %s", path)
			}
			idx = r.catchAll
		}
		rec := r.records[idx]
		if ok {
			path = rec.FullPath
		}
		if rec.Redirect != "" && !rec.CatchAll {
			if origin == "" {
				origin = path
			}
			path = normalize(rec.Redirect)
			continue
		}
		return Location{
			Path:           path,
			Name:           rec.Name,
			Meta:           rec.Meta,
			Record:         rec,
			RedirectedFrom: origin,
		}, nil
	}
	return Location{}, fmt.Errorf("resolve %s: %w", path, ErrTooManyRedirects)
}

// Navigate 经过守卫的导航
// 目标有标题时先设置页面标题，再执行守卫；守卫重定向会发起新的导航
// 参数: path 目标路径
// 返回值: Location 最终到达的位置, error 错误信息
func (r *Router) Navigate(path string) (Location, error) {
	target := path
	for hops := 0; hops <= maxRedirects; hops++ {
		loc, err := r.Resolve(target)
		if err != nil {
			return Location{}, err
		}

		r.setTitle(loc)

		d := Guard(loc, r.session.IsLoggedIn())
		if d.Action == Redirect {
			r.logger.Debug("Navigation redirected by guard",
				zap.String("from", loc.Path),
				zap.String("to", d.Target))
			target = d.Target
			continue
		}

		r.arrive(loc)
		return loc, nil
	}
	return Location{}, fmt.Errorf("navigate %s: %w", path, ErrTooManyRedirects)
}

// HardRedirect 强制跳转
// 先执行重载钩子丢弃内存状态，再直接设置位置，不经过守卫
// 参数: path 目标路径
func (r *Router) HardRedirect(path string) {
	r.mu.Lock()
	hooks := append([]func(){}, r.reloadHooks...)
	r.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}

	loc, err := r.Resolve(path)
	if err != nil {
		r.logger.Error("Hard redirect failed", zap.String("path", path), zap.Error(err))
		return
	}
	r.setTitle(loc)
	r.arrive(loc)
	r.logger.Info("Hard redirect", zap.String("path", loc.Path))
}

// OnReload 注册强制跳转时执行的重载钩子
func (r *Router) OnReload(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reloadHooks = append(r.reloadHooks, fn)
}

// Current 当前位置
func (r *Router) Current() Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Title 当前页面标题
func (r *Router) Title() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.title
}

// History 已到达过的路径
func (r *Router) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.history...)
}

func (r *Router) setTitle(loc Location) {
	if loc.Meta.Title == "" {
		return
	}
	r.mu.Lock()
	r.title = PageTitle(loc.Meta.Title, r.product)
	r.mu.Unlock()
}

func (r *Router) arrive(loc Location) {
	r.mu.Lock()
	r.current = loc
	r.history = append(r.history, loc.Path)
	r.mu.Unlock()
}

// normalize 去掉查询串、锚点和末尾斜杠
func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}
