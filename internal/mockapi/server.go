package mockapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var errUsernameTaken = errors.New("username already exists")

// result 统一响应结构，时间戳为毫秒
type result struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

func success(message string, data interface{}) result {
	return result{Code: http.StatusOK, Message: message, Data: data, Timestamp: time.Now().UnixMilli()}
}

func failure(code int, message string) result {
	return result{Code: code, Message: message, Timestamp: time.Now().UnixMilli()}
}

// Options 模拟后端配置
type Options struct {
	JWTSecret     string
	JWTExpiration time.Duration
	// RateLimit 每分钟允许的请求数，0表示不限流
	RateLimit int
	Users     []SeedUser
	// BcryptCost 密码哈希强度，为0时使用 bcrypt.DefaultCost
	BcryptCost int
}

// Server 用户服务模拟后端
type Server struct {
	engine *gin.Engine
	users  *userRepo
	issuer *Issuer
	logger *zap.Logger
}

// New 创建模拟后端
// 参数: opts 配置, logger 日志器
// 返回值: *Server 服务实例, error 错误信息
func New(opts Options, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.JWTExpiration <= 0 {
		opts.JWTExpiration = 24 * time.Hour
	}
	if opts.Users == nil {
		opts.Users = DefaultSeedUsers()
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}

	s := &Server{
		users:  newUserRepo(opts.BcryptCost),
		issuer: NewIssuer(opts.JWTSecret, opts.JWTExpiration),
		logger: logger,
	}
	for _, seed := range opts.Users {
		if _, err := s.users.create(seed); err != nil {
			return nil, err
		}
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	if opts.RateLimit > 0 {
		router.Use(RateLimitMiddleware(NewMemoryRateLimiter(opts.RateLimit, time.Minute)))
	}
	s.registerRoutes(router)
	s.engine = router
	return s, nil
}

// Handler HTTP处理器
func (s *Server) Handler() http.Handler {
	return s.engine
}

// registerRoutes 注册用户服务路由
func (s *Server) registerRoutes(router *gin.Engine) {
	auth := AuthMiddleware(s.issuer)

	api := router.Group("/api/user")
	api.POST("/login", s.login)
	api.POST("/register", s.register)
	api.GET("/health", s.health)
	api.GET("/check/username", s.checkUsername)
	api.GET("/page", auth, s.pageQuery)
	api.GET("/:id", auth, s.getUserDetail)
	api.PUT("/:id/status", auth, RequireAdmin(), s.updateStatus)
	api.DELETE("/:id", auth, RequireAdmin(), s.deleteUser)
}

type loginBody struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var body loginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusOK, failure(http.StatusBadRequest, "username and password are required"))
		return
	}

	u, ok := s.users.byUsername(body.Username)
	if !ok || bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(body.Password)) != nil {
		c.JSON(http.StatusOK, failure(http.StatusBadRequest, "invalid username or password"))
		return
	}
	if u.Status == 0 {
		c.JSON(http.StatusOK, failure(http.StatusBadRequest, "account disabled"))
		return
	}

	token, err := s.issuer.Issue(&u)
	if err != nil {
		s.logger.Error("Failed to issue token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, failure(http.StatusInternalServerError, "failed to issue token"))
		return
	}
	s.users.touchLogin(u.ID)
	s.logger.Info("User logged in", zap.Int64("id", u.ID), zap.String("username", u.Username))
	c.JSON(http.StatusOK, success("login succeeded", token))
}

type registerBody struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Nickname string `json:"nickname"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	UserType int    `json:"userType"`
}

func (s *Server) register(c *gin.Context) {
	var body registerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusOK, failure(http.StatusBadRequest, "username and password are required"))
		return
	}
	if _, known := userTypeNames[body.UserType]; !known {
		c.JSON(http.StatusOK, failure(http.StatusBadRequest, "unknown user type"))
		return
	}

	_, err := s.users.create(SeedUser{
		Username: body.Username,
		Password: body.Password,
		Nickname: body.Nickname,
		UserType: body.UserType,
		Status:   1,
	})
	if errors.Is(err, errUsernameTaken) {
		c.JSON(http.StatusOK, failure(http.StatusBadRequest, err.Error()))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, failure(http.StatusInternalServerError, "failed to register user"))
		return
	}
	c.JSON(http.StatusOK, success("registered", true))
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, success("ok", "user service is running"))
}

func (s *Server) checkUsername(c *gin.Context) {
	_, exists := s.users.byUsername(c.Query("username"))
	c.JSON(http.StatusOK, success("ok", exists))
}

type pageData struct {
	Records []userVO `json:"records"`
	Total   int64    `json:"total"`
	Size    int64    `json:"size"`
	Current int64    `json:"current"`
	Pages   int64    `json:"pages"`
}

func (s *Server) pageQuery(c *gin.Context) {
	current, err := strconv.Atoi(c.DefaultQuery("current", "1"))
	if err != nil || current < 1 {
		current = 1
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil || size < 1 {
		size = 10
	}
	var status *int
	if raw := c.Query("status"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			status = &v
		}
	}

	records, total := s.users.page(current, size, c.Query("username"), status)
	pages := (total + size - 1) / size
	c.JSON(http.StatusOK, success("ok", pageData{
		Records: records,
		Total:   int64(total),
		Size:    int64(size),
		Current: int64(current),
		Pages:   int64(pages),
	}))
}

func (s *Server) getUserDetail(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	u, found := s.users.byID(id)
	if !found {
		c.JSON(http.StatusOK, failure(http.StatusNotFound, "user not found"))
		return
	}
	c.JSON(http.StatusOK, success("ok", u.view()))
}

func (s *Server) updateStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	status, err := strconv.Atoi(c.Query("status"))
	if err != nil || (status != 0 && status != 1) {
		c.JSON(http.StatusOK, failure(http.StatusBadRequest, "status must be 0 or 1"))
		return
	}
	if !s.users.setStatus(id, status) {
		c.JSON(http.StatusOK, failure(http.StatusNotFound, "user not found"))
		return
	}
	c.JSON(http.StatusOK, success("status updated", true))
}

func (s *Server) deleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if !s.users.remove(id) {
		c.JSON(http.StatusOK, failure(http.StatusNotFound, "user not found"))
		return
	}
	c.JSON(http.StatusOK, success("deleted", true))
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, failure(http.StatusBadRequest, "invalid user id"))
		return 0, false
	}
	return id, true
}

// Run 启动模拟后端，ctx取消后优雅关闭
// 参数: ctx 上下文, addr 监听地址
// 返回值: error 错误信息
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting mock user service", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down mock user service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
