package mockapi

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// MemoryRateLimiter 内存实现的滑动窗口限流器
type MemoryRateLimiter struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	requests map[string][]time.Time
}

// NewMemoryRateLimiter 创建内存速率限制器
// 参数:
//   - limit: 限制数量
//   - window: 时间窗口
//
// 返回值:
//   - *MemoryRateLimiter: 内存速率限制器实例
func NewMemoryRateLimiter(limit int, window time.Duration) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		limit:    limit,
		window:   window,
		requests: make(map[string][]time.Time),
	}
}

// Allow 检查是否允许请求，返回是否允许和剩余请求数
func (m *MemoryRateLimiter) Allow(key string) (bool, int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	valid := m.prune(key, now)
	if len(valid) >= m.limit {
		return false, 0
	}
	m.requests[key] = append(valid, now)
	return true, m.limit - len(m.requests[key])
}

// prune 清理窗口外的请求记录
func (m *MemoryRateLimiter) prune(key string, now time.Time) []time.Time {
	windowStart := now.Add(-m.window)
	requests := m.requests[key]
	valid := requests[:0]
	for _, req := range requests {
		if req.After(windowStart) {
			valid = append(valid, req)
		}
	}
	m.requests[key] = valid
	return valid
}

// clientKey 基于客户端IP的限流key
func clientKey(c *gin.Context) string {
	// 尝试获取真实IP
	if ip := c.GetHeader("X-Forwarded-For"); ip != "" {
		ips := strings.Split(ip, ",")
		return fmt.Sprintf("ip:%s", strings.TrimSpace(ips[0]))
	}
	if ip, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		return fmt.Sprintf("ip:%s", ip)
	}
	return fmt.Sprintf("ip:%s", c.ClientIP())
}

// RateLimitMiddleware 速率限制中间件，超限时返回HTTP 429
// 参数:
//   - limiter: 速率限制器
//
// 返回值:
//   - gin.HandlerFunc: Gin中间件函数
func RateLimitMiddleware(limiter *MemoryRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, remaining := limiter.Allow(clientKey(c))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, failure(http.StatusTooManyRequests, "rate limit exceeded"))
			return
		}
		c.Next()
	}
}
