package notify

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
)

// Notifier 提示通道
type Notifier interface {
	Success(message string)
	Error(message string)
}

// ForOutput 按输出目标选择提示方式
// 终端使用彩色提示，重定向到文件或管道时写入日志
// 参数: out 输出目标, logger 日志器
// 返回值: Notifier 提示通道
func ForOutput(out io.Writer, logger *zap.Logger) Notifier {
	if f, ok := out.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return NewConsole(out)
	}
	return NewLog(logger)
}

// Console 终端提示，成功为绿色，失败为红色
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	success *color.Color
	failure *color.Color
}

// NewConsole 创建终端提示
// 参数: out 输出目标
// 返回值: *Console 提示实例
func NewConsole(out io.Writer) *Console {
	return &Console{
		out:     out,
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed, color.Bold),
	}
}

// Success 成功提示
func (c *Console) Success(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.success.Fprintf(c.out, "✔ %s\n", message)
}

// Error 失败提示
func (c *Console) Error(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failure.Fprintf(c.out, "✖ %s\n", message)
}

// Log 把提示写入日志，用于非交互场景
type Log struct {
	logger *zap.Logger
}

// NewLog 创建日志提示
func NewLog(logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{logger: logger.Named("notify")}
}

// Success 成功提示
func (l *Log) Success(message string) {
	l.logger.Info(message)
}

// Error 失败提示
func (l *Log) Error(message string) {
	l.logger.Warn(message)
}

// Recorder 记录所有提示
type Recorder struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

// Success 记录成功提示
func (r *Recorder) Success(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.successes = append(r.successes, message)
}

// Error 记录失败提示
func (r *Recorder) Error(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, message)
}

// Successes 已记录的成功提示
func (r *Recorder) Successes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.successes...)
}

// Errors 已记录的失败提示
func (r *Recorder) Errors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.errors...)
}

// String 调试输出
func (r *Recorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fmt.Sprintf("successes=%q errors=%q", r.successes, r.errors)
}
