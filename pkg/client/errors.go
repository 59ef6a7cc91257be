package client

import (
	"errors"
	"fmt"
)

// Kind 响应分类
type Kind int

const (
	// KindSuccess 传输成功且业务码为200
	KindSuccess Kind = iota
	// KindApplication 传输成功但业务码不为200
	KindApplication
	// KindUnauthorized HTTP 401
	KindUnauthorized
	// KindForbidden HTTP 403
	KindForbidden
	// KindNotFound HTTP 404
	KindNotFound
	// KindServer HTTP 500
	KindServer
	// KindHTTP 其他非2xx状态
	KindHTTP
	// KindNetwork 没有收到任何响应
	KindNetwork
)

// 各分类对应的哨兵错误，可配合 errors.Is 使用
var (
	ErrApplication  = errors.New("application failure")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("access denied")
	ErrNotFound     = errors.New("resource not found")
	ErrServer       = errors.New("internal server error")
	ErrHTTP         = errors.New("http failure")
	ErrNetwork      = errors.New("network error")
)

var kindNames = map[Kind]string{
	KindSuccess:      "success",
	KindApplication:  "application",
	KindUnauthorized: "unauthorized",
	KindForbidden:    "forbidden",
	KindNotFound:     "not_found",
	KindServer:       "server",
	KindHTTP:         "http",
	KindNetwork:      "network",
}

// String 分类名称
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) sentinel() error {
	switch k {
	case KindApplication:
		return ErrApplication
	case KindUnauthorized:
		return ErrUnauthorized
	case KindForbidden:
		return ErrForbidden
	case KindNotFound:
		return ErrNotFound
	case KindServer:
		return ErrServer
	case KindHTTP:
		return ErrHTTP
	case KindNetwork:
		return ErrNetwork
	}
	return nil
}

// Error 请求失败时返回的错误
type Error struct {
	Kind    Kind
	Status  int    // HTTP状态码，没有响应时为0
	Code    int    // 业务码，仅业务失败时有效
	Message string // 已展示给用户的提示信息
	Err     error  // 底层错误
}

// Error 实现error接口
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap 返回底层错误
func (e *Error) Unwrap() error {
	return e.Err
}

// Is 按分类匹配哨兵错误
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}
