package model

import (
	"strconv"
	"strings"
)

// CodeSuccess 业务成功码
const CodeSuccess = 200

// Envelope 统一响应结构
// 所有接口的响应体都包装在 {code, message, data, timestamp} 中
type Envelope[T any] struct {
	Code      int       `json:"code"`
	Message   string    `json:"message"`
	Data      T         `json:"data"`
	Timestamp Timestamp `json:"timestamp"`
}

// OK 业务是否成功
// 仅当 code == 200 时认为成功，其余均为业务失败
func (e *Envelope[T]) OK() bool {
	return e.Code == CodeSuccess
}

// Timestamp 响应时间戳
// 后端返回毫秒数，也兼容字符串格式
type Timestamp string

// UnmarshalJSON 同时接受JSON字符串和数字
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*t = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		s, err := strconv.Unquote(raw)
		if err != nil {
			return err
		}
		*t = Timestamp(s)
		return nil
	}
	*t = Timestamp(raw)
	return nil
}
