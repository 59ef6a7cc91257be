package client

import (
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/vera-byte/drone-console/pkg/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// 统一的提示信息
const (
	MsgRequestFailed  = "request failed"
	MsgUnauthorized   = "unauthorized"
	MsgForbidden      = "access denied"
	MsgNotFound       = "resource not found"
	MsgInternalError  = "internal server error"
	MsgNetworkFailure = "network error"
)

// Outcome 一次请求的分类结果
type Outcome struct {
	Kind    Kind
	Status  int
	Code    int
	Message string
	Data    jsoniter.RawMessage
	Err     error
}

// OK 是否成功
func (o Outcome) OK() bool {
	return o.Kind == KindSuccess
}

// Classify 根据原始响应对请求结果分类
// 纯函数，不产生任何副作用
// 参数: status HTTP状态码（没有响应时为0）, body 响应体, transportErr 传输层错误
// 返回值: Outcome 分类结果
func Classify(status int, body []byte, transportErr error) Outcome {
	if status == 0 {
		return Outcome{Kind: KindNetwork, Message: MsgNetworkFailure, Err: transportErr}
	}

	if status < 200 || status > 299 {
		return classifyStatus(status, body, transportErr)
	}

	var env model.Envelope[jsoniter.RawMessage]
	if err := json.Unmarshal(body, &env); err != nil {
		return Outcome{Kind: KindApplication, Status: status, Message: MsgRequestFailed, Err: err}
	}
	if !env.OK() {
		msg := env.Message
		if msg == "" {
			msg = MsgRequestFailed
		}
		return Outcome{
			Kind:    KindApplication,
			Status:  status,
			Code:    env.Code,
			Message: msg,
			Err:     fmt.Errorf("code %d: %s", env.Code, msg),
		}
	}
	return Outcome{Kind: KindSuccess, Status: status, Code: env.Code, Message: env.Message, Data: env.Data}
}

// classifyStatus 按HTTP状态码分类传输层失败
func classifyStatus(status int, body []byte, transportErr error) Outcome {
	o := Outcome{Status: status, Err: transportErr}
	if o.Err == nil {
		o.Err = fmt.Errorf("http status %d", status)
	}

	switch status {
	case http.StatusUnauthorized:
		o.Kind, o.Message = KindUnauthorized, MsgUnauthorized
	case http.StatusForbidden:
		o.Kind, o.Message = KindForbidden, MsgForbidden
	case http.StatusNotFound:
		o.Kind, o.Message = KindNotFound, MsgNotFound
	case http.StatusInternalServerError:
		o.Kind, o.Message = KindServer, MsgInternalError
	default:
		o.Kind = KindHTTP
		o.Message = fmt.Sprintf("%s (%d)", MsgRequestFailed, status)
		var env model.Envelope[jsoniter.RawMessage]
		if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
			o.Message = env.Message
			o.Code = env.Code
		}
	}
	return o
}
