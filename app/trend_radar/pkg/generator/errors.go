package generator

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrProviderUnavailable 无法连接生成服务或请求在途中失败
	ErrProviderUnavailable = errors.New("report provider unavailable")
	// ErrRequestDenied 生成服务拒绝请求，例如密钥无效
	ErrRequestDenied = errors.New("report request denied")
	// ErrMalformedResponse 返回内容无法解析出任何合格条目
	ErrMalformedResponse = errors.New("malformed report response")
)

// Error 生成失败的详细信息。Raw 保留服务商原文，便于排查解析失败。
type Error struct {
	Kind error
	Raw  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

// Is 让 errors.Is 可以直接对比哨兵错误。拒绝也算作不可用。
func (e *Error) Is(target error) bool {
	if target == e.Kind {
		return true
	}
	return e.Kind == ErrRequestDenied && target == ErrProviderUnavailable
}

func (e *Error) Unwrap() error {
	return e.Err
}

var deniedMarkers = []string{"401", "403", "unauthorized", "forbidden", "invalid api key", "incorrect api key", "permission denied"}

// classify 区分拒绝与不可用，二者对调用方都是整体失败
func classify(err error) *Error {
	msg := strings.ToLower(err.Error())
	for _, m := range deniedMarkers {
		if strings.Contains(msg, m) {
			return &Error{Kind: ErrRequestDenied, Err: err}
		}
	}
	return &Error{Kind: ErrProviderUnavailable, Err: err}
}
