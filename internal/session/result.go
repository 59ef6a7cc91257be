package session

// Result 会话操作结果
// 调用方可自行决定是否展示错误
type Result[T any] struct {
	Value T
	Err   error
}

// OK 操作是否成功
func (r Result[T]) OK() bool {
	return r.Err == nil
}

func ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

func fail[T any](err error) Result[T] {
	return Result[T]{Err: err}
}
