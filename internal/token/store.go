package token

import (
	"context"
	"sync"
)

// Key 持久化存储中令牌使用的键
const Key = "token"

// Store 令牌持久化存储
// 单一共享槽位，后写覆盖先写
type Store interface {
	// Load 读取令牌，不存在时返回空字符串
	Load(ctx context.Context) (string, error)
	// Save 写入令牌
	Save(ctx context.Context, token string) error
	// Remove 删除令牌，不存在时不报错
	Remove(ctx context.Context) error
}

// MemoryStore 内存存储，进程退出即失效
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore 创建内存存储
// 参数: initial 初始令牌
// 返回值: *MemoryStore 存储实例
func NewMemoryStore(initial string) *MemoryStore {
	return &MemoryStore{token: initial}
}

func (m *MemoryStore) Load(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *MemoryStore) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) Remove(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
