package token

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FileStore 基于本地JSON文件的键值存储
// 只读写 "token" 键，其余键原样保留
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore 创建文件存储
// 参数: path 存储文件路径
// 返回值: *FileStore 存储实例
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultFilePath 默认存储文件路径
// 返回值: string 文件路径, error 错误信息
func DefaultFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".drone-console", "storage.json"), nil
}

// Path 存储文件路径
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Load(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return "", err
	}
	return values[Key], nil
}

func (f *FileStore) Save(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return err
	}
	values[Key] = token
	return f.write(values)
}

func (f *FileStore) Remove(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := values[Key]; !ok {
		return nil
	}
	delete(values, Key)
	return f.write(values)
}

// read 读取全部键值，文件不存在时返回空映射
func (f *FileStore) read() (map[string]string, error) {
	values := make(map[string]string)
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read token storage: %w", err)
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse token storage %s: %w", f.path, err)
	}
	return values, nil
}

// write 先写临时文件再重命名
func (f *FileStore) write(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create storage directory: %w", err)
	}
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token storage: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write token storage: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace token storage: %w", err)
	}
	return nil
}
