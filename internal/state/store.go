package state

import (
	"encoding/gob"
	"sync"

	"github.com/gin-contrib/sessions"
	"github.com/user/hellod/internal/model"
)

// Store 客户端状态的键值存储
// 写入为整值覆盖（last-write-wins），不做部分合并
type Store interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}) error
	Delete(key string) error
	Clear() error
}

// RegisterTypes 注册会话中保存的类型，供 Cookie 存储 gob 编码
func RegisterTypes() {
	gob.Register(model.ActiveProfile{})
	gob.Register(model.SearchHistory{})
}

// SessionStore 基于 gin-contrib/sessions 的存储
// 作用域（持久/标签页）由 Cookie 的 MaxAge 决定，在应用入口统一配置
type SessionStore struct {
	session sessions.Session
}

// NewSessionStore 包装当前请求的会话
func NewSessionStore(session sessions.Session) *SessionStore {
	return &SessionStore{session: session}
}

// Get 读取
func (s *SessionStore) Get(key string) (interface{}, bool) {
	v := s.session.Get(key)
	return v, v != nil
}

// Set 写入并保存
func (s *SessionStore) Set(key string, value interface{}) error {
	s.session.Set(key, value)
	return s.session.Save()
}

// Delete 删除并保存
func (s *SessionStore) Delete(key string) error {
	s.session.Delete(key)
	return s.session.Save()
}

// Clear 清空并保存
func (s *SessionStore) Clear() error {
	s.session.Clear()
	return s.session.Save()
}

// MemoryStore 内存存储，用于测试和命令行工具
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]interface{}
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]interface{})}
}

// Get 读取
func (m *MemoryStore) Get(key string) (interface{}, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

// Set 写入
func (m *MemoryStore) Set(key string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Delete 删除
func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Clear 清空
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]interface{})
	return nil
}
