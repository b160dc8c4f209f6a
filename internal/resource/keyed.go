package resource

import "sync"

// Keyed 按键（通常是会话 key）管理的资源集合
// 用于"每个浏览器会话同时只允许一个进行中的请求"的场景
type Keyed[T any] struct {
	mu    sync.Mutex
	items map[string]*Resource[T]
}

// NewKeyed 创建集合
func NewKeyed[T any]() *Keyed[T] {
	return &Keyed[T]{items: make(map[string]*Resource[T])}
}

// For 获取或创建 key 对应的资源
func (k *Keyed[T]) For(key string) *Resource[T] {
	k.mu.Lock()
	defer k.mu.Unlock()
	r, ok := k.items[key]
	if !ok {
		r = New[T]()
		k.items[key] = r
	}
	return r
}

// Cancel 取消 key 对应的进行中请求并移除
func (k *Keyed[T]) Cancel(key string) {
	k.mu.Lock()
	r, ok := k.items[key]
	delete(k.items, key)
	k.mu.Unlock()
	if ok {
		r.Cancel()
	}
}

// Release 请求结束后移除空闲资源，避免集合无限增长
func (k *Keyed[T]) Release(key string, r *Resource[T]) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if cur, ok := k.items[key]; ok && cur == r && !r.Loading() {
		delete(k.items, key)
	}
}

// Len 当前跟踪的 key 数量
func (k *Keyed[T]) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.items)
}
