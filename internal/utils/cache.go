package utils

import (
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/patrickmn/go-cache"
)

// TTLCache 带过期时间的键值缓存（go-cache）
// 用于按会话保存列表结果，Cookie 中只保留会话 key
type TTLCache struct {
	c *cache.Cache
}

// NewTTLCache 创建缓存，清理间隔为有效期的两倍
func NewTTLCache(ttl time.Duration) *TTLCache {
	return &TTLCache{c: cache.New(ttl, 2*ttl)}
}

// Get 获取缓存值
func (t *TTLCache) Get(key string) (interface{}, bool) {
	return t.c.Get(key)
}

// Set 设置缓存值（整体覆盖），使用默认有效期
func (t *TTLCache) Set(key string, value interface{}) {
	t.c.Set(key, value, cache.DefaultExpiration)
}

// Delete 删除缓存
func (t *TTLCache) Delete(key string) {
	t.c.Delete(key)
}

// DeletePrefix 删除所有以 prefix 开头的缓存
func (t *TTLCache) DeletePrefix(prefix string) {
	for key := range t.c.Items() {
		if strings.HasPrefix(key, prefix) {
			t.c.Delete(key)
		}
	}
}

// Clear 清空所有缓存
func (t *TTLCache) Clear() {
	t.c.Flush()
}

// Len 当前条目数（含未清理的过期条目）
func (t *TTLCache) Len() int {
	return t.c.ItemCount()
}

// CacheItem 包装实际的数据，增加过期时间
type CacheItem[T any] struct {
	Value     T
	ExpiredAt time.Time
}

// SearchCache 搜索预览缓存，LRU 淘汰 + TTL 过期
type SearchCache[T any] struct {
	storage *lru.Cache[string, CacheItem[T]]
	ttl     time.Duration
}

// NewSearchCache 初始化，size 是最大缓存条数，ttl 是数据有效期
func NewSearchCache[T any](size int, ttl time.Duration) *SearchCache[T] {
	if size <= 0 {
		size = 1
	}
	// lru.New 是线程安全的
	c, _ := lru.New[string, CacheItem[T]](size)
	return &SearchCache[T]{
		storage: c,
		ttl:     ttl,
	}
}

// Set 新增或覆盖
func (c *SearchCache[T]) Set(key string, value T) {
	c.storage.Add(key, CacheItem[T]{
		Value:     value,
		ExpiredAt: time.Now().Add(c.ttl),
	})
}

// Get 读取，过期条目视为不存在并删除
func (c *SearchCache[T]) Get(key string) (T, bool) {
	var zero T
	item, ok := c.storage.Get(key)
	if !ok {
		return zero, false
	}
	if time.Now().After(item.ExpiredAt) {
		c.storage.Remove(key)
		return zero, false
	}
	return item.Value, true
}

// Delete 删除
func (c *SearchCache[T]) Delete(key string) {
	c.storage.Remove(key)
}

// Clear 清空
func (c *SearchCache[T]) Clear() {
	c.storage.Purge()
}

// Len 当前条数
func (c *SearchCache[T]) Len() int {
	return c.storage.Len()
}
