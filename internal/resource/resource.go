package resource

import (
	"context"
	"sync"

	"github.com/user/hellod/internal/errors"
	"golang.org/x/sync/errgroup"
)

// FetchFunc 一次远程读取
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Result 一次读取的结果
type Result[T any] struct {
	Data T
	Err  error
}

// Resource 远程资源
// 同一时刻只有最新一次 Issue 的结果有效：新的 Issue 会取消上一次，
// 被取代或发起方已离开（ctx 结束）的结果直接丢弃，不会写入 Last
type Resource[T any] struct {
	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	loading bool
	last    Result[T]
	loaded  bool
}

// New 创建资源
func New[T any]() *Resource[T] {
	return &Resource[T]{}
}

// Issue 发起读取并等待结果
func (r *Resource[T]) Issue(ctx context.Context, fetch FetchFunc[T]) (T, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.gen++
	gen := r.gen
	r.cancel = cancel
	r.loading = true
	r.mu.Unlock()

	data, err := fetch(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.gen || ctx.Err() != nil {
		// 被新的请求取代，或调用方已取消
		if gen == r.gen {
			r.loading = false
			r.cancel = nil
		}
		var zero T
		cause := ctx.Err()
		if cause == nil {
			cause = context.Canceled
		}
		return zero, errors.Cancelled(cause)
	}

	r.loading = false
	r.cancel = nil
	r.last = Result[T]{Data: data, Err: err}
	r.loaded = true
	return data, err
}

// Loading 是否有读取正在进行
func (r *Resource[T]) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

// Last 最近一次有效结果，从未完成过则 ok 为 false
func (r *Resource[T]) Last() (Result[T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.loaded
}

// Cancel 取消进行中的读取，其结果将被丢弃
func (r *Resource[T]) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.gen++
	r.loading = false
}

// FetchAll 并发执行一组相互独立的读取
// 每个结果单独携带自己的错误，一个失败不会中断其他读取
func FetchAll[K comparable, T any](ctx context.Context, fetches map[K]FetchFunc[T]) map[K]Result[T] {
	var (
		mu      sync.Mutex
		results = make(map[K]Result[T], len(fetches))
	)

	g, gctx := errgroup.WithContext(ctx)
	for key, fetch := range fetches {
		g.Go(func() error {
			data, err := fetch(gctx)
			mu.Lock()
			results[key] = Result[T]{Data: data, Err: err}
			mu.Unlock()
			// 始终返回 nil，避免 errgroup 取消兄弟任务
			return nil
		})
	}
	_ = g.Wait()

	return results
}
