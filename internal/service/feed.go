package service

import (
	"context"
	"log"
	"time"

	"github.com/user/hellod/internal/errors"
	"github.com/user/hellod/internal/model"
	"github.com/user/hellod/internal/resource"
)

// 用户可见的提示
const (
	MsgFeedFail        = "추천 목록을 불러오지 못했습니다."
	MsgFeedEmpty       = "추천할 콘텐츠가 없습니다."
	MsgSpotifyFail     = "플레이리스트 상태를 업데이트하는 중 오류가 발생했습니다. 다시 시도해 주세요."
	MsgSpotifyTimeout  = "Spotify 연동 대기 시간이 초과되었습니다. 다시 시도해 주세요."
	MsgProfileNotFound = "사용자를 찾을 수 없습니다."
)

// FeedResult 一个推荐列表的加载结果
type FeedResult struct {
	Feed    model.Feed         `json:"feed"`
	Title   string             `json:"title"`
	Vods    []model.VodSummary `json:"vods"`
	Linked  bool               `json:"linked"`             // 仅 spotify：账号是否已关联
	AuthURL string             `json:"auth_url,omitempty"` // 仅 spotify：未关联时的授权地址
	Error   string             `json:"error,omitempty"`
	Notice  string             `json:"notice,omitempty"` // 成功但没有内容
	Err     error              `json:"-"`
}

// FeedService 首页推荐
type FeedService struct {
	backend Backend
	awaiter *LinkAwaiter
}

// NewFeedService 创建服务
func NewFeedService(backend Backend, pollInterval, linkTimeout time.Duration) *FeedService {
	return &FeedService{
		backend: backend,
		awaiter: NewLinkAwaiter(backend, pollInterval, linkTimeout),
	}
}

// Awaiter 音乐账号关联等待器
func (s *FeedService) Awaiter() *LinkAwaiter {
	return s.awaiter
}

// Load 加载单个推荐列表，错误记录在结果中
func (s *FeedService) Load(ctx context.Context, feed model.Feed, userID string) FeedResult {
	res := FeedResult{Feed: feed, Title: feed.Title(), Linked: true}

	var err error
	if feed == model.FeedSpotify {
		err = s.loadSpotify(ctx, userID, &res)
	} else {
		res.Vods, err = s.backend.Feed(ctx, feed, userID)
	}

	if err != nil {
		res.Err = err
		res.Vods = nil
		if feed == model.FeedSpotify {
			res.Error = MsgSpotifyFail
		} else {
			res.Error = MsgFeedFail
		}
		if !errors.IsCancelled(err) {
			log.Printf("[FeedService] 加载推荐 %s 失败 user=%s: %v", feed, userID, err)
		}
	}
	if res.Vods == nil {
		res.Vods = []model.VodSummary{}
	}
	if err == nil && res.Linked && len(res.Vods) == 0 {
		res.Notice = MsgFeedEmpty
	}
	return res
}

func (s *FeedService) loadSpotify(ctx context.Context, userID string, res *FeedResult) error {
	sf, err := s.backend.SpotifyFeed(ctx, userID)
	if err != nil {
		return err
	}
	if sf.Linked() {
		res.Vods = sf.Vods
		return nil
	}

	// 拿到授权地址后才展示关联入口
	authURL, err := s.backend.SpotifyAuthURL(ctx, userID)
	if err != nil {
		return err
	}
	res.Linked = false
	res.AuthURL = authURL
	return nil
}

// LoadAll 并发加载全部五个推荐列表，按首页顺序返回
// 各列表互不影响，一个失败不会中断其他
func (s *FeedService) LoadAll(ctx context.Context, userID string) []FeedResult {
	fetches := make(map[model.Feed]resource.FetchFunc[FeedResult], len(model.Feeds))
	for _, feed := range model.Feeds {
		fetches[feed] = func(ctx context.Context) (FeedResult, error) {
			res := s.Load(ctx, feed, userID)
			return res, res.Err
		}
	}

	results := resource.FetchAll(ctx, fetches)

	out := make([]FeedResult, 0, len(model.Feeds))
	for _, feed := range model.Feeds {
		out = append(out, results[feed].Data)
	}
	return out
}

// LinkAwaiter 等待音乐账号关联完成
// 按固定间隔轮询 spotify 推荐接口，直到已关联、超时、调用方离开或被取消
type LinkAwaiter struct {
	backend  Backend
	interval time.Duration
	timeout  time.Duration // 0 表示不限时
	tasks    *resource.Keyed[*model.SpotifyFeed]
}

// NewLinkAwaiter 创建等待器
func NewLinkAwaiter(backend Backend, interval, timeout time.Duration) *LinkAwaiter {
	if interval <= 0 {
		interval = time.Second
	}
	return &LinkAwaiter{
		backend:  backend,
		interval: interval,
		timeout:  timeout,
		tasks:    resource.NewKeyed[*model.SpotifyFeed](),
	}
}

// Await 阻塞等待关联完成并返回推荐列表
// 同一会话 key 的新等待会取代旧的
func (a *LinkAwaiter) Await(ctx context.Context, key, userID string) (*model.SpotifyFeed, error) {
	task := a.tasks.For(key)
	defer a.tasks.Release(key, task)

	return task.Issue(ctx, func(ctx context.Context) (*model.SpotifyFeed, error) {
		return a.poll(ctx, userID)
	})
}

// Cancel 取消会话 key 上进行中的等待（切换用户时调用）
func (a *LinkAwaiter) Cancel(key string) {
	a.tasks.Cancel(key)
}

// Pending 进行中的等待数量
func (a *LinkAwaiter) Pending() int {
	return a.tasks.Len()
}

func (a *LinkAwaiter) poll(ctx context.Context, userID string) (*model.SpotifyFeed, error) {
	var deadline <-chan time.Time
	if a.timeout > 0 {
		timer := time.NewTimer(a.timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, errors.Cancelled(ctx.Err())
		case <-deadline:
			log.Printf("[LinkAwaiter] 等待关联超时 user=%s", userID)
			return nil, errors.TimeoutError(MsgSpotifyTimeout)
		case <-ticker.C:
		}

		feed, err := a.backend.SpotifyFeed(ctx, userID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.Cancelled(ctx.Err())
			}
			// 单次失败（含后端超时）不终止等待，下一轮继续
			log.Printf("[LinkAwaiter] 查询关联状态失败 user=%s: %v", userID, err)
			continue
		}
		if feed.Linked() {
			return feed, nil
		}
	}
}
