package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/user/hellod/internal/errors"
	"github.com/user/hellod/internal/model"
	"github.com/user/hellod/internal/resource"
	"github.com/user/hellod/internal/state"
	"github.com/user/hellod/internal/utils"
	"golang.org/x/sync/singleflight"
)

// PreviewLimit 输入框下拉预览条数
const PreviewLimit = 5

// 搜索接口形式
const (
	SearchByPath  = "path"  // GET /search/{term}
	SearchByQuery = "query" // POST /search-vods
)

// 用户可见的提示
const (
	MsgSearchEmpty = "검색어에 맞는 VOD가 없습니다."
	MsgSearchFail  = "검색 중 문제가 발생했습니다."
)

// SearchView 搜索结果页数据
type SearchView struct {
	Term    string
	Results []model.VodSummary
	Message string
	History []model.SearchHistoryEntry // 最新在前
}

// SearchService 搜索
type SearchService struct {
	backend  Backend
	mode     string
	sf       singleflight.Group
	previews *utils.SearchCache[[]model.VodSummary]
	// 同一会话连续输入时只保留最新一次预览
	inflight *resource.Keyed[[]model.VodSummary]
}

// NewSearchService 创建服务
func NewSearchService(backend Backend, mode string, previewSize int, previewTTL time.Duration) *SearchService {
	if mode != SearchByQuery {
		mode = SearchByPath
	}
	return &SearchService{
		backend:  backend,
		mode:     mode,
		sf:       singleflight.Group{},
		previews: utils.NewSearchCache[[]model.VodSummary](previewSize, previewTTL),
		inflight: resource.NewKeyed[[]model.VodSummary](),
	}
}

// Preview 输入框预览，最多 5 条
// 空白输入不请求后端；相同关键词的并发请求合并为一次
func (s *SearchService) Preview(ctx context.Context, sessionKey, q string) ([]model.VodSummary, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []model.VodSummary{}, nil
	}
	if cached, ok := s.previews.Get(q); ok {
		return cached, nil
	}

	task := s.inflight.For(sessionKey)
	defer s.inflight.Release(sessionKey, task)

	return task.Issue(ctx, func(ctx context.Context) ([]model.VodSummary, error) {
		ch := s.sf.DoChan(q, func() (interface{}, error) {
			// 合并后的请求不随单个调用方取消
			vods, err := s.fetch(context.WithoutCancel(ctx), q)
			if err != nil {
				return nil, err
			}
			if len(vods) > PreviewLimit {
				vods = vods[:PreviewLimit]
			}
			s.previews.Set(q, vods)
			return vods, nil
		})

		select {
		case <-ctx.Done():
			return nil, errors.Cancelled(ctx.Err())
		case res := <-ch:
			if res.Err != nil {
				return nil, res.Err
			}
			return res.Val.([]model.VodSummary), nil
		}
	})
}

// Search 完整搜索，后端应答后（有结果或为空）写入搜索历史
func (s *SearchService) Search(ctx context.Context, st *state.State, term string) (*SearchView, error) {
	term = strings.TrimSpace(term)
	view := &SearchView{Term: term, Results: []model.VodSummary{}}
	if term == "" {
		view.History = st.SearchHistory().Latest()
		return view, nil
	}

	vods, err := s.fetch(ctx, term)
	if err != nil {
		if errors.IsCancelled(err) {
			return nil, err
		}
		log.Printf("[SearchService] 搜索失败 term=%s: %v", term, err)
		view.Message = MsgSearchFail
		view.History = st.SearchHistory().Latest()
		return view, err
	}

	if len(vods) == 0 {
		view.Message = MsgSearchEmpty
	} else {
		view.Results = vods
	}

	history, err := st.PushSearch(term, time.Now())
	if err != nil {
		log.Printf("[SearchService] 保存搜索历史失败: %v", err)
		history = st.SearchHistory()
	}
	view.History = history.Latest()
	return view, nil
}

// History 搜索历史，最新在前
func (s *SearchService) History(st *state.State) []model.SearchHistoryEntry {
	return st.SearchHistory().Latest()
}

// ClearHistory 清空搜索历史
func (s *SearchService) ClearHistory(st *state.State) error {
	return st.ClearSearchHistory()
}

func (s *SearchService) fetch(ctx context.Context, term string) ([]model.VodSummary, error) {
	var (
		vods []model.VodSummary
		err  error
	)
	if s.mode == SearchByQuery {
		vods, err = s.backend.SearchVods(ctx, term)
	} else {
		vods, err = s.backend.Search(ctx, term)
	}
	if err != nil {
		return nil, err
	}
	if vods == nil {
		vods = []model.VodSummary{}
	}
	return vods, nil
}
