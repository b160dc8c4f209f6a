package service

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/user/hellod/internal/errors"
	"github.com/user/hellod/internal/model"
	"github.com/user/hellod/internal/state"
	"github.com/user/hellod/internal/utils"
)

// RelatedLimit 相关推荐展示数量
const RelatedLimit = 8

// 用户可见的提示
const (
	MsgVodNotFound      = "영화를 찾을 수 없습니다."
	MsgVodLoadFail      = "영화 정보를 불러오는 중 오류가 발생했습니다."
	MsgTrailerMissing   = "예고편을 불러올 수 없습니다."
	MsgSeasonLoadFail   = "시즌 정보를 불러오지 못했습니다."
	MsgEpisodeLoadFail  = "에피소드 정보를 불러오지 못했습니다."
	MsgLikeFail         = "찜 목록을 변경하는 중 오류가 발생했습니다."
	MsgReviewRequired   = "리뷰와 별점을 입력해 주세요."
	MsgReviewSubmitFail = "리뷰 등록 중 오류가 발생했습니다."
)

// DetailView 详情页数据
type DetailView struct {
	Vod            *model.Vod
	TrailerID      string // 为空表示不展示播放器
	Seasons        []model.Season
	SelectedSeason *model.Season
	Episodes       []model.Episode
	SeasonError    string
	Related        []model.VodSummary
}

// HasSeasons 是否展示季选择
func (v *DetailView) HasSeasons() bool {
	return len(v.Seasons) > 0
}

// DetailService 详情页
type DetailService struct {
	backend Backend
}

// NewDetailService 创建服务
func NewDetailService(backend Backend) *DetailService {
	return &DetailService{backend: backend}
}

// Load 依次加载详情 → 季列表 → 第一季的集列表
// 后一阶段只在前一阶段完成后开始；没有剧集 ID 或季列表为空时跳过后续阶段
func (s *DetailService) Load(ctx context.Context, userID, vodID string) (*DetailView, error) {
	vodID = strings.TrimSpace(vodID)
	if vodID == "" {
		return nil, errors.PreconditionError(MsgVodNotFound)
	}

	payload, err := s.backend.VodDetail(ctx, vodID, userID)
	if err != nil {
		if errors.HTTPStatus(err) == 404 {
			return nil, errors.NotFoundError("vod", vodID)
		}
		return nil, err
	}

	vod := payload.Normalize(model.FlexID(vodID))
	view := &DetailView{Vod: vod}

	if id, ok := utils.YoutubeID(vod.TrailerURL); ok {
		view.TrailerID = id
	}

	// 每次页面加载重新抽样
	view.Related = utils.Sample(vod.Related, RelatedLimit, nil)

	if !vod.IsSeries() || vod.SeriesID.IsZero() {
		return view, nil
	}

	seasons, err := s.backend.Seasons(ctx, vod.SeriesID.String(), vod.IsKids())
	if err != nil {
		if errors.IsCancelled(err) {
			return nil, err
		}
		log.Printf("[DetailService] 获取季列表失败 series=%s: %v", vod.SeriesID, err)
		view.SeasonError = MsgSeasonLoadFail
		return view, nil
	}
	view.Seasons = seasons
	if len(seasons) == 0 {
		return view, nil
	}

	first := seasons[0]
	view.SelectedSeason = &first
	episodes, err := s.Episodes(ctx, first.ID.String(), vod.IsKids())
	if err != nil {
		if errors.IsCancelled(err) {
			return nil, err
		}
		view.SeasonError = MsgEpisodeLoadFail
		return view, nil
	}
	view.Episodes = episodes
	return view, nil
}

// Episodes 切换季时只重新拉取集列表
func (s *DetailService) Episodes(ctx context.Context, seasonID string, kids bool) ([]model.Episode, error) {
	if strings.TrimSpace(seasonID) == "" {
		return nil, errors.PreconditionError(MsgEpisodeLoadFail)
	}
	episodes, err := s.backend.Episodes(ctx, seasonID, kids)
	if err != nil {
		if !errors.IsCancelled(err) {
			log.Printf("[DetailService] 获取集列表失败 season=%s: %v", seasonID, err)
		}
		return nil, err
	}
	if episodes == nil {
		episodes = []model.Episode{}
	}
	return episodes, nil
}

// ToggleLike 切换收藏状态
// 只有后端返回成功时才翻转，失败时返回原状态和错误
func (s *DetailService) ToggleLike(ctx context.Context, userID, vodID string, liked bool) (bool, error) {
	var err error
	if liked {
		err = s.backend.RemoveLike(ctx, userID, model.FlexID(vodID))
	} else {
		err = s.backend.AddLike(ctx, userID, model.FlexID(vodID))
	}
	if err != nil {
		if !errors.IsCancelled(err) {
			log.Printf("[DetailService] 切换收藏失败 user=%s vod=%s: %v", userID, vodID, err)
		}
		return liked, err
	}
	return !liked, nil
}

// ParseRating 解析并校验评分（1–5 的整数）
func ParseRating(raw string) (int, error) {
	rating, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || !model.ValidRating(rating) {
		return 0, errors.ValidationError(MsgReviewRequired)
	}
	return rating, nil
}

// SubmitReview 写评论
// 先在本地校验，校验失败不会请求后端；成功后重新拉取评论列表
func (s *DetailService) SubmitReview(ctx context.Context, st *state.State, userID, vodID, comment, rating string) ([]model.Review, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, errors.ValidationError(MsgReviewRequired)
	}
	r, err := ParseRating(rating)
	if err != nil {
		return nil, err
	}

	err = s.backend.CreateReview(ctx, userID, model.NewReview{
		VodID:   model.FlexID(vodID),
		Rating:  strconv.Itoa(r),
		Comment: comment,
	})
	if err != nil {
		log.Printf("[DetailService] 写评论失败 user=%s vod=%s: %v", userID, vodID, err)
		return nil, err
	}
	st.InvalidateReviews()

	payload, err := s.backend.VodDetail(ctx, vodID, userID)
	if err != nil {
		log.Printf("[DetailService] 重新获取评论失败 vod=%s: %v", vodID, err)
		return nil, err
	}
	reviews := payload.Reviews
	if reviews == nil {
		reviews = []model.Review{}
	}
	return reviews, nil
}
