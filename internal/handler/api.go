package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/hellod/internal/errors"
	"github.com/user/hellod/internal/model"
	"github.com/user/hellod/internal/service"
	"github.com/user/hellod/internal/utils"
)

// APIFeeds 并发加载全部推荐列表（JSON）
// 单个列表失败只体现在该列表的 error 字段
func (h *Handler) APIFeeds(c *gin.Context) {
	profile := currentProfile(c)
	results := h.Feeds.LoadAll(c.Request.Context(), profile.ID)
	if c.Request.Context().Err() != nil {
		return
	}
	utils.Success(c, results)
}

// APIReviews 当前用户的评论（JSON）
func (h *Handler) APIReviews(c *gin.Context) {
	profile := currentProfile(c)
	reviews, err := h.Reviews.List(c.Request.Context(), h.State(c), profile.ID)
	if err != nil {
		if errors.IsCancelled(err) {
			return
		}
		if reviews == nil {
			utils.FromError(c, err, service.MsgReviewListFail)
			return
		}
	}
	if reviews == nil {
		reviews = []model.Review{}
	}
	utils.Success(c, reviews)
}

// APISearchHistory 搜索历史（JSON，最新在前）
func (h *Handler) APISearchHistory(c *gin.Context) {
	history := h.Search.History(h.State(c))
	if history == nil {
		history = []model.SearchHistoryEntry{}
	}
	utils.Success(c, history)
}

// APIClearSearchHistory 清空搜索历史
func (h *Handler) APIClearSearchHistory(c *gin.Context) {
	if err := h.Search.ClearHistory(h.State(c)); err != nil {
		utils.Error(c, http.StatusInternalServerError, "검색 기록을 삭제하지 못했습니다.")
		return
	}
	if isHTMX(c) {
		c.String(http.StatusOK, "")
		return
	}
	utils.Success(c, []model.SearchHistoryEntry{})
}
