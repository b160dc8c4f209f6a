package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/hellod/internal/errors"
	"github.com/user/hellod/internal/model"
	"github.com/user/hellod/internal/service"
	"github.com/user/hellod/internal/utils"
)

// Vod 详情页
func (h *Handler) Vod(c *gin.Context) {
	vodID := c.Param("id")
	profile := currentProfile(c)

	view, err := h.Details.Load(c.Request.Context(), profile.ID, vodID)
	if err != nil {
		msg := service.MsgVodLoadFail
		if code := errors.GetErrorCode(err); code == errors.CodeNotFound || code == errors.CodePrecondition {
			msg = service.MsgVodNotFound
		}
		h.renderError(c, err, msg)
		return
	}

	data := gin.H{
		"Title":          view.Vod.Title + " - " + h.Config.SiteName,
		"Vod":            view.Vod,
		"Seasons":        view.Seasons,
		"SelectedSeason": view.SelectedSeason,
		"Episodes":       view.Episodes,
		"SeasonError":    view.SeasonError,
		"Related":        view.Related,
		"Like":           likeData(vodID, view.Vod.Liked, ""),
		"ReviewBox":      reviewBoxData(vodID, view.Vod.Reviews, "", false),
		"Ratings":        ratingOptions(),
	}
	if view.TrailerID != "" {
		data["TrailerEmbed"] = utils.YoutubeEmbedURL(view.TrailerID)
	} else {
		data["TrailerMessage"] = service.MsgTrailerMissing
	}

	c.HTML(http.StatusOK, "vod.html", h.RenderData(c, data))
}

// EpisodesFragment 切换季，只重新拉取集列表
func (h *Handler) EpisodesFragment(c *gin.Context) {
	kids := c.Query("kids") == "1" || c.Query("kids") == "true"

	episodes, err := h.Details.Episodes(c.Request.Context(), c.Param("seasonId"), kids)
	data := gin.H{
		"VodID":    c.Param("id"),
		"SeasonID": c.Param("seasonId"),
		"Episodes": episodes,
	}
	if err != nil {
		if errors.IsCancelled(err) {
			return
		}
		data["Error"] = service.MsgEpisodeLoadFail
	}
	c.HTML(http.StatusOK, "episodes.html", data)
}

// ToggleLike 收藏/取消收藏，返回按钮片段
func (h *Handler) ToggleLike(c *gin.Context) {
	vodID := c.Param("id")
	profile := currentProfile(c)
	liked, _ := strconv.ParseBool(c.PostForm("liked"))

	next, err := h.Details.ToggleLike(c.Request.Context(), profile.ID, vodID, liked)
	msg := ""
	if err != nil {
		if errors.IsCancelled(err) {
			return
		}
		msg = service.MsgLikeFail
	}
	c.HTML(http.StatusOK, "like_button.html", likeData(vodID, next, msg))
}

// SubmitReview 写评论，返回评论区片段
// 校验失败时不请求后端，评论框保持打开并显示提示
func (h *Handler) SubmitReview(c *gin.Context) {
	vodID := c.Param("id")
	profile := currentProfile(c)
	st := h.State(c)

	reviews, err := h.Details.SubmitReview(c.Request.Context(), st, profile.ID, vodID, c.PostForm("comment"), c.PostForm("rating"))
	if err != nil {
		if errors.IsCancelled(err) {
			return
		}
		msg := service.MsgReviewSubmitFail
		if errors.IsValidation(err) {
			msg = service.MsgReviewRequired
		}
		if !isHTMX(c) {
			_ = st.Flash(msg)
			c.Redirect(http.StatusSeeOther, "/vod/"+vodID)
			return
		}
		// 只替换评论框，保留已有列表
		c.Header("HX-Retarget", "#review-composer")
		c.Header("HX-Reswap", "outerHTML")
		c.HTML(http.StatusOK, "review_composer.html", reviewBoxData(vodID, nil, msg, true))
		return
	}

	if !isHTMX(c) {
		c.Redirect(http.StatusSeeOther, "/vod/"+vodID)
		return
	}
	// 成功后关闭评论框
	c.HTML(http.StatusOK, "vod_reviews.html", reviewBoxData(vodID, reviews, "", false))
}

func likeData(vodID string, liked bool, message string) gin.H {
	return gin.H{"VodID": vodID, "Liked": liked, "Error": message}
}

// reviewBoxData 评论区数据
func reviewBoxData(vodID string, reviews []model.Review, message string, composerOpen bool) gin.H {
	return gin.H{
		"VodID":        vodID,
		"Reviews":      reviews,
		"Error":        message,
		"ComposerOpen": composerOpen,
		"Ratings":      ratingOptions(),
	}
}

func ratingOptions() []int {
	opts := make([]int, 0, model.MaxRating)
	for i := model.MaxRating; i >= model.MinRating; i-- {
		opts = append(opts, i)
	}
	return opts
}
