package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/hellod/internal/errors"
	"github.com/user/hellod/internal/service"
)

// ReviewsPage 我的评论
func (h *Handler) ReviewsPage(c *gin.Context) {
	profile := currentProfile(c)
	st := h.State(c)

	reviews, err := h.Reviews.List(c.Request.Context(), st, profile.ID)
	data := gin.H{
		"Title":   "내 리뷰 - " + h.Config.SiteName,
		"Reviews": reviews,
	}
	if err != nil {
		if errors.IsCancelled(err) {
			return
		}
		data["Error"] = service.MsgReviewListFail
	}
	c.HTML(http.StatusOK, "reviews.html", h.RenderData(c, data))
}

// EditReviewFragment 编辑弹窗
func (h *Handler) EditReviewFragment(c *gin.Context) {
	profile := currentProfile(c)
	review, err := h.Reviews.Find(c.Request.Context(), h.State(c), profile.ID, c.Param("id"))
	if err != nil {
		if errors.IsCancelled(err) {
			return
		}
		c.HTML(http.StatusOK, "review_edit.html", gin.H{"Error": service.MsgReviewNotFound})
		return
	}
	c.HTML(http.StatusOK, "review_edit.html", gin.H{
		"Review":  review,
		"Ratings": ratingOptions(),
	})
}

// UpdateReview 修改评论
func (h *Handler) UpdateReview(c *gin.Context) {
	profile := currentProfile(c)
	st := h.State(c)

	_, err := h.Reviews.Update(c.Request.Context(), st, profile.ID, c.Param("id"), c.PostForm("comment"), c.PostForm("rating"))
	if err != nil {
		if errors.IsCancelled(err) {
			return
		}
		msg := service.MsgReviewUpdateFail
		switch errors.GetErrorCode(err) {
		case errors.CodeValidation:
			msg = service.MsgReviewRequired
		case errors.CodeNotFound:
			msg = service.MsgReviewNotFound
		}
		_ = st.Flash(msg)
	}
	c.Redirect(http.StatusSeeOther, "/reviews")
}

// DeleteReview 删除评论
func (h *Handler) DeleteReview(c *gin.Context) {
	profile := currentProfile(c)
	st := h.State(c)

	if _, err := h.Reviews.Delete(c.Request.Context(), st, profile.ID, c.Param("id")); err != nil {
		if errors.IsCancelled(err) {
			return
		}
		msg := service.MsgReviewDeleteFail
		switch errors.GetErrorCode(err) {
		case errors.CodeNotFound, errors.CodePrecondition:
			msg = service.MsgReviewNotFound
		}
		_ = st.Flash(msg)
	}
	c.Redirect(http.StatusSeeOther, "/reviews")
}
