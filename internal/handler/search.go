package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/hellod/internal/errors"
)

// SearchPage 搜索结果页
func (h *Handler) SearchPage(c *gin.Context) {
	st := h.State(c)

	view, err := h.Search.Search(c.Request.Context(), st, c.Query("q"))
	if err != nil && errors.IsCancelled(err) {
		return
	}

	c.HTML(http.StatusOK, "search.html", h.RenderData(c, gin.H{
		"Title":   "검색 - " + h.Config.SiteName,
		"Keyword": view.Term,
		"Results": view.Results,
		"Message": view.Message,
		"History": view.History,
	}))
}

// SearchPreview 输入框下拉预览
// 被同一会话更新的输入取代时返回 204，htmx 保持原内容
func (h *Handler) SearchPreview(c *gin.Context) {
	st := h.State(c)
	q := c.Query("q")

	vods, err := h.Search.Preview(c.Request.Context(), h.sessionKey(st), q)
	if err != nil {
		if errors.IsCancelled(err) {
			c.Status(http.StatusNoContent)
			return
		}
		c.HTML(http.StatusOK, "search_preview.html", gin.H{"Error": true, "Query": q})
		return
	}
	c.HTML(http.StatusOK, "search_preview.html", gin.H{"Vods": vods, "Query": q})
}
