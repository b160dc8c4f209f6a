package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/hellod/internal/errors"
	"github.com/user/hellod/internal/model"
	"github.com/user/hellod/internal/service"
)

// Index 根路径进入用户选择页
func (h *Handler) Index(c *gin.Context) {
	c.Redirect(http.StatusFound, "/profiles")
}

// Main 首页
// 只渲染五个占位区块，每个区块通过 htmx 独立加载，互不阻塞
func (h *Handler) Main(c *gin.Context) {
	feeds := make([]gin.H, 0, len(model.Feeds))
	for _, f := range model.Feeds {
		feeds = append(feeds, gin.H{"Feed": f.String(), "Title": f.Title()})
	}

	c.HTML(http.StatusOK, "main.html", h.RenderData(c, gin.H{
		"Title":    h.Config.SiteName,
		"Feeds":    feeds,
		"Profiles": h.profileNames(c),
	}))
}

// FeedFragment 单个推荐列表片段
func (h *Handler) FeedFragment(c *gin.Context) {
	feed, ok := model.ParseFeed(c.Param("feed"))
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	profile := currentProfile(c)
	res := h.Feeds.Load(c.Request.Context(), feed, profile.ID)
	if errors.IsCancelled(res.Err) {
		return
	}
	c.HTML(http.StatusOK, "feed.html", res)
}

// SpotifyAwait 等待音乐账号关联完成后返回推荐列表片段
// 浏览器离开页面时请求被中止，等待随之取消
func (h *Handler) SpotifyAwait(c *gin.Context) {
	st := h.State(c)
	profile := currentProfile(c)
	key := h.sessionKey(st)

	feed, err := h.Feeds.Awaiter().Await(c.Request.Context(), key, profile.ID)
	res := service.FeedResult{
		Feed:   model.FeedSpotify,
		Title:  model.FeedSpotify.Title(),
		Linked: true,
	}

	switch {
	case err == nil:
		res.Vods = feed.Vods
	case errors.IsCancelled(err):
		// 被取代或浏览器已离开
		return
	case errors.IsTimeout(err):
		// 超时后重新给出关联入口
		res = h.Feeds.Load(c.Request.Context(), model.FeedSpotify, profile.ID)
		res.Error = service.MsgSpotifyTimeout
	default:
		log.Printf("[Handler] 等待音乐账号关联失败: %v", err)
		res.Error = service.MsgSpotifyFail
	}
	if res.Vods == nil {
		res.Vods = []model.VodSummary{}
	}
	c.HTML(http.StatusOK, "feed.html", res)
}
