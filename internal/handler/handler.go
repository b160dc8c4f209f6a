package handler

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/user/hellod/internal/config"
	"github.com/user/hellod/internal/errors"
	"github.com/user/hellod/internal/middleware"
	"github.com/user/hellod/internal/model"
	"github.com/user/hellod/internal/service"
	"github.com/user/hellod/internal/state"
	"github.com/user/hellod/internal/utils"
)

// MsgPageNotFound 未知页面
const MsgPageNotFound = "페이지를 찾을 수 없습니다."

// Handler HTTP 处理器
type Handler struct {
	Config   *config.Config
	Profiles *service.ProfileService
	Feeds    *service.FeedService
	Details  *service.DetailService
	Reviews  *service.ReviewService
	Search   *service.SearchService
	lists    *utils.TTLCache
}

// NewHandler 创建处理器
func NewHandler(cfg *config.Config, backend service.Backend) *Handler {
	return &Handler{
		Config:   cfg,
		Profiles: service.NewProfileService(backend, cfg.SettopNum),
		Feeds:    service.NewFeedService(backend, cfg.Spotify.PollInterval, cfg.Spotify.LinkTimeout),
		Details:  service.NewDetailService(backend),
		Reviews:  service.NewReviewService(backend),
		Search:   service.NewSearchService(backend, cfg.Search.Mode, cfg.Search.PreviewMax, cfg.Search.PreviewTTL),
		lists:    utils.NewTTLCache(cfg.Session.CacheTTL),
	}
}

// State 当前请求的会话状态
func (h *Handler) State(c *gin.Context) *state.State {
	return state.New(state.NewSessionStore(sessions.Default(c)), h.lists)
}

// ActiveProfile 供 middleware.RequireProfile 使用
func (h *Handler) ActiveProfile(c *gin.Context) (model.ActiveProfile, bool) {
	return h.State(c).ActiveProfile()
}

// RenderData 统一封装公共渲染数据
func (h *Handler) RenderData(c *gin.Context, data gin.H) gin.H {
	res := gin.H{
		"SiteName": h.Config.SiteName,
		"SiteUrl":  h.Config.SiteUrl,
		"Path":     c.Request.URL.Path,
	}

	st := h.State(c)
	if p, ok := middleware.CurrentProfile(c); ok {
		res["Profile"] = p
	} else if p, ok := st.ActiveProfile(); ok {
		res["Profile"] = p
	}
	if msg := st.PopFlash(); msg != "" {
		res["Flash"] = msg
	}

	res["ActiveMenu"] = h.getActiveMenu(c.Request.URL.Path)

	for k, v := range data {
		res[k] = v
	}
	return res
}

// getActiveMenu 根据路径判断当前高亮菜单
func (h *Handler) getActiveMenu(path string) string {
	switch {
	case path == "/main":
		return "home"
	case path == "/reviews":
		return "reviews"
	case path == "/search":
		return "search"
	case strings.HasPrefix(path, "/profiles"):
		return "profiles"
	default:
		return ""
	}
}

// NotFound 找不到用户/VOD 时的静态页面
func (h *Handler) NotFound(c *gin.Context) {
	h.renderNotFound(c, service.MsgProfileNotFound)
}

// PageNotFound 未匹配的路由
func (h *Handler) PageNotFound(c *gin.Context) {
	h.renderNotFound(c, MsgPageNotFound)
}

func (h *Handler) renderNotFound(c *gin.Context, message string) {
	c.HTML(http.StatusNotFound, "not_found.html", h.RenderData(c, gin.H{
		"Title":   message,
		"Message": message,
	}))
}

// renderError 页面级错误
// 取消的请求不渲染；缺少前置条件或资源不存在时显示静态页面
func (h *Handler) renderError(c *gin.Context, err error, message string) {
	if errors.IsCancelled(err) {
		c.Status(utils.StatusFor(err))
		return
	}
	status := utils.StatusFor(err)
	if status == http.StatusNotFound {
		h.renderNotFound(c, message)
		return
	}
	c.HTML(status, "not_found.html", h.RenderData(c, gin.H{
		"Title":   message,
		"Message": message,
	}))
}

func isHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

// currentProfile RequireProfile 之后一定存在
func currentProfile(c *gin.Context) model.ActiveProfile {
	p, _ := middleware.CurrentProfile(c)
	return p
}

// sessionKey 会话 key，失败时退化为空字符串（所有匿名请求共享）
func (h *Handler) sessionKey(st *state.State) string {
	key, err := st.SessionKey()
	if err != nil {
		return ""
	}
	return key
}

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
