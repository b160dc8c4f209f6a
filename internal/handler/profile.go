package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/hellod/internal/errors"
	"github.com/user/hellod/internal/model"
	"github.com/user/hellod/internal/service"
)

// ProfilesPage 用户选择页
func (h *Handler) ProfilesPage(c *gin.Context) {
	st := h.State(c)

	settop, err := h.Profiles.ResolveSettop(st, c.Query("settop"))
	if err != nil {
		c.HTML(http.StatusOK, "profiles.html", h.RenderData(c, gin.H{
			"Title": "프로필 선택 - " + h.Config.SiteName,
			"Error": service.MsgSettopMissing,
		}))
		return
	}

	profiles, err := h.Profiles.List(c.Request.Context(), st, settop)
	data := gin.H{
		"Title":    "프로필 선택 - " + h.Config.SiteName,
		"Settop":   settop,
		"Profiles": profiles,
		"CanAdd":   err == nil && h.Profiles.CanAdd(profiles),
		"Genders":  []string{"남성", "여성"},
	}
	if err != nil {
		if errors.IsCancelled(err) {
			return
		}
		data["Error"] = service.MsgProfileLoadFail
	}
	c.HTML(http.StatusOK, "profiles.html", h.RenderData(c, data))
}

// CreateProfile 新建用户
// 失败时保留原列表并在页面上提示，不重试
func (h *Handler) CreateProfile(c *gin.Context) {
	st := h.State(c)

	settop, err := h.Profiles.ResolveSettop(st, "")
	if err != nil {
		_ = st.Flash(service.MsgSettopMissing)
		c.Redirect(http.StatusSeeOther, "/profiles")
		return
	}

	var form service.ProfileForm
	if err := c.ShouldBind(&form); err != nil {
		_ = st.Flash(service.MsgProfileFields)
		c.Redirect(http.StatusSeeOther, "/profiles")
		return
	}

	if _, err := h.Profiles.Create(c.Request.Context(), st, settop, form); err != nil {
		switch {
		case errors.IsCancelled(err):
			return
		case errors.IsValidation(err):
			_ = st.Flash(validationMessage(err, service.MsgProfileFields))
		default:
			_ = st.Flash(service.MsgProfileFail)
		}
		c.Redirect(http.StatusSeeOther, "/profiles")
		return
	}

	_ = st.Flash(service.MsgProfileCreated)
	c.Redirect(http.StatusSeeOther, "/profiles")
}

// SelectProfile 选择/切换用户
// 取消该会话进行中的音乐账号关联等待，然后重新进入首页（五个推荐列表全部重新加载）
func (h *Handler) SelectProfile(c *gin.Context) {
	st := h.State(c)

	if _, err := h.Profiles.Select(st, c.PostForm("id"), c.PostForm("name")); err != nil {
		h.renderError(c, err, service.MsgProfileNotFound)
		return
	}
	h.Feeds.Awaiter().Cancel(h.sessionKey(st))

	if isHTMX(c) {
		c.Header("HX-Redirect", "/main")
		c.Status(http.StatusNoContent)
		return
	}
	c.Redirect(http.StatusSeeOther, "/main")
}

// validationMessage 取出校验错误中的用户提示
func validationMessage(err error, fallback string) string {
	var appErr *errors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}

// profileNames 切换用户下拉框使用的列表（来自缓存，不请求后端）
func (h *Handler) profileNames(c *gin.Context) []model.Profile {
	profiles, _ := h.State(c).CachedProfiles()
	return profiles
}
