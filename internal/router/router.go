package router

import (
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"
	"github.com/user/hellod/internal/handler"
	"github.com/user/hellod/internal/middleware"
	"github.com/user/hellod/internal/model"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查
	r.GET("/health", h.Health)

	// ==================== 用户选择 ====================
	r.GET("/", h.Index)
	r.GET("/profiles", h.ProfilesPage)
	r.POST("/profiles", h.CreateProfile)
	r.POST("/profiles/select", h.SelectProfile)

	// ==================== 需要已选择用户 ====================
	app := r.Group("")
	app.Use(middleware.RequireProfile(h.ActiveProfile, h.NotFound))
	{
		app.GET("/main", h.Main)
		app.GET("/vod/:id", h.Vod)
		app.POST("/vod/:id/like", h.ToggleLike)
		app.POST("/vod/:id/reviews", h.SubmitReview)
		app.GET("/reviews", h.ReviewsPage)
		app.POST("/reviews/:id", h.UpdateReview)
		app.POST("/reviews/:id/delete", h.DeleteReview)
		app.GET("/search", h.SearchPage)
	}

	// ==================== htmx 片段 ====================
	frag := r.Group("/htmx")
	frag.Use(middleware.RequireProfile(h.ActiveProfile, h.NotFound))
	{
		frag.GET("/feeds/:feed", h.FeedFragment)
		frag.GET("/spotify/await", h.SpotifyAwait)
		frag.GET("/vod/:id/seasons/:seasonId", h.EpisodesFragment)
		frag.GET("/reviews/:id/edit", h.EditReviewFragment)
		frag.GET("/search/preview", h.SearchPreview)
	}

	// ==================== JSON API ====================
	api := r.Group("/api")
	api.Use(middleware.CORS(h.Config.CORSOrigins))
	// 预检请求在 CORS 中间件中结束
	api.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	authed := api.Group("")
	authed.Use(middleware.RequireProfile(h.ActiveProfile, h.NotFound))
	{
		authed.GET("/feeds", h.APIFeeds)
		authed.GET("/reviews", h.APIReviews)
		authed.GET("/search/history", h.APISearchHistory)
		authed.DELETE("/search/history", h.APIClearSearchHistory)
	}

	r.NoRoute(h.PageNotFound)
}

// 页面模板（layouts + partials + page）
var pages = []string{
	"profiles", "main", "vod", "reviews", "search", "not_found",
}

// htmx 片段模板（fragment + partials），不套布局
var fragments = []string{
	"feed", "episodes", "like_button", "vod_reviews",
	"review_composer", "review_edit", "search_preview",
}

// LoadTemplates 使用 multitemplate 加载模板，解决模板继承问题
func LoadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	// 获取布局和局部模板
	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	partials, err := filepath.Glob(templatesDir + "/partials/*.html")
	if err != nil {
		panic(err)
	}

	// 组装模板文件列表
	assemble := func(view string) []string {
		files := make([]string, 0)
		files = append(files, layouts...)
		files = append(files, partials...)
		files = append(files, view)
		return files
	}

	funcMap := FuncMap()

	// 注册所有页面模板
	for _, page := range pages {
		viewPath := templatesDir + "/pages/" + page + ".html"
		r.AddFromFilesFuncs(page+".html", funcMap, assemble(viewPath)...)
	}

	// 片段模板第一个文件即入口
	for _, frag := range fragments {
		files := append([]string{templatesDir + "/fragments/" + frag + ".html"}, partials...)
		r.AddFromFilesFuncs(frag+".html", funcMap, files...)
	}

	return r
}

// FuncMap 模板函数
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"default": func(defaultValue, value interface{}) interface{} {
			switch v := value.(type) {
			case string:
				if v == "" {
					return defaultValue
				}
			case int:
				if v == 0 {
					return defaultValue
				}
			case nil:
				return defaultValue
			}
			return value
		},
		// stars 评分转星号
		"stars": func(n int) string {
			if n < 0 {
				n = 0
			}
			if n > model.MaxRating {
				n = model.MaxRating
			}
			return strings.TrimSpace(strings.Repeat("★ ", n))
		},
	}
}
