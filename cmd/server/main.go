package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata" // 确保在精简镜像中也能识别时区

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/user/hellod/internal/backend"
	"github.com/user/hellod/internal/config"
	"github.com/user/hellod/internal/handler"
	"github.com/user/hellod/internal/middleware"
	"github.com/user/hellod/internal/router"
	"github.com/user/hellod/internal/state"
)

var version = "dev"

var (
	configFile string
	port       string
)

var rootCmd = &cobra.Command{
	Use:   "hellod",
	Short: "Hello:D VOD 前端服务",
	Long: `Hello:D 服务端渲染前端：用户选择、首页推荐、VOD 详情、评论与搜索。
所有数据来自远程推荐后端。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "打印版本号",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("hellod " + version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "配置文件 (默认 ./config.yaml)")
	rootCmd.Flags().StringVar(&port, "port", "", "监听端口，覆盖配置")
	rootCmd.AddCommand(versionCmd)
}

func serve() error {
	// 注册 Session 模型
	state.RegisterTypes()

	// 加载环境变量
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用系统环境变量")
	}

	// 加载配置
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if port != "" {
		cfg.Port = port
	}

	// 初始化 Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// 启用 gzip，默认压缩级别
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 设置 Session 中间件
	store := cookie.NewStore([]byte(cfg.AppSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.CookieMaxAge(), // tab 作用域为 0，浏览器关闭即失效
		HttpOnly: true,
		Secure:   strings.HasPrefix(cfg.SiteUrl, "https://"),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(cfg.Session.Name, store))

	// 加载模板（使用 multitemplate 解决继承问题）
	r.HTMLRender = router.LoadTemplates(cfg.Web.TemplatesDir)

	// 静态文件
	r.Static("/static", cfg.Web.StaticDir)

	// 中间件
	r.Use(middleware.Logger())
	r.Use(middleware.Security())

	client := backend.New(backend.Config{
		ReadURL:  cfg.Backend.ReadURL,
		WriteURL: cfg.Backend.WriteURL,
		Timeout:  cfg.Backend.Timeout,
	})

	// 初始化 Handler
	h := handler.NewHandler(cfg, client)

	// 注册路由
	router.RegisterRoutes(r, h)

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   cfg.WriteTimeout(),
		MaxHeaderBytes: 1 << 20,
	}

	// 关闭时取消所有请求上下文，结束进行中的长轮询
	baseCtx, stop := context.WithCancel(context.Background())
	srv.BaseContext = func(net.Listener) context.Context { return baseCtx }
	srv.RegisterOnShutdown(stop)

	// 在 goroutine 中启动服务器，这样我们就可以监听信号
	go func() {
		log.Printf("服务器启动于 http://localhost:%s (backend=%s)", cfg.Port, cfg.Backend.ReadURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("服务器启动失败: %v", err)
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("正在关闭服务器...")

	// 5 秒超时上下文用于关闭过程
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("服务器强制关闭: %w", err)
	}

	log.Println("服务器已退出")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
