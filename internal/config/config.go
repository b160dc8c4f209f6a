package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultSecret = "your-secret-key-change-in-production"

// 会话作用域
const (
	ScopePersistent = "persistent" // 持久 Cookie，浏览器关闭后仍保留
	ScopeTab        = "tab"        // 会话 Cookie，浏览器关闭即失效
)

// 搜索接口形式
const (
	SearchModePath  = "path"  // GET /search/{term}
	SearchModeQuery = "query" // POST /search-vods
)

// Config 应用配置
type Config struct {
	Env       string `mapstructure:"env"`
	AppSecret string `mapstructure:"app_secret"`
	Port      string `mapstructure:"port"`
	SiteName  string `mapstructure:"site_name"`
	SiteUrl   string `mapstructure:"site_url"`
	SettopNum string `mapstructure:"settop_num"`
	// 允许跨域访问 /api 的来源，"*" 表示全部
	CORSOrigins []string      `mapstructure:"cors_origins"`
	Web         WebConfig     `mapstructure:"web"`
	Backend     BackendConfig `mapstructure:"backend"`
	Session     SessionConfig `mapstructure:"session"`
	Search      SearchConfig  `mapstructure:"search"`
	Spotify     SpotifyConfig `mapstructure:"spotify"`
}

// WebConfig 模板与静态资源
type WebConfig struct {
	TemplatesDir string `mapstructure:"templates_dir"`
	StaticDir    string `mapstructure:"static_dir"`
}

// BackendConfig 远程推荐/搜索后端
type BackendConfig struct {
	ReadURL  string        `mapstructure:"read_url"`
	WriteURL string        `mapstructure:"write_url"` // 增删改接口，为空时使用 ReadURL
	Timeout  time.Duration `mapstructure:"timeout"`
}

// SessionConfig 客户端状态存储
type SessionConfig struct {
	Name     string        `mapstructure:"name"`
	Scope    string        `mapstructure:"scope"`
	MaxAge   time.Duration `mapstructure:"max_age"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"` // 列表缓存有效期
}

// SearchConfig 搜索
type SearchConfig struct {
	Mode       string        `mapstructure:"mode"`
	PreviewTTL time.Duration `mapstructure:"preview_ttl"`
	PreviewMax int           `mapstructure:"preview_cache_size"`
}

// SpotifyConfig 音乐账号关联
type SpotifyConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	LinkTimeout  time.Duration `mapstructure:"link_timeout"` // 0 表示不限时，仅随请求结束而取消
}

// Load 加载配置
// 优先级：环境变量 (HELLOD_*) > 配置文件 > 默认值
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("HELLOD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 兼容常见的无前缀变量
	bindEnvWithAlternatives(v, "port", "PORT")
	bindEnvWithAlternatives(v, "env", "APP_ENV")
	bindEnvWithAlternatives(v, "app_secret", "APP_SECRET")
	bindEnvWithAlternatives(v, "backend.read_url", "BACKEND_URL")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("读取配置文件失败: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if cfg.Backend.WriteURL == "" {
		cfg.Backend.WriteURL = cfg.Backend.ReadURL
	}
	cfg.Backend.ReadURL = strings.TrimRight(cfg.Backend.ReadURL, "/")
	cfg.Backend.WriteURL = strings.TrimRight(cfg.Backend.WriteURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.IsProduction() && cfg.AppSecret == defaultSecret {
		fmt.Println("【严重警告】生产环境正在使用默认密钥！请立即设置 APP_SECRET 环境变量。")
	}

	return cfg, nil
}

// Validate 校验配置取值
func (c *Config) Validate() error {
	if c.Backend.ReadURL == "" {
		return fmt.Errorf("backend.read_url 不能为空")
	}
	if c.Session.Scope != ScopePersistent && c.Session.Scope != ScopeTab {
		return fmt.Errorf("session.scope 必须是 %s 或 %s", ScopePersistent, ScopeTab)
	}
	if c.Search.Mode != SearchModePath && c.Search.Mode != SearchModeQuery {
		return fmt.Errorf("search.mode 必须是 %s 或 %s", SearchModePath, SearchModeQuery)
	}
	if c.Spotify.PollInterval <= 0 {
		return fmt.Errorf("spotify.poll_interval 必须大于 0")
	}
	if c.Spotify.LinkTimeout < 0 {
		return fmt.Errorf("spotify.link_timeout 不能为负数")
	}
	return nil
}

// IsProduction 是否生产环境
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// CookieMaxAge 按会话作用域返回 Cookie 有效期（秒），tab 作用域为 0
func (c *Config) CookieMaxAge() int {
	if c.Session.Scope == ScopeTab {
		return 0
	}
	return int(c.Session.MaxAge.Seconds())
}

// WriteTimeout HTTP 服务器写超时
// 音乐账号关联是长轮询，超时需覆盖整个等待时间；不限时等待时返回 0（不设写超时）
func (c *Config) WriteTimeout() time.Duration {
	if c.Spotify.LinkTimeout == 0 {
		return 0
	}
	return c.Spotify.LinkTimeout + c.Backend.Timeout + 10*time.Second
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("app_secret", defaultSecret)
	v.SetDefault("port", "5005")
	v.SetDefault("site_name", "Hello:D")
	v.SetDefault("site_url", "http://localhost:5005")
	v.SetDefault("settop_num", "")
	v.SetDefault("cors_origins", []string{"*"})

	v.SetDefault("web.templates_dir", "./web/templates")
	v.SetDefault("web.static_dir", "./web/static")

	v.SetDefault("backend.read_url", "http://localhost:8000")
	v.SetDefault("backend.write_url", "")
	v.SetDefault("backend.timeout", 10*time.Second)

	v.SetDefault("session.name", "hellod")
	v.SetDefault("session.scope", ScopePersistent)
	v.SetDefault("session.max_age", 7*24*time.Hour)
	v.SetDefault("session.cache_ttl", 30*time.Minute)

	v.SetDefault("search.mode", SearchModePath)
	v.SetDefault("search.preview_ttl", time.Minute)
	v.SetDefault("search.preview_cache_size", 500)

	v.SetDefault("spotify.poll_interval", time.Second)
	v.SetDefault("spotify.link_timeout", 5*time.Minute)
}

// bindEnvWithAlternatives 为同一配置项绑定多个环境变量名
func bindEnvWithAlternatives(v *viper.Viper, key string, alternatives ...string) {
	args := append([]string{key, "HELLOD_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, alternatives...)
	_ = v.BindEnv(args...)
}
