package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 支援的模型供應商
const (
	ProviderOpenRouter = "openrouter"
	ProviderAzure      = "azure"
	ProviderGemini     = "gemini"
)

// 支援的資料庫驅動
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// 支援的快取後端
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config 應用配置
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Image    ImageConfig    `mapstructure:"image"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Log      LogConfig      `mapstructure:"log"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// LLMConfig 模型供應商配置
type LLMConfig struct {
	Provider          string        `mapstructure:"provider"`
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	Model             string        `mapstructure:"model"`
	VisionModel       string        `mapstructure:"vision_model"`
	APIVersion        string        `mapstructure:"api_version"`
	MaxTokens         int           `mapstructure:"max_tokens"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RecipeTemperature float64       `mapstructure:"recipe_temperature"`
	VisionTemperature float64       `mapstructure:"vision_temperature"`
}

// VisionModelName 回傳影像辨識使用的模型，未設定時沿用主模型
func (c LLMConfig) VisionModelName() string {
	if c.VisionModel != "" {
		return c.VisionModel
	}
	return c.Model
}

// AuthConfig 身分驗證配置
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// DatabaseConfig 資料庫配置
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"`
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	LogLevel     string `mapstructure:"log_level"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend"`
	RedisURL        string        `mapstructure:"redis_url"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// ImageConfig 圖片配置
type ImageConfig struct {
	MaxSizeBytes int64 `mapstructure:"max_size_bytes"`
	MaxDimension int   `mapstructure:"max_dimension"`
}

// CORSConfig 跨域設定
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig 日誌設定
type LogConfig struct {
	Level string `mapstructure:"level"`
	Dir   string `mapstructure:"dir"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// .env 不存在時直接使用環境變數
	_ = godotenv.Load()

	v := viper.New()

	// 設定預設值
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	bindings := map[string][]string{
		"server.port":          {"PORT"},
		"app.env":              {"APP_ENV"},
		"app.debug":            {"APP_DEBUG"},
		"llm.provider":         {"LLM_PROVIDER"},
		"llm.base_url":         {"LLM_BASE_URL", "AZURE_OPENAI_ENDPOINT"},
		"llm.api_key":          {"LLM_API_KEY", "AZURE_OPENAI_KEY", "OPENROUTER_API_KEY", "GEMINI_API_KEY"},
		"llm.model":            {"LLM_MODEL", "AZURE_OPENAI_DEPLOYMENT"},
		"llm.vision_model":     {"LLM_VISION_MODEL"},
		"llm.api_version":      {"LLM_API_VERSION", "AZURE_OPENAI_API_VERSION"},
		"llm.timeout":          {"LLM_TIMEOUT"},
		"auth.jwt_secret":      {"JWT_SECRET"},
		"auth.token_ttl":       {"TOKEN_TTL"},
		"database.driver":      {"DATABASE_DRIVER"},
		"database.dsn":         {"DATABASE_URL"},
		"cache.enabled":        {"CACHE_ENABLED"},
		"cache.backend":        {"CACHE_BACKEND"},
		"cache.redis_url":      {"REDIS_URL"},
		"cors.allowed_origins": {"CORS_ALLOWED_ORIGINS"},
		"log.level":            {"LOG_LEVEL"},
		"log.dir":              {"LOG_DIR"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	// 設定設定檔名稱和路徑
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	// 讀取設定檔
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 解析設定
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	normalize(&config)

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// MaskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "snap2cook")

	// 伺服器設定
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.max_body_bytes", 10<<20)

	// 模型設定
	v.SetDefault("llm.provider", ProviderOpenRouter)
	v.SetDefault("llm.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("llm.model", "openai/gpt-4o-mini")
	v.SetDefault("llm.api_version", "2024-08-01-preview")
	v.SetDefault("llm.max_tokens", 1200)
	v.SetDefault("llm.timeout", "30s")
	v.SetDefault("llm.recipe_temperature", 0.7)
	v.SetDefault("llm.vision_temperature", 0.2)

	// 身分驗證
	v.SetDefault("auth.token_ttl", "60m")

	// 資料庫
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.dsn", "snap2cook.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.log_level", "warn")

	// 快取設定
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.backend", CacheMemory)
	v.SetDefault("cache.max_size", 500)
	v.SetDefault("cache.ttl", "6h")
	v.SetDefault("cache.cleanup_interval", "10m")

	// 圖片設定
	v.SetDefault("image.max_size_bytes", 8*1024*1024) // 8MB
	v.SetDefault("image.max_dimension", 1280)

	v.SetDefault("cors.allowed_origins", []string{
		"https://snap2cook-frontend-sbgg.vercel.app",
		"http://localhost:5173",
	})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.dir", "logs")
}

// normalize 整理大小寫與空白
func normalize(config *Config) {
	config.LLM.Provider = strings.ToLower(strings.TrimSpace(config.LLM.Provider))
	config.Database.Driver = strings.ToLower(strings.TrimSpace(config.Database.Driver))
	config.Cache.Backend = strings.ToLower(strings.TrimSpace(config.Cache.Backend))
	config.Auth.JWTSecret = strings.TrimSpace(config.Auth.JWTSecret)

	origins := make([]string, 0, len(config.CORS.AllowedOrigins))
	for _, o := range config.CORS.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	config.CORS.AllowedOrigins = origins
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 {
		return fmt.Errorf("server port is required")
	}

	if config.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required (set JWT_SECRET)")
	}
	if config.Auth.TokenTTL <= 0 {
		return fmt.Errorf("invalid auth token ttl")
	}

	switch config.LLM.Provider {
	case ProviderOpenRouter, ProviderAzure, ProviderGemini:
	default:
		return fmt.Errorf("unsupported llm provider %q", config.LLM.Provider)
	}
	if config.LLM.Timeout <= 0 {
		return fmt.Errorf("invalid llm timeout")
	}
	if config.LLM.Model == "" {
		return fmt.Errorf("llm model is required")
	}

	switch config.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}
	if config.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		switch config.Cache.Backend {
		case CacheMemory:
			if config.Cache.MaxSize <= 0 {
				return fmt.Errorf("invalid cache max size")
			}
			if config.Cache.CleanupInterval <= 0 {
				return fmt.Errorf("invalid cache cleanup interval")
			}
		case CacheRedis:
			if config.Cache.RedisURL == "" {
				return fmt.Errorf("cache.redis_url is required for redis backend")
			}
		default:
			return fmt.Errorf("unsupported cache backend %q", config.Cache.Backend)
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
	}

	if config.Image.MaxSizeBytes <= 0 {
		return fmt.Errorf("invalid image max size")
	}

	return nil
}
