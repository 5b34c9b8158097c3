package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ytdash/ytdash/backend/go-services/pkg/logger"
)

// Session store backends.
const (
	StoreFile  = "file"
	StoreRedis = "redis"
	StoreMongo = "mongo"
)

const youtubeReadonlyScope = "https://www.googleapis.com/auth/youtube.readonly"

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Google    GoogleConfig
	Frontend  FrontendConfig
	Session   SessionConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	YouTube   YouTubeConfig
	RateLimit RateLimitConfig
	Feed      FeedConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Production reports whether cookies should be marked Secure.
func (s ServerConfig) Production() bool {
	return strings.EqualFold(s.Environment, "production")
}

type GoogleConfig struct {
	ClientID           string
	ClientSecret       string
	CallbackURL        string
	IssuerURL          string
	Scopes             []string
	AllowInsecureToken bool
}

type FrontendConfig struct {
	URL            string
	AllowedOrigins []string
}

type SessionConfig struct {
	Secret     string
	CookieName string
	TTL        time.Duration
	Store      string
	Path       string
	StateTTL   time.Duration
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type YouTubeConfig struct {
	BaseURL string
	Timeout time.Duration
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

type FeedConfig struct {
	SampleSize int
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("PORT", "3000")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("GOOGLE_CALLBACK_URL", "http://localhost:3000/auth/google/callback")
	viper.SetDefault("GOOGLE_ISSUER_URL", "https://accounts.google.com")
	viper.SetDefault("FRONTEND_URL", "http://localhost:5173")
	viper.SetDefault("SESSION_COOKIE_NAME", "ytdash.sid")
	viper.SetDefault("SESSION_TTL_SECONDS", 86400)
	viper.SetDefault("SESSION_STORE", StoreFile)
	viper.SetDefault("SESSION_PATH", "./sessions")
	viper.SetDefault("OAUTH_STATE_TTL_SECONDS", 600)
	viper.SetDefault("MONGODB_DATABASE", "ytdash")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("YOUTUBE_BASE_URL", "https://www.googleapis.com/youtube/v3")
	viper.SetDefault("YOUTUBE_TIMEOUT", 15)
	viper.SetDefault("RATE_LIMIT_RPS", 5)
	viper.SetDefault("RATE_LIMIT_BURST", 10)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	viper.SetDefault("FEED_SAMPLE_SIZE", 10)

	frontend := strings.TrimRight(viper.GetString("FRONTEND_URL"), "/")
	origins := splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))
	if len(origins) == 0 {
		origins = []string{frontend}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Google: GoogleConfig{
			ClientID:           viper.GetString("GOOGLE_CLIENT_ID"),
			ClientSecret:       os.Getenv("GOOGLE_CLIENT_SECRET"),
			CallbackURL:        viper.GetString("GOOGLE_CALLBACK_URL"),
			IssuerURL:          viper.GetString("GOOGLE_ISSUER_URL"),
			Scopes:             []string{"profile", "email", youtubeReadonlyScope},
			AllowInsecureToken: strings.EqualFold(strings.TrimSpace(viper.GetString("ALLOW_INSECURE_TOKEN")), "true"),
		},
		Frontend: FrontendConfig{
			URL:            frontend,
			AllowedOrigins: origins,
		},
		Session: SessionConfig{
			Secret:     os.Getenv("SESSION_SECRET"),
			CookieName: viper.GetString("SESSION_COOKIE_NAME"),
			TTL:        time.Duration(viper.GetInt("SESSION_TTL_SECONDS")) * time.Second,
			Store:      strings.ToLower(viper.GetString("SESSION_STORE")),
			Path:       viper.GetString("SESSION_PATH"),
			StateTTL:   time.Duration(viper.GetInt("OAUTH_STATE_TTL_SECONDS")) * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:      viper.GetString("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		YouTube: YouTubeConfig{
			BaseURL: strings.TrimRight(viper.GetString("YOUTUBE_BASE_URL"), "/"),
			Timeout: time.Duration(viper.GetInt("YOUTUBE_TIMEOUT")) * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Feed: FeedConfig{
			SampleSize: viper.GetInt("FEED_SAMPLE_SIZE"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Session.Store {
	case StoreFile:
		if c.Session.Path == "" {
			return fmt.Errorf("SESSION_PATH is required for the file session store")
		}
	case StoreRedis:
		if c.Redis.Host == "" {
			return fmt.Errorf("REDIS_HOST is required when SESSION_STORE=redis")
		}
	case StoreMongo:
		if c.MongoDB.URI == "" {
			return fmt.Errorf("MONGODB_URI is required when SESSION_STORE=mongo")
		}
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q", c.Session.Store)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL_SECONDS must be positive")
	}
	if c.Feed.SampleSize <= 0 {
		return fmt.Errorf("FEED_SAMPLE_SIZE must be positive")
	}

	if c.Google.ClientID == "" || c.Google.ClientSecret == "" {
		logger.Warn("GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET not set; Google login will fail")
	}
	if c.Session.Secret == "" {
		logger.Warn("SESSION_SECRET is not set; using an insecure development secret")
		c.Session.Secret = "ytdash-dev-secret"
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.TrimRight(p, "/"))
		}
	}
	return out
}
