package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port            string        `env:"PORT,             default=8080"`
	Env             string        `env:"ENV,              default=development"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=15s"`
	ActivityWorkers int           `env:"ACTIVITY_WORKERS, default=4"`

	Auth  AuthConfig
	Chat  ChatConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type AuthConfig struct {
	JWTSecret          string        `env:"JWT_SECRET, required"`
	AccessTokenTTL     time.Duration `env:"ACCESS_TOKEN_TTL,       default=15m"`
	RefreshTokenTTL    time.Duration `env:"REFRESH_TOKEN_TTL,      default=720h"`
	RefreshReuse       time.Duration `env:"REFRESH_REUSE_INTERVAL, default=10s"`
	CookieSecure       bool          `env:"COOKIE_SECURE,          default=false"`
	CookieDomain       string        `env:"COOKIE_DOMAIN"`
	SignInMaxAttempts  int           `env:"SIGNIN_MAX_ATTEMPTS,    default=5"`
	SignInAttemptsSpan time.Duration `env:"SIGNIN_ATTEMPT_WINDOW,  default=15m"`
}

// ChatConfig points the onboarding chat proxy at a completion API. The proxy
// is disabled when APIKey is empty.
type ChatConfig struct {
	APIURL    string        `env:"CHAT_API_URL,    default=https://api.openai.com/v1"`
	APIKey    string        `env:"CHAT_API_KEY"`
	Model     string        `env:"CHAT_MODEL,      default=gpt-4o-mini"`
	Timeout   time.Duration `env:"CHAT_TIMEOUT,    default=60s"`
	RateLimit float64       `env:"CHAT_RATE_LIMIT, default=1"`
	Burst     int           `env:"CHAT_BURST,      default=5"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=nadlan_portal"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// IsDevelopment reports whether the service runs in a local environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "local"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration through the given lookuper.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	return &cfg, nil
}
