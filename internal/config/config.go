// AngelaMos | 2026
// config.go

package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App       AppConfig       `koanf:"app"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	JWT       JWTConfig       `koanf:"jwt"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CORS      CORSConfig      `koanf:"cors"`
	Media     MediaConfig     `koanf:"media"`
	Mail      MailConfig      `koanf:"mail"`
	Payment   PaymentConfig   `koanf:"payment"`
	Log       LogConfig       `koanf:"log"`
	Otel      OtelConfig      `koanf:"otel"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	ClientURL   string `koanf:"client_url"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
}

type RedisConfig struct {
	URL          string `koanf:"url"`
	PoolSize     int    `koanf:"pool_size"`
	MinIdleConns int    `koanf:"min_idle_conns"`
}

type JWTConfig struct {
	PrivateKeyPath    string        `koanf:"private_key_path"`
	PublicKeyPath     string        `koanf:"public_key_path"`
	AccessTokenExpire time.Duration `koanf:"access_token_expire"`
	Issuer            string        `koanf:"issuer"`
	Audience          string        `koanf:"audience"`
	CookieName        string        `koanf:"cookie_name"`
	CookieSecure      bool          `koanf:"cookie_secure"`
}

type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	Burst    int           `koanf:"burst"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type MediaConfig struct {
	UploadURL     string        `koanf:"upload_url"`
	APIKey        string        `koanf:"api_key"`
	APISecret     string        `koanf:"api_secret"`
	UploadTimeout time.Duration `koanf:"upload_timeout"`
}

type MailConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
}

type PaymentConfig struct {
	CheckoutURL   string `koanf:"checkout_url"`
	APIKey        string `koanf:"api_key"`
	WebhookSecret string `koanf:"webhook_secret"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

var (
	cfg  *Config
	once sync.Once
)

func Load(configPath string) (*Config, error) {
	var loadErr error

	once.Do(func() {
		k := koanf.New(".")

		if err := loadDefaults(k); err != nil {
			loadErr = fmt.Errorf("load defaults: %w", err)
			return
		}

		if configPath != "" {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				loadErr = fmt.Errorf("load config file: %w", err)
				return
			}
		}

		if err := k.Load(env.Provider("", ".", envKeyReplacer), nil); err != nil {
			loadErr = fmt.Errorf("load env vars: %w", err)
			return
		}

		cfg = &Config{}
		if err := k.Unmarshal("", cfg); err != nil {
			loadErr = fmt.Errorf("unmarshal config: %w", err)
			return
		}

		if err := validate(cfg); err != nil {
			loadErr = fmt.Errorf("validate config: %w", err)
			return
		}
	})

	if loadErr != nil {
		return nil, loadErr
	}

	return cfg, nil
}

func Get() *Config {
	if cfg == nil {
		panic("config not loaded: call Load() first")
	}
	return cfg
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":        "Learnify API",
		"app.version":     "1.0.0",
		"app.environment": "development",
		"app.client_url":  "http://localhost:5173",

		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "15s",

		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",

		"redis.pool_size":      10,
		"redis.min_idle_conns": 5,

		"jwt.access_token_expire": "24h",
		"jwt.issuer":              "learnify",
		"jwt.audience":            "learnify-api",
		"jwt.private_key_path":    "keys/private.pem",
		"jwt.public_key_path":     "keys/public.pem",
		"jwt.cookie_name":         "token",
		"jwt.cookie_secure":       false,

		"rate_limit.requests": 100,
		"rate_limit.window":   "15m",
		"rate_limit.burst":    20,

		"cors.allowed_origins": []string{"http://localhost:5173"},
		"cors.allowed_methods": []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
		},
		"cors.allowed_headers": []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
		},
		"cors.allow_credentials": true,
		"cors.max_age":           300,

		"media.upload_timeout": "2m",

		"mail.port": 587,

		"log.level":  "info",
		"log.format": "json",

		"otel.enabled":      false,
		"otel.insecure":     true,
		"otel.sample_rate":  0.1,
		"otel.service_name": "learnify-api",
	}

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

var envKeyMap = map[string]string{
	"DATABASE_URL":            "database.url",
	"REDIS_URL":               "redis.url",
	"ENVIRONMENT":             "app.environment",
	"CLIENT_URL":              "app.client_url",
	"HOST":                    "server.host",
	"PORT":                    "server.port",
	"LOG_LEVEL":               "log.level",
	"LOG_FORMAT":              "log.format",
	"JWT_PRIVATE_KEY_PATH":    "jwt.private_key_path",
	"JWT_PUBLIC_KEY_PATH":     "jwt.public_key_path",
	"JWT_ACCESS_TOKEN_EXPIRE": "jwt.access_token_expire",
	"JWT_ISSUER":              "jwt.issuer",
	"JWT_AUDIENCE":            "jwt.audience",
	"JWT_COOKIE_SECURE":       "jwt.cookie_secure",
	"RATE_LIMIT_REQUESTS":     "rate_limit.requests",
	"RATE_LIMIT_WINDOW":       "rate_limit.window",
	"RATE_LIMIT_BURST":        "rate_limit.burst",
	"MEDIA_UPLOAD_URL":        "media.upload_url",
	"MEDIA_API_KEY":           "media.api_key",
	"MEDIA_API_SECRET":        "media.api_secret",
	"SMTP_HOST":               "mail.host",
	"SMTP_PORT":               "mail.port",
	"SMTP_USERNAME":           "mail.username",
	"SMTP_PASSWORD":           "mail.password",
	"SENDER_EMAIL":            "mail.from",
	"PAYMENT_CHECKOUT_URL":    "payment.checkout_url",
	"PAYMENT_API_KEY":         "payment.api_key",
	"PAYMENT_WEBHOOK_SECRET":  "payment.webhook_secret",
	"OTEL_ENDPOINT":           "otel.endpoint",
	"OTEL_SERVICE_NAME":       "otel.service_name",
	"OTEL_ENABLED":            "otel.enabled",
	"OTEL_INSECURE":           "otel.insecure",
	"OTEL_SAMPLE_RATE":        "otel.sample_rate",
}

func envKeyReplacer(s string) string {
	if mapped, ok := envKeyMap[s]; ok {
		return mapped
	}
	return ""
}

func validate(c *Config) error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.JWT.PrivateKeyPath == "" {
		return fmt.Errorf("JWT_PRIVATE_KEY_PATH is required")
	}

	if c.JWT.PublicKeyPath == "" {
		return fmt.Errorf("JWT_PUBLIC_KEY_PATH is required")
	}

	if c.CORS.AllowCredentials {
		for _, origin := range c.CORS.AllowedOrigins {
			if origin == "*" {
				return fmt.Errorf(
					"CORS wildcard '*' cannot be used with AllowCredentials",
				)
			}
		}
	}

	if c.App.Environment == "production" {
		if !c.JWT.CookieSecure {
			return fmt.Errorf("JWT_COOKIE_SECURE must be true in production")
		}
		if c.Otel.Enabled && c.Otel.Insecure {
			return fmt.Errorf("OTEL_INSECURE must be false in production")
		}
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
