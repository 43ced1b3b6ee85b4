package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"enenni_wallet_back/pkg/repository"
)

type Config struct {
	Port           string
	AllowedOrigins []string
	DB             repository.Config
	Redis          RedisConfig
	Auth           AuthConfig
	PriceFeed      PriceFeedConfig
	Routes         RoutesConfig
	// Analyze switches gin to debug mode and logs the registered routes.
	Analyze bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	CookieName string
	SessionTTL time.Duration
	JWTSecret  string
}

type PriceFeedConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type RoutesConfig struct {
	Login                string
	DefaultLoginRedirect string
}

// Load reads .env (optional) and configs/config.yml. Secrets only come from the environment.
func Load(paths ...string) (Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Infof("no .env file loaded: %s", err)
	}

	v := viper.New()
	if len(paths) == 0 {
		paths = []string{"configs"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}

	cfg := Config{
		Port:           firstNonEmpty(os.Getenv("PORT"), v.GetString("server.port")),
		AllowedOrigins: v.GetStringSlice("server.allowed_origins"),
		DB: repository.Config{
			Host:     v.GetString("db.host"),
			Port:     v.GetString("db.port"),
			Username: v.GetString("db.username"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   v.GetString("db.dbname"),
			SSLMode:  v.GetString("db.sslmode"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       v.GetInt("redis.db"),
		},
		Auth: AuthConfig{
			CookieName: v.GetString("auth.cookie_name"),
			SessionTTL: v.GetDuration("auth.session_ttl"),
			JWTSecret:  firstNonEmpty(os.Getenv("JWT_SECRET"), v.GetString("auth.jwt_secret")),
		},
		PriceFeed: PriceFeedConfig{
			BaseURL: v.GetString("pricefeed.base_url"),
			APIKey:  firstNonEmpty(os.Getenv("COINGECKO_API_KEY"), v.GetString("pricefeed.api_key")),
			Timeout: v.GetDuration("pricefeed.timeout"),
		},
		Routes: RoutesConfig{
			Login:                v.GetString("routes.login"),
			DefaultLoginRedirect: v.GetString("routes.default_login_redirect"),
		},
		Analyze: v.GetBool("analyze") || os.Getenv("ANALYZE") == "true",
	}

	if cfg.Auth.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is not set")
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8000")
	v.SetDefault("auth.cookie_name", "enenni_session")
	v.SetDefault("auth.session_ttl", 30*24*time.Hour)
	v.SetDefault("pricefeed.base_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("pricefeed.timeout", 10*time.Second)
	v.SetDefault("routes.login", "/auth/login")
	v.SetDefault("routes.default_login_redirect", "/dashboard")
}

func firstNonEmpty(values ...string) string {
	for _, s := range values {
		if s != "" {
			return s
		}
	}
	return ""
}
