package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string `toml:"app_env"`
	LogLevel    string `toml:"log_level"`
	HTTPAddr    string `toml:"http_addr"`
	MetricsAddr string `toml:"metrics_addr"`

	// Backend is supabase, mysql or postgres.
	Backend            string `toml:"backend"`
	SupabaseURL        string `toml:"supabase_url"`
	SupabaseServiceKey string `toml:"supabase_service_key"`
	DatabaseDSN        string `toml:"database_dsn"`
	BackendRPS         int    `toml:"backend_rps"`

	RedisAddr string `toml:"redis_addr"`
	RedisPass string `toml:"redis_password"`
	RedisDB   int    `toml:"redis_db"`

	StripeSecretKey string `toml:"stripe_secret_key"`
	DefaultCurrency string `toml:"default_currency"`
	DisplayLocale   string `toml:"display_locale"`

	CacheTTL     time.Duration `toml:"-"`
	HandoffTTL   time.Duration `toml:"-"`
	SessionIdle  time.Duration `toml:"-"`
	WarmInterval time.Duration `toml:"-"`

	CacheTTLSeconds     int `toml:"cache_ttl_seconds"`
	HandoffTTLSeconds   int `toml:"handoff_ttl_seconds"`
	SessionIdleSeconds  int `toml:"session_idle_seconds"`
	WarmIntervalSeconds int `toml:"warm_interval_seconds"`

	WarmWorkers    int      `toml:"warm_workers"`
	WarmLimit      int      `toml:"warm_limit"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

func defaults() Config {
	return Config{
		AppEnv:              "prod",
		LogLevel:            "info",
		HTTPAddr:            ":8080",
		MetricsAddr:         ":9100",
		Backend:             "supabase",
		BackendRPS:          10,
		RedisAddr:           "localhost:6379",
		DefaultCurrency:     "mad",
		DisplayLocale:       "fr",
		CacheTTLSeconds:     300,
		HandoffTTLSeconds:   600,
		SessionIdleSeconds:  1800,
		WarmWorkers:         4,
		WarmLimit:           50,
		WarmIntervalSeconds: 0,
		AllowedOrigins:      []string{"*"},
	}
}

// Load builds the configuration from defaults, then the optional TOML file named by
// CONFIG_FILE, then environment variables.
func Load() Config {
	c := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, &c); err != nil {
			log.Warn().Err(err).Str("file", path).Msg("config file ignored")
		}
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}

	c.AppEnv = env("APP_ENV", c.AppEnv)
	c.LogLevel = env("LOG_LEVEL", c.LogLevel)
	c.HTTPAddr = env("HTTP_ADDR", c.HTTPAddr)
	c.MetricsAddr = env("METRICS_ADDR", c.MetricsAddr)
	c.Backend = strings.ToLower(env("BACKEND", c.Backend))
	c.SupabaseURL = env("SUPABASE_URL", c.SupabaseURL)
	c.SupabaseServiceKey = env("SUPABASE_SERVICE_KEY", c.SupabaseServiceKey)
	c.DatabaseDSN = env("DATABASE_DSN", c.DatabaseDSN)
	c.BackendRPS = atoi("BACKEND_RPS", c.BackendRPS)
	c.RedisAddr = env("REDIS_ADDR", c.RedisAddr)
	c.RedisPass = env("REDIS_PASSWORD", c.RedisPass)
	c.RedisDB = atoi("REDIS_DB", c.RedisDB)
	c.StripeSecretKey = env("STRIPE_SECRET_KEY", c.StripeSecretKey)
	c.DefaultCurrency = strings.ToLower(env("DEFAULT_CURRENCY", c.DefaultCurrency))
	c.DisplayLocale = env("DISPLAY_LOCALE", c.DisplayLocale)
	c.CacheTTLSeconds = atoi("CACHE_TTL_SECONDS", c.CacheTTLSeconds)
	c.HandoffTTLSeconds = atoi("HANDOFF_TTL_SECONDS", c.HandoffTTLSeconds)
	c.SessionIdleSeconds = atoi("SESSION_IDLE_SECONDS", c.SessionIdleSeconds)
	c.WarmIntervalSeconds = atoi("WARM_INTERVAL_SECONDS", c.WarmIntervalSeconds)
	c.WarmWorkers = atoi("WARM_WORKERS", c.WarmWorkers)
	c.WarmLimit = atoi("WARM_LIMIT", c.WarmLimit)
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitList(v)
	}

	c.CacheTTL = time.Duration(c.CacheTTLSeconds) * time.Second
	c.HandoffTTL = time.Duration(c.HandoffTTLSeconds) * time.Second
	c.SessionIdle = time.Duration(c.SessionIdleSeconds) * time.Second
	c.WarmInterval = time.Duration(c.WarmIntervalSeconds) * time.Second

	if c.StripeSecretKey == "" {
		log.Warn().Msg("STRIPE_SECRET_KEY is empty; payment intents will fail")
	}
	if c.Backend == "supabase" && (c.SupabaseURL == "" || c.SupabaseServiceKey == "") {
		log.Warn().Msg("SUPABASE_URL or SUPABASE_SERVICE_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
