package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	dirName  = ".dsaboost"
	fileName = "config.yaml"
)

type Config struct {
	VaultPath string `mapstructure:"-"`
	DBPath    string `mapstructure:"-"`
	LocalDir  string `mapstructure:"-"`
	LogPath   string `mapstructure:"-"`

	App       AppConfig       `mapstructure:"app"`
	Log       LogConfig       `mapstructure:"log"`
	Timer     TimerConfig     `mapstructure:"timer"`
	Session   SessionConfig   `mapstructure:"session"`
	Mirror    MirrorConfig    `mapstructure:"mirror"`
	Identity  IdentityConfig  `mapstructure:"identity"`
	Functions FunctionsConfig `mapstructure:"functions"`
	Notify    NotifyConfig    `mapstructure:"notify"`
}

type AppConfig struct {
	Environment string `mapstructure:"environment"`
	URL         string `mapstructure:"url"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TimerConfig struct {
	DefaultDuration int           `mapstructure:"default_duration"`
	BreakDuration   int           `mapstructure:"break_duration"`
	TickInterval    time.Duration `mapstructure:"tick_interval"`
	AutoComplete    bool          `mapstructure:"auto_complete"`
}

type SessionConfig struct {
	StaleAfter time.Duration `mapstructure:"stale_after"`
}

type MirrorConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	PostgresURL   string        `mapstructure:"postgres_url"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	Throttle      time.Duration `mapstructure:"throttle"`
}

type IdentityConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

type FunctionsConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	ListenAddr    string `mapstructure:"listen_addr"`
	AnonKey       string `mapstructure:"anon_key"`
	OpenAIAPIKey  string `mapstructure:"openai_api_key"`
	OpenAIBaseURL string `mapstructure:"openai_base_url"`
	OpenAIModel   string `mapstructure:"openai_model"`
	SMTPAddr      string `mapstructure:"smtp_addr"`
	SMTPFrom      string `mapstructure:"smtp_from"`
	SMTPUsername  string `mapstructure:"smtp_username"`
	SMTPPassword  string `mapstructure:"smtp_password"`
	AdminEmail    string `mapstructure:"admin_email"`
}

type NotifyConfig struct {
	Desktop         bool `mapstructure:"desktop"`
	EmailMinMinutes int  `mapstructure:"email_min_minutes"`
	EmailPerHour    int  `mapstructure:"email_per_hour"`
}

var defaults = map[string]any{
	"app.environment":           "development",
	"app.url":                   "http://localhost:5173",
	"log.level":                 "info",
	"log.format":                "",
	"timer.default_duration":    1500,
	"timer.break_duration":      300,
	"timer.tick_interval":       time.Second,
	"timer.auto_complete":       true,
	"session.stale_after":       2 * time.Hour,
	"mirror.enabled":            false,
	"mirror.postgres_url":       "",
	"mirror.redis_addr":         "",
	"mirror.redis_password":     "",
	"mirror.throttle":           10 * time.Second,
	"identity.jwt_secret":       "",
	"identity.issuer":           "",
	"functions.base_url":        "",
	"functions.listen_addr":     ":8787",
	"functions.anon_key":        "",
	"functions.openai_api_key":  "",
	"functions.openai_base_url": "https://api.openai.com/v1",
	"functions.openai_model":    "gpt-4o-mini",
	"functions.smtp_addr":       "",
	"functions.smtp_from":       "",
	"functions.smtp_username":   "",
	"functions.smtp_password":   "",
	"functions.admin_email":     "",
	"notify.desktop":            true,
	"notify.email_min_minutes":  5,
	"notify.email_per_hour":     6,
}

// New loads defaults, then <vault>/.dsaboost/config.yaml when present, then
// DSABOOST_* environment variables (DSABOOST_MIRROR_REDIS_ADDR and so on).
func New(vaultPath string) (Config, error) {
	if vaultPath == "" {
		return Config{}, fmt.Errorf("vault path is required")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix("DSABOOST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := filepath.Join(vaultPath, dirName, fileName)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("stat config: %w", err)
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.VaultPath = vaultPath
	cfg.DBPath = filepath.Join(vaultPath, dirName, "dsaboost.db")
	cfg.LocalDir = filepath.Join(vaultPath, dirName, "local")
	cfg.LogPath = filepath.Join(vaultPath, dirName, "dsaboost.log")
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Timer.DefaultDuration <= 0 {
		return fmt.Errorf("timer.default_duration must be positive")
	}
	if c.Timer.TickInterval <= 0 {
		return fmt.Errorf("timer.tick_interval must be positive")
	}
	if c.Mirror.Throttle < 0 {
		return fmt.Errorf("mirror.throttle must not be negative")
	}
	if c.Mirror.Enabled && (c.Mirror.PostgresURL == "" || c.Mirror.RedisAddr == "") {
		return fmt.Errorf("mirror.enabled requires mirror.postgres_url and mirror.redis_addr")
	}
	return nil
}
