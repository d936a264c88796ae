package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	RepositoryPostgres = "postgres"
	RepositoryInMemory = "inmemory"

	DefaultPath = "config.yml"
	envPrefix   = "TRS"
)

type Config struct {
	Server         ServerConfig         `yaml:"server"`
	Database       DatabaseConfig       `yaml:"database"`
	Logging        LoggingConfig        `yaml:"logging"`
	Repository     RepositoryConfig     `yaml:"repository"`
	Auth           AuthConfig           `yaml:"auth"`
	CORS           CORSConfig           `yaml:"cors"`
	RateLimit      RateLimitConfig      `yaml:"rate_limit"`
	Reconciliation ReconciliationConfig `yaml:"reconciliation"`
	CheckIn        CheckInConfig        `yaml:"checkin"`
	Redis          RedisConfig          `yaml:"redis"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Host            string        `yaml:"host"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL            string        `yaml:"url"`
	MaxConnections int           `yaml:"max_connections"`
	MinConnections int           `yaml:"min_connections"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	MigrateOnStart bool          `yaml:"migrate_on_start"`
}

type LoggingConfig struct {
	Development bool `yaml:"development"`
}

type RepositoryConfig struct {
	Type string `yaml:"type"` // "postgres" или "inmemory"
}

type AuthConfig struct {
	Audiences     []string `yaml:"audiences"`
	PublicKeyPath string   `yaml:"public_key_path"`
	// только для локальной разработки
	AllowUnsigned bool `yaml:"allow_unsigned"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

type ReconciliationConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Interval      time.Duration `yaml:"interval"`
	MaxSessionAge time.Duration `yaml:"max_session_age"`
	LockTTL       time.Duration `yaml:"lock_ttl"`
}

type CheckInConfig struct {
	Enabled bool `yaml:"enabled"`
}

// RedisConfig - пустой адрес отключает распределённую блокировку
type RedisConfig struct {
	Addr    string `yaml:"addr"`
	LockKey string `yaml:"lock_key"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			Host:            "0.0.0.0",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			MaxConnections: 10,
			MinConnections: 2,
			IdleTimeout:    5 * time.Minute,
		},
		Repository: RepositoryConfig{Type: RepositoryInMemory},
		CORS:       CORSConfig{AllowedOrigins: []string{"*"}},
		RateLimit:  RateLimitConfig{RequestsPerMinute: 100},
		Reconciliation: ReconciliationConfig{
			Enabled:       true,
			Interval:      time.Minute,
			MaxSessionAge: 8 * time.Hour,
			LockTTL:       50 * time.Second,
		},
		Redis: RedisConfig{LockKey: "time-registration:reconciliation"},
	}
}

// Load читает yaml поверх значений по умолчанию, затем переменные окружения TRS_*.
// Отсутствующий файл не ошибка.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("не могу открыть %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv: server.port -> TRS_SERVER_PORT
func applyEnv(cfg *Config) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	values := map[string]*string{
		"server.port":          &cfg.Server.Port,
		"server.host":          &cfg.Server.Host,
		"database.url":         &cfg.Database.URL,
		"repository.type":      &cfg.Repository.Type,
		"auth.public_key_path": &cfg.Auth.PublicKeyPath,
		"redis.addr":           &cfg.Redis.Addr,
		"redis.lock_key":       &cfg.Redis.LockKey,
	}
	ints := map[string]*int{
		"database.max_connections":       &cfg.Database.MaxConnections,
		"database.min_connections":       &cfg.Database.MinConnections,
		"rate_limit.requests_per_minute": &cfg.RateLimit.RequestsPerMinute,
	}
	bools := map[string]*bool{
		"database.migrate_on_start": &cfg.Database.MigrateOnStart,
		"logging.development":       &cfg.Logging.Development,
		"auth.allow_unsigned":       &cfg.Auth.AllowUnsigned,
		"reconciliation.enabled":    &cfg.Reconciliation.Enabled,
		"checkin.enabled":           &cfg.CheckIn.Enabled,
	}
	durations := map[string]*time.Duration{
		"server.read_timeout":            &cfg.Server.ReadTimeout,
		"server.write_timeout":           &cfg.Server.WriteTimeout,
		"server.shutdown_timeout":        &cfg.Server.ShutdownTimeout,
		"database.idle_timeout":          &cfg.Database.IdleTimeout,
		"reconciliation.interval":        &cfg.Reconciliation.Interval,
		"reconciliation.max_session_age": &cfg.Reconciliation.MaxSessionAge,
		"reconciliation.lock_ttl":        &cfg.Reconciliation.LockTTL,
	}
	lists := map[string]*[]string{
		"auth.audiences":       &cfg.Auth.Audiences,
		"cors.allowed_origins": &cfg.CORS.AllowedOrigins,
	}

	bind := func(key string) (bool, error) {
		if err := v.BindEnv(key); err != nil {
			return false, fmt.Errorf("привязка %s: %w", key, err)
		}
		return v.IsSet(key), nil
	}

	for key, dst := range values {
		set, err := bind(key)
		if err != nil {
			return err
		}
		if set {
			*dst = v.GetString(key)
		}
	}
	for key, dst := range ints {
		set, err := bind(key)
		if err != nil {
			return err
		}
		if set {
			*dst = v.GetInt(key)
		}
	}
	for key, dst := range bools {
		set, err := bind(key)
		if err != nil {
			return err
		}
		if set {
			*dst = v.GetBool(key)
		}
	}
	for key, dst := range durations {
		set, err := bind(key)
		if err != nil {
			return err
		}
		if set {
			*dst = v.GetDuration(key)
		}
	}
	for key, dst := range lists {
		set, err := bind(key)
		if err != nil {
			return err
		}
		if set {
			*dst = splitList(v.GetString(key))
		}
	}
	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

func (c *Config) Validate() error {
	switch c.Repository.Type {
	case RepositoryInMemory:
	case RepositoryPostgres:
		if c.Database.URL == "" {
			return errors.New("config: database.url обязателен для postgres")
		}
	default:
		return fmt.Errorf("config: неизвестный repository.type %q", c.Repository.Type)
	}

	if c.Server.Port == "" {
		return errors.New("config: server.port не задан")
	}
	if len(c.Auth.Audiences) == 0 {
		return errors.New("config: auth.audiences не может быть пустым")
	}
	if c.Auth.PublicKeyPath == "" && !c.Auth.AllowUnsigned {
		return errors.New("config: нужен auth.public_key_path или auth.allow_unsigned")
	}
	if c.Reconciliation.Interval <= 0 || c.Reconciliation.MaxSessionAge <= 0 {
		return errors.New("config: интервал и максимальный возраст сессии должны быть положительными")
	}
	if c.RateLimit.RequestsPerMinute < 0 {
		return errors.New("config: rate_limit.requests_per_minute не может быть отрицательным")
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
