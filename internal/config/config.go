package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. STUDYAID_DB_HOST.
const EnvPrefix = "STUDYAID"

type Config struct {
	Port      int             `mapstructure:"port"`
	DB        DBConfig        `mapstructure:"db"`
	Token     TokenConfig     `mapstructure:"token"`
	Practice  PracticeConfig  `mapstructure:"practice"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	CORS      CORSConfig      `mapstructure:"cors"`
}

type DBConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Name         string `mapstructure:"name"`
	SSLMode      string `mapstructure:"sslmode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// DSN renders the lib/pq key/value connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type TokenConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type PracticeConfig struct {
	TickInterval       time.Duration `mapstructure:"tick_interval"`
	UpdateTimeout      time.Duration `mapstructure:"update_timeout"`
	MaxRequeuesPerCard int           `mapstructure:"max_requeues_per_card"`
	IdleTimeout        time.Duration `mapstructure:"idle_timeout"`
	SweepInterval      time.Duration `mapstructure:"sweep_interval"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "studyaid")
	v.SetDefault("db.password", "studyaid")
	v.SetDefault("db.name", "studyaid")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 5)

	v.SetDefault("token.secret", "studyaid-dev-session-key")
	v.SetDefault("token.ttl", 12*time.Hour)

	v.SetDefault("practice.tick_interval", time.Second)
	v.SetDefault("practice.update_timeout", 10*time.Second)
	v.SetDefault("practice.max_requeues_per_card", 10)
	v.SetDefault("practice.idle_timeout", 30*time.Minute)
	v.SetDefault("practice.sweep_interval", time.Minute)

	v.SetDefault("ratelimit.rps", 10.0)
	v.SetDefault("ratelimit.burst", 20)

	v.SetDefault("cors.allowed_origins", []string{"*"})
}

// Load reads defaults, then the optional config file, then STUDYAID_*
// environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Token.Secret == "" {
		return errors.New("token.secret must not be empty")
	}
	if c.Token.TTL <= 0 {
		return errors.New("token.ttl must be positive")
	}
	if c.Practice.TickInterval < 0 || c.Practice.UpdateTimeout < 0 ||
		c.Practice.IdleTimeout < 0 || c.Practice.SweepInterval < 0 {
		return errors.New("practice durations must not be negative")
	}
	if c.Practice.MaxRequeuesPerCard < 0 {
		return errors.New("practice.max_requeues_per_card must not be negative")
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("ratelimit.rps and ratelimit.burst must be positive")
	}
	return nil
}
