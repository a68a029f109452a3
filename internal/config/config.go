package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Env          string        `mapstructure:"env"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpiryDays int           `mapstructure:"expiry_days"`
	Expiry     time.Duration `mapstructure:"-"`
}

type SecurityConfig struct {
	PasswordHashCost  int           `mapstructure:"password_hash_cost"`
	ResetTTLMinutes   int           `mapstructure:"reset_ttl_minutes"`
	ResetTTL          time.Duration `mapstructure:"-"`
	AllowAdminSignup  bool          `mapstructure:"allow_admin_signup"`
	ExposeResetTicket bool          `mapstructure:"expose_reset_ticket"`
	LoginRateLimit    int           `mapstructure:"login_rate_limit"`
	LoginRateWindow   time.Duration `mapstructure:"login_rate_window"`
}

type MailConfig struct {
	BrevoAPIKey string `mapstructure:"brevo_api_key"`
	SenderName  string `mapstructure:"sender_name"`
	SenderEmail string `mapstructure:"sender_email"`
	ResetURL    string `mapstructure:"reset_url"`
}

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Security SecurityConfig `mapstructure:"security"`
	Mail     MailConfig     `mapstructure:"mail"`
}

func (c *Config) IsDevelopment() bool { return c.App.Env == "development" }

func (c *Config) ListenAddr() string { return fmt.Sprintf(":%d", c.App.Port) }

// Load reads config.yaml (when present) and layers APP_* environment
// variables on top, then derives the duration fields.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.read_timeout", 10*time.Second)
	v.SetDefault("app.write_timeout", 10*time.Second)
	v.SetDefault("app.idle_timeout", 60*time.Second)
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "recepito")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry_days", 90)
	v.SetDefault("security.password_hash_cost", 12)
	v.SetDefault("security.reset_ttl_minutes", 10)
	v.SetDefault("security.allow_admin_signup", false)
	v.SetDefault("security.expose_reset_ticket", false)
	v.SetDefault("security.login_rate_limit", 10)
	v.SetDefault("security.login_rate_window", time.Minute)
	v.SetDefault("mail.brevo_api_key", "")
	v.SetDefault("mail.sender_name", "Recepito")
	v.SetDefault("mail.sender_email", "")
	v.SetDefault("mail.reset_url", "http://localhost:3000/reset-password")

	// A missing file is fine, everything can come from the environment.
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if c.JWT.Secret == "" {
		return nil, errors.New("jwt.secret is required (set APP_JWT_SECRET)")
	}
	if c.Mongo.URI == "" {
		return nil, errors.New("mongo.uri is required")
	}
	if c.Security.ExposeResetTicket && !c.IsDevelopment() {
		return nil, errors.New("security.expose_reset_ticket is only allowed in development")
	}

	c.JWT.Expiry = time.Duration(c.JWT.ExpiryDays) * 24 * time.Hour
	c.Security.ResetTTL = time.Duration(c.Security.ResetTTLMinutes) * time.Minute
	return &c, nil
}
