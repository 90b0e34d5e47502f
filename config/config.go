// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	port       = pflag.Int("port", 0, "Port to listen on, overrides host.port")
	configPath = pflag.String("config", ".", "Directory containing config.toml")

	validLogLevels     = []string{"debug", "info", "warn", "error", "fatal"}
	validDrivers       = []string{"sqlite", "postgres"}
	validPasswordHashs = []string{"bcrypt", "argon2id"}
)

type Config struct {
	App       App       `mapstructure:"app"`
	Host      Host      `mapstructure:"host"`
	Database  Database  `mapstructure:"database"`
	Security  Security  `mapstructure:"security"`
	Auth      Auth      `mapstructure:"auth"`
	Mail      Mail      `mapstructure:"mail"`
	Cache     Cache     `mapstructure:"cache"`
	Turnstile Turnstile `mapstructure:"turnstile"`
	Cleanup   Cleanup   `mapstructure:"cleanup"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Host struct {
	Port        int      `mapstructure:"port"`
	CorsOrigins []string `mapstructure:"cors_origins"`
	SSL         SSL      `mapstructure:"ssl"`
}

type SSL struct {
	Enabled            bool   `mapstructure:"enabled"`
	CertificatePath    string `mapstructure:"certificate_path"`
	CertificateKeyPath string `mapstructure:"certificate_key_path"`
}

type Database struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type Security struct {
	JWTSecret    string `mapstructure:"jwt_secret"`
	HMACSecret   string `mapstructure:"hmac_secret"`
	PasswordHash string `mapstructure:"password_hash"`
	BcryptCost   int    `mapstructure:"bcrypt_cost"`
	RateLimit    int    `mapstructure:"rate_limit"`
}

type Auth struct {
	RequireNames bool     `mapstructure:"require_names"`
	AdminEmails  []string `mapstructure:"admin_emails"`
}

type Mail struct {
	Enabled       bool   `mapstructure:"enabled"`
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	SenderAddress string `mapstructure:"sender_address"`
}

type Cache struct {
	TTL           time.Duration `mapstructure:"ttl"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
}

type Turnstile struct {
	Enabled     bool   `mapstructure:"enabled"`
	SecretToken string `mapstructure:"secret_token"`
	VerifyURL   string `mapstructure:"verify_url"`
}

type Cleanup struct {
	Interval time.Duration `mapstructure:"interval"`
}

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() (*Config, error) {
	// .env is optional, real environment variables win
	_ = godotenv.Load()

	pflag.Parse()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(*configPath)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file, %w", err)
		}
	}

	if *port != 0 {
		v.Set("host.port", *port)
	}

	return Load(v)
}

// Load binds environment variables and defaults onto v and decodes the
// result into a validated Config
func Load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "APP_LOG_LEVEL")

	v.BindEnv("host.port", "HOST_PORT", "PORT")
	v.BindEnv("host.cors_origins", "HOST_CORS")
	v.BindEnv("host.ssl.enabled", "HOST_SSL_ENABLED")
	v.BindEnv("host.ssl.certificate_path", "HOST_SSL_CERTIFICATE_PATH")
	v.BindEnv("host.ssl.certificate_key_path", "HOST_SSL_CERTIFICATE_KEY_PATH")

	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.dsn", "DATABASE_DSN", "DATABASE_URL")

	v.BindEnv("security.jwt_secret", "SECURITY_JWT_SECRET", "JWT_SECRET")
	v.BindEnv("security.hmac_secret", "SECURITY_HMAC_SECRET", "HMAC_VERIFICATION_CODE_SECRET")
	v.BindEnv("security.password_hash", "SECURITY_PASSWORD_HASH")
	v.BindEnv("security.bcrypt_cost", "SECURITY_BCRYPT_COST")
	v.BindEnv("security.rate_limit", "SECURITY_RATE_LIMIT")

	v.BindEnv("auth.require_names", "AUTH_REQUIRE_NAMES")
	v.BindEnv("auth.admin_emails", "AUTH_ADMIN_EMAILS")

	v.BindEnv("mail.enabled", "MAIL_ENABLED")
	v.BindEnv("mail.host", "MAIL_HOST")
	v.BindEnv("mail.port", "MAIL_PORT")
	v.BindEnv("mail.username", "MAIL_USERNAME")
	v.BindEnv("mail.password", "MAIL_PASSWORD")
	v.BindEnv("mail.sender_address", "MAIL_SENDER_ADDRESS", "NODE_CODE_SENDING_EMAIL_ADDRESS")

	v.BindEnv("cache.ttl", "CACHE_TTL")
	v.BindEnv("cache.redis_addr", "CACHE_REDIS_ADDR", "REDIS_ADDR")
	v.BindEnv("cache.redis_password", "CACHE_REDIS_PASSWORD", "REDIS_PASSWORD")
	v.BindEnv("cache.redis_db", "CACHE_REDIS_DB", "REDIS_DB")

	v.BindEnv("turnstile.enabled", "TURNSTILE_ENABLED")
	v.BindEnv("turnstile.secret_token", "TURNSTILE_SECRET_TOKEN")

	v.BindEnv("cleanup.interval", "CLEANUP_INTERVAL")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.cors_origins", []string{"http://localhost:5173"})
	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "database.db")

	v.SetDefault("security.password_hash", "bcrypt")
	v.SetDefault("security.bcrypt_cost", 12)
	v.SetDefault("security.rate_limit", 20)

	v.SetDefault("auth.require_names", false)

	v.SetDefault("mail.enabled", false)
	v.SetDefault("mail.port", 587)

	v.SetDefault("cache.ttl", 15*time.Second)

	v.SetDefault("turnstile.enabled", false)
	v.SetDefault("turnstile.verify_url", "https://challenges.cloudflare.com/turnstile/v0/siteverify")

	v.SetDefault("cleanup.interval", time.Hour)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config, %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	for i, e := range cfg.Auth.AdminEmails {
		cfg.Auth.AdminEmails[i] = strings.ToLower(strings.TrimSpace(e))
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.App.LogLevel) {
		return errors.New("invalid log level provided")
	}

	if c.Host.Port <= 0 {
		return errors.New("invalid port provided")
	}

	if len(c.Host.CorsOrigins) == 0 {
		return errors.New("host.cors_origins can't be empty")
	}

	if c.Host.SSL.Enabled {
		if c.Host.SSL.CertificatePath == "" {
			return errors.New("no ssl certificate path provided")
		}

		if c.Host.SSL.CertificateKeyPath == "" {
			return errors.New("no ssl certificate key path provided")
		}
	}

	if !slices.Contains(validDrivers, c.Database.Driver) {
		return errors.New("invalid database driver provided")
	}

	if c.Database.DSN == "" {
		return errors.New("database dsn can't be empty")
	}

	if c.Security.JWTSecret == "" {
		return fmt.Errorf("security.jwt_secret is not set. You can use this randomly generated one:\n\n%s", genSecret())
	}

	if c.Security.HMACSecret == "" {
		return fmt.Errorf("security.hmac_secret is not set. You can use this randomly generated one:\n\n%s", genSecret())
	}

	if !slices.Contains(validPasswordHashs, c.Security.PasswordHash) {
		return errors.New("invalid password hash algorithm provided")
	}

	if c.Security.PasswordHash == "bcrypt" && (c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31) {
		return errors.New("security.bcrypt_cost must be between 4 and 31")
	}

	if c.Security.RateLimit < 0 {
		return errors.New("security.rate_limit can't be negative")
	}

	if c.Mail.Enabled {
		if c.Mail.Host == "" {
			return errors.New("mail host can't be empty")
		}

		if c.Mail.Port <= 0 {
			return errors.New("invalid mail port provided")
		}

		if c.Mail.SenderAddress == "" {
			return errors.New("mail sender address can't be empty")
		}
	}

	if c.Turnstile.Enabled && c.Turnstile.SecretToken == "" {
		return errors.New("turnstile secret token is missing")
	}

	if c.Cache.RedisDB < 0 {
		return errors.New("cache.redis_db can't be negative")
	}

	if c.Cleanup.Interval <= 0 {
		return errors.New("cleanup interval must be bigger than 0")
	}

	return nil
}
