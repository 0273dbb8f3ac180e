package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App           AppConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Vault         VaultConfig
	Operator      OperatorConfig
	Impersonation ImpersonationConfig
	Resolver      ResolverConfig
	Log           LogConfig
	HTTP          HTTPConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
	// BaseDomain is the platform domain used for subdomain tenant
	// resolution (e.g. "tienda.app" so "acme.tienda.app" -> "acme")
	BaseDomain string
	// DefaultTenantDomain is the fallback tenant for single-tenant mode.
	// Empty disables the fallback.
	DefaultTenantDomain string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// VaultConfig holds the credential vault's master secret.
// The secret is deployment state, never stored alongside the data it
// protects.
type VaultConfig struct {
	MasterKey string
}

// MinMasterKeyLength is the minimum accepted master key length in bytes.
// A shorter key is a fatal misconfiguration, not a runtime error.
const MinMasterKeyLength = 32

// OperatorConfig holds signing settings for operator console tokens.
// Every call on the admin surface must carry one; the secret is shared
// with the mothership console that mints them.
type OperatorConfig struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
}

// ImpersonationConfig holds signing settings for impersonation grants.
// The grant TTL is fixed in code on purpose; it is not configurable.
type ImpersonationConfig struct {
	Secret string
	Issuer string
}

// ResolverConfig holds tenant resolution cache settings
type ResolverConfig struct {
	CacheBackend string // memory, redis
	CacheTTL     time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	MaxBodySize    int64
	TrustedProxies []string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with TIENDA_ prefix (e.g., TIENDA_VAULT_MASTER_KEY)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("TIENDA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name:                v.GetString("app.name"),
			Env:                 v.GetString("app.env"),
			Port:                v.GetString("app.port"),
			BaseDomain:          v.GetString("app.base_domain"),
			DefaultTenantDomain: v.GetString("app.default_tenant_domain"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Vault: VaultConfig{
			MasterKey: v.GetString("vault.master_key"),
		},
		Operator: OperatorConfig{
			Secret:   v.GetString("operator.secret"),
			Issuer:   v.GetString("operator.issuer"),
			TokenTTL: v.GetDuration("operator.token_ttl"),
		},
		Impersonation: ImpersonationConfig{
			Secret: v.GetString("impersonation.secret"),
			Issuer: v.GetString("impersonation.issuer"),
		},
		Resolver: ResolverConfig{
			CacheBackend: v.GetString("resolver.cache_backend"),
			CacheTTL:     v.GetDuration("resolver.cache_ttl"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			MaxBodySize:    v.GetInt64("http.max_body_size"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "tienda-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "tienda"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Operator.Issuer == "" {
		cfg.Operator.Issuer = "tienda-mothership"
	}
	if cfg.Operator.TokenTTL == 0 {
		cfg.Operator.TokenTTL = 12 * time.Hour
	}
	if cfg.Impersonation.Issuer == "" {
		cfg.Impersonation.Issuer = "tienda-mothership"
	}
	if cfg.Resolver.CacheBackend == "" {
		cfg.Resolver.CacheBackend = "memory"
	}
	if cfg.Resolver.CacheTTL == 0 {
		cfg.Resolver.CacheTTL = 30 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 4 << 20 // 4MB
	}
}

// Validate performs validation on the configuration.
// Vault misconfiguration is fatal in every environment: serving traffic
// without a usable master key would strand every stored credential.
func (c *Config) Validate() error {
	if c.Vault.MasterKey == "" {
		return fmt.Errorf("vault.master_key is required")
	}
	if len(c.Vault.MasterKey) < MinMasterKeyLength {
		return fmt.Errorf("vault.master_key must be at least %d bytes, got %d", MinMasterKeyLength, len(c.Vault.MasterKey))
	}

	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	switch c.Resolver.CacheBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("resolver.cache_backend must be 'memory' or 'redis', got %q", c.Resolver.CacheBackend)
	}

	if c.App.Env == "production" {
		if c.Operator.Secret == "" {
			return fmt.Errorf("operator.secret is required in production")
		}
		if len(c.Operator.Secret) < 32 {
			return fmt.Errorf("operator.secret must be at least 32 characters in production")
		}
		if c.Impersonation.Secret == "" {
			return fmt.Errorf("impersonation.secret is required in production")
		}
		if len(c.Impersonation.Secret) < 32 {
			return fmt.Errorf("impersonation.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.App.BaseDomain == "" {
			return fmt.Errorf("app.base_domain is required in production for subdomain tenant resolution")
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the host:port address for Redis
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
