package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Load reads the YAML file at configPath, applies it over the defaults and
// overlays FOLIO_* environment variables. A missing default config file is
// not an error; the server then runs on defaults plus environment.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if !(errors.Is(err, fs.ErrNotExist) && path == DefaultConfigPath) {
			return nil, fmt.Errorf("read config file %q: %w", path, err)
		}
		content = nil
	}
	return parse(content, path)
}

func parse(content []byte, source string) (*AppConfig, error) {
	cfg := defaultAppConfig()

	if len(bytes.TrimSpace(content)) > 0 {
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		raw := rawAppConfig{}
		if err := decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse config file %q: %w", source, err)
		}
		if err := applyRawAppConfig(&cfg, raw); err != nil {
			return nil, fmt.Errorf("parse config file %q: %w", source, err)
		}
	}

	overlay := envOverlay{}
	if err := env.Parse(&overlay); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	applyEnvOverlay(&cfg, overlay)

	cfg.Database = normalizeDatabaseConfig(cfg.Database)
	cfg.Redis = normalizeRedisConfig(cfg.Redis)
	cfg.Storage = normalizeStorageConfig(cfg.Storage)
	cfg.Server.Env = normalizeEnv(cfg.Server.Env)
	cfg.Server.AllowedOrigins = normalizeOrigins(cfg.Server.AllowedOrigins)
	cfg.Paths = normalizeRuntimePaths(cfg.Paths)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", source, err)
	}
	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Server: ServerConfig{
			Port:      defaultPort,
			Env:       defaultEnv,
			RateLimit: defaultRateLimit,
			CacheTTL:  defaultCacheTTL,
		},
		Database: DatabaseConfig{
			Driver: defaultDriver,
		},
		Auth: AuthConfig{
			SessionTTL: defaultSessionTTL,
		},
		Storage: StorageConfig{
			Driver:    StorageLocal,
			LocalDir:  defaultUploadsDir,
			MaxSizeMB: defaultMaxSizeMB,
		},
		Mail: MailConfig{
			Port: defaultSMTPPort,
		},
		Catalog: CatalogConfig{
			RefreshInterval: defaultRefreshTick,
		},
		Site: SiteConfig{
			Title: defaultSiteTitle,
		},
	}
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) error {
	if raw.Server.Port != 0 {
		cfg.Server.Port = raw.Server.Port
	}
	if v := strings.TrimSpace(raw.Server.Env); v != "" {
		cfg.Server.Env = v
	}
	if len(raw.Server.AllowedOrigins) > 0 {
		cfg.Server.AllowedOrigins = raw.Server.AllowedOrigins
	}
	if v := strings.TrimSpace(raw.Server.Timezone); v != "" {
		cfg.Server.Timezone = v
	}
	if raw.Server.RateLimit != nil {
		cfg.Server.RateLimit = *raw.Server.RateLimit
	}
	if err := applyDuration(&cfg.Server.CacheTTL, raw.Server.CacheTTL, "server.cache_ttl"); err != nil {
		return err
	}

	cfg.Database = applyRawDatabaseConfig(cfg.Database, raw.Database)
	cfg.Redis = applyRawRedisConfig(cfg.Redis, raw.Redis)

	if v := strings.TrimSpace(raw.Auth.JWTSecret); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if err := applyDuration(&cfg.Auth.SessionTTL, raw.Auth.SessionTTL, "auth.session_ttl"); err != nil {
		return err
	}
	if raw.Auth.CookieSecure != nil {
		cfg.Auth.CookieSecure = *raw.Auth.CookieSecure
	}

	if v := strings.TrimSpace(raw.Storage.Driver); v != "" {
		cfg.Storage.Driver = v
	}
	if v := strings.TrimSpace(raw.Storage.LocalDir); v != "" {
		cfg.Storage.LocalDir = v
	}
	if v := strings.TrimSpace(raw.Storage.PublicBase); v != "" {
		cfg.Storage.PublicBase = v
	}
	if raw.Storage.MaxSizeMB != 0 {
		cfg.Storage.MaxSizeMB = raw.Storage.MaxSizeMB
	}
	cfg.Storage.S3 = raw.Storage.S3

	if raw.Mail.Enable != nil {
		cfg.Mail.Enable = *raw.Mail.Enable
	}
	if raw.Mail.Secure != nil {
		cfg.Mail.Secure = *raw.Mail.Secure
	}
	if raw.Mail.Port != 0 {
		cfg.Mail.Port = raw.Mail.Port
	}
	cfg.Mail.Host = strings.TrimSpace(raw.Mail.Host)
	cfg.Mail.User = strings.TrimSpace(raw.Mail.User)
	cfg.Mail.Pass = raw.Mail.Pass
	cfg.Mail.From = strings.TrimSpace(raw.Mail.From)
	cfg.Mail.To = strings.TrimSpace(raw.Mail.To)
	cfg.Bark.Key = strings.TrimSpace(raw.Bark.Key)
	cfg.Bark.Server = strings.TrimSpace(raw.Bark.Server)

	if err := applyDuration(&cfg.Catalog.RefreshInterval, raw.Catalog.RefreshInterval, "catalog.refresh_interval"); err != nil {
		return err
	}

	if v := strings.TrimSpace(raw.Paths.Logs); v != "" {
		cfg.Paths.Logs = v
	}
	if v := strings.TrimSpace(raw.Paths.Static); v != "" {
		cfg.Paths.Static = v
	}
	if v := strings.TrimSpace(raw.Site.Title); v != "" {
		cfg.Site.Title = v
	}
	cfg.Site.Footer = strings.TrimSpace(raw.Site.Footer)
	return nil
}

func applyRawDatabaseConfig(current DatabaseConfig, raw rawDatabaseConfig) DatabaseConfig {
	if v := strings.TrimSpace(raw.Driver); v != "" {
		current.Driver = v
	}
	if v := strings.TrimSpace(raw.DSN); v != "" {
		current.DSN = v
	}
	if v := strings.TrimSpace(raw.URL); v != "" && current.DSN == "" {
		current.DSN = v
	}
	current.Host = strings.TrimSpace(raw.Host)
	current.Port = raw.Port
	current.User = strings.TrimSpace(raw.User)
	if current.User == "" {
		current.User = strings.TrimSpace(raw.Username)
	}
	current.Password = raw.Password
	current.Name = strings.TrimSpace(raw.Name)
	if current.Name == "" {
		current.Name = strings.TrimSpace(raw.DBName)
	}
	current.Charset = strings.TrimSpace(raw.Charset)
	current.SSLMode = strings.TrimSpace(raw.SSLMode)
	current.Params = copyStringMap(raw.Params)
	return current
}

func applyRawRedisConfig(current RedisConfig, raw rawRedisConfig) RedisConfig {
	current.URL = strings.TrimSpace(raw.URL)
	current.Host = strings.TrimSpace(raw.Host)
	current.Port = raw.Port
	current.Username = strings.TrimSpace(raw.Username)
	current.Password = raw.Password
	if raw.DB != nil {
		current.DB = *raw.DB
	}
	if raw.TLS != nil {
		current.TLS = *raw.TLS
	}
	return current
}

func applyEnvOverlay(cfg *AppConfig, o envOverlay) {
	if o.Port != 0 {
		cfg.Server.Port = o.Port
	}
	if v := strings.TrimSpace(o.Env); v != "" {
		cfg.Server.Env = v
	}
	if v := strings.TrimSpace(o.DBDriver); v != "" {
		cfg.Database.Driver = v
	}
	if v := strings.TrimSpace(o.DSN); v != "" {
		cfg.Database.DSN = v
	}
	if v := strings.TrimSpace(o.RedisURL); v != "" {
		cfg.Redis.URL = v
	}
	if v := strings.TrimSpace(o.JWTSecret); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := strings.TrimSpace(o.S3AccessKeyID); v != "" {
		cfg.Storage.S3.AccessKeyID = v
	}
	if v := strings.TrimSpace(o.S3SecretAccessKey); v != "" {
		cfg.Storage.S3.SecretAccessKey = v
	}
	if o.SMTPPass != "" {
		cfg.Mail.Pass = o.SMTPPass
	}
	if v := strings.TrimSpace(o.BarkKey); v != "" {
		cfg.Bark.Key = v
	}
}

func applyDuration(target *time.Duration, raw, key string) error {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*target = d
	return nil
}

func (c *AppConfig) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d, expected 1-65535", c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("invalid server.rate_limit %d, expected >= 0", c.Server.RateLimit)
	}
	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres, DriverSQLite, DriverMongo:
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}
	if c.Database.Port < 0 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database.port %d, expected 1-65535", c.Database.Port)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("invalid redis.db %d, expected >= 0", c.Redis.DB)
	}
	switch c.Storage.Driver {
	case StorageLocal:
	case StorageS3:
		if c.Storage.S3.Bucket == "" {
			return errors.New("storage.s3.bucket is required when storage.driver is s3")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	if c.Storage.MaxSizeMB < 1 {
		return fmt.Errorf("invalid storage.max_size_mb %d", c.Storage.MaxSizeMB)
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("invalid auth.session_ttl %s", c.Auth.SessionTTL)
	}
	return nil
}

func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Server.Env, defaultEnv)
}

func (c *AppConfig) LogDir() string {
	if c == nil {
		return ResolveRuntimePath("", "logs")
	}
	return ResolveRuntimePath(c.Paths.Logs, "logs")
}

// StaticDir is the on-disk directory that replaces the embedded assets, or
// "" when paths.static is unset.
func (c *AppConfig) StaticDir() string {
	if c == nil || strings.TrimSpace(c.Paths.Static) == "" {
		return ""
	}
	return ResolveRuntimePath(c.Paths.Static, "")
}

func (c *AppConfig) UploadDir() string {
	if c == nil {
		return ResolveRuntimePath("", defaultUploadsDir)
	}
	return ResolveRuntimePath(c.Storage.LocalDir, defaultUploadsDir)
}

// RedisEnabled reports whether a redis endpoint was configured.
func (c *AppConfig) RedisEnabled() bool {
	return c.Redis.URL != "" || c.Redis.Host != ""
}

func (c *AppConfig) MaxUploadBytes() int64 {
	return int64(c.Storage.MaxSizeMB) << 20
}
