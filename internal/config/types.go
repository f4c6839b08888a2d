package config

import "time"

// AppConfig holds runtime startup configuration loaded from YAML and the environment.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Database DatabaseConfig     `yaml:"database"`
	Redis    RedisConfig        `yaml:"redis"`
	Auth     AuthConfig         `yaml:"auth"`
	Storage  StorageConfig      `yaml:"storage"`
	Mail     MailConfig         `yaml:"mail"`
	Bark     BarkConfig         `yaml:"bark"`
	Catalog  CatalogConfig      `yaml:"catalog"`
	Paths    RuntimePathsConfig `yaml:"paths"`
	Site     SiteConfig         `yaml:"site"`
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	Env            string        `yaml:"env"` // "development" | "production"
	AllowedOrigins []string      `yaml:"allowed_origins"`
	Timezone       string        `yaml:"timezone"`
	RateLimit      int           `yaml:"rate_limit"` // requests per second per IP, 0 disables
	CacheTTL       time.Duration `yaml:"cache_ttl"`
}

type DatabaseConfig struct {
	Driver   string            `yaml:"driver"` // mysql | postgres | sqlite | mongodb
	DSN      string            `yaml:"dsn"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	User     string            `yaml:"user"`
	Password string            `yaml:"password"`
	Name     string            `yaml:"name"`
	Charset  string            `yaml:"charset"`
	SSLMode  string            `yaml:"sslmode"`
	Params   map[string]string `yaml:"params"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TLS      bool   `yaml:"tls"`
}

type AuthConfig struct {
	JWTSecret    string        `yaml:"jwt_secret"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
	CookieSecure bool          `yaml:"cookie_secure"`
}

type StorageConfig struct {
	Driver     string   `yaml:"driver"` // local | s3
	LocalDir   string   `yaml:"local_dir"`
	PublicBase string   `yaml:"public_base"`
	MaxSizeMB  int      `yaml:"max_size_mb"`
	S3         S3Config `yaml:"s3"`
}

type S3Config struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	CustomDomain    string `yaml:"custom_domain"`
	PathStyle       bool   `yaml:"path_style"`
	Prefix          string `yaml:"prefix"`
}

type MailConfig struct {
	Enable bool   `yaml:"enable"`
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	Secure bool   `yaml:"secure"`
	User   string `yaml:"user"`
	Pass   string `yaml:"pass"`
	From   string `yaml:"from"`
	To     string `yaml:"to"`
}

// BarkConfig enables push notifications through a Bark server.
type BarkConfig struct {
	Key    string `yaml:"key"`
	Server string `yaml:"server"`
}

type CatalogConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

type RuntimePathsConfig struct {
	Logs   string `yaml:"logs"`
	Static string `yaml:"static"`
}

type SiteConfig struct {
	Title  string `yaml:"title"`
	Footer string `yaml:"footer"`
}

// rawAppConfig is the on-disk shape. Optional booleans are pointers so an
// absent key keeps the default, durations are strings parsed after decoding.
type rawAppConfig struct {
	Server   rawServerConfig   `yaml:"server"`
	Database rawDatabaseConfig `yaml:"database"`
	Redis    rawRedisConfig    `yaml:"redis"`
	Auth     rawAuthConfig     `yaml:"auth"`
	Storage  rawStorageConfig  `yaml:"storage"`
	Mail     rawMailConfig     `yaml:"mail"`
	Bark     BarkConfig        `yaml:"bark"`
	Catalog  rawCatalogConfig  `yaml:"catalog"`
	Paths    rawPathsConfig    `yaml:"paths"`
	Site     SiteConfig        `yaml:"site"`
}

type rawServerConfig struct {
	Port           int      `yaml:"port"`
	Env            string   `yaml:"env"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	Timezone       string   `yaml:"timezone"`
	RateLimit      *int     `yaml:"rate_limit"`
	CacheTTL       string   `yaml:"cache_ttl"`
}

type rawDatabaseConfig struct {
	Driver   string            `yaml:"driver"`
	DSN      string            `yaml:"dsn"`
	URL      string            `yaml:"url"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	User     string            `yaml:"user"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	Name     string            `yaml:"name"`
	DBName   string            `yaml:"db_name"`
	Charset  string            `yaml:"charset"`
	SSLMode  string            `yaml:"sslmode"`
	Params   map[string]string `yaml:"params"`
}

type rawRedisConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       *int   `yaml:"db"`
	TLS      *bool  `yaml:"tls"`
}

type rawAuthConfig struct {
	JWTSecret    string `yaml:"jwt_secret"`
	SessionTTL   string `yaml:"session_ttl"`
	CookieSecure *bool  `yaml:"cookie_secure"`
}

type rawStorageConfig struct {
	Driver     string   `yaml:"driver"`
	LocalDir   string   `yaml:"local_dir"`
	PublicBase string   `yaml:"public_base"`
	MaxSizeMB  int      `yaml:"max_size_mb"`
	S3         S3Config `yaml:"s3"`
}

type rawMailConfig struct {
	Enable *bool  `yaml:"enable"`
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	Secure *bool  `yaml:"secure"`
	User   string `yaml:"user"`
	Pass   string `yaml:"pass"`
	From   string `yaml:"from"`
	To     string `yaml:"to"`
}

type rawCatalogConfig struct {
	RefreshInterval string `yaml:"refresh_interval"`
}

type rawPathsConfig struct {
	Logs   string `yaml:"logs"`
	Static string `yaml:"static"`
}

// envOverlay lists the variables that override the file, mostly secrets.
type envOverlay struct {
	Port              int    `env:"FOLIO_PORT"`
	Env               string `env:"FOLIO_ENV"`
	DBDriver          string `env:"FOLIO_DB_DRIVER"`
	DSN               string `env:"FOLIO_DSN"`
	RedisURL          string `env:"FOLIO_REDIS_URL"`
	JWTSecret         string `env:"FOLIO_JWT_SECRET"`
	S3AccessKeyID     string `env:"FOLIO_S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"FOLIO_S3_SECRET_ACCESS_KEY"`
	SMTPPass          string `env:"FOLIO_SMTP_PASS"`
	BarkKey           string `env:"FOLIO_BARK_KEY"`
}
