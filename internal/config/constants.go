package config

import "time"

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongodb"

	StorageLocal = "local"
	StorageS3    = "s3"

	defaultPort        = 8080
	defaultEnv         = "development"
	defaultRateLimit   = 50
	defaultCacheTTL    = 30 * time.Second
	defaultDriver      = DriverSQLite
	defaultSQLitePath  = "data/folio.db"
	defaultDBHost      = "127.0.0.1"
	defaultMySQLPort   = 3306
	defaultPGPort      = 5432
	defaultMongoPort   = 27017
	defaultDBUser      = "root"
	defaultDBName      = "folio"
	defaultDBCharset   = "utf8mb4"
	defaultPGSSLMode   = "disable"
	defaultRedisPort   = 6379
	defaultSessionTTL  = 7 * 24 * time.Hour
	defaultUploadsDir  = "data"
	defaultMaxSizeMB   = 10
	defaultS3Region    = "auto"
	defaultSMTPPort    = 465
	defaultRefreshTick = 5 * time.Minute
	defaultSiteTitle   = "Portfolio"
)
