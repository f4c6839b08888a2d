package config

import (
	"fmt"
	"net"
	neturl "net/url"
	"sort"
	"strconv"
	"strings"
)

// DSNValue returns the connection string for the configured driver. An
// explicit dsn wins; otherwise one is assembled from the discrete fields.
func (c DatabaseConfig) DSNValue() string {
	if v := strings.TrimSpace(c.DSN); v != "" {
		return v
	}
	switch c.Driver {
	case DriverMySQL:
		return c.mysqlDSN()
	case DriverPostgres:
		return c.postgresDSN()
	case DriverMongo:
		return c.mongoURI()
	default:
		if c.Name != "" {
			return c.Name
		}
		return defaultSQLitePath
	}
}

func (c DatabaseConfig) hostPort(defaultPort int) string {
	host := c.Host
	if host == "" {
		host = defaultDBHost
	}
	port := c.Port
	if port == 0 {
		port = defaultPort
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func (c DatabaseConfig) dbName() string {
	if c.Name == "" {
		return defaultDBName
	}
	return c.Name
}

func (c DatabaseConfig) mysqlDSN() string {
	user := c.User
	if user == "" {
		user = defaultDBUser
	}
	charset := c.Charset
	if charset == "" {
		charset = defaultDBCharset
	}

	params := neturl.Values{}
	for key, value := range c.Params {
		params.Set(key, value)
	}
	if params.Get("charset") == "" {
		params.Set("charset", charset)
	}
	if params.Get("parseTime") == "" {
		params.Set("parseTime", "true")
	}
	if params.Get("loc") == "" {
		params.Set("loc", "UTC")
	}

	auth := user
	if c.Password != "" {
		auth += ":" + c.Password
	}
	auth += "@"

	dsn := fmt.Sprintf("%stcp(%s)/%s", auth, c.hostPort(defaultMySQLPort), c.dbName())
	if query := params.Encode(); query != "" {
		dsn += "?" + query
	}
	return dsn
}

func (c DatabaseConfig) postgresDSN() string {
	host := c.Host
	if host == "" {
		host = defaultDBHost
	}
	port := c.Port
	if port == 0 {
		port = defaultPGPort
	}
	user := c.User
	if user == "" {
		user = "postgres"
	}
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = defaultPGSSLMode
	}

	parts := []string{
		"host=" + host,
		"port=" + strconv.Itoa(port),
		"user=" + user,
	}
	if c.Password != "" {
		parts = append(parts, "password="+c.Password)
	}
	parts = append(parts, "dbname="+c.dbName(), "sslmode="+sslmode)

	keys := make([]string, 0, len(c.Params))
	for key := range c.Params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		parts = append(parts, key+"="+c.Params[key])
	}
	return strings.Join(parts, " ")
}

func (c DatabaseConfig) mongoURI() string {
	u := &neturl.URL{
		Scheme: "mongodb",
		Host:   c.hostPort(defaultMongoPort),
		Path:   "/" + c.dbName(),
	}
	if c.User != "" {
		if c.Password != "" {
			u.User = neturl.UserPassword(c.User, c.Password)
		} else {
			u.User = neturl.User(c.User)
		}
	}
	if len(c.Params) > 0 {
		query := neturl.Values{}
		for key, value := range c.Params {
			query.Set(key, value)
		}
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// MongoDatabase returns the database name used by the document store.
func (c DatabaseConfig) MongoDatabase() string {
	if c.Name != "" {
		return c.Name
	}
	if u, err := neturl.Parse(c.DSNValue()); err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}
	return defaultDBName
}

// URLValue returns a redis:// URL, or "" when redis is not configured.
func (c RedisConfig) URLValue() string {
	if c.URL != "" {
		return c.URL
	}
	if c.Host == "" {
		return ""
	}
	port := c.Port
	if port == 0 {
		port = defaultRedisPort
	}
	scheme := "redis"
	if c.TLS {
		scheme = "rediss"
	}
	u := &neturl.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(port)),
		Path:   "/" + strconv.Itoa(c.DB),
	}
	if c.Username != "" {
		if c.Password != "" {
			u.User = neturl.UserPassword(c.Username, c.Password)
		} else {
			u.User = neturl.User(c.Username)
		}
	} else if c.Password != "" {
		u.User = neturl.UserPassword("", c.Password)
	}
	return u.String()
}
