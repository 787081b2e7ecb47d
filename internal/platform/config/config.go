package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backend names the kind of record store selected by the store URL scheme.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendPostgres Backend = "postgres"
	BackendMongo    Backend = "mongo"
	BackendRedis    Backend = "redis"
)

// ErrMissingStoreURL is returned when no store connection string is configured.
var ErrMissingStoreURL = errors.New("store URL is required (set PHONEBOOK_STORE_URL or MONGODB_URI)")

// Server captures HTTP server level configuration.
type Server struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	RequestTimeout    time.Duration
	ShutdownTimeout   time.Duration
	CORSOrigins       []string
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string
	Format string
}

// PostgresConfig tunes the database/sql pool and names the contact table.
type PostgresConfig struct {
	Table           string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// MongoConfig names the database and collection holding contacts.
type MongoConfig struct {
	Database   string
	Collection string
}

// RedisConfig holds pool overrides and the key prefix for contact keys.
type RedisConfig struct {
	Prefix       string
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Config is the full service configuration.
type Config struct {
	Server   Server
	Log      LogConfig
	StoreURL string
	// Seed loads the sample phonebook into the in-memory store at startup.
	Seed     bool
	Postgres PostgresConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

// SetDefaults registers default values and environment bindings on v.
// Nested keys map to PHONEBOOK_ prefixed variables (log.level -> PHONEBOOK_LOG_LEVEL).
func SetDefaults(v *viper.Viper) {
	v.SetDefault("host", "")
	v.SetDefault("port", "3001")
	v.SetDefault("server.read_header_timeout", 5*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("cors.origins", "*")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("seed", false)
	v.SetDefault("postgres.table", "persons")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("mongo.database", "phonebook")
	v.SetDefault("mongo.collection", "people")
	v.SetDefault("redis.prefix", "phonebook")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	v.SetEnvPrefix("PHONEBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("port", "PORT", "PHONEBOOK_PORT")
	_ = v.BindEnv("store_url", "PHONEBOOK_STORE_URL", "MONGODB_URI")
}

// Load builds a Config from v, reading the config file first when one is set.
func Load(v *viper.Viper) (Config, error) {
	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		Server: Server{
			Addr:              net.JoinHostPort(v.GetString("host"), v.GetString("port")),
			ReadHeaderTimeout: v.GetDuration("server.read_header_timeout"),
			RequestTimeout:    v.GetDuration("server.request_timeout"),
			ShutdownTimeout:   v.GetDuration("server.shutdown_timeout"),
			CORSOrigins:       splitList(v.GetString("cors.origins")),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		StoreURL: strings.TrimSpace(v.GetString("store_url")),
		Seed:     v.GetBool("seed"),
		Postgres: PostgresConfig{
			Table:           v.GetString("postgres.table"),
			MaxOpenConns:    v.GetInt("postgres.max_open_conns"),
			MaxIdleConns:    v.GetInt("postgres.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("postgres.conn_max_lifetime"),
		},
		Mongo: MongoConfig{
			Database:   v.GetString("mongo.database"),
			Collection: v.GetString("mongo.collection"),
		},
		Redis: RedisConfig{
			Prefix:       v.GetString("redis.prefix"),
			PoolSize:     v.GetInt("redis.pool_size"),
			DialTimeout:  v.GetDuration("redis.dial_timeout"),
			ReadTimeout:  v.GetDuration("redis.read_timeout"),
			WriteTimeout: v.GetDuration("redis.write_timeout"),
		},
	}

	if cfg.StoreURL == "" {
		return Config{}, ErrMissingStoreURL
	}
	if _, err := cfg.Backend(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Backend resolves the store backend from the store URL scheme.
func (c Config) Backend() (Backend, error) {
	u, err := url.Parse(c.StoreURL)
	if err != nil {
		return "", fmt.Errorf("parse store URL: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "memory":
		return BackendMemory, nil
	case "postgres", "postgresql":
		return BackendPostgres, nil
	case "mongodb", "mongodb+srv":
		return BackendMongo, nil
	case "redis", "rediss":
		return BackendRedis, nil
	default:
		return "", fmt.Errorf("unsupported store URL scheme %q", u.Scheme)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
