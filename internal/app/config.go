package app

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverInMemory = "inmemory"
	DriverPostgres = "postgres"
	DriverMongoDB  = "mongodb"
	DriverMySQL    = "mysql"
)

type Config struct {
	Port      int
	Env       string
	LogFormat string

	DB    DBConfig
	Mongo MongoConfig
	Redis RedisConfig
	SMTP  SMTPConfig
	AMQP  AMQPConfig
	Cors  CorsConfig

	OtelCollectorUrl string
	StaticDir        string
	SeedFile         string
}

type DBConfig struct {
	Driver       string
	DSN          string
	Host         string
	Port         int
	Username     string
	Password     string
	Name         string
	MaxOpenConns int
	MaxIdleTime  time.Duration
}

type MongoConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
	FilmsTTL     time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

type AMQPConfig struct {
	URL   string
	Queue string
}

type CorsConfig struct {
	TrustedOrigins []string
}

// parseConfig reads flags from args. Environment variables provide the
// defaults so the same binary runs from a .env file or a flag list.
func parseConfig(fs *flag.FlagSet, args []string) (Config, bool, error) {
	var cfg Config

	fs.IntVar(&cfg.Port, "port", envInt("PORT", 3000), "server port")
	fs.StringVar(&cfg.Env, "env", getenv("APP_ENV", "dev"), "Environment (dev|staging|prod)")
	fs.StringVar(&cfg.LogFormat, "log-format", getenv("LOGGER_TYPE", "dev"), "Log format (dev|json|tskv)")

	fs.StringVar(&cfg.DB.Driver, "db-driver", getenv("DATABASE_DRIVER", DriverMongoDB), "Session store (mongodb|postgres|mysql|inmemory)")
	fs.StringVar(&cfg.DB.DSN, "db-dsn", getenv("DATABASE_DSN", ""), "SQL database DSN")
	fs.StringVar(&cfg.DB.Host, "db-host", getenv("DATABASE_HOST", "localhost"), "SQL database host")
	fs.IntVar(&cfg.DB.Port, "db-port", envInt("DATABASE_PORT", 0), "SQL database port")
	fs.StringVar(&cfg.DB.Username, "db-username", getenv("DATABASE_USERNAME", ""), "SQL database user")
	fs.StringVar(&cfg.DB.Password, "db-password", getenv("DATABASE_PASSWORD", ""), "SQL database password")
	fs.StringVar(&cfg.DB.Name, "db-name", getenv("DATABASE_NAME", "afisha"), "SQL database name")
	fs.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", envInt("DATABASE_MAX_OPEN_CONNS", 25), "SQL database max open connections")
	fs.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", envDur("DATABASE_MAX_IDLE_TIME", 15*time.Minute), "SQL database max idle time for connections")

	fs.StringVar(&cfg.Mongo.URI, "mongodb-uri", getenv("MONGODB_URI", "mongodb://localhost:27017"), "MongoDB URI")
	fs.StringVar(&cfg.Mongo.Database, "mongodb-database", getenv("MONGODB_DATABASE", "afisha"), "MongoDB database")

	fs.StringVar(&cfg.Redis.URL, "redis-url", getenv("REDIS_URL", ""), "Redis address, empty disables the film cache")
	fs.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	fs.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	fs.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")
	fs.DurationVar(&cfg.Redis.FilmsTTL, "films-cache-ttl", envDur("FILMS_CACHE_TTL", time.Minute), "Film list cache TTL")

	fs.StringVar(&cfg.SMTP.Host, "smtp-host", getenv("SMTP_HOST", ""), "SMTP host, empty disables confirmation e-mails")
	fs.IntVar(&cfg.SMTP.Port, "smtp-port", envInt("SMTP_PORT", 2525), "SMTP port")
	fs.StringVar(&cfg.SMTP.Username, "smtp-username", getenv("SMTP_USERNAME", ""), "SMTP username")
	fs.StringVar(&cfg.SMTP.Password, "smtp-password", getenv("SMTP_PASSWORD", ""), "SMTP password")
	fs.StringVar(&cfg.SMTP.Sender, "smtp-sender", getenv("SMTP_SENDER", "Film! <no-reply@film.example>"), "SMTP sender")

	fs.StringVar(&cfg.AMQP.URL, "amqp-url", getenv("AMQP_URL", ""), "RabbitMQ URL, empty disables order events")
	fs.StringVar(&cfg.AMQP.Queue, "amqp-queue", getenv("AMQP_QUEUE", "order.placed"), "RabbitMQ queue for order events")

	fs.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", getenv("OTEL_COLLECTOR_URL", ""), "OpenTelemetry collector endpoint")
	fs.StringVar(&cfg.StaticDir, "static-dir", getenv("STATIC_DIR", "public"), "Directory holding content/afisha")
	fs.StringVar(&cfg.SeedFile, "seed-file", getenv("SEED_FILE", ""), "JSON file with films to load at startup")

	fs.Func("cors-trusted-origins", "Trusted CORS origins (space separated)", func(val string) error {
		cfg.Cors.TrustedOrigins = strings.Fields(val)
		return nil
	})
	cfg.Cors.TrustedOrigins = strings.Fields(getenv("CORS_TRUSTED_ORIGINS", ""))

	displayVersion := fs.Bool("version", false, "Display version and exit")

	err := fs.Parse(args)
	if err != nil {
		return Config{}, false, err
	}

	cfg.DB.Driver = strings.ToLower(cfg.DB.Driver)

	switch cfg.DB.Driver {
	case DriverInMemory, DriverPostgres, DriverMongoDB, DriverMySQL:
	default:
		return Config{}, false, fmt.Errorf("unknown database driver %q", cfg.DB.Driver)
	}

	return cfg, *displayVersion, nil
}

// PostgresDSN returns DSN or builds one from the discrete settings.
func (c DBConfig) PostgresDSN() string {
	if c.DSN != "" {
		return c.DSN
	}

	port := c.Port
	if port == 0 {
		port = 5432
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, port),
		Path:     c.Name,
		RawQuery: "sslmode=disable",
	}

	return u.String()
}

// MySQLDSN returns DSN or builds one in go-sql-driver form.
func (c DBConfig) MySQLDSN() string {
	if c.DSN != "" {
		return c.DSN
	}

	port := c.Port
	if port == 0 {
		port = 3306
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&multiStatements=true", c.Username, c.Password, c.Host, port, c.Name)
}

func getenv(k, d string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	if v, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return v
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(k)); err == nil {
		return v
	}
	return d
}
