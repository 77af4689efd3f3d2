package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	AppEnv  string
	AppPort string

	// DBDriver is "mysql" or "sqlite".
	DBDriver     string
	MySQLHost    string
	MySQLPort    string
	MySQLDB      string
	MySQLUser    string
	MySQLPass    string
	SQLitePath   string
	GormLogLevel string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	IdempTTLSecs int

	JWTSecret         string
	SessionTTLMinutes int

	FinePerDay         decimal.Decimal
	DefaultLoanDays    int
	FineSweepIntervalM int

	UploadDir     string
	PublicBaseURL string
	MaxProofBytes int64

	AdminUsername string
	AdminPassword string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return d
}

// Load reads the environment, after merging an optional .env file (values
// already in the environment win).
func Load(envFiles ...string) *Config {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f) // missing file is fine
	}

	c := &Config{
		AppEnv:       getenv("APP_ENV", "development"),
		AppPort:      getenv("APP_PORT", "8080"),
		DBDriver:     strings.ToLower(getenv("DB_DRIVER", "mysql")),
		MySQLHost:    getenv("MYSQL_HOST", "mysql"),
		MySQLPort:    getenv("MYSQL_PORT", "3306"),
		MySQLDB:      getenv("MYSQL_DB", "circulation"),
		MySQLUser:    getenv("MYSQL_USER", "circulation"),
		MySQLPass:    getenv("MYSQL_PASS", "circulation"),
		SQLitePath:   getenv("SQLITE_PATH", "circulation.db"),
		GormLogLevel: getenv("GORM_LOG_LEVEL", "warn"),

		RedisAddr:     getenv("REDIS_ADDR", "redis:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getint("REDIS_DB", 0),
		IdempTTLSecs:  getint("IDEMPOTENCY_TTL_SECONDS", 300),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		SessionTTLMinutes: getint("SESSION_TTL_MINUTES", 12*60),

		DefaultLoanDays:    getint("DEFAULT_LOAN_DAYS", 14),
		FineSweepIntervalM: getint("FINE_SWEEP_INTERVAL_MINUTES", 24*60),

		UploadDir:     getenv("UPLOAD_DIR", "uploads"),
		PublicBaseURL: strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		MaxProofBytes: int64(getint("MAX_PROOF_BYTES", 5<<20)),

		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
	c.FinePerDay = decimal.RequireFromString("1.00")
	if v := os.Getenv("FINE_PER_DAY"); v != "" {
		if d, err := decimal.NewFromString(strings.TrimSpace(v)); err == nil {
			c.FinePerDay = d
		}
	}
	return c
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be mysql or sqlite, got %q", c.DBDriver)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}
	if c.FinePerDay.IsNegative() {
		return errors.New("FINE_PER_DAY cannot be negative")
	}
	if c.DefaultLoanDays <= 0 {
		return errors.New("DEFAULT_LOAN_DAYS must be positive")
	}
	if c.SessionTTLMinutes <= 0 || c.FineSweepIntervalM <= 0 || c.IdempTTLSecs <= 0 {
		return errors.New("SESSION_TTL_MINUTES, FINE_SWEEP_INTERVAL_MINUTES and IDEMPOTENCY_TTL_SECONDS must be positive")
	}
	if c.MaxProofBytes <= 0 {
		return errors.New("MAX_PROOF_BYTES must be positive")
	}
	if (c.AdminUsername == "") != (c.AdminPassword == "") {
		return errors.New("set both ADMIN_USERNAME and ADMIN_PASSWORD, or neither")
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

func (c *Config) IdempTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

func (c *Config) SessionTTL() time.Duration { return time.Duration(c.SessionTTLMinutes) * time.Minute }

func (c *Config) FineSweepInterval() time.Duration {
	return time.Duration(c.FineSweepIntervalM) * time.Minute
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATE/DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
