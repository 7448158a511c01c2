package ygggo_upsert

import (
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	mysql "github.com/go-sql-driver/mysql"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultMaxRowsPerStatement is the row cap per chunk. Wider tables get smaller
// chunks so a statement never exceeds MaxPlaceholders.
const DefaultMaxRowsPerStatement = 1000

// PoolConfig holds *sql.DB pool settings.
type PoolConfig struct {
	MaxOpen         int           `yaml:"max_open"`
	MaxIdle         int           `yaml:"max_idle"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

// Config holds library configuration.
type Config struct {
	// Driver allows overriding the sql driver (e.g., "mysql" in prod, "sqlmock" in tests).
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	// Field-based DSN building (used when DSN is empty)
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	Database string            `yaml:"database"`
	Params   map[string]string `yaml:"params"`

	Pool      PoolConfig      `yaml:"pool"`
	Retry     RetryPolicy     `yaml:"retry"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`

	// MaxRowsPerStatement caps the rows per statement in UpsertChunked.
	MaxRowsPerStatement int `yaml:"max_rows_per_statement"`
}

// LoadConfig reads a YAML config file. Environment overrides are applied
// later, when the pool is created.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

// Validate reports every problem in c at once.
func (c Config) Validate() error {
	var result *multierror.Error
	if strings.TrimSpace(c.DSN) == "" && strings.TrimSpace(c.Host) == "" {
		result = multierror.Append(result, errors.New("either dsn or host is required"))
	}
	if c.Port < 0 || c.Port > 65535 {
		result = multierror.Append(result, errors.Errorf("port %d out of range", c.Port))
	}
	if c.Pool.MaxOpen < 0 || c.Pool.MaxIdle < 0 {
		result = multierror.Append(result, errors.New("pool sizes must not be negative"))
	}
	if c.MaxRowsPerStatement < 0 {
		result = multierror.Append(result, errors.Errorf("max_rows_per_statement %d must not be negative", c.MaxRowsPerStatement))
	}
	if c.Retry.MaxAttempts < 0 {
		result = multierror.Append(result, errors.Errorf("retry.max_attempts %d must not be negative", c.Retry.MaxAttempts))
	}
	if c.driverName() == "mysql" {
		if dsn, err := dsnFromConfig(c); err == nil {
			if _, perr := mysql.ParseDSN(dsn); perr != nil {
				result = multierror.Append(result, errors.Wrap(perr, "invalid dsn"))
			}
		}
	}
	return result.ErrorOrNil()
}

func (c Config) driverName() string {
	if c.Driver == "" {
		return "mysql"
	}
	return c.Driver
}

func (c Config) maxRows() int {
	if c.MaxRowsPerStatement > 0 {
		return c.MaxRowsPerStatement
	}
	return DefaultMaxRowsPerStatement
}

// dsnFromConfig returns a DSN string.
// Priority: if Config.DSN is non-empty, return it unchanged.
// Otherwise build from host/port/username/password/database/params.
func dsnFromConfig(c Config) (string, error) {
	if strings.TrimSpace(c.DSN) != "" {
		return c.DSN, nil
	}
	if strings.TrimSpace(c.Host) == "" {
		return "", errors.New("host is required when dsn is empty")
	}
	addr := c.Host
	if c.Port > 0 {
		addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
	}
	// Stable param order keeps the DSN deterministic.
	var q string
	if len(c.Params) > 0 {
		keys := make([]string, 0, len(c.Params))
		for k := range c.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", k, url.QueryEscape(c.Params[k])))
		}
		q = strings.Join(parts, "&")
	}
	// the mysql driver expects the password unescaped
	auth := ""
	if c.Username != "" {
		if c.Password != "" {
			auth = fmt.Sprintf("%s:%s@", c.Username, c.Password)
		} else {
			auth = c.Username + "@"
		}
	}
	dsn := fmt.Sprintf("%stcp(%s)/%s", auth, addr, url.PathEscape(c.Database))
	if q != "" {
		dsn += "?" + q
	}
	return dsn, nil
}
