package ygggo_upsert

import (
	"net/url"
	"os"
	"strconv"
	"time"
)

// Environment variables read by applyEnv. A set variable always wins over the
// value already in Config.
const (
	EnvDriver        = "YGGGO_UPSERT_DRIVER"
	EnvDSN           = "YGGGO_UPSERT_DSN"
	EnvHost          = "YGGGO_UPSERT_HOST"
	EnvPort          = "YGGGO_UPSERT_PORT"
	EnvUsername      = "YGGGO_UPSERT_USERNAME"
	EnvPassword      = "YGGGO_UPSERT_PASSWORD"
	EnvDatabase      = "YGGGO_UPSERT_DATABASE"
	EnvParams        = "YGGGO_UPSERT_PARAMS"
	EnvMaxRows       = "YGGGO_UPSERT_MAX_ROWS_PER_STATEMENT"
	EnvSlowThreshold = "YGGGO_UPSERT_SLOW_THRESHOLD"
	EnvLogging       = "YGGGO_UPSERT_LOGGING"
	EnvTelemetry     = "YGGGO_UPSERT_TELEMETRY"
	EnvMetrics       = "YGGGO_UPSERT_METRICS"
)

func applyEnv(c *Config) {
	if c == nil {
		return
	}
	setString(EnvDriver, &c.Driver)
	setString(EnvDSN, &c.DSN)
	setString(EnvHost, &c.Host)
	setString(EnvUsername, &c.Username)
	setString(EnvPassword, &c.Password)
	setString(EnvDatabase, &c.Database)
	setInt(EnvPort, &c.Port)
	setInt(EnvMaxRows, &c.MaxRowsPerStatement)
	setBool(EnvLogging, &c.Logging.Enabled)
	setBool(EnvTelemetry, &c.Telemetry.Enabled)
	setBool(EnvMetrics, &c.Metrics.Enabled)
	if v, ok := os.LookupEnv(EnvSlowThreshold); ok {
		if d, err := time.ParseDuration(v); err == nil {
			c.Logging.SlowThreshold = d
		}
	}
	if v, ok := os.LookupEnv(EnvParams); ok {
		if q, err := url.ParseQuery(v); err == nil {
			if c.Params == nil {
				c.Params = make(map[string]string, len(q))
			}
			for k := range q {
				c.Params[k] = q.Get(k)
			}
		}
	}
}

func setString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(key string, dst *int) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(key string, dst *bool) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
