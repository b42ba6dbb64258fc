package conf

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	DatabaseSQLite = "sqlite"
	DatabaseMySQL  = "mysql"

	minSecretLength = 16
)

// ValidationError collects every problem found in one pass.
type ValidationError struct {
	Errors []string
}

func (ve ValidationError) Error() string {
	return fmt.Sprintf("validation errors: %s", strings.Join(ve.Errors, "; "))
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}
	add := func(format string, args ...any) {
		ve.Errors = append(ve.Errors, fmt.Sprintf(format, args...))
	}

	if p := settings.WebServer.Port; p < 1 || p > 65535 {
		add("webserver.port must be between 1 and 65535, got %d", p)
	}

	settings.Database.Type = strings.ToLower(settings.Database.Type)
	switch settings.Database.Type {
	case DatabaseSQLite:
		if settings.Database.SQLite.Path == "" {
			add("database.sqlite.path is required")
		}
	case DatabaseMySQL:
		m := settings.Database.MySQL
		if m.Host == "" || m.Database == "" || m.Username == "" {
			add("database.mysql host, database and username are required")
		}
	default:
		add("database.type must be %q or %q, got %q", DatabaseSQLite, DatabaseMySQL, settings.Database.Type)
	}

	sec := settings.Security
	if sec.AdministratorRole == "" {
		add("security.administratorrole is required")
	}
	if len(sec.JWTSecret) < minSecretLength {
		add("security.jwtsecret must be at least %d characters", minSecretLength)
	}
	if len(sec.SessionSecret) < minSecretLength {
		add("security.sessionsecret must be at least %d characters", minSecretLength)
	}
	if sec.TokenLifetime <= 0 {
		add("security.tokenlifetime must be positive")
	}
	if sec.Password.RequiredLength < 1 {
		add("security.password.requiredlength must be at least 1")
	}
	if sec.LoginRateLimit <= 0 {
		add("security.loginratelimit must be positive")
	}

	if settings.Sentry.Enabled && settings.Sentry.DSN == "" {
		add("sentry.dsn is required when sentry is enabled")
	}

	if mq := settings.Events.MQTT; mq.Enabled {
		u, err := url.Parse(mq.Broker)
		if err != nil || u.Host == "" {
			add("events.mqtt.broker must be a URL like tcp://host:1883, got %q", mq.Broker)
		}
		if mq.QoS > 2 {
			add("events.mqtt.qos must be 0, 1 or 2")
		}
	}

	if settings.Metrics.Enabled && !strings.HasPrefix(settings.Metrics.Path, "/") {
		add("metrics.path must start with /")
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}
