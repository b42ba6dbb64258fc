package conf

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// GAUSSCAT_DATABASE_TYPE=mysql.
const EnvPrefix = "GAUSSCAT"

type envBinding struct {
	ConfigKey string
	EnvVar    string
	Validate  func(string) error
}

func getEnvBindings() []envBinding {
	return []envBinding{
		{"webserver.port", "GAUSSCAT_WEBSERVER_PORT", validateEnvPort},
		{"database.type", "GAUSSCAT_DATABASE_TYPE", validateEnvDatabaseType},
		{"database.sqlite.path", "GAUSSCAT_DATABASE_SQLITE_PATH", nil},
		{"database.mysql.host", "GAUSSCAT_DATABASE_MYSQL_HOST", nil},
		{"database.mysql.port", "GAUSSCAT_DATABASE_MYSQL_PORT", validateEnvPort},
		{"database.mysql.username", "GAUSSCAT_DATABASE_MYSQL_USERNAME", nil},
		{"database.mysql.password", "GAUSSCAT_DATABASE_MYSQL_PASSWORD", nil},
		{"database.mysql.passwordfile", "GAUSSCAT_DATABASE_MYSQL_PASSWORDFILE", nil},
		{"database.mysql.database", "GAUSSCAT_DATABASE_MYSQL_DATABASE", nil},
		{"security.requireauthforwrites", "GAUSSCAT_SECURITY_REQUIREAUTHFORWRITES", validateEnvBool},
		{"security.jwtsecret", "GAUSSCAT_SECURITY_JWTSECRET", validateEnvSecret},
		{"security.sessionsecret", "GAUSSCAT_SECURITY_SESSIONSECRET", validateEnvSecret},
		{"sentry.enabled", "GAUSSCAT_SENTRY_ENABLED", validateEnvBool},
		{"sentry.dsn", "GAUSSCAT_SENTRY_DSN", nil},
		{"events.mqtt.enabled", "GAUSSCAT_EVENTS_MQTT_ENABLED", validateEnvBool},
		{"events.mqtt.broker", "GAUSSCAT_EVENTS_MQTT_BROKER", nil},
		{"events.mqtt.password", "GAUSSCAT_EVENTS_MQTT_PASSWORD", nil},
		{"events.mqtt.passwordfile", "GAUSSCAT_EVENTS_MQTT_PASSWORDFILE", nil},
	}
}

// bindEnvVars binds the documented overrides and rejects invalid values
// before they reach the settings struct.
func bindEnvVars(v *viper.Viper) error {
	var problems []string
	for _, binding := range getEnvBindings() {
		if err := v.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			problems = append(problems, fmt.Sprintf("failed to bind %s: %v", binding.EnvVar, err))
			continue
		}
		if binding.Validate == nil {
			continue
		}
		if value := os.Getenv(binding.EnvVar); value != "" {
			if err := binding.Validate(value); err != nil {
				problems = append(problems, fmt.Sprintf("invalid %s value: %v", binding.EnvVar, err))
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("%q is not a boolean", value)
	}
	return nil
}

func validateEnvPort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%q is not a number", value)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

func validateEnvDatabaseType(value string) error {
	switch strings.ToLower(value) {
	case DatabaseSQLite, DatabaseMySQL:
		return nil
	default:
		return fmt.Errorf("database type must be %q or %q", DatabaseSQLite, DatabaseMySQL)
	}
}

func validateEnvSecret(value string) error {
	if len(value) < minSecretLength {
		return fmt.Errorf("secret must be at least %d characters", minSecretLength)
	}
	return nil
}
