// Package conf loads and saves gausscat settings.
package conf

import (
	"crypto/rand"
	"embed"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/qchem/gausscat/internal/logger"
	"github.com/qchem/gausscat/internal/secrets"
)

//go:embed config.yaml
var configFiles embed.FS

// WebServerSettings configures the HTTP listener.
type WebServerSettings struct {
	Host           string        // listen address, empty for all interfaces
	Port           int           // listen port
	BodyLimit      string        // echo body limit, e.g. "1M"
	ReadTimeout    time.Duration // server read timeout
	WriteTimeout   time.Duration // server write timeout
	AllowedOrigins []string      // CORS origins for the JSON API
}

// Address returns host:port for the listener.
func (w WebServerSettings) Address() string {
	return fmt.Sprintf("%s:%d", w.Host, w.Port)
}

// SQLiteSettings configures the embedded database.
type SQLiteSettings struct {
	Path string // database file, ":memory:" for tests
}

// MySQLSettings configures a MySQL/MariaDB server.
type MySQLSettings struct {
	Host         string
	Port         int
	Username     string
	Password     string // may reference ${ENV_VAR}
	PasswordFile string // read the password from this file instead
	Database     string
}

// DatabaseSettings selects and configures the catalogue store.
type DatabaseSettings struct {
	Type               string        // "sqlite" or "mysql"
	SQLite             SQLiteSettings
	MySQL              MySQLSettings
	MaxOpenConns       int
	MaxIdleConns       int
	SlowQueryThreshold time.Duration
}

// PasswordPolicy mirrors the identity store's password rules.
type PasswordPolicy struct {
	RequiredLength         int
	RequireDigit           bool
	RequireLowercase       bool
	RequireUppercase       bool
	RequireNonAlphanumeric bool
}

// LockoutSettings controls account lockout after failed logins.
type LockoutSettings struct {
	MaxFailedAccessAttempts int
	Duration                time.Duration
}

// SecuritySettings covers tokens, sessions and authorization.
type SecuritySettings struct {
	RequireAuthForWrites bool          // API and pages reject anonymous writes
	AdministratorRole    string        // role required by the identity endpoints
	JWTSecret            string        // HS256 signing key, generated on first start
	TokenIssuer          string        // iss claim
	TokenLifetime        time.Duration // access token lifetime
	SessionSecret        string        // cookie store key, generated on first start
	SessionMaxAge        int           // seconds
	CookieSecure         bool          // set Secure on session and CSRF cookies
	LoginRateLimit       float64       // token/login requests per second per client
	LoginBurst           int
	Password             PasswordPolicy
	Lockout              LockoutSettings
}

// SentrySettings configures opt-in error telemetry.
type SentrySettings struct {
	Enabled     bool
	DSN         string
	Environment string
	SampleRate  float64
	Debug       bool
}

// MetricsSettings configures the Prometheus endpoint.
type MetricsSettings struct {
	Enabled bool
	Path    string
}

// MQTTSettings configures the change-event publisher.
type MQTTSettings struct {
	Enabled      bool
	Broker       string // tcp://host:1883
	ClientID     string
	Username     string
	Password     string // may reference ${ENV_VAR}
	PasswordFile string // read the password from this file instead
	TopicPrefix  string
	QoS          byte
}

// EventsSettings groups outbound change-event sinks.
type EventsSettings struct {
	MQTT MQTTSettings
}

// CacheSettings configures in-process caches.
type CacheSettings struct {
	LookupTTL time.Duration // dropdown lookup lists
}

// Settings is the root configuration.
type Settings struct {
	Main struct {
		Name  string
		Debug bool
	}
	WebServer WebServerSettings
	Database  DatabaseSettings
	Security  SecuritySettings
	Logging   logger.LoggingConfig
	Sentry    SentrySettings
	Metrics   MetricsSettings
	Events    EventsSettings
	Cache     CacheSettings

	configFile string
}

// ConfigFile returns the file the settings were read from.
func (s *Settings) ConfigFile() string {
	return s.configFile
}

// Options control where Load looks for configuration.
type Options struct {
	ConfigFile string // explicit file, skips the search path
	Debug      bool   // forces debug logging
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads configuration from file, defaults and environment, creating a
// default config file when none exists.
func Load(opts Options) (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	v := viper.New()
	if err := initViper(v, opts); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}
	settings.configFile = v.ConfigFileUsed()

	if opts.Debug {
		settings.Main.Debug = true
		settings.Logging.DefaultLevel = string(logger.LogLevelDebug)
	}

	if err := ensureSecrets(settings); err != nil {
		return nil, err
	}
	if err := resolveSecrets(settings); err != nil {
		return nil, err
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

func initViper(v *viper.Viper, opts Options) error {
	v.SetConfigType("yaml")
	setDefaultConfig(v)

	if err := bindEnvVars(v); err != nil {
		return err
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.Is(err, os.ErrNotExist) || errors.As(err, &notFound) {
				return createDefaultConfig(v, opts.ConfigFile)
			}
			return fmt.Errorf("fatal error reading config file: %w", err)
		}
		return nil
	}

	v.SetConfigName("config")
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		v.AddConfigPath(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return createDefaultConfig(v, filepath.Join(configPaths[0], "config.yaml"))
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}
	return nil
}

// GetDefaultConfigPaths returns the config search path, most specific first.
func GetDefaultConfigPaths() ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error fetching user home directory: %w", err)
	}
	return []string{
		".",
		filepath.Join(home, ".config", "gausscat"),
		"/etc/gausscat",
	}, nil
}

func createDefaultConfig(v *viper.Viper, configPath string) error {
	data, err := configFiles.ReadFile("config.yaml")
	if err != nil {
		return fmt.Errorf("error reading embedded config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o750); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	v.SetConfigFile(configPath)
	return v.ReadInConfig()
}

// ensureSecrets generates missing signing keys and persists them so that
// tokens and sessions survive restarts.
func ensureSecrets(settings *Settings) error {
	changed := false
	if strings.TrimSpace(settings.Security.JWTSecret) == "" {
		settings.Security.JWTSecret = GenerateRandomSecret()
		changed = true
	}
	if strings.TrimSpace(settings.Security.SessionSecret) == "" {
		settings.Security.SessionSecret = GenerateRandomSecret()
		changed = true
	}
	if changed && settings.configFile != "" {
		if err := SaveYAMLConfig(settings.configFile, settings); err != nil {
			return fmt.Errorf("error persisting generated secrets: %w", err)
		}
	}
	return nil
}

// resolveSecrets replaces credential references with their values. It runs
// after ensureSecrets so resolved credentials are never written back.
func resolveSecrets(settings *Settings) error {
	mysql := &settings.Database.MySQL
	password, err := secrets.Resolve(mysql.PasswordFile, mysql.Password)
	if err != nil {
		return fmt.Errorf("database.mysql.password: %w", err)
	}
	mysql.Password = password

	mqtt := &settings.Events.MQTT
	if password, err = secrets.Resolve(mqtt.PasswordFile, mqtt.Password); err != nil {
		return fmt.Errorf("events.mqtt.password: %w", err)
	}
	mqtt.Password = password

	dsn, err := secrets.ExpandString(settings.Sentry.DSN)
	if err != nil {
		return fmt.Errorf("sentry.dsn: %w", err)
	}
	settings.Sentry.DSN = dsn
	return nil
}

// GetSettings returns the loaded settings, or nil before Load.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SaveYAMLConfig writes settings atomically via a temp file and rename.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	defer os.Remove(tempFileName)

	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}
	if err := os.Chmod(tempFileName, 0o600); err != nil {
		return fmt.Errorf("error setting config permissions: %w", err)
	}
	if err := os.Rename(tempFileName, configPath); err != nil {
		return fmt.Errorf("error replacing config file: %w", err)
	}
	return nil
}

// GenerateRandomSecret returns 32 random bytes, URL-safe base64 encoded.
func GenerateRandomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
