package conf

import (
	"time"

	"github.com/spf13/viper"
)

func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("main.name", "gausscat")
	v.SetDefault("main.debug", false)

	v.SetDefault("webserver.host", "")
	v.SetDefault("webserver.port", 8080)
	v.SetDefault("webserver.bodylimit", "1M")
	v.SetDefault("webserver.readtimeout", 30*time.Second)
	v.SetDefault("webserver.writetimeout", 30*time.Second)
	v.SetDefault("webserver.allowedorigins", []string{})

	v.SetDefault("database.type", DatabaseSQLite)
	v.SetDefault("database.sqlite.path", "gausscat.db")
	v.SetDefault("database.mysql.host", "localhost")
	v.SetDefault("database.mysql.port", 3306)
	v.SetDefault("database.mysql.username", "gausscat")
	v.SetDefault("database.mysql.password", "")
	v.SetDefault("database.mysql.passwordfile", "")
	v.SetDefault("database.mysql.database", "gausscat")
	v.SetDefault("database.maxopenconns", 10)
	v.SetDefault("database.maxidleconns", 5)
	v.SetDefault("database.slowquerythreshold", 200*time.Millisecond)

	v.SetDefault("security.requireauthforwrites", true)
	v.SetDefault("security.administratorrole", "Administrator")
	v.SetDefault("security.jwtsecret", "")
	v.SetDefault("security.tokenissuer", "gausscat")
	v.SetDefault("security.tokenlifetime", time.Hour)
	v.SetDefault("security.sessionsecret", "")
	v.SetDefault("security.sessionmaxage", 8*60*60)
	v.SetDefault("security.cookiesecure", false)
	v.SetDefault("security.loginratelimit", 1.0)
	v.SetDefault("security.loginburst", 5)
	v.SetDefault("security.password.requiredlength", 6)
	v.SetDefault("security.password.requiredigit", true)
	v.SetDefault("security.password.requirelowercase", true)
	v.SetDefault("security.password.requireuppercase", true)
	v.SetDefault("security.password.requirenonalphanumeric", true)
	v.SetDefault("security.lockout.maxfailedaccessattempts", 5)
	v.SetDefault("security.lockout.duration", 5*time.Minute)

	v.SetDefault("logging.default_level", "info")
	v.SetDefault("logging.timezone", "Local")
	v.SetDefault("logging.console.enabled", true)
	v.SetDefault("logging.console.level", "info")
	v.SetDefault("logging.file_output.enabled", false)
	v.SetDefault("logging.file_output.path", "logs/gausscat.log")
	v.SetDefault("logging.file_output.level", "info")

	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "production")
	v.SetDefault("sentry.samplerate", 1.0)
	v.SetDefault("sentry.debug", false)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("events.mqtt.enabled", false)
	v.SetDefault("events.mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("events.mqtt.clientid", "gausscat")
	v.SetDefault("events.mqtt.username", "")
	v.SetDefault("events.mqtt.password", "")
	v.SetDefault("events.mqtt.passwordfile", "")
	v.SetDefault("events.mqtt.topicprefix", "gausscat")
	v.SetDefault("events.mqtt.qos", 1)

	v.SetDefault("cache.lookupttl", 5*time.Minute)
}
