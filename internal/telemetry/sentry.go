// Package telemetry provides opt-in error reporting to Sentry.
package telemetry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/qchem/gausscat/internal/conf"
	"github.com/qchem/gausscat/internal/errors"
	"github.com/qchem/gausscat/internal/logger"
)

var log = logger.Global().Module("telemetry")

// Init configures the Sentry SDK and routes enhanced errors to it. It does
// nothing unless telemetry is enabled.
func Init(settings *conf.SentrySettings, release string) error {
	if !settings.Enabled {
		log.Debug("error telemetry is disabled")
		errors.SetTelemetryReporter(nil)
		return nil
	}
	if settings.DSN == "" {
		return errors.Newf("sentry is enabled but no DSN is configured").
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return initWith(clientOptions(settings, release))
}

func clientOptions(settings *conf.SentrySettings, release string) sentry.ClientOptions {
	sampleRate := settings.SampleRate
	if sampleRate <= 0 || sampleRate > 1 {
		sampleRate = 1.0
	}
	environment := settings.Environment
	if environment == "" {
		environment = "production"
	}

	return sentry.ClientOptions{
		Dsn:              settings.DSN,
		SampleRate:       sampleRate,
		Debug:            settings.Debug,
		AttachStacktrace: false,
		Environment:      environment,
		ServerName:       "",
		Release:          fmt.Sprintf("gausscat@%s", release),
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return applyPrivacyFilters(event)
		},
	}
}

func initWith(opts sentry.ClientOptions) error {
	if err := sentry.Init(opts); err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	errors.SetTelemetryReporter(errors.NewSentryReporter(true))
	log.Info("error telemetry enabled",
		logger.String("environment", opts.Environment),
		logger.String("release", opts.Release))
	return nil
}

// applyPrivacyFilters drops user, host and device data from an event.
func applyPrivacyFilters(event *sentry.Event) *sentry.Event {
	event.User = sentry.User{}
	event.ServerName = ""
	event.Request = nil

	if event.Contexts != nil {
		delete(event.Contexts, "device")
		delete(event.Contexts, "os")
		delete(event.Contexts, "runtime")
	}
	if event.Tags != nil {
		delete(event.Tags, "server_name")
		delete(event.Tags, "hostname")
	}
	return event
}

// Flush waits for buffered events to be sent.
func Flush(timeout time.Duration) bool {
	if errors.GetTelemetryReporter() == nil {
		return true
	}
	return sentry.Flush(timeout)
}
