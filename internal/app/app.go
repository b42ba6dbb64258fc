// Package app wires the long-lived components shared by the commands: the
// database, repositories, identity service, metrics and the change event
// bus with its consumers.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/qchem/gausscat/internal/buildinfo"
	"github.com/qchem/gausscat/internal/conf"
	"github.com/qchem/gausscat/internal/datastore"
	"github.com/qchem/gausscat/internal/datastore/repository"
	"github.com/qchem/gausscat/internal/events"
	"github.com/qchem/gausscat/internal/identity"
	"github.com/qchem/gausscat/internal/logger"
	"github.com/qchem/gausscat/internal/notify"
	"github.com/qchem/gausscat/internal/observability"
	"github.com/qchem/gausscat/internal/web"
)

const eventBusShutdownTimeout = 5 * time.Second

// App holds the running components.
type App struct {
	Settings *conf.Settings
	Build    *buildinfo.Context
	Store    *datastore.Store
	Repos    *repository.Repositories
	Identity *identity.Service
	Metrics  *observability.Metrics
	Bus      *events.EventBus
	Lookups  *web.LookupCache

	mqtt notify.Client
	log  logger.Logger
}

// OpenStore opens the configured database and brings the schema up to date.
func OpenStore(ctx context.Context, settings *conf.Settings) (*datastore.Store, error) {
	store, err := datastore.Open(&settings.Database, logger.Global().Module("datastore"))
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// NewIdentity creates the identity service from the security settings.
func NewIdentity(settings *conf.Settings, repos *repository.Repositories) *identity.Service {
	sec := &settings.Security
	tokens := identity.NewTokenIssuer(sec.JWTSecret, sec.TokenIssuer, sec.TokenLifetime)
	return identity.New(repos.Users, repos.Roles, tokens, identity.OptionsFromSettings(sec),
		logger.Global().Module("identity"))
}

// New opens the store and starts the event bus. Close releases both.
func New(ctx context.Context, settings *conf.Settings, build *buildinfo.Context) (*App, error) {
	a := &App{
		Settings: settings,
		Build:    build,
		log:      logger.Global().Module("app"),
	}

	store, err := OpenStore(ctx, settings)
	if err != nil {
		return nil, err
	}
	a.Store = store

	if settings.Metrics.Enabled {
		if a.Metrics, err = observability.NewMetrics(); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to create metrics: %w", err)
		}
	}

	a.Bus = events.New(events.DefaultConfig(), logger.Global().Module("events"))
	if err := a.registerConsumers(ctx); err != nil {
		a.Close()
		return nil, err
	}

	opts := repository.Options{Publisher: a.Lookups.Publisher(a.Bus)}
	if a.Metrics != nil {
		opts.Recorder = a.Metrics.Catalogue
	}
	a.Repos = repository.New(store.DB(), opts)
	a.Identity = NewIdentity(settings, a.Repos)

	if role := settings.Security.AdministratorRole; role != "" {
		if _, err := a.Identity.EnsureRole(ctx, role); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to ensure administrator role: %w", err)
		}
	}
	return a, nil
}

func (a *App) registerConsumers(ctx context.Context) error {
	a.Lookups = web.NewLookupCache(a.Settings.Cache.LookupTTL, logger.Global().Module("web").Module("lookups"))
	var consumers []events.Consumer
	if a.Metrics != nil {
		consumers = append(consumers, a.Metrics.Catalogue)
	}

	if mq := a.Settings.Events.MQTT; mq.Enabled {
		log := logger.Global().Module("mqtt")
		a.mqtt = notify.NewClient(notify.ConfigFromSettings(&mq), log)
		if err := a.mqtt.Connect(ctx); err != nil {
			// the client keeps retrying until Close
			a.log.Warn("MQTT broker unavailable, change events will be dropped until it connects",
				logger.String("broker", mq.Broker), logger.Error(err))
		}
		consumers = append(consumers, notify.NewPublisher(a.mqtt, mq.TopicPrefix, log))
	}

	for _, c := range consumers {
		if err := a.Bus.RegisterConsumer(c); err != nil {
			return err
		}
	}
	a.log.Info("change event consumers registered", logger.Int("count", len(consumers)))
	return nil
}

// Close stops the event bus, disconnects from MQTT and closes the database.
func (a *App) Close() {
	if a.Bus != nil {
		if err := a.Bus.Shutdown(eventBusShutdownTimeout); err != nil {
			a.log.Warn("event bus shutdown incomplete", logger.Error(err))
		}
	}
	if a.mqtt != nil {
		a.mqtt.Disconnect()
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.log.Warn("failed to close database", logger.Error(err))
		}
	}
}
