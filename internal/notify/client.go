// Package notify publishes catalogue change events to an MQTT broker.
package notify

import (
	"context"
	"net/url"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/qchem/gausscat/internal/conf"
	"github.com/qchem/gausscat/internal/errors"
	"github.com/qchem/gausscat/internal/logger"
)

// Client is the subset of MQTT operations the publisher needs.
type Client interface {
	Connect(ctx context.Context) error
	Publish(ctx context.Context, topic string, payload []byte) error
	IsConnected() bool
	Disconnect()
}

// Config holds the configuration for the MQTT client.
type Config struct {
	Broker            string
	ClientID          string
	Username          string
	Password          string
	QoS               byte
	ConnectTimeout    time.Duration // per connection attempt
	ConnectWait       time.Duration // how long Connect blocks before leaving retries to the background
	RetryInterval     time.Duration // pause between initial connection attempts
	PublishTimeout    time.Duration
	DisconnectTimeout time.Duration
}

// DefaultConfig returns a Config with reasonable default values.
func DefaultConfig() Config {
	return Config{
		ClientID:          "gausscat",
		QoS:               1,
		ConnectTimeout:    30 * time.Second,
		ConnectWait:       5 * time.Second,
		RetryInterval:     10 * time.Second,
		PublishTimeout:    10 * time.Second,
		DisconnectTimeout: 250 * time.Millisecond,
	}
}

// ConfigFromSettings applies the MQTT settings on top of DefaultConfig.
func ConfigFromSettings(s *conf.MQTTSettings) Config {
	cfg := DefaultConfig()
	cfg.Broker = s.Broker
	if s.ClientID != "" {
		cfg.ClientID = s.ClientID
	}
	cfg.Username = s.Username
	cfg.Password = s.Password
	if s.QoS <= 2 {
		cfg.QoS = s.QoS
	}
	return cfg
}

type client struct {
	config         Config
	internalClient mqtt.Client
	log            logger.Logger
	mu             sync.Mutex
}

// NewClient creates a paho-backed client. Connect must be called before Publish.
func NewClient(config Config, log logger.Logger) Client {
	if log == nil {
		log = logger.NewDiscard()
	}
	return &client{config: config, log: log}
}

// Connect dials the broker and waits up to ConnectWait for the session. If
// the broker is unreachable Connect returns an error but attempts continue
// every RetryInterval until Disconnect; lost connections are restored the
// same way.
func (c *client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	u, err := url.Parse(c.config.Broker)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.Newf("invalid broker URL %q", c.config.Broker).
			Component("notify").
			Category(errors.CategoryConfiguration).
			Build()
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(c.config.Broker)
	opts.SetClientID(c.config.ClientID)
	opts.SetUsername(c.config.Username)
	opts.SetPassword(c.config.Password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(c.config.RetryInterval)
	opts.SetConnectTimeout(c.config.ConnectTimeout)
	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)

	c.internalClient = mqtt.NewClient(opts)
	token := c.internalClient.Connect()

	wait := time.NewTimer(c.config.ConnectWait)
	defer wait.Stop()

	select {
	case <-token.Done():
	case <-wait.C:
		return errors.Newf("MQTT broker not reachable yet, retrying in background").
			Component("notify").
			Category(errors.CategoryMQTTConnection).
			Context("broker", c.config.Broker).
			Build()
	case <-ctx.Done():
		return errors.New(ctx.Err()).
			Component("notify").
			Category(errors.CategoryMQTTConnection).
			Context("broker", c.config.Broker).
			Build()
	}
	if err := token.Error(); err != nil {
		return errors.New(err).
			Component("notify").
			Category(errors.CategoryMQTTConnection).
			Context("broker", c.config.Broker).
			Build()
	}
	return nil
}

// Publish sends a non-retained message with the configured QoS.
func (c *client) Publish(ctx context.Context, topic string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// IsConnected is also true while retrying; only publish on an open session
	if c.internalClient == nil || !c.internalClient.IsConnectionOpen() {
		return errors.Newf("not connected to MQTT broker").
			Component("notify").
			Category(errors.CategoryMQTTConnection).
			Build()
	}

	token := c.internalClient.Publish(topic, c.config.QoS, false, payload)
	timer := time.NewTimer(c.config.PublishTimeout)
	defer timer.Stop()

	select {
	case <-token.Done():
	case <-timer.C:
		return errors.Newf("publish timeout").
			Component("notify").
			Category(errors.CategoryTimeout).
			Context("topic", topic).
			Build()
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return errors.New(err).
			Component("notify").
			Category(errors.CategoryMQTTPublish).
			Context("topic", topic).
			Build()
	}
	return nil
}

// IsConnected reports whether a session with the broker is open.
func (c *client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.internalClient != nil && c.internalClient.IsConnectionOpen()
}

// Disconnect closes the session and stops any pending connection retries.
func (c *client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.internalClient != nil {
		c.internalClient.Disconnect(uint(c.config.DisconnectTimeout.Milliseconds()))
	}
}

func (c *client) onConnect(mqtt.Client) {
	c.log.Info("connected to MQTT broker", logger.String("broker", c.config.Broker))
}

func (c *client) onConnectionLost(_ mqtt.Client, err error) {
	c.log.Warn("connection to MQTT broker lost",
		logger.String("broker", c.config.Broker),
		logger.Error(err))
}
