package notify

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/qchem/gausscat/internal/events"
	"github.com/qchem/gausscat/internal/logger"
)

// Publisher forwards change events to {prefix}/{entity}/{op}.
type Publisher struct {
	client  Client
	prefix  string
	timeout time.Duration
	log     logger.Logger
}

// NewPublisher creates an event consumer that publishes through client.
func NewPublisher(client Client, topicPrefix string, log logger.Logger) *Publisher {
	if log == nil {
		log = logger.NewDiscard()
	}
	prefix := strings.Trim(topicPrefix, "/")
	if prefix == "" {
		prefix = "gausscat"
	}
	return &Publisher{client: client, prefix: prefix, timeout: 10 * time.Second, log: log}
}

// Topic returns the topic an event is published to.
func (p *Publisher) Topic(ev events.ChangeEvent) string {
	return p.prefix + "/" + ev.Entity + "/" + string(ev.Op)
}

// Name implements events.Consumer.
func (p *Publisher) Name() string { return "mqtt" }

// ProcessEvent publishes the event as JSON. Failures are returned to the
// event bus, which logs and counts them.
func (p *Publisher) ProcessEvent(ev events.ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	topic := p.Topic(ev)
	if err := p.client.Publish(ctx, topic, payload); err != nil {
		return err
	}
	p.log.Debug("change event published", logger.String("topic", topic))
	return nil
}
