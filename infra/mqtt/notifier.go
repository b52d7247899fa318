package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/zen-garden/zenop/core/events"
	"github.com/zen-garden/zenop/infra/logger"
)

// ErrPublishTimeout is returned when the broker does not confirm a publish in time.
var ErrPublishTimeout = errors.New("timeout publishing status")

// StatusMessage is the payload published for each step transition.
type StatusMessage struct {
	RunID      string `json:"run_id"`
	Dataset    string `json:"dataset"`
	Step       string `json:"step"`
	Status     string `json:"status"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

// Notifier publishes pipeline step events to an MQTT broker.
type Notifier struct {
	cli     pahoClient
	prefix  string
	qos     byte
	retain  bool
	timeout time.Duration
	log     logger.Logger
}

// NewNotifier connects to the broker.
func NewNotifier(cfg Config, log logger.Logger) (*Notifier, error) {
	cfg.SetDefaults()
	if cfg.ClientID == "" {
		cfg.ClientID = "zenop-" + uuid.NewString()
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("status broker connection lost: %v", err)
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Broker, token.Error())
	}
	return &Notifier{
		cli:     c,
		prefix:  cfg.TopicPrefix,
		qos:     cfg.QoS,
		retain:  cfg.Retain,
		timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		log:     log,
	}, nil
}

// Topic returns the topic of a step event.
func (n *Notifier) Topic(ev events.StepEvent) string {
	return fmt.Sprintf("%s/%s/%s", n.prefix, ev.RunID, ev.Step)
}

// Publish sends one step event and waits for the broker confirmation.
func (n *Notifier) Publish(ev events.StepEvent) error {
	msg := StatusMessage{
		RunID:      ev.RunID,
		Dataset:    ev.Dataset,
		Step:       string(ev.Step),
		Status:     string(ev.Status),
		DurationMS: ev.Duration.Milliseconds(),
		Timestamp:  ev.Time.UnixMilli(),
	}
	if ev.Err != nil {
		msg.Error = ev.Err.Error()
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	token := n.cli.Publish(n.Topic(ev), n.qos, n.retain, payload)
	if !token.WaitTimeout(n.timeout) {
		return ErrPublishTimeout
	}
	return token.Error()
}

// Listen publishes every event received on ch until it is closed. The
// returned channel is closed once ch is drained.
func (n *Notifier) Listen(ch <-chan events.StepEvent) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range ch {
			if err := n.Publish(ev); err != nil {
				n.log.Warnf("publish status %s/%s: %v", ev.Step, ev.Status, err)
			}
		}
	}()
	return done
}

// Close disconnects from the broker.
func (n *Notifier) Close() {
	if n.cli.IsConnected() {
		n.cli.Disconnect(250)
	}
}
