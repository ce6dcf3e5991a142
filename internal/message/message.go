// internal/message/message.go
//
// Change notifications.
//
// Context
//   After a successful create, update, or delete the mutation coordinator
//   announces the change so other open dashboards can refresh.  Delivery is
//   best effort: a failed publish is logged and counted but never turns a
//   committed write into an error.
//
//   Two publishers ship with the package:
//     - Nop   – default when no broker is configured.
//     - MQTT  – JSON payload on `<prefix>/<kind>/<op>` at QoS 1.
//
// Style
//   Two-space sentence spacing, Oxford comma, concise inline notes.
//
//------------------------------------------------------------------------------

package message

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/yanizio/agenda/internal/metrics"
	"github.com/yanizio/agenda/internal/model"
)

// Op names the mutation being announced.
type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
)

// Change is the notification payload.
type Change struct {
	Kind model.Kind `json:"kind"`
	Op   Op         `json:"op"`
	ID   string     `json:"id"`
	At   time.Time  `json:"at"`
}

// Publisher announces committed changes.
type Publisher interface {
	Publish(ctx context.Context, c Change) error
}

// Nop discards every change.
type Nop struct{}

func (Nop) Publish(context.Context, Change) error { return nil }

// Notify publishes c and logs a failure.  It never returns an error so
// callers can fire it after a write without branching.
func Notify(ctx context.Context, p Publisher, c Change) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, c); err != nil {
		metrics.NotificationsTotal.WithLabelValues("error").Inc()
		zap.L().Warn("change notification failed",
			zap.String("kind", string(c.Kind)), zap.String("op", string(c.Op)),
			zap.String("id", c.ID), zap.Error(err))
		return
	}
	metrics.NotificationsTotal.WithLabelValues(metrics.OK).Inc()
}

/*──────────────────────────── MQTT ────────────────────────────────────────*/

// tokenPublisher is the part of mqtt.Client MQTT uses.
type tokenPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTT publishes changes to a broker.
type MQTT struct {
	client tokenPublisher
	prefix string
	close  func()
}

// MQTTOptions configures DialMQTT.
type MQTTOptions struct {
	Broker   string
	ClientID string
	Prefix   string
	Username string
	Password string
	Timeout  time.Duration
}

// DialMQTT connects to the broker and returns a publisher that owns the
// connection.
func DialMQTT(o MQTTOptions) (*MQTT, error) {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	opts := mqtt.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(o.Timeout).
		SetOrderMatters(false)
	if o.Username != "" {
		opts = opts.SetUsername(o.Username).SetPassword(o.Password)
	}

	client := mqtt.NewClient(opts)
	tok := client.Connect()
	if !tok.WaitTimeout(o.Timeout) {
		return nil, fmt.Errorf("mqtt connect %s: timed out after %s", o.Broker, o.Timeout)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", o.Broker, err)
	}
	zap.L().Info("mqtt connected", zap.String("broker", o.Broker), zap.String("client_id", o.ClientID))

	m := NewMQTT(client, o.Prefix)
	m.close = func() { client.Disconnect(250) }
	return m, nil
}

// NewMQTT wraps an already connected client.  The caller keeps ownership.
func NewMQTT(client tokenPublisher, prefix string) *MQTT {
	if prefix == "" {
		prefix = "agenda"
	}
	return &MQTT{client: client, prefix: prefix}
}

// Topic returns the topic c is published on.
func (m *MQTT) Topic(c Change) string {
	return fmt.Sprintf("%s/%s/%s", m.prefix, c.Kind, c.Op)
}

// Publish sends c at QoS 1 and waits for the broker or ctx.
func (m *MQTT) Publish(ctx context.Context, c Change) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode change: %w", err)
	}
	tok := m.client.Publish(m.Topic(c), 1, false, payload)
	select {
	case <-tok.Done():
		return tok.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close disconnects a client opened by DialMQTT.
func (m *MQTT) Close() {
	if m.close != nil {
		m.close()
	}
}
