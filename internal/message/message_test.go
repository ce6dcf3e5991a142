package message

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/yanizio/agenda/internal/model"
)

type fakeToken struct {
	done chan struct{}
	err  error
}

func doneToken(err error) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool                     { <-t.done; return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type fakeClient struct {
	sent []published
	tok  mqtt.Token
}

func (c *fakeClient) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	c.sent = append(c.sent, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return c.tok
}

func TestMQTTPublish(t *testing.T) {
	fc := &fakeClient{tok: doneToken(nil)}
	m := NewMQTT(fc, "ute")
	at := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	err := m.Publish(context.Background(), Change{Kind: model.KindEvent, Op: OpUpdated, ID: "e-1", At: at})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(fc.sent) != 1 {
		t.Fatalf("want 1 message, got %d", len(fc.sent))
	}
	msg := fc.sent[0]
	if msg.topic != "ute/events/updated" || msg.qos != 1 {
		t.Fatalf("unexpected topic/qos: %s %d", msg.topic, msg.qos)
	}
	var got Change
	if err := json.Unmarshal(msg.payload, &got); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if got.ID != "e-1" || got.Kind != model.KindEvent || !got.At.Equal(at) {
		t.Fatalf("payload mismatch: %+v", got)
	}
}

func TestMQTTPublishBrokerError(t *testing.T) {
	boom := errors.New("not connected")
	m := NewMQTT(&fakeClient{tok: doneToken(boom)}, "")
	if err := m.Publish(context.Background(), Change{Kind: model.KindContact, Op: OpCreated}); !errors.Is(err, boom) {
		t.Fatalf("want broker error, got %v", err)
	}
}

func TestMQTTPublishHonoursContext(t *testing.T) {
	m := NewMQTT(&fakeClient{tok: &fakeToken{done: make(chan struct{})}}, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Publish(ctx, Change{Kind: model.KindLocation, Op: OpDeleted}); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

type failing struct{}

func (failing) Publish(context.Context, Change) error { return errors.New("down") }

func TestNotifySwallowsErrors(t *testing.T) {
	// Must not panic or propagate.
	Notify(context.Background(), failing{}, Change{Kind: model.KindEvent, Op: OpCreated})
	Notify(context.Background(), nil, Change{})
	Notify(context.Background(), Nop{}, Change{})
}
