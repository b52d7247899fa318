package mqtt

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zen-garden/zenop/core/events"
	"github.com/zen-garden/zenop/infra/logger"
)

type published struct {
	topic   string
	qos     byte
	retain  bool
	payload []byte
}

type mockClient struct {
	mu           sync.Mutex
	msgs         []published
	connectErr   error
	publishErr   error
	disconnected bool
}

func (m *mockClient) IsConnected() bool { return true }
func (m *mockClient) Connect() paho.Token {
	return &dummyToken{err: m.connectErr}
}
func (m *mockClient) Disconnect(uint) {
	m.mu.Lock()
	m.disconnected = true
	m.mu.Unlock()
}
func (m *mockClient) Publish(topic string, qos byte, retain bool, payload interface{}) paho.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, published{topic: topic, qos: qos, retain: retain, payload: payload.([]byte)})
	return &dummyToken{err: m.publishErr}
}

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }

func withMockClient(t *testing.T, m *mockClient) {
	t.Helper()
	prev := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return m }
	t.Cleanup(func() { newMQTTClient = prev })
}

func TestNotifierPublish(t *testing.T) {
	m := &mockClient{}
	withMockClient(t, m)
	n, err := NewNotifier(Config{Enabled: true, Broker: "tcp://localhost:1883", QoS: 1, Retain: true}, logger.NopLogger{})
	require.NoError(t, err)

	ts := time.Unix(1700000000, 0)
	ev := events.StepEvent{
		RunID: "run-1", Dataset: "d", Step: events.StepBaseRun, Status: events.StatusFailed,
		Duration: 1500 * time.Millisecond, Err: errors.New("exit 1"), Time: ts,
	}
	require.NoError(t, n.Publish(ev))
	require.Len(t, m.msgs, 1)
	assert.Equal(t, "zenop/runs/run-1/base_run", m.msgs[0].topic)
	assert.Equal(t, byte(1), m.msgs[0].qos)
	assert.True(t, m.msgs[0].retain)

	var msg StatusMessage
	require.NoError(t, json.Unmarshal(m.msgs[0].payload, &msg))
	assert.Equal(t, StatusMessage{
		RunID: "run-1", Dataset: "d", Step: "base_run", Status: "failed",
		DurationMS: 1500, Error: "exit 1", Timestamp: ts.UnixMilli(),
	}, msg)

	n.Close()
	assert.True(t, m.disconnected)
}

func TestNotifierListen(t *testing.T) {
	m := &mockClient{publishErr: errors.New("broker down")}
	withMockClient(t, m)
	n, err := NewNotifier(Config{Enabled: true, Broker: "tcp://b:1883", TopicPrefix: "cluster/zen"}, nil)
	require.NoError(t, err)

	ch := make(chan events.StepEvent, 2)
	ch <- events.StepEvent{RunID: "r", Step: events.StepDuplicate, Status: events.StatusStarted}
	ch <- events.StepEvent{RunID: "r", Step: events.StepDuplicate, Status: events.StatusSucceeded}
	close(ch)
	<-n.Listen(ch)

	m.mu.Lock()
	defer m.mu.Unlock()
	require.Len(t, m.msgs, 2)
	assert.Equal(t, "cluster/zen/r/duplicate", m.msgs[1].topic)
}

func TestNotifierConnectError(t *testing.T) {
	withMockClient(t, &mockClient{connectErr: errors.New("refused")})
	_, err := NewNotifier(Config{Enabled: true, Broker: "tcp://b:1883"}, nil)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{}.Validate())
	assert.Error(t, Config{Enabled: true}.Validate())
	assert.Error(t, Config{Enabled: true, Broker: "tcp://b", QoS: 3}.Validate())
	assert.Error(t, Config{Enabled: true, Broker: "tcp://b", TopicPrefix: "a/#"}.Validate())
	assert.NoError(t, Config{Enabled: true, Broker: "tcp://b"}.Validate())
}

func TestLoadTLSConfigRequiresFiles(t *testing.T) {
	_, err := Config{UseTLS: true}.LoadTLSConfig()
	assert.Error(t, err)
	_, err = NewClientOptions(Config{Broker: "ssl://b:8883", UseTLS: true})
	assert.Error(t, err)
}
