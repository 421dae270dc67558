package ecolor

import (
	"strings"
	"sync"
	"testing"
	"time"
)

type published struct {
	topic   string
	payload string
}

// mockTransport records what a Session does and lets tests drive its callbacks
type mockTransport struct {
	mu           sync.Mutex
	cfg          TransportConfig
	h            TransportHandlers
	dials        int
	connects     int
	closes       int
	subscribed   []string
	subscribeErr error
	onMessage    func([]byte)
	autoConnect  bool

	pub chan published
}

func newMockTransport() *mockTransport {
	return &mockTransport{autoConnect: true, pub: make(chan published, 32)}
}

func (m *mockTransport) dial(cfg TransportConfig, h TransportHandlers) (Transport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dials++
	m.cfg = cfg
	m.h = h
	return m, nil
}

func (m *mockTransport) Connect() {
	m.mu.Lock()
	m.connects++
	auto := m.autoConnect
	m.mu.Unlock()
	if auto {
		m.handlers().OnConnect()
	}
}

func (m *mockTransport) Subscribe(topic string, fn func([]byte)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subscribeErr != nil {
		return m.subscribeErr
	}
	m.subscribed = append(m.subscribed, topic)
	m.onMessage = fn
	return nil
}

func (m *mockTransport) Publish(topic string, payload []byte) error {
	m.pub <- published{topic: topic, payload: string(payload)}
	return nil
}

func (m *mockTransport) Close() {
	m.mu.Lock()
	m.closes++
	m.mu.Unlock()
}

func (m *mockTransport) handlers() TransportHandlers {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.h
}

func (m *mockTransport) closeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

func (m *mockTransport) deliver(t *testing.T, payload string) {
	t.Helper()
	m.mu.Lock()
	fn := m.onMessage
	m.mu.Unlock()
	if fn == nil {
		t.Fatal("deliver before subscribe")
	}
	fn([]byte(payload))
}

func (m *mockTransport) nextPublish(t *testing.T) published {
	t.Helper()
	select {
	case p := <-m.pub:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for publish")
	}
	return published{}
}

func (m *mockTransport) expectNoPublish(t *testing.T) {
	t.Helper()
	select {
	case p := <-m.pub:
		t.Fatalf("unexpected publish: %+v", p)
	case <-time.After(50 * time.Millisecond):
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// flat renders a fake PEM block in its single-line config form
func flat(label string, body ...string) string {
	return "-----BEGIN " + label + "----- " + strings.Join(body, " ") + " -----END " + label + "-----"
}

func testSessionConfig() SessionConfig {
	return SessionConfig{
		Identity:   NewIdentity("H6008", "test@example.com", "g1"),
		BrokerURL:  "mqtts://broker.example.com",
		ClientID:   "test-client",
		CA:         flat("CERTIFICATE", "QUJD", "REVG"),
		ClientCert: flat("CERTIFICATE", "R0hJ"),
		ClientKey:  flat("RSA PRIVATE KEY", "SktM"),
	}
}
