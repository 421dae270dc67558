package ecolor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// State is where a Session is in its connection lifecycle
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Subscribing
	Subscribed
	Terminated
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Subscribing:
		return "subscribing"
	case Subscribed:
		return "subscribed"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// EventHandler receives decoded device state changes, in arrival order
type EventHandler interface {
	HandleEvent(Event)
}

// EventHandlerFunc adapts a plain function to EventHandler
type EventHandlerFunc func(Event)

// HandleEvent calls f(e)
func (f EventHandlerFunc) HandleEvent(e Event) {
	f(e)
}

// SessionConfig holds the per-device session parameters; certificates are in their single-line config form
type SessionConfig struct {
	Identity   Identity
	BrokerURL  string
	ClientID   string // generated when empty
	CA         string
	ClientCert string
	ClientKey  string
}

type sessionEventKind int

const (
	evConnected sessionEventKind = iota
	evConnectError
	evConnectionLost
	evMessage
)

type sessionEvent struct {
	kind    sessionEventKind
	err     error
	payload []byte
}

// the transport's callbacks go through this; its buffer only absorbs bursts
const sessionQueueLen = 16

// Session is the broker connection for a single device.
// Transport callbacks are serialised through one queue, processed by one goroutine.
type Session struct {
	id        Identity
	transport Transport
	handler   EventHandler
	log       *logrus.Entry

	mu      sync.Mutex
	state   State
	started bool
	lastErr error

	queue     chan sessionEvent
	done      chan struct{}
	closeOnce sync.Once
}

// NewSession formats the TLS material and builds the transport; nothing is connected yet.
// A nil dial uses NewMQTTTransport.
func NewSession(cfg SessionConfig, dial Dialer, handler EventHandler) (*Session, error) {
	ca, err := FormatCert(cfg.CA)
	if err != nil {
		return nil, fmt.Errorf("ca: %w", err)
	}
	cert, err := FormatCert(cfg.ClientCert)
	if err != nil {
		return nil, fmt.Errorf("client certificate: %w", err)
	}
	key, err := FormatCert(cfg.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("client key: %w", err)
	}

	if dial == nil {
		dial = NewMQTTTransport
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "ecolor-" + uuid.NewString()
	}

	s := &Session{
		id:      cfg.Identity,
		handler: handler,
		log: logrus.WithFields(logrus.Fields{
			"sku":  cfg.Identity.SKU,
			"guid": cfg.Identity.GUID,
		}),
		queue: make(chan sessionEvent, sessionQueueLen),
		done:  make(chan struct{}),
	}

	t, err := dial(TransportConfig{
		BrokerURL:   cfg.BrokerURL,
		ClientID:    cfg.ClientID,
		Credentials: Credentials{CA: ca, Cert: cert, Key: key},
	}, TransportHandlers{
		OnConnect:        func() { s.enqueue(sessionEvent{kind: evConnected}) },
		OnConnectError:   func(err error) { s.enqueue(sessionEvent{kind: evConnectError, err: err}) },
		OnConnectionLost: func(err error) { s.enqueue(sessionEvent{kind: evConnectionLost, err: err}) },
	})
	if err != nil {
		if !errors.Is(err, ErrConnect) {
			err = fmt.Errorf("%w: %s", ErrConnect, err.Error())
		}
		return nil, err
	}
	s.transport = t
	return s, nil
}

// Identity returns the device this session serves
func (s *Session) Identity() Identity {
	return s.id
}

// State reports the current lifecycle state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the most recent failure seen by the session, nil if none
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Connect starts the connection and returns without waiting for it
func (s *Session) Connect() error {
	s.mu.Lock()
	if s.state == Terminated {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.state = Connecting
	s.mu.Unlock()

	s.log.Debug("connecting")
	go s.run()
	s.transport.Connect()
	return nil
}

// Publish sends a command to the device; it does not wait for the broker
func (s *Session) Publish(c Command) error {
	switch s.State() {
	case Terminated:
		return ErrClosed
	case Subscribed:
	default:
		return ErrNotConnected
	}
	return s.publish(c)
}

func (s *Session) publish(c Command) error {
	payload, err := Encode(c)
	if err != nil {
		return err
	}
	s.log.WithField("frame", c.String()).Debug("publish")
	return s.transport.Publish(s.id.OutboundTopic(), payload)
}

// Close tears the session down; it is safe to call in any state, any number of times
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		started := s.started
		s.state = Terminated
		s.mu.Unlock()

		close(s.done)
		if started {
			s.log.Debug("closing mqtt connection")
			s.transport.Close()
		}
	})
}

func (s *Session) enqueue(ev sessionEvent) {
	select {
	case s.queue <- ev:
	case <-s.done:
	}
}

func (s *Session) run() {
	for {
		select {
		case <-s.done:
			return
		case ev := <-s.queue:
			if s.State() == Terminated {
				return
			}
			s.process(ev)
		}
	}
}

func (s *Session) process(ev sessionEvent) {
	switch ev.kind {
	case evConnected:
		s.setState(Connected)
		s.log.Info("connected")
		s.subscribe()
	case evConnectError:
		err := fmt.Errorf("%w: %s", ErrConnect, ev.err.Error())
		s.fail(Disconnected, err)
		s.log.WithError(ev.err).Error("unable to connect")
	case evConnectionLost:
		s.setState(Disconnected)
		s.log.WithError(ev.err).Warn("connection lost")
	case evMessage:
		s.handleMessage(ev.payload)
	}
}

func (s *Session) subscribe() {
	s.setState(Subscribing)
	topic := s.id.InboundTopic()
	err := s.transport.Subscribe(topic, func(payload []byte) {
		s.enqueue(sessionEvent{kind: evMessage, payload: payload})
	})
	if err != nil {
		s.record(fmt.Errorf("%w: %s", ErrSubscribe, err.Error()))
		s.log.WithError(err).WithField("topic", topic).Error("could not subscribe to topic")
		s.Close()
		return
	}
	s.setState(Subscribed)
	s.log.WithField("topic", topic).Debug("subscribed")

	// resync after every (re)connect
	for _, c := range []Command{OnStatus, GetBrightness} {
		if err := s.publish(c); err != nil {
			s.log.WithError(err).Warn("status query failed")
		}
	}
}

func (s *Session) handleMessage(payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithField("panic", r).Error("event handler panic recovered")
		}
	}()

	ev, err := Decode(payload)
	if err != nil {
		s.record(err)
		if errors.Is(err, ErrUnrecognized) {
			s.log.WithError(err).Debug("ignoring message")
		} else {
			s.log.WithError(err).WithField("payload", string(payload)).Warn("dropping message")
		}
		return
	}
	s.log.WithFields(logrus.Fields{"kind": ev.Kind, "on": ev.On, "brightness": ev.Brightness}).Debug("state update")
	if s.handler != nil {
		s.handler.HandleEvent(ev)
	}
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	if s.state != Terminated {
		s.state = st
	}
	s.mu.Unlock()
}

func (s *Session) record(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

func (s *Session) fail(st State, err error) {
	s.mu.Lock()
	s.lastErr = err
	if s.state != Terminated {
		s.state = st
	}
	s.mu.Unlock()
}
