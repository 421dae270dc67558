package ecolor

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

const (
	brokerPort        = "8883"
	connectTimeout    = 10 * time.Second
	subscribeTimeout  = 10 * time.Second
	keepAlive         = 60 * time.Second
	disconnectQuiesce = 250 // milliseconds
)

// Credentials are the PEM blocks for mutual TLS, already formatted
type Credentials struct {
	CA   string
	Cert string
	Key  string
}

// TransportConfig is everything needed to build one device connection
type TransportConfig struct {
	BrokerURL   string
	ClientID    string
	Credentials Credentials
}

// TransportHandlers are invoked by the transport from its own goroutines
type TransportHandlers struct {
	OnConnect        func()
	OnConnectError   func(error)
	OnConnectionLost func(error)
}

// Transport is the pub/sub connection a Session drives
type Transport interface {
	// Connect starts connecting and returns immediately; the outcome arrives via TransportHandlers
	Connect()
	Subscribe(topic string, fn func(payload []byte)) error
	// Publish does not wait for the broker
	Publish(topic string, payload []byte) error
	Close()
}

// Dialer builds a Transport without connecting it
type Dialer func(TransportConfig, TransportHandlers) (Transport, error)

type mqttTransport struct {
	client mqtt.Client
	h      TransportHandlers
	log    *logrus.Entry
}

// NewMQTTTransport is the Dialer for the vendor broker
func NewMQTTTransport(cfg TransportConfig, h TransportHandlers) (Transport, error) {
	tlsConfig, err := buildTLSConfig(cfg.Credentials)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConnect, err.Error())
	}
	broker, err := brokerAddress(cfg.BrokerURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConnect, err.Error())
	}

	t := &mqttTransport{
		h:   h,
		log: logrus.WithFields(logrus.Fields{"broker": broker, "client": cfg.ClientID}),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetTLSConfig(tlsConfig)
	opts.SetCleanSession(true)
	opts.SetOrderMatters(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetKeepAlive(keepAlive)
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		if t.h.OnConnect != nil {
			t.h.OnConnect()
		}
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		if t.h.OnConnectionLost != nil {
			t.h.OnConnectionLost(err)
		}
	})

	t.client = mqtt.NewClient(opts)
	return t, nil
}

func (t *mqttTransport) Connect() {
	token := t.client.Connect()
	go func() {
		token.Wait()
		if err := token.Error(); err != nil && t.h.OnConnectError != nil {
			t.h.OnConnectError(err)
		}
	}()
}

func (t *mqttTransport) Subscribe(topic string, fn func([]byte)) error {
	token := t.client.Subscribe(topic, 0, func(_ mqtt.Client, m mqtt.Message) {
		fn(m.Payload())
	})
	if !token.WaitTimeout(subscribeTimeout) {
		return fmt.Errorf("timeout after %v", subscribeTimeout)
	}
	return token.Error()
}

func (t *mqttTransport) Publish(topic string, payload []byte) error {
	token := t.client.Publish(topic, 0, false, payload)
	go func() {
		if token.Wait() && token.Error() != nil {
			t.log.WithError(token.Error()).WithField("topic", topic).Warn("publish failed")
		}
	}()
	return nil
}

func (t *mqttTransport) Close() {
	t.client.Disconnect(disconnectQuiesce)
}

func buildTLSConfig(c Credentials) (*tls.Config, error) {
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM([]byte(c.CA)) {
		return nil, fmt.Errorf("no usable CA certificate")
	}
	cert, err := tls.X509KeyPair([]byte(c.Cert), []byte(c.Key))
	if err != nil {
		return nil, fmt.Errorf("client certificate: %w", err)
	}
	return &tls.Config{
		RootCAs:      pool,
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

// brokerAddress forces TLS on port 8883 whatever the configured URL says
func brokerAddress(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("broker URL is empty")
	}
	if !strings.Contains(raw, "://") {
		raw = "mqtts://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("broker URL %q has no host", raw)
	}
	return "ssl://" + net.JoinHostPort(u.Hostname(), brokerPort), nil
}
