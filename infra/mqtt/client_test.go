package mqtt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// generateCert writes a self-signed certificate that doubles as its CA.
func generateCert(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("gen key: %v", err)
	}
	tmpl := x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "test"}, NotBefore: time.Now(), NotAfter: time.Now().Add(time.Hour)}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("create cert: %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	dir := t.TempDir()
	certFile = dir + "/cert.pem"
	keyFile = dir + "/key.pem"
	caFile = dir + "/ca.pem"
	for path, data := range map[string][]byte{certFile: certPEM, keyFile: keyPEM, caFile: certPEM} {
		if err := os.WriteFile(path, data, 0o600); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return
}

func useMock(t *testing.T, mc *mockClient) {
	t.Helper()
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() {
		newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) }
	})
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := cfg.LoadTLSConfig()
	if err != nil {
		t.Fatalf("load tls: %v", err)
	}
	if len(tlsCfg.Certificates) == 0 || tlsCfg.RootCAs == nil {
		t.Fatalf("tls config incomplete")
	}
	if _, err := (Config{UseTLS: true}).LoadTLSConfig(); err == nil {
		t.Fatalf("expected error without files")
	}
}

func TestNewClientOptionsAuth(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p"})
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	if opts.Username != "u" || opts.Password != "p" {
		t.Fatalf("auth not set")
	}
}

func TestConfigDefaultsAndValidate(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	if cfg.TopicPrefix != "wrsn" || cfg.ControlTopic() != "wrsn/control" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled config must validate: %v", err)
	}
	cfg.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected broker error")
	}
	cfg.Broker = "tcp://b:1883"
	cfg.TopicPrefix = "sim/#"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected wildcard error")
	}
}

func TestPublishUsesPrefixAndQoS(t *testing.T) {
	mc := &mockClient{}
	useMock(t, mc)
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", TopicPrefix: "lab", QoS: map[string]byte{"failure": 2, "control": 1}})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if len(mc.subscribed) != 1 || mc.subscribed[0].topic != "lab/control" || mc.subscribed[0].qos != 1 {
		t.Fatalf("control subscription wrong: %+v", mc.subscribed)
	}
	if err := cli.Publish("runs/r1/failure", "failure", []byte("{}")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(mc.published) != 1 || mc.published[0].topic != "lab/runs/r1/failure" || mc.published[0].qos != 2 {
		t.Fatalf("publish wrong: %+v", mc.published)
	}
}

func TestLWTConfigured(t *testing.T) {
	mc := &mockClient{}
	useMock(t, mc)
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", LWTTopic: "lwt", LWTPayload: "bye", LWTQoS: 1})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if !mc.opts.WillEnabled || mc.opts.WillTopic != "lwt" || string(mc.opts.WillPayload) != "bye" {
		t.Fatalf("will options incorrect")
	}
	cli.Disconnect()
	if len(mc.published) != 0 {
		t.Fatalf("unexpected publish on disconnect")
	}
}

func TestRetryLogic(t *testing.T) {
	mc := &mockClient{publishErrs: []error{fmt.Errorf("net fail"), nil}}
	useMock(t, mc)
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if err := cli.Publish("runs/r/dispatch", "dispatch", nil); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(mc.published) != 2 {
		t.Fatalf("expected retries, got %d publishes", len(mc.published))
	}
}

func TestRetryGivesUp(t *testing.T) {
	mc := &mockClient{publishErrs: []error{fmt.Errorf("a"), fmt.Errorf("b")}}
	useMock(t, mc)
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if err := cli.Publish("runs/r/dispatch", "dispatch", nil); err == nil {
		t.Fatalf("expected error after retries")
	}
}

func TestControlStop(t *testing.T) {
	mc := &mockClient{}
	useMock(t, mc)
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883"})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	var got []string
	cli.OnStop(func(id string) { got = append(got, id) })
	cli.onControl(nil, mockMessage{[]byte(`{"command":"stop","run_id":"r1"}`)})
	cli.onControl(nil, mockMessage{[]byte(`{"command":"pause"}`)})
	cli.onControl(nil, mockMessage{[]byte(`not json`)})
	if len(got) != 1 || got[0] != "r1" {
		t.Fatalf("unexpected stop calls: %v", got)
	}
}

// mockClient implements pahoClient for tests
type mockClient struct {
	opts       *paho.ClientOptions
	subscribed []struct {
		topic string
		qos   byte
	}
	published []struct {
		topic string
		qos   byte
	}
	publishErrs []error
}

func (m *mockClient) IsConnected() bool { return true }
func (m *mockClient) Connect() paho.Token {
	if m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(m)
	}
	return &dummyToken{}
}
func (m *mockClient) Disconnect(uint) {}
func (m *mockClient) Publish(topic string, qos byte, _ bool, _ interface{}) paho.Token {
	m.published = append(m.published, struct {
		topic string
		qos   byte
	}{topic, qos})
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &dummyToken{err: err}
	}
	return &dummyToken{}
}
func (m *mockClient) Subscribe(topic string, qos byte, _ paho.MessageHandler) paho.Token {
	m.subscribed = append(m.subscribed, struct {
		topic string
		qos   byte
	}{topic, qos})
	return &dummyToken{}
}
func (m *mockClient) SubscribeMultiple(map[string]byte, paho.MessageHandler) paho.Token {
	return &dummyToken{}
}
func (m *mockClient) Unsubscribe(...string) paho.Token        { return &dummyToken{} }
func (m *mockClient) AddRoute(string, paho.MessageHandler)    {}
func (m *mockClient) OptionsReader() paho.ClientOptionsReader { return paho.ClientOptionsReader{} }
func (m *mockClient) IsConnectionOpen() bool                  { return true }

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }

type mockMessage struct{ p []byte }

func (m mockMessage) Duplicate() bool   { return false }
func (m mockMessage) Qos() byte         { return 0 }
func (m mockMessage) Retained() bool    { return false }
func (m mockMessage) Topic() string     { return "" }
func (m mockMessage) MessageID() uint16 { return 0 }
func (m mockMessage) Payload() []byte   { return m.p }
func (m mockMessage) Ack()              {}
