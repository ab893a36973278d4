package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/wrsn/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Enabled  bool   `json:"enabled"`
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	// TopicPrefix roots every topic the simulator publishes or listens on.
	TopicPrefix string          `json:"topic_prefix"`
	UseTLS      bool            `json:"use_tls"`
	ClientCert  string          `json:"client_cert"`
	ClientKey   string          `json:"client_key"`
	CABundle    string          `json:"ca_bundle"`
	QoS         map[string]byte `json:"qos"`
	LWTTopic    string          `json:"lwt_topic"`
	LWTPayload  string          `json:"lwt_payload"`
	LWTQoS      byte            `json:"lwt_qos"`
	LWTRetain   bool            `json:"lwt_retain"`
	MaxRetries  int             `json:"max_retries"`
	BackoffMS   int             `json:"backoff_ms"`
	TLSConfig   *tls.Config     `json:"-"`
}

// SetDefaults fills the optional fields.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "wrsn-sim"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "wrsn"
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS == 0 {
		c.BackoffMS = 100
	}
}

// Validate checks the fields needed when publishing is enabled.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("mqtt broker is required")
	}
	if strings.ContainsAny(c.TopicPrefix, "#+") {
		return fmt.Errorf("mqtt topic_prefix must not contain wildcards")
	}
	return nil
}

// ControlTopic is where stop commands for running simulations arrive.
func (c Config) ControlTopic() string { return c.TopicPrefix + "/control" }

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

// PahoClient publishes simulation events and listens for control commands.
type PahoClient struct {
	cli    pahoClient
	prefix string
	qos    map[string]byte
	logger logger.Logger

	mu     sync.Mutex
	onStop []func(runID string)

	maxRetries int
	backoff    time.Duration
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPahoClient connects to the broker and subscribes to the control topic.
func NewPahoClient(cfg Config) (*PahoClient, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_client")
	pc := &PahoClient{
		prefix:     cfg.TopicPrefix,
		qos:        cfg.QoS,
		logger:     log,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
	}
	control := cfg.ControlTopic()
	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if token := c.Subscribe(control, pc.qosFor("control"), pc.onControl); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	pc.cli = c
	return pc, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

func (p *PahoClient) qosFor(kind string) byte {
	if q, ok := p.qos[kind]; ok {
		return q
	}
	return 0
}

// OnStop registers fn to be called with the run id of every stop command.
// An empty run id addresses every run.
func (p *PahoClient) OnStop(fn func(runID string)) {
	p.mu.Lock()
	p.onStop = append(p.onStop, fn)
	p.mu.Unlock()
}

func (p *PahoClient) onControl(_ paho.Client, msg paho.Message) {
	var m struct {
		Command string `json:"command"`
		RunID   string `json:"run_id"`
	}
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		p.logger.Errorf("failed to decode control message: %v", err)
		return
	}
	if m.Command != "stop" {
		p.logger.Warnf("ignoring control command %q", m.Command)
		return
	}
	p.mu.Lock()
	handlers := append([]func(string){}, p.onStop...)
	p.mu.Unlock()
	p.logger.Infof("stop requested for run %q", m.RunID)
	for _, fn := range handlers {
		fn(m.RunID)
	}
}

// Publish sends payload to prefix/topic, retrying with exponential backoff.
// kind selects the QoS from the configuration.
func (p *PahoClient) Publish(topic, kind string, payload []byte) error {
	full := p.prefix + "/" + topic
	qos := p.qosFor(kind)
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(full, qos, false, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Debugf("published %s", full)
			return nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	return publishErr
}

// Disconnect gracefully closes the MQTT connection.
func (p *PahoClient) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
