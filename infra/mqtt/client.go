package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/studyplan/core/model"
	"github.com/kilianp07/studyplan/core/monitoring"
	coremqtt "github.com/kilianp07/studyplan/core/mqtt"
	"github.com/kilianp07/studyplan/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Enabled     bool            `json:"enabled"`
	Broker      string          `json:"broker"`
	ClientID    string          `json:"client_id"`
	Username    string          `json:"username"`
	Password    string          `json:"password"`
	TopicPrefix string          `json:"topic_prefix"`
	UseTLS      bool            `json:"use_tls"`
	ClientCert  string          `json:"client_cert"`
	ClientKey   string          `json:"client_key"`
	CABundle    string          `json:"ca_bundle"`
	AuthMethod  string          `json:"auth_method"`
	QoS         map[string]byte `json:"qos"`
	LWTTopic    string          `json:"lwt_topic"`
	LWTPayload  string          `json:"lwt_payload"`
	LWTQoS      byte            `json:"lwt_qos"`
	LWTRetain   bool            `json:"lwt_retain"`
	MaxRetries  int             `json:"max_retries"`
	BackoffMS   int             `json:"backoff_ms"`
	TLSConfig   *tls.Config     `json:"-"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.TopicPrefix == "" {
		c.TopicPrefix = "studyplan"
	}
	if c.ClientID == "" {
		c.ClientID = "studyplan"
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS == 0 {
		c.BackoffMS = 100
	}
}

// Validate checks mandatory fields when the client is enabled.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("mqtt: broker is required")
	}
	if c.MaxRetries < 0 || c.BackoffMS < 0 {
		return fmt.Errorf("mqtt: max_retries and backoff_ms must not be negative")
	}
	return nil
}

// SessionCompleter marks sessions done on behalf of broker commands.
type SessionCompleter interface {
	MarkSessionDone(ctx context.Context, id string) (model.StudySession, error)
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

// PahoClient implements coremqtt.Publisher using Eclipse Paho. When a
// SessionCompleter is set it also serves done commands.
type PahoClient struct {
	cli        pahoClient
	prefix     string
	qos        map[string]byte
	logger     logger.Logger
	monitor    monitoring.Monitor
	completer  SessionCompleter
	maxRetries int
	backoff    time.Duration
}

var _ coremqtt.Publisher = (*PahoClient)(nil)

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Option customises a PahoClient.
type Option func(*PahoClient)

// WithMonitor reports publish failures to m.
func WithMonitor(m monitoring.Monitor) Option { return func(p *PahoClient) { p.monitor = m } }

// WithSessionCompleter subscribes to done commands and forwards them to c.
func WithSessionCompleter(c SessionCompleter) Option { return func(p *PahoClient) { p.completer = c } }

// NewPahoClient connects to the MQTT broker.
func NewPahoClient(cfg Config, opts ...Option) (*PahoClient, error) {
	cfg.SetDefaults()
	clientOpts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_client")
	pc := &PahoClient{
		prefix:     strings.TrimSuffix(cfg.TopicPrefix, "/"),
		qos:        cfg.QoS,
		logger:     log,
		monitor:    monitoring.NopMonitor{},
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
	}
	for _, o := range opts {
		o(pc)
	}

	clientOpts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if pc.completer == nil {
			return
		}
		topic := pc.Topic(coremqtt.TopicCommandDone)
		if token := c.Subscribe(topic, pc.qosFor("command"), pc.onCommand); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	clientOpts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	clientOpts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	// OnConnect may deliver commands before Connect returns.
	pc.cli = newMQTTClient(clientOpts)
	if token := pc.cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return pc, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
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

// Topic joins the configured prefix and suffix.
func (p *PahoClient) Topic(suffix string) string {
	return p.prefix + "/" + suffix
}

func (p *PahoClient) qosFor(kind string) byte {
	if q, ok := p.qos[kind]; ok {
		return q
	}
	return 0
}

// Publish sends payload to topic, retrying with exponential backoff.
func (p *PahoClient) Publish(topic string, payload []byte) error {
	return p.publish(p.cli, topic, payload)
}

func (p *PahoClient) publish(cli pahoClient, topic string, payload []byte) error {
	if cli == nil {
		return coremqtt.ErrNotConnected
	}
	qos := p.qosFor("event")
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := cli.Publish(topic, qos, false, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Debugf("published %d bytes to %s", len(payload), topic)
			return nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	p.monitor.CaptureException(publishErr, map[string]string{"module": "mqtt", "topic": topic})
	return publishErr
}

// onCommand answers on the client that delivered the message.
func (p *PahoClient) onCommand(c paho.Client, msg paho.Message) {
	var cmd coremqtt.DoneCommand
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		p.logger.Errorf("failed to decode command: %v", err)
		return
	}
	ack := coremqtt.CommandAck{CommandID: cmd.CommandID, SessionID: cmd.SessionID, OK: true}
	if cmd.SessionID == "" {
		ack.OK, ack.Error = false, "session_id is required"
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_, err := p.completer.MarkSessionDone(ctx, cmd.SessionID)
		cancel()
		if err != nil {
			ack.OK, ack.Error = false, err.Error()
		}
	}
	p.logger.Infof("command %s for session %s handled (ok=%t)", cmd.CommandID, cmd.SessionID, ack.OK)
	payload, err := json.Marshal(ack)
	if err != nil {
		p.logger.Errorf("encode ack: %v", err)
		return
	}
	var cli pahoClient = p.cli
	if c != nil {
		cli = c
	}
	if err := p.publish(cli, p.Topic(coremqtt.TopicCommandAck), payload); err != nil {
		p.logger.Errorf("publish ack: %v", err)
	}
}

// Disconnect gracefully closes the MQTT connection.
func (p *PahoClient) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
