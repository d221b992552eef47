package telemetry

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/solarace/core/sim"
	"github.com/kilianp07/solarace/infra/logger"
)

const publishTimeout = 5 * time.Second

// Config defines the connection parameters for the Paho MQTT publisher.
type Config struct {
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	QoS      byte   `json:"qos"`
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// PahoPublisher implements Publisher over an Eclipse Paho connection.
type PahoPublisher struct {
	cli    pahoClient
	qos    byte
	logger logger.Logger
}

// NewPahoPublisher connects to the MQTT broker.
func NewPahoPublisher(cfg Config) (*PahoPublisher, error) {
	log := logger.New("telemetry")
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnect = func(paho.Client) {
		log.Infof("telemetry broker connected")
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("telemetry connection lost: %v", err)
	}

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect broker: %w", token.Error())
	}
	return &PahoPublisher{cli: c, qos: cfg.QoS, logger: log}, nil
}

// PublishDay sends the day summary on the per-run topic.
func (p *PahoPublisher) PublishDay(ev sim.DayCompleted) error {
	payload, err := json.Marshal(dayMessage(ev))
	if err != nil {
		return err
	}
	token := p.cli.Publish(DayTopic(ev.RunID), p.qos, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish day %d: timeout", ev.Day.DayIndex)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish day %d: %w", ev.Day.DayIndex, err)
	}
	return nil
}

// Close gracefully closes the broker connection.
func (p *PahoPublisher) Close() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
