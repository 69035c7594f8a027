package smarthome

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"mira/internal/logging"
)

// Publisher sends a payload to a topic. Satisfied by the MQTT client below
// and by fakes in tests.
type Publisher interface {
	Publish(topic, payload string) error
}

// BrokerConfig holds the MQTT connection settings.
type BrokerConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
}

const brokerTimeout = 5 * time.Second

// MQTTPublisher is a Publisher backed by a live broker connection with
// automatic reconnect.
type MQTTPublisher struct {
	client mqtt.Client
	logger logging.Logger
}

func NewMQTTPublisher(cfg BrokerConfig, logger logging.Logger) (*MQTTPublisher, error) {
	logger = logging.OrNop(logger)
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(brokerTimeout)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username).SetPassword(cfg.Password)
	}
	opts.SetOnConnectHandler(func(mqtt.Client) {
		logger.Info("mqtt connected to %s", cfg.Broker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost: %v", err)
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(brokerTimeout) {
		return nil, fmt.Errorf("connect mqtt broker %s: timeout", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect mqtt broker %s: %w", cfg.Broker, err)
	}
	return &MQTTPublisher{client: client, logger: logger}, nil
}

func (p *MQTTPublisher) Publish(topic, payload string) error {
	token := p.client.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(brokerTimeout) {
		return fmt.Errorf("publish %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
