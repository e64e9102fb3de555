package mq

import (
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "portal.events"

	heartbeat = 10 * time.Second
	locale    = "en_US"
)

// connectionConfig names the connection so the broker UI shows which portal
// process (publisher or worker queue) holds it.
func connectionConfig(name string) amqp091.Config {
	props := amqp091.NewConnectionProperties()
	props.SetClientConnectionName(name)
	return amqp091.Config{
		Heartbeat:  heartbeat,
		Locale:     locale,
		Properties: props,
	}
}

// NewConnection dials RabbitMQ as name.
func NewConnection(url, name string) (*amqp091.Connection, error) {
	conn, err := amqp091.DialConfig(url, connectionConfig(name))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ as %s: %w", name, err)
	}
	return conn, nil
}

// DeclareExchange declares the durable topic exchange all portal events go to.
func DeclareExchange(ch *amqp091.Channel) error {
	return ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil)
}
