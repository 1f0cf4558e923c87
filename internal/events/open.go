package events

import (
	"fmt"

	"evrental-backend/internal/logger"
)

// Options selects and configures a broker adapter.
type Options struct {
	Driver       string
	KafkaBrokers []string
	KafkaTopic   string
	AMQPURL      string
	AMQPQueue    string
}

// Open returns the publisher for opts.Driver: "log" (or empty), "kafka" or "rabbitmq".
func Open(opts Options) (Publisher, error) {
	switch opts.Driver {
	case "", "log":
		logger.Info("Domain events are written to the log")
		return NewLogPublisher(), nil
	case "kafka":
		if len(opts.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("events: kafka driver needs at least one broker")
		}
		logger.Info("Publishing domain events to Kafka", "brokers", opts.KafkaBrokers, "topic", opts.KafkaTopic)
		return NewKafkaPublisher(opts.KafkaBrokers, opts.KafkaTopic), nil
	case "rabbitmq":
		logger.Info("Publishing domain events to RabbitMQ", "queue", opts.AMQPQueue)
		return NewRabbitMQPublisher(opts.AMQPURL, opts.AMQPQueue)
	default:
		return nil, fmt.Errorf("events: unknown driver %q", opts.Driver)
	}
}
