package events

import (
	"context"
	"encoding/json"
	"strconv"

	"evrental-backend/internal/logger"

	"github.com/segmentio/kafka-go"
)

// Writer is the subset of kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

func NewKafkaPublisherWithWriter(w Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

// Publish keys messages by rental id so one rental's events stay ordered.
func (p *KafkaPublisher) Publish(ctx context.Context, evt Event) error {
	logger.ExternalServiceCall("kafka", "Publish", "type", evt.Type, "rentalID", evt.RentalID)

	b, err := json.Marshal(evt)
	if err != nil {
		logger.ExternalServiceResult("kafka", "Publish", err)
		return err
	}
	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(evt.RentalID, 10)),
		Value: b,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(evt.Type)},
		},
	}
	err = p.writer.WriteMessages(ctx, msg)
	logger.ExternalServiceResult("kafka", "Publish", err, "type", evt.Type)
	return err
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
