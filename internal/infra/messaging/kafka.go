package messaging

import (
	"context"
	"strconv"
	"time"

	"bakery-flashsale/internal/pkg/config"
	"bakery-flashsale/internal/pkg/errs"
	"bakery-flashsale/internal/usecase/shared"

	"github.com/segmentio/kafka-go"
)

const (
	headerEventType = "event-type"
	headerOutboxID  = "outbox-id"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher sends outbox events to one topic keyed by reservation id,
// so every event of a hold lands on the same partition in order.
type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
	}
}

func NewKafkaPublisher(writer messageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, evt shared.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(evt.EventKey),
		Value: evt.Payload,
		Time:  evt.CreatedAt,
		Headers: []kafka.Header{
			{Key: headerEventType, Value: []byte(evt.Topic)},
			{Key: headerOutboxID, Value: []byte(strconv.FormatInt(evt.ID, 10))},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errs.Wrap(err, "failed to write reservation event to kafka")
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
