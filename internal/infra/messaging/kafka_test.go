//go:build unit

package messaging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"bakery-flashsale/internal/pkg/config"
	"bakery-flashsale/internal/usecase/shared"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func sampleEvent() shared.OutboxEvent {
	return shared.OutboxEvent{
		ID:        42,
		Topic:     "reservation.created",
		EventKey:  "3f0c9a30-6f1e-4a53-9a3b-0d8a0f1c7e11",
		Payload:   []byte(`{"type":"reservation.created"}`),
		CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	t.Run("予約IDをキーにしてイベント種別をヘッダーに載せる", func(t *testing.T) {
		w := &fakeWriter{}
		p := NewKafkaPublisher(w)

		require.NoError(t, p.Publish(context.Background(), sampleEvent()))
		require.Len(t, w.msgs, 1)

		msg := w.msgs[0]
		assert.Equal(t, "3f0c9a30-6f1e-4a53-9a3b-0d8a0f1c7e11", string(msg.Key))
		assert.JSONEq(t, `{"type":"reservation.created"}`, string(msg.Value))
		assert.Equal(t, []kafka.Header{
			{Key: headerEventType, Value: []byte("reservation.created")},
			{Key: headerOutboxID, Value: []byte("42")},
		}, msg.Headers)
	})

	t.Run("書き込み失敗はエラーで返す", func(t *testing.T) {
		w := &fakeWriter{err: errors.New("broker unavailable")}
		p := NewKafkaPublisher(w)

		err := p.Publish(context.Background(), sampleEvent())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broker unavailable")
	})

	t.Run("Closeはwriterを閉じる", func(t *testing.T) {
		w := &fakeWriter{}
		require.NoError(t, NewKafkaPublisher(w).Close())
		assert.True(t, w.closed)
	})
}

func TestNewKafkaWriter(t *testing.T) {
	w := NewKafkaWriter(config.KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "flashsale.reservations"})
	assert.Equal(t, "flashsale.reservations", w.Topic)
	assert.Equal(t, kafka.RequireAll, w.RequiredAcks)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
}

func TestLogPublisher_Publish(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	assert.Contains(t, buf.String(), "event_type=reservation.created")
	assert.Contains(t, buf.String(), "outbox_id=42")
}
