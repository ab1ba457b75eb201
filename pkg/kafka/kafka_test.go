package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"roombook/pkg/logger"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func header(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestMessageBuilder(t *testing.T) {
	msg, err := NewMessage().
		WithKey("7").
		WithEventType("booking.created").
		WithCorrelationID("").
		WithValue(map[string]int{"booking_id": 3}).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if msg.GetEventID() == "" {
		t.Error("expected a generated event id")
	}
	if _, ok := msg.GetHeader(HeaderCorrelationID); ok {
		t.Error("empty correlation id should not be set")
	}
	if msg.Headers[HeaderTimestamp] == "" {
		t.Error("expected timestamp header")
	}

	var decoded map[string]int
	if err := msg.DecodeValue(&decoded); err != nil || decoded["booking_id"] != 3 {
		t.Errorf("unexpected value %v (%v)", decoded, err)
	}
}

func TestMessageBuilder_EncodingError(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	if !errors.Is(err, ErrInvalidMessage) {
		t.Errorf("expected ErrInvalidMessage, got %v", err)
	}
}

func TestRetryCount(t *testing.T) {
	msg := Message{Headers: map[string]string{}}
	for i := 0; i < 12; i++ {
		msg.IncrementRetryCount()
	}
	if msg.GetRetryCount() != 12 {
		t.Errorf("expected 12 retries, got %d (%q)", msg.GetRetryCount(), msg.Headers[HeaderRetryCount])
	}

	msg.Headers[HeaderRetryCount] = "garbage"
	if msg.GetRetryCount() != 0 {
		t.Error("unparseable retry count should read as zero")
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"explicit transient", NewTransientError("smtp down", errors.New("x")), ErrorTypeTransient},
		{"explicit permanent", NewPermanentError("bad payload", nil), ErrorTypePermanent},
		{"wrapped transient", fmt.Errorf("send: %w", NewTransientError("smtp", nil)), ErrorTypeTransient},
		{"deadline", context.DeadlineExceeded, ErrorTypeTransient},
		{"connection refused", errors.New("dial tcp: Connection Refused"), ErrorTypeTransient},
		{"unknown", errors.New("something odd"), ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError() = %v, want %v", got, tt.want)
			}
		})
	}

	if ShouldRetry(NewTransientError("x", nil), 3, 3) {
		t.Error("should not retry once the budget is spent")
	}
}

func TestProducer_Publish(t *testing.T) {
	writer := &fakeWriter{}
	p := newProducer(writer, nil, "room-bookings", "", logger.Discard())

	var seenTopic string
	p.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
		seenTopic = msg.Topic
		return next(ctx, msg)
	})

	msg, _ := NewMessage().WithKey("4").WithRawValue([]byte(`{}`)).WithEventType("booking.created").Build()
	if err := p.Publish(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if seenTopic != "room-bookings" {
		t.Errorf("middleware saw topic %q", seenTopic)
	}
	if len(writer.messages) != 1 || string(writer.messages[0].Key) != "4" {
		t.Fatalf("unexpected writes %v", writer.messages)
	}
	if header(writer.messages[0], HeaderEventType) != "booking.created" {
		t.Error("headers were not carried over")
	}
}

func TestProducer_Validation(t *testing.T) {
	p := newProducer(&fakeWriter{}, nil, "t", "", logger.Discard())

	if err := p.Publish(context.Background(), Message{Value: []byte("x")}); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("expected ErrEmptyKey, got %v", err)
	}
	if err := p.Publish(context.Background(), Message{Key: "k"}); !errors.Is(err, ErrEmptyValue) {
		t.Errorf("expected ErrEmptyValue, got %v", err)
	}

	_ = p.Close()
	if err := p.Publish(context.Background(), Message{Key: "k", Value: []byte("x")}); !errors.Is(err, ErrProducerClosed) {
		t.Errorf("expected ErrProducerClosed, got %v", err)
	}
}

func TestProducer_FailureGoesToDLQ(t *testing.T) {
	cause := errors.New("leader not available")
	dlq := &fakeWriter{}
	p := newProducer(&fakeWriter{err: cause}, dlq, "room-bookings", "room-bookings-dlq", logger.Discard())

	msg, _ := NewMessage().WithKey("4").WithRawValue([]byte(`{}`)).Build()
	err := p.Publish(context.Background(), msg)
	if !errors.Is(err, cause) {
		t.Fatalf("expected original error, got %v", err)
	}

	if len(dlq.messages) != 1 {
		t.Fatalf("expected one DLQ message, got %d", len(dlq.messages))
	}
	if header(dlq.messages[0], HeaderOriginalTopic) != "room-bookings" || header(dlq.messages[0], HeaderDLQError) != cause.Error() {
		t.Errorf("missing DLQ metadata: %v", dlq.messages[0].Headers)
	}
	if _, ok := msg.Headers[HeaderDLQError]; ok {
		t.Error("DLQ metadata leaked into the caller's message")
	}
}

type fakeReader struct {
	mu        sync.Mutex
	messages  []kafka.Message
	committed []int64
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		r.cancel()
		return kafka.Message{}, context.Canceled
	}
	m := r.messages[0]
	r.messages = r.messages[1:]
	return m, nil
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func TestConsumer_RetriesThenDLQ(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{
		cancel: cancel,
		messages: []kafka.Message{
			{Topic: "room-bookings", Offset: 1, Key: []byte("a"), Value: []byte(`{}`)},
			{Topic: "room-bookings", Offset: 2, Key: []byte("b"), Value: []byte(`{}`)},
		},
	}
	dlq := &fakeWriter{}

	attempts := map[string]int{}
	handler := func(ctx context.Context, msg Message) error {
		attempts[msg.Key]++
		if msg.Key == "a" {
			return NewTransientError("smtp unavailable", nil)
		}
		return nil
	}

	c := newConsumer(reader, dlq, "room-bookings", "notifier", handler, logger.Discard())
	c.maxRetries = 2

	err := c.Start(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}

	if attempts["a"] != 3 {
		t.Errorf("expected 1 attempt plus 2 retries, got %d", attempts["a"])
	}
	if attempts["b"] != 1 {
		t.Errorf("expected one attempt for b, got %d", attempts["b"])
	}
	if len(dlq.messages) != 1 || header(dlq.messages[0], HeaderDLQGroup) != "notifier" {
		t.Errorf("expected a to be parked on the DLQ, got %v", dlq.messages)
	}
	if len(reader.committed) != 2 {
		t.Errorf("expected both offsets committed, got %v", reader.committed)
	}
}

func TestConsumer_PermanentErrorSkipsRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{
		cancel:   cancel,
		messages: []kafka.Message{{Offset: 5, Key: []byte("k"), Value: []byte(`not json`)}},
	}

	calls := 0
	c := newConsumer(reader, nil, "room-bookings", "notifier", func(ctx context.Context, msg Message) error {
		calls++
		return NewPermanentError("undecodable", nil)
	}, logger.Discard())
	c.maxRetries = 5
	c.retryBackoff = time.Hour

	_ = c.Start(ctx)

	if calls != 1 {
		t.Errorf("permanent errors must not be retried, got %d calls", calls)
	}
	if len(reader.committed) != 1 {
		t.Errorf("expected offset to be committed, got %v", reader.committed)
	}
}
