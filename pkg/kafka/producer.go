package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/segmentio/kafka-go"

	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Config holds Kafka configuration
type Config struct {
	Brokers []string
	Topic   string
}

// ParseConfig parses a comma-separated broker string
func ParseConfig(brokers string, topic string) Config {
	brokerList := strings.Split(brokers, ",")
	for i := range brokerList {
		brokerList[i] = strings.TrimSpace(brokerList[i])
	}

	return Config{
		Brokers: brokerList,
		Topic:   topic,
	}
}

// Producer publishes planning-item lifecycle events
type Producer struct {
	writer *kafka.Writer
	logger ectologger.Logger
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg Config, logger ectologger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		// Allow Kafka to auto-create the topic in dev environments when it doesn't exist yet.
		// Without this, a first publish may fail with "Unknown Topic Or Partition".
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		writer: writer,
		logger: logger,
		topic:  cfg.Topic,
	}
}

// Close closes the producer
func (p *Producer) Close() error {
	return p.writer.Close()
}

// ItemSavedMessage is the lifecycle event emitted after a save commits.
// Downstream consumers (weekly review digests, analytics) key on user+parent.
type ItemSavedMessage struct {
	Type       string    `json:"type"` // "item.created" | "item.updated"
	UserID     string    `json:"user_id"`
	ParentType string    `json:"parent_type"`
	ParentID   string    `json:"parent_id"`
	Timestamp  time.Time `json:"timestamp"`

	// Tracing
	TraceID string `json:"trace_id,omitempty"`
	SpanID  string `json:"span_id,omitempty"`

	// Selection summary
	RoleCount            int     `json:"role_count"`
	DomainCount          int     `json:"domain_count"`
	KeyRelationshipCount int     `json:"key_relationship_count"`
	NoteAttached         bool    `json:"note_attached"`
	GoalID               *string `json:"goal_id,omitempty"`
}

// PublishItemSaved publishes a save lifecycle event
func (p *Producer) PublishItemSaved(ctx context.Context, msg *ItemSavedMessage) error {
	if msg == nil {
		return fmt.Errorf("item saved message is nil")
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	msg.TraceID = tracing.GetTraceID(ctx)
	msg.SpanID = tracing.GetSpanID(ctx)

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal item saved message: %w", err)
	}

	key := fmt.Sprintf("%s:%s:%s", msg.UserID, msg.ParentType, msg.ParentID)
	headers := []kafka.Header{
		{Key: "user_id", Value: []byte(msg.UserID)},
		{Key: "parent_type", Value: []byte(msg.ParentType)},
		{Key: "type", Value: []byte(msg.Type)},
	}
	if traceparent := tracing.GetTraceParent(ctx); traceparent != "" {
		headers = append(headers, kafka.Header{Key: "traceparent", Value: []byte(traceparent)})
	}
	if tracestate := tracing.GetTraceState(ctx); tracestate != "" {
		headers = append(headers, kafka.Header{Key: "tracestate", Value: []byte(tracestate)})
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(key),
		Value:   data,
		Headers: headers,
	}); err != nil {
		p.logger.WithContext(ctx).WithError(err).Errorf("Failed to publish item saved event to Kafka topic %s", p.topic)
		return err
	}

	return nil
}
