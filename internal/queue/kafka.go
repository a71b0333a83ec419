package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"todo-bot/internal/models"
	"todo-bot/pkg/logger"

	"github.com/segmentio/kafka-go"
)

const consumerGroup = "todo-bot"

// KafkaConfig configures a Kafka-backed queue.
type KafkaConfig struct {
	Brokers    []string
	Topic      string
	Partitions int
}

// Kafka publishes events to a topic and consumes them with one reader.
type Kafka struct {
	cfg    KafkaConfig
	writer *kafka.Writer
}

// NewKafka returns a Kafka queue and makes sure its topic exists.
func NewKafka(ctx context.Context, cfg KafkaConfig) *Kafka {
	EnsureTopic(ctx, cfg)
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	logger.Info(ctx, "Kafka producer initialized", "topic", cfg.Topic, "brokers", cfg.Brokers)
	return &Kafka{cfg: cfg, writer: w}
}

// EnsureTopic creates the event topic with configured partitions (idempotent).
// If it fails (e.g. no broker or topic exists), the app still runs.
func EnsureTopic(ctx context.Context, cfg KafkaConfig) {
	if len(cfg.Brokers) == 0 {
		return
	}
	conn, err := kafka.DialContext(ctx, "tcp", cfg.Brokers[0])
	if err != nil {
		logger.Debug(ctx, "Kafka dial for topic creation failed", "error", err)
		return
	}
	defer conn.Close()
	controller, err := conn.Controller()
	if err != nil {
		logger.Debug(ctx, "Kafka controller lookup failed", "error", err)
		return
	}
	ctrlConn, err := kafka.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		logger.Debug(ctx, "Kafka controller dial failed", "error", err)
		return
	}
	defer ctrlConn.Close()
	err = ctrlConn.CreateTopics(kafka.TopicConfig{
		Topic:             cfg.Topic,
		NumPartitions:     cfg.Partitions,
		ReplicationFactor: 1,
	})
	if err != nil {
		logger.Debug(ctx, "Kafka create topic failed (topic may already exist)", "error", err)
		return
	}
	logger.Info(ctx, "Kafka topic ensured", "topic", cfg.Topic, "partitions", cfg.Partitions)
}

// Publish writes ev keyed by its space so a space's events stay in order.
func (k *Kafka) Publish(ctx context.Context, ev models.Event) error {
	msg, err := encodeEvent(ev)
	if err != nil {
		return err
	}
	return k.writer.WriteMessages(ctx, msg)
}

// Consume reads events in order with a single group reader, committing each
// one after the handler returns. Undecodable messages are committed and skipped.
func (k *Kafka) Consume(ctx context.Context, h Handler) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  k.cfg.Brokers,
		Topic:    k.cfg.Topic,
		GroupID:  consumerGroup,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	logger.Info(ctx, "Kafka consumer started", "topic", k.cfg.Topic)
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error(ctx, "Kafka fetch failed", "error", err)
			continue
		}
		ev, err := decodeEvent(msg)
		if err != nil {
			logger.Error(ctx, "Dropping undecodable event", "error", err, "payload", string(msg.Value))
		} else {
			h(ctx, ev)
		}
		if err := reader.CommitMessages(ctx, msg); err != nil {
			logger.Error(ctx, "Kafka commit failed", "error", err)
		}
	}
}

// Close flushes and closes the producer.
func (k *Kafka) Close() error {
	return k.writer.Close()
}

func encodeEvent(ev models.Event) (kafka.Message, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode event: %w", err)
	}
	return kafka.Message{Key: []byte(ev.SpaceID), Value: payload}, nil
}

func decodeEvent(msg kafka.Message) (models.Event, error) {
	var ev models.Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		return models.Event{}, fmt.Errorf("decode event: %w", err)
	}
	return ev, nil
}
