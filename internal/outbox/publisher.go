package outbox

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"

	"ticketly/internal/shared/apperrors"
)

// Publisher pushes domain events to the broker. Messages for the same booking
// share a partition key, so consumers see a booking's events in order.
type Publisher interface {
	Publish(event *Event) error
	Close() error
}

// KafkaPublisherConfig contains configuration for the Kafka publisher.
type KafkaPublisherConfig struct {
	Brokers          []string
	Topic            string
	RetryMax         int
	Timeout          time.Duration
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
}

// DefaultKafkaPublisherConfig returns a default publisher configuration.
func DefaultKafkaPublisherConfig() *KafkaPublisherConfig {
	return &KafkaPublisherConfig{
		Brokers:          []string{"localhost:9092"},
		Topic:            "booking-events",
		RetryMax:         3,
		Timeout:          10 * time.Second,
		RequiredAcks:     sarama.WaitForAll,
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
	}
}

type kafkaPublisher struct {
	producer sarama.SyncProducer
	config   *KafkaPublisherConfig
}

// NewKafkaPublisher creates a publisher backed by a synchronous producer.
func NewKafkaPublisher(config *KafkaPublisherConfig) (Publisher, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = config.Timeout
	saramaConfig.Producer.Idempotent = config.IdempotentWrites

	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// Hash partitioner keeps a booking's events on one partition.
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &kafkaPublisher{
		producer: producer,
		config:   config,
	}, nil
}

func (p *kafkaPublisher) Publish(event *Event) error {
	envelope := DomainEvent{
		OccurrenceID: event.OccurrenceID,
		EventType:    event.EventType,
		EventData:    event.Payload,
		Timestamp:    event.CreatedAt,
	}

	messageBytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal domain event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.config.Topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(event.BookingID, 10)),
		Value: sarama.ByteEncoder(messageBytes),
		Headers: []sarama.RecordHeader{
			{Key: []byte("occurrence_id"), Value: []byte(event.OccurrenceID)},
			{Key: []byte("event_type"), Value: []byte(event.EventType)},
			{Key: []byte("booking_id"), Value: []byte(strconv.FormatInt(event.BookingID, 10))},
		},
		Timestamp: event.CreatedAt,
	}

	if _, _, err := p.producer.SendMessage(message); err != nil {
		return fmt.Errorf("failed to send %s: %v: %w", event.EventType, err, apperrors.ErrPublish)
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	if p.producer != nil {
		if err := p.producer.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka producer: %w", err)
		}
	}
	return nil
}
