package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"ticketly/pkg/logger"
)

// Consumer reads domain events back off the broker. The server process does
// not consume its own events; this runs in a separate worker binary.
type Consumer interface {
	Start(ctx context.Context) error
	Stop() error
}

type ConsumerConfig struct {
	Brokers         []string
	GroupID         string
	Topics          []string
	SessionTimeout  time.Duration
	HeartbeatPeriod time.Duration
	OffsetOldest    bool
}

func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:         []string{"localhost:9092"},
		GroupID:         "booking-event-handlers",
		Topics:          []string{"booking-events"},
		SessionTimeout:  30 * time.Second,
		HeartbeatPeriod: 3 * time.Second,
		OffsetOldest:    true,
	}
}

type kafkaConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	logger        *logger.Logger

	// seen tracks occurrence IDs already handled, so redeliveries from the
	// at-least-once relay are dropped instead of reprocessed.
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewKafkaConsumer(config *ConsumerConfig, log *logger.Logger) (Consumer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Consumer.Group.Session.Timeout = config.SessionTimeout
	saramaConfig.Consumer.Group.Heartbeat.Interval = config.HeartbeatPeriod
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = 1 * time.Second

	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &kafkaConsumer{
		consumerGroup: consumerGroup,
		config:        config,
		logger:        log,
		seen:          make(map[string]struct{}),
	}, nil
}

func (kc *kafkaConsumer) Start(ctx context.Context) error {
	go kc.handleErrors(ctx)

	handler := &groupHandler{consumer: kc}
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			if err := kc.consumerGroup.Consume(ctx, kc.config.Topics, handler); err != nil {
				kc.logger.ErrorWithContext(ctx, "Consumer group session failed", err, nil)
				time.Sleep(time.Second)
			}
		}
	}
}

func (kc *kafkaConsumer) handleErrors(ctx context.Context) {
	for err := range kc.consumerGroup.Errors() {
		kc.logger.ErrorWithContext(ctx, "Consumer group error", err, nil)
	}
}

func (kc *kafkaConsumer) Stop() error {
	if err := kc.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	return nil
}

// alreadySeen records an occurrence ID and reports whether it was handled
// before.
func (kc *kafkaConsumer) alreadySeen(occurrenceID string) bool {
	kc.mu.Lock()
	defer kc.mu.Unlock()
	if _, ok := kc.seen[occurrenceID]; ok {
		return true
	}
	kc.seen[occurrenceID] = struct{}{}
	return false
}

type groupHandler struct {
	consumer *kafkaConsumer
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := session.Context()
	for message := range claim.Messages() {
		h.handleMessage(ctx, message)
		session.MarkMessage(message, "")
	}
	return nil
}

func (h *groupHandler) handleMessage(ctx context.Context, message *sarama.ConsumerMessage) {
	var envelope DomainEvent
	if err := json.Unmarshal(message.Value, &envelope); err != nil {
		h.consumer.logger.ErrorWithContext(ctx, "Failed to decode domain event", err, map[string]interface{}{
			"partition": message.Partition,
			"offset":    message.Offset,
		})
		return
	}

	if h.consumer.alreadySeen(envelope.OccurrenceID) {
		h.consumer.logger.InfoWithContext(ctx, "Skipping duplicate domain event", map[string]interface{}{
			"occurrence_id": envelope.OccurrenceID,
			"event_type":    envelope.EventType,
		})
		return
	}

	switch envelope.EventType {
	case EventTypeBookingCreated:
		var payload BookingCreatedPayload
		if err := json.Unmarshal(envelope.EventData, &payload); err != nil {
			h.logDecodeError(ctx, envelope, err)
			return
		}
		h.consumer.logger.InfoWithContext(ctx, "Booking created", map[string]interface{}{
			"booking_id": payload.BookingID,
			"event_id":   payload.EventID,
			"user_id":    payload.UserID,
			"order_id":   payload.OrderID,
		})
	case EventTypeSeatAddedToBooking, EventTypeSeatRemovedFromBooking:
		var payload SeatChangedPayload
		if err := json.Unmarshal(envelope.EventData, &payload); err != nil {
			h.logDecodeError(ctx, envelope, err)
			return
		}
		h.consumer.logger.InfoWithContext(ctx, "Booking seats changed", map[string]interface{}{
			"event_type": envelope.EventType,
			"booking_id": payload.BookingID,
			"seat_id":    payload.SeatID,
		})
	case EventTypeBookingCancelled:
		var payload BookingCancelledPayload
		if err := json.Unmarshal(envelope.EventData, &payload); err != nil {
			h.logDecodeError(ctx, envelope, err)
			return
		}
		h.consumer.logger.InfoWithContext(ctx, "Booking cancelled", map[string]interface{}{
			"booking_id": payload.BookingID,
			"order_id":   payload.OrderID,
		})
	default:
		h.consumer.logger.InfoWithContext(ctx, "Unknown domain event type", map[string]interface{}{
			"event_type":    envelope.EventType,
			"occurrence_id": envelope.OccurrenceID,
		})
	}
}

func (h *groupHandler) logDecodeError(ctx context.Context, envelope DomainEvent, err error) {
	h.consumer.logger.ErrorWithContext(ctx, "Failed to decode event payload", err, map[string]interface{}{
		"event_type":    envelope.EventType,
		"occurrence_id": envelope.OccurrenceID,
	})
}
