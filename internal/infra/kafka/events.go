package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nenecchuu/kaef-hris-sub002/internal/core/domain"
	"github.com/nenecchuu/kaef-hris-sub002/internal/core/port"
	"github.com/nenecchuu/kaef-hris-sub002/internal/infra/telemetry"
)

// Topic suffixes under the configured prefix.
const (
	topicAuditRecorded   = "audit.recorded"
	topicResetDispatched = "password.reset_dispatched"
	topicPasswordChanged = "user.password.changed"
	topicBulkResetJobs   = "password.bulk_reset"
)

// eventEnvelope is the wire format shared by every published event.
type eventEnvelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// EventPublisher publishes domain events through the shared async producer.
type EventPublisher struct {
	producer    *Producer
	topicPrefix string
	logger      *zap.Logger
	metrics     *telemetry.Provider
}

var _ port.EventPublisher = (*EventPublisher)(nil)

func NewEventPublisher(producer *Producer, topicPrefix string, metrics *telemetry.Provider, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{
		producer:    producer,
		topicPrefix: topicPrefix,
		logger:      logger,
		metrics:     metrics,
	}
}

func (p *EventPublisher) topic(suffix string) string {
	return p.topicPrefix + "." + suffix
}

func (p *EventPublisher) publish(topicSuffix, eventType, key, eventID string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		p.metrics.EventPublishErrors.Inc()
		return fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	// The envelope carries the id assigned where the event was built so the
	// payload and envelope always agree.
	if eventID == "" {
		eventID = uuid.NewString()
	}
	envelope := eventEnvelope{
		EventID:    eventID,
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		p.metrics.EventPublishErrors.Inc()
		return fmt.Errorf("marshal %s envelope: %w", eventType, err)
	}

	topic := p.topic(topicSuffix)
	p.producer.Send(topic, key, body)
	p.metrics.EventsPublished.WithLabelValues(topic).Inc()

	return nil
}

func (p *EventPublisher) PublishAuditRecorded(_ context.Context, event domain.AuditRecordedEvent) error {
	return p.publish(topicAuditRecorded, "audit.recorded", strconv.FormatInt(event.EntryID, 10), event.EventID, event)
}

func (p *EventPublisher) PublishPasswordResetDispatched(_ context.Context, event domain.PasswordResetDispatchedEvent) error {
	return p.publish(topicResetDispatched, "password.reset_dispatched", strconv.FormatInt(event.UserID, 10), event.EventID, event)
}

func (p *EventPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	return p.publish(topicPasswordChanged, "user.password.changed", strconv.FormatInt(event.UserID, 10), event.EventID, event)
}
