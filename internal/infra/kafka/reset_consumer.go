package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/nenecchuu/kaef-hris-sub002/internal/core/domain"
	"github.com/nenecchuu/kaef-hris-sub002/internal/core/port"
	"github.com/nenecchuu/kaef-hris-sub002/internal/infra/config"
)

// ResetConsumer consumes bulk reset jobs from the jobs topic and dispatches
// them to the handler. Offsets are marked only after successful processing so
// a crashed worker replays the job.
type ResetConsumer struct {
	group   sarama.ConsumerGroup
	topic   string
	handler port.ResetJobHandler
	logger  *zap.Logger
}

func NewResetConsumer(cfg config.KafkaSettings, handler port.ResetJobHandler, logger *zap.Logger) (*ResetConsumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaConfig.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.ConsumerGroup, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("create consumer group: %w", err)
	}

	return &ResetConsumer{
		group:   group,
		topic:   cfg.TopicPrefix + "." + topicBulkResetJobs,
		handler: handler,
		logger:  logger,
	}, nil
}

// Run blocks consuming until ctx is cancelled.
func (c *ResetConsumer) Run(ctx context.Context) error {
	go func() {
		for err := range c.group.Errors() {
			c.logger.Error("reset consumer error", zap.Error(err))
		}
	}()

	handler := &resetGroupHandler{handler: c.handler, logger: c.logger}

	for {
		if err := c.group.Consume(ctx, []string{c.topic}, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			c.logger.Error("consumer session ended", zap.Error(err))
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *ResetConsumer) Close() error {
	return c.group.Close()
}

type resetGroupHandler struct {
	handler port.ResetJobHandler
	logger  *zap.Logger
}

func (h *resetGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *resetGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *resetGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		var job domain.BulkPasswordResetJob
		if err := json.Unmarshal(message.Value, &job); err != nil {
			// Malformed payload, skip it so the partition keeps moving.
			h.logger.Error("discarding malformed reset job",
				zap.Int64("offset", message.Offset),
				zap.Error(err),
			)
			session.MarkMessage(message, "")
			continue
		}

		if err := h.handler.ProcessBulkReset(session.Context(), job); err != nil {
			h.logger.Error("bulk reset job failed",
				zap.String("job_id", job.JobID),
				zap.Error(err),
			)
			// Leave the offset unmarked so the job is retried on rebalance.
			continue
		}

		session.MarkMessage(message, "")
	}
	return nil
}
