package kafka

import (
	"fmt"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/nenecchuu/kaef-hris-sub002/internal/infra/config"
)

// Producer wraps a sarama async producer. Delivery errors surface through a
// background goroutine and are logged, never returned to callers.
type Producer struct {
	producer sarama.AsyncProducer
	logger   *zap.Logger
	done     chan struct{}
}

func NewProducer(cfg config.KafkaSettings, logger *zap.Logger) (*Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForLocal
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.Return.Successes = false
	saramaConfig.Version = sarama.V3_6_0_0

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	p := &Producer{
		producer: producer,
		logger:   logger,
		done:     make(chan struct{}),
	}

	go p.handleErrors()

	logger.Info("kafka producer started", zap.Strings("brokers", cfg.Brokers))

	return p, nil
}

func (p *Producer) handleErrors() {
	defer close(p.done)
	for err := range p.producer.Errors() {
		p.logger.Error("kafka publish failed",
			zap.String("topic", err.Msg.Topic),
			zap.Error(err.Err),
		)
	}
}

// Send hands one message to the async producer.
func (p *Producer) Send(topic, key string, payload []byte) {
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(payload),
	}
	if key != "" {
		msg.Key = sarama.StringEncoder(key)
	}

	p.producer.Input() <- msg
}

// Close flushes pending messages and stops the error goroutine.
func (p *Producer) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}
	<-p.done
	return nil
}
