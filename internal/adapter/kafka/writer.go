package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/orbis-globe/data-engine/internal/config"
	"github.com/orbis-globe/data-engine/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer used by Publisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher produces one message per country record after each run.
// It implements pipeline.Publisher.
type Publisher struct {
	writer messageWriter
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured country topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishCountries serializes every record in table order and writes them in
// a single WriteMessages call. Records are keyed by country code so that a
// compacted topic keeps the latest record per country.
func (p *Publisher) PublishCountries(ctx context.Context, runID string, generatedAt time.Time, countries domain.Countries) error {
	if countries.Len() == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, 0, countries.Len())
	for _, rec := range countries.Records() {
		msg, err := serializeToMessage(rec, runID, generatedAt)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d country records: %w", len(msgs), err)
	}
	p.logger.Debug("country records published", "count", len(msgs))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a CountryRecord into a Kafka message.
func serializeToMessage(rec domain.CountryRecord, runID string, generatedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize country %q: %w", rec.Name, err)
	}
	return kafkago.Message{
		Key:   []byte(rec.Code),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(runID)},
			{Key: "generated_at", Value: []byte(generatedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
