// Package kafka publishes cleaned county records to a sink topic so
// downstream consumers can index the dataset without re-running the pipeline.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/county-aqi-service/internal/config"
	"github.com/couchcryptid/county-aqi-service/internal/domain"
	"github.com/couchcryptid/county-aqi-service/internal/observability"
)

// Publisher produces cleaned county records to the sink topic.
type Publisher struct {
	writer  *kafkago.Writer
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewPublisher creates a Kafka producer for the configured sink topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger, metrics: metrics}
}

// PublishCounties serializes and publishes the cleaned table in a single
// WriteMessages call.
func (p *Publisher) PublishCounties(ctx context.Context, counties []domain.CountyRecord, loadedAt time.Time) error {
	if len(counties) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(counties))
	for i := range counties {
		msg, err := serializeToMessage(counties[i], loadedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish county records: %w", err)
	}
	p.metrics.RecordsPublished.Add(float64(len(counties)))
	p.logger.Info("published county records", "count", len(counties), "topic", p.writer.Topic)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a CountyRecord into a Kafka message keyed by
// "STATE/County" so one county always lands on one partition.
func serializeToMessage(county domain.CountyRecord, loadedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(county)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize county record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(county.StateCode + "/" + county.CountyName),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "state", Value: []byte(county.StateCode)},
			{Key: "loaded_at", Value: []byte(loadedAt.Format(time.RFC3339))},
		},
	}, nil
}
