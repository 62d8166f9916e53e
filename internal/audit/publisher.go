package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Publisher mirrors audit entries to Kafka for downstream SIEM/compliance
// consumers. The store remains the source of truth; publishing is advisory
// and a broker outage never fails a request.
type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewPublisher connects to the brokers and ensures the audit topic exists.
// Returns nil when no brokers are configured.
func NewPublisher(ctx context.Context, brokers []string, topic string, logger *slog.Logger) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchMaxBytes(1<<20),
		kgo.RecordRetries(3),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	admin := kadm.NewClient(client)
	ensureCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := admin.CreateTopic(ensureCtx, 1, 1, nil, topic); err != nil {
		// Topic may already exist or auto-creation may be enabled.
		logger.Warn("audit topic ensure failed", "topic", topic, "error", err)
	}

	return &Publisher{client: client, topic: topic, logger: logger}, nil
}

type mirrorPayload struct {
	ID         string         `json:"id"`
	ActorID    string         `json:"actor_id"`
	CompanyID  string         `json:"company_id,omitempty"`
	Action     string         `json:"action"`
	TargetType string         `json:"target_type"`
	TargetID   string         `json:"target_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  string         `json:"created_at"`
}

// Publish sends one entry. Errors are logged, not returned; the caller's
// durable write already happened.
func (p *Publisher) Publish(ctx context.Context, entry Entry) {
	payload, err := json.Marshal(mirrorPayload{
		ID:         entry.ID,
		ActorID:    entry.ActorID,
		CompanyID:  entry.CompanyID,
		Action:     entry.Action,
		TargetType: entry.TargetType,
		TargetID:   entry.TargetID,
		Metadata:   entry.Metadata,
		CreatedAt:  entry.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		p.logger.Error("marshal audit mirror payload", "error", err)
		return
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(entry.ActorID),
		Value: payload,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Warn("audit mirror publish failed", "entry_id", entry.ID, "error", err)
		}
	})
}

// Close flushes pending records and releases the client.
func (p *Publisher) Close(ctx context.Context) {
	if err := p.client.Flush(ctx); err != nil {
		p.logger.Warn("audit mirror flush failed", "error", err)
	}
	p.client.Close()
}
