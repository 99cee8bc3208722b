package sinks

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"

	"github.com/talentlens/jobcrawler/internal/ingest"
)

// topicPublisher is the slice of the Pub/Sub topic API the sink needs.
type topicPublisher interface {
	Publish(ctx context.Context, msg *pubsub.Message) *pubsub.PublishResult
}

// PubSubSink publishes run summaries as JSON messages to a Pub/Sub topic so
// downstream pipeline stages can react to finished ingestion runs.
type PubSubSink struct {
	topic topicPublisher
}

// NewPubSubSink wraps an existing topic handle.
func NewPubSubSink(topic topicPublisher) (*PubSubSink, error) {
	if topic == nil {
		return nil, fmt.Errorf("pubsub topic is required")
	}
	return &PubSubSink{topic: topic}, nil
}

// Record marshals the summary to JSON and publishes it, waiting for the
// server acknowledgement.
func (s *PubSubSink) Record(ctx context.Context, summary ingest.RunSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal run summary: %w", err)
	}
	msg := &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"batch_id":    summary.BatchID,
			"stop_reason": string(summary.StopReason),
		},
	}
	if _, err := s.topic.Publish(ctx, msg).Get(ctx); err != nil {
		return fmt.Errorf("publish run summary: %w", err)
	}
	return nil
}
