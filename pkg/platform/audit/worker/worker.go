// Package worker ships audit events from the Postgres outbox to Kafka.
// Kafka is the durable audit sink; the outbox guarantees events are not
// lost between the committing transaction and the produce.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	auditpg "thesisflow/pkg/platform/audit/store/postgres"
)

const batchSize = 100

// Outbox is the slice of the postgres audit store the worker needs.
type Outbox interface {
	PendingBatch(ctx context.Context, limit int) ([]auditpg.OutboxRow, error)
	MarkPublished(ctx context.Context, ids []int64, at time.Time) error
}

// Worker polls the outbox and produces unpublished events to Kafka.
type Worker struct {
	outbox   Outbox
	client   *kgo.Client
	topic    string
	interval time.Duration
	logger   *slog.Logger
}

// New connects to Kafka, ensures the audit topic exists, and returns a
// ready worker. Callers own the poll loop via Run.
func New(ctx context.Context, brokers []string, topic string, interval time.Duration, outbox Outbox, logger *slog.Logger) (*Worker, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}

	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		outbox:   outbox,
		client:   client,
		topic:    topic,
		interval: interval,
		logger:   logger,
	}, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	topics, err := adm.ListTopics(ctx)
	if err != nil {
		return fmt.Errorf("list kafka topics: %w", err)
	}
	if topics.Has(topic) {
		return nil
	}
	if _, err := adm.CreateTopic(ctx, 1, -1, nil, topic); err != nil {
		return fmt.Errorf("create audit topic: %w", err)
	}
	return nil
}

// Run polls the outbox until ctx is cancelled. Publish failures are
// logged and retried on the next tick; rows stay unpublished until the
// produce succeeds.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer w.client.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Drain(ctx); err != nil {
				w.logger.Error("audit outbox drain failed", "error", err)
			}
		}
	}
}

// Drain publishes all currently pending outbox rows. Exposed for tests
// and for a final flush during shutdown.
func (w *Worker) Drain(ctx context.Context) error {
	for {
		batch, err := w.outbox.PendingBatch(ctx, batchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}

		records := make([]*kgo.Record, len(batch))
		ids := make([]int64, len(batch))
		for i, row := range batch {
			records[i] = &kgo.Record{
				Topic: w.topic,
				Key:   []byte(row.Key),
				Value: row.Payload,
			}
			ids[i] = row.ID
		}

		if err := w.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
			return fmt.Errorf("produce audit batch: %w", err)
		}
		if err := w.outbox.MarkPublished(ctx, ids, time.Now()); err != nil {
			return err
		}
		if len(batch) < batchSize {
			return nil
		}
	}
}
