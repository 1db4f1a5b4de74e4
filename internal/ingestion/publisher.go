package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"
)

// ResultPublisher publishes applied operations to NATS for downstream
// consumers (game services, leaderboards, marketplaces). Results are
// published after the engine has committed and handed the operation to
// persistence.
type ResultPublisher struct {
	js        jetstream.JetStream
	inputChan <-chan PublishableResult
	log       zerolog.Logger
}

// PublishableResult is an applied operation ready for outbound publishing.
type PublishableResult struct {
	Sequence       int64           `json:"sequence"`
	OpKind         string          `json:"op_kind"`
	IdempotencyKey string          `json:"idempotency_key"`
	Signer         string          `json:"signer"`
	Payload        json.RawMessage `json:"payload"`
	StateHash      []byte          `json:"state_hash"`
	Timestamp      time.Time       `json:"timestamp"`
}

func NewResultPublisher(js jetstream.JetStream, inputChan <-chan PublishableResult, logger zerolog.Logger) *ResultPublisher {
	return &ResultPublisher{
		js:        js,
		inputChan: inputChan,
		log:       logger.With().Str("component", "result_publisher").Logger(),
	}
}

// Run starts the publisher loop. Publish failures are non-fatal: the
// operation log in Postgres remains the source of truth and consumers can
// backfill from it.
func (rp *ResultPublisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case result, ok := <-rp.inputChan:
			if !ok {
				return nil
			}

			if err := rp.publish(ctx, result); err != nil {
				rp.log.Warn().
					Err(err).
					Int64("sequence", result.Sequence).
					Str("op", result.OpKind).
					Msg("outbound publish failed")
			}
		}
	}
}

func (rp *ResultPublisher) publish(ctx context.Context, result PublishableResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	subject := fmt.Sprintf("game.ledger.results.%s", result.OpKind)
	_, err = rp.js.Publish(ctx, subject, data)
	return err
}

// EnsureResultStream creates the outbound results stream.
func EnsureResultStream(ctx context.Context, js jetstream.JetStream, logger zerolog.Logger) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      "GAME_LEDGER_RESULTS",
		Subjects:  []string{"game.ledger.results.>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    72 * time.Hour,
		Replicas:  1,
	})
	if err != nil {
		return fmt.Errorf("create results stream: %w", err)
	}
	logger.Info().Str("stream", "GAME_LEDGER_RESULTS").Msg("ensured stream")
	return nil
}
