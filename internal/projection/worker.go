package projection

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"GameLedger/internal/engine"
	"GameLedger/internal/ledger"
	"GameLedger/internal/observability"
	"GameLedger/internal/record"
)

// Worker maintains the query-side read models (balances, profiles,
// listings) from committed journals. The engine feeds this worker over a
// NON-BLOCKING channel: drops are acceptable because every projection can
// be rebuilt from the operation log.
type Worker struct {
	db        *sql.DB
	inputChan <-chan engine.Output
	lastSeq   int64
	metrics   *observability.Metrics
	log       zerolog.Logger
}

func NewWorker(db *sql.DB, inputChan <-chan engine.Output, metrics *observability.Metrics, logger zerolog.Logger) *Worker {
	return &Worker{
		db:        db,
		inputChan: inputChan,
		metrics:   metrics,
		log:       logger.With().Str("component", "projection").Logger(),
	}
}

// Run starts the projection loop. Update failures are logged and skipped;
// projections are eventually consistent.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case output, ok := <-w.inputChan:
			if !ok {
				return nil
			}

			start := time.Now()
			if err := w.processOutput(ctx, output); err != nil {
				w.log.Warn().
					Err(err).
					Int64("sequence", output.Envelope.Sequence).
					Msg("projection update failed")
			}
			if w.metrics != nil {
				w.metrics.ProjectionUpdateDur.WithLabelValues("all").Observe(time.Since(start).Seconds())
			}

			w.lastSeq = output.Envelope.Sequence
		}
	}
}

func (w *Worker) processOutput(ctx context.Context, output engine.Output) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	seq := output.Envelope.Sequence
	for _, m := range output.Journal.Mutations {
		recordID := hex.EncodeToString(m.ID[:])

		if m.Type == ledger.MutationClose {
			if err := w.removeRecord(ctx, tx, recordID, m.Before); err != nil {
				return fmt.Errorf("remove %s: %w", recordID, err)
			}
			continue
		}

		if err := w.upsertRecord(ctx, tx, recordID, m.After, seq); err != nil {
			return fmt.Errorf("upsert %s: %w", recordID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO projections.watermark (worker_id, last_sequence, updated_at)
		VALUES ('main', $1, NOW())
		ON CONFLICT (worker_id) DO UPDATE SET last_sequence = $1, updated_at = NOW()
	`, seq); err != nil {
		return fmt.Errorf("watermark update: %w", err)
	}

	return tx.Commit()
}

func (w *Worker) upsertRecord(ctx context.Context, tx *sql.Tx, recordID string, rec record.Record, seq int64) error {
	switch r := rec.(type) {
	case *record.Vault:
		_, err := tx.ExecContext(ctx, `
			INSERT INTO projections.balances (record_id, owner, balance, last_sequence)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (record_id)
			DO UPDATE SET balance = $3, last_sequence = $4
		`, recordID, r.Owner.String(), int64(r.Balance), seq)
		return err

	case *record.Profile:
		_, err := tx.ExecContext(ctx, `
			INSERT INTO projections.profiles (record_id, owner, name, health, stamina, experience, level, tokens, last_sequence)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (record_id)
			DO UPDATE SET name = $3, health = $4, stamina = $5, experience = $6, level = $7, tokens = $8, last_sequence = $9
		`, recordID, r.Owner.String(), r.Name, int32(r.Health), int32(r.Stamina),
			int64(r.Experience), int32(r.Level), int64(r.Tokens), seq)
		return err

	case *record.Listing:
		_, err := tx.ExecContext(ctx, `
			INSERT INTO projections.listings (record_id, seller, asset, price, active, sold, last_sequence)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (record_id)
			DO UPDATE SET price = $4, active = $5, sold = $6, last_sequence = $7
		`, recordID, r.Seller.String(), r.Asset.String(), int64(r.Price), r.Active, r.Sold, seq)
		return err

	default:
		// Supplies, sessions, items, and collections are served from the
		// in-memory store; no read model yet.
		return nil
	}
}

func (w *Worker) removeRecord(ctx context.Context, tx *sql.Tx, recordID string, before record.Record) error {
	var table string
	switch before.(type) {
	case *record.Vault:
		table = "projections.balances"
	case *record.Profile:
		table = "projections.profiles"
	case *record.Listing:
		table = "projections.listings"
	default:
		return nil
	}

	_, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE record_id = $1`, table), recordID)
	return err
}

// Rebuild truncates all projection tables so the worker can repopulate
// them by replaying the operation log.
func Rebuild(ctx context.Context, db *sql.DB) error {
	truncateStatements := []string{
		`TRUNCATE projections.balances`,
		`TRUNCATE projections.profiles`,
		`TRUNCATE projections.listings`,
		`DELETE FROM projections.watermark WHERE worker_id = 'main'`,
	}

	for _, stmt := range truncateStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("truncate failed: %w", err)
		}
	}

	return nil
}
