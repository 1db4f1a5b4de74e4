package persistence

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
)

// Worker drains the engine's persist channel and batch-writes the durable
// operation log to Postgres. The engine sends on this channel BLOCKING, so
// if the worker falls behind the engine stalls — no applied operation is
// ever lost between commit and persistence.
type Worker struct {
	writer       *OpLogWriter
	db           *sql.DB
	inputChan    <-chan engine.Output
	batchSize    int
	flushTimeout time.Duration
	metrics      *observability.Metrics
	log          zerolog.Logger
}

func NewWorker(
	db *sql.DB,
	inputChan <-chan engine.Output,
	batchSize int,
	flushTimeout time.Duration,
	metrics *observability.Metrics,
	log zerolog.Logger,
) *Worker {
	return &Worker{
		writer:       NewOpLogWriter(db),
		db:           db,
		inputChan:    inputChan,
		batchSize:    batchSize,
		flushTimeout: flushTimeout,
		metrics:      metrics,
		log:          log.With().Str("component", "persistence").Logger(),
	}
}

// Writer exposes the underlying log writer for startup recovery queries.
func (w *Worker) Writer() *OpLogWriter {
	return w.writer
}

// Run batches incoming outputs and flushes when the batch fills or the
// flush timeout expires. Blocks until ctx is cancelled or the input
// channel closes.
func (w *Worker) Run(ctx context.Context) error {
	opBatch := make([]OperationRow, 0, w.batchSize)
	mutBatch := make([]MutationRow, 0, w.batchSize*3)
	tombBatch := make([]TombstoneRow, 0, w.batchSize)

	timer := time.NewTimer(w.flushTimeout)
	defer timer.Stop()

	flushAll := func(flushCtx context.Context) {
		if len(opBatch) == 0 {
			return
		}
		if err := w.flushWithRetry(flushCtx, opBatch, mutBatch, tombBatch); err != nil {
			w.log.Error().Err(err).Int("operations", len(opBatch)).Msg("flush abandoned")
		}
		opBatch = opBatch[:0]
		mutBatch = mutBatch[:0]
		tombBatch = tombBatch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			// Graceful shutdown: write whatever is buffered.
			flushAll(context.Background())
			return ctx.Err()

		case output, ok := <-w.inputChan:
			if !ok {
				flushAll(context.Background())
				return nil
			}

			opBatch = append(opBatch, buildOperationRow(output))
			mutBatch = append(mutBatch, buildMutationRows(output.Journal)...)
			tombBatch = append(tombBatch, buildTombstoneRows(output.Journal)...)

			if len(opBatch) >= w.batchSize {
				flushAll(ctx)
				timer.Reset(w.flushTimeout)
			}

		case <-timer.C:
			flushAll(ctx)
			timer.Reset(w.flushTimeout)
		}
	}
}

// flushWithRetry retries with exponential backoff. The worker never drops
// a batch: it retries until the write succeeds or, on cancellation, makes
// one final attempt with a background context.
func (w *Worker) flushWithRetry(ctx context.Context, ops []OperationRow, muts []MutationRow, tombs []TombstoneRow) error {
	backoff := 100 * time.Millisecond
	const maxBackoff = 30 * time.Second

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			w.log.Warn().
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Int("operations", len(ops)).
				Msg("persistence retry")
			select {
			case <-ctx.Done():
				if finalErr := w.flush(context.Background(), ops, muts, tombs); finalErr != nil {
					return fmt.Errorf("final flush on shutdown failed: %w", finalErr)
				}
				return nil
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}

		err := w.flush(ctx, ops, muts, tombs)
		if err == nil {
			if attempt > 0 {
				w.log.Info().Int("retries", attempt).Msg("persistence flush recovered")
			}
			return nil
		}

		if w.metrics != nil {
			w.metrics.PersistErrors.WithLabelValues("retry").Inc()
		}
	}
}

// flush writes operations, mutations, and tombstones in one transaction.
func (w *Worker) flush(ctx context.Context, ops []OperationRow, muts []MutationRow, tombs []TombstoneRow) error {
	start := time.Now()

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		if w.metrics != nil {
			w.metrics.PersistErrors.WithLabelValues("tx_begin").Inc()
		}
		return err
	}
	defer tx.Rollback()

	if err := w.writer.WriteOperationBatch(ctx, tx, ops); err != nil {
		if w.metrics != nil {
			w.metrics.PersistErrors.WithLabelValues("write_operations").Inc()
		}
		return err
	}

	if err := w.writer.WriteMutationBatch(ctx, tx, muts); err != nil {
		if w.metrics != nil {
			w.metrics.PersistErrors.WithLabelValues("write_mutations").Inc()
		}
		return err
	}

	if err := w.writer.WriteTombstoneBatch(ctx, tx, tombs); err != nil {
		if w.metrics != nil {
			w.metrics.PersistErrors.WithLabelValues("write_tombstones").Inc()
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		if w.metrics != nil {
			w.metrics.PersistErrors.WithLabelValues("tx_commit").Inc()
		}
		return err
	}

	if w.metrics != nil {
		w.metrics.PersistBatchDur.Observe(time.Since(start).Seconds())
		w.metrics.PersistOpsWritten.Add(float64(len(ops)))
		w.metrics.PersistMutationsWritten.Add(float64(len(muts)))
		if len(ops) > 0 {
			w.metrics.PersistLastSequence.Set(float64(ops[len(ops)-1].Sequence))
		}
	}

	return nil
}

func buildOperationRow(output engine.Output) OperationRow {
	env := output.Envelope
	return OperationRow{
		Sequence:       env.Sequence,
		OpKind:         env.Kind.String(),
		IdempotencyKey: env.IdempotencyKey,
		Signer:         env.Signer.String(),
		Payload:        env.Payload,
		StateHash:      append([]byte(nil), env.StateHash[:]...),
		PrevHash:       append([]byte(nil), env.PrevHash[:]...),
		Timestamp:      env.Timestamp,
		SourceSequence: env.SourceSequence,
	}
}

func buildMutationRows(journal *ledger.Journal) []MutationRow {
	rows := make([]MutationRow, 0, len(journal.Mutations))
	for i, m := range journal.Mutations {
		row := MutationRow{
			JournalID:    journal.JournalID.String(),
			OpRef:        journal.OpRef,
			Sequence:     journal.Sequence,
			MutationIdx:  int32(i),
			RecordID:     hex.EncodeToString(m.ID[:]),
			MutationType: m.Type.String(),
			Timestamp:    journal.Timestamp,
		}
		if m.Before != nil {
			row.RecordKind = m.Before.Kind().String()
			row.BeforeState = m.Before.CanonicalBytes()
		}
		if m.After != nil {
			row.RecordKind = m.After.Kind().String()
			row.AfterState = m.After.CanonicalBytes()
		}
		rows = append(rows, row)
	}
	return rows
}

func buildTombstoneRows(journal *ledger.Journal) []TombstoneRow {
	var rows []TombstoneRow
	for _, m := range journal.Mutations {
		if m.Type != ledger.MutationClose {
			continue
		}
		rows = append(rows, TombstoneRow{
			RecordID:   hex.EncodeToString(m.ID[:]),
			RecordKind: m.Before.Kind().String(),
			Sequence:   journal.Sequence,
			ClosedAt:   journal.Timestamp,
		})
	}
	return rows
}
