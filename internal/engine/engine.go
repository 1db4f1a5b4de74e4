package engine

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"GameLedger/internal/addr"
	"GameLedger/internal/ledger"
	"GameLedger/internal/observability"
	"GameLedger/internal/op"
	"GameLedger/internal/record"
)

// Config holds injected engine parameters.
type Config struct {
	// SettlementMint is the token mint accepted for payment legs of
	// marketplace swaps. Injected, never a literal constant.
	SettlementMint record.Identity

	// StartSequence is the first global sequence to assign (recovery).
	StartSequence int64

	// IdempotencyLRUCapacity bounds the in-memory dedup cache.
	IdempotencyLRUCapacity int
}

// Output is what the engine emits per applied operation.
type Output struct {
	Envelope   *op.Envelope
	Journal    *ledger.Journal
	StateDelta []byte
}

// Engine is the single-threaded settlement core. Each operation runs
// validate-then-mutate to completion: every precondition for every touched
// record is checked before any field is written, and all mutations are
// staged in a journal committed as one unit.
type Engine struct {
	cfg      Config
	sequence int64

	deriver      addr.Deriver
	gate         *ledger.AuthorityGate
	store        *ledger.Store
	lifecycle    *LifecycleManager
	hasher       *StateHasher
	idempotency  *IdempotencyChecker
	seqValidator *SequenceValidator
	metrics      *observability.Metrics
	log          zerolog.Logger

	persistChan    chan<- Output
	projectionChan chan<- Output
}

func New(
	cfg Config,
	deriver addr.Deriver,
	persistChan, projectionChan chan<- Output,
	dbChecker DBIdempotencyChecker,
	metrics *observability.Metrics,
	log zerolog.Logger,
) *Engine {
	store := ledger.NewStore()
	gate := ledger.NewAuthorityGate()

	capacity := cfg.IdempotencyLRUCapacity
	if capacity <= 0 {
		capacity = 1_000_000
	}

	return &Engine{
		cfg:            cfg,
		sequence:       cfg.StartSequence,
		deriver:        deriver,
		gate:           gate,
		store:          store,
		lifecycle:      NewLifecycleManager(store, gate),
		hasher:         NewStateHasher(),
		idempotency:    NewIdempotencyChecker(capacity, dbChecker),
		seqValidator:   NewSequenceValidator(),
		metrics:        metrics,
		log:            log,
		persistChan:    persistChan,
		projectionChan: projectionChan,
	}
}

// Store exposes the record store for queries and recovery.
func (e *Engine) Store() *ledger.Store {
	return e.store
}

// Sequence returns the next global sequence to assign.
func (e *Engine) Sequence() int64 {
	return e.sequence
}

// Apply is the main processing pipeline. On any error no record changes;
// duplicates are acknowledged with a nil envelope.
func (e *Engine) Apply(o op.Operation) (*op.Envelope, error) {
	start := time.Now()
	kind := o.OpKind().String()
	idempotencyKey := o.IdempotencyKey()

	// Step 1: idempotency check (two-tier)
	isDuplicate := e.idempotency.IsDuplicate(kind, idempotencyKey)

	// Step 2: per-signer sequence validation
	if err := e.seqValidator.ValidateSequence(o.Partition(), o.SourceSequence(), isDuplicate); err != nil {
		e.reject(kind, "sequence")
		return nil, fmt.Errorf("sequence validation failed: %w", err)
	}

	if isDuplicate {
		e.reject(kind, "duplicate")
		return nil, nil
	}

	// Step 3: dispatch — validate every precondition, stage every mutation
	journal, err := e.dispatch(o)
	if err != nil {
		code := ledger.CodeOf(err)
		e.reject(kind, code.String())
		e.log.Debug().
			Str("op", kind).
			Str("code", code.String()).
			Str("idempotency_key", idempotencyKey).
			Msg("operation rejected")
		return nil, err
	}

	// Step 4: commit the journal. The handlers validated against current
	// store state, so a commit failure means the validate-then-mutate
	// contract was broken — state corruption, not a caller error.
	if err := e.store.Apply(journal); err != nil {
		panic(fmt.Sprintf("FATAL: journal commit failed after validation: %v", err))
	}

	// Step 5: state digest + hash chain
	stateDigest := e.computeStateDigest(journal)
	prevHash := e.hasher.GetPrevHash()
	stateHash := e.hasher.ComputeHash(e.sequence, stateDigest)

	envelope := &op.Envelope{
		Sequence:       e.sequence,
		IdempotencyKey: idempotencyKey,
		Kind:           o.OpKind(),
		Signer:         o.Signer(),
		Timestamp:      time.Unix(o.OpTime(), 0).UTC(),
		SourceSequence: o.SourceSequence(),
		Payload:        marshalOperation(o),
		StateHash:      stateHash,
		PrevHash:       prevHash,
	}

	output := Output{
		Envelope:   envelope,
		Journal:    journal,
		StateDelta: stateDigest,
	}

	e.sequence++

	// Step 6: post-checks
	if err := e.postCheckInvariants(o, journal); err != nil {
		panic(fmt.Sprintf("FATAL: invariant violated: %v", err))
	}

	// Step 7: emit outputs. Persistence uses a BLOCKING send (backpressure);
	// projections use a NON-BLOCKING send with silent drop — projection
	// workers can rebuild from the operation log if they fall behind.
	if e.persistChan != nil {
		e.persistChan <- output
	}
	if e.projectionChan != nil {
		select {
		case e.projectionChan <- output:
		default:
		}
	}

	// Step 8: mark as processed
	e.idempotency.MarkProcessed(kind, idempotencyKey)

	if e.metrics != nil {
		e.metrics.OpsApplied.WithLabelValues(kind).Inc()
		e.metrics.OpDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
		e.metrics.EngineSequence.Set(float64(e.sequence))
		e.metrics.RecordsLive.Set(float64(e.store.Len()))
	}

	return envelope, nil
}

// marshalOperation JSON-encodes the operation for the durable log. The
// typed operation is the source of truth; encoding failures degrade to an
// empty object rather than blocking settlement.
func marshalOperation(o op.Operation) []byte {
	data, err := json.Marshal(o)
	if err != nil {
		return []byte("{}")
	}
	return data
}

func (e *Engine) reject(kind, reason string) {
	if e.metrics != nil {
		e.metrics.OpsRejected.WithLabelValues(kind, reason).Inc()
	}
}

func (e *Engine) dispatch(o op.Operation) (*ledger.Journal, error) {
	switch req := o.(type) {
	case *op.CreateSupply:
		return e.handleCreateSupply(req)
	case *op.CreateVault:
		return e.handleCreateVault(req)
	case *op.MintSupply:
		return e.handleMintSupply(req)
	case *op.BurnSupply:
		return e.handleBurnSupply(req)
	case *op.TransferBalance:
		return e.handleTransferBalance(req)
	case *op.RewardLevel:
		return e.handleRewardLevel(req)
	case *op.RewardTreasure:
		return e.handleRewardTreasure(req)
	case *op.DailyBonus:
		return e.handleDailyBonus(req)
	case *op.CreateProfile:
		return e.handleCreateProfile(req)
	case *op.UpdateProfile:
		return e.handleUpdateProfile(req)
	case *op.CloseProfile:
		return e.handleCloseProfile(req)
	case *op.StartSession:
		return e.handleStartSession(req)
	case *op.EndSession:
		return e.handleEndSession(req)
	case *op.ListAsset:
		return e.handleListAsset(req)
	case *op.UpdateListing:
		return e.handleUpdateListing(req)
	case *op.CancelListing:
		return e.handleCancelListing(req)
	case *op.ExecuteSwap:
		return e.handleExecuteSwap(req)
	case *op.CreateCollection:
		return e.handleCreateCollection(req)
	case *op.MintItem:
		return e.handleMintItem(req)
	case *op.MintSpecialItem:
		return e.handleMintSpecialItem(req)
	case *op.EquipItem:
		return e.handleEquipItem(req)
	default:
		return nil, fmt.Errorf("unknown operation type %T", o)
	}
}

// computeStateDigest creates canonical bytes covering every record the
// journal touched: identifier, then post-state (or a tombstone marker).
func (e *Engine) computeStateDigest(journal *ledger.Journal) []byte {
	digest := make([]byte, 0, len(journal.Mutations)*128)

	for _, m := range journal.Mutations {
		digest = append(digest, m.ID[:]...)
		switch m.Type {
		case ledger.MutationClose:
			digest = append(digest, 0xFF) // tombstone marker
		default:
			digest = append(digest, m.After.CanonicalBytes()...)
		}
	}

	return digest
}

// postCheckInvariants validates conservation after commit.
func (e *Engine) postCheckInvariants(o op.Operation, journal *ledger.Journal) error {
	// Transfers conserve value: the sum over the touched vaults must be
	// unchanged.
	if o.OpKind() == op.KindTransferBalance {
		var before, after uint64
		for _, m := range journal.Mutations {
			if v, ok := m.Before.(*record.Vault); ok {
				before += v.Balance
			}
			if v, ok := m.After.(*record.Vault); ok {
				after += v.Balance
			}
		}
		if before != after {
			return fmt.Errorf("transfer changed total vault balance: before=%d after=%d", before, after)
		}
	}

	// Periodic global conservation check: every token unit in a vault was
	// minted into some supply, so the totals must match.
	if e.sequence > 0 && e.sequence%1000 == 0 {
		vaultTotal, supplyTotal := e.store.ComputeGlobalBalance()
		if vaultTotal != supplyTotal {
			return fmt.Errorf("global conservation broken: vaults=%d supplies=%d (at seq %d)",
				vaultTotal, supplyTotal, e.sequence)
		}
	}

	return nil
}
