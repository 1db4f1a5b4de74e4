package engine_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"GameLedger/internal/engine"
	"GameLedger/internal/op"
	"GameLedger/internal/persistence"
	"GameLedger/internal/record"
)

// ============================================================================
// Snapshot and restore
// ============================================================================

// TestSnapshot_RestoreContinuesChain snapshots a live engine, restores the
// state into a fresh one, and checks that both produce byte-identical
// envelopes for the next operation.
func TestSnapshot_RestoreContinuesChain(t *testing.T) {
	h := newHarness(t)
	authority := ident(1)
	alice := ident(2)
	bob := ident(3)

	supply := h.createSupply(authority, settlementMint)
	src := h.createVault(alice, settlementMint)
	dst := h.createVault(bob, settlementMint)
	h.mint(authority, supply, src, 1000)
	h.mustApply(&op.TransferBalance{Base: h.base(alice), FromVault: src, ToVault: dst, Amount: 300})

	snap := h.eng.CreateSnapshotState()
	if snap.Sequence != h.eng.Sequence() {
		t.Errorf("snapshot sequence = %d, want %d", snap.Sequence, h.eng.Sequence())
	}
	if snap.StateHash != h.eng.StateHash() {
		t.Error("snapshot hash does not match live tip")
	}
	records, closed, err := persistence.CaptureStore(h.eng.Store())
	if err != nil {
		t.Fatalf("capture store: %v", err)
	}

	restored := engine.New(
		engine.Config{SettlementMint: settlementMint, IdempotencyLRUCapacity: 4096},
		deriver,
		nil, nil,
		nil,
		nil,
		zerolog.Nop(),
	)
	data := &persistence.SnapshotData{
		Sequence:        snap.Sequence,
		StateHash:       snap.StateHash[:],
		Records:         records,
		Closed:          closed,
		SequenceState:   snap.SequenceState,
		IdempotencyKeys: snap.IdempotencyKeys,
	}
	if err := persistence.RestoreStoreInto(data, restored.Store()); err != nil {
		t.Fatalf("restore store: %v", err)
	}
	restored.RestoreSnapshotState(snap)

	if restored.Sequence() != h.eng.Sequence() {
		t.Errorf("restored sequence = %d, want %d", restored.Sequence(), h.eng.Sequence())
	}
	if restored.StateHash() != h.eng.StateHash() {
		t.Error("restored hash tip differs from original")
	}
	if restored.Store().Len() != h.eng.Store().Len() {
		t.Errorf("restored store holds %d records, want %d", restored.Store().Len(), h.eng.Store().Len())
	}

	// The next operation must extend both chains identically.
	next := &op.TransferBalance{Base: h.base(alice), FromVault: src, ToVault: dst, Amount: 100}
	envLive, err := h.eng.Apply(next)
	if err != nil {
		t.Fatalf("apply on live engine: %v", err)
	}
	envRestored, err := restored.Apply(next)
	if err != nil {
		t.Fatalf("apply on restored engine: %v", err)
	}
	if envRestored.Sequence != envLive.Sequence {
		t.Errorf("sequence = %d, want %d", envRestored.Sequence, envLive.Sequence)
	}
	if envRestored.PrevHash != envLive.PrevHash {
		t.Error("prev hash diverged after restore")
	}
	if envRestored.StateHash != envLive.StateHash {
		t.Error("state hash diverged after restore")
	}
}

// TestSnapshot_WarmedKeysSuppressReplay checks that operations included in
// a snapshot are treated as duplicates when redelivered after restore.
func TestSnapshot_WarmedKeysSuppressReplay(t *testing.T) {
	h := newHarness(t)
	authority := ident(1)
	alice := ident(2)

	supply := h.createSupply(authority, settlementMint)
	vault := h.createVault(alice, settlementMint)

	mintOp := &op.MintSupply{Base: h.base(authority), Supply: supply, Vault: vault, Amount: 500}
	h.mustApply(mintOp)

	snap := h.eng.CreateSnapshotState()
	records, closed, err := persistence.CaptureStore(h.eng.Store())
	if err != nil {
		t.Fatalf("capture store: %v", err)
	}

	restored := engine.New(
		engine.Config{SettlementMint: settlementMint, IdempotencyLRUCapacity: 4096},
		deriver,
		nil, nil,
		nil,
		nil,
		zerolog.Nop(),
	)
	data := &persistence.SnapshotData{
		Sequence:      snap.Sequence,
		StateHash:     snap.StateHash[:],
		Records:       records,
		Closed:        closed,
		SequenceState: snap.SequenceState,
	}
	if err := persistence.RestoreStoreInto(data, restored.Store()); err != nil {
		t.Fatalf("restore store: %v", err)
	}
	restored.RestoreSnapshotState(snap)

	env, err := restored.Apply(mintOp)
	if err != nil {
		t.Fatalf("redelivered op: %v", err)
	}
	if env != nil {
		t.Error("redelivered op produced an envelope, want duplicate suppression")
	}

	rec, err := restored.Store().Get(vault.ID)
	if err != nil {
		t.Fatalf("get vault: %v", err)
	}
	if got := rec.(*record.Vault).Balance; got != 500 {
		t.Errorf("restored balance = %d, want 500", got)
	}
}

// TestSnapshot_SequenceCountersSurvive ensures the per-partition counters
// in the snapshot keep ordering enforcement intact across a restart.
func TestSnapshot_SequenceCountersSurvive(t *testing.T) {
	h := newHarness(t)
	authority := ident(1)
	alice := ident(2)

	supply := h.createSupply(authority, settlementMint)
	vault := h.createVault(alice, settlementMint)
	h.mint(authority, supply, vault, 100)

	snap := h.eng.CreateSnapshotState()
	records, closed, err := persistence.CaptureStore(h.eng.Store())
	if err != nil {
		t.Fatalf("capture store: %v", err)
	}

	restored := engine.New(
		engine.Config{SettlementMint: settlementMint, IdempotencyLRUCapacity: 4096},
		deriver,
		nil, nil,
		nil,
		nil,
		zerolog.Nop(),
	)
	if err := persistence.RestoreStoreInto(&persistence.SnapshotData{Records: records, Closed: closed}, restored.Store()); err != nil {
		t.Fatalf("restore store: %v", err)
	}
	restored.RestoreSnapshotState(snap)

	// A stale source sequence must still be rejected after restore.
	stale := &op.MintSupply{
		Base:   op.Base{OpID: uuid.New(), Actor: authority, Sequence: 0, Timestamp: 1_700_000_100},
		Supply: supply, Vault: vault, Amount: 1,
	}
	if _, err := restored.Apply(stale); err == nil {
		t.Error("stale source sequence accepted after restore")
	}

	// The in-order sequence continues where the snapshot left off.
	inOrder := &op.MintSupply{Base: h.base(authority), Supply: supply, Vault: vault, Amount: 1}
	if _, err := restored.Apply(inOrder); err != nil {
		t.Errorf("in-order op after restore: %v", err)
	}
}
