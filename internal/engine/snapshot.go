package engine

// SnapshotState is the portable engine state beyond the record store:
// the global sequence, the hash-chain tip, per-partition sequence
// counters, and the recent idempotency keys. Records and tombstones are
// captured separately from the store.
type SnapshotState struct {
	Sequence        int64
	StateHash       [32]byte
	SequenceState   map[string]int64
	IdempotencyKeys []string
}

// CreateSnapshotState captures the engine's resumable state.
func (e *Engine) CreateSnapshotState() *SnapshotState {
	return &SnapshotState{
		Sequence:        e.sequence,
		StateHash:       e.hasher.GetPrevHash(),
		SequenceState:   e.seqValidator.State(),
		IdempotencyKeys: e.idempotency.Keys(),
	}
}

// RestoreSnapshotState resumes the engine from captured state. The record
// store must be restored separately before operations are applied.
func (e *Engine) RestoreSnapshotState(snap *SnapshotState) {
	e.sequence = snap.Sequence
	e.hasher.Restore(snap.StateHash)
	e.seqValidator.RestoreState(snap.SequenceState)
	e.idempotency.WarmLRU(snap.IdempotencyKeys)
}

// StateHash returns the current hash-chain tip.
func (e *Engine) StateHash() [32]byte {
	return e.hasher.GetPrevHash()
}
