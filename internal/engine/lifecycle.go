package engine

import (
	"GameLedger/internal/addr"
	"GameLedger/internal/ledger"
	"GameLedger/internal/record"
)

// Reclaimed describes the backing storage a close released, credited to a
// caller-named recipient.
type Reclaimed struct {
	Identifier addr.Identifier
	Recipient  record.Identity
	Bytes      int
}

// LifecycleManager creates and destroys records. Creation binds the signer
// as authority and fails if the identifier is occupied or tombstoned;
// close requires the authority, tombstones the identifier forever, and
// returns the reclaimed storage.
type LifecycleManager struct {
	store *ledger.Store
	gate  *ledger.AuthorityGate
}

func NewLifecycleManager(store *ledger.Store, gate *ledger.AuthorityGate) *LifecycleManager {
	return &LifecycleManager{store: store, gate: gate}
}

// StageCreate validates that id is free and stages the new record.
func (lm *LifecycleManager) StageCreate(j *ledger.Journal, id addr.Identifier, rec record.Record) error {
	if err := lm.store.CheckCreatable(id); err != nil {
		return err
	}
	j.StageCreate(id, rec)
	return nil
}

// StageClose verifies authority and stages destruction of the record.
// A vault may only be closed empty — destroying balance would break
// conservation against its supply.
func (lm *LifecycleManager) StageClose(
	j *ledger.Journal,
	id addr.Identifier,
	rec record.Record,
	signer record.Identity,
	recipient record.Identity,
) (Reclaimed, error) {
	if err := lm.gate.Verify(rec, signer); err != nil {
		return Reclaimed{}, err
	}
	if v, ok := rec.(*record.Vault); ok && v.Balance != 0 {
		return Reclaimed{}, ledger.Errf(ledger.CodeInsufficientBalance,
			"vault %s holds %d tokens and cannot be closed", id, v.Balance)
	}

	j.StageClose(id, rec)
	return Reclaimed{
		Identifier: id,
		Recipient:  recipient,
		Bytes:      len(rec.CanonicalBytes()),
	}, nil
}
