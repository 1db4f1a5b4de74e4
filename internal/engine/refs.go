package engine

import (
	"bytes"

	"GameLedger/internal/addr"
	"GameLedger/internal/ledger"
	"GameLedger/internal/op"
	"GameLedger/internal/record"
)

// Reference verification. Every operation supplies, per touched record, the
// identifier it claims plus the seeds and token that supposedly produced
// it; the engine re-derives before trusting the identifier, and for creates
// additionally pins the seeds to the canonical tuple for the operation so
// records cannot be planted at arbitrary addresses.

func (e *Engine) verifyRef(ref op.RecordRef) error {
	if err := addr.Verify(e.deriver, ref.ID, ref.Token, ref.Seeds...); err != nil {
		return ledger.Errf(ledger.CodeIdentifierMismatch, "%v", err)
	}
	return nil
}

func (e *Engine) verifyCreateRef(ref op.RecordRef, want [][]byte) error {
	if len(ref.Seeds) != len(want) {
		return ledger.Errf(ledger.CodeIdentifierMismatch,
			"seed tuple has %d elements, want %d", len(ref.Seeds), len(want))
	}
	for i := range want {
		if !bytes.Equal(ref.Seeds[i], want[i]) {
			return ledger.Errf(ledger.CodeIdentifierMismatch,
				"seed %d does not match the canonical tuple for this operation", i)
		}
	}
	return e.verifyRef(ref)
}

// --- typed loaders: verify ref, fetch, assert kind ---

func (e *Engine) loadVault(ref op.RecordRef) (*record.Vault, error) {
	rec, err := e.loadRecord(ref)
	if err != nil {
		return nil, err
	}
	v, ok := rec.(*record.Vault)
	if !ok {
		return nil, wrongKind(ref.ID, rec, record.KindVault)
	}
	return v, nil
}

func (e *Engine) loadSupply(ref op.RecordRef) (*record.TokenSupply, error) {
	rec, err := e.loadRecord(ref)
	if err != nil {
		return nil, err
	}
	s, ok := rec.(*record.TokenSupply)
	if !ok {
		return nil, wrongKind(ref.ID, rec, record.KindTokenSupply)
	}
	return s, nil
}

func (e *Engine) loadProfile(ref op.RecordRef) (*record.Profile, error) {
	rec, err := e.loadRecord(ref)
	if err != nil {
		return nil, err
	}
	p, ok := rec.(*record.Profile)
	if !ok {
		return nil, wrongKind(ref.ID, rec, record.KindProfile)
	}
	return p, nil
}

func (e *Engine) loadSession(ref op.RecordRef) (*record.Session, error) {
	rec, err := e.loadRecord(ref)
	if err != nil {
		return nil, err
	}
	s, ok := rec.(*record.Session)
	if !ok {
		return nil, wrongKind(ref.ID, rec, record.KindSession)
	}
	return s, nil
}

func (e *Engine) loadListing(ref op.RecordRef) (*record.Listing, error) {
	rec, err := e.loadRecord(ref)
	if err != nil {
		return nil, err
	}
	l, ok := rec.(*record.Listing)
	if !ok {
		return nil, wrongKind(ref.ID, rec, record.KindListing)
	}
	return l, nil
}

func (e *Engine) loadItem(ref op.RecordRef) (*record.Item, error) {
	rec, err := e.loadRecord(ref)
	if err != nil {
		return nil, err
	}
	i, ok := rec.(*record.Item)
	if !ok {
		return nil, wrongKind(ref.ID, rec, record.KindItem)
	}
	return i, nil
}

func (e *Engine) loadCollection(ref op.RecordRef) (*record.Collection, error) {
	rec, err := e.loadRecord(ref)
	if err != nil {
		return nil, err
	}
	c, ok := rec.(*record.Collection)
	if !ok {
		return nil, wrongKind(ref.ID, rec, record.KindCollection)
	}
	return c, nil
}

func (e *Engine) loadRecord(ref op.RecordRef) (record.Record, error) {
	if err := e.verifyRef(ref); err != nil {
		return nil, err
	}
	return e.store.Get(ref.ID)
}

func wrongKind(id addr.Identifier, got record.Record, want record.Kind) error {
	return ledger.Errf(ledger.CodeWrongRecordKind,
		"record at %s is %s, want %s", id, got.Kind(), want)
}
