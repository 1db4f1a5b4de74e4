package ledger

import (
	"GameLedger/internal/record"
)

// AuthorityGate verifies a presented signer against a record's recorded
// authority before any mutation. Every mutating operation on an existing
// record passes through here; creation binds the signer as authority with
// no prior check.
type AuthorityGate struct{}

func NewAuthorityGate() *AuthorityGate {
	return &AuthorityGate{}
}

// Verify returns Unauthorized unless signer matches the record's authority.
func (g *AuthorityGate) Verify(rec record.Record, signer record.Identity) error {
	if rec.Authority() != signer {
		return Errf(CodeUnauthorized, "signer %s is not the authority of %s record", signer, rec.Kind())
	}
	return nil
}

// VerifyItemOwner is the item-flavored check: same comparison, item-specific
// code so callers can distinguish marketplace ownership failures.
func (g *AuthorityGate) VerifyItemOwner(item *record.Item, signer record.Identity) error {
	if item.Owner != signer {
		return Errf(CodeNotItemOwner, "signer %s does not own item asset %s", signer, item.Asset)
	}
	return nil
}
