package record

import (
	"encoding/hex"
	"fmt"
)

// Identity is an opaque 32-byte value identifying a signer or record owner.
type Identity [32]byte

// ZeroIdentity is the placeholder for "no party" (e.g. the PvE opponent slot).
var ZeroIdentity Identity

func (id Identity) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether the identity is the zero placeholder.
func (id Identity) IsZero() bool {
	return id == ZeroIdentity
}

// IdentityFromString parses a 64-char hex identity.
func IdentityFromString(s string) (Identity, error) {
	var id Identity
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("invalid identity %q: %w", s, err)
	}
	if len(b) != len(id) {
		return id, fmt.Errorf("invalid identity length: got %d bytes, want %d", len(b), len(id))
	}
	copy(id[:], b)
	return id, nil
}
