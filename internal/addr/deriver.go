// Package addr consumes the deterministic address space: the mapping from
// seed tuples to record identifiers. The core never trusts a caller-supplied
// identifier directly; every operation carries the seeds it claims produced
// the identifier plus a verification token, and both are re-derived and
// compared before the record is touched.
package addr

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Identifier is a deterministic 32-byte address for a record.
type Identifier [32]byte

func (id Identifier) String() string {
	return hex.EncodeToString(id[:])
}

// IdentifierFromString parses a 64-char hex identifier.
func IdentifierFromString(s string) (Identifier, error) {
	var id Identifier
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("invalid identifier %q: %w", s, err)
	}
	if len(b) != len(id) {
		return id, fmt.Errorf("invalid identifier length: got %d bytes, want %d", len(b), len(id))
	}
	copy(id[:], b)
	return id, nil
}

// Deriver maps a seed tuple to an identifier plus a verification token.
// Same seeds always yield the same pair; distinct seeds never collide
// (delegated guarantee of the address space).
type Deriver interface {
	Derive(seeds ...[]byte) (Identifier, uint8)
}

// SHA256Deriver is the default deriver: identifier = SHA-256 over the
// length-prefixed seed tuple, token = final hash byte.
type SHA256Deriver struct{}

func NewSHA256Deriver() *SHA256Deriver {
	return &SHA256Deriver{}
}

func (d *SHA256Deriver) Derive(seeds ...[]byte) (Identifier, uint8) {
	hasher := sha256.New()
	for _, seed := range seeds {
		// Length prefix prevents seed-boundary ambiguity
		var lenBuf [4]byte
		n := len(seed)
		lenBuf[0] = byte(n)
		lenBuf[1] = byte(n >> 8)
		lenBuf[2] = byte(n >> 16)
		lenBuf[3] = byte(n >> 24)
		hasher.Write(lenBuf[:])
		hasher.Write(seed)
	}

	var id Identifier
	copy(id[:], hasher.Sum(nil))
	return id, id[31]
}

// Verify re-derives the identifier from the supplied seeds and checks both
// the identifier and the token match what the caller presented.
func Verify(d Deriver, claimed Identifier, token uint8, seeds ...[]byte) error {
	derived, wantToken := d.Derive(seeds...)
	if derived != claimed {
		return fmt.Errorf("identifier mismatch: derived %s from seeds, caller claimed %s", derived, claimed)
	}
	if token != wantToken {
		return fmt.Errorf("verification token mismatch for %s: got %d, want %d", claimed, token, wantToken)
	}
	return nil
}
