package op

import (
	"time"

	"GameLedger/internal/record"
)

// Envelope wraps every applied operation in the durable log.
type Envelope struct {
	// Global monotonic sequence assigned by the engine
	Sequence int64

	// Stable idempotency key from upstream
	IdempotencyKey string

	// Operation kind discriminator
	Kind Kind

	// Identity that signed the operation
	Signer record.Identity

	// Versioned input timestamp (NOT wall-clock)
	Timestamp time.Time

	// Upstream per-partition sequence
	SourceSequence int64

	// JSON-encoded operation payload
	Payload []byte

	// SHA-256 of state AFTER applying this operation
	StateHash [32]byte

	// Previous operation's state hash (chain integrity)
	PrevHash [32]byte
}
