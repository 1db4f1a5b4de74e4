package query

// BalanceResponse is a vault balance read model row.
type BalanceResponse struct {
	RecordID     string `json:"record_id"`
	Owner        string `json:"owner"`
	Balance      int64  `json:"balance"`
	AsOfSequence int64  `json:"as_of_sequence"`
}

// ProfileResponse is a fighter profile read model row.
type ProfileResponse struct {
	RecordID     string `json:"record_id"`
	Owner        string `json:"owner"`
	Name         string `json:"name"`
	Health       int32  `json:"health"`
	Stamina      int32  `json:"stamina"`
	Experience   int64  `json:"experience"`
	Level        int32  `json:"level"`
	Tokens       int64  `json:"tokens"`
	AsOfSequence int64  `json:"as_of_sequence"`
}

// ListingResponse is a marketplace listing read model row.
type ListingResponse struct {
	RecordID     string `json:"record_id"`
	Seller       string `json:"seller"`
	Asset        string `json:"asset"`
	Price        int64  `json:"price"`
	Active       bool   `json:"active"`
	Sold         bool   `json:"sold"`
	AsOfSequence int64  `json:"as_of_sequence"`
}

// OperationHistoryEntry is one durable-log operation for API queries.
type OperationHistoryEntry struct {
	Sequence       int64  `json:"sequence"`
	OpKind         string `json:"op_kind"`
	IdempotencyKey string `json:"idempotency_key"`
	Signer         string `json:"signer"`
	Payload        []byte `json:"payload"`
	Timestamp      int64  `json:"timestamp"`
}

// MutationHistoryEntry is one journaled record change for API queries.
type MutationHistoryEntry struct {
	JournalID    string `json:"journal_id"`
	OpRef        string `json:"op_ref"`
	Sequence     int64  `json:"sequence"`
	RecordID     string `json:"record_id"`
	RecordKind   string `json:"record_kind"`
	MutationType string `json:"mutation_type"`
	Timestamp    int64  `json:"timestamp"`
}

// IntegrityReport is the result of an integrity verification check.
type IntegrityReport struct {
	IsHealthy       bool    `json:"is_healthy"`
	HashChainBreaks []int64 `json:"hash_chain_breaks,omitempty"`
	OrphanMutations []int64 `json:"orphan_mutations,omitempty"`
}
