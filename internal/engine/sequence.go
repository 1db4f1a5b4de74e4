package engine

import (
	"fmt"
)

// SequenceValidator validates source sequences per partition (one partition
// per signer). Operations on the same records are serialized upstream; the
// engine only checks that each signer's stream arrives gapless and in order.
// Not thread-safe — only accessed from the single-threaded engine.
type SequenceValidator struct {
	expectedNextSeq map[string]int64 // partition -> next expected sequence
}

func NewSequenceValidator() *SequenceValidator {
	return &SequenceValidator{
		expectedNextSeq: make(map[string]int64),
	}
}

// ValidateSequence checks source sequence ordering
func (sv *SequenceValidator) ValidateSequence(
	partition string,
	sourceSequence int64,
	isDuplicate bool,
) error {
	expected := sv.expectedNextSeq[partition]

	if sourceSequence < expected {
		if isDuplicate {
			// Already processed - expected redelivery
			return nil
		}
		return fmt.Errorf("out-of-order operation: partition=%s, expected=%d, got=%d",
			partition, expected, sourceSequence)
	}

	if sourceSequence == expected {
		sv.expectedNextSeq[partition] = expected + 1
		return nil
	}

	return fmt.Errorf("sequence gap: partition=%s, expected=%d, got=%d",
		partition, expected, sourceSequence)
}

// GetExpectedSequence returns next expected sequence for a partition
func (sv *SequenceValidator) GetExpectedSequence(partition string) int64 {
	return sv.expectedNextSeq[partition]
}

// SetExpectedSequence initializes expected sequence (used during recovery)
func (sv *SequenceValidator) SetExpectedSequence(partition string, seq int64) {
	sv.expectedNextSeq[partition] = seq
}

// State returns a copy of every partition's next expected sequence.
func (sv *SequenceValidator) State() map[string]int64 {
	state := make(map[string]int64, len(sv.expectedNextSeq))
	for partition, seq := range sv.expectedNextSeq {
		state[partition] = seq
	}
	return state
}

// RestoreState replaces all partition counters (used during recovery).
func (sv *SequenceValidator) RestoreState(state map[string]int64) {
	sv.expectedNextSeq = make(map[string]int64, len(state))
	for partition, seq := range state {
		sv.expectedNextSeq[partition] = seq
	}
}
