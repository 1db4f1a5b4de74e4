package ledger

import (
	"errors"
	"fmt"
)

// Code is the discrete error code surfaced to callers. Every failed
// operation reports exactly one code and changes no record.
type Code uint8

const (
	CodeUnknown Code = iota

	// Validation
	CodeEmptyName
	CodeNameTooLong
	CodeInvalidHealth
	CodeInvalidLevel
	CodeInvalidStamina
	CodeInvalidRarity
	CodeInvalidAmount
	CodeAmountTooLarge
	CodeInvalidIsland
	CodeInvalidItemID
	CodeInvalidReward
	CodeInvalidTreasure

	// Authorization
	CodeUnauthorized
	CodeNotItemOwner

	// State
	CodeAlreadyEquipped
	CodeAlreadyListed
	CodeSessionAlreadyEnded
	CodeSessionNotActive
	CodeListingNotActive

	// Arithmetic
	CodeOverflow
	CodeInsufficientBalance

	// Integrity
	CodeWrongSettlementAsset
	CodeIdentifierMismatch
	CodeMissingBossProof
	CodeMissingTreasuryProof
	CodeAlreadyExists
	CodeRecordClosed
	CodeRecordNotFound
	CodeWrongRecordKind
)

func (c Code) String() string {
	switch c {
	case CodeEmptyName:
		return "EmptyName"
	case CodeNameTooLong:
		return "NameTooLong"
	case CodeInvalidHealth:
		return "InvalidHealth"
	case CodeInvalidLevel:
		return "InvalidLevel"
	case CodeInvalidStamina:
		return "InvalidStamina"
	case CodeInvalidRarity:
		return "InvalidRarity"
	case CodeInvalidAmount:
		return "InvalidAmount"
	case CodeAmountTooLarge:
		return "AmountTooLarge"
	case CodeInvalidIsland:
		return "InvalidIsland"
	case CodeInvalidItemID:
		return "InvalidItemId"
	case CodeInvalidReward:
		return "InvalidReward"
	case CodeInvalidTreasure:
		return "InvalidTreasure"
	case CodeUnauthorized:
		return "Unauthorized"
	case CodeNotItemOwner:
		return "NotItemOwner"
	case CodeAlreadyEquipped:
		return "AlreadyEquipped"
	case CodeAlreadyListed:
		return "AlreadyListed"
	case CodeSessionAlreadyEnded:
		return "SessionAlreadyEnded"
	case CodeSessionNotActive:
		return "SessionNotActive"
	case CodeListingNotActive:
		return "ListingNotActive"
	case CodeOverflow:
		return "Overflow"
	case CodeInsufficientBalance:
		return "InsufficientBalance"
	case CodeWrongSettlementAsset:
		return "WrongSettlementAsset"
	case CodeIdentifierMismatch:
		return "IdentifierMismatch"
	case CodeMissingBossProof:
		return "MissingBossProof"
	case CodeMissingTreasuryProof:
		return "MissingTreasuryProof"
	case CodeAlreadyExists:
		return "AlreadyExists"
	case CodeRecordClosed:
		return "RecordClosed"
	case CodeRecordNotFound:
		return "RecordNotFound"
	case CodeWrongRecordKind:
		return "WrongRecordKind"
	default:
		return "Unknown"
	}
}

// Error is an operation failure: a discrete code plus message.
type Error struct {
	Code Code
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Errf builds an operation error.
func Errf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the code from an operation error chain, or CodeUnknown.
func CodeOf(err error) Code {
	var opErr *Error
	if errors.As(err, &opErr) {
		return opErr.Code
	}
	return CodeUnknown
}
