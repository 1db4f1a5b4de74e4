package op

import (
	"github.com/google/uuid"

	"GameLedger/internal/addr"
	"GameLedger/internal/record"
)

// Kind discriminator for operation payloads
type Kind int32

const (
	KindUnknown Kind = iota
	KindCreateProfile
	KindUpdateProfile
	KindCloseProfile
	KindStartSession
	KindEndSession
	KindListAsset
	KindUpdateListing
	KindCancelListing
	KindExecuteSwap
	KindCreateSupply
	KindCreateVault
	KindMintSupply
	KindBurnSupply
	KindTransferBalance
	KindRewardLevel
	KindRewardTreasure
	KindDailyBonus
	KindCreateCollection
	KindMintItem
	KindMintSpecialItem
	KindEquipItem
)

func (k Kind) String() string {
	switch k {
	case KindCreateProfile:
		return "CreateProfile"
	case KindUpdateProfile:
		return "UpdateProfile"
	case KindCloseProfile:
		return "CloseProfile"
	case KindStartSession:
		return "StartSession"
	case KindEndSession:
		return "EndSession"
	case KindListAsset:
		return "ListAsset"
	case KindUpdateListing:
		return "UpdateListing"
	case KindCancelListing:
		return "CancelListing"
	case KindExecuteSwap:
		return "ExecuteSwap"
	case KindCreateSupply:
		return "CreateSupply"
	case KindCreateVault:
		return "CreateVault"
	case KindMintSupply:
		return "MintSupply"
	case KindBurnSupply:
		return "BurnSupply"
	case KindTransferBalance:
		return "TransferBalance"
	case KindRewardLevel:
		return "RewardLevel"
	case KindRewardTreasure:
		return "RewardTreasure"
	case KindDailyBonus:
		return "DailyBonus"
	case KindCreateCollection:
		return "CreateCollection"
	case KindMintItem:
		return "MintItem"
	case KindMintSpecialItem:
		return "MintSpecialItem"
	case KindEquipItem:
		return "EquipItem"
	default:
		return "Unknown"
	}
}

// RecordRef names a record an operation touches: the claimed identifier,
// the seeds that supposedly produced it, and the verification token. The
// engine re-derives and compares before trusting the identifier.
type RecordRef struct {
	ID    addr.Identifier
	Token uint8
	Seeds [][]byte
}

// Operation is the interface all operation requests implement.
type Operation interface {
	// OpKind returns the discriminator
	OpKind() Kind

	// IdempotencyKey returns the stable dedup key
	IdempotencyKey() string

	// Signer returns the identity presented as authority for this operation
	Signer() record.Identity

	// Partition returns the ordering partition (per-signer)
	Partition() string

	// SourceSequence returns the upstream per-partition ordering key
	SourceSequence() int64

	// OpTime returns the versioned input timestamp (unix seconds).
	// The engine never reads the wall clock.
	OpTime() int64
}

// Base carries the fields common to every operation request.
type Base struct {
	OpID      uuid.UUID
	Actor     record.Identity
	Sequence  int64
	Timestamp int64
}

func (b *Base) IdempotencyKey() string { return b.OpID.String() }

func (b *Base) Signer() record.Identity { return b.Actor }

func (b *Base) Partition() string { return "signer:" + b.Actor.String() }

func (b *Base) SourceSequence() int64 { return b.Sequence }

func (b *Base) OpTime() int64 { return b.Timestamp }
