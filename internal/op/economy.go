package op

import "GameLedger/internal/record"

// CreateSupply initializes a TokenSupply record for a mint. The signer
// becomes the supply authority.
type CreateSupply struct {
	Base
	Supply   RecordRef
	Mint     record.Identity
	Decimals uint8
}

func (o *CreateSupply) OpKind() Kind { return KindCreateSupply }

// CreateVault initializes an empty Vault owned by the signer, addressed
// per mint.
type CreateVault struct {
	Base
	Vault RecordRef
	Mint  record.Identity
}

func (o *CreateVault) OpKind() Kind { return KindCreateVault }

// MintSupply mints amount into the vault and the total supply together.
type MintSupply struct {
	Base
	Supply RecordRef
	Vault  RecordRef
	Amount uint64
}

func (o *MintSupply) OpKind() Kind { return KindMintSupply }

// BurnSupply burns amount from the vault and the total supply together.
type BurnSupply struct {
	Base
	Supply RecordRef
	Vault  RecordRef
	Amount uint64
}

func (o *BurnSupply) OpKind() Kind { return KindBurnSupply }

// TransferBalance moves amount between two vaults. The signer must own
// the source vault.
type TransferBalance struct {
	Base
	FromVault RecordRef
	ToVault   RecordRef
	Amount    uint64
}

func (o *TransferBalance) OpKind() Kind { return KindTransferBalance }

// RewardLevel mints the scheduled reward for completing a level.
type RewardLevel struct {
	Base
	Supply RecordRef
	Vault  RecordRef
	Level  uint8
}

func (o *RewardLevel) OpKind() Kind { return KindRewardLevel }

// RewardTreasure mints the scheduled reward for finding a treasure.
type RewardTreasure struct {
	Base
	Supply       RecordRef
	Vault        RecordRef
	TreasureType uint8
}

func (o *RewardTreasure) OpKind() Kind { return KindRewardTreasure }

// DailyBonus mints the fixed daily login bonus.
type DailyBonus struct {
	Base
	Supply RecordRef
	Vault  RecordRef
}

func (o *DailyBonus) OpKind() Kind { return KindDailyBonus }
