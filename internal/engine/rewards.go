package engine

import "GameLedger/internal/ledger"

// Fixed reward schedule. Rewards are minted into existence: the amount is
// added to both the total supply and the recipient vault.

// DailyBonusAmount is the fixed daily login bonus.
const DailyBonusAmount uint64 = 55

var levelRewardTiers = []struct {
	maxLevel uint8
	amount   uint64
}{
	{5, 100},
	{10, 250},
	{15, 500},
	{20, 1000},
}

// levelReward returns the reward for completing a level. Levels outside
// the defined tiers are invalid.
func levelReward(level uint8) (uint64, error) {
	if level == 0 {
		return 0, ledger.Errf(ledger.CodeInvalidLevel, "level %d has no reward tier", level)
	}
	for _, tier := range levelRewardTiers {
		if level <= tier.maxLevel {
			return tier.amount, nil
		}
	}
	return 0, ledger.Errf(ledger.CodeInvalidLevel, "level %d has no reward tier", level)
}

var treasureRewards = map[uint8]uint64{
	1: 150,
	2: 350,
	3: 750,
	4: 1500,
}

// treasureReward returns the reward for a treasure-type code 1-4.
func treasureReward(treasureType uint8) (uint64, error) {
	amount, ok := treasureRewards[treasureType]
	if !ok {
		return 0, ledger.Errf(ledger.CodeInvalidTreasure, "unknown treasure type %d", treasureType)
	}
	return amount, nil
}
