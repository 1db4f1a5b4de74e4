package op

import (
	"encoding/json"
	"fmt"
)

// Decode unmarshals an operation payload from the durable log back into
// its typed form. Payloads are written by the engine with encoding/json,
// so this is the exact inverse and round-trips every field.
func Decode(kind string, data []byte) (Operation, error) {
	var o Operation
	switch kind {
	case "CreateSupply":
		o = &CreateSupply{}
	case "CreateVault":
		o = &CreateVault{}
	case "MintSupply":
		o = &MintSupply{}
	case "BurnSupply":
		o = &BurnSupply{}
	case "TransferBalance":
		o = &TransferBalance{}
	case "RewardLevel":
		o = &RewardLevel{}
	case "RewardTreasure":
		o = &RewardTreasure{}
	case "DailyBonus":
		o = &DailyBonus{}
	case "CreateProfile":
		o = &CreateProfile{}
	case "UpdateProfile":
		o = &UpdateProfile{}
	case "CloseProfile":
		o = &CloseProfile{}
	case "StartSession":
		o = &StartSession{}
	case "EndSession":
		o = &EndSession{}
	case "ListAsset":
		o = &ListAsset{}
	case "UpdateListing":
		o = &UpdateListing{}
	case "CancelListing":
		o = &CancelListing{}
	case "ExecuteSwap":
		o = &ExecuteSwap{}
	case "CreateCollection":
		o = &CreateCollection{}
	case "MintItem":
		o = &MintItem{}
	case "MintSpecialItem":
		o = &MintSpecialItem{}
	case "EquipItem":
		o = &EquipItem{}
	default:
		return nil, fmt.Errorf("unknown operation kind %q", kind)
	}

	if err := json.Unmarshal(data, o); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return o, nil
}
