package ingestion

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"GameLedger/internal/addr"
	"GameLedger/internal/op"
	"GameLedger/internal/record"
)

// ParseOperation converts a raw JSON message into a typed operation.
// Every message carries an "op" discriminator plus the common header
// fields; the payload shape depends on the kind. Field names use
// snake_case to match upstream game-service producers.
func ParseOperation(data []byte) (op.Operation, error) {
	var head headerJSON
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}

	switch head.Op {
	case "CreateSupply":
		return parseCreateSupply(data)
	case "CreateVault":
		return parseCreateVault(data)
	case "MintSupply":
		return parseMintSupply(data)
	case "BurnSupply":
		return parseBurnSupply(data)
	case "TransferBalance":
		return parseTransferBalance(data)
	case "RewardLevel":
		return parseRewardLevel(data)
	case "RewardTreasure":
		return parseRewardTreasure(data)
	case "DailyBonus":
		return parseDailyBonus(data)
	case "CreateProfile":
		return parseCreateProfile(data)
	case "UpdateProfile":
		return parseUpdateProfile(data)
	case "CloseProfile":
		return parseCloseProfile(data)
	case "StartSession":
		return parseStartSession(data)
	case "EndSession":
		return parseEndSession(data)
	case "ListAsset":
		return parseListAsset(data)
	case "UpdateListing":
		return parseUpdateListing(data)
	case "CancelListing":
		return parseCancelListing(data)
	case "ExecuteSwap":
		return parseExecuteSwap(data)
	case "CreateCollection":
		return parseCreateCollection(data)
	case "MintItem":
		return parseMintItem(data)
	case "MintSpecialItem":
		return parseMintSpecialItem(data)
	case "EquipItem":
		return parseEquipItem(data)
	default:
		return nil, fmt.Errorf("unknown operation %q", head.Op)
	}
}

// --- JSON wire formats ---
// Identities and identifiers travel as 64-char hex strings; record-ref
// seeds are base64 byte arrays (encoding/json's []byte convention).

type headerJSON struct {
	Op        string `json:"op"`
	OpID      string `json:"op_id"`
	Signer    string `json:"signer"`
	Sequence  int64  `json:"sequence"`
	Timestamp int64  `json:"timestamp"`
}

func (h *headerJSON) toBase() (op.Base, error) {
	opID, err := uuid.Parse(h.OpID)
	if err != nil {
		return op.Base{}, fmt.Errorf("parse op_id: %w", err)
	}
	signer, err := record.IdentityFromString(h.Signer)
	if err != nil {
		return op.Base{}, fmt.Errorf("parse signer: %w", err)
	}
	return op.Base{
		OpID:      opID,
		Actor:     signer,
		Sequence:  h.Sequence,
		Timestamp: h.Timestamp,
	}, nil
}

type recordRefJSON struct {
	ID    string   `json:"id"`
	Token uint8    `json:"token"`
	Seeds [][]byte `json:"seeds"`
}

func (r *recordRefJSON) toRef() (op.RecordRef, error) {
	id, err := addr.IdentifierFromString(r.ID)
	if err != nil {
		return op.RecordRef{}, fmt.Errorf("parse ref id: %w", err)
	}
	return op.RecordRef{ID: id, Token: r.Token, Seeds: r.Seeds}, nil
}

func parseIdentity(field, s string) (record.Identity, error) {
	id, err := record.IdentityFromString(s)
	if err != nil {
		return record.ZeroIdentity, fmt.Errorf("parse %s: %w", field, err)
	}
	return id, nil
}

// --- economy ---

type createSupplyJSON struct {
	headerJSON
	Supply   recordRefJSON `json:"supply"`
	Mint     string        `json:"mint"`
	Decimals uint8         `json:"decimals"`
}

func parseCreateSupply(data []byte) (*op.CreateSupply, error) {
	var j createSupplyJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse CreateSupply: %w", err)
	}
	base, err := j.toBase()
	if err != nil {
		return nil, err
	}
	supply, err := j.Supply.toRef()
	if err != nil {
		return nil, err
	}
	mint, err := parseIdentity("mint", j.Mint)
	if err != nil {
		return nil, err
	}
	return &op.CreateSupply{Base: base, Supply: supply, Mint: mint, Decimals: j.Decimals}, nil
}

type createVaultJSON struct {
	headerJSON
	Vault recordRefJSON `json:"vault"`
	Mint  string        `json:"mint"`
}

func parseCreateVault(data []byte) (*op.CreateVault, error) {
	var j createVaultJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse CreateVault: %w", err)
	}
	base, err := j.toBase()
	if err != nil {
		return nil, err
	}
	vault, err := j.Vault.toRef()
	if err != nil {
		return nil, err
	}
	mint, err := parseIdentity("mint", j.Mint)
	if err != nil {
		return nil, err
	}
	return &op.CreateVault{Base: base, Vault: vault, Mint: mint}, nil
}

type supplyVaultAmountJSON struct {
	headerJSON
	Supply recordRefJSON `json:"supply"`
	Vault  recordRefJSON `json:"vault"`
	Amount uint64        `json:"amount"`
}

func (j *supplyVaultAmountJSON) parts() (op.Base, op.RecordRef, op.RecordRef, error) {
	base, err := j.toBase()
	if err != nil {
		return op.Base{}, op.RecordRef{}, op.RecordRef{}, err
	}
	supply, err := j.Supply.toRef()
	if err != nil {
		return op.Base{}, op.RecordRef{}, op.RecordRef{}, err
	}
	vault, err := j.Vault.toRef()
	if err != nil {
		return op.Base{}, op.RecordRef{}, op.RecordRef{}, err
	}
	return base, supply, vault, nil
}

func parseMintSupply(data []byte) (*op.MintSupply, error) {
	var j supplyVaultAmountJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse MintSupply: %w", err)
	}
	base, supply, vault, err := j.parts()
	if err != nil {
		return nil, err
	}
	return &op.MintSupply{Base: base, Supply: supply, Vault: vault, Amount: j.Amount}, nil
}

func parseBurnSupply(data []byte) (*op.BurnSupply, error) {
	var j supplyVaultAmountJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse BurnSupply: %w", err)
	}
	base, supply, vault, err := j.parts()
	if err != nil {
		return nil, err
	}
	return &op.BurnSupply{Base: base, Supply: supply, Vault: vault, Amount: j.Amount}, nil
}

type transferJSON struct {
	headerJSON
	FromVault recordRefJSON `json:"from_vault"`
	ToVault   recordRefJSON `json:"to_vault"`
	Amount    uint64        `json:"amount"`
}

func parseTransferBalance(data []byte) (*op.TransferBalance, error) {
	var j transferJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse TransferBalance: %w", err)
	}
	base, err := j.toBase()
	if err != nil {
		return nil, err
	}
	from, err := j.FromVault.toRef()
	if err != nil {
		return nil, err
	}
	to, err := j.ToVault.toRef()
	if err != nil {
		return nil, err
	}
	return &op.TransferBalance{Base: base, FromVault: from, ToVault: to, Amount: j.Amount}, nil
}

type rewardLevelJSON struct {
	headerJSON
	Supply recordRefJSON `json:"supply"`
	Vault  recordRefJSON `json:"vault"`
	Level  uint8         `json:"level"`
}

func parseRewardLevel(data []byte) (*op.RewardLevel, error) {
	var j rewardLevelJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse RewardLevel: %w", err)
	}
	base, err := j.toBase()
	if err != nil {
		return nil, err
	}
	supply, err := j.Supply.toRef()
	if err != nil {
		return nil, err
	}
	vault, err := j.Vault.toRef()
	if err != nil {
		return nil, err
	}
	return &op.RewardLevel{Base: base, Supply: supply, Vault: vault, Level: j.Level}, nil
}

type rewardTreasureJSON struct {
	headerJSON
	Supply       recordRefJSON `json:"supply"`
	Vault        recordRefJSON `json:"vault"`
	TreasureType uint8         `json:"treasure_type"`
}

func parseRewardTreasure(data []byte) (*op.RewardTreasure, error) {
	var j rewardTreasureJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse RewardTreasure: %w", err)
	}
	base, err := j.toBase()
	if err != nil {
		return nil, err
	}
	supply, err := j.Supply.toRef()
	if err != nil {
		return nil, err
	}
	vault, err := j.Vault.toRef()
	if err != nil {
		return nil, err
	}
	return &op.RewardTreasure{Base: base, Supply: supply, Vault: vault, TreasureType: j.TreasureType}, nil
}

type dailyBonusJSON struct {
	headerJSON
	Supply recordRefJSON `json:"supply"`
	Vault  recordRefJSON `json:"vault"`
}

func parseDailyBonus(data []byte) (*op.DailyBonus, error) {
	var j dailyBonusJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse DailyBonus: %w", err)
	}
	base, err := j.toBase()
	if err != nil {
		return nil, err
	}
	supply, err := j.Supply.toRef()
	if err != nil {
		return nil, err
	}
	vault, err := j.Vault.toRef()
	if err != nil {
		return nil, err
	}
	return &op.DailyBonus{Base: base, Supply: supply, Vault: vault}, nil
}

// --- profiles and sessions ---

type createProfileJSON struct {
	headerJSON
	Profile recordRefJSON `json:"profile"`
	Name    string        `json:"name"`
}

func parseCreateProfile(data []byte) (*op.CreateProfile, error) {
	var j createProfileJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse CreateProfile: %w", err)
	}
	base, err := j.toBase()
	if err != nil {
		return nil, err
	}
	profile, err := j.Profile.toRef()
	if err != nil {
		return nil, err
	}
	return &op.CreateProfile{Base: base, Profile: profile, Name: j.Name}, nil
}

type updateProfileJSON struct {
	headerJSON
	Profile    recordRefJSON `json:"profile"`
	Health     uint16        `json:"health"`
	Stamina    uint16        `json:"stamina"`
	Experience uint32        `json:"experience"`
	Level      uint8         `json:"level"`
	Tokens     uint64        `json:"tokens"`
}

func parseUpdateProfile(data []byte) (*op.UpdateProfile, error) {
	var j updateProfileJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse UpdateProfile: %w", err)
	}
	base, err := j.toBase()
	if err != nil {
		return nil, err
	}
	profile, err := j.Profile.toRef()
	if err != nil {
		return nil, err
	}
	return &op.UpdateProfile{
		Base:       base,
		Profile:    profile,
		Health:     j.Health,
		Stamina:    j.Stamina,
		Experience: j.Experience,
		Level:      j.Level,
		Tokens:     j.Tokens,
	}, nil
}

type closeProfileJSON struct {
	headerJSON
	Profile   recordRefJSON `json:"profile"`
	Recipient string        `json:"recipient"`
}

func parseCloseProfile(data []byte) (*op.CloseProfile, error) {
	var j closeProfileJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse CloseProfile: %w", err)
	}
	base, err := j.toBase()
	if err != nil {
		return nil, err
	}
	profile, err := j.Profile.toRef()
	if err != nil {
		return nil, err
	}
	recipient, err := parseIdentity("recipient", j.Recipient)
	if err != nil {
		return nil, err
	}
	return &op.CloseProfile{Base: base, Profile: profile, Recipient: recipient}, nil
}

type startSessionJSON struct {
	headerJSON
	Session   recordRefJSON `json:"session"`
	SessionID uint64        `json:"session_id"`
	Opponent  string        `json:"opponent,omitempty"`
	Mode      string        `json:"mode"` // "pve" or "pvp"
}

func parseStartSession(data []byte) (*op.StartSession, error) {
	var j startSessionJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse StartSession: %w", err)
	}
	base, err := j.toBase()
	if err != nil {
		return nil, err
	}
	session, err := j.Session.toRef()
	if err != nil {
		return nil, err
	}

	opponent := record.ZeroIdentity
	if j.Opponent != "" {
		opponent, err = parseIdentity("opponent", j.Opponent)
		if err != nil {
			return nil, err
		}
	}

	var mode record.SessionMode
	switch j.Mode {
	case "pve":
		mode = record.ModePvE
	case "pvp":
		mode = record.ModePvP
	default:
		return nil, fmt.Errorf("unknown session mode %q", j.Mode)
	}

	return &op.StartSession{
		Base:      base,
		Session:   session,
		SessionID: j.SessionID,
		Opponent:  opponent,
		Mode:      mode,
	}, nil
}

type endSessionJSON struct {
	headerJSON
	Session recordRefJSON `json:"session"`
	Result  string        `json:"result"` // "a_won", "b_won", or "draw"
}

func parseEndSession(data []byte) (*op.EndSession, error) {
	var j endSessionJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse EndSession: %w", err)
	}
	base, err := j.toBase()
	if err != nil {
		return nil, err
	}
	session, err := j.Session.toRef()
	if err != nil {
		return nil, err
	}

	var result record.SessionResult
	switch j.Result {
	case "a_won":
		result = record.ResultAWon
	case "b_won":
		result = record.ResultBWon
	case "draw":
		result = record.ResultDraw
	default:
		return nil, fmt.Errorf("unknown session result %q", j.Result)
	}

	return &op.EndSession{Base: base, Session: session, Result: result}, nil
}

// --- marketplace ---

type listAssetJSON struct {
	headerJSON
	Listing recordRefJSON `json:"listing"`
	Item    recordRefJSON `json:"item"`
	Price   uint64        `json:"price"`
}

func parseListAsset(data []byte) (*op.ListAsset, error) {
	var j listAssetJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse ListAsset: %w", err)
	}
	base, err := j.toBase()
	if err != nil {
		return nil, err
	}
	listing, err := j.Listing.toRef()
	if err != nil {
		return nil, err
	}
	item, err := j.Item.toRef()
	if err != nil {
		return nil, err
	}
	return &op.ListAsset{Base: base, Listing: listing, Item: item, Price: j.Price}, nil
}

type updateListingJSON struct {
	headerJSON
	Listing recordRefJSON `json:"listing"`
	Item    recordRefJSON `json:"item"`
	Price   uint64        `json:"price"`
	Active  bool          `json:"active"`
}

func parseUpdateListing(data []byte) (*op.UpdateListing, error) {
	var j updateListingJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse UpdateListing: %w", err)
	}
	base, err := j.toBase()
	if err != nil {
		return nil, err
	}
	listing, err := j.Listing.toRef()
	if err != nil {
		return nil, err
	}
	item, err := j.Item.toRef()
	if err != nil {
		return nil, err
	}
	return &op.UpdateListing{Base: base, Listing: listing, Item: item, Price: j.Price, Active: j.Active}, nil
}

type cancelListingJSON struct {
	headerJSON
	Listing recordRefJSON `json:"listing"`
	Item    recordRefJSON `json:"item"`
}

func parseCancelListing(data []byte) (*op.CancelListing, error) {
	var j cancelListingJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse CancelListing: %w", err)
	}
	base, err := j.toBase()
	if err != nil {
		return nil, err
	}
	listing, err := j.Listing.toRef()
	if err != nil {
		return nil, err
	}
	item, err := j.Item.toRef()
	if err != nil {
		return nil, err
	}
	return &op.CancelListing{Base: base, Listing: listing, Item: item}, nil
}

type executeSwapJSON struct {
	headerJSON
	Listing     recordRefJSON `json:"listing"`
	Item        recordRefJSON `json:"item"`
	BuyerVault  recordRefJSON `json:"buyer_vault"`
	SellerVault recordRefJSON `json:"seller_vault"`
	PaymentMint string        `json:"payment_mint"`
}

func parseExecuteSwap(data []byte) (*op.ExecuteSwap, error) {
	var j executeSwapJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse ExecuteSwap: %w", err)
	}
	base, err := j.toBase()
	if err != nil {
		return nil, err
	}
	listing, err := j.Listing.toRef()
	if err != nil {
		return nil, err
	}
	item, err := j.Item.toRef()
	if err != nil {
		return nil, err
	}
	buyerVault, err := j.BuyerVault.toRef()
	if err != nil {
		return nil, err
	}
	sellerVault, err := j.SellerVault.toRef()
	if err != nil {
		return nil, err
	}
	paymentMint, err := parseIdentity("payment_mint", j.PaymentMint)
	if err != nil {
		return nil, err
	}
	return &op.ExecuteSwap{
		Base:        base,
		Listing:     listing,
		Item:        item,
		BuyerVault:  buyerVault,
		SellerVault: sellerVault,
		PaymentMint: paymentMint,
	}, nil
}

// --- items ---

type createCollectionJSON struct {
	headerJSON
	Collection recordRefJSON `json:"collection"`
	Name       string        `json:"name"`
	URI        string        `json:"uri"`
}

func parseCreateCollection(data []byte) (*op.CreateCollection, error) {
	var j createCollectionJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse CreateCollection: %w", err)
	}
	base, err := j.toBase()
	if err != nil {
		return nil, err
	}
	collection, err := j.Collection.toRef()
	if err != nil {
		return nil, err
	}
	return &op.CreateCollection{Base: base, Collection: collection, Name: j.Name, URI: j.URI}, nil
}

type itemStatsJSON struct {
	Attack         uint16 `json:"attack"`
	Defense        uint16 `json:"defense"`
	Speed          uint16 `json:"speed"`
	SpecialAbility uint8  `json:"special_ability"`
}

func (s *itemStatsJSON) toStats() record.ItemStats {
	return record.ItemStats{
		Attack:         s.Attack,
		Defense:        s.Defense,
		Speed:          s.Speed,
		SpecialAbility: s.SpecialAbility,
	}
}

func parseItemKind(s string) (record.ItemKind, error) {
	switch s {
	case "weapon":
		return record.ItemWeapon, nil
	case "ship":
		return record.ItemShip, nil
	case "tool":
		return record.ItemTool, nil
	case "artifact":
		return record.ItemArtifact, nil
	case "cosmetic":
		return record.ItemCosmetic, nil
	default:
		return 0, fmt.Errorf("unknown item kind %q", s)
	}
}

type mintItemJSON struct {
	headerJSON
	Collection recordRefJSON `json:"collection"`
	Item       recordRefJSON `json:"item"`
	Asset      string        `json:"asset"`
	Owner      string        `json:"owner"`
	Name       string        `json:"name"`
	URI        string        `json:"uri"`
	ItemKind   string        `json:"item_kind"`
	Rarity     uint8         `json:"rarity"`
	Stats      itemStatsJSON `json:"stats"`
}

func (j *mintItemJSON) parts() (op.Base, op.RecordRef, op.RecordRef, record.Identity, record.Identity, record.ItemKind, error) {
	fail := func(err error) (op.Base, op.RecordRef, op.RecordRef, record.Identity, record.Identity, record.ItemKind, error) {
		return op.Base{}, op.RecordRef{}, op.RecordRef{}, record.ZeroIdentity, record.ZeroIdentity, 0, err
	}
	base, err := j.toBase()
	if err != nil {
		return fail(err)
	}
	collection, err := j.Collection.toRef()
	if err != nil {
		return fail(err)
	}
	item, err := j.Item.toRef()
	if err != nil {
		return fail(err)
	}
	asset, err := parseIdentity("asset", j.Asset)
	if err != nil {
		return fail(err)
	}
	owner, err := parseIdentity("owner", j.Owner)
	if err != nil {
		return fail(err)
	}
	kind, err := parseItemKind(j.ItemKind)
	if err != nil {
		return fail(err)
	}
	return base, collection, item, asset, owner, kind, nil
}

func parseMintItem(data []byte) (*op.MintItem, error) {
	var j mintItemJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse MintItem: %w", err)
	}
	base, collection, item, asset, owner, kind, err := j.parts()
	if err != nil {
		return nil, err
	}
	return &op.MintItem{
		Base:       base,
		Collection: collection,
		Item:       item,
		Asset:      asset,
		Owner:      owner,
		Name:       j.Name,
		URI:        j.URI,
		ItemKind:   kind,
		Rarity:     j.Rarity,
		Stats:      j.Stats.toStats(),
	}, nil
}

type bossProofJSON struct {
	BossID          uint8  `json:"boss_id"`
	Island          uint8  `json:"island"`
	DefeatTimestamp int64  `json:"defeat_timestamp"`
	Player          string `json:"player"`
}

type treasuryProofJSON struct {
	ClaimTimestamp      int64  `json:"claim_timestamp"`
	Player              string `json:"player"`
	AllIslandsConquered bool   `json:"all_islands_conquered"`
	FinalBattleScore    uint32 `json:"final_battle_score"`
}

type mintSpecialItemJSON struct {
	mintItemJSON
	Drop          string             `json:"drop"` // "boss" or "treasury"
	BossProof     *bossProofJSON     `json:"boss_proof,omitempty"`
	TreasuryProof *treasuryProofJSON `json:"treasury_proof,omitempty"`
}

func parseMintSpecialItem(data []byte) (*op.MintSpecialItem, error) {
	var j mintSpecialItemJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse MintSpecialItem: %w", err)
	}
	base, collection, item, asset, owner, kind, err := j.parts()
	if err != nil {
		return nil, err
	}

	var drop op.DropKind
	switch j.Drop {
	case "boss":
		drop = op.DropBoss
	case "treasury":
		drop = op.DropTreasury
	default:
		return nil, fmt.Errorf("unknown drop kind %q", j.Drop)
	}

	result := &op.MintSpecialItem{
		Base:       base,
		Collection: collection,
		Item:       item,
		Asset:      asset,
		Owner:      owner,
		Name:       j.Name,
		URI:        j.URI,
		ItemKind:   kind,
		Rarity:     j.Rarity,
		Stats:      j.Stats.toStats(),
		Drop:       drop,
	}

	if j.BossProof != nil {
		player, err := parseIdentity("boss_proof.player", j.BossProof.Player)
		if err != nil {
			return nil, err
		}
		result.BossProof = &record.BossProof{
			BossID:          j.BossProof.BossID,
			Island:          j.BossProof.Island,
			DefeatTimestamp: j.BossProof.DefeatTimestamp,
			Player:          player,
		}
	}
	if j.TreasuryProof != nil {
		player, err := parseIdentity("treasury_proof.player", j.TreasuryProof.Player)
		if err != nil {
			return nil, err
		}
		result.TreasuryProof = &record.TreasuryProof{
			ClaimTimestamp:      j.TreasuryProof.ClaimTimestamp,
			Player:              player,
			AllIslandsConquered: j.TreasuryProof.AllIslandsConquered,
			FinalBattleScore:    j.TreasuryProof.FinalBattleScore,
		}
	}

	return result, nil
}

type equipItemJSON struct {
	headerJSON
	Item  recordRefJSON `json:"item"`
	Equip bool          `json:"equip"`
}

func parseEquipItem(data []byte) (*op.EquipItem, error) {
	var j equipItemJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse EquipItem: %w", err)
	}
	base, err := j.toBase()
	if err != nil {
		return nil, err
	}
	item, err := j.Item.toRef()
	if err != nil {
		return nil, err
	}
	return &op.EquipItem{Base: base, Item: item, Equip: j.Equip}, nil
}
