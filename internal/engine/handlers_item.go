package engine

import (
	"GameLedger/internal/addr"
	"GameLedger/internal/ledger"
	"GameLedger/internal/op"
	"GameLedger/internal/record"
)

func (e *Engine) handleCreateCollection(req *op.CreateCollection) (*ledger.Journal, error) {
	if req.Name == "" {
		return nil, ledger.Errf(ledger.CodeEmptyName, "collection name cannot be empty")
	}
	if len(req.Name) > record.MaxCollectionNameLen {
		return nil, ledger.Errf(ledger.CodeNameTooLong, "collection name is %d chars, max %d",
			len(req.Name), record.MaxCollectionNameLen)
	}
	if len(req.URI) > record.MaxCollectionURILen {
		return nil, ledger.Errf(ledger.CodeNameTooLong, "collection uri is %d chars, max %d",
			len(req.URI), record.MaxCollectionURILen)
	}
	if err := e.verifyCreateRef(req.Collection, addr.CollectionSeeds(req.Signer())); err != nil {
		return nil, err
	}

	j := e.newJournal(req)
	collection := &record.Collection{
		Owner: req.Signer(),
		Name:  req.Name,
		URI:   req.URI,
	}
	if err := e.lifecycle.StageCreate(j, req.Collection.ID, collection); err != nil {
		return nil, err
	}
	return j, nil
}

func (e *Engine) handleMintItem(req *op.MintItem) (*ledger.Journal, error) {
	if req.Rarity < record.MinRarity || req.Rarity > record.MaxRarity {
		return nil, ledger.Errf(ledger.CodeInvalidRarity, "rarity %d outside [%d,%d]",
			req.Rarity, record.MinRarity, record.MaxRarity)
	}
	return e.mintItemInto(req, req.Collection, req.Item, &record.Item{
		Asset:     req.Asset,
		Owner:     req.Owner,
		ItemKind:  req.ItemKind,
		Rarity:    req.Rarity,
		Level:     1,
		Stats:     req.Stats,
		CreatedAt: req.OpTime(),
	}, req.Name, req.Asset)
}

func (e *Engine) handleMintSpecialItem(req *op.MintSpecialItem) (*ledger.Journal, error) {
	// Special drops are always legendary.
	if req.Rarity != record.LegendaryRarity {
		return nil, ledger.Errf(ledger.CodeInvalidRarity, "%s drop must be legendary rarity %d, got %d",
			req.Drop, record.LegendaryRarity, req.Rarity)
	}

	item := &record.Item{
		Asset:     req.Asset,
		Owner:     req.Owner,
		ItemKind:  req.ItemKind,
		Rarity:    req.Rarity,
		Level:     1,
		Stats:     req.Stats,
		CreatedAt: req.OpTime(),
	}

	switch req.Drop {
	case op.DropBoss:
		if req.BossProof == nil {
			return nil, ledger.Errf(ledger.CodeMissingBossProof, "boss drop requires a boss proof")
		}
		if req.BossProof.Island < record.MinIsland || req.BossProof.Island > record.MaxIsland {
			return nil, ledger.Errf(ledger.CodeInvalidIsland, "island %d outside [%d,%d]",
				req.BossProof.Island, record.MinIsland, record.MaxIsland)
		}
		proof := *req.BossProof
		item.BossProof = &proof
	case op.DropTreasury:
		if req.TreasuryProof == nil {
			return nil, ledger.Errf(ledger.CodeMissingTreasuryProof, "treasury drop requires a treasury proof")
		}
		proof := *req.TreasuryProof
		item.TreasuryProof = &proof
	default:
		return nil, ledger.Errf(ledger.CodeInvalidItemID, "unknown drop kind %d", req.Drop)
	}

	return e.mintItemInto(req, req.Collection, req.Item, item, req.Name, req.Asset)
}

func (e *Engine) mintItemInto(
	o op.Operation,
	collectionRef, itemRef op.RecordRef,
	item *record.Item,
	name string,
	asset record.Identity,
) (*ledger.Journal, error) {
	if name == "" {
		return nil, ledger.Errf(ledger.CodeEmptyName, "item name cannot be empty")
	}

	collection, err := e.loadCollection(collectionRef)
	if err != nil {
		return nil, err
	}
	if err := e.gate.Verify(collection, o.Signer()); err != nil {
		return nil, err
	}
	if err := e.verifyCreateRef(itemRef, addr.ItemSeeds(asset)); err != nil {
		return nil, err
	}

	j := e.newJournal(o)
	if err := e.lifecycle.StageCreate(j, itemRef.ID, item); err != nil {
		return nil, err
	}
	collectionAfter := collection.Clone().(*record.Collection)
	collectionAfter.TotalMinted++
	j.StageUpdate(collectionRef.ID, collection, collectionAfter)
	return j, nil
}

func (e *Engine) handleEquipItem(req *op.EquipItem) (*ledger.Journal, error) {
	item, err := e.loadMarketItem(req.Item)
	if err != nil {
		return nil, err
	}
	if err := e.gate.VerifyItemOwner(item, req.Signer()); err != nil {
		return nil, err
	}
	if req.Equip {
		if item.Equipped {
			return nil, ledger.Errf(ledger.CodeAlreadyEquipped, "item asset %s is already equipped", item.Asset)
		}
		if item.Listed {
			return nil, ledger.Errf(ledger.CodeAlreadyListed, "item asset %s is listed and cannot be equipped", item.Asset)
		}
	}

	j := e.newJournal(req)
	after := item.Clone().(*record.Item)
	after.Equipped = req.Equip
	j.StageUpdate(req.Item.ID, item, after)
	return j, nil
}
