package engine

import (
	"GameLedger/internal/addr"
	"GameLedger/internal/ledger"
	"GameLedger/internal/op"
	"GameLedger/internal/record"
)

func (e *Engine) handleListAsset(req *op.ListAsset) (*ledger.Journal, error) {
	if req.Price == 0 {
		return nil, ledger.Errf(ledger.CodeInvalidAmount, "listing price must be positive")
	}

	item, err := e.loadMarketItem(req.Item)
	if err != nil {
		return nil, err
	}
	if err := e.gate.VerifyItemOwner(item, req.Signer()); err != nil {
		return nil, err
	}
	if item.Listed {
		return nil, ledger.Errf(ledger.CodeAlreadyListed, "item asset %s is already listed", item.Asset)
	}
	if err := e.verifyCreateRef(req.Listing, addr.ListingSeeds(item.Asset)); err != nil {
		return nil, err
	}

	j := e.newJournal(req)
	listing := &record.Listing{
		Seller: req.Signer(),
		Asset:  item.Asset,
		Price:  req.Price,
		Active: true,
	}
	if err := e.lifecycle.StageCreate(j, req.Listing.ID, listing); err != nil {
		return nil, err
	}
	itemAfter := item.Clone().(*record.Item)
	itemAfter.Listed = true
	j.StageUpdate(req.Item.ID, item, itemAfter)
	return j, nil
}

func (e *Engine) handleUpdateListing(req *op.UpdateListing) (*ledger.Journal, error) {
	if req.Price == 0 {
		return nil, ledger.Errf(ledger.CodeInvalidAmount, "listing price must be positive")
	}

	listing, err := e.loadListing(req.Listing)
	if err != nil {
		return nil, err
	}
	if err := e.gate.Verify(listing, req.Signer()); err != nil {
		return nil, err
	}
	// A seller may reactivate a listing they cancelled, but a completed
	// swap is terminal.
	if listing.Sold {
		return nil, ledger.Errf(ledger.CodeListingNotActive, "listing for asset %s was sold", listing.Asset)
	}

	item, err := e.loadMarketItem(req.Item)
	if err != nil {
		return nil, err
	}
	if item.Asset != listing.Asset {
		return nil, ledger.Errf(ledger.CodeIdentifierMismatch,
			"item asset %s does not match listing asset %s", item.Asset, listing.Asset)
	}

	j := e.newJournal(req)
	after := listing.Clone().(*record.Listing)
	after.Price = req.Price
	after.Active = req.Active
	itemAfter := item.Clone().(*record.Item)
	itemAfter.Listed = req.Active
	j.StageUpdate(req.Listing.ID, listing, after)
	j.StageUpdate(req.Item.ID, item, itemAfter)
	return j, nil
}

func (e *Engine) handleCancelListing(req *op.CancelListing) (*ledger.Journal, error) {
	listing, err := e.loadListing(req.Listing)
	if err != nil {
		return nil, err
	}
	if err := e.gate.Verify(listing, req.Signer()); err != nil {
		return nil, err
	}
	if !listing.Active {
		return nil, ledger.Errf(ledger.CodeListingNotActive, "listing for asset %s is not active", listing.Asset)
	}

	item, err := e.loadMarketItem(req.Item)
	if err != nil {
		return nil, err
	}
	if item.Asset != listing.Asset {
		return nil, ledger.Errf(ledger.CodeIdentifierMismatch,
			"item asset %s does not match listing asset %s", item.Asset, listing.Asset)
	}

	j := e.newJournal(req)
	listingAfter := listing.Clone().(*record.Listing)
	listingAfter.Active = false
	itemAfter := item.Clone().(*record.Item)
	itemAfter.Listed = false
	j.StageUpdate(req.Listing.ID, listing, listingAfter)
	j.StageUpdate(req.Item.ID, item, itemAfter)
	return j, nil
}

// handleExecuteSwap settles a listing atomically: the payment leg
// (buyer→seller in the settlement asset) and the asset leg (item
// seller→buyer) stage into one journal with the listing close-out. If any
// precondition of either leg fails, nothing applies.
func (e *Engine) handleExecuteSwap(req *op.ExecuteSwap) (*ledger.Journal, error) {
	listing, err := e.loadListing(req.Listing)
	if err != nil {
		return nil, err
	}
	if !listing.Active {
		return nil, ledger.Errf(ledger.CodeListingNotActive, "listing for asset %s is not active", listing.Asset)
	}
	if req.PaymentMint != e.cfg.SettlementMint {
		return nil, ledger.Errf(ledger.CodeWrongSettlementAsset,
			"payment mint %s is not the settlement asset", req.PaymentMint)
	}
	if req.BuyerVault.ID == req.SellerVault.ID {
		return nil, ledger.Errf(ledger.CodeIdentifierMismatch, "buyer and seller vaults are the same")
	}

	buyerVault, err := e.loadVault(req.BuyerVault)
	if err != nil {
		return nil, err
	}
	// The buyer signs; the payment source must be theirs.
	if err := e.gate.Verify(buyerVault, req.Signer()); err != nil {
		return nil, err
	}
	sellerVault, err := e.loadVault(req.SellerVault)
	if err != nil {
		return nil, err
	}
	if sellerVault.Owner != listing.Seller {
		return nil, ledger.Errf(ledger.CodeIdentifierMismatch,
			"payment destination vault is not owned by the seller")
	}

	item, err := e.loadMarketItem(req.Item)
	if err != nil {
		return nil, err
	}
	if item.Asset != listing.Asset {
		return nil, ledger.Errf(ledger.CodeIdentifierMismatch,
			"item asset %s does not match listing asset %s", item.Asset, listing.Asset)
	}
	if item.Owner != listing.Seller {
		return nil, ledger.Errf(ledger.CodeNotItemOwner,
			"listed item is no longer owned by the seller")
	}

	// Payment leg preconditions
	if buyerVault.Balance < listing.Price {
		return nil, ledger.Errf(ledger.CodeInsufficientBalance,
			"buyer vault holds %d, listing costs %d", buyerVault.Balance, listing.Price)
	}
	newSellerBalance, ok := checkedAdd(sellerVault.Balance, listing.Price)
	if !ok {
		return nil, ledger.Errf(ledger.CodeOverflow,
			"payment of %d overflows seller balance %d", listing.Price, sellerVault.Balance)
	}

	j := e.newJournal(req)

	buyerAfter := buyerVault.Clone().(*record.Vault)
	buyerAfter.Balance = buyerVault.Balance - listing.Price
	sellerAfter := sellerVault.Clone().(*record.Vault)
	sellerAfter.Balance = newSellerBalance
	j.StageUpdate(req.BuyerVault.ID, buyerVault, buyerAfter)
	j.StageUpdate(req.SellerVault.ID, sellerVault, sellerAfter)

	itemAfter := item.Clone().(*record.Item)
	itemAfter.Owner = req.Signer()
	itemAfter.Listed = false
	itemAfter.Equipped = false
	j.StageUpdate(req.Item.ID, item, itemAfter)

	listingAfter := listing.Clone().(*record.Listing)
	listingAfter.Active = false
	listingAfter.Sold = true
	j.StageUpdate(req.Listing.ID, listing, listingAfter)

	return j, nil
}

// loadMarketItem loads an item ref, reporting InvalidItemId when the
// identifier resolves to some other record kind.
func (e *Engine) loadMarketItem(ref op.RecordRef) (*record.Item, error) {
	item, err := e.loadItem(ref)
	if err != nil {
		if ledger.CodeOf(err) == ledger.CodeWrongRecordKind {
			return nil, ledger.Errf(ledger.CodeInvalidItemID, "record at %s is not an item", ref.ID)
		}
		return nil, err
	}
	return item, nil
}
