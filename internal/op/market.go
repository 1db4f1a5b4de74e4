package op

import "GameLedger/internal/record"

// ListAsset creates an active listing for the signer's item.
type ListAsset struct {
	Base
	Listing RecordRef
	Item    RecordRef
	Price   uint64
}

func (o *ListAsset) OpKind() Kind { return KindListAsset }

// UpdateListing replaces the listing's price and active flag, keeping the
// item's listed flag in step. Only the seller may update; a sold listing
// can never be reactivated.
type UpdateListing struct {
	Base
	Listing RecordRef
	Item    RecordRef
	Price   uint64
	Active  bool
}

func (o *UpdateListing) OpKind() Kind { return KindUpdateListing }

// CancelListing deactivates the listing and releases the item's listed flag.
type CancelListing struct {
	Base
	Listing RecordRef
	Item    RecordRef
}

func (o *CancelListing) OpKind() Kind { return KindCancelListing }

// ExecuteSwap settles a listing: payment moves buyer→seller in the
// settlement asset, the item moves seller→buyer, and the listing is marked
// sold — all as one unit.
type ExecuteSwap struct {
	Base
	Listing     RecordRef
	Item        RecordRef
	BuyerVault  RecordRef
	SellerVault RecordRef
	PaymentMint record.Identity
}

func (o *ExecuteSwap) OpKind() Kind { return KindExecuteSwap }
