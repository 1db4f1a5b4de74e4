package engine

import (
	"GameLedger/internal/addr"
	"GameLedger/internal/ledger"
	"GameLedger/internal/op"
	"GameLedger/internal/record"
)

// MaxOperationAmount caps a single mint/burn/transfer. Keeps one bad
// request from saturating a supply in a single journal.
const MaxOperationAmount uint64 = 1_000_000_000_000

func validateAmount(amount uint64) error {
	if amount == 0 {
		return ledger.Errf(ledger.CodeInvalidAmount, "amount must be positive")
	}
	if amount > MaxOperationAmount {
		return ledger.Errf(ledger.CodeAmountTooLarge, "amount %d exceeds per-operation cap %d", amount, MaxOperationAmount)
	}
	return nil
}

func (e *Engine) handleCreateSupply(req *op.CreateSupply) (*ledger.Journal, error) {
	if err := e.verifyCreateRef(req.Supply, addr.SupplySeeds(req.Mint)); err != nil {
		return nil, err
	}

	j := e.newJournal(req)
	supply := &record.TokenSupply{
		Mint:            req.Mint,
		SupplyAuthority: req.Signer(),
		Decimals:        req.Decimals,
	}
	if err := e.lifecycle.StageCreate(j, req.Supply.ID, supply); err != nil {
		return nil, err
	}
	return j, nil
}

func (e *Engine) handleCreateVault(req *op.CreateVault) (*ledger.Journal, error) {
	if err := e.verifyCreateRef(req.Vault, addr.VaultSeeds(req.Signer(), req.Mint)); err != nil {
		return nil, err
	}

	j := e.newJournal(req)
	vault := &record.Vault{Owner: req.Signer()}
	if err := e.lifecycle.StageCreate(j, req.Vault.ID, vault); err != nil {
		return nil, err
	}
	return j, nil
}

func (e *Engine) handleMintSupply(req *op.MintSupply) (*ledger.Journal, error) {
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}

	supply, err := e.loadSupply(req.Supply)
	if err != nil {
		return nil, err
	}
	if err := e.gate.Verify(supply, req.Signer()); err != nil {
		return nil, err
	}
	vault, err := e.loadVault(req.Vault)
	if err != nil {
		return nil, err
	}

	newSupply, ok := checkedAdd(supply.TotalSupply, req.Amount)
	if !ok {
		return nil, ledger.Errf(ledger.CodeOverflow, "minting %d overflows total supply %d", req.Amount, supply.TotalSupply)
	}
	newBalance, ok := checkedAdd(vault.Balance, req.Amount)
	if !ok {
		return nil, ledger.Errf(ledger.CodeOverflow, "minting %d overflows vault balance %d", req.Amount, vault.Balance)
	}

	j := e.newJournal(req)
	supplyAfter := supply.Clone().(*record.TokenSupply)
	supplyAfter.TotalSupply = newSupply
	vaultAfter := vault.Clone().(*record.Vault)
	vaultAfter.Balance = newBalance
	j.StageUpdate(req.Supply.ID, supply, supplyAfter)
	j.StageUpdate(req.Vault.ID, vault, vaultAfter)
	return j, nil
}

func (e *Engine) handleBurnSupply(req *op.BurnSupply) (*ledger.Journal, error) {
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}

	supply, err := e.loadSupply(req.Supply)
	if err != nil {
		return nil, err
	}
	vault, err := e.loadVault(req.Vault)
	if err != nil {
		return nil, err
	}
	// Burns are authorized by the vault owner: only they may destroy
	// their own tokens.
	if err := e.gate.Verify(vault, req.Signer()); err != nil {
		return nil, err
	}

	if vault.Balance < req.Amount {
		return nil, ledger.Errf(ledger.CodeInsufficientBalance,
			"vault holds %d, cannot burn %d", vault.Balance, req.Amount)
	}
	newSupply, ok := checkedSub(supply.TotalSupply, req.Amount)
	if !ok {
		// Conservation should make this unreachable
		return nil, ledger.Errf(ledger.CodeOverflow, "burning %d underflows total supply %d", req.Amount, supply.TotalSupply)
	}

	j := e.newJournal(req)
	supplyAfter := supply.Clone().(*record.TokenSupply)
	supplyAfter.TotalSupply = newSupply
	vaultAfter := vault.Clone().(*record.Vault)
	vaultAfter.Balance = vault.Balance - req.Amount
	j.StageUpdate(req.Supply.ID, supply, supplyAfter)
	j.StageUpdate(req.Vault.ID, vault, vaultAfter)
	return j, nil
}

func (e *Engine) handleTransferBalance(req *op.TransferBalance) (*ledger.Journal, error) {
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}
	if req.FromVault.ID == req.ToVault.ID {
		return nil, ledger.Errf(ledger.CodeIdentifierMismatch, "transfer source and destination are the same vault")
	}

	from, err := e.loadVault(req.FromVault)
	if err != nil {
		return nil, err
	}
	if err := e.gate.Verify(from, req.Signer()); err != nil {
		return nil, err
	}
	to, err := e.loadVault(req.ToVault)
	if err != nil {
		return nil, err
	}

	if from.Balance < req.Amount {
		return nil, ledger.Errf(ledger.CodeInsufficientBalance,
			"vault holds %d, cannot transfer %d", from.Balance, req.Amount)
	}
	newTo, ok := checkedAdd(to.Balance, req.Amount)
	if !ok {
		return nil, ledger.Errf(ledger.CodeOverflow, "transfer of %d overflows destination balance %d", req.Amount, to.Balance)
	}

	j := e.newJournal(req)
	fromAfter := from.Clone().(*record.Vault)
	fromAfter.Balance = from.Balance - req.Amount
	toAfter := to.Clone().(*record.Vault)
	toAfter.Balance = newTo
	j.StageUpdate(req.FromVault.ID, from, fromAfter)
	j.StageUpdate(req.ToVault.ID, to, toAfter)
	return j, nil
}

func (e *Engine) handleRewardLevel(req *op.RewardLevel) (*ledger.Journal, error) {
	amount, err := levelReward(req.Level)
	if err != nil {
		return nil, err
	}
	return e.mintReward(req, req.Supply, req.Vault, amount)
}

func (e *Engine) handleRewardTreasure(req *op.RewardTreasure) (*ledger.Journal, error) {
	amount, err := treasureReward(req.TreasureType)
	if err != nil {
		return nil, err
	}
	return e.mintReward(req, req.Supply, req.Vault, amount)
}

func (e *Engine) handleDailyBonus(req *op.DailyBonus) (*ledger.Journal, error) {
	return e.mintReward(req, req.Supply, req.Vault, DailyBonusAmount)
}

// mintReward mints amount into existence: total supply and recipient vault
// both increase. Authorized by the supply authority.
func (e *Engine) mintReward(o op.Operation, supplyRef, vaultRef op.RecordRef, amount uint64) (*ledger.Journal, error) {
	if amount == 0 {
		return nil, ledger.Errf(ledger.CodeInvalidReward, "computed reward is zero")
	}

	supply, err := e.loadSupply(supplyRef)
	if err != nil {
		return nil, err
	}
	if err := e.gate.Verify(supply, o.Signer()); err != nil {
		return nil, err
	}
	vault, err := e.loadVault(vaultRef)
	if err != nil {
		return nil, err
	}

	newSupply, ok := checkedAdd(supply.TotalSupply, amount)
	if !ok {
		return nil, ledger.Errf(ledger.CodeOverflow, "reward of %d overflows total supply %d", amount, supply.TotalSupply)
	}
	newBalance, ok := checkedAdd(vault.Balance, amount)
	if !ok {
		return nil, ledger.Errf(ledger.CodeOverflow, "reward of %d overflows vault balance %d", amount, vault.Balance)
	}

	j := e.newJournal(o)
	supplyAfter := supply.Clone().(*record.TokenSupply)
	supplyAfter.TotalSupply = newSupply
	vaultAfter := vault.Clone().(*record.Vault)
	vaultAfter.Balance = newBalance
	j.StageUpdate(supplyRef.ID, supply, supplyAfter)
	j.StageUpdate(vaultRef.ID, vault, vaultAfter)
	return j, nil
}

func (e *Engine) newJournal(o op.Operation) *ledger.Journal {
	return ledger.NewJournal(o.IdempotencyKey(), e.sequence, o.OpTime())
}
