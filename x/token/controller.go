package token

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
)

// Reader is the read only view of the vaults other extensions depend on.
type Reader interface {
	OwnerOf(db ledger.ReadOnlyKVStore, vaultID string) (ledger.Address, error)
	BalanceOf(db ledger.ReadOnlyKVStore, vaultID string, holder ledger.Address) (ledger.Amount, error)
	TotalSupply(db ledger.ReadOnlyKVStore, vaultID string) (ledger.Amount, error)
	IsRedeemed(db ledger.ReadOnlyKVStore, vaultID string) (bool, error)
}

// Controller manages vaults and holder balances.
type Controller struct {
	vaults   orm.ModelBucket
	holdings orm.ModelBucket
}

var _ Reader = (*Controller)(nil)

// NewController returns a controller using the default buckets.
func NewController() *Controller {
	return &Controller{
		vaults:   NewVaultBucket(),
		holdings: NewHoldingBucket(),
	}
}

// CreateVault registers a new vault and mints the whole supply to the
// owner.
func (c *Controller) CreateVault(db ledger.KVStore, vaultID string, owner ledger.Address, supply ledger.Amount, name string) (*Vault, error) {
	if !IsVaultID(vaultID) {
		return nil, errors.Wrapf(errors.ErrInput, "vault id %q", vaultID)
	}
	switch err := c.vaults.Has(db, []byte(vaultID)); {
	case err == nil:
		return nil, errors.Wrapf(errors.ErrDuplicate, "vault %q", vaultID)
	case !errors.ErrNotFound.Is(err):
		return nil, err
	}
	v := &Vault{Owner: owner, TotalSupply: supply, Name: name}
	if err := c.vaults.Put(db, []byte(vaultID), v); err != nil {
		return nil, errors.Wrap(err, "cannot save vault")
	}
	if err := c.holdings.Put(db, holdingKey(vaultID, owner), &Holding{Balance: supply}); err != nil {
		return nil, errors.Wrap(err, "cannot save holding")
	}
	return v, nil
}

// Vault returns the vault with given ID.
func (c *Controller) Vault(db ledger.ReadOnlyKVStore, vaultID string) (*Vault, error) {
	var v Vault
	if err := c.vaults.One(db, []byte(vaultID), &v); err != nil {
		return nil, errors.Wrapf(err, "vault %q", vaultID)
	}
	return &v, nil
}

// Transfer moves fractions between two holders of a vault. Redeemed vaults
// cannot be transferred.
func (c *Controller) Transfer(db ledger.KVStore, vaultID string, src, dest ledger.Address, amount ledger.Amount) error {
	if !amount.IsPositive() {
		return errors.Wrap(errors.ErrAmount, "non-positive amount")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "dest")
	}
	v, err := c.Vault(db, vaultID)
	if err != nil {
		return err
	}
	if v.Redeemed {
		return errors.Wrapf(errors.ErrRedeemed, "vault %q", vaultID)
	}

	from, err := c.BalanceOf(db, vaultID, src)
	if err != nil {
		return err
	}
	left, err := from.Sub(amount)
	if err != nil {
		return errors.Wrapf(err, "holder %s", src)
	}
	if err := c.holdings.Put(db, holdingKey(vaultID, src), &Holding{Balance: left}); err != nil {
		return errors.Wrap(err, "cannot save holding")
	}
	to, err := c.BalanceOf(db, vaultID, dest)
	if err != nil {
		return err
	}
	if err := c.holdings.Put(db, holdingKey(vaultID, dest), &Holding{Balance: to.Add(amount)}); err != nil {
		return errors.Wrap(err, "cannot save holding")
	}
	return nil
}

// Redeem marks the vault as redeemed. Only the owner can redeem a vault.
func (c *Controller) Redeem(db ledger.KVStore, vaultID string, caller ledger.Address) error {
	v, err := c.Vault(db, vaultID)
	if err != nil {
		return err
	}
	if !v.Owner.Equals(caller) {
		return errors.Wrap(errors.ErrUnauthorized, "only the owner can redeem")
	}
	if v.Redeemed {
		return errors.Wrapf(errors.ErrRedeemed, "vault %q", vaultID)
	}
	v.Redeemed = true
	return c.vaults.Put(db, []byte(vaultID), v)
}

// OwnerOf returns the owner of the vault.
func (c *Controller) OwnerOf(db ledger.ReadOnlyKVStore, vaultID string) (ledger.Address, error) {
	v, err := c.Vault(db, vaultID)
	if err != nil {
		return nil, err
	}
	return v.Owner, nil
}

// BalanceOf returns the number of fractions held. It does not check that
// the vault exists.
func (c *Controller) BalanceOf(db ledger.ReadOnlyKVStore, vaultID string, holder ledger.Address) (ledger.Amount, error) {
	var h Holding
	switch err := c.holdings.One(db, holdingKey(vaultID, holder), &h); {
	case err == nil:
		return h.Balance, nil
	case errors.ErrNotFound.Is(err):
		return ledger.Amount{}, nil
	default:
		return ledger.Amount{}, err
	}
}

// TotalSupply returns the number of fractions the vault was split into.
func (c *Controller) TotalSupply(db ledger.ReadOnlyKVStore, vaultID string) (ledger.Amount, error) {
	v, err := c.Vault(db, vaultID)
	if err != nil {
		return ledger.Amount{}, err
	}
	return v.TotalSupply, nil
}

// IsRedeemed returns true if the owner redeemed the vault.
func (c *Controller) IsRedeemed(db ledger.ReadOnlyKVStore, vaultID string) (bool, error) {
	v, err := c.Vault(db, vaultID)
	if err != nil {
		return false, err
	}
	return v.Redeemed, nil
}
