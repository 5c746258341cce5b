package shares

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

const (
	// Whole is the sum of all active shares, 100%.
	Whole = 10000

	// MaxEntries is the maximum number of beneficiaries a table can hold,
	// including the inactive ones.
	MaxEntries = 50
)

// Share is a single beneficiary entry.
type Share struct {
	Address  ledger.Address `json:"address"`
	ShareBps uint32         `json:"share_bps"`
	Active   bool           `json:"active"`
}

// Change sets the share of an active beneficiary.
type Change struct {
	Address  ledger.Address `json:"address"`
	ShareBps uint32         `json:"share_bps"`
}

// Table is an ordered list of beneficiaries. Order of creation is
// preserved.
type Table struct {
	Entries []Share `json:"entries"`
}

// Create returns a table with every given address active and holding the
// share of the same index.
func Create(addresses []ledger.Address, bps []uint32) (*Table, error) {
	if len(addresses) != len(bps) {
		return nil, errors.Wrapf(errors.ErrInvalidShares,
			"%d addresses and %d shares", len(addresses), len(bps))
	}
	if len(addresses) > MaxEntries {
		return nil, errors.Wrapf(errors.ErrTooManyEntries,
			"%d beneficiaries, max %d", len(addresses), MaxEntries)
	}
	if len(addresses) == 0 {
		return nil, errors.Wrap(errors.ErrInvalidShares, "no beneficiaries")
	}

	t := &Table{Entries: make([]Share, len(addresses))}
	var sum uint64
	for i, addr := range addresses {
		if err := addr.Validate(); err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidShares, "beneficiary %d: %s", i, err)
		}
		if bps[i] == 0 {
			return nil, errors.Wrapf(errors.ErrInvalidShares, "beneficiary %d: zero share", i)
		}
		if t.find(addr) >= 0 {
			return nil, errors.Wrapf(errors.ErrInvalidShares, "beneficiary %s listed twice", addr)
		}
		t.Entries[i] = Share{Address: addr.Clone(), ShareBps: bps[i], Active: true}
		sum += uint64(bps[i])
	}
	if sum != Whole {
		return nil, errors.Wrapf(errors.ErrInvalidShares, "shares sum to %d, want %d", sum, Whole)
	}
	return t, nil
}

// Update applies all changes and then requires the active shares to sum to
// the whole. If any change fails, the table is left unchanged.
func (t *Table) Update(changes ...Change) error {
	if len(changes) == 0 {
		return errors.Wrap(errors.ErrEmpty, "no changes")
	}
	entries := make([]Share, len(t.Entries))
	copy(entries, t.Entries)

	for _, c := range changes {
		i := t.find(c.Address)
		if i < 0 || !entries[i].Active {
			return errors.Wrapf(errors.ErrNotFound, "active beneficiary %s", c.Address)
		}
		if c.ShareBps == 0 {
			return errors.Wrapf(errors.ErrInvalidShares, "beneficiary %s: zero share", c.Address)
		}
		entries[i].ShareBps = c.ShareBps
	}
	if sum := activeSum(entries); sum != Whole {
		return errors.Wrapf(errors.ErrInvalidShares, "active shares sum to %d, want %d", sum, Whole)
	}
	t.Entries = entries
	return nil
}

// Deactivate marks the beneficiary as inactive. There is no way to
// activate it again. The entry is kept for attribution of past payments.
func (t *Table) Deactivate(addr ledger.Address) error {
	i := t.find(addr)
	if i < 0 {
		return errors.Wrapf(errors.ErrNotFound, "beneficiary %s", addr)
	}
	if !t.Entries[i].Active {
		return errors.Wrapf(errors.ErrState, "beneficiary %s already inactive", addr)
	}
	t.Entries[i].Active = false
	return nil
}

// ActiveShareOf returns the share of an active beneficiary, or zero if the
// address is not in the table or is inactive.
func (t *Table) ActiveShareOf(addr ledger.Address) uint32 {
	i := t.find(addr)
	if i < 0 || !t.Entries[i].Active {
		return 0
	}
	return t.Entries[i].ShareBps
}

// ActiveSum returns the sum of all active shares.
func (t *Table) ActiveSum() uint64 {
	return activeSum(t.Entries)
}

// Validate checks the structure of the table. A table with a single active
// beneficiary that was deactivated sums below the whole, so only an upper
// bound of the active sum is enforced.
func (t *Table) Validate() error {
	var err error
	if len(t.Entries) == 0 {
		err = errors.AppendField(err, "Entries", errors.ErrEmpty)
	}
	if len(t.Entries) > MaxEntries {
		err = errors.AppendField(err, "Entries", errors.ErrTooManyEntries)
	}
	for i, e := range t.Entries {
		if e.ShareBps == 0 || e.ShareBps > Whole {
			err = errors.AppendField(err, "Entries", errors.Wrapf(errors.ErrInvalidShares, "entry %d share", i))
		}
		if aerr := e.Address.Validate(); aerr != nil {
			err = errors.AppendField(err, "Entries", errors.Wrapf(aerr, "entry %d address", i))
		}
		for _, prev := range t.Entries[:i] {
			if prev.Address.Equals(e.Address) {
				err = errors.AppendField(err, "Entries", errors.Wrapf(errors.ErrDuplicate, "entry %d address", i))
			}
		}
	}
	if sum := t.ActiveSum(); sum > Whole {
		err = errors.AppendField(err, "Entries", errors.Wrapf(errors.ErrInvalidShares, "active sum %d", sum))
	}
	return err
}

// Copy returns a deep copy of the table.
func (t *Table) Copy() *Table {
	c := &Table{Entries: make([]Share, len(t.Entries))}
	for i, e := range t.Entries {
		c.Entries[i] = Share{Address: e.Address.Clone(), ShareBps: e.ShareBps, Active: e.Active}
	}
	return c
}

func (t *Table) find(addr ledger.Address) int {
	for i, e := range t.Entries {
		if e.Address.Equals(addr) {
			return i
		}
	}
	return -1
}

func activeSum(entries []Share) uint64 {
	var sum uint64
	for _, e := range entries {
		if e.Active {
			sum += uint64(e.ShareBps)
		}
	}
	return sum
}
