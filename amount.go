package ledger

import (
	"encoding/json"
	"math/big"
	"strings"

	"github.com/iov-one/ledger/errors"
)

// WeiPerEther is the number of base units in one whole coin. It is only a
// convenience for building amounts, the ledger itself has no notion of
// decimals.
const WeiPerEther = 1000000000000000000

// Amount is a non-negative arbitrary precision integer. Zero value is a valid
// zero amount. Amount values are immutable, all operations return a new
// instance.
type Amount struct {
	i *big.Int
}

// NewAmount returns an amount of given base units.
func NewAmount(v uint64) Amount {
	return Amount{i: new(big.Int).SetUint64(v)}
}

// Ether returns an amount of n whole coins.
func Ether(n uint64) Amount {
	return NewAmount(n).Mul(NewAmount(WeiPerEther))
}

// NewAmountFromBig returns an amount holding a copy of given value. It fails
// for negative values.
func NewAmountFromBig(v *big.Int) (Amount, error) {
	if v == nil {
		return Amount{}, nil
	}
	if v.Sign() < 0 {
		return Amount{}, errors.Wrapf(errors.ErrAmount, "negative value %s", v)
	}
	return Amount{i: new(big.Int).Set(v)}, nil
}

// ParseAmount parses a decimal representation of an amount.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, errors.Wrap(errors.ErrAmount, "empty")
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, errors.Wrapf(errors.ErrAmount, "not a decimal number: %q", s)
	}
	return NewAmountFromBig(v)
}

// MustParseAmount is like ParseAmount but panics on error. Use it only with
// constant values.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) big() *big.Int {
	if a.i == nil {
		return new(big.Int)
	}
	return a.i
}

// Big returns a copy of the underlying value.
func (a Amount) Big() *big.Int {
	return new(big.Int).Set(a.big())
}

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool {
	return a.big().Sign() == 0
}

// IsPositive returns true if the amount is greater than zero.
func (a Amount) IsPositive() bool {
	return a.big().Sign() > 0
}

// Cmp compares two amounts and returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int {
	return a.big().Cmp(b.big())
}

// Equals returns true if both amounts represent the same value.
func (a Amount) Equals(b Amount) bool {
	return a.Cmp(b) == 0
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{i: new(big.Int).Add(a.big(), b.big())}
}

// Sub returns a - b. It fails if the result would be negative.
func (a Amount) Sub(b Amount) (Amount, error) {
	if a.Cmp(b) < 0 {
		return Amount{}, errors.Wrapf(errors.ErrInsufficientAmount, "%s - %s", a, b)
	}
	return Amount{i: new(big.Int).Sub(a.big(), b.big())}, nil
}

// SubFloor returns a - b, or zero if b is greater than a.
func (a Amount) SubFloor(b Amount) Amount {
	if a.Cmp(b) <= 0 {
		return Amount{}
	}
	return Amount{i: new(big.Int).Sub(a.big(), b.big())}
}

// Mul returns a * b.
func (a Amount) Mul(b Amount) Amount {
	return Amount{i: new(big.Int).Mul(a.big(), b.big())}
}

// MulDiv returns floor(a * mul / div). Multiplication is done before the
// division, so no precision is lost on intermediate values.
func (a Amount) MulDiv(mul, div Amount) (Amount, error) {
	if div.IsZero() {
		return Amount{}, errors.Wrap(errors.ErrInput, "division by zero")
	}
	p := new(big.Int).Mul(a.big(), mul.big())
	return Amount{i: p.Quo(p, div.big())}, nil
}

// MinAmount returns the smaller of two amounts.
func MinAmount(a, b Amount) Amount {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

// Validate returns an error if the amount is negative. A negative amount can
// only be created by decoding malformed data.
func (a Amount) Validate() error {
	if a.big().Sign() < 0 {
		return errors.Wrap(errors.ErrAmount, "negative")
	}
	return nil
}

// String returns the decimal representation.
func (a Amount) String() string {
	return a.big().String()
}

// MarshalAmino implements the amino custom encoding. Amounts are serialized
// as decimal strings.
func (a Amount) MarshalAmino() (string, error) {
	return a.String(), nil
}

// UnmarshalAmino implements the amino custom decoding.
func (a *Amount) UnmarshalAmino(text string) error {
	if text == "" {
		*a = Amount{}
		return nil
	}
	v, err := ParseAmount(text)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// MarshalJSON serializes the amount as a decimal string, so that no
// precision is lost by JSON number decoders.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts both a decimal string and a JSON number.
func (a *Amount) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return errors.Wrap(errors.ErrAmount, "cannot decode json")
		}
		s = n.String()
	}
	return a.UnmarshalAmino(s)
}
