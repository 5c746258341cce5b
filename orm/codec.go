package orm

import (
	"github.com/iov-one/ledger/errors"
	amino "github.com/tendermint/go-amino"
)

// cdc serializes all models. Models are concrete types, so no type
// registration is needed.
var cdc = amino.NewCodec()

// Marshal serializes given model.
func Marshal(m Model) ([]byte, error) {
	raw, err := cdc.MarshalBinaryBare(m)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrModel, "cannot marshal %T: %s", m, err)
	}
	return raw, nil
}

// Unmarshal loads serialized data into given model. Destination must be a
// pointer.
func Unmarshal(raw []byte, dest Model) error {
	if err := cdc.UnmarshalBinaryBare(raw, dest); err != nil {
		return errors.Wrapf(errors.ErrModel, "cannot unmarshal %T: %s", dest, err)
	}
	return nil
}
