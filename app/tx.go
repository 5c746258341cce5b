package app

import (
	"encoding/json"
	"reflect"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x/sigs"
)

// Tx is the JSON envelope of a transaction. The signer is the condition
// that authorized it, it is trusted as transactions are authenticated
// before they reach the ledger.
type Tx struct {
	Signer ledger.Condition `json:"signer,omitempty"`
	Path   string           `json:"path"`
	Msg    json.RawMessage  `json:"msg"`

	msg ledger.Msg
}

var _ sigs.SignedTx = (*Tx)(nil)

// NewTx returns a transaction carrying given message.
func NewTx(signer ledger.Condition, msg ledger.Msg) (*Tx, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrMsg, "cannot serialize %T: %s", msg, err)
	}
	return &Tx{Signer: signer, Path: msg.Path(), Msg: raw, msg: msg}, nil
}

// GetMsg returns the decoded message.
func (tx *Tx) GetMsg() (ledger.Msg, error) {
	if tx.msg == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "message not decoded")
	}
	return tx.msg, nil
}

// GetSigner returns the condition that authorized this transaction.
func (tx *Tx) GetSigner() ledger.Condition {
	return tx.Signer
}

// Marshal serializes the transaction.
func (tx *Tx) Marshal() ([]byte, error) {
	raw, err := json.Marshal(tx)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot serialize transaction: %s", err)
	}
	return raw, nil
}

// MsgRegistry knows how to decode every message the application handles,
// by path.
type MsgRegistry struct {
	types map[string]reflect.Type
}

// NewMsgRegistry returns a registry of given messages. Messages must be
// pointers to structs.
func NewMsgRegistry(msgs ...ledger.Msg) *MsgRegistry {
	r := &MsgRegistry{types: make(map[string]reflect.Type)}
	for _, m := range msgs {
		r.Register(m)
	}
	return r
}

// Register adds a message type. It panics if the path is already taken.
func (r *MsgRegistry) Register(msg ledger.Msg) {
	t := reflect.TypeOf(msg)
	if t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
		panic("message must be a pointer to a struct")
	}
	path := msg.Path()
	if _, ok := r.types[path]; ok {
		panic("message path already registered: " + path)
	}
	r.types[path] = t.Elem()
}

// Decode parses a serialized transaction and its message. Message
// validation is left to the handler.
func (r *MsgRegistry) Decode(raw []byte) (*Tx, error) {
	var tx Tx
	if err := json.Unmarshal(raw, &tx); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot decode transaction: %s", err)
	}
	t, ok := r.types[tx.Path]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "unknown message path %q", tx.Path)
	}
	msg := reflect.New(t).Interface().(ledger.Msg)
	if len(tx.Msg) != 0 {
		if err := json.Unmarshal(tx.Msg, msg); err != nil {
			return nil, errors.Wrapf(errors.ErrMsg, "cannot decode %s: %s", tx.Path, err)
		}
	}
	tx.msg = msg
	return &tx, nil
}
