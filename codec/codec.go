/*
Package codec holds the binary codec shared by all models, messages and
transactions.

Models are plain structs serialized with amino in their bare form. Messages
are registered as concrete implementations of arabica.Msg, so that a
transaction can carry any of them in a single interface field:

	func init() {
		codec.RegisterMsg(&DepositMsg{}, "vault/deposit")
	}

	func (m *DepositMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
	func (m *DepositMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }
*/
package codec

import (
	"fmt"

	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/errors"
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

func init() {
	cdc.RegisterInterface((*arabica.Msg)(nil), nil)
}

// RegisterMsg registers a message implementation under the given name. The
// name is part of the wire format and must never change once used.
//
// Call it only from an init function.
func RegisterMsg(msg arabica.Msg, name string) {
	cdc.RegisterConcrete(msg, name, nil)
}

// Marshal serializes the given value.
func Marshal(o interface{}) ([]byte, error) {
	bz, err := cdc.MarshalBinaryBare(o)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrModel, "cannot marshal %T: %s", o, err)
	}
	return bz, nil
}

// MustMarshal is Marshal that panics on failure. Use it only for values that
// cannot fail, such as genesis fixtures in tests.
func MustMarshal(o interface{}) []byte {
	bz, err := Marshal(o)
	if err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
	return bz
}

// Unmarshal deserializes the data into the value pointed to by ptr.
func Unmarshal(bz []byte, ptr interface{}) error {
	if err := cdc.UnmarshalBinaryBare(bz, ptr); err != nil {
		return errors.Wrapf(errors.ErrModel, "cannot unmarshal %T: %s", ptr, err)
	}
	return nil
}

// JSON returns the indented json representation of the value, using amino
// conventions for interface fields.
func JSON(o interface{}) ([]byte, error) {
	bz, err := cdc.MarshalJSONIndent(o, "", "  ")
	if err != nil {
		return nil, errors.Wrapf(errors.ErrModel, "cannot marshal %T to json: %s", o, err)
	}
	return bz, nil
}
