package arabicad

import (
	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/codec"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/x/sigs"
)

// Tx is the transaction format of the chain: a single message and the
// signatures over it.
type Tx struct {
	Msg        arabica.Msg
	Signatures []sigs.StdSignature
}

var _ arabica.Tx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)

// TxDecoder creates a Tx and unmarshals bytes into it.
func TxDecoder(bz []byte) (arabica.Tx, error) {
	tx := new(Tx)
	if err := tx.Unmarshal(bz); err != nil {
		return nil, err
	}
	return tx, nil
}

func (tx *Tx) Marshal() ([]byte, error) { return codec.Marshal(tx) }
func (tx *Tx) Unmarshal(b []byte) error { return codec.Unmarshal(b, tx) }

// GetMsg returns the carried message.
func (tx *Tx) GetMsg() (arabica.Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrMsg, "empty transaction")
	}
	return tx.Msg, nil
}

// GetSignatures returns the signatures of signers who signed the Msg.
func (tx *Tx) GetSignatures() []sigs.StdSignature {
	return tx.Signatures
}

// GetSignBytes returns the bytes to sign. Signatures are not part of them.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	unsigned := Tx{Msg: tx.Msg}
	return unsigned.Marshal()
}
