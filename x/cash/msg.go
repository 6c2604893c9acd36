package cash

import (
	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/codec"
	"github.com/arabica-labs/arabica/coin"
	"github.com/arabica-labs/arabica/errors"
)

func init() {
	codec.RegisterMsg(&SendMsg{}, "cash/send")
}

const maxMemoSize = 128

// SendMsg moves coins from the source to the destination wallet.
type SendMsg struct {
	Source      arabica.Address
	Destination arabica.Address
	Amount      coin.Coin
	Memo        string
}

var _ arabica.Msg = (*SendMsg)(nil)

func (SendMsg) Path() string { return "cash/send" }

func (m *SendMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *SendMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }

func (m *SendMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Source", m.Source.Validate())
	errs = errors.AppendField(errs, "Destination", m.Destination.Validate())
	if err := m.Amount.Validate(); err != nil {
		errs = errors.AppendField(errs, "Amount", err)
	} else if !m.Amount.IsPositive() {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	if len(m.Memo) > maxMemoSize {
		errs = errors.AppendField(errs, "Memo", errors.ErrInput)
	}
	return errs
}
