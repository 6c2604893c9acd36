package ledger

import (
	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/codec"
	"github.com/arabica-labs/arabica/coin"
	"github.com/arabica-labs/arabica/errors"
)

func init() {
	codec.RegisterMsg(&TransferMsg{}, "ledger/transfer")
	codec.RegisterMsg(&BurnMsg{}, "ledger/burn")
	codec.RegisterMsg(&AccrueMsg{}, "ledger/accrue")
	codec.RegisterMsg(&UpdateRateMsg{}, "ledger/update_rate")
	codec.RegisterMsg(&ApproveMsg{}, "ledger/approve")
	codec.RegisterMsg(&TransferFromMsg{}, "ledger/transfer_from")
}

// TransferMsg moves tokens from the signer to the recipient.
type TransferMsg struct {
	Recipient arabica.Address
	Amount    coin.Amount
}

var _ arabica.Msg = (*TransferMsg)(nil)

func (TransferMsg) Path() string { return "ledger/transfer" }

func (m *TransferMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *TransferMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }

func (m *TransferMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Recipient", m.Recipient.Validate())
	if m.Amount.IsZero() {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	return errs
}

// BurnMsg destroys tokens of the signer.
type BurnMsg struct {
	Amount coin.Amount
}

var _ arabica.Msg = (*BurnMsg)(nil)

func (BurnMsg) Path() string { return "ledger/burn" }

func (m *BurnMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *BurnMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }

func (m *BurnMsg) Validate() error {
	if m.Amount.IsZero() {
		return errors.Field("Amount", errors.ErrAmount, "must be positive")
	}
	return nil
}

// AccrueMsg folds the pending yield of a holder into its principal. Anyone
// may submit it.
type AccrueMsg struct {
	Holder arabica.Address
}

var _ arabica.Msg = (*AccrueMsg)(nil)

func (AccrueMsg) Path() string { return "ledger/accrue" }

func (m *AccrueMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *AccrueMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }

func (m *AccrueMsg) Validate() error {
	return errors.AppendField(nil, "Holder", m.Holder.Validate())
}

// UpdateRateMsg changes the base rate assigned to new holders.
type UpdateRateMsg struct {
	BaseRate uint32
}

var _ arabica.Msg = (*UpdateRateMsg)(nil)

func (UpdateRateMsg) Path() string { return "ledger/update_rate" }

func (m *UpdateRateMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *UpdateRateMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }

func (m *UpdateRateMsg) Validate() error {
	if m.BaseRate > coin.BasisPoints {
		return errors.Field("BaseRate", errors.ErrInput, "above 100%")
	}
	return nil
}

// ApproveMsg exists for token interface compatibility. Allowances are not
// supported and the message is always rejected.
type ApproveMsg struct {
	Spender arabica.Address
	Amount  coin.Amount
}

var _ arabica.Msg = (*ApproveMsg)(nil)

func (ApproveMsg) Path() string { return "ledger/approve" }

func (m *ApproveMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *ApproveMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }
func (m *ApproveMsg) Validate() error          { return nil }

// TransferFromMsg is always rejected, see ApproveMsg.
type TransferFromMsg struct {
	Owner     arabica.Address
	Recipient arabica.Address
	Amount    coin.Amount
}

var _ arabica.Msg = (*TransferFromMsg)(nil)

func (TransferFromMsg) Path() string { return "ledger/transfer_from" }

func (m *TransferFromMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *TransferFromMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }
func (m *TransferFromMsg) Validate() error          { return nil }
