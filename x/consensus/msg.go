package consensus

import (
	"crypto/sha256"

	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/codec"
	"github.com/arabica-labs/arabica/coin"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/x/params"
)

func init() {
	codec.RegisterMsg(&SubmitLoanMsg{}, "consensus/submit_loan")
	codec.RegisterMsg(&ApproveLoanMsg{}, "consensus/approve_loan")
	codec.RegisterMsg(&ExecuteLoanMsg{}, "consensus/execute_loan")
	codec.RegisterMsg(&SubmitTradeMsg{}, "consensus/submit_trade")
	codec.RegisterMsg(&ExecuteTradeMsg{}, "consensus/execute_trade")
	codec.RegisterMsg(&ProposeMsg{}, "consensus/propose")
	codec.RegisterMsg(&VoteMsg{}, "consensus/vote")
	codec.RegisterMsg(&ExecuteProposalMsg{}, "consensus/execute_proposal")
	codec.RegisterMsg(&UpdateCommitteeMsg{}, "consensus/update_committee")
	codec.RegisterMsg(&ReportProfitMsg{}, "consensus/report_profit")
}

func validateDigest(id []byte) error {
	if len(id) != sha256.Size {
		return errors.Wrapf(errors.ErrInput, "id must be %d bytes", sha256.Size)
	}
	return nil
}

// SubmitLoanMsg proposes a loan, committee only.
type SubmitLoanMsg struct {
	Borrower     arabica.Address
	Amount       coin.Amount
	Collateral   []byte
	InterestRate uint32
	DurationDays uint32
}

var _ arabica.Msg = (*SubmitLoanMsg)(nil)

func (SubmitLoanMsg) Path() string { return "consensus/submit_loan" }

func (m *SubmitLoanMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *SubmitLoanMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }

func (m *SubmitLoanMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Borrower", m.Borrower.Validate())
	if m.Amount.IsZero() {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	if len(m.Collateral) == 0 {
		errs = errors.AppendField(errs, "Collateral", errors.ErrEmpty)
	}
	if m.InterestRate > coin.BasisPoints {
		errs = errors.AppendField(errs, "InterestRate", errors.ErrInput)
	}
	if m.DurationDays == 0 {
		errs = errors.AppendField(errs, "DurationDays", errors.ErrInput)
	}
	return errs
}

// ApproveLoanMsg approves a loan, committee only.
type ApproveLoanMsg struct {
	LoanID []byte
}

var _ arabica.Msg = (*ApproveLoanMsg)(nil)

func (ApproveLoanMsg) Path() string { return "consensus/approve_loan" }

func (m *ApproveLoanMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *ApproveLoanMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }

func (m *ApproveLoanMsg) Validate() error {
	return errors.AppendField(nil, "LoanID", validateDigest(m.LoanID))
}

// ExecuteLoanMsg executes an approved loan, committee only.
type ExecuteLoanMsg struct {
	LoanID []byte
}

var _ arabica.Msg = (*ExecuteLoanMsg)(nil)

func (ExecuteLoanMsg) Path() string { return "consensus/execute_loan" }

func (m *ExecuteLoanMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *ExecuteLoanMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }

func (m *ExecuteLoanMsg) Validate() error {
	return errors.AppendField(nil, "LoanID", validateDigest(m.LoanID))
}

// SubmitTradeMsg proposes a trade, committee only.
type SubmitTradeMsg struct {
	AssetIn      string
	AssetOut     string
	AmountIn     coin.Amount
	MinAmountOut coin.Amount
	Deadline     arabica.UnixTime
}

var _ arabica.Msg = (*SubmitTradeMsg)(nil)

func (SubmitTradeMsg) Path() string { return "consensus/submit_trade" }

func (m *SubmitTradeMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *SubmitTradeMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }

func (m *SubmitTradeMsg) Validate() error {
	var errs error
	if !coin.IsTicker(m.AssetIn) {
		errs = errors.AppendField(errs, "AssetIn", errors.ErrCurrency)
	}
	if !coin.IsTicker(m.AssetOut) {
		errs = errors.AppendField(errs, "AssetOut", errors.ErrCurrency)
	}
	if m.AmountIn.IsZero() {
		errs = errors.AppendField(errs, "AmountIn", errors.ErrAmount)
	}
	errs = errors.AppendField(errs, "Deadline", m.Deadline.Validate())
	return errs
}

// ExecuteTradeMsg executes a trade before its deadline, committee only.
type ExecuteTradeMsg struct {
	TradeID []byte
}

var _ arabica.Msg = (*ExecuteTradeMsg)(nil)

func (ExecuteTradeMsg) Path() string { return "consensus/execute_trade" }

func (m *ExecuteTradeMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *ExecuteTradeMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }

func (m *ExecuteTradeMsg) Validate() error {
	return errors.AppendField(nil, "TradeID", validateDigest(m.TradeID))
}

// ProposeMsg proposes a new value of a protocol parameter.
type ProposeMsg struct {
	Parameter params.Parameter
	NewValue  coin.Amount
}

var _ arabica.Msg = (*ProposeMsg)(nil)

func (ProposeMsg) Path() string { return "consensus/propose" }

func (m *ProposeMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *ProposeMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }

func (m *ProposeMsg) Validate() error {
	return errors.AppendField(nil, "Parameter", m.Parameter.Validate())
}

// VoteMsg votes on a governance proposal with the ledger balance of the
// signer.
type VoteMsg struct {
	ProposalID []byte
	Support    bool
}

var _ arabica.Msg = (*VoteMsg)(nil)

func (VoteMsg) Path() string { return "consensus/vote" }

func (m *VoteMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *VoteMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }

func (m *VoteMsg) Validate() error {
	return errors.AppendField(nil, "ProposalID", validateDigest(m.ProposalID))
}

// ExecuteProposalMsg closes a governance proposal after the voting period.
type ExecuteProposalMsg struct {
	ProposalID []byte
}

var _ arabica.Msg = (*ExecuteProposalMsg)(nil)

func (ExecuteProposalMsg) Path() string { return "consensus/execute_proposal" }

func (m *ExecuteProposalMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *ExecuteProposalMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }

func (m *ExecuteProposalMsg) Validate() error {
	return errors.AppendField(nil, "ProposalID", validateDigest(m.ProposalID))
}

// UpdateCommitteeMsg replaces the committee, administrator only.
type UpdateCommitteeMsg struct {
	Members []Member
}

var _ arabica.Msg = (*UpdateCommitteeMsg)(nil)

func (UpdateCommitteeMsg) Path() string { return "consensus/update_committee" }

func (m *UpdateCommitteeMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *UpdateCommitteeMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }

func (m *UpdateCommitteeMsg) Validate() error {
	return errors.AppendField(nil, "Members", validateCommittee(m.Members))
}

// ReportProfitMsg records the profit of a period, administrator only.
type ReportProfitMsg struct {
	LendingProfit coin.Amount
	TradingProfit coin.Amount
}

var _ arabica.Msg = (*ReportProfitMsg)(nil)

func (ReportProfitMsg) Path() string { return "consensus/report_profit" }

func (m *ReportProfitMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *ReportProfitMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }

func (m *ReportProfitMsg) Validate() error {
	if m.LendingProfit.IsZero() && m.TradingProfit.IsZero() {
		return errors.Field("LendingProfit", errors.ErrAmount, "no profit reported")
	}
	return nil
}
