package consensus

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/codec"
	"github.com/arabica-labs/arabica/coin"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/orm"
	"github.com/arabica-labs/arabica/x/params"
)

const (
	// CommitteeSize is the number of committee members.
	CommitteeSize = 5

	// RequiredApprovals is the number of distinct members that must
	// approve a loan.
	RequiredApprovals = 3

	// VotingPeriod is the time governance proposals accept votes.
	VotingPeriod = 7 * arabica.Day
)

// Status of a proposal.
type Status uint8

const (
	Pending Status = iota + 1
	Approved
	Rejected
	Executed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Approved:
		return "approved"
	case Rejected:
		return "rejected"
	case Executed:
		return "executed"
	}
	return "invalid"
}

// Expertise of a committee member.
type Expertise uint8

const (
	CoffeeIndustry Expertise = iota + 1
	RiskManagement
	Trading
	Agriculture
)

func (e Expertise) Validate() error {
	if e < CoffeeIndustry || e > Agriculture {
		return errors.Wrapf(errors.ErrInput, "expertise %d", e)
	}
	return nil
}

// Member of the committee. The vote weight is informational, every
// member approves with a weight of one.
type Member struct {
	Address    arabica.Address `json:"address"`
	Expertise  Expertise       `json:"expertise"`
	VoteWeight uint32          `json:"vote_weight"`
}

func validateCommittee(members []Member) error {
	if len(members) != CommitteeSize {
		return errors.Wrapf(errors.ErrInput, "committee must have %d members, got %d", CommitteeSize, len(members))
	}
	var errs error
	for i, m := range members {
		errs = errors.AppendField(errs, "Address", errors.Wrapf(m.Address.Validate(), "member %d", i))
		errs = errors.AppendField(errs, "Expertise", errors.Wrapf(m.Expertise.Validate(), "member %d", i))
		for _, o := range members[:i] {
			if o.Address.Equals(m.Address) {
				errs = errors.Append(errs, errors.Wrapf(errors.ErrDuplicate, "member %s", m.Address))
			}
		}
	}
	return errs
}

// Configuration of the consensus extension.
type Configuration struct {
	Admin     arabica.Address `json:"admin"`
	Committee []Member        `json:"committee"`
	// MinProposalPower is the ledger balance required to propose a
	// parameter change.
	MinProposalPower coin.Amount `json:"min_proposal_power"`
}

func (c *Configuration) Marshal() ([]byte, error) { return codec.Marshal(c) }
func (c *Configuration) Unmarshal(b []byte) error { return codec.Unmarshal(b, c) }

func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Admin", c.Admin.Validate())
	errs = errors.AppendField(errs, "Committee", validateCommittee(c.Committee))
	return errs
}

// LoanProposal asks the committee to fund a borrower.
type LoanProposal struct {
	Proposer arabica.Address
	Borrower arabica.Address
	Amount   coin.Amount
	// Collateral is the id of the registered asset securing the loan.
	Collateral   []byte
	InterestRate uint32
	DurationDays uint32
	Approvals    uint32
	CreatedAt    arabica.UnixTime
	Status       Status
}

var _ orm.Model = (*LoanProposal)(nil)

func (p *LoanProposal) Marshal() ([]byte, error)   { return codec.Marshal(p) }
func (p *LoanProposal) Unmarshal(raw []byte) error { return codec.Unmarshal(raw, p) }

func (p *LoanProposal) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Proposer", p.Proposer.Validate())
	errs = errors.AppendField(errs, "Borrower", p.Borrower.Validate())
	if p.Amount.IsZero() {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	if len(p.Collateral) == 0 {
		errs = errors.AppendField(errs, "Collateral", errors.ErrEmpty)
	}
	if p.InterestRate > coin.BasisPoints {
		errs = errors.AppendField(errs, "InterestRate", errors.ErrInput)
	}
	if p.DurationDays == 0 {
		errs = errors.AppendField(errs, "DurationDays", errors.ErrInput)
	}
	if p.Status != Pending && p.Status != Approved && p.Status != Executed {
		errs = errors.AppendField(errs, "Status", errors.ErrState)
	}
	return errs
}

// TradeProposal asks a committee member to swap protocol assets before
// the deadline.
type TradeProposal struct {
	Proposer     arabica.Address
	AssetIn      string
	AssetOut     string
	AmountIn     coin.Amount
	MinAmountOut coin.Amount
	Deadline     arabica.UnixTime
}

var _ orm.Model = (*TradeProposal)(nil)

func (p *TradeProposal) Marshal() ([]byte, error)   { return codec.Marshal(p) }
func (p *TradeProposal) Unmarshal(raw []byte) error { return codec.Unmarshal(raw, p) }

func (p *TradeProposal) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Proposer", p.Proposer.Validate())
	if !coin.IsTicker(p.AssetIn) {
		errs = errors.AppendField(errs, "AssetIn", errors.ErrCurrency)
	}
	if !coin.IsTicker(p.AssetOut) {
		errs = errors.AppendField(errs, "AssetOut", errors.ErrCurrency)
	}
	if p.AmountIn.IsZero() {
		errs = errors.AppendField(errs, "AmountIn", errors.ErrAmount)
	}
	errs = errors.AppendField(errs, "Deadline", p.Deadline.Validate())
	return errs
}

// GovProposal changes a protocol parameter once accepted.
type GovProposal struct {
	Proposer       arabica.Address
	Parameter      params.Parameter
	NewValue       coin.Amount
	VotesFor       coin.Amount
	VotesAgainst   coin.Amount
	VotingDeadline arabica.UnixTime
	Status         Status
}

var _ orm.Model = (*GovProposal)(nil)

func (p *GovProposal) Marshal() ([]byte, error)   { return codec.Marshal(p) }
func (p *GovProposal) Unmarshal(raw []byte) error { return codec.Unmarshal(raw, p) }

func (p *GovProposal) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Proposer", p.Proposer.Validate())
	errs = errors.AppendField(errs, "Parameter", p.Parameter.Validate())
	errs = errors.AppendField(errs, "VotingDeadline", p.VotingDeadline.Validate())
	if p.Status != Pending && p.Status != Rejected && p.Status != Executed {
		errs = errors.AppendField(errs, "Status", errors.ErrState)
	}
	return errs
}

// Mark records a loan approval or a governance vote of a single address.
type Mark struct {
	Support bool
	Weight  coin.Amount
	At      arabica.UnixTime
}

var _ orm.Model = (*Mark)(nil)

func (m *Mark) Marshal() ([]byte, error)   { return codec.Marshal(m) }
func (m *Mark) Unmarshal(raw []byte) error { return codec.Unmarshal(raw, m) }

func (m *Mark) Validate() error {
	return errors.AppendField(nil, "At", m.At.Validate())
}

// ProfitReport splits a reported profit into the protocol fee and the part
// distributed as yield.
type ProfitReport struct {
	LendingProfit    coin.Amount
	TradingProfit    coin.Amount
	TotalProfit      coin.Amount
	ProtocolFee      coin.Amount
	YieldDistributed coin.Amount
	Timestamp        arabica.UnixTime
}

var _ orm.Model = (*ProfitReport)(nil)

func (r *ProfitReport) Marshal() ([]byte, error)   { return codec.Marshal(r) }
func (r *ProfitReport) Unmarshal(raw []byte) error { return codec.Unmarshal(raw, r) }

func (r *ProfitReport) Validate() error {
	if r.TotalProfit.IsZero() {
		return errors.Field("TotalProfit", errors.ErrAmount, "must be positive")
	}
	return nil
}

// LoanID is sha256(borrower || amount || timestamp), integers in 16 and 8
// byte big endian.
func LoanID(borrower arabica.Address, amount coin.Amount, ts arabica.UnixTime) []byte {
	return digest(borrower, amount.Bytes(), uint64Bytes(uint64(ts)))
}

// TradeID is sha256(asset_in || amount_in || timestamp).
func TradeID(assetIn string, amountIn coin.Amount, ts arabica.UnixTime) []byte {
	return digest([]byte(assetIn), amountIn.Bytes(), uint64Bytes(uint64(ts)))
}

// ProposalID is sha256(proposer || parameter || new_value || timestamp),
// the parameter in 4 byte big endian.
func ProposalID(proposer arabica.Address, param params.Parameter, value coin.Amount, ts arabica.UnixTime) []byte {
	p := make([]byte, 4)
	binary.BigEndian.PutUint32(p, uint32(param))
	return digest(proposer, p, value.Bytes(), uint64Bytes(uint64(ts)))
}

func digest(parts ...[]byte) []byte {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

func uint64Bytes(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// markKey is the key of the mark of an address on a proposal.
func markKey(id []byte, addr arabica.Address) []byte {
	return append(append([]byte{}, id...), addr...)
}

func NewLoanBucket() orm.ModelBucket {
	return orm.NewModelBucket("loans", &LoanProposal{})
}

func NewTradeBucket() orm.ModelBucket {
	return orm.NewModelBucket("trades", &TradeProposal{})
}

func NewProposalBucket() orm.ModelBucket {
	return orm.NewModelBucket("proposals", &GovProposal{})
}

// NewApprovalBucket stores loan approvals under loan id and member.
func NewApprovalBucket() orm.ModelBucket {
	return orm.NewModelBucket("approvals", &Mark{})
}

// NewVoteBucket stores governance votes under proposal id and voter.
func NewVoteBucket() orm.ModelBucket {
	return orm.NewModelBucket("votes", &Mark{})
}

// NewProfitBucket stores profit reports under a sequence.
func NewProfitBucket() orm.ModelBucket {
	return orm.NewModelBucket("profits", &ProfitReport{}, orm.WithIDSequence(orm.NewSequence("profits", "id")))
}
