package consensus

import (
	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/coin"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/gconf"
	"github.com/arabica-labs/arabica/orm"
	"github.com/arabica-labs/arabica/x/collateral"
	"github.com/arabica-labs/arabica/x/ledger"
	"github.com/arabica-labs/arabica/x/params"
)

const pkg = "consensus"

// Controller implements the committee and governance workflows.
type Controller struct {
	loans     orm.ModelBucket
	trades    orm.ModelBucket
	proposals orm.ModelBucket
	approvals orm.ModelBucket
	votes     orm.ModelBucket
	profits   orm.ModelBucket

	ledger     ledger.Controller
	collateral collateral.Controller
	params     params.Controller
}

var _ collateral.Committee = Controller{}

// NewController returns a controller reading voting power from the ledger.
func NewController(l ledger.Controller, c collateral.Controller, p params.Controller) Controller {
	return Controller{
		loans:      NewLoanBucket(),
		trades:     NewTradeBucket(),
		proposals:  NewProposalBucket(),
		approvals:  NewApprovalBucket(),
		votes:      NewVoteBucket(),
		profits:    NewProfitBucket(),
		ledger:     l,
		collateral: c,
		params:     p,
	}
}

// Committee returns the current committee.
func (c Controller) Committee(db arabica.ReadOnlyKVStore) ([]Member, error) {
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	return conf.Committee, nil
}

// IsMember returns true if the address belongs to the committee.
func (c Controller) IsMember(db arabica.ReadOnlyKVStore, addr arabica.Address) (bool, error) {
	members, err := c.Committee(db)
	if err != nil {
		return false, err
	}
	for _, m := range members {
		if m.Address.Equals(addr) {
			return true, nil
		}
	}
	return false, nil
}

// UpdateCommittee replaces the whole committee. The size is fixed.
func (c Controller) UpdateCommittee(db arabica.KVStore, members []Member) error {
	conf, err := loadConf(db)
	if err != nil {
		return err
	}
	conf.Committee = members
	return gconf.Save(db, pkg, conf)
}

// SubmitLoan stores a new pending loan proposal and returns its id.
func (c Controller) SubmitLoan(ctx arabica.Context, db arabica.KVStore, loan *LoanProposal) ([]byte, error) {
	now, err := arabica.BlockUnixTime(ctx)
	if err != nil {
		return nil, err
	}
	loan.CreatedAt = now
	loan.Status = Pending
	loan.Approvals = 0
	id := LoanID(loan.Borrower, loan.Amount, now)
	if err := c.insert(db, c.loans, id, loan); err != nil {
		return nil, err
	}
	return id, nil
}

// Loan returns the loan proposal with the given id.
func (c Controller) Loan(db arabica.ReadOnlyKVStore, id []byte) (*LoanProposal, error) {
	var p LoanProposal
	if err := c.loans.One(db, id, &p); err != nil {
		return nil, errors.Wrap(err, "loan proposal")
	}
	return &p, nil
}

// ApproveLoan records the approval of a member. The loan becomes Approved
// when the required number of approvals is reached. Approvals after that
// are recorded without another transition.
func (c Controller) ApproveLoan(ctx arabica.Context, db arabica.KVStore, id []byte, member arabica.Address) (*LoanProposal, error) {
	loan, err := c.Loan(db, id)
	if err != nil {
		return nil, err
	}
	if loan.Status == Executed {
		return nil, errors.Wrap(errors.ErrState, "loan already executed")
	}
	now, err := arabica.BlockUnixTime(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.insert(db, c.approvals, markKey(id, member), &Mark{Support: true, Weight: coin.NewAmount(1), At: now}); err != nil {
		return nil, errors.Wrap(err, "approval")
	}
	loan.Approvals++
	if loan.Status == Pending && loan.Approvals >= RequiredApprovals {
		loan.Status = Approved
	}
	if _, err := c.loans.Put(db, id, loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// ExecuteLoan moves an approved loan to Executed once the registry
// confirms the collateral. Funds are not moved.
func (c Controller) ExecuteLoan(db arabica.KVStore, id []byte) (*LoanProposal, error) {
	loan, err := c.Loan(db, id)
	if err != nil {
		return nil, err
	}
	if loan.Status != Approved {
		return nil, errors.Wrapf(errors.ErrState, "loan is %s", loan.Status)
	}
	if err := c.collateral.VerifyCollateral(db, loan.Collateral, id, loan.Amount); err != nil {
		return nil, err
	}
	loan.Status = Executed
	if _, err := c.loans.Put(db, id, loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// SubmitTrade stores a new trade proposal and returns its id.
func (c Controller) SubmitTrade(ctx arabica.Context, db arabica.KVStore, trade *TradeProposal) ([]byte, error) {
	now, err := arabica.BlockUnixTime(ctx)
	if err != nil {
		return nil, err
	}
	id := TradeID(trade.AssetIn, trade.AmountIn, now)
	if err := c.insert(db, c.trades, id, trade); err != nil {
		return nil, err
	}
	return id, nil
}

// ExecuteTrade removes a trade proposal that did not pass its deadline.
// Settlement happens outside of the chain.
func (c Controller) ExecuteTrade(ctx arabica.Context, db arabica.KVStore, id []byte) (*TradeProposal, error) {
	var trade TradeProposal
	if err := c.trades.One(db, id, &trade); err != nil {
		return nil, errors.Wrap(err, "trade proposal")
	}
	now, err := arabica.BlockUnixTime(ctx)
	if err != nil {
		return nil, err
	}
	if now > trade.Deadline {
		return nil, errors.Wrapf(errors.ErrExpired, "deadline %s", trade.Deadline)
	}
	if err := c.trades.Delete(db, id); err != nil {
		return nil, err
	}
	return &trade, nil
}

// Propose creates a governance proposal. The proposer must hold at least
// the minimum proposal power.
func (c Controller) Propose(ctx arabica.Context, db arabica.KVStore, proposer arabica.Address, param params.Parameter, value coin.Amount) ([]byte, error) {
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	power, err := c.ledger.Balance(db, proposer)
	if err != nil {
		return nil, err
	}
	if power.LessThan(conf.MinProposalPower) {
		return nil, errors.Wrapf(errors.ErrInsufficientAmount, "required %s, have %s", conf.MinProposalPower, power)
	}
	// A value that could never be set would keep the proposal pending.
	current, err := c.params.Params(db)
	if err != nil {
		return nil, err
	}
	next, err := current.With(param, value)
	if err != nil {
		return nil, err
	}
	if err := next.Validate(); err != nil {
		return nil, errors.Wrapf(err, "proposed %s", param)
	}
	now, err := arabica.BlockUnixTime(ctx)
	if err != nil {
		return nil, err
	}
	p := GovProposal{
		Proposer:       proposer,
		Parameter:      param,
		NewValue:       value,
		VotingDeadline: now.Add(VotingPeriod),
		Status:         Pending,
	}
	id := ProposalID(proposer, param, value, now)
	if err := c.insert(db, c.proposals, id, &p); err != nil {
		return nil, err
	}
	return id, nil
}

// Proposal returns the governance proposal with the given id.
func (c Controller) Proposal(db arabica.ReadOnlyKVStore, id []byte) (*GovProposal, error) {
	var p GovProposal
	if err := c.proposals.One(db, id, &p); err != nil {
		return nil, errors.Wrap(err, "governance proposal")
	}
	return &p, nil
}

// Vote adds the ledger balance of the voter to one side of the tally.
// Every address votes once, strictly before the deadline.
func (c Controller) Vote(ctx arabica.Context, db arabica.KVStore, id []byte, voter arabica.Address, support bool) (*GovProposal, error) {
	p, err := c.Proposal(db, id)
	if err != nil {
		return nil, err
	}
	if arabica.IsExpired(ctx, p.VotingDeadline) {
		return nil, errors.Wrap(errors.ErrExpired, "voting period has ended")
	}
	if p.Status != Pending {
		return nil, errors.Wrapf(errors.ErrState, "proposal is %s", p.Status)
	}
	weight, err := c.ledger.Balance(db, voter)
	if err != nil {
		return nil, err
	}
	now, err := arabica.BlockUnixTime(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.insert(db, c.votes, markKey(id, voter), &Mark{Support: support, Weight: weight, At: now}); err != nil {
		return nil, errors.Wrap(err, "vote")
	}
	if support {
		p.VotesFor, err = p.VotesFor.Add(weight)
	} else {
		p.VotesAgainst, err = p.VotesAgainst.Add(weight)
	}
	if err != nil {
		return nil, err
	}
	if _, err := c.proposals.Put(db, id, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ExecuteProposal closes a proposal after the voting period. A proposal
// with more weight for than against is Executed and its parameter
// changed. Otherwise it is Rejected. The new status is returned in both
// cases, the caller reports the rejection.
func (c Controller) ExecuteProposal(ctx arabica.Context, db arabica.KVStore, id []byte) (*GovProposal, error) {
	p, err := c.Proposal(db, id)
	if err != nil {
		return nil, err
	}
	if p.Status != Pending {
		return nil, errors.Wrapf(errors.ErrState, "proposal is %s", p.Status)
	}
	now, err := arabica.BlockUnixTime(ctx)
	if err != nil {
		return nil, err
	}
	if now <= p.VotingDeadline {
		return nil, errors.Wrap(errors.ErrState, "voting not closed")
	}
	if p.VotesFor.Cmp(p.VotesAgainst) <= 0 {
		p.Status = Rejected
	} else {
		if err := c.params.Set(db, p.Parameter, p.NewValue); err != nil {
			return nil, errors.Wrapf(err, "set %s", p.Parameter)
		}
		p.Status = Executed
	}
	if _, err := c.proposals.Put(db, id, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ReportProfit records a profit split into the protocol fee and the yield
// distributed to holders.
func (c Controller) ReportProfit(ctx arabica.Context, db arabica.KVStore, lending, trading coin.Amount) ([]byte, *ProfitReport, error) {
	now, err := arabica.BlockUnixTime(ctx)
	if err != nil {
		return nil, nil, err
	}
	p, err := c.params.Params(db)
	if err != nil {
		return nil, nil, err
	}
	total, err := lending.Add(trading)
	if err != nil {
		return nil, nil, err
	}
	fee, err := total.MulBasisPoints(p.ProtocolFeeRate)
	if err != nil {
		return nil, nil, err
	}
	distributed, err := total.Sub(fee)
	if err != nil {
		return nil, nil, err
	}
	r := ProfitReport{
		LendingProfit:    lending,
		TradingProfit:    trading,
		TotalProfit:      total,
		ProtocolFee:      fee,
		YieldDistributed: distributed,
		Timestamp:        now,
	}
	id, err := c.profits.Put(db, nil, &r)
	if err != nil {
		return nil, nil, err
	}
	return id, &r, nil
}

// insert stores a model under a key that must not exist yet.
func (c Controller) insert(db arabica.KVStore, b orm.ModelBucket, key []byte, m orm.Model) error {
	switch err := b.Has(db, key); {
	case err == nil:
		return errors.Wrapf(errors.ErrDuplicate, "%X", key)
	case !errors.ErrNotFound.Is(err):
		return err
	}
	_, err := b.Put(db, key, m)
	return err
}

func loadConf(db arabica.ReadOnlyKVStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, pkg, &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}
