package consensus

import (
	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/codec"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/x"
)

const (
	proposeCost int64 = 200
	voteCost    int64 = 50

	committeePath = "/committee"
)

// RegisterRoutes registers all committee and governance handlers.
func RegisterRoutes(r arabica.Registry, auth x.Authenticator, ctrl Controller) {
	r.Handle(&SubmitLoanMsg{}, &SubmitLoanHandler{auth: auth, ctrl: ctrl})
	r.Handle(&ApproveLoanMsg{}, &ApproveLoanHandler{auth: auth, ctrl: ctrl})
	r.Handle(&ExecuteLoanMsg{}, &ExecuteLoanHandler{auth: auth, ctrl: ctrl})
	r.Handle(&SubmitTradeMsg{}, &SubmitTradeHandler{auth: auth, ctrl: ctrl})
	r.Handle(&ExecuteTradeMsg{}, &ExecuteTradeHandler{auth: auth, ctrl: ctrl})
	r.Handle(&ProposeMsg{}, &ProposeHandler{auth: auth, ctrl: ctrl})
	r.Handle(&VoteMsg{}, &VoteHandler{auth: auth, ctrl: ctrl})
	r.Handle(&ExecuteProposalMsg{}, &ExecuteProposalHandler{auth: auth, ctrl: ctrl})
	r.Handle(&UpdateCommitteeMsg{}, &UpdateCommitteeHandler{auth: auth, ctrl: ctrl})
	r.Handle(&ReportProfitMsg{}, &ReportProfitHandler{auth: auth, ctrl: ctrl})
}

// RegisterQuery exposes the proposals, the marks, the profit reports and
// the committee.
func RegisterQuery(qr arabica.QueryRouter) {
	NewLoanBucket().Register(qr)
	NewTradeBucket().Register(qr)
	NewProposalBucket().Register(qr)
	NewApprovalBucket().Register(qr)
	NewVoteBucket().Register(qr)
	NewProfitBucket().Register(qr)
	qr.Register(committeePath, committeeQuery{})
}

// committeeSigner returns the first signer that is a committee member.
func committeeSigner(ctx arabica.Context, db arabica.ReadOnlyKVStore, auth x.Authenticator, ctrl Controller) (arabica.Address, error) {
	for _, addr := range x.GetAddresses(ctx, auth) {
		ok, err := ctrl.IsMember(db, addr)
		if err != nil {
			return nil, err
		}
		if ok {
			return addr, nil
		}
	}
	return nil, errors.Wrap(errors.ErrUnauthorized, "not a committee member")
}

func requireAdmin(ctx arabica.Context, db arabica.ReadOnlyKVStore, auth x.Authenticator) error {
	conf, err := loadConf(db)
	if err != nil {
		return err
	}
	return x.RequireAddress(ctx, auth, conf.Admin, "admin")
}

// SubmitLoanHandler stores a loan proposal.
type SubmitLoanHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ arabica.Handler = (*SubmitLoanHandler)(nil)

func (h *SubmitLoanHandler) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &arabica.CheckResult{GasAllocated: proposeCost}, nil
}

func (h *SubmitLoanHandler) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.DeliverResult, error) {
	msg, proposer, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	id, err := h.ctrl.SubmitLoan(ctx, db, &LoanProposal{
		Proposer:     proposer,
		Borrower:     msg.Borrower,
		Amount:       msg.Amount,
		Collateral:   msg.Collateral,
		InterestRate: msg.InterestRate,
		DurationDays: msg.DurationDays,
	})
	if err != nil {
		return nil, err
	}
	arabica.GetLogger(ctx).Info("loan proposed", "id", id, "borrower", msg.Borrower, "amount", msg.Amount.String())
	return &arabica.DeliverResult{Data: id}, nil
}

func (h *SubmitLoanHandler) validate(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*SubmitLoanMsg, arabica.Address, error) {
	var msg SubmitLoanMsg
	if err := arabica.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	member, err := committeeSigner(ctx, db, h.auth, h.ctrl)
	if err != nil {
		return nil, nil, err
	}
	return &msg, member, nil
}

// ApproveLoanHandler records the approval of a committee member.
type ApproveLoanHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ arabica.Handler = (*ApproveLoanHandler)(nil)

func (h *ApproveLoanHandler) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &arabica.CheckResult{GasAllocated: voteCost}, nil
}

func (h *ApproveLoanHandler) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.DeliverResult, error) {
	msg, member, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	loan, err := h.ctrl.ApproveLoan(ctx, db, msg.LoanID, member)
	if err != nil {
		return nil, err
	}
	log := arabica.GetLogger(ctx)
	log.Info("loan approval", "id", msg.LoanID, "member", member, "approvals", loan.Approvals)
	if loan.Status == Approved && loan.Approvals == RequiredApprovals {
		log.Info("proposal approved", "id", msg.LoanID)
	}
	return &arabica.DeliverResult{}, nil
}

func (h *ApproveLoanHandler) validate(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*ApproveLoanMsg, arabica.Address, error) {
	var msg ApproveLoanMsg
	if err := arabica.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	member, err := committeeSigner(ctx, db, h.auth, h.ctrl)
	if err != nil {
		return nil, nil, err
	}
	return &msg, member, nil
}

// ExecuteLoanHandler executes an approved loan.
type ExecuteLoanHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ arabica.Handler = (*ExecuteLoanHandler)(nil)

func (h *ExecuteLoanHandler) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &arabica.CheckResult{GasAllocated: proposeCost}, nil
}

func (h *ExecuteLoanHandler) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	loan, err := h.ctrl.ExecuteLoan(db, msg.LoanID)
	if err != nil {
		return nil, err
	}
	arabica.GetLogger(ctx).Info("loan executed", "id", msg.LoanID, "borrower", loan.Borrower, "amount", loan.Amount.String())
	return &arabica.DeliverResult{}, nil
}

func (h *ExecuteLoanHandler) validate(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*ExecuteLoanMsg, error) {
	var msg ExecuteLoanMsg
	if err := arabica.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := committeeSigner(ctx, db, h.auth, h.ctrl); err != nil {
		return nil, err
	}
	return &msg, nil
}

// SubmitTradeHandler stores a trade proposal.
type SubmitTradeHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ arabica.Handler = (*SubmitTradeHandler)(nil)

func (h *SubmitTradeHandler) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &arabica.CheckResult{GasAllocated: proposeCost}, nil
}

func (h *SubmitTradeHandler) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.DeliverResult, error) {
	msg, proposer, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	id, err := h.ctrl.SubmitTrade(ctx, db, &TradeProposal{
		Proposer:     proposer,
		AssetIn:      msg.AssetIn,
		AssetOut:     msg.AssetOut,
		AmountIn:     msg.AmountIn,
		MinAmountOut: msg.MinAmountOut,
		Deadline:     msg.Deadline,
	})
	if err != nil {
		return nil, err
	}
	arabica.GetLogger(ctx).Info("trade proposed", "id", id, "in", msg.AssetIn, "out", msg.AssetOut)
	return &arabica.DeliverResult{Data: id}, nil
}

func (h *SubmitTradeHandler) validate(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*SubmitTradeMsg, arabica.Address, error) {
	var msg SubmitTradeMsg
	if err := arabica.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	member, err := committeeSigner(ctx, db, h.auth, h.ctrl)
	if err != nil {
		return nil, nil, err
	}
	return &msg, member, nil
}

// ExecuteTradeHandler removes a trade proposal before its deadline.
type ExecuteTradeHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ arabica.Handler = (*ExecuteTradeHandler)(nil)

func (h *ExecuteTradeHandler) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &arabica.CheckResult{GasAllocated: proposeCost}, nil
}

func (h *ExecuteTradeHandler) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if _, err := h.ctrl.ExecuteTrade(ctx, db, msg.TradeID); err != nil {
		return nil, err
	}
	arabica.GetLogger(ctx).Info("trade executed", "id", msg.TradeID)
	return &arabica.DeliverResult{}, nil
}

func (h *ExecuteTradeHandler) validate(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*ExecuteTradeMsg, error) {
	var msg ExecuteTradeMsg
	if err := arabica.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := committeeSigner(ctx, db, h.auth, h.ctrl); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ProposeHandler creates a governance proposal.
type ProposeHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ arabica.Handler = (*ProposeHandler)(nil)

func (h *ProposeHandler) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &arabica.CheckResult{GasAllocated: proposeCost}, nil
}

func (h *ProposeHandler) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.DeliverResult, error) {
	msg, proposer, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	id, err := h.ctrl.Propose(ctx, db, proposer, msg.Parameter, msg.NewValue)
	if err != nil {
		return nil, err
	}
	arabica.GetLogger(ctx).Info("governance proposal", "id", id, "parameter", msg.Parameter, "value", msg.NewValue.String())
	return &arabica.DeliverResult{Data: id}, nil
}

func (h *ProposeHandler) validate(ctx arabica.Context, tx arabica.Tx) (*ProposeMsg, arabica.Address, error) {
	var msg ProposeMsg
	if err := arabica.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	proposer, err := x.MainSignerAddress(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return &msg, proposer, nil
}

// VoteHandler adds the weight of the signer to a proposal.
type VoteHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ arabica.Handler = (*VoteHandler)(nil)

func (h *VoteHandler) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &arabica.CheckResult{GasAllocated: voteCost}, nil
}

func (h *VoteHandler) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.DeliverResult, error) {
	msg, voter, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	p, err := h.ctrl.Vote(ctx, db, msg.ProposalID, voter, msg.Support)
	if err != nil {
		return nil, err
	}
	arabica.GetLogger(ctx).Debug("vote", "id", msg.ProposalID, "voter", voter, "support", msg.Support,
		"for", p.VotesFor.String(), "against", p.VotesAgainst.String())
	return &arabica.DeliverResult{}, nil
}

func (h *VoteHandler) validate(ctx arabica.Context, tx arabica.Tx) (*VoteMsg, arabica.Address, error) {
	var msg VoteMsg
	if err := arabica.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	voter, err := x.MainSignerAddress(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return &msg, voter, nil
}

// ExecuteProposalHandler closes a governance proposal. A rejected proposal
// is persisted as Rejected and reported with the ErrRejected result code.
type ExecuteProposalHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ arabica.Handler = (*ExecuteProposalHandler)(nil)

func (h *ExecuteProposalHandler) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &arabica.CheckResult{GasAllocated: proposeCost}, nil
}

func (h *ExecuteProposalHandler) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	p, err := h.ctrl.ExecuteProposal(ctx, db, msg.ProposalID)
	if err != nil {
		return nil, err
	}
	arabica.GetLogger(ctx).Info("governance proposal closed", "id", msg.ProposalID, "status", p.Status.String(),
		"for", p.VotesFor.String(), "against", p.VotesAgainst.String())
	res := &arabica.DeliverResult{Data: msg.ProposalID, Log: "proposal " + p.Status.String()}
	if p.Status == Rejected {
		res.Code = errors.ErrRejected.ABCICode()
	}
	return res, nil
}

func (h *ExecuteProposalHandler) validate(ctx arabica.Context, tx arabica.Tx) (*ExecuteProposalMsg, error) {
	var msg ExecuteProposalMsg
	if err := arabica.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := x.MainSignerAddress(ctx, h.auth); err != nil {
		return nil, err
	}
	return &msg, nil
}

// UpdateCommitteeHandler replaces the committee, administrator only.
type UpdateCommitteeHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ arabica.Handler = (*UpdateCommitteeHandler)(nil)

func (h *UpdateCommitteeHandler) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &arabica.CheckResult{}, nil
}

func (h *UpdateCommitteeHandler) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.UpdateCommittee(db, msg.Members); err != nil {
		return nil, err
	}
	arabica.GetLogger(ctx).Info("committee updated")
	return &arabica.DeliverResult{}, nil
}

func (h *UpdateCommitteeHandler) validate(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*UpdateCommitteeMsg, error) {
	var msg UpdateCommitteeMsg
	if err := arabica.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := requireAdmin(ctx, db, h.auth); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ReportProfitHandler records a profit report, administrator only.
type ReportProfitHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ arabica.Handler = (*ReportProfitHandler)(nil)

func (h *ReportProfitHandler) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &arabica.CheckResult{}, nil
}

func (h *ReportProfitHandler) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	id, r, err := h.ctrl.ReportProfit(ctx, db, msg.LendingProfit, msg.TradingProfit)
	if err != nil {
		return nil, err
	}
	arabica.GetLogger(ctx).Info("profit reported", "total", r.TotalProfit.String(),
		"fee", r.ProtocolFee.String(), "distributed", r.YieldDistributed.String())
	return &arabica.DeliverResult{Data: id}, nil
}

func (h *ReportProfitHandler) validate(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*ReportProfitMsg, error) {
	var msg ReportProfitMsg
	if err := arabica.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := requireAdmin(ctx, db, h.auth); err != nil {
		return nil, err
	}
	return &msg, nil
}

type committeeQuery struct{}

func (committeeQuery) Query(db arabica.ReadOnlyKVStore, mod string, data []byte) ([]arabica.Model, error) {
	conf, err := loadConf(db)
	if err != nil {
		if errors.ErrNotFound.Is(err) {
			return nil, nil
		}
		return nil, err
	}
	res := make([]arabica.Model, len(conf.Committee))
	for i, m := range conf.Committee {
		raw, err := codec.Marshal(&m)
		if err != nil {
			return nil, err
		}
		res[i] = arabica.Pair(m.Address, raw)
	}
	return res, nil
}
