package consensus

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/arbtest"
	"github.com/arabica-labs/arabica/arbtest/assert"
	"github.com/arabica-labs/arabica/coin"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/store"
	"github.com/arabica-labs/arabica/x/collateral"
	"github.com/arabica-labs/arabica/x/ledger"
	"github.com/arabica-labs/arabica/x/params"
)

var genesisTime = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	db         arabica.CacheableKVStore
	admin      arabica.Condition
	minter     arabica.Condition
	members    []arabica.Condition
	ledger     ledger.BaseController
	collateral collateral.BaseController
	params     params.BaseController
	ctrl       Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		db:     store.MemStore(),
		admin:  arbtest.NewCondition(),
		minter: arbtest.NewCondition(),
		ledger: ledger.NewController(),
		params: params.NewController(),
	}
	f.collateral = collateral.NewController(f.params)
	f.ctrl = NewController(f.ledger, f.collateral, f.params)

	var committee []string
	for i := 0; i < CommitteeSize; i++ {
		m := arbtest.NewCondition()
		f.members = append(f.members, m)
		committee = append(committee, fmt.Sprintf(`{"address": "%s", "expertise": %d, "vote_weight": 1}`,
			m.Address(), i%int(Agriculture)+1))
	}
	raw := `{"conf": {
		"consensus": {
			"admin": "` + f.admin.Address().String() + `",
			"committee": [` + strings.Join(committee, ",") + `],
			"min_proposal_power": "1000"
		},
		"ledger": {
			"admin": "` + f.admin.Address().String() + `",
			"minters": ["` + f.minter.Address().String() + `"],
			"name": "Coffee Yield Token",
			"symbol": "CYT"
		}
	}}`
	var opts arabica.Options
	assert.Nil(t, json.Unmarshal([]byte(raw), &opts))
	assert.Nil(t, Initializer{}.FromGenesis(opts, f.db))
	assert.Nil(t, ledger.Initializer{}.FromGenesis(opts, f.db))
	return f
}

func at(d time.Duration) arabica.Context {
	return arbtest.BlockContext(genesisTime.Add(d))
}

// fund gives the holder voting power.
func (f *fixture) fund(t *testing.T, holder arabica.Address, amount uint64) {
	t.Helper()
	err := f.ledger.Mint(at(0), f.db, f.minter.Address(), holder, coin.NewAmount(amount), "USDC", 500)
	assert.Nil(t, err)
}

func (f *fixture) deliver(t *testing.T, ctx arabica.Context, signer arabica.Condition, msg arabica.Msg) (*arabica.DeliverResult, error) {
	t.Helper()
	rt := make(router)
	RegisterRoutes(rt, &arbtest.Auth{Signer: signer}, f.ctrl)
	h, ok := rt[msg.Path()]
	if !ok {
		t.Fatalf("no handler for %q", msg.Path())
	}
	tx := &arbtest.Tx{Msg: msg}
	if _, err := h.Check(ctx, f.db, tx); err != nil {
		return nil, err
	}
	return h.Deliver(ctx, f.db, tx)
}

type router map[string]arabica.Handler

func (r router) Handle(m arabica.Msg, h arabica.Handler) {
	r[m.Path()] = h
}

func TestCommittee(t *testing.T) {
	f := newFixture(t)

	members, err := f.ctrl.Committee(f.db)
	assert.Nil(t, err)
	assert.Equal(t, CommitteeSize, len(members))

	ok, err := f.ctrl.IsMember(f.db, f.members[3].Address())
	assert.Nil(t, err)
	assert.Equal(t, true, ok)
	ok, err = f.ctrl.IsMember(f.db, f.admin.Address())
	assert.Nil(t, err)
	assert.Equal(t, false, ok)

	short := members[:CommitteeSize-1]
	assert.IsErr(t, errors.ErrInput, f.ctrl.UpdateCommittee(f.db, short))

	dup := append([]Member{}, members...)
	dup[4] = dup[0]
	assert.IsErr(t, errors.ErrDuplicate, f.ctrl.UpdateCommittee(f.db, dup))

	fresh := append([]Member{}, members...)
	fresh[0] = Member{Address: arbtest.RandomAddr(t), Expertise: Trading, VoteWeight: 1}
	assert.Nil(t, f.ctrl.UpdateCommittee(f.db, fresh))
	ok, err = f.ctrl.IsMember(f.db, f.members[0].Address())
	assert.Nil(t, err)
	assert.Equal(t, false, ok)
}

func TestLoanApproval(t *testing.T) {
	f := newFixture(t)
	borrower := arbtest.RandomAddr(t)
	amount := coin.NewAmount(100000)
	ctx := at(time.Hour)

	assetID, err := f.collateral.Register(f.db, &collateral.Asset{
		Owner:        borrower,
		BatchID:      "COL-HUI-2024-017",
		QualityGrade: 85,
		QuantityKg:   20000,
		Value:        coin.NewAmount(150000),
		FarmLocation: "Huila, Colombia",
		HarvestDate:  arabica.UnixTime(1700000000),
		CreatedAt:    arabica.AsUnixTime(genesisTime),
		Status:       collateral.Active,
	})
	assert.Nil(t, err)

	res, err := f.deliver(t, ctx, f.members[0], &SubmitLoanMsg{
		Borrower:     borrower,
		Amount:       amount,
		Collateral:   assetID,
		InterestRate: 800,
		DurationDays: 180,
	})
	assert.Nil(t, err)
	id := res.Data
	assert.Equal(t, LoanID(borrower, amount, arabica.AsUnixTime(genesisTime.Add(time.Hour))), id)

	// The same loan in the same second collides.
	_, err = f.deliver(t, ctx, f.members[1], &SubmitLoanMsg{
		Borrower:     borrower,
		Amount:       amount,
		Collateral:   assetID,
		InterestRate: 800,
		DurationDays: 180,
	})
	assert.IsErr(t, errors.ErrDuplicate, err)

	_, err = f.deliver(t, ctx, f.admin, &ApproveLoanMsg{LoanID: id})
	assert.IsErr(t, errors.ErrUnauthorized, err)

	for i := 0; i < RequiredApprovals-1; i++ {
		_, err := f.deliver(t, ctx, f.members[i], &ApproveLoanMsg{LoanID: id})
		assert.Nil(t, err)
	}
	loan, err := f.ctrl.Loan(f.db, id)
	assert.Nil(t, err)
	assert.Equal(t, Pending, loan.Status)
	assert.Equal(t, uint32(RequiredApprovals-1), loan.Approvals)

	_, err = f.deliver(t, ctx, f.members[0], &ApproveLoanMsg{LoanID: id})
	assert.IsErr(t, errors.ErrDuplicate, err)

	// Execution requires an approved loan.
	_, err = f.deliver(t, ctx, f.members[0], &ExecuteLoanMsg{LoanID: id})
	assert.IsErr(t, errors.ErrState, err)

	_, err = f.deliver(t, ctx, f.members[RequiredApprovals-1], &ApproveLoanMsg{LoanID: id})
	assert.Nil(t, err)
	loan, err = f.ctrl.Loan(f.db, id)
	assert.Nil(t, err)
	assert.Equal(t, Approved, loan.Status)

	// The asset does not secure this loan yet.
	_, err = f.deliver(t, ctx, f.members[0], &ExecuteLoanMsg{LoanID: id})
	assert.IsErr(t, errors.ErrState, err)

	asset, err := f.collateral.Get(f.db, assetID)
	assert.Nil(t, err)
	asset.LoanID = id
	_, err = collateral.NewAssetBucket().Put(f.db, assetID, asset)
	assert.Nil(t, err)

	_, err = f.deliver(t, ctx, f.members[0], &ExecuteLoanMsg{LoanID: id})
	assert.Nil(t, err)
	loan, err = f.ctrl.Loan(f.db, id)
	assert.Nil(t, err)
	assert.Equal(t, Executed, loan.Status)

	_, err = f.deliver(t, ctx, f.members[4], &ApproveLoanMsg{LoanID: id})
	assert.IsErr(t, errors.ErrState, err)
}

func TestLoanCollateralRatio(t *testing.T) {
	f := newFixture(t)
	borrower := arbtest.RandomAddr(t)
	amount := coin.NewAmount(100000)
	ctx := at(time.Hour)

	id, err := f.ctrl.SubmitLoan(ctx, f.db, &LoanProposal{
		Proposer:     f.members[0].Address(),
		Borrower:     borrower,
		Amount:       amount,
		Collateral:   []byte{0, 0, 0, 0, 0, 0, 0, 1},
		InterestRate: 800,
		DurationDays: 90,
	})
	assert.Nil(t, err)
	// Below the 150% collateral ratio.
	_, err = f.collateral.Register(f.db, &collateral.Asset{
		Owner:        borrower,
		BatchID:      "BRA-CER-2024-003",
		QualityGrade: 80,
		QuantityKg:   5000,
		Value:        coin.NewAmount(149999),
		FarmLocation: "Cerrado, Brazil",
		HarvestDate:  arabica.UnixTime(1700000000),
		CreatedAt:    arabica.AsUnixTime(genesisTime),
		LoanID:       id,
		Status:       collateral.Active,
	})
	assert.Nil(t, err)
	for i := 0; i < RequiredApprovals; i++ {
		_, err := f.ctrl.ApproveLoan(ctx, f.db, id, f.members[i].Address())
		assert.Nil(t, err)
	}
	_, err = f.ctrl.ExecuteLoan(f.db, id)
	assert.IsErr(t, errors.ErrInsufficientAmount, err)

	// Missing collateral.
	id, err = f.ctrl.SubmitLoan(ctx, f.db, &LoanProposal{
		Proposer:     f.members[0].Address(),
		Borrower:     borrower,
		Amount:       coin.NewAmount(5),
		Collateral:   []byte{0, 0, 0, 0, 0, 0, 0, 9},
		InterestRate: 800,
		DurationDays: 90,
	})
	assert.Nil(t, err)
	for i := 0; i < RequiredApprovals; i++ {
		_, err := f.ctrl.ApproveLoan(ctx, f.db, id, f.members[i].Address())
		assert.Nil(t, err)
	}
	_, err = f.ctrl.ExecuteLoan(f.db, id)
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestTrade(t *testing.T) {
	f := newFixture(t)
	deadline := arabica.AsUnixTime(genesisTime.Add(2 * time.Hour))
	msg := &SubmitTradeMsg{
		AssetIn:      "USDC",
		AssetOut:     "PAXG",
		AmountIn:     coin.NewAmount(50000),
		MinAmountOut: coin.NewAmount(20),
		Deadline:     deadline,
	}

	_, err := f.deliver(t, at(time.Hour), f.admin, msg)
	assert.IsErr(t, errors.ErrUnauthorized, err)

	res, err := f.deliver(t, at(time.Hour), f.members[2], msg)
	assert.Nil(t, err)
	first := res.Data

	res, err = f.deliver(t, at(90*time.Minute), f.members[2], msg)
	assert.Nil(t, err)
	second := res.Data

	// Exactly at the deadline is still accepted.
	_, err = f.deliver(t, at(2*time.Hour), f.members[1], &ExecuteTradeMsg{TradeID: first})
	assert.Nil(t, err)
	assert.IsErr(t, errors.ErrNotFound, NewTradeBucket().Has(f.db, first))

	_, err = f.deliver(t, at(2*time.Hour+time.Second), f.members[1], &ExecuteTradeMsg{TradeID: second})
	assert.IsErr(t, errors.ErrExpired, err)

	_, err = f.deliver(t, at(time.Hour), f.members[1], &ExecuteTradeMsg{TradeID: first})
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestGovernance(t *testing.T) {
	f := newFixture(t)
	alice := arbtest.NewCondition()
	bob := arbtest.NewCondition()
	poor := arbtest.NewCondition()
	f.fund(t, alice.Address(), 2000)
	f.fund(t, bob.Address(), 1000)
	f.fund(t, poor.Address(), 999)

	start := time.Hour
	_, err := f.deliver(t, at(start), poor, &ProposeMsg{Parameter: params.ProtocolFeeRate, NewValue: coin.NewAmount(1500)})
	assert.IsErr(t, errors.ErrInsufficientAmount, err)

	res, err := f.deliver(t, at(start), alice, &ProposeMsg{Parameter: params.ProtocolFeeRate, NewValue: coin.NewAmount(1500)})
	assert.Nil(t, err)
	id := res.Data

	p, err := f.ctrl.Proposal(f.db, id)
	assert.Nil(t, err)
	assert.Equal(t, arabica.AsUnixTime(genesisTime.Add(start+VotingPeriod)), p.VotingDeadline)

	_, err = f.deliver(t, at(start+time.Minute), alice, &VoteMsg{ProposalID: id, Support: true})
	assert.Nil(t, err)
	_, err = f.deliver(t, at(start+2*time.Minute), alice, &VoteMsg{ProposalID: id, Support: false})
	assert.IsErr(t, errors.ErrDuplicate, err)
	_, err = f.deliver(t, at(start+time.Minute), bob, &VoteMsg{ProposalID: id, Support: false})
	assert.Nil(t, err)

	// A vote exactly at the deadline is too late.
	_, err = f.deliver(t, at(start+VotingPeriod), poor, &VoteMsg{ProposalID: id, Support: false})
	assert.IsErr(t, errors.ErrExpired, err)

	_, err = f.deliver(t, at(start+VotingPeriod), bob, &ExecuteProposalMsg{ProposalID: id})
	assert.IsErr(t, errors.ErrState, err)

	res, err = f.deliver(t, at(start+VotingPeriod+time.Second), bob, &ExecuteProposalMsg{ProposalID: id})
	assert.Nil(t, err)
	assert.Equal(t, "proposal executed", res.Log)
	assert.Equal(t, uint32(0), res.ToABCI().Code)

	p, err = f.ctrl.Proposal(f.db, id)
	assert.Nil(t, err)
	assert.Equal(t, Executed, p.Status)
	assert.Equal(t, coin.NewAmount(2000), p.VotesFor)
	assert.Equal(t, coin.NewAmount(1000), p.VotesAgainst)

	current, err := f.params.Params(f.db)
	assert.Nil(t, err)
	assert.Equal(t, uint64(1500), current.ProtocolFeeRate)

	_, err = f.deliver(t, at(start+VotingPeriod+time.Minute), bob, &ExecuteProposalMsg{ProposalID: id})
	assert.IsErr(t, errors.ErrState, err)
}

func TestGovernanceTieIsRejected(t *testing.T) {
	f := newFixture(t)
	alice := arbtest.NewCondition()
	bob := arbtest.NewCondition()
	f.fund(t, alice.Address(), 1500)
	f.fund(t, bob.Address(), 1500)

	ctx := at(time.Hour)
	id, err := f.ctrl.Propose(ctx, f.db, alice.Address(), params.CollateralRatio, coin.NewAmount(20000))
	assert.Nil(t, err)
	_, err = f.ctrl.Vote(ctx, f.db, id, alice.Address(), true)
	assert.Nil(t, err)
	_, err = f.ctrl.Vote(ctx, f.db, id, bob.Address(), false)
	assert.Nil(t, err)

	res, err := f.deliver(t, at(time.Hour+VotingPeriod+time.Second), alice, &ExecuteProposalMsg{ProposalID: id})
	assert.Nil(t, err)
	assert.Equal(t, "proposal rejected", res.Log)
	assert.Equal(t, id, res.Data)
	assert.Equal(t, errors.ErrRejected.ABCICode(), res.ToABCI().Code)

	p, err := f.ctrl.Proposal(f.db, id)
	assert.Nil(t, err)
	assert.Equal(t, Rejected, p.Status)

	current, err := f.params.Params(f.db)
	assert.Nil(t, err)
	assert.Equal(t, params.DefaultParams().CollateralRatio, current.CollateralRatio)
}

func TestProposeRejectsInvalidValue(t *testing.T) {
	f := newFixture(t)
	alice := arbtest.NewCondition()
	f.fund(t, alice.Address(), 2000)

	cases := map[string]struct {
		param   params.Parameter
		value   coin.Amount
		wantErr *errors.Error
	}{
		"fee above 100%": {
			param:   params.EmergencyWithdrawFee,
			value:   coin.NewAmount(20000),
			wantErr: errors.ErrInput,
		},
		"collateral ratio below 100%": {
			param:   params.CollateralRatio,
			value:   coin.NewAmount(9999),
			wantErr: errors.ErrInput,
		},
		"zero maximum yield": {
			param:   params.MaximumYieldRate,
			value:   coin.Amount{},
			wantErr: errors.ErrInput,
		},
		"unknown parameter": {
			param:   params.Parameter(42),
			value:   coin.NewAmount(1),
			wantErr: errors.ErrInput,
		},
		"fee at 100%": {
			param: params.EmergencyWithdrawFee,
			value: coin.NewAmount(10000),
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := f.db.CacheWrap()
			defer db.Discard()

			id, err := f.ctrl.Propose(at(time.Hour), db, alice.Address(), tc.param, tc.value)
			assert.IsErr(t, tc.wantErr, err)
			if tc.wantErr != nil {
				return
			}
			p, err := f.ctrl.Proposal(db, id)
			assert.Nil(t, err)
			assert.Equal(t, Pending, p.Status)
		})
	}
}

func TestReportProfit(t *testing.T) {
	f := newFixture(t)
	msg := &ReportProfitMsg{
		LendingProfit: coin.NewAmount(600),
		TradingProfit: coin.NewAmount(400),
	}

	_, err := f.deliver(t, at(time.Hour), f.members[0], msg)
	assert.IsErr(t, errors.ErrUnauthorized, err)

	res, err := f.deliver(t, at(time.Hour), f.admin, msg)
	assert.Nil(t, err)

	var r ProfitReport
	assert.Nil(t, NewProfitBucket().One(f.db, res.Data, &r))
	assert.Equal(t, coin.NewAmount(1000), r.TotalProfit)
	assert.Equal(t, coin.NewAmount(200), r.ProtocolFee)
	assert.Equal(t, coin.NewAmount(800), r.YieldDistributed)
	assert.Equal(t, arabica.AsUnixTime(genesisTime.Add(time.Hour)), r.Timestamp)
}

func TestUpdateCommitteeHandler(t *testing.T) {
	f := newFixture(t)
	members, err := f.ctrl.Committee(f.db)
	assert.Nil(t, err)
	members[2].Address = arbtest.RandomAddr(t)

	_, err = f.deliver(t, at(0), f.members[0], &UpdateCommitteeMsg{Members: members})
	assert.IsErr(t, errors.ErrUnauthorized, err)
	_, err = f.deliver(t, at(0), f.admin, &UpdateCommitteeMsg{Members: members[:3]})
	assert.IsErr(t, errors.ErrInput, err)
	_, err = f.deliver(t, at(0), f.admin, &UpdateCommitteeMsg{Members: members})
	assert.Nil(t, err)

	got, err := f.ctrl.Committee(f.db)
	assert.Nil(t, err)
	assert.Equal(t, members, got)
}
