package vault

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/arbtest"
	"github.com/arabica-labs/arabica/arbtest/assert"
	"github.com/arabica-labs/arabica/coin"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/store"
	"github.com/arabica-labs/arabica/x/cash"
	"github.com/arabica-labs/arabica/x/ledger"
	"github.com/arabica-labs/arabica/x/oracle"
	"github.com/arabica-labs/arabica/x/params"
	. "github.com/smartystreets/goconvey/convey"
)

var start = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

func atDay(day int) arabica.Context {
	return arbtest.BlockContext(start.Add(time.Duration(day) * arabica.Day))
}

type fixture struct {
	db     arabica.CacheableKVStore
	admin  arabica.Condition
	oracle arabica.Condition
	user   arabica.Address
	ctrl   Controller
	cash   cash.BaseController
	ledger ledger.BaseController
}

// newFixture creates a stable "usd" vault, a priced "gold" vault and a
// stable "eur" vault whose custody is not a ledger minter.
func newFixture(t testing.TB) *fixture {
	f := &fixture{
		db:     store.MemStore(),
		admin:  arbtest.NewCondition(),
		oracle: arbtest.NewCondition(),
		user:   arbtest.RandomAddr(t),
		cash:   cash.NewController(),
		ledger: ledger.NewController(),
	}
	f.ctrl = NewController(f.cash, f.ledger, oracle.NewController(), params.NewController())

	raw := `{
		"conf": {
			"vault": {"admin": "` + f.admin.Address().String() + `"},
			"oracle": {"oracle": "` + f.oracle.Address().String() + `"},
			"ledger": {
				"admin": "` + f.admin.Address().String() + `",
				"minters": ["` + CustodyAddress("usd").String() + `", "` + CustodyAddress("gold").String() + `"],
				"name": "Coffee Yield Token",
				"symbol": "CYT"
			}
		},
		"cash": [
			{"address": "` + f.user.String() + `", "coins": [
				{"ticker": "EURC", "amount": "5000000000"},
				{"ticker": "PAXG", "amount": "10000000"},
				{"ticker": "USDC", "amount": "5000000000"}
			]},
			{"address": "` + CustodyAddress("usd").String() + `", "coins": [
				{"ticker": "USDC", "amount": "100000000"}
			]}
		],
		"oracle": [{"ticker": "PAXG", "price": "2000000000"}],
		"vault": [
			{"name": "usd", "kind": "stable", "assets": ["USDC"]},
			{"name": "gold", "kind": "priced", "assets": ["PAXG"]},
			{"name": "eur", "kind": "stable", "assets": ["EURC"]}
		]
	}`
	var opts arabica.Options
	if err := json.Unmarshal([]byte(raw), &opts); err != nil {
		t.Fatalf("genesis: %s", err)
	}
	inits := []arabica.Initializer{
		cash.Initializer{},
		oracle.Initializer{},
		ledger.Initializer{},
		Initializer{},
	}
	for _, i := range inits {
		if err := i.FromGenesis(opts, f.db); err != nil {
			t.Fatalf("%T: %+v", i, err)
		}
	}
	return f
}

func (f *fixture) wallet(t testing.TB, addr arabica.Address, ticker string) coin.Amount {
	coins, err := f.cash.Balance(f.db, addr)
	assert.Nil(t, err)
	return coins.Get(ticker).Amount
}

// compound repeats the daily ledger accrual.
func compound(principal uint64, rate uint64, days int) uint64 {
	daily := rate / ledger.DaysPerYear
	for i := 0; i < days; i++ {
		principal += principal * daily / coin.BasisPoints
	}
	return principal
}

func TestStableLifecycle(t *testing.T) {
	Convey("Given a stable vault", t, func() {
		f := newFixture(t)
		const amount = 1000000000

		Convey("A deposit locks the asset and mints the ledger tokens", func() {
			dep, err := f.ctrl.Deposit(atDay(0), f.db, "usd", f.user, coin.NewCoin(amount, "USDC"), ThreeMonths)
			So(err, ShouldBeNil)
			So(dep.Amount, ShouldResemble, coin.NewAmount(amount))
			So(dep.UnlockTime, ShouldEqual, arabica.AsUnixTime(start.Add(90*arabica.Day)))

			bal, err := f.ledger.Balance(f.db, f.user)
			So(err, ShouldBeNil)
			So(bal, ShouldResemble, coin.NewAmount(amount))
			So(f.wallet(t, f.user, "USDC"), ShouldResemble, coin.NewAmount(4000000000))

			v, err := f.ctrl.Vault(f.db, "usd")
			So(err, ShouldBeNil)
			So(v.TotalDeposits, ShouldResemble, coin.NewAmount(amount))

			Convey("A second deposit is rejected", func() {
				_, err := f.ctrl.Deposit(atDay(1), f.db, "usd", f.user, coin.NewCoin(1, "USDC"), ThreeMonths)
				So(errors.ErrDuplicate.Is(err), ShouldBeTrue)
			})

			Convey("A deposit into another vault is rejected", func() {
				_, err := f.ctrl.Deposit(atDay(300), f.db, "gold", f.user, coin.NewCoin(1000000, "PAXG"), ThreeMonths)
				So(errors.ErrDuplicate.Is(err), ShouldBeTrue)
				So(f.wallet(t, f.user, "PAXG"), ShouldResemble, coin.NewAmount(10000000))

				rec, err := f.ledger.Record(f.db, f.user)
				So(err, ShouldBeNil)
				So(rec.Principal, ShouldResemble, coin.NewAmount(amount))
				So(rec.LastAccrual, ShouldEqual, arabica.AsUnixTime(start))
			})

			Convey("A holder of transferred tokens cannot deposit", func() {
				other := arbtest.RandomAddr(t)
				So(f.ledger.Transfer(atDay(1), f.db, f.user, other, coin.NewAmount(10)), ShouldBeNil)

				_, err := f.ctrl.Deposit(atDay(1), f.db, "gold", other, coin.NewCoin(1000000, "PAXG"), ThreeMonths)
				So(errors.ErrDuplicate.Is(err), ShouldBeTrue)
			})

			Convey("Withdraw before unlock is rejected", func() {
				_, err := f.ctrl.Withdraw(atDay(89), f.db, "usd", f.user)
				So(errors.ErrLocked.Is(err), ShouldBeTrue)

				exp, err := f.ctrl.LockExpiry(f.db, "usd", f.user)
				So(err, ShouldBeNil)
				So(exp, ShouldEqual, dep.UnlockTime)
			})

			Convey("Withdraw after unlock releases principal and yield once", func() {
				want := compound(amount, 500, 90)

				released, err := f.ctrl.Withdraw(atDay(90), f.db, "usd", f.user)
				So(err, ShouldBeNil)
				So(released, ShouldResemble, coin.NewCoin(want, "USDC"))
				So(f.wallet(t, f.user, "USDC"), ShouldResemble, coin.NewAmount(4000000000+want))

				_, err = f.ctrl.DepositOf(f.db, "usd", f.user)
				So(errors.ErrNotFound.Is(err), ShouldBeTrue)

				supply, err := f.ledger.TotalSupply(f.db)
				So(err, ShouldBeNil)
				So(supply.IsZero(), ShouldBeTrue)

				v, err := f.ctrl.Vault(f.db, "usd")
				So(err, ShouldBeNil)
				So(v.TotalDeposits.IsZero(), ShouldBeTrue)

				_, err = f.ctrl.Withdraw(atDay(91), f.db, "usd", f.user)
				So(errors.ErrNotFound.Is(err), ShouldBeTrue)
			})
		})

		Convey("Withdraw without a deposit is rejected", func() {
			_, err := f.ctrl.Withdraw(atDay(0), f.db, "usd", f.user)
			So(errors.ErrNotFound.Is(err), ShouldBeTrue)
		})

		Convey("Unsupported assets are rejected", func() {
			_, err := f.ctrl.Deposit(atDay(0), f.db, "usd", f.user, coin.NewCoin(10, "PAXG"), ThreeMonths)
			So(errors.ErrCurrency.Is(err), ShouldBeTrue)
		})

		Convey("Zero deposits are rejected", func() {
			_, err := f.ctrl.Deposit(atDay(0), f.db, "usd", f.user, coin.NewCoin(0, "USDC"), ThreeMonths)
			So(errors.ErrAmount.Is(err), ShouldBeTrue)
		})
	})
}

func TestEmergencyWithdraw(t *testing.T) {
	f := newFixture(t)
	_, err := f.ctrl.Deposit(atDay(0), f.db, "usd", f.user, coin.NewCoin(1000, "USDC"), TwelveMonths)
	assert.Nil(t, err)

	released, err := f.ctrl.EmergencyWithdraw(atDay(200), f.db, "usd", f.user)
	assert.Nil(t, err)
	assert.Equal(t, coin.NewCoin(900, "USDC"), released)
	assert.Equal(t, coin.NewAmount(5000000000-100), f.wallet(t, f.user, "USDC"))

	// Accrued yield is forfeited together with the ledger balance.
	bal, err := f.ledger.Balance(f.db, f.user)
	assert.Nil(t, err)
	assert.Equal(t, true, bal.IsZero())
	supply, err := f.ledger.TotalSupply(f.db)
	assert.Nil(t, err)
	assert.Equal(t, true, supply.IsZero())

	_, err = f.ctrl.DepositOf(f.db, "usd", f.user)
	assert.IsErr(t, errors.ErrNotFound, err)
	_, err = f.ctrl.EmergencyWithdraw(atDay(200), f.db, "usd", f.user)
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestDepositRollback(t *testing.T) {
	f := newFixture(t)

	// The eur custody is not a ledger minter, the mint fails last.
	_, err := f.ctrl.Deposit(atDay(0), f.db, "eur", f.user, coin.NewCoin(1000, "EURC"), ThreeMonths)
	assert.IsErr(t, errors.ErrUnauthorized, err)

	assert.Equal(t, coin.NewAmount(5000000000), f.wallet(t, f.user, "EURC"))
	assert.Equal(t, true, f.wallet(t, CustodyAddress("eur"), "EURC").IsZero())
	_, err = f.ctrl.DepositOf(f.db, "eur", f.user)
	assert.IsErr(t, errors.ErrNotFound, err)
	v, err := f.ctrl.Vault(f.db, "eur")
	assert.Nil(t, err)
	assert.Equal(t, true, v.TotalDeposits.IsZero())
}

func TestPricedVault(t *testing.T) {
	f := newFixture(t)
	const raw = 2000000

	dep, err := f.ctrl.Deposit(atDay(0), f.db, "gold", f.user, coin.NewCoin(raw, "PAXG"), TwelveMonths)
	assert.Nil(t, err)
	// 2 units at 2000 each.
	assert.Equal(t, coin.NewAmount(4000000000), dep.Amount)

	rec, err := f.ledger.Record(f.db, f.user)
	assert.Nil(t, err)
	assert.Equal(t, uint32(1000), rec.YieldRate)

	_, err = f.ctrl.EmergencyWithdraw(atDay(1), f.db, "gold", f.user)
	assert.IsErr(t, errors.ErrUnsupported, err)

	// The price doubles.
	_, err = oracle.NewPriceBucket().Put(f.db, []byte("PAXG"), &oracle.Price{Price: coin.NewAmount(4000000000)})
	assert.Nil(t, err)

	final := compound(4000000000, 1000, 365)
	want := raw * final / (raw * 4000)

	released, err := f.ctrl.Withdraw(atDay(365), f.db, "gold", f.user)
	assert.Nil(t, err)
	assert.Equal(t, coin.NewCoin(want, "PAXG"), released)
	assert.Equal(t, coin.NewAmount(10000000-raw+want), f.wallet(t, f.user, "PAXG"))

	var h Holding
	err = NewHoldingBucket().One(f.db, DepositKey("gold", f.user), &h)
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestYieldRate(t *testing.T) {
	f := newFixture(t)
	cases := map[LockPeriod]uint32{
		ThreeMonths:  500,
		SixMonths:    750,
		TwelveMonths: 1000,
	}
	for period, want := range cases {
		got, err := f.ctrl.YieldRate(f.db, period)
		assert.Nil(t, err)
		assert.Equal(t, want, got)
	}

	// Tiers are capped by the maximum yield rate.
	assert.Nil(t, f.ledger.SetBaseRate(f.db, 1500))
	got, err := f.ctrl.YieldRate(f.db, TwelveMonths)
	assert.Nil(t, err)
	assert.Equal(t, uint32(2000), got)
}

func TestHandlers(t *testing.T) {
	cases := map[string]struct {
		signer  func(f *fixture) arabica.Condition
		msg     func(f *fixture) arabica.Msg
		wantErr *errors.Error
	}{
		"admin adds an asset": {
			signer:  func(f *fixture) arabica.Condition { return f.admin },
			msg:     func(f *fixture) arabica.Msg { return &AddSupportedAssetMsg{Vault: "gold", Ticker: "XAUT"} },
			wantErr: nil,
		},
		"assets of a stable vault are fixed": {
			signer:  func(f *fixture) arabica.Condition { return f.admin },
			msg:     func(f *fixture) arabica.Msg { return &AddSupportedAssetMsg{Vault: "usd", Ticker: "XAUT"} },
			wantErr: errors.ErrState,
		},
		"only admin adds assets": {
			signer:  func(f *fixture) arabica.Condition { return f.oracle },
			msg:     func(f *fixture) arabica.Msg { return &AddSupportedAssetMsg{Vault: "gold", Ticker: "XAUT"} },
			wantErr: errors.ErrUnauthorized,
		},
		"only admin triggers emergency withdraw": {
			signer:  func(f *fixture) arabica.Condition { return f.oracle },
			msg:     func(f *fixture) arabica.Msg { return &EmergencyWithdrawMsg{Vault: "usd", User: f.user} },
			wantErr: errors.ErrUnauthorized,
		},
		"invalid lock period": {
			signer: func(f *fixture) arabica.Condition { return f.admin },
			msg: func(f *fixture) arabica.Msg {
				return &DepositMsg{Vault: "usd", Asset: coin.NewCoin(1, "USDC"), LockPeriod: 7}
			},
			wantErr: errors.ErrInput,
		},
		"unknown vault": {
			signer:  func(f *fixture) arabica.Condition { return f.admin },
			msg:     func(f *fixture) arabica.Msg { return &WithdrawMsg{Vault: "nope"} },
			wantErr: errors.ErrNotFound,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			rt := router{}
			RegisterRoutes(rt, &arbtest.Auth{Signer: tc.signer(f)}, f.ctrl)
			msg := tc.msg(f)
			tx := &arbtest.Tx{Msg: msg}
			ctx := atDay(0)

			_, err := rt[msg.Path()].Check(ctx, f.db, tx)
			assert.IsErr(t, tc.wantErr, err)
			_, err = rt[msg.Path()].Deliver(ctx, f.db, tx)
			assert.IsErr(t, tc.wantErr, err)
		})
	}
}

func TestDepositHandler(t *testing.T) {
	f := newFixture(t)
	user := arbtest.NewCondition()
	assert.Nil(t, f.cash.IssueCoins(f.db, user.Address(), coin.NewCoin(500, "USDC")))

	rt := router{}
	RegisterRoutes(rt, &arbtest.Auth{Signer: user}, f.ctrl)
	tx := &arbtest.Tx{Msg: &DepositMsg{Vault: "usd", Asset: coin.NewCoin(500, "USDC"), LockPeriod: SixMonths}}

	_, err := rt["vault/deposit"].Check(atDay(0), f.db, tx)
	assert.Nil(t, err)
	res, err := rt["vault/deposit"].Deliver(atDay(0), f.db, tx)
	assert.Nil(t, err)
	assert.Equal(t, DepositKey("usd", user.Address()), res.Data)

	rec, err := f.ledger.Record(f.db, user.Address())
	assert.Nil(t, err)
	assert.Equal(t, uint32(750), rec.YieldRate)

	users, deps, err := f.ctrl.DepositsOf(f.db, "usd")
	assert.Nil(t, err)
	assert.Equal(t, []arabica.Address{user.Address()}, users)
	assert.Equal(t, coin.NewAmount(500), deps[0].Amount)

	withdraw := &arbtest.Tx{Msg: &WithdrawMsg{Vault: "usd"}}
	_, err = rt["vault/withdraw"].Check(atDay(179), f.db, withdraw)
	assert.IsErr(t, errors.ErrLocked, err)
	_, err = rt["vault/withdraw"].Check(atDay(180), f.db, withdraw)
	assert.Nil(t, err)
}

type router map[string]arabica.Handler

func (r router) Handle(m arabica.Msg, h arabica.Handler) {
	r[m.Path()] = h
}
