package ledger

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
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var genesisTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	db     arabica.CacheableKVStore
	admin  arabica.Condition
	minter arabica.Condition
	ctrl   BaseController
}

func newFixture(t testing.TB) *fixture {
	f := &fixture{
		db:     store.MemStore(),
		admin:  arbtest.NewCondition(),
		minter: arbtest.NewCondition(),
		ctrl:   NewController(),
	}
	raw := `{"conf": {"ledger": {
		"admin": "` + f.admin.Address().String() + `",
		"minters": ["` + f.minter.Address().String() + `"],
		"name": "Coffee Yield Token",
		"symbol": "CYT"
	}}}`
	var opts arabica.Options
	if err := json.Unmarshal([]byte(raw), &opts); err != nil {
		t.Fatalf("genesis: %s", err)
	}
	if err := (Initializer{}).FromGenesis(opts, f.db); err != nil {
		t.Fatalf("init: %s", err)
	}
	return f
}

func atDay(day int) arabica.Context {
	return arbtest.BlockContext(genesisTime.Add(time.Duration(day) * arabica.Day))
}

func TestGenesisDefaults(t *testing.T) {
	f := newFixture(t)
	rate, err := f.ctrl.BaseRate(f.db)
	assert.Nil(t, err)
	assert.Equal(t, uint32(DefaultBaseRate), rate)

	supply, err := f.ctrl.TotalSupply(f.db)
	assert.Nil(t, err)
	assert.Equal(t, true, supply.IsZero())

	// Configuration can be initialized only once.
	var opts arabica.Options
	assert.Nil(t, json.Unmarshal([]byte(`{"conf": {"ledger": {}}}`), &opts))
	assert.IsErr(t, errors.ErrDuplicate, Initializer{}.FromGenesis(opts, f.db))
}

func TestMintRequiresMinter(t *testing.T) {
	f := newFixture(t)
	holder := arbtest.RandomAddr(t)
	ctx := atDay(0)

	err := f.ctrl.Mint(ctx, f.db, arbtest.RandomAddr(t), holder, coin.NewAmount(100), "USDC", 500)
	assert.IsErr(t, errors.ErrUnauthorized, err)
	err = f.ctrl.Burn(ctx, f.db, holder, holder, coin.NewAmount(100))
	assert.IsErr(t, errors.ErrUnauthorized, err)

	err = f.ctrl.Mint(ctx, f.db, f.minter.Address(), holder, coin.Amount{}, "USDC", 500)
	assert.IsErr(t, errors.ErrAmount, err)

	assert.Nil(t, f.ctrl.Mint(ctx, f.db, f.minter.Address(), holder, coin.NewAmount(100), "USDC", 750))
	b, err := f.ctrl.Record(f.db, holder)
	assert.Nil(t, err)
	assert.Equal(t, &Balance{
		Principal:   coin.NewAmount(100),
		YieldRate:   750,
		LastAccrual: arabica.AsUnixTime(genesisTime),
	}, b)

	err = f.ctrl.Burn(ctx, f.db, f.minter.Address(), holder, coin.NewAmount(101))
	assert.IsErr(t, errors.ErrInsufficientAmount, err)
	assert.Nil(t, f.ctrl.Burn(ctx, f.db, f.minter.Address(), holder, coin.NewAmount(40)))

	bal, err := f.ctrl.Balance(f.db, holder)
	assert.Nil(t, err)
	assert.Equal(t, coin.NewAmount(60), bal)
	supply, err := f.ctrl.TotalSupply(f.db)
	assert.Nil(t, err)
	assert.Equal(t, coin.NewAmount(60), supply)
}

func TestAccrueNinetyDays(t *testing.T) {
	f := newFixture(t)
	holder := arbtest.RandomAddr(t)
	const deposit = 1000000000

	assert.Nil(t, f.ctrl.Mint(atDay(0), f.db, f.minter.Address(), holder, coin.NewAmount(deposit), "USDC", 500))

	// 500 / 365 truncates to a daily rate of 1 basis point.
	want := uint64(deposit)
	for i := 0; i < 90; i++ {
		want += want * 1 / 10000
	}

	increase, err := f.ctrl.Accrue(atDay(90), f.db, holder)
	assert.Nil(t, err)
	assert.Equal(t, coin.NewAmount(want-deposit), increase)

	b, err := f.ctrl.Record(f.db, holder)
	assert.Nil(t, err)
	assert.Equal(t, coin.NewAmount(want), b.Principal)
	assert.Equal(t, coin.NewAmount(want-deposit), b.TotalYieldEarned)
	assert.Equal(t, arabica.AsUnixTime(genesisTime.Add(90*arabica.Day)), b.LastAccrual)

	supply, err := f.ctrl.TotalSupply(f.db)
	assert.Nil(t, err)
	assert.Equal(t, coin.NewAmount(want), supply)
}

func TestAccrueIsIdempotent(t *testing.T) {
	f := newFixture(t)
	holder := arbtest.RandomAddr(t)
	assert.Nil(t, f.ctrl.Mint(atDay(0), f.db, f.minter.Address(), holder, coin.NewAmount(5000000), "USDC", 2000))

	first, err := f.ctrl.Accrue(atDay(30), f.db, holder)
	assert.Nil(t, err)
	assert.Equal(t, false, first.IsZero())
	after, err := f.ctrl.Balance(f.db, holder)
	assert.Nil(t, err)

	second, err := f.ctrl.Accrue(atDay(30), f.db, holder)
	assert.Nil(t, err)
	assert.Equal(t, true, second.IsZero())
	again, err := f.ctrl.Balance(f.db, holder)
	assert.Nil(t, err)
	assert.Equal(t, after, again)

	// Less than a whole day does not move the clock.
	sub := arbtest.BlockContext(genesisTime.Add(30*arabica.Day + 23*time.Hour))
	third, err := f.ctrl.Accrue(sub, f.db, holder)
	assert.Nil(t, err)
	assert.Equal(t, true, third.IsZero())
	b, err := f.ctrl.Record(f.db, holder)
	assert.Nil(t, err)
	assert.Equal(t, arabica.AsUnixTime(genesisTime.Add(30*arabica.Day)), b.LastAccrual)

	// Unknown holders accrue nothing.
	none, err := f.ctrl.Accrue(atDay(30), f.db, arbtest.RandomAddr(t))
	assert.Nil(t, err)
	assert.Equal(t, true, none.IsZero())
}

func TestTransfer(t *testing.T) {
	f := newFixture(t)
	alice := arbtest.RandomAddr(t)
	bob := arbtest.RandomAddr(t)
	assert.Nil(t, f.ctrl.Mint(atDay(0), f.db, f.minter.Address(), alice, coin.NewAmount(1000), "USDC", 1000))

	err := f.ctrl.Transfer(atDay(1), f.db, alice, bob, coin.NewAmount(1001))
	assert.IsErr(t, errors.ErrInsufficientAmount, err)
	err = f.ctrl.Transfer(atDay(1), f.db, alice, bob, coin.Amount{})
	assert.IsErr(t, errors.ErrAmount, err)

	assert.Nil(t, f.ctrl.Transfer(atDay(1), f.db, alice, bob, coin.NewAmount(300)))
	rec, err := f.ctrl.Record(f.db, bob)
	assert.Nil(t, err)
	assert.Equal(t, &Balance{
		Principal:   coin.NewAmount(300),
		YieldRate:   DefaultBaseRate,
		LastAccrual: arabica.AsUnixTime(genesisTime.Add(arabica.Day)),
	}, rec)

	// Sending to yourself keeps the balance.
	assert.Nil(t, f.ctrl.Transfer(atDay(1), f.db, alice, alice, coin.NewAmount(700)))
	bal, err := f.ctrl.Balance(f.db, alice)
	assert.Nil(t, err)
	assert.Equal(t, coin.NewAmount(700), bal)

	supply, err := f.ctrl.TotalSupply(f.db)
	assert.Nil(t, err)
	assert.Equal(t, coin.NewAmount(1000), supply)
}

func TestTransferAccruesBothSides(t *testing.T) {
	f := newFixture(t)
	alice := arbtest.RandomAddr(t)
	bob := arbtest.RandomAddr(t)
	const minted = 1000000000

	assert.Nil(t, f.ctrl.Mint(atDay(0), f.db, f.minter.Address(), alice, coin.NewAmount(1), "USDC", 1000))
	assert.Nil(t, f.ctrl.Mint(atDay(0), f.db, f.minter.Address(), bob, coin.NewAmount(minted), "USDC", 1000))

	// 1000 / 365 truncates to a daily rate of 2 basis points.
	accrued := uint64(minted)
	for i := 0; i < 10; i++ {
		accrued += accrued * 2 / 10000
	}

	assert.Nil(t, f.ctrl.Transfer(atDay(10), f.db, bob, alice, coin.NewAmount(minted/2)))

	// The sender keeps the yield earned before the transfer.
	b, err := f.ctrl.Record(f.db, bob)
	assert.Nil(t, err)
	assert.Equal(t, coin.NewAmount(accrued-minted/2), b.Principal)
	assert.Equal(t, arabica.AsUnixTime(genesisTime.Add(10*arabica.Day)), b.LastAccrual)

	// Received tokens earn nothing for days they were not held.
	increase, err := f.ctrl.Accrue(atDay(10), f.db, alice)
	assert.Nil(t, err)
	assert.Equal(t, true, increase.IsZero())
	a, err := f.ctrl.Record(f.db, alice)
	assert.Nil(t, err)
	assert.Equal(t, coin.NewAmount(1+minted/2), a.Principal)
	assert.Equal(t, arabica.AsUnixTime(genesisTime.Add(10*arabica.Day)), a.LastAccrual)

	supply, err := f.ctrl.TotalSupply(f.db)
	assert.Nil(t, err)
	assert.Equal(t, coin.NewAmount(1+accrued), supply)
}

func TestHandlers(t *testing.T) {
	f := newFixture(t)
	holder := arbtest.NewCondition()
	assert.Nil(t, f.ctrl.Mint(atDay(0), f.db, f.minter.Address(), holder.Address(), coin.NewAmount(1000), "USDC", 1000))

	cases := map[string]struct {
		signer  arabica.Condition
		msg     arabica.Msg
		wantErr *errors.Error
	}{
		"holder burns own tokens": {
			signer: holder,
			msg:    &BurnMsg{Amount: coin.NewAmount(10)},
		},
		"burn more than held": {
			signer:  holder,
			msg:     &BurnMsg{Amount: coin.NewAmount(5000)},
			wantErr: errors.ErrInsufficientAmount,
		},
		"transfer": {
			signer: holder,
			msg:    &TransferMsg{Recipient: arbtest.RandomAddr(t), Amount: coin.NewAmount(10)},
		},
		"transfer without a recipient": {
			signer:  holder,
			msg:     &TransferMsg{Amount: coin.NewAmount(10)},
			wantErr: errors.ErrInput,
		},
		"anyone can accrue": {
			signer: arbtest.NewCondition(),
			msg:    &AccrueMsg{Holder: holder.Address()},
		},
		"admin updates the rate": {
			signer: f.admin,
			msg:    &UpdateRateMsg{BaseRate: 800},
		},
		"only admin updates the rate": {
			signer:  holder,
			msg:     &UpdateRateMsg{BaseRate: 800},
			wantErr: errors.ErrUnauthorized,
		},
		"approve is not supported": {
			signer:  holder,
			msg:     &ApproveMsg{Spender: arbtest.RandomAddr(t), Amount: coin.NewAmount(1)},
			wantErr: errors.ErrUnsupported,
		},
		"transfer from is not supported": {
			signer:  holder,
			msg:     &TransferFromMsg{Owner: holder.Address(), Recipient: arbtest.RandomAddr(t), Amount: coin.NewAmount(1)},
			wantErr: errors.ErrUnsupported,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := f.db.CacheWrap()
			defer db.Discard()

			rt := router{}
			RegisterRoutes(rt, &arbtest.Auth{Signer: tc.signer}, f.ctrl)
			h := rt[tc.msg.Path()]
			tx := &arbtest.Tx{Msg: tc.msg}
			ctx := atDay(10)

			_, err := h.Check(ctx, db, tx)
			assert.IsErr(t, tc.wantErr, err)
			_, err = h.Deliver(ctx, db, tx)
			assert.IsErr(t, tc.wantErr, err)
		})
	}
}

type router map[string]arabica.Handler

func (r router) Handle(m arabica.Msg, h arabica.Handler) {
	r[m.Path()] = h
}

func TestRebaseTicker(t *testing.T) {
	f := newFixture(t)
	ticker := NewRebaseTicker()

	res, err := ticker.Tick(atDay(0), f.db)
	assert.Nil(t, err)
	assert.Equal(t, "rebase supply=0", res.Log)

	// Within the same interval nothing happens.
	res, err = ticker.Tick(arbtest.BlockContext(genesisTime.Add(12*time.Hour)), f.db)
	assert.Nil(t, err)
	assert.Equal(t, "", res.Log)

	res, err = ticker.Tick(atDay(1), f.db)
	assert.Nil(t, err)
	assert.Equal(t, "rebase supply=0", res.Log)

	var s Supply
	assert.Nil(t, NewSupplyBucket().One(f.db, supplyKey, &s))
	assert.Equal(t, arabica.AsUnixTime(genesisTime.Add(arabica.Day)), s.LastRebase)

	// An uninitialized ledger is ignored.
	res, err = ticker.Tick(atDay(2), store.MemStore())
	assert.Nil(t, err)
	assert.Equal(t, "", res.Log)
}

func TestSupplyEqualsSumOfBalances(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("total supply is the sum of all balances", prop.ForAll(
		func(deposits []uint32, rate uint32, days uint8, moved uint32) bool {
			f := newFixture(t)
			holders := make([]arabica.Address, len(deposits))
			for i, d := range deposits {
				holders[i] = arbtest.RandomAddr(t)
				amount := coin.NewAmount(uint64(d) + 1)
				if err := f.ctrl.Mint(atDay(0), f.db, f.minter.Address(), holders[i], amount, "USDC", rate); err != nil {
					return false
				}
			}

			ctx := atDay(int(days))
			for _, h := range holders {
				if _, err := f.ctrl.Accrue(ctx, f.db, h); err != nil {
					return false
				}
			}
			if len(holders) > 1 {
				bal, err := f.ctrl.Balance(f.db, holders[0])
				if err != nil {
					return false
				}
				amount := coin.NewAmount(uint64(moved))
				if !amount.IsZero() && !bal.LessThan(amount) {
					if err := f.ctrl.Transfer(ctx, f.db, holders[0], holders[1], amount); err != nil {
						return false
					}
				}
				half, err := bal.MulDiv(coin.NewAmount(1), coin.NewAmount(2))
				if err != nil {
					return false
				}
				last := holders[len(holders)-1]
				if lastBal, _ := f.ctrl.Balance(f.db, last); !half.IsZero() && !lastBal.LessThan(half) {
					if err := f.ctrl.Burn(ctx, f.db, f.minter.Address(), last, half); err != nil {
						return false
					}
				}
			}

			var sum coin.Amount
			for _, h := range append(holders, arbtest.RandomAddr(t)) {
				bal, err := f.ctrl.Balance(f.db, h)
				if err != nil {
					return false
				}
				if sum, err = sum.Add(bal); err != nil {
					return false
				}
			}
			supply, err := f.ctrl.TotalSupply(f.db)
			return err == nil && supply.Equals(sum)
		},
		gen.SliceOfN(4, gen.UInt32()),
		gen.UInt32Range(0, coin.BasisPoints),
		gen.UInt8(),
		gen.UInt32(),
	))

	properties.TestingRun(t)
}
