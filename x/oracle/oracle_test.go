package oracle

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
)

func genesis(t *testing.T, oracle arabica.Address) arabica.Options {
	t.Helper()
	raw := `{
		"conf": {"oracle": {"oracle": "` + oracle.String() + `"}},
		"oracle": [{"ticker": "WBTC", "price": "30000000000"}]
	}`
	var opts arabica.Options
	assert.Nil(t, json.Unmarshal([]byte(raw), &opts))
	return opts
}

func TestUnitPrice(t *testing.T) {
	db := store.MemStore()
	oracle := arbtest.NewCondition()
	assert.Nil(t, Initializer{}.FromGenesis(genesis(t, oracle.Address()), db))

	ctrl := NewController()
	price, err := ctrl.UnitPrice(db, "WBTC")
	assert.Nil(t, err)
	assert.Equal(t, coin.NewAmount(30000000000), price)

	// No price posted, the mock price is used.
	price, err = ctrl.UnitPrice(db, "WETH")
	assert.Nil(t, err)
	assert.Equal(t, coin.NewAmount(MockPrice), price)

	// 1.5 WETH (6 decimals) at 2000 is 3000 accounting units.
	value, err := ctrl.Value(db, coin.NewCoin(1500000, "WETH"))
	assert.Nil(t, err)
	assert.Equal(t, coin.NewAmount(3000000000), value)

	ok, err := ctrl.IsOracle(db, oracle.Address())
	assert.Nil(t, err)
	assert.Equal(t, true, ok)
	ok, err = ctrl.IsOracle(db, arbtest.RandomAddr(t))
	assert.Nil(t, err)
	assert.Equal(t, false, ok)
}

func TestSetPrice(t *testing.T) {
	oracle := arbtest.NewCondition()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := map[string]struct {
		signer  arabica.Condition
		msg     *SetPriceMsg
		wantErr *errors.Error
	}{
		"oracle posts a price": {
			signer: oracle,
			msg:    &SetPriceMsg{Ticker: "WETH", Price: coin.NewAmount(2500000000)},
		},
		"only the oracle can post": {
			signer:  arbtest.NewCondition(),
			msg:     &SetPriceMsg{Ticker: "WETH", Price: coin.NewAmount(2500000000)},
			wantErr: errors.ErrUnauthorized,
		},
		"zero price": {
			signer:  oracle,
			msg:     &SetPriceMsg{Ticker: "WETH"},
			wantErr: errors.ErrAmount,
		},
		"invalid ticker": {
			signer:  oracle,
			msg:     &SetPriceMsg{Ticker: "weth", Price: coin.NewAmount(1)},
			wantErr: errors.ErrCurrency,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			assert.Nil(t, Initializer{}.FromGenesis(genesis(t, oracle.Address()), db))

			h := NewSetPriceHandler(&arbtest.Auth{Signer: tc.signer}, NewController())
			ctx := arbtest.BlockContext(now)
			tx := &arbtest.Tx{Msg: tc.msg}

			_, err := h.Check(ctx, db, tx)
			assert.IsErr(t, tc.wantErr, err)
			_, err = h.Deliver(ctx, db, tx)
			assert.IsErr(t, tc.wantErr, err)
			if tc.wantErr != nil {
				return
			}

			var p Price
			assert.Nil(t, NewPriceBucket().One(db, []byte("WETH"), &p))
			assert.Equal(t, Price{Price: tc.msg.Price, UpdatedAt: arabica.AsUnixTime(now)}, p)
		})
	}
}

func TestGenesisInitOnce(t *testing.T) {
	db := store.MemStore()
	opts := genesis(t, arbtest.RandomAddr(t))
	assert.Nil(t, Initializer{}.FromGenesis(opts, db))
	assert.IsErr(t, errors.ErrDuplicate, Initializer{}.FromGenesis(opts, db))
}
