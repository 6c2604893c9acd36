package arabicad

import (
	"crypto/rand"
	"testing"
	"time"

	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/app"
	"github.com/arabica-labs/arabica/coin"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/x/ledger"
	"github.com/arabica-labs/arabica/x/sigs"
	"github.com/arabica-labs/arabica/x/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"golang.org/x/crypto/ed25519"
)

const chainID = "arabica-devnet"

func signedTx(t *testing.T, key ed25519.PrivateKey, seq int64, msg arabica.Msg) []byte {
	t.Helper()
	tx := &Tx{Msg: msg}
	sig, err := sigs.SignTx(key, tx, chainID, seq)
	require.NoError(t, err)
	tx.Signatures = []sigs.StdSignature{sig}
	raw, err := tx.Marshal()
	require.NoError(t, err)
	return raw
}

func TestDepositLifecycle(t *testing.T) {
	keys, err := GenerateKeys(rand.Reader)
	require.NoError(t, err)
	genesis, err := GenInitOptions(keys)
	require.NoError(t, err)

	myApp, err := Application("", nil, true)
	require.NoError(t, err)
	myApp.InitChain(abci.RequestInitChain{ChainId: chainID, AppStateBytes: genesis})

	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	myApp.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{ChainID: chainID, Height: 1, Time: now}})

	deposit := &vault.DepositMsg{
		Vault:      "usd",
		Asset:      coin.NewCoin(500000000, StableTicker),
		LockPeriod: vault.ThreeMonths,
	}
	check := myApp.CheckTx(signedTx(t, keys.Admin, 0, deposit))
	require.Equal(t, uint32(0), check.Code, check.Log)

	res := myApp.DeliverTx(signedTx(t, keys.Admin, 0, deposit))
	require.Equal(t, uint32(0), res.Code, res.Log)

	// A replayed signature is rejected.
	res = myApp.DeliverTx(signedTx(t, keys.Admin, 0, deposit))
	assert.Equal(t, sigs.ErrInvalidSequence.ABCICode(), res.Code, res.Log)

	// One deposit per user and vault.
	res = myApp.DeliverTx(signedTx(t, keys.Admin, 1, deposit))
	assert.Equal(t, errors.ErrDuplicate.ABCICode(), res.Code, res.Log)

	// A failed message still consumes the sequence.
	res = myApp.DeliverTx(signedTx(t, keys.Admin, 2, &vault.WithdrawMsg{Vault: "usd"}))
	assert.Equal(t, errors.ErrLocked.ABCICode(), res.Code, res.Log)

	myApp.EndBlock(abci.RequestEndBlock{})
	commit := myApp.Commit()
	require.NotEmpty(t, commit.Data)

	admin := KeyAddress(keys.Admin)
	q := myApp.Query(abci.RequestQuery{Path: "/deposits", Data: vault.DepositKey("usd", admin)})
	require.Equal(t, uint32(0), q.Code, q.Log)
	var dep vault.Deposit
	require.NoError(t, app.UnmarshalOneResult(q.Value, &dep))
	assert.Equal(t, coin.NewAmount(500000000), dep.Amount)
	assert.Equal(t, StableTicker, dep.VaultType)
	assert.Equal(t, arabica.AsUnixTime(now.Add(90*arabica.Day)), dep.UnlockTime)

	q = myApp.Query(abci.RequestQuery{Path: "/supply", Data: []byte("total")})
	require.Equal(t, uint32(0), q.Code, q.Log)
	var supply ledger.Supply
	require.NoError(t, app.UnmarshalOneResult(q.Value, &supply))
	assert.Equal(t, coin.NewAmount(500000000), supply.Total)

	seq, err := sigs.NextSequence(myApp.DeliverStore(), keys.Admin.Public().(ed25519.PublicKey))
	require.NoError(t, err)
	assert.Equal(t, int64(3), seq)
}

func TestGenInitOptionsRequiresCommittee(t *testing.T) {
	keys, err := GenerateKeys(rand.Reader)
	require.NoError(t, err)
	keys.Committee = keys.Committee[:3]
	_, err = GenInitOptions(keys)
	assert.True(t, errors.ErrInput.Is(err))
}

func TestKeysRoundTrip(t *testing.T) {
	keys, err := GenerateKeys(rand.Reader)
	require.NoError(t, err)
	path := t.TempDir() + "/keys.json"
	require.NoError(t, SaveKeys(path, keys))
	loaded, err := LoadKeys(path)
	require.NoError(t, err)
	assert.Equal(t, KeyAddress(keys.Admin), KeyAddress(loaded.Admin))
	assert.Len(t, loaded.Committee, len(keys.Committee))
}
