package sigs

import (
	"context"
	"crypto/rand"
	"testing"

	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/arbtest"
	"github.com/arabica-labs/arabica/arbtest/assert"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/store"
	"golang.org/x/crypto/ed25519"
)

type signedTx struct {
	arbtest.Tx
	payload []byte
	sigs    []StdSignature
}

func (tx *signedTx) GetSignBytes() ([]byte, error) { return tx.payload, nil }
func (tx *signedTx) GetSignatures() []StdSignature { return tx.sigs }

func newKey(t *testing.T) ed25519.PrivateKey {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	assert.Nil(t, err)
	return priv
}

func sign(t *testing.T, key ed25519.PrivateKey, tx *signedTx, seq int64) {
	t.Helper()
	sig, err := SignTx(key, tx, arbtest.ChainID, seq)
	assert.Nil(t, err)
	tx.sigs = append(tx.sigs, sig)
}

func TestVerifyTxSignatures(t *testing.T) {
	db := store.MemStore()
	alice, bob := newKey(t), newKey(t)
	aliceCond := PubkeyCondition(alice.Public().(ed25519.PublicKey))

	tx := &signedTx{payload: []byte("deposit")}
	sign(t, alice, tx, 0)

	signers, err := VerifyTxSignatures(db, tx, arbtest.ChainID)
	assert.Nil(t, err)
	assert.Equal(t, []arabica.Condition{aliceCond}, signers)

	// Replay is rejected, the sequence moved on.
	_, err = VerifyTxSignatures(db, tx, arbtest.ChainID)
	assert.IsErr(t, ErrInvalidSequence, err)

	seq, err := NextSequence(db, alice.Public().(ed25519.PublicKey))
	assert.Nil(t, err)
	assert.Equal(t, int64(1), seq)

	// Signature for another chain does not verify.
	other := &signedTx{payload: []byte("deposit")}
	sign(t, bob, other, 0)
	_, err = VerifyTxSignatures(db, other, "another-chain")
	assert.IsErr(t, errors.ErrUnauthorized, err)

	// Tampered payload does not verify.
	other.payload = []byte("withdraw")
	_, err = VerifyTxSignatures(db, other, arbtest.ChainID)
	assert.IsErr(t, errors.ErrUnauthorized, err)

	// Two signers at once.
	multi := &signedTx{payload: []byte("multi")}
	sign(t, alice, multi, 1)
	sign(t, bob, multi, 0)
	signers, err = VerifyTxSignatures(db, multi, arbtest.ChainID)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(signers))
}

func TestDecorator(t *testing.T) {
	key := newKey(t)
	cond := PubkeyCondition(key.Public().(ed25519.PublicKey))
	ctx := arabica.WithChainID(context.Background(), arbtest.ChainID)

	var seen []arabica.Condition
	h := &conditionHandler{fn: func(ctx arabica.Context) {
		seen = Authenticate{}.GetConditions(ctx)
	}}

	cases := map[string]struct {
		dec     Decorator
		tx      arabica.Tx
		wantErr *errors.Error
		want    []arabica.Condition
	}{
		"signed": {
			dec: NewDecorator(),
			tx: func() arabica.Tx {
				tx := &signedTx{payload: []byte("a")}
				sign(t, key, tx, 0)
				return tx
			}(),
			want: []arabica.Condition{cond},
		},
		"unsigned is rejected": {
			dec:     NewDecorator(),
			tx:      &signedTx{payload: []byte("a")},
			wantErr: errors.ErrUnauthorized,
		},
		"unsigned is allowed": {
			dec:  NewDecorator().AllowMissingSigs(),
			tx:   &signedTx{payload: []byte("a")},
			want: []arabica.Condition{},
		},
		"not signable is rejected": {
			dec:     NewDecorator(),
			tx:      &arbtest.Tx{},
			wantErr: errors.ErrUnauthorized,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			seen = nil
			db := store.MemStore()
			_, err := arbtest.Decorate(h, tc.dec).Deliver(ctx, db, tc.tx)
			assert.IsErr(t, tc.wantErr, err)
			if tc.wantErr == nil {
				assert.Equal(t, tc.want, seen)
				if len(tc.want) > 0 && !(Authenticate{}).HasAddress(ctxWith(tc.want), cond.Address()) {
					t.Fatal("signer address not authenticated")
				}
			}
		})
	}
}

func ctxWith(conds []arabica.Condition) arabica.Context {
	return withSigners(context.Background(), conds)
}

type conditionHandler struct {
	fn func(arabica.Context)
}

func (h *conditionHandler) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.CheckResult, error) {
	h.fn(ctx)
	return &arabica.CheckResult{}, nil
}

func (h *conditionHandler) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.DeliverResult, error) {
	h.fn(ctx)
	return &arabica.DeliverResult{}, nil
}

func TestUserSequence(t *testing.T) {
	u := UserData{Pubkey: make([]byte, ed25519.PublicKeySize)}
	assert.IsErr(t, ErrInvalidSequence, u.CheckAndIncrementSequence(1))
	assert.Nil(t, u.CheckAndIncrementSequence(0))
	assert.Equal(t, int64(1), u.Sequence)

	u.Sequence = maxSequenceValue
	assert.IsErr(t, errors.ErrOverflow, u.CheckAndIncrementSequence(maxSequenceValue))
}
