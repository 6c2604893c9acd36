package sigs

import (
	"crypto/sha512"
	"encoding/binary"

	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/errors"
	"golang.org/x/crypto/ed25519"
)

// SignCodeV1 is the current way to prefix the bytes we use to build a
// signature.
var SignCodeV1 = []byte{0, 0xCA, 0xFE, 0}

// VerifyTxSignatures checks all the signatures on the tx. It returns the
// list of signer conditions, possibly empty, or an error if any signature is
// invalid.
func VerifyTxSignatures(db arabica.KVStore, tx SignedTx, chainID string) ([]arabica.Condition, error) {
	bz, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	sigs := tx.GetSignatures()

	signers := make([]arabica.Condition, 0, len(sigs))
	for i := range sigs {
		signer, err := VerifySignature(db, sigs[i], bz, chainID)
		if err != nil {
			return nil, err
		}
		signers = append(signers, signer)
	}
	return signers, nil
}

// VerifySignature checks one signature against the sign bytes and
// increments the signer sequence.
func VerifySignature(db arabica.KVStore, sig StdSignature, signBytes []byte, chainID string) (arabica.Condition, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}

	cond := PubkeyCondition(sig.Pubkey)
	key := cond.Address()
	bucket := NewBucket()

	var user UserData
	switch err := bucket.One(db, key, &user); {
	case errors.ErrNotFound.Is(err):
		user = UserData{Pubkey: sig.Pubkey}
	case err != nil:
		return nil, errors.Wrap(err, "load user")
	}

	toSign, err := BuildSignBytes(signBytes, chainID, sig.Sequence)
	if err != nil {
		return nil, err
	}
	if !ed25519.Verify(ed25519.PublicKey(user.Pubkey), toSign, sig.Signature) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "invalid signature")
	}
	if err := user.CheckAndIncrementSequence(sig.Sequence); err != nil {
		return nil, err
	}
	if _, err := bucket.Put(db, key, &user); err != nil {
		return nil, errors.Wrap(err, "save user")
	}
	return cond, nil
}

/*
BuildSignBytes combines all info on the actual tx before signing.

	version | len(chainID) | chainID      | nonce             | signBytes
	4bytes  | uint8        | ascii string | int64 (bigendian) | serialized transaction

This is then prehashed with sha512 before fed into the signing step.
*/
func BuildSignBytes(signBytes []byte, chainID string, seq int64) ([]byte, error) {
	if seq < 0 {
		return nil, errors.Wrap(ErrInvalidSequence, "negative")
	}
	if !arabica.IsValidChainID(chainID) {
		return nil, errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}

	nonce := make([]byte, 8)
	binary.BigEndian.PutUint64(nonce, uint64(seq))

	output := make([]byte, 0, 4+1+len(chainID)+8+len(signBytes))
	output = append(output, SignCodeV1...)
	output = append(output, uint8(len(chainID)))
	output = append(output, chainID...)
	output = append(output, nonce...)
	output = append(output, signBytes...)

	hashed := sha512.Sum512(output)
	return hashed[:], nil
}

// SignTx creates a signature for the given tx.
func SignTx(key ed25519.PrivateKey, tx SignedTx, chainID string, seq int64) (StdSignature, error) {
	signBytes, err := tx.GetSignBytes()
	if err != nil {
		return StdSignature{}, err
	}
	toSign, err := BuildSignBytes(signBytes, chainID, seq)
	if err != nil {
		return StdSignature{}, err
	}
	return StdSignature{
		Pubkey:    []byte(key.Public().(ed25519.PublicKey)),
		Signature: ed25519.Sign(key, toSign),
		Sequence:  seq,
	}, nil
}

// NextSequence returns the sequence the next signature of the given key
// must use.
func NextSequence(db arabica.ReadOnlyKVStore, pubkey []byte) (int64, error) {
	var user UserData
	switch err := NewBucket().One(db, PubkeyCondition(pubkey).Address(), &user); {
	case errors.ErrNotFound.Is(err):
		return 0, nil
	case err != nil:
		return 0, err
	}
	return user.Sequence, nil
}
