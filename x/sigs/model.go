package sigs

import (
	"crypto/sha256"

	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/codec"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/orm"
	"golang.org/x/crypto/ed25519"
)

// BucketName is where we store the accounts.
const BucketName = "sigs"

// maxSequenceValue is the greatest sequence a javascript client can
// represent, Number.MAX_SAFE_INTEGER.
const maxSequenceValue = (1 << 53) - 1

// UserData is the state of a single signing key.
type UserData struct {
	Pubkey   []byte
	Sequence int64
}

var _ orm.Model = (*UserData)(nil)

func (u *UserData) Marshal() ([]byte, error) { return codec.Marshal(u) }
func (u *UserData) Unmarshal(b []byte) error { return codec.Unmarshal(b, u) }

func (u *UserData) Validate() error {
	var errs error
	if len(u.Pubkey) != ed25519.PublicKeySize {
		errs = errors.AppendField(errs, "Pubkey", errors.ErrInput)
	}
	if u.Sequence < 0 || u.Sequence > maxSequenceValue {
		errs = errors.AppendField(errs, "Sequence", ErrInvalidSequence)
	}
	return errs
}

// CheckAndIncrementSequence increments the sequence if it is equal to the
// expected value. Otherwise an error is returned.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	if u.Sequence != expected {
		return errors.Wrapf(ErrInvalidSequence, "mismatch expected %d, got %d", expected, u.Sequence)
	}
	next := u.Sequence + 1
	if next <= 0 || next > maxSequenceValue {
		return errors.Wrap(errors.ErrOverflow, "sequence out of range")
	}
	u.Sequence = next
	return nil
}

// PubkeyCondition returns the condition fulfilled by a signature of the
// given public key.
func PubkeyCondition(pubkey []byte) arabica.Condition {
	h := sha256.Sum256(pubkey)
	return arabica.NewCondition("sigs", "ed25519", h[:])
}

// NewBucket returns the bucket storing users under their address.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &UserData{})
}

// RegisterQuery will register the bucket as "/sigs".
func RegisterQuery(qr arabica.QueryRouter) {
	NewBucket().Register(qr)
}
