package arbtest

import (
	"crypto/rand"
	"encoding/binary"
	"sync/atomic"
	"testing"

	"github.com/arabica-labs/arabica"
)

var counter uint64

// NewCondition returns a condition that is unique for the lifetime of the
// test binary.
func NewCondition() arabica.Condition {
	return arabica.NewCondition("test", "seq", SequenceID(atomic.AddUint64(&counter, 1)))
}

// SequenceID returns an 8 byte big endian encoded id, as produced by an orm
// sequence.
func SequenceID(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}

// RandomAddr returns a valid random address.
func RandomAddr(t testing.TB) arabica.Address {
	t.Helper()
	raw := make([]byte, arabica.AddressLength)
	if _, err := rand.Read(raw); err != nil {
		t.Fatalf("cannot generate a random address: %s", err)
	}
	return arabica.Address(raw)
}
