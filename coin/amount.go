package coin

import (
	"encoding/binary"
	"encoding/json"

	"github.com/arabica-labs/arabica/errors"
	"github.com/holiman/uint256"
)

// BasisPoints is the denominator of all rates and ratios.
const BasisPoints = 10000

// Amount is an unsigned 128 bit integer. It is stored as two 64 bit halves
// so that it serializes as a plain struct, while all arithmetic is done on
// 256 bit integers and checked against the 128 bit range.
type Amount struct {
	Hi uint64
	Lo uint64
}

// NewAmount returns an amount of the given value.
func NewAmount(v uint64) Amount {
	return Amount{Lo: v}
}

// Bytes returns the 16 byte big endian representation.
func (a Amount) Bytes() []byte {
	b := make([]byte, 16)
	binary.BigEndian.PutUint64(b[:8], a.Hi)
	binary.BigEndian.PutUint64(b[8:], a.Lo)
	return b
}

// ParseAmount parses a base 10 representation of an amount.
func ParseAmount(s string) (Amount, error) {
	var z uint256.Int
	if err := z.SetFromDecimal(s); err != nil {
		return Amount{}, errors.Wrapf(errors.ErrAmount, "cannot parse %q: %s", s, err)
	}
	return fromInt(&z)
}

// MustParseAmount is ParseAmount that panics on invalid input. Use it only
// for constants.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) toInt() *uint256.Int {
	return &uint256.Int{a.Lo, a.Hi, 0, 0}
}

func fromInt(z *uint256.Int) (Amount, error) {
	if z[2] != 0 || z[3] != 0 {
		return Amount{}, errors.Wrap(errors.ErrOverflow, "amount exceeds 128 bits")
	}
	return Amount{Hi: z[1], Lo: z[0]}, nil
}

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool {
	return a.Hi == 0 && a.Lo == 0
}

// Cmp returns -1 if a < b, 0 if a == b and 1 if a > b.
func (a Amount) Cmp(b Amount) int {
	return a.toInt().Cmp(b.toInt())
}

// LessThan returns true if a < b.
func (a Amount) LessThan(b Amount) bool {
	return a.Cmp(b) < 0
}

// Equals returns true if both amounts are the same.
func (a Amount) Equals(b Amount) bool {
	return a == b
}

// Add returns a + b or ErrOverflow.
func (a Amount) Add(b Amount) (Amount, error) {
	return fromInt(new(uint256.Int).Add(a.toInt(), b.toInt()))
}

// Sub returns a - b. It fails with ErrInsufficientAmount if b > a.
func (a Amount) Sub(b Amount) (Amount, error) {
	z, underflow := new(uint256.Int).SubOverflow(a.toInt(), b.toInt())
	if underflow {
		return Amount{}, errors.Wrapf(errors.ErrInsufficientAmount, "%s is less than %s", a, b)
	}
	return fromInt(z)
}

// Mul returns a * b or ErrOverflow.
func (a Amount) Mul(b Amount) (Amount, error) {
	return fromInt(new(uint256.Int).Mul(a.toInt(), b.toInt()))
}

// MulDiv returns a * mul / div, truncated. The product is computed on 256
// bits so it never overflows before the division.
func (a Amount) MulDiv(mul, div Amount) (Amount, error) {
	if div.IsZero() {
		return Amount{}, errors.Wrap(errors.ErrInput, "division by zero")
	}
	z := new(uint256.Int).Mul(a.toInt(), mul.toInt())
	z.Div(z, div.toInt())
	return fromInt(z)
}

// MulBasisPoints returns a * bp / 10000, truncated.
func (a Amount) MulBasisPoints(bp uint64) (Amount, error) {
	return a.MulDiv(NewAmount(bp), NewAmount(BasisPoints))
}

// Uint64 returns the amount as uint64 and false if it does not fit.
func (a Amount) Uint64() (uint64, bool) {
	return a.Lo, a.Hi == 0
}

// String returns the base 10 representation.
func (a Amount) String() string {
	return a.toInt().Dec()
}

// MarshalJSON encodes the amount as a decimal string, since 128 bit values
// do not fit into a json number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts both a decimal string and a json number.
func (a *Amount) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return errors.Wrap(errors.ErrAmount, "amount must be a string or a number")
		}
		s = n.String()
	}
	v, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}
