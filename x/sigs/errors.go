package sigs

import "github.com/arabica-labs/arabica/errors"

var (
	// ErrInvalidSequence is returned when the signature sequence does not
	// match the expected account sequence.
	ErrInvalidSequence = errors.Register(120, "invalid sequence number")
)
