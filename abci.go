package arabica

import (
	"github.com/arabica-labs/arabica/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/common"
)

// DeliverOrError returns an abci response for DeliverTx, converting the
// error message if present, or using the successful DeliverResult.
func DeliverOrError(result *DeliverResult, err error, debug bool) abci.ResponseDeliverTx {
	if err != nil {
		return DeliverTxError(err, debug)
	}
	return result.ToABCI()
}

// CheckOrError returns an abci response for CheckTx, converting the error
// message if present, or using the successful CheckResult.
func CheckOrError(result *CheckResult, err error, debug bool) abci.ResponseCheckTx {
	if err != nil {
		return CheckTxError(err, debug)
	}
	return result.ToABCI()
}

// DeliverResult captures any non-error abci result to make sure people use
// error for error cases.
type DeliverResult struct {
	// Data is a machine-parseable return value, like the id of the
	// created entity.
	Data []byte
	// Log is a human-readable informational string.
	Log string
	// Tags are used by tendermint to index and search the transaction
	// history.
	Tags []common.KVPair
	// GasUsed is reported back to tendermint.
	GasUsed int64
	// Code is zero on success. A non-zero code reports an outcome that is
	// not a success while the state changes are still committed.
	Code uint32
}

// ToABCI converts our internal type into an abci response.
func (d DeliverResult) ToABCI() abci.ResponseDeliverTx {
	return abci.ResponseDeliverTx{
		Code:    d.Code,
		Data:    d.Data,
		Log:     d.Log,
		Tags:    d.Tags,
		GasUsed: d.GasUsed,
	}
}

// CheckResult captures any non-error abci result to make sure people use
// error for error cases.
type CheckResult struct {
	// Data is a machine-parseable return value.
	Data []byte
	// Log is a human-readable informational string.
	Log string
	// GasAllocated is the maximum units of work allowed for this tx.
	GasAllocated int64
	// GasPayment is used by mempool to prioritize transactions.
	GasPayment int64
}

// NewCheck sets the gas used and the log message.
func NewCheck(gasAllocated int64, log string) *CheckResult {
	return &CheckResult{
		Log:          log,
		GasAllocated: gasAllocated,
	}
}

// ToABCI converts our internal type into an abci response.
func (c CheckResult) ToABCI() abci.ResponseCheckTx {
	return abci.ResponseCheckTx{
		Data:      c.Data,
		Log:       c.Log,
		GasWanted: c.GasAllocated,
	}
}

// DeliverTxError converts any error into an abci.ResponseDeliverTx,
// preserving as much info as possible if it was already a registered error.
func DeliverTxError(err error, debug bool) abci.ResponseDeliverTx {
	code, log := errors.ABCIInfo(errors.Redact(err, debug), debug)
	return abci.ResponseDeliverTx{
		Code: code,
		Log:  log,
	}
}

// CheckTxError converts any error into an abci.ResponseCheckTx, preserving
// as much info as possible if it was already a registered error.
func CheckTxError(err error, debug bool) abci.ResponseCheckTx {
	code, log := errors.ABCIInfo(errors.Redact(err, debug), debug)
	return abci.ResponseCheckTx{
		Code: code,
		Log:  log,
	}
}
