package utils

import (
	"time"

	"github.com/arabica-labs/arabica"
)

// Logging is a decorator to log messages as they pass through.
type Logging struct{}

var _ arabica.Decorator = Logging{}

// NewLogging creates a Logging decorator.
func NewLogging() Logging {
	return Logging{}
}

// Check logs error -> error, success -> debug.
func (r Logging) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx, next arabica.Checker) (*arabica.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, db, tx)
	var resLog string
	if err == nil {
		resLog = res.Log
	}
	logDuration(ctx, tx, start, resLog, err, true)
	return res, err
}

// Deliver logs error -> error, success -> info.
func (r Logging) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx, next arabica.Deliverer) (*arabica.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, db, tx)
	var resLog string
	if err == nil {
		resLog = res.Log
	}
	logDuration(ctx, tx, start, resLog, err, false)
	return res, err
}

func logDuration(ctx arabica.Context, tx arabica.Tx, start time.Time, msg string, err error, lowPrio bool) {
	delta := time.Since(start)
	logger := arabica.GetLogger(ctx).With(
		"path", arabica.GetPath(tx),
		"duration", delta/time.Microsecond,
	)

	// An empty message is still logged, the key values carry the
	// relevant information.
	switch {
	case err != nil:
		logger.With("err", err).Error(msg)
	case lowPrio:
		logger.Debug(msg)
	default:
		logger.Info(msg)
	}
}
