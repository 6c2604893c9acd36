package arbtest

import (
	"context"
	"time"

	"github.com/arabica-labs/arabica"
)

// ChainID is used by all test contexts.
const ChainID = "arabica-test"

// BlockContext returns a context of a block produced at the given time.
func BlockContext(now time.Time) arabica.Context {
	ctx := context.Background()
	ctx = arabica.WithChainID(ctx, ChainID)
	ctx = arabica.WithHeight(ctx, 1)
	return arabica.WithBlockTime(ctx, now)
}
