package ledger

import (
	"fmt"

	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/orm"
)

// RebaseTicker maintains the daily rebase marker of the supply record.
// Yield itself is folded in lazily by Accrue, the marker only records
// when the last rebase period started.
type RebaseTicker struct {
	supply orm.ModelBucket
}

var _ arabica.Ticker = (*RebaseTicker)(nil)

// NewRebaseTicker returns a ticker operating on the supply bucket.
func NewRebaseTicker() *RebaseTicker {
	return &RebaseTicker{supply: NewSupplyBucket()}
}

func (t *RebaseTicker) Tick(ctx arabica.Context, db arabica.KVStore) (arabica.TickResult, error) {
	now, err := arabica.BlockUnixTime(ctx)
	if err != nil {
		return arabica.TickResult{}, err
	}
	var s Supply
	switch err := t.supply.One(db, supplyKey, &s); {
	case errors.ErrNotFound.Is(err):
		// Ledger not initialized.
		return arabica.TickResult{}, nil
	case err != nil:
		return arabica.TickResult{}, err
	}
	if s.LastRebase != 0 && now.Sub(s.LastRebase) < RebaseInterval {
		return arabica.TickResult{}, nil
	}
	s.LastRebase = now
	if _, err := t.supply.Put(db, supplyKey, &s); err != nil {
		return arabica.TickResult{}, errors.Wrap(err, "save supply")
	}
	arabica.GetLogger(ctx).Info("rebase", "supply", s.Total.String(), "time", now)
	return arabica.TickResult{Log: fmt.Sprintf("rebase supply=%s", s.Total)}, nil
}
