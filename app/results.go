package app

import (
	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/codec"
	"github.com/arabica-labs/arabica/errors"
)

// ResultSet is the wire format of query responses. Keys and values are
// returned as two result sets of the same size.
type ResultSet struct {
	Results [][]byte
}

func (r *ResultSet) Marshal() ([]byte, error) { return codec.Marshal(r) }
func (r *ResultSet) Unmarshal(b []byte) error { return codec.Unmarshal(b, r) }

// ResultsFromKeys returns a ResultSet of all keys given a set of models.
func ResultsFromKeys(models []arabica.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Key
	}
	return &ResultSet{Results: res}
}

// ResultsFromValues returns a ResultSet of all values given a set of
// models.
func ResultsFromValues(models []arabica.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Value
	}
	return &ResultSet{Results: res}
}

// JoinResults inverts ResultsFromKeys and ResultsFromValues and makes them
// a consistent whole again.
func JoinResults(keys, values *ResultSet) ([]arabica.Model, error) {
	kref, vref := keys.Results, values.Results
	if len(kref) != len(vref) {
		return nil, errors.Wrapf(errors.ErrInput, "%d keys and %d values", len(kref), len(vref))
	}
	mods := make([]arabica.Model, len(kref))
	for i := range mods {
		mods[i] = arabica.Pair(kref[i], vref[i])
	}
	return mods, nil
}

// UnmarshalOneResult parses a result set and, if it is not empty,
// unmarshals the first result into o.
func UnmarshalOneResult(bz []byte, o arabica.Persistent) error {
	var res ResultSet
	if err := res.Unmarshal(bz); err != nil {
		return err
	}
	if len(res.Results) == 0 {
		return errors.Wrap(errors.ErrNotFound, "empty result set")
	}
	return o.Unmarshal(res.Results[0])
}
