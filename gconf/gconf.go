package gconf

import (
	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/errors"
)

// ReadStore is a subset of arabica.ReadOnlyKVStore.
type ReadStore interface {
	Get([]byte) ([]byte, error)
}

// Store is a subset of arabica.KVStore.
type Store interface {
	ReadStore
	Set([]byte, []byte) error
}

// ValidMarshaler is implemented by objects that can serialize themselves
// after validation.
type ValidMarshaler interface {
	Marshal() ([]byte, error)
	Validate() error
}

// Unmarshaler is implemented by objects that can load their state from the
// binary representation.
type Unmarshaler interface {
	Unmarshal([]byte) error
}

// Configuration is implemented by every configuration record.
type Configuration interface {
	ValidMarshaler
	Unmarshaler
}

func key(pkg string) []byte {
	return []byte("_c:" + pkg)
}

// Save validates the object before writing it as the configuration of the
// given package.
func Save(db Store, pkg string, src ValidMarshaler) error {
	k := key(pkg)
	if err := src.Validate(); err != nil {
		return errors.Wrapf(err, "validation: key %q", k)
	}
	raw, err := src.Marshal()
	if err != nil {
		return errors.Wrapf(err, "marshal: key %q", k)
	}
	if err := db.Set(k, raw); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "key %q: %s", k, err)
	}
	return nil
}

// Load reads the configuration of the given package. ErrNotFound is
// returned if it was never initialized.
func Load(db ReadStore, pkg string, dst Unmarshaler) error {
	k := key(pkg)
	raw, err := db.Get(k)
	if err != nil {
		return errors.Wrapf(errors.ErrDatabase, "key %q: %s", k, err)
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "key %q", k)
	}
	if err := dst.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "unmarshal: key %q", k)
	}
	return nil
}

// InitConfig takes opts["conf"][pkg], parses it into the given
// configuration, validates it and stores it under the package key.
//
// A configuration can be initialized only once. ErrDuplicate is returned
// if the record already exists.
func InitConfig(db Store, opts arabica.Options, pkg string, conf Configuration) error {
	var confOptions arabica.Options
	if err := opts.ReadOptions("conf", &confOptions); err != nil {
		return errors.Wrap(err, "read conf")
	}
	if confOptions[pkg] == nil {
		return errors.Wrapf(errors.ErrNotFound, "no configuration in genesis for %q package", pkg)
	}
	if raw, err := db.Get(key(pkg)); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "package %q: %s", pkg, err)
	} else if raw != nil {
		return errors.Wrapf(errors.ErrDuplicate, "configuration for %q already initialized", pkg)
	}
	if err := confOptions.ReadOptions(pkg, conf); err != nil {
		return errors.Wrapf(err, "read configuration for %s", pkg)
	}
	if err := Save(db, pkg, conf); err != nil {
		return errors.Wrapf(err, "save configuration for %s", pkg)
	}
	return nil
}
