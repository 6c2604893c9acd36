package orm

import (
	"bytes"
	"fmt"
	"reflect"
	"regexp"

	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/store"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,20}$`).MatchString

// ModelBucket stores models of a single type under a common prefix.
type ModelBucket interface {
	// One queries the database for a single model instance by its primary
	// key. The result is loaded into the given destination.
	// ErrNotFound is returned if the entity does not exist.
	// ErrType is returned if the destination is not of the bucket type.
	One(db arabica.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if an entity with the given key exists and
	// ErrNotFound otherwise.
	Has(db arabica.ReadOnlyKVStore, key []byte) error

	// Put validates and saves the model under the given key. If key is nil
	// and the bucket was created WithIDSequence, a new key is allocated.
	// The used key is returned.
	Put(db arabica.KVStore, key []byte, m Model) ([]byte, error)

	// Delete removes the entity with the given key. ErrNotFound is
	// returned if it does not exist.
	Delete(db arabica.KVStore, key []byte) error

	// ByPrefix loads all entities whose key starts with the prefix into
	// the destination, which must be a pointer to a slice of the bucket
	// type. The keys are returned in the same order.
	ByPrefix(db arabica.ReadOnlyKVStore, prefix []byte, dest interface{}) ([][]byte, error)

	// Register exposes the bucket content through the query router.
	Register(r arabica.QueryRouter)
}

// ModelBucketOption customizes a bucket.
type ModelBucketOption func(mb *modelBucket)

// WithIDSequence allocates keys from the given sequence when a model is
// stored without a key.
func WithIDSequence(s Sequence) ModelBucketOption {
	return func(mb *modelBucket) {
		mb.idSeq = &s
	}
}

// NewModelBucket returns a bucket that stores models of the same type as
// proto, which must be a pointer.
func NewModelBucket(name string, proto Model, opts ...ModelBucketOption) ModelBucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("illegal bucket name: %q", name))
	}
	tp := reflect.TypeOf(proto)
	if tp.Kind() != reflect.Ptr {
		panic(fmt.Sprintf("model must be a pointer, got %T", proto))
	}
	mb := &modelBucket{
		name:   name,
		prefix: []byte(name + ":"),
		model:  tp,
	}
	for _, fn := range opts {
		fn(mb)
	}
	return mb
}

type modelBucket struct {
	name   string
	prefix []byte
	model  reflect.Type
	idSeq  *Sequence
}

var _ ModelBucket = (*modelBucket)(nil)

func (mb *modelBucket) dbKey(key []byte) []byte {
	return append(append([]byte{}, mb.prefix...), key...)
}

func (mb *modelBucket) One(db arabica.ReadOnlyKVStore, key []byte, dest Model) error {
	if reflect.TypeOf(dest) != mb.model {
		return errors.Wrapf(errors.ErrType, "%T cannot be loaded from bucket %q", dest, mb.name)
	}
	raw, err := db.Get(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	if err := dest.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "%s %X", mb.name, key)
	}
	return nil
}

func (mb *modelBucket) Has(db arabica.ReadOnlyKVStore, key []byte) error {
	ok, err := db.Has(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	return nil
}

func (mb *modelBucket) Put(db arabica.KVStore, key []byte, m Model) ([]byte, error) {
	if reflect.TypeOf(m) != mb.model {
		return nil, errors.Wrapf(errors.ErrType, "%T cannot be stored in bucket %q", m, mb.name)
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrapf(errors.ErrModel, "%s: %s", mb.name, err)
	}
	if len(key) == 0 {
		if mb.idSeq == nil {
			return nil, errors.Wrap(errors.ErrHuman, "key required for bucket without a sequence")
		}
		var err error
		if key, err = mb.idSeq.NextVal(db); err != nil {
			return nil, errors.Wrap(err, "next id")
		}
	}
	raw, err := m.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "marshal")
	}
	if raw == nil {
		// A nil value reads back as a missing entity.
		raw = []byte{}
	}
	if err := db.Set(mb.dbKey(key), raw); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return key, nil
}

func (mb *modelBucket) Delete(db arabica.KVStore, key []byte) error {
	if err := mb.Has(db, key); err != nil {
		return err
	}
	if err := db.Delete(mb.dbKey(key)); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

func (mb *modelBucket) ByPrefix(db arabica.ReadOnlyKVStore, prefix []byte, dest interface{}) ([][]byte, error) {
	slice := reflect.ValueOf(dest)
	if slice.Kind() != reflect.Ptr || slice.Elem().Kind() != reflect.Slice {
		return nil, errors.Wrapf(errors.ErrType, "want pointer to a slice, got %T", dest)
	}
	elem := slice.Elem().Type().Elem()
	if elem != mb.model && reflect.PtrTo(elem) != mb.model {
		return nil, errors.Wrapf(errors.ErrType, "%s cannot be loaded from bucket %q", elem, mb.name)
	}

	models, err := mb.scan(db, prefix)
	if err != nil {
		return nil, err
	}
	keys := make([][]byte, 0, len(models))
	res := reflect.MakeSlice(slice.Elem().Type(), 0, len(models))
	for _, m := range models {
		obj := reflect.New(mb.model.Elem())
		if err := obj.Interface().(Model).Unmarshal(m.Value); err != nil {
			return nil, errors.Wrapf(err, "%s %X", mb.name, m.Key)
		}
		if elem == mb.model {
			res = reflect.Append(res, obj)
		} else {
			res = reflect.Append(res, obj.Elem())
		}
		keys = append(keys, m.Key)
	}
	slice.Elem().Set(res)
	return keys, nil
}

// scan returns raw models with the bucket prefix removed from the keys.
func (mb *modelBucket) scan(db arabica.ReadOnlyKVStore, prefix []byte) ([]arabica.Model, error) {
	start := mb.dbKey(prefix)
	it, err := db.Iterator(start, prefixEnd(start))
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	models, err := store.ReadAll(it)
	if err != nil {
		return nil, err
	}
	for i := range models {
		models[i].Key = models[i].Key[len(mb.prefix):]
	}
	return models, nil
}

func (mb *modelBucket) Register(r arabica.QueryRouter) {
	r.Register("/"+mb.name, mb)
}

// Query serves the raw content of the bucket, keys without the prefix.
func (mb *modelBucket) Query(db arabica.ReadOnlyKVStore, mod string, data []byte) ([]arabica.Model, error) {
	switch mod {
	case arabica.KeyQueryMod:
		raw, err := db.Get(mb.dbKey(data))
		if err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, err.Error())
		}
		if raw == nil {
			return nil, nil
		}
		return []arabica.Model{arabica.Pair(data, raw)}, nil
	case arabica.PrefixQueryMod:
		return mb.scan(db, data)
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown query mod %q", mod)
	}
}

// prefixEnd returns the smallest key greater than all keys starting with the
// prefix, or nil if there is none.
func prefixEnd(prefix []byte) []byte {
	end := bytes.TrimRight(prefix, "\xff")
	if len(end) == 0 {
		return nil
	}
	end = append([]byte{}, end...)
	end[len(end)-1]++
	return end
}
