package store

import (
	"testing"

	"github.com/arabica-labs/arabica/arbtest/assert"
	"github.com/arabica-labs/arabica/errors"
)

func TestCacheWrapReadsOwnWrites(t *testing.T) {
	db := MemStore()
	assert.Nil(t, db.Set([]byte("a"), []byte("1")))

	cache := db.CacheWrap()
	assert.Nil(t, cache.Set([]byte("b"), []byte("2")))
	assert.Nil(t, cache.Delete([]byte("a")))

	v, err := cache.Get([]byte("b"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("2"), v)
	has, err := cache.Has([]byte("a"))
	assert.Nil(t, err)
	assert.Equal(t, false, has)

	// The parent is untouched until Write.
	v, err = db.Get([]byte("a"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("1"), v)
	has, err = db.Has([]byte("b"))
	assert.Nil(t, err)
	assert.Equal(t, false, has)

	assert.Nil(t, cache.Write())
	v, err = db.Get([]byte("a"))
	assert.Nil(t, err)
	if v != nil {
		t.Fatalf("deleted key still present: %q", v)
	}
	v, err = db.Get([]byte("b"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("2"), v)
}

func TestCacheWrapDiscard(t *testing.T) {
	db := MemStore()
	cache := db.CacheWrap()
	assert.Nil(t, cache.Set([]byte("k"), []byte("v")))

	nested := cache.CacheWrap()
	assert.Nil(t, nested.Set([]byte("n"), []byte("v")))
	nested.Discard()

	has, err := cache.Has([]byte("n"))
	assert.Nil(t, err)
	assert.Equal(t, false, has)

	cache.Discard()
	has, err = db.Has([]byte("k"))
	assert.Nil(t, err)
	assert.Equal(t, false, has)
}

func TestCacheWrapIterator(t *testing.T) {
	db := MemStore()
	for _, k := range []string{"a", "c", "e", "g"} {
		assert.Nil(t, db.Set([]byte(k), []byte("parent")))
	}
	cache := db.CacheWrap()
	assert.Nil(t, cache.Set([]byte("b"), []byte("child")))
	assert.Nil(t, cache.Set([]byte("e"), []byte("child")))
	assert.Nil(t, cache.Delete([]byte("c")))
	assert.Nil(t, cache.Set([]byte("z"), []byte("child")))

	cases := map[string]struct {
		start, end []byte
		reverse    bool
		want       []string
	}{
		"everything": {
			want: []string{"a=parent", "b=child", "e=child", "g=parent", "z=child"},
		},
		"bounded": {
			start: []byte("b"),
			end:   []byte("g"),
			want:  []string{"b=child", "e=child"},
		},
		"open end": {
			start: []byte("f"),
			want:  []string{"g=parent", "z=child"},
		},
		"reverse": {
			end:     []byte("f"),
			reverse: true,
			want:    []string{"e=child", "b=child", "a=parent"},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var it Iterator
			var err error
			if tc.reverse {
				it, err = cache.ReverseIterator(tc.start, tc.end)
			} else {
				it, err = cache.Iterator(tc.start, tc.end)
			}
			assert.Nil(t, err)
			models, err := ReadAll(it)
			assert.Nil(t, err)
			got := make([]string, len(models))
			for i, m := range models {
				got[i] = string(m.Key) + "=" + string(m.Value)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAtomic(t *testing.T) {
	db := MemStore()

	err := Atomic(db, func(kv KVStore) error {
		if err := kv.Set([]byte("first"), []byte("1")); err != nil {
			return err
		}
		return errors.Wrap(errors.ErrInsufficientAmount, "second step")
	})
	assert.IsErr(t, errors.ErrInsufficientAmount, err)
	has, err := db.Has([]byte("first"))
	assert.Nil(t, err)
	assert.Equal(t, false, has)

	err = Atomic(db, func(kv KVStore) error {
		return kv.Set([]byte("first"), []byte("1"))
	})
	assert.Nil(t, err)
	has, err = db.Has([]byte("first"))
	assert.Nil(t, err)
	assert.Equal(t, true, has)
}
