package testdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrtlabs/hostbridge/types"
)

func collect(t *testing.T, it types.Iterator) []string {
	t.Helper()
	defer it.Close()
	var keys []string
	for ; it.Valid(); it.Next() {
		keys = append(keys, string(it.Key()))
	}
	require.NoError(t, it.Error())
	return keys
}

func TestMemDBGetSetDelete(t *testing.T) {
	db := NewMemDB()
	assert.Nil(t, db.Get([]byte("missing")))

	value := []byte("v1")
	db.Set([]byte("k"), value)
	value[0] = 'x'
	assert.Equal(t, []byte("v1"), db.Get([]byte("k")))

	db.Set([]byte("k"), []byte("v2"))
	assert.Equal(t, []byte("v2"), db.Get([]byte("k")))
	assert.Equal(t, 1, db.Len())

	db.Delete([]byte("k"))
	db.Delete([]byte("never there"))
	assert.False(t, db.Has([]byte("k")))
	assert.Equal(t, 0, db.Len())

	assert.PanicsWithValue(t, ErrKeyEmpty, func() { db.Set(nil, []byte("x")) })
	assert.PanicsWithValue(t, ErrValueNil, func() { db.Set([]byte("k"), nil) })
}

func TestMemDBIterators(t *testing.T) {
	db := NewMemDB()
	for _, k := range []string{"a", "b", "c", "d"} {
		db.Set([]byte(k), []byte("value-"+k))
	}

	cases := map[string]struct {
		start, end []byte
		asc, desc  []string
	}{
		"full range": {nil, nil, []string{"a", "b", "c", "d"}, []string{"d", "c", "b", "a"}},
		"from b":     {[]byte("b"), nil, []string{"b", "c", "d"}, []string{"d", "c", "b"}},
		"until c":    {nil, []byte("c"), []string{"a", "b"}, []string{"b", "a"}},
		"b to d":     {[]byte("b"), []byte("d"), []string{"b", "c"}, []string{"c", "b"}},
		"empty":      {[]byte("x"), []byte("z"), nil, nil},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.asc, collect(t, db.Iterator(tc.start, tc.end)))
			assert.Equal(t, tc.desc, collect(t, db.ReverseIterator(tc.start, tc.end)))
		})
	}

	it := db.Iterator(nil, nil)
	assert.Equal(t, []byte("value-a"), it.Value())
	require.NoError(t, it.Close())
	assert.Panics(t, func() { it.Key() })
}
