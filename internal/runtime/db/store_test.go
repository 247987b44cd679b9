package db

import (
	"testing"

	badgerdb "github.com/dgraph-io/badger/v3"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrtlabs/hostbridge/internal/api/testdb"
	rterrors "github.com/scrtlabs/hostbridge/internal/runtime/error"
	"github.com/scrtlabs/hostbridge/types"
)

func keys(t *testing.T, it types.Iterator) []string {
	t.Helper()
	defer it.Close()
	var out []string
	for ; it.Valid(); it.Next() {
		out = append(out, string(it.Key()))
	}
	return out
}

func TestContractPrefix(t *testing.T) {
	assert.Equal(t, []byte{0, 3, 'a', 'b', 'c'}, ContractPrefix([]byte("abc")))
}

func TestPrefixStoreIsolation(t *testing.T) {
	root := testdb.NewMemDB()
	alice := NewPrefixStore(root, ContractPrefix([]byte("alice")))
	bob := NewPrefixStore(root, ContractPrefix([]byte("bob")))

	alice.Set([]byte("balance"), []byte("10"))
	bob.Set([]byte("balance"), []byte("20"))

	assert.Equal(t, []byte("10"), alice.Get([]byte("balance")))
	assert.Equal(t, []byte("20"), bob.Get([]byte("balance")))
	assert.Nil(t, root.Get([]byte("balance")))

	bob.Delete([]byte("balance"))
	assert.Nil(t, bob.Get([]byte("balance")))
	assert.Equal(t, []byte("10"), alice.Get([]byte("balance")))
}

func TestPrefixStoreIterator(t *testing.T) {
	root := testdb.NewMemDB()
	root.Set([]byte("other"), []byte("x"))
	store := NewPrefixStore(root, []byte("p/"))
	for _, k := range []string{"a", "b", "c"} {
		store.Set([]byte(k), []byte(k))
	}

	assert.Equal(t, []string{"a", "b", "c"}, keys(t, store.Iterator(nil, nil)))
	assert.Equal(t, []string{"c", "b", "a"}, keys(t, store.ReverseIterator(nil, nil)))
	assert.Equal(t, []string{"b"}, keys(t, store.Iterator([]byte("b"), []byte("c"))))
}

func TestPrefixEnd(t *testing.T) {
	assert.Equal(t, []byte{0x01, 0x03}, prefixEnd([]byte{0x01, 0x02}))
	assert.Equal(t, []byte{0x02}, prefixEnd([]byte{0x01, 0xff}))
	assert.Nil(t, prefixEnd([]byte{0xff, 0xff}))
	assert.Nil(t, prefixEnd(nil))
}

func TestReadOnlyStore(t *testing.T) {
	root := testdb.NewMemDB()
	root.Set([]byte("k"), []byte("v"))
	ro := NewReadOnlyStore(root)

	assert.True(t, IsReadOnly(ro))
	assert.False(t, IsReadOnly(root))
	assert.Equal(t, []byte("v"), ro.Get([]byte("k")))
	assert.PanicsWithValue(t, ErrReadOnlyStorage, func() { ro.Set([]byte("k"), []byte("w")) })
	assert.PanicsWithValue(t, ErrReadOnlyStorage, func() { ro.Delete([]byte("k")) })
}

func TestCacheStoreCommitAndDiscard(t *testing.T) {
	root := testdb.NewMemDB()
	root.Set([]byte("a"), []byte("1"))
	root.Set([]byte("b"), []byte("2"))

	cache := NewCacheStore(root)
	cache.Set([]byte("c"), []byte("3"))
	cache.Delete([]byte("a"))

	// staged changes are visible through the cache only
	assert.Nil(t, cache.Get([]byte("a")))
	assert.Equal(t, []byte("3"), cache.Get([]byte("c")))
	assert.Equal(t, []byte("1"), root.Get([]byte("a")))
	assert.Equal(t, []string{"b", "c"}, keys(t, cache.Iterator(nil, nil)))
	assert.Equal(t, []string{"c", "b"}, keys(t, cache.ReverseIterator(nil, nil)))

	cache.Discard()
	assert.Equal(t, 0, cache.Dirty())
	assert.Equal(t, []byte("1"), cache.Get([]byte("a")))

	cache.Set([]byte("d"), []byte("4"))
	cache.Delete([]byte("b"))
	cache.Commit()
	assert.Equal(t, []byte("4"), root.Get([]byte("d")))
	assert.Nil(t, root.Get([]byte("b")))
	assert.Equal(t, 0, cache.Dirty())
}

func TestBadgerStore(t *testing.T) {
	store, err := OpenBadgerStore("", zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	assert.Nil(t, store.Get([]byte("missing")))
	store.Set([]byte("b"), []byte("2"))
	store.Set([]byte("a"), []byte("1"))
	store.Set([]byte("c"), []byte{})
	assert.Equal(t, []byte("1"), store.Get([]byte("a")))
	assert.Equal(t, []byte{}, store.Get([]byte("c")))

	assert.Equal(t, []string{"a", "b", "c"}, keys(t, store.Iterator(nil, nil)))
	assert.Equal(t, []string{"b"}, keys(t, store.Iterator([]byte("b"), []byte("c"))))
	assert.Equal(t, []string{"c", "b", "a"}, keys(t, store.ReverseIterator(nil, nil)))

	store.Delete([]byte("a"))
	store.Delete([]byte("never"))
	assert.Nil(t, store.Get([]byte("a")))

	// the contract view works on top of badger the same way
	contract := NewPrefixStore(store, ContractPrefix([]byte("contract")))
	contract.Set([]byte("k"), []byte("v"))
	assert.Equal(t, []string{"k"}, keys(t, contract.Iterator(nil, nil)))
}

func TestBadgerStoreFailureIsInternalTrap(t *testing.T) {
	store, err := OpenBadgerStore("", zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	for name, op := range map[string]func(){
		"get": func() { store.Get([]byte("a")) },
		"set": func() { store.Set([]byte("a"), []byte("1")) },
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				trap, ok := recover().(*rterrors.Trap)
				require.True(t, ok, "storage failure must panic with a trap")
				assert.Equal(t, rterrors.TrapInternal, trap.Kind)
				assert.ErrorIs(t, trap, badgerdb.ErrDBClosed)
			}()
			op()
		})
	}
}
