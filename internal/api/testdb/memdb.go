// Package testdb is an in-memory types.KVStore backed by a B-tree.
package testdb

import (
	"bytes"
	"sync"

	"github.com/google/btree"

	"github.com/scrtlabs/hostbridge/types"
)

const bTreeDegree = 32

// item is a btree.Item with byte slices as keys and values
type item struct {
	key   []byte
	value []byte
}

// Less implements btree.Item.
func (i *item) Less(other btree.Item) bool {
	return bytes.Compare(i.key, other.(*item).key) == -1
}

func newKey(key []byte) *item {
	return &item{key: key}
}

// MemDB is an in-memory key-value store. Keys and values are copied on the
// way in and out.
type MemDB struct {
	mtx   sync.RWMutex
	btree *btree.BTree
}

var _ types.KVStore = (*MemDB)(nil)

// NewMemDB creates a new in-memory database.
func NewMemDB() *MemDB {
	return &MemDB{btree: btree.New(bTreeDegree)}
}

// Get implements types.KVStore. It returns nil for absent keys.
func (db *MemDB) Get(key []byte) []byte {
	if len(key) == 0 {
		panic(ErrKeyEmpty)
	}
	db.mtx.RLock()
	defer db.mtx.RUnlock()

	found := db.btree.Get(newKey(key))
	if found == nil {
		return nil
	}
	return bytes.Clone(found.(*item).value)
}

// Has reports whether key is present.
func (db *MemDB) Has(key []byte) bool {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	return db.btree.Has(newKey(key))
}

// Set implements types.KVStore.
func (db *MemDB) Set(key []byte, value []byte) {
	if len(key) == 0 {
		panic(ErrKeyEmpty)
	}
	if value == nil {
		panic(ErrValueNil)
	}
	db.mtx.Lock()
	defer db.mtx.Unlock()
	db.btree.ReplaceOrInsert(&item{key: bytes.Clone(key), value: bytes.Clone(value)})
}

// Delete implements types.KVStore.
func (db *MemDB) Delete(key []byte) {
	if len(key) == 0 {
		panic(ErrKeyEmpty)
	}
	db.mtx.Lock()
	defer db.mtx.Unlock()
	db.btree.Delete(newKey(key))
}

// Len returns the number of stored keys.
func (db *MemDB) Len() int {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	return db.btree.Len()
}

// Iterator implements types.KVStore.
func (db *MemDB) Iterator(start, end []byte) types.Iterator {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	return newIterator(start, end, db.collectAscending(start, end))
}

// ReverseIterator implements types.KVStore.
func (db *MemDB) ReverseIterator(start, end []byte) types.Iterator {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	return newIterator(start, end, db.collectDescending(start, end))
}

func (db *MemDB) collectAscending(start, end []byte) []*item {
	var items []*item
	visit := func(i btree.Item) bool {
		items = append(items, i.(*item))
		return true
	}
	switch {
	case start == nil && end == nil:
		db.btree.Ascend(visit)
	case end == nil:
		db.btree.AscendGreaterOrEqual(newKey(start), visit)
	case start == nil:
		db.btree.AscendLessThan(newKey(end), visit)
	default:
		db.btree.AscendRange(newKey(start), newKey(end), visit)
	}
	return items
}

func (db *MemDB) collectDescending(start, end []byte) []*item {
	var items []*item
	// btree descends over (start, end], we want [start, end)
	visit := func(i btree.Item) bool {
		it := i.(*item)
		if end != nil && bytes.Equal(it.key, end) {
			return true
		}
		if start != nil && bytes.Compare(it.key, start) < 0 {
			return false
		}
		items = append(items, it)
		return true
	}
	if end == nil {
		db.btree.Descend(visit)
	} else {
		db.btree.DescendLessOrEqual(newKey(end), visit)
	}
	return items
}
