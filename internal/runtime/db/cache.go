package db

import (
	"bytes"
	"sort"

	"github.com/scrtlabs/hostbridge/types"
)

type cValue struct {
	value   []byte
	deleted bool
}

// CacheStore stages writes on top of a parent store. Reads see staged
// changes. Nothing reaches the parent until Commit.
type CacheStore struct {
	parent types.KVStore
	staged map[string]*cValue
}

var _ types.KVStore = (*CacheStore)(nil)

// NewCacheStore creates an empty staging layer over parent.
func NewCacheStore(parent types.KVStore) *CacheStore {
	return &CacheStore{parent: parent, staged: make(map[string]*cValue)}
}

func (c *CacheStore) Get(key []byte) []byte {
	if v, ok := c.staged[string(key)]; ok {
		if v.deleted {
			return nil
		}
		return bytes.Clone(v.value)
	}
	return c.parent.Get(key)
}

func (c *CacheStore) Set(key, value []byte) {
	c.staged[string(key)] = &cValue{value: bytes.Clone(value)}
}

func (c *CacheStore) Delete(key []byte) {
	c.staged[string(key)] = &cValue{deleted: true}
}

// Dirty returns the number of staged changes.
func (c *CacheStore) Dirty() int {
	return len(c.staged)
}

// Commit writes the staged changes to the parent in key order and clears
// the stage.
func (c *CacheStore) Commit() {
	for _, k := range c.sortedKeys() {
		v := c.staged[k]
		if v.deleted {
			c.parent.Delete([]byte(k))
		} else {
			c.parent.Set([]byte(k), v.value)
		}
	}
	c.Discard()
}

// Discard drops all staged changes.
func (c *CacheStore) Discard() {
	c.staged = make(map[string]*cValue)
}

func (c *CacheStore) sortedKeys() []string {
	keys := make([]string, 0, len(c.staged))
	for k := range c.staged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *CacheStore) Iterator(start, end []byte) types.Iterator {
	return newSliceIterator(start, end, c.merged(start, end))
}

func (c *CacheStore) ReverseIterator(start, end []byte) types.Iterator {
	pairs := c.merged(start, end)
	for i, j := 0, len(pairs)-1; i < j; i, j = i+1, j-1 {
		pairs[i], pairs[j] = pairs[j], pairs[i]
	}
	return newSliceIterator(start, end, pairs)
}

// merged snapshots the parent domain with the stage applied on top.
func (c *CacheStore) merged(start, end []byte) []kvPair {
	view := make(map[string][]byte)
	it := c.parent.Iterator(start, end)
	for ; it.Valid(); it.Next() {
		view[string(it.Key())] = bytes.Clone(it.Value())
	}
	it.Close()

	for k, v := range c.staged {
		if !inDomain([]byte(k), start, end) {
			continue
		}
		if v.deleted {
			delete(view, k)
		} else {
			view[k] = v.value
		}
	}

	pairs := make([]kvPair, 0, len(view))
	for k, v := range view {
		pairs = append(pairs, kvPair{key: []byte(k), value: v})
	}
	sort.Slice(pairs, func(i, j int) bool { return bytes.Compare(pairs[i].key, pairs[j].key) < 0 })
	return pairs
}

func inDomain(key, start, end []byte) bool {
	if start != nil && bytes.Compare(key, start) < 0 {
		return false
	}
	if end != nil && bytes.Compare(key, end) >= 0 {
		return false
	}
	return true
}

type kvPair struct {
	key   []byte
	value []byte
}

// sliceIterator iterates a materialised list of pairs.
type sliceIterator struct {
	pairs      []kvPair
	pos        int
	start, end []byte
}

func newSliceIterator(start, end []byte, pairs []kvPair) *sliceIterator {
	return &sliceIterator{pairs: pairs, start: start, end: end}
}

func (it *sliceIterator) Domain() ([]byte, []byte) { return it.start, it.end }
func (it *sliceIterator) Valid() bool              { return it.pos < len(it.pairs) }
func (it *sliceIterator) Error() error             { return nil }

func (it *sliceIterator) Next() {
	it.assertIsValid()
	it.pos++
}

func (it *sliceIterator) Key() []byte {
	it.assertIsValid()
	return it.pairs[it.pos].key
}

func (it *sliceIterator) Value() []byte {
	it.assertIsValid()
	return it.pairs[it.pos].value
}

func (it *sliceIterator) Close() error {
	it.pairs = nil
	return nil
}

func (it *sliceIterator) assertIsValid() {
	if !it.Valid() {
		panic("iterator is invalid")
	}
}
