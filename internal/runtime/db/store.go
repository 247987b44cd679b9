// Package db holds the storage views the bridge hands to a contract: a per
// contract prefix, a staged write cache and a read-only marker for queries.
package db

import (
	"bytes"
	"encoding/binary"
	"errors"

	"github.com/scrtlabs/hostbridge/types"
)

// ErrReadOnlyStorage is returned when a contract tries to mutate storage
// from a query.
var ErrReadOnlyStorage = errors.New("contract tried to write to storage during a query")

// ContractPrefix is the namespace of a contract inside the shared store: the
// canonical address, prefixed with its length as a 2 byte big-endian integer.
func ContractPrefix(canonical []byte) []byte {
	prefix := make([]byte, 2, 2+len(canonical))
	binary.BigEndian.PutUint16(prefix, uint16(len(canonical)))
	return append(prefix, canonical...)
}

// PrefixStore confines every key to a namespace of the parent store.
type PrefixStore struct {
	parent types.KVStore
	prefix []byte
}

var _ types.KVStore = (*PrefixStore)(nil)

// NewPrefixStore wraps parent so that all keys live under prefix.
func NewPrefixStore(parent types.KVStore, prefix []byte) *PrefixStore {
	return &PrefixStore{parent: parent, prefix: bytes.Clone(prefix)}
}

func (s *PrefixStore) key(key []byte) []byte {
	k := make([]byte, 0, len(s.prefix)+len(key))
	k = append(k, s.prefix...)
	return append(k, key...)
}

// Get retrieves a value by key
func (s *PrefixStore) Get(key []byte) []byte {
	return s.parent.Get(s.key(key))
}

// Set stores a key-value pair
func (s *PrefixStore) Set(key, value []byte) {
	s.parent.Set(s.key(key), value)
}

// Delete removes a key-value pair
func (s *PrefixStore) Delete(key []byte) {
	s.parent.Delete(s.key(key))
}

// Iterator creates an iterator over a domain of keys
func (s *PrefixStore) Iterator(start, end []byte) types.Iterator {
	pstart, pend := s.domain(start, end)
	return newPrefixIterator(s.parent.Iterator(pstart, pend), s.prefix, start, end)
}

// ReverseIterator creates a reverse iterator over a domain of keys
func (s *PrefixStore) ReverseIterator(start, end []byte) types.Iterator {
	pstart, pend := s.domain(start, end)
	return newPrefixIterator(s.parent.ReverseIterator(pstart, pend), s.prefix, start, end)
}

func (s *PrefixStore) domain(start, end []byte) ([]byte, []byte) {
	pstart := s.prefix
	if start != nil {
		pstart = s.key(start)
	}
	var pend []byte
	if end != nil {
		pend = s.key(end)
	} else {
		pend = prefixEnd(s.prefix)
	}
	return pstart, pend
}

// prefixEnd returns the end key for prefix iteration, nil if the prefix has
// no upper bound.
func prefixEnd(prefix []byte) []byte {
	if len(prefix) == 0 {
		return nil
	}

	end := bytes.Clone(prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	// all 0xff, iterate to the end of the store
	return nil
}

// prefixIterator strips the namespace from the keys of the parent iterator.
type prefixIterator struct {
	types.Iterator
	prefix     []byte
	start, end []byte
}

func newPrefixIterator(parent types.Iterator, prefix, start, end []byte) *prefixIterator {
	return &prefixIterator{Iterator: parent, prefix: prefix, start: start, end: end}
}

func (it *prefixIterator) Domain() ([]byte, []byte) {
	return it.start, it.end
}

func (it *prefixIterator) Key() []byte {
	return bytes.TrimPrefix(it.Iterator.Key(), it.prefix)
}

// ReadOnlyStore refuses writes. Queries run against it.
type ReadOnlyStore struct {
	types.KVStore
}

// NewReadOnlyStore wraps parent.
func NewReadOnlyStore(parent types.KVStore) *ReadOnlyStore {
	return &ReadOnlyStore{KVStore: parent}
}

func (s *ReadOnlyStore) Set(_, _ []byte) {
	panic(ErrReadOnlyStorage)
}

func (s *ReadOnlyStore) Delete(_ []byte) {
	panic(ErrReadOnlyStorage)
}

// ReadOnly marks the store as read only.
func (s *ReadOnlyStore) ReadOnly() bool {
	return true
}

// IsReadOnly reports whether writes to store are refused.
func IsReadOnly(store types.KVStore) bool {
	ro, ok := store.(interface{ ReadOnly() bool })
	return ok && ro.ReadOnly()
}
