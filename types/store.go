package types

// KVStore is the key-value interface the bridge reads and writes contract
// state through. Get returns nil for an absent key.
type KVStore interface {
	Get(key []byte) []byte
	Set(key, value []byte)
	Delete(key []byte)

	// Iterator over a domain of keys in ascending order. End is exclusive.
	// Start must be less than end, or the Iterator is invalid.
	// Iterator must be closed by caller.
	// CONTRACT: No writes may happen within a domain while an iterator exists over it.
	Iterator(start, end []byte) Iterator
	ReverseIterator(start, end []byte) Iterator
}

// Iterator represents an iterator over a domain of keys.
type Iterator interface {
	// Domain returns the start (inclusive) and end (exclusive) limits of the iterator.
	Domain() (start []byte, end []byte)
	// Valid returns whether the current iterator is valid. Once invalid, the Iterator remains
	// invalid forever.
	Valid() bool
	// Next moves the iterator to the next key in the database, as defined by order of iteration.
	// If Valid returns false, this method will panic.
	Next()
	// Key returns the key at the current position. Panics if the iterator is invalid.
	Key() (key []byte)
	// Value returns the value at the current position. Panics if the iterator is invalid.
	Value() (value []byte)
	// Error returns the last error encountered by the iterator, if any.
	Error() error
	// Close closes the iterator, releasing any allocated resources.
	Close() error
}
