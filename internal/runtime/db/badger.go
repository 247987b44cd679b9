package db

import (
	"bytes"
	"errors"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/rs/zerolog"

	rterrors "github.com/scrtlabs/hostbridge/internal/runtime/error"
	"github.com/scrtlabs/hostbridge/types"
)

// BadgerStore is a persistent types.KVStore. The KVStore interface has no
// error returns, so storage failures panic with an internal trap that aborts
// the running contract.
type BadgerStore struct {
	db *badgerdb.DB
}

var _ types.KVStore = (*BadgerStore)(nil)

// OpenBadgerStore opens (or creates) a store in dir. An empty dir opens an
// in-memory store.
func OpenBadgerStore(dir string, logger zerolog.Logger) (*BadgerStore, error) {
	opts := badgerdb.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = badgerLogger{logger: logger.With().Str("module", "badger").Logger()}
	opts.NumCompactors = 2
	opts.BlockCacheSize = 64 << 20
	opts.IndexCacheSize = 32 << 20

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store at %q: %w", dir, err)
	}
	return &BadgerStore{db: db}, nil
}

// Close flushes and closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) Get(key []byte) []byte {
	var value []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		panic(storageFault("get", err))
	}
	if value == nil {
		// present but empty
		value = []byte{}
	}
	return value
}

func (s *BadgerStore) Set(key, value []byte) {
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(bytes.Clone(key), bytes.Clone(value))
	})
	if err != nil {
		panic(storageFault("set", err))
	}
}

func (s *BadgerStore) Delete(key []byte) {
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(key)
	})
	if err != nil {
		panic(storageFault("delete", err))
	}
}

func (s *BadgerStore) Iterator(start, end []byte) types.Iterator {
	return newSliceIterator(start, end, s.scan(start, end))
}

func (s *BadgerStore) ReverseIterator(start, end []byte) types.Iterator {
	pairs := s.scan(start, end)
	for i, j := 0, len(pairs)-1; i < j; i, j = i+1, j-1 {
		pairs[i], pairs[j] = pairs[j], pairs[i]
	}
	return newSliceIterator(start, end, pairs)
}

// scan snapshots [start, end) in ascending order.
func (s *BadgerStore) scan(start, end []byte) []kvPair {
	var pairs []kvPair
	err := s.db.View(func(txn *badgerdb.Txn) error {
		it := txn.NewIterator(badgerdb.DefaultIteratorOptions)
		defer it.Close()
		if start != nil {
			it.Seek(start)
		} else {
			it.Rewind()
		}
		for ; it.Valid(); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)
			if end != nil && bytes.Compare(key, end) >= 0 {
				break
			}
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			pairs = append(pairs, kvPair{key: key, value: value})
		}
		return nil
	})
	if err != nil {
		panic(storageFault("scan", err))
	}
	return pairs
}

// badgerLogger routes badger's logging into zerolog.
type badgerLogger struct {
	logger zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Trace().Msgf(format, args...)
}

func storageFault(op string, err error) *rterrors.Trap {
	return rterrors.NewTrap(rterrors.TrapInternal, fmt.Errorf("badger %s: %w", op, err))
}
