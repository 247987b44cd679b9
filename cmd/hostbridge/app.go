package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/scrtlabs/hostbridge/internal/config"
	"github.com/scrtlabs/hostbridge/internal/logging"
	"github.com/scrtlabs/hostbridge/internal/runtime/db"
	"github.com/scrtlabs/hostbridge/internal/runtime/metrics"
	"github.com/scrtlabs/hostbridge/internal/runtime/wasm"
	"github.com/scrtlabs/hostbridge/types"
)

// Registry namespaces start with 0xff. Contract namespaces start with
// their 2 byte length and never collide with them.
var (
	codePrefix     = []byte("\xffcode/")
	contractPrefix = []byte("\xffcontract/")
)

// codes maps checksum to bytecode.
func codes(store types.KVStore) *db.PrefixStore {
	return db.NewPrefixStore(store, codePrefix)
}

// contracts maps contract address to checksum.
func contracts(store types.KVStore) *db.PrefixStore {
	return db.NewPrefixStore(store, contractPrefix)
}

// app is one CLI invocation: config, logger, state and a VM loaded with
// every stored code and contract.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	logFile  io.Closer
	store    *db.BadgerStore
	vm       *wasm.WazeroVM
	registry *prometheus.Registry
}

func openApp(ctx context.Context, cfgFile string) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	logger, logFile, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, logFile: logFile, registry: prometheus.NewRegistry()}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	a.store, err = db.OpenBadgerStore(filepath.Join(cfg.DataDir, "state"), logger)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	m := metrics.New()
	if err := m.Register(a.registry); err != nil {
		a.close(ctx)
		return nil, err
	}
	a.vm, err = wasm.NewWazeroVM(ctx, cfg.VM, wasm.WithLogger(logger), wasm.WithMetrics(m))
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	if err := a.load(ctx); err != nil {
		a.close(ctx)
		return nil, err
	}
	return a, nil
}

// load compiles every stored code and registers every known contract.
func (a *app) load(ctx context.Context) error {
	nCodes := 0
	it := codes(a.store).Iterator(nil, nil)
	for ; it.Valid(); it.Next() {
		if _, err := a.vm.StoreCode(ctx, it.Value()); err != nil {
			it.Close()
			return fmt.Errorf("loading stored code %x: %w", it.Key(), err)
		}
		nCodes++
	}
	if err := it.Close(); err != nil {
		return err
	}

	nContracts := 0
	it = contracts(a.store).Iterator(nil, nil)
	defer it.Close()
	for ; it.Valid(); it.Next() {
		var checksum types.Checksum
		copy(checksum[:], it.Value())
		contract := string(it.Key())
		if err := a.vm.Register(contract, checksum); err != nil {
			return fmt.Errorf("registering contract %s: %w", contract, err)
		}
		nContracts++
	}
	a.logger.Debug().Int("codes", nCodes).Int("contracts", nContracts).Msg("state loaded")
	return nil
}

func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.vm != nil {
		errs = append(errs, a.vm.Close(ctx))
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.logFile != nil {
		errs = append(errs, a.logFile.Close())
	}
	return errors.Join(errs...)
}
