package host

import (
	"context"

	"github.com/rs/zerolog"

	rterrors "github.com/scrtlabs/hostbridge/internal/runtime/error"

	"github.com/scrtlabs/hostbridge/internal/runtime/address"
	"github.com/scrtlabs/hostbridge/internal/runtime/cryptoapi"
	"github.com/scrtlabs/hostbridge/internal/runtime/gas"
	"github.com/scrtlabs/hostbridge/internal/runtime/memory"
	"github.com/scrtlabs/hostbridge/internal/runtime/querier"
	"github.com/scrtlabs/hostbridge/types"
)

// Observer is told about every completed import call.
type Observer func(imp Import, outcome rterrors.Outcome)

// Environment is everything one execution context exposes to its guest.
type Environment struct {
	Memory  *memory.Manager
	Store   types.KVStore
	Gas     *gas.Charger
	Codec   *address.Codec
	Crypto  cryptoapi.CryptoVerifier
	Querier *querier.Forwarder

	// Contract is the human address of the running contract
	Contract   string
	PrintDebug bool
	Logger     zerolog.Logger
	Observer   Observer
}

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const bridgeKey contextKey = "bridge"

// WithBridge attaches the bridge of an execution context to ctx.
func WithBridge(ctx context.Context, b *Bridge) context.Context {
	return context.WithValue(ctx, bridgeKey, b)
}

// FromContext returns the bridge attached by WithBridge.
func FromContext(ctx context.Context) (*Bridge, bool) {
	b, ok := ctx.Value(bridgeKey).(*Bridge)
	return b, ok && b != nil
}
