// Package querier forwards query_chain requests to other contracts or to the
// chain, keeping track of how deep the query chain has become.
package querier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/scrtlabs/hostbridge/types"
)

// ErrQueryDepthExceeded is returned when a query would nest deeper than the
// configured ceiling.
var ErrQueryDepthExceeded = errors.New("query depth exceeded")

// ContractQuery is a smart query to run in a fresh execution context.
type ContractQuery struct {
	Contract string
	Msg      []byte
	// Depth of the execution context that will run the query
	Depth    uint32
	GasLimit uint64
}

// ContractQuerier executes smart queries against contracts. The execution
// engine implements it.
type ContractQuerier interface {
	QueryContract(ctx context.Context, query ContractQuery) (result []byte, gasUsed uint64, err error)
}

// Forwarder serves query_chain for one execution context running at depth.
type Forwarder struct {
	contracts     ContractQuerier
	chain         types.Querier
	depth         uint32
	maxDepth      uint32
	queryGasLimit uint64
	logger        zerolog.Logger
}

// NewForwarder creates the forwarder of an execution context. chain may be
// nil, chain level queries are then unsupported.
func NewForwarder(contracts ContractQuerier, chain types.Querier, depth uint32, cfg types.VMConfig, logger zerolog.Logger) *Forwarder {
	return &Forwarder{
		contracts:     contracts,
		chain:         chain,
		depth:         depth,
		maxDepth:      cfg.MaxQueryDepth,
		queryGasLimit: cfg.QueryGasLimit,
		logger:        logger,
	}
}

// Depth returns the depth of the execution context this forwarder serves.
// Top level entry points run at depth 0.
func (f *Forwarder) Depth() uint32 {
	return f.depth
}

// Query dispatches request and returns the result for the guest together
// with the gas a nested execution used. A non-nil error aborts the calling
// context, everything that went wrong on the other side is in the result.
func (f *Forwarder) Query(ctx context.Context, request []byte, gasAvailable uint64) (types.QueryResult, uint64, error) {
	var req types.QueryRequest
	if err := json.Unmarshal(request, &req); err != nil {
		return errResult(types.InvalidRequest{Err: err.Error(), Request: request}), 0, nil
	}

	switch {
	case req.Wasm != nil && req.Wasm.Smart != nil:
		return f.querySmart(ctx, req.Wasm.Smart, gasAvailable)
	case req.Chain != nil:
		return f.queryChain(req.Chain), 0, nil
	default:
		return errResult(types.UnsupportedRequest{Kind: "unknown query variant"}), 0, nil
	}
}

func (f *Forwarder) querySmart(ctx context.Context, smart *types.SmartQuery, gasAvailable uint64) (types.QueryResult, uint64, error) {
	next := f.depth + 1
	if next > f.maxDepth {
		f.logger.Warn().Uint32("depth", next).Uint32("max_depth", f.maxDepth).Str("contract", smart.ContractAddr).Msg("refusing nested query")
		return types.QueryResult{}, 0, fmt.Errorf("%w: depth %d, limit %d", ErrQueryDepthExceeded, next, f.maxDepth)
	}
	if f.contracts == nil {
		return errResult(types.UnsupportedRequest{Kind: "wasm"}), 0, nil
	}

	limit := gasAvailable
	if f.queryGasLimit != 0 && f.queryGasLimit < limit {
		limit = f.queryGasLimit
	}

	f.logger.Debug().Uint32("depth", next).Str("contract", smart.ContractAddr).Uint64("gas_limit", limit).Msg("nested query")
	result, gasUsed, err := f.contracts.QueryContract(ctx, ContractQuery{
		Contract: smart.ContractAddr,
		Msg:      smart.Msg,
		Depth:    next,
		GasLimit: limit,
	})
	if err != nil {
		var noSuch types.NoSuchContract
		if errors.As(err, &noSuch) {
			return errResult(noSuch), gasUsed, nil
		}
		return errResult(types.ContractErr{Addr: smart.ContractAddr, Msg: err.Error()}), gasUsed, nil
	}
	return types.QueryResult{Ok: result}, gasUsed, nil
}

func (f *Forwarder) queryChain(request json.RawMessage) types.QueryResult {
	if f.chain == nil {
		return errResult(types.UnsupportedRequest{Kind: "chain"})
	}
	result, err := f.chain.Query(request)
	if err != nil {
		return types.QueryResult{Err: types.ToSystemError(err)}
	}
	return types.QueryResult{Ok: result}
}

func errResult(err error) types.QueryResult {
	return types.QueryResult{Err: types.ToSystemError(err)}
}
