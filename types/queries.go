package types

import (
	"encoding/json"
)

//-------- Queries --------

// QueryRequest is what a contract sends through query_chain. Exactly one of
// the fields should be set.
type QueryRequest struct {
	Wasm  *WasmQuery      `json:"wasm,omitempty"`
	Chain json.RawMessage `json:"chain,omitempty"`
}

// WasmQuery addresses another contract.
type WasmQuery struct {
	Smart *SmartQuery `json:"smart,omitempty"`
}

// SmartQuery asks a contract to run its query entry point with Msg.
type SmartQuery struct {
	ContractAddr string `json:"contract_addr"`
	// Msg is the raw query message, base64 encoded in JSON
	Msg []byte `json:"msg"`
}

// QueryResult is written back to the guest. Exactly one of the fields is set.
type QueryResult struct {
	Ok  []byte       `json:"Ok,omitempty"`
	Err *SystemError `json:"Err,omitempty"`
}

// Querier answers chain-level queries on behalf of contracts.
type Querier interface {
	Query(request []byte) ([]byte, error)
}

// QuerierFunc adapts a function to the Querier interface.
type QuerierFunc func(request []byte) ([]byte, error)

func (f QuerierFunc) Query(request []byte) ([]byte, error) {
	return f(request)
}
