package types

//---------- Env ---------

// Env represents the execution environment for a contract call.
//
// Env are json encoded to a byte slice before passing to the wasm contract.
type Env struct {
	Block    BlockInfo    `json:"block"`
	Message  MessageInfo  `json:"message"`
	Contract ContractInfo `json:"contract"`
}

// BlockInfo represents information about the current block being processed.
type BlockInfo struct {
	// block height this transaction is executed
	Height uint64 `json:"height"`
	// time in nanoseconds since unix epoch. Uses Uint64 to ensure JavaScript compatibility.
	Time    Uint64 `json:"time"`
	ChainID string `json:"chain_id"`
}

// ContractInfo identifies the contract being executed.
type ContractInfo struct {
	// Bech32 encoded address of the contract
	Address HumanAddress `json:"address"`
	// Checksum of the code the contract runs. Not sent to the guest.
	CodeHash Checksum `json:"-"`
}

// MessageInfo represents information about the message being executed.
type MessageInfo struct {
	// Bech32 encoded address executing the contract
	Sender HumanAddress `json:"sender"`
	// Amount of funds send to the contract along with this message
	Funds []Coin `json:"sent_funds"`
}
