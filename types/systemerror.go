package types

import (
	"errors"
	"fmt"
)

// SystemError is the error half of a QueryResult.
// Exactly one of the fields should be set.
type SystemError struct {
	InvalidRequest     *InvalidRequest     `json:"invalid_request,omitempty"`
	InvalidResponse    *InvalidResponse    `json:"invalid_response,omitempty"`
	NoSuchContract     *NoSuchContract     `json:"no_such_contract,omitempty"`
	ContractErr        *ContractErr        `json:"contract_err,omitempty"`
	Unknown            *Unknown            `json:"unknown,omitempty"`
	UnsupportedRequest *UnsupportedRequest `json:"unsupported_request,omitempty"`
}

var (
	_ error = SystemError{}
	_ error = InvalidRequest{}
	_ error = InvalidResponse{}
	_ error = NoSuchContract{}
	_ error = ContractErr{}
	_ error = Unknown{}
	_ error = UnsupportedRequest{}
)

func (a SystemError) Error() string {
	switch {
	case a.InvalidRequest != nil:
		return a.InvalidRequest.Error()
	case a.InvalidResponse != nil:
		return a.InvalidResponse.Error()
	case a.NoSuchContract != nil:
		return a.NoSuchContract.Error()
	case a.ContractErr != nil:
		return a.ContractErr.Error()
	case a.Unknown != nil:
		return a.Unknown.Error()
	case a.UnsupportedRequest != nil:
		return a.UnsupportedRequest.Error()
	default:
		return "unknown error variant"
	}
}

// InvalidRequest represents an invalid request error
type InvalidRequest struct {
	Err     string `json:"error"`
	Request []byte `json:"request"`
}

func (e InvalidRequest) Error() string {
	return fmt.Sprintf("invalid request: %s - original request: %s", e.Err, string(e.Request))
}

// InvalidResponse represents an invalid response error
type InvalidResponse struct {
	Err      string `json:"error"`
	Response []byte `json:"response"`
}

func (e InvalidResponse) Error() string {
	return fmt.Sprintf("invalid response: %s - original response: %s", e.Err, string(e.Response))
}

// NoSuchContract represents a missing contract error
type NoSuchContract struct {
	Addr string `json:"addr,omitempty"`
}

func (e NoSuchContract) Error() string {
	return fmt.Sprintf("no such contract: %s", e.Addr)
}

// ContractErr wraps a failure inside the queried contract: a trap, a guest
// panic or an error result.
type ContractErr struct {
	Addr string `json:"addr,omitempty"`
	Msg  string `json:"msg"`
}

func (e ContractErr) Error() string {
	return fmt.Sprintf("query to contract %s failed: %s", e.Addr, e.Msg)
}

// Unknown represents an unknown error
type Unknown struct {
	Msg string `json:"msg,omitempty"`
}

func (e Unknown) Error() string {
	if e.Msg == "" {
		return "unknown system error"
	}
	return "unknown system error: " + e.Msg
}

// UnsupportedRequest represents an unsupported request error
type UnsupportedRequest struct {
	Kind string `json:"kind,omitempty"`
}

func (e UnsupportedRequest) Error() string {
	return fmt.Sprintf("unsupported request: %s", e.Kind)
}

// ToSystemError converts err into a SystemError. Known variants are embedded
// as-is, anything else becomes Unknown carrying the message.
func ToSystemError(err error) *SystemError {
	if err == nil {
		return nil
	}

	var sysErr SystemError
	if errors.As(err, &sysErr) {
		return &sysErr
	}
	var sysErrPtr *SystemError
	if errors.As(err, &sysErrPtr) && sysErrPtr != nil {
		return sysErrPtr
	}

	var (
		invalidRequest  InvalidRequest
		invalidResponse InvalidResponse
		noSuchContract  NoSuchContract
		contractErr     ContractErr
		unsupported     UnsupportedRequest
	)
	switch {
	case errors.As(err, &invalidRequest):
		return &SystemError{InvalidRequest: &invalidRequest}
	case errors.As(err, &invalidResponse):
		return &SystemError{InvalidResponse: &invalidResponse}
	case errors.As(err, &noSuchContract):
		return &SystemError{NoSuchContract: &noSuchContract}
	case errors.As(err, &contractErr):
		return &SystemError{ContractErr: &contractErr}
	case errors.As(err, &unsupported):
		return &SystemError{UnsupportedRequest: &unsupported}
	default:
		return &SystemError{Unknown: &Unknown{Msg: err.Error()}}
	}
}
