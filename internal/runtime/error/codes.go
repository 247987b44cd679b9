package error

// ErrorCode is the closed set of recoverable error values an import can hand
// back to the guest. Address imports use the negative range, crypto imports
// the positive one.
type ErrorCode int32

const (
	CodeOK ErrorCode = 0

	CodeUnknown          ErrorCode = -1
	CodeEmptyAddress     ErrorCode = -2
	CodeMalformedAddress ErrorCode = -3
	CodeWrongPrefix      ErrorCode = -4
	CodeInvalidCanonical ErrorCode = -5
	CodeNotNormalized    ErrorCode = -6
	CodeRegionTooSmall   ErrorCode = -7

	CodeInvalidHashFormat      ErrorCode = 3
	CodeInvalidSignatureFormat ErrorCode = 4
	CodeInvalidPubkeyFormat    ErrorCode = 5
	CodeInvalidRecoveryParam   ErrorCode = 6
	CodeBatchErr               ErrorCode = 7
	CodeCryptoGeneric          ErrorCode = 10
)

var codeNames = map[ErrorCode]string{
	CodeOK:                     "ok",
	CodeUnknown:                "unknown",
	CodeEmptyAddress:           "empty address",
	CodeMalformedAddress:       "malformed address",
	CodeWrongPrefix:            "wrong address prefix",
	CodeInvalidCanonical:       "invalid canonical address",
	CodeNotNormalized:          "address not normalized",
	CodeRegionTooSmall:         "region too small",
	CodeInvalidHashFormat:      "invalid hash format",
	CodeInvalidSignatureFormat: "invalid signature format",
	CodeInvalidPubkeyFormat:    "invalid public key format",
	CodeInvalidRecoveryParam:   "invalid recovery parameter",
	CodeBatchErr:               "batch error",
	CodeCryptoGeneric:          "crypto error",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "unknown"
}

// Verification results of the signature imports.
const (
	verified    uint64 = 0
	notVerified uint64 = 1
)
