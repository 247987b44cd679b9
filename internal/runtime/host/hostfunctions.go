// Package host implements the functions a contract imports from the "env"
// module. Each import is a method on Bridge returning an rterrors.Outcome,
// the wazero layer in registerhostfunctions.go turns those into integers.
package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	rterrors "github.com/scrtlabs/hostbridge/internal/runtime/error"

	"github.com/scrtlabs/hostbridge/internal/runtime/address"
	"github.com/scrtlabs/hostbridge/internal/runtime/constants"
	"github.com/scrtlabs/hostbridge/internal/runtime/crypto"
	"github.com/scrtlabs/hostbridge/internal/runtime/db"
	"github.com/scrtlabs/hostbridge/internal/runtime/memory"
	"github.com/scrtlabs/hostbridge/internal/runtime/querier"
)

// Bridge serves the imports of one execution context. It is not safe for
// concurrent use, a context runs on a single goroutine.
type Bridge struct {
	env    Environment
	logger zerolog.Logger
}

// NewBridge creates the bridge for an execution context.
func NewBridge(env Environment) *Bridge {
	if env.Crypto == nil {
		env.Crypto = crypto.Verifier{}
	}
	logger := env.Logger.With().Str("contract", env.Contract).Logger()
	return &Bridge{env: env, logger: logger}
}

// Environment returns the resources the bridge operates on.
func (b *Bridge) Environment() Environment {
	return b.env
}

// Call dispatches a raw wasm call to the typed method of imp.
func (b *Bridge) Call(ctx context.Context, imp Import, args []uint64) rterrors.Outcome {
	if len(args) < len(imp.Params()) {
		return rterrors.Fatal(rterrors.NewTrap(rterrors.TrapInternal,
			fmt.Errorf("%s: expected %d arguments, got %d", imp, len(imp.Params()), len(args))))
	}
	arg := func(i int) uint32 { return uint32(args[i]) }

	var out rterrors.Outcome
	switch imp {
	case ImportDbRead:
		out = b.DbRead(ctx, arg(0))
	case ImportDbWrite:
		out = b.DbWrite(ctx, arg(0), arg(1))
	case ImportDbRemove:
		out = b.DbRemove(ctx, arg(0))
	case ImportCanonicalizeAddress, ImportAddrCanonicalize:
		out = b.AddrCanonicalize(ctx, arg(0), arg(1))
	case ImportHumanizeAddress, ImportAddrHumanize:
		out = b.AddrHumanize(ctx, arg(0), arg(1))
	case ImportAddrValidate:
		out = b.AddrValidate(ctx, arg(0))
	case ImportQueryChain:
		out = b.QueryChain(ctx, arg(0))
	case ImportSecp256k1Verify:
		out = b.Secp256k1Verify(ctx, arg(0), arg(1), arg(2))
	case ImportSecp256k1RecoverPubkey:
		out = b.Secp256k1RecoverPubkey(ctx, arg(0), arg(1), arg(2))
	case ImportEd25519Verify:
		out = b.Ed25519Verify(ctx, arg(0), arg(1), arg(2))
	case ImportEd25519BatchVerify:
		out = b.Ed25519BatchVerify(ctx, arg(0), arg(1), arg(2))
	case ImportDebug:
		out = b.Debug(ctx, arg(0))
	case ImportGas:
		out = b.Gas(ctx, arg(0))
	default:
		out = rterrors.Fatal(rterrors.NewTrap(rterrors.TrapInternal, fmt.Errorf("unknown import %d", imp)))
	}

	if trap := out.Trap(); trap != nil {
		b.logger.Debug().Str("import", imp.Name()).Stringer("trap", trap.Kind).Err(trap.Err).Msg("import trapped")
	}
	if b.env.Observer != nil {
		b.env.Observer(imp, out)
	}
	return out
}

// DbRead returns a region holding the value stored under the key, or 0 when
// the key is absent.
func (b *Bridge) DbRead(ctx context.Context, keyPtr uint32) rterrors.Outcome {
	if out, stop := b.exhausted("db_read"); stop {
		return out
	}
	key, err := b.env.Memory.ReadRegion(keyPtr, constants.MaxKeyLength)
	if err != nil {
		return fail(err)
	}
	if err := b.env.Gas.Charge(b.env.Gas.Config().DbRead, uint64(len(key)), "db_read"); err != nil {
		return fail(err)
	}

	value := b.env.Store.Get(key)
	if value == nil {
		return rterrors.Value(0)
	}
	ptr, err := b.allocate(ctx, value, "db_read")
	if err != nil {
		return fail(err)
	}
	return rterrors.Value(uint64(ptr))
}

// DbWrite stores value under key.
func (b *Bridge) DbWrite(_ context.Context, keyPtr, valuePtr uint32) rterrors.Outcome {
	if out, stop := b.exhausted("db_write"); stop {
		return out
	}
	key, err := b.env.Memory.ReadRegion(keyPtr, constants.MaxKeyLength)
	if err != nil {
		return fail(err)
	}
	value, err := b.env.Memory.ReadRegion(valuePtr, constants.MaxValueLength)
	if err != nil {
		return fail(err)
	}
	if db.IsReadOnly(b.env.Store) {
		return fail(db.ErrReadOnlyStorage)
	}
	if err := b.env.Gas.Charge(b.env.Gas.Config().DbWrite, uint64(len(key)+len(value)), "db_write"); err != nil {
		return fail(err)
	}

	b.env.Store.Set(key, value)
	return rterrors.Void()
}

// DbRemove deletes key. Removing an absent key is not an error.
func (b *Bridge) DbRemove(_ context.Context, keyPtr uint32) rterrors.Outcome {
	if out, stop := b.exhausted("db_remove"); stop {
		return out
	}
	key, err := b.env.Memory.ReadRegion(keyPtr, constants.MaxKeyLength)
	if err != nil {
		return fail(err)
	}
	if db.IsReadOnly(b.env.Store) {
		return fail(db.ErrReadOnlyStorage)
	}
	if err := b.env.Gas.Charge(b.env.Gas.Config().DbRemove, uint64(len(key)), "db_remove"); err != nil {
		return fail(err)
	}

	b.env.Store.Delete(key)
	return rterrors.Void()
}

// AddrCanonicalize decodes the human address at humanPtr into the region at
// outPtr.
func (b *Bridge) AddrCanonicalize(_ context.Context, humanPtr, outPtr uint32) rterrors.Outcome {
	if out, stop := b.exhausted("addr_canonicalize"); stop {
		return out
	}
	human, err := b.env.Memory.ReadRegion(humanPtr, constants.MaxAddressLength)
	if err != nil {
		var tooBig *memory.RegionLengthTooBigError
		if errors.As(err, &tooBig) {
			return rterrors.Recoverable(rterrors.CodeMalformedAddress, err)
		}
		return fail(err)
	}
	if err := b.env.Memory.CheckRegion(outPtr); err != nil {
		return fail(err)
	}
	if err := b.env.Gas.Charge(b.env.Gas.Config().AddrCanonicalize, uint64(len(human)), "addr_canonicalize"); err != nil {
		return fail(err)
	}

	canonical, err := b.env.Codec.Canonicalize(string(human))
	if err != nil {
		return rterrors.Recoverable(address.Code(err), err)
	}
	return b.writeOutput(outPtr, canonical)
}

// AddrHumanize encodes the canonical address at canonicalPtr into the region
// at outPtr.
func (b *Bridge) AddrHumanize(_ context.Context, canonicalPtr, outPtr uint32) rterrors.Outcome {
	if out, stop := b.exhausted("addr_humanize"); stop {
		return out
	}
	canonical, err := b.env.Memory.ReadRegion(canonicalPtr, constants.MaxCanonicalLength)
	if err != nil {
		var tooBig *memory.RegionLengthTooBigError
		if errors.As(err, &tooBig) {
			return rterrors.Recoverable(rterrors.CodeInvalidCanonical, err)
		}
		return fail(err)
	}
	if err := b.env.Memory.CheckRegion(outPtr); err != nil {
		return fail(err)
	}
	if err := b.env.Gas.Charge(b.env.Gas.Config().AddrHumanize, uint64(len(canonical)), "addr_humanize"); err != nil {
		return fail(err)
	}

	human, err := b.env.Codec.Humanize(canonical)
	if err != nil {
		return rterrors.Recoverable(address.Code(err), err)
	}
	return b.writeOutput(outPtr, []byte(human))
}

// AddrValidate checks that the address at humanPtr is valid and normalized.
func (b *Bridge) AddrValidate(_ context.Context, humanPtr uint32) rterrors.Outcome {
	if out, stop := b.exhausted("addr_validate"); stop {
		return out
	}
	human, err := b.env.Memory.ReadRegion(humanPtr, constants.MaxAddressLength)
	if err != nil {
		var tooBig *memory.RegionLengthTooBigError
		if errors.As(err, &tooBig) {
			return rterrors.Recoverable(rterrors.CodeMalformedAddress, err)
		}
		return fail(err)
	}
	if err := b.env.Gas.Charge(b.env.Gas.Config().AddrValidate, uint64(len(human)), "addr_validate"); err != nil {
		return fail(err)
	}

	if err := b.env.Codec.Validate(string(human)); err != nil {
		return rterrors.Recoverable(address.Code(err), err)
	}
	return rterrors.Value(uint64(uint32(rterrors.CodeOK)))
}

// QueryChain runs a query and returns a region holding the JSON encoded
// QueryResult. Failures of the queried side are data in that result.
func (b *Bridge) QueryChain(ctx context.Context, requestPtr uint32) rterrors.Outcome {
	if out, stop := b.exhausted("query_chain"); stop {
		return out
	}
	request, err := b.env.Memory.ReadRegion(requestPtr, constants.MaxQueryLength)
	if err != nil {
		return fail(err)
	}
	if err := b.env.Gas.Charge(b.env.Gas.Config().QueryChain, uint64(len(request)), "query_chain"); err != nil {
		return fail(err)
	}
	if b.env.Querier == nil {
		return fail(errors.New("no querier configured"))
	}

	result, gasUsed, err := b.env.Querier.Query(ctx, request, b.env.Gas.Meter().Remaining())
	if err != nil {
		return fail(err)
	}
	if err := b.env.Gas.Meter().Consume(gasUsed, "nested query"); err != nil {
		return fail(err)
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return fail(fmt.Errorf("encoding query result: %w", err))
	}
	ptr, err := b.allocate(ctx, encoded, "query_chain")
	if err != nil {
		return fail(err)
	}
	return rterrors.Value(uint64(ptr))
}

// Secp256k1Verify checks an ECDSA signature over a 32 byte message hash.
func (b *Bridge) Secp256k1Verify(_ context.Context, hashPtr, sigPtr, pubkeyPtr uint32) rterrors.Outcome {
	if out, stop := b.exhausted("secp256k1_verify"); stop {
		return out
	}
	hash, out, ok := b.readCryptoInput(hashPtr, constants.MaxCryptoInputLength, rterrors.CodeInvalidHashFormat)
	if !ok {
		return out
	}
	sig, out, ok := b.readCryptoInput(sigPtr, constants.MaxCryptoInputLength, rterrors.CodeInvalidSignatureFormat)
	if !ok {
		return out
	}
	pubkey, out, ok := b.readCryptoInput(pubkeyPtr, constants.MaxCryptoInputLength, rterrors.CodeInvalidPubkeyFormat)
	if !ok {
		return out
	}
	if err := b.env.Gas.Charge(b.env.Gas.Config().Secp256k1Verify, 1, "secp256k1_verify"); err != nil {
		return fail(err)
	}

	valid, err := b.env.Crypto.Secp256k1Verify(hash, sig, pubkey)
	if err != nil {
		return rterrors.Recoverable(crypto.Code(err), err)
	}
	return rterrors.Verified(valid)
}

// Secp256k1RecoverPubkey recovers the uncompressed public key that produced
// a signature. The result is packed into an i64: error code in the upper
// half, region pointer in the lower one.
func (b *Bridge) Secp256k1RecoverPubkey(ctx context.Context, hashPtr, sigPtr, recoveryParam uint32) rterrors.Outcome {
	if out, stop := b.exhausted("secp256k1_recover_pubkey"); stop {
		return out
	}
	hash, out, ok := b.readCryptoInput(hashPtr, constants.MaxCryptoInputLength, rterrors.CodeInvalidHashFormat)
	if !ok {
		return out.Packed()
	}
	sig, out, ok := b.readCryptoInput(sigPtr, constants.MaxCryptoInputLength, rterrors.CodeInvalidSignatureFormat)
	if !ok {
		return out.Packed()
	}
	if recoveryParam > 0xff {
		err := fmt.Errorf("%w: %d", crypto.ErrInvalidRecoveryParam, recoveryParam)
		return rterrors.Recoverable(rterrors.CodeInvalidRecoveryParam, err).Packed()
	}
	if err := b.env.Gas.Charge(b.env.Gas.Config().Secp256k1RecoverPubkey, 1, "secp256k1_recover_pubkey"); err != nil {
		return fail(err)
	}

	pubkey, err := b.env.Crypto.Secp256k1RecoverPubkey(hash, sig, byte(recoveryParam))
	if err != nil {
		return rterrors.Recoverable(crypto.Code(err), err).Packed()
	}
	ptr, err := b.allocate(ctx, pubkey, "secp256k1_recover_pubkey")
	if err != nil {
		return fail(err)
	}
	return rterrors.Value(uint64(ptr))
}

// Ed25519Verify checks an ed25519 signature over an arbitrary message.
func (b *Bridge) Ed25519Verify(_ context.Context, msgPtr, sigPtr, pubkeyPtr uint32) rterrors.Outcome {
	if out, stop := b.exhausted("ed25519_verify"); stop {
		return out
	}
	msg, err := b.env.Memory.ReadRegion(msgPtr, constants.MaxMessageLength)
	if err != nil {
		return fail(err)
	}
	sig, out, ok := b.readCryptoInput(sigPtr, constants.MaxCryptoInputLength, rterrors.CodeInvalidSignatureFormat)
	if !ok {
		return out
	}
	pubkey, out, ok := b.readCryptoInput(pubkeyPtr, constants.MaxCryptoInputLength, rterrors.CodeInvalidPubkeyFormat)
	if !ok {
		return out
	}
	if err := b.env.Gas.Charge(b.env.Gas.Config().Ed25519Verify, 1, "ed25519_verify"); err != nil {
		return fail(err)
	}

	valid, err := b.env.Crypto.Ed25519Verify(msg, sig, pubkey)
	if err != nil {
		return rterrors.Recoverable(crypto.Code(err), err)
	}
	return rterrors.Verified(valid)
}

// Ed25519BatchVerify checks a batch of ed25519 signatures. Each argument is
// a section encoded list, see memory.DecodeSections.
func (b *Bridge) Ed25519BatchVerify(_ context.Context, msgsPtr, sigsPtr, pubkeysPtr uint32) rterrors.Outcome {
	if out, stop := b.exhausted("ed25519_batch_verify"); stop {
		return out
	}
	var lists [3][][]byte
	for i, ptr := range []uint32{msgsPtr, sigsPtr, pubkeysPtr} {
		raw, err := b.env.Memory.ReadRegion(ptr, constants.MaxBatchLength)
		if err != nil {
			return fail(err)
		}
		sections, err := memory.DecodeSections(raw)
		if err != nil {
			return rterrors.Recoverable(rterrors.CodeBatchErr, err)
		}
		lists[i] = sections
	}
	messages, signatures, pubkeys := lists[0], lists[1], lists[2]
	if err := b.env.Gas.Charge(b.env.Gas.Config().Ed25519BatchVerify, uint64(len(signatures)), "ed25519_batch_verify"); err != nil {
		return fail(err)
	}

	valid, err := b.env.Crypto.Ed25519BatchVerify(messages, signatures, pubkeys)
	if err != nil {
		return rterrors.Recoverable(crypto.Code(err), err)
	}
	return rterrors.Verified(valid)
}

// Debug logs a message from the contract when debug printing is enabled.
func (b *Bridge) Debug(_ context.Context, msgPtr uint32) rterrors.Outcome {
	if out, stop := b.exhausted("debug"); stop {
		return out
	}
	msg, err := b.env.Memory.ReadRegion(msgPtr, constants.MaxDebugLength)
	if err != nil {
		return fail(err)
	}
	if err := b.env.Gas.Charge(b.env.Gas.Config().Debug, uint64(len(msg)), "debug"); err != nil {
		return fail(err)
	}
	if b.env.PrintDebug {
		b.logger.Debug().Str("source", "contract").Msg(string(msg))
	}
	return rterrors.Void()
}

// Gas charges compute the guest metered itself.
func (b *Bridge) Gas(_ context.Context, amount uint32) rterrors.Outcome {
	if err := b.env.Gas.Checkpoint(uint64(amount)); err != nil {
		return fail(err)
	}
	return rterrors.Void()
}

// exhausted stops any import once the meter has run dry.
func (b *Bridge) exhausted(descriptor string) (rterrors.Outcome, bool) {
	meter := b.env.Gas.Meter()
	if !meter.Exhausted() {
		return rterrors.Outcome{}, false
	}
	return fail(meter.Consume(0, descriptor)), true
}

// allocate charges for and copies data into a fresh guest region.
func (b *Bridge) allocate(ctx context.Context, data []byte, descriptor string) (uint32, error) {
	if err := b.env.Gas.Charge(b.env.Gas.Config().MemoryWrite, uint64(len(data)), descriptor); err != nil {
		return 0, err
	}
	return b.env.Memory.Allocate(ctx, data)
}

// writeOutput fills a guest provided region. A region that is too small is
// reported to the guest, everything else traps.
func (b *Bridge) writeOutput(ptr uint32, data []byte) rterrors.Outcome {
	err := b.env.Memory.WriteRegion(ptr, data)
	if err == nil {
		return rterrors.Value(uint64(uint32(rterrors.CodeOK)))
	}
	var tooSmall *memory.RegionTooSmallError
	if errors.As(err, &tooSmall) {
		return rterrors.Recoverable(rterrors.CodeRegionTooSmall, err)
	}
	return fail(err)
}

// readCryptoInput reads a fixed size crypto argument. Oversized input is a
// format error of that argument rather than a memory fault.
func (b *Bridge) readCryptoInput(ptr, maxLength uint32, code rterrors.ErrorCode) ([]byte, rterrors.Outcome, bool) {
	data, err := b.env.Memory.ReadRegion(ptr, maxLength)
	if err == nil {
		return data, rterrors.Outcome{}, true
	}
	var tooBig *memory.RegionLengthTooBigError
	if errors.As(err, &tooBig) {
		return nil, rterrors.Recoverable(code, err), false
	}
	return nil, fail(err), false
}

// fail turns err into the trap that aborts the execution context. A trap
// raised by guest code the host called back into keeps its kind.
func fail(err error) rterrors.Outcome {
	if trap, ok := rterrors.AsTrap(err); ok {
		return rterrors.Fatal(trap)
	}
	return rterrors.Fatal(rterrors.NewTrap(trapKind(err), err))
}

func trapKind(err error) rterrors.TrapKind {
	var (
		gasErr    *rterrors.GasError
		accessErr *memory.MemoryAccessError
		tooBig    *memory.RegionLengthTooBigError
		tooSmall  *memory.RegionTooSmallError
	)
	switch {
	case errors.As(err, &gasErr):
		return rterrors.TrapOutOfGas
	case errors.As(err, &accessErr), errors.As(err, &tooBig), errors.As(err, &tooSmall),
		errors.Is(err, memory.ErrAllocationFailed):
		return rterrors.TrapMemoryAccess
	case errors.Is(err, querier.ErrQueryDepthExceeded):
		return rterrors.TrapQueryDepthExceeded
	case errors.Is(err, db.ErrReadOnlyStorage):
		return rterrors.TrapReadOnly
	default:
		return rterrors.TrapInternal
	}
}
