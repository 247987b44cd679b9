package crypto

import (
	"crypto/ed25519"
	"crypto/sha256"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rterrors "github.com/scrtlabs/hostbridge/internal/runtime/error"
)

type secpFixture struct {
	hash         []byte
	signature    []byte
	recoveryID   byte
	compressed   []byte
	uncompressed []byte
}

func newSecpFixture(t *testing.T) secpFixture {
	t.Helper()
	key, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	hash := sha256.Sum256([]byte("hostbridge"))

	compact, err := ecdsa.SignCompact(key, hash[:], false)
	require.NoError(t, err)
	require.Len(t, compact, 65)

	return secpFixture{
		hash:         hash[:],
		signature:    compact[1:],
		recoveryID:   compact[0] - compactHeaderBase,
		compressed:   key.PubKey().SerializeCompressed(),
		uncompressed: key.PubKey().SerializeUncompressed(),
	}
}

func TestSecp256k1Verify(t *testing.T) {
	f := newSecpFixture(t)

	ok, err := Secp256k1Verify(f.hash, f.signature, f.compressed)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Secp256k1Verify(f.hash, f.signature, f.uncompressed)
	require.NoError(t, err)
	assert.True(t, ok)

	otherHash := sha256.Sum256([]byte("something else"))
	ok, err = Secp256k1Verify(otherHash[:], f.signature, f.compressed)
	require.NoError(t, err)
	assert.False(t, ok)

	tampered := append([]byte(nil), f.signature...)
	tampered[10] ^= 0x01
	ok, err = Secp256k1Verify(f.hash, tampered, f.compressed)
	require.NoError(t, err)
	assert.False(t, ok)

	// right length, but not a point on the curve
	badKey := append([]byte(nil), f.compressed...)
	badKey[0] = 0x07
	ok, err = Secp256k1Verify(f.hash, f.signature, badKey)
	require.NoError(t, err)
	assert.False(t, ok)

	zeroSig := make([]byte, 64)
	ok, err = Secp256k1Verify(f.hash, zeroSig, f.compressed)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSecp256k1VerifyStructuralErrors(t *testing.T) {
	f := newSecpFixture(t)

	cases := map[string]struct {
		hash, sig, key []byte
		want           error
		code           rterrors.ErrorCode
	}{
		"short hash":     {f.hash[:31], f.signature, f.compressed, ErrInvalidHashFormat, rterrors.CodeInvalidHashFormat},
		"long signature": {f.hash, append(f.signature, 0), f.compressed, ErrInvalidSignatureFormat, rterrors.CodeInvalidSignatureFormat},
		"empty key":      {f.hash, f.signature, nil, ErrInvalidPubkeyFormat, rterrors.CodeInvalidPubkeyFormat},
		"odd key":        {f.hash, f.signature, f.uncompressed[:64], ErrInvalidPubkeyFormat, rterrors.CodeInvalidPubkeyFormat},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ok, err := Secp256k1Verify(tc.hash, tc.sig, tc.key)
			assert.False(t, ok)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, tc.code, Code(err))
		})
	}
}

func TestSecp256k1RecoverPubkey(t *testing.T) {
	f := newSecpFixture(t)

	recovered, err := Secp256k1RecoverPubkey(f.hash, f.signature, f.recoveryID)
	require.NoError(t, err)
	assert.Equal(t, f.uncompressed, recovered)

	// the other recovery id yields a different key, or none at all
	other, err := Secp256k1RecoverPubkey(f.hash, f.signature, 1-f.recoveryID)
	if err == nil {
		assert.NotEqual(t, f.uncompressed, other)
	} else {
		assert.ErrorIs(t, err, ErrRecoveryFailed)
	}

	_, err = Secp256k1RecoverPubkey(f.hash, f.signature, 2)
	assert.ErrorIs(t, err, ErrInvalidRecoveryParam)
	assert.Equal(t, rterrors.CodeInvalidRecoveryParam, Code(err))

	_, err = Secp256k1RecoverPubkey(f.hash, make([]byte, 64), 0)
	assert.ErrorIs(t, err, ErrRecoveryFailed)

	_, err = Secp256k1RecoverPubkey(f.hash[:5], f.signature, 0)
	assert.ErrorIs(t, err, ErrInvalidHashFormat)
}

func ed25519Key(seed byte) ed25519.PrivateKey {
	s := make([]byte, ed25519.SeedSize)
	for i := range s {
		s[i] = seed
	}
	return ed25519.NewKeyFromSeed(s)
}

func TestEd25519Verify(t *testing.T) {
	key := ed25519Key(1)
	pub := key.Public().(ed25519.PublicKey)
	msg := []byte("transfer 10 uscrt")
	sig := ed25519.Sign(key, msg)

	ok, err := Ed25519Verify(msg, sig, pub)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Ed25519Verify([]byte("transfer 11 uscrt"), sig, pub)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = Ed25519Verify(msg, sig[:63], pub)
	assert.ErrorIs(t, err, ErrInvalidSignatureFormat)
	_, err = Ed25519Verify(msg, sig, pub[:31])
	assert.ErrorIs(t, err, ErrInvalidPubkeyFormat)
}

func TestEd25519BatchVerify(t *testing.T) {
	k1, k2, k3 := ed25519Key(1), ed25519Key(2), ed25519Key(3)
	p1 := []byte(k1.Public().(ed25519.PublicKey))
	p2 := []byte(k2.Public().(ed25519.PublicKey))
	p3 := []byte(k3.Public().(ed25519.PublicKey))
	m1, m2, m3 := []byte("one"), []byte("two"), []byte("three")
	shared := []byte("shared message")

	cases := map[string]struct {
		msgs, sigs, keys [][]byte
		ok               bool
		err              error
	}{
		"all match": {
			msgs: [][]byte{m1, m2, m3},
			sigs: [][]byte{ed25519.Sign(k1, m1), ed25519.Sign(k2, m2), ed25519.Sign(k3, m3)},
			keys: [][]byte{p1, p2, p3},
			ok:   true,
		},
		"one bad signature": {
			msgs: [][]byte{m1, m2, m3},
			sigs: [][]byte{ed25519.Sign(k1, m1), ed25519.Sign(k2, m1), ed25519.Sign(k3, m3)},
			keys: [][]byte{p1, p2, p3},
			ok:   false,
		},
		"one message many keys": {
			msgs: [][]byte{shared},
			sigs: [][]byte{ed25519.Sign(k1, shared), ed25519.Sign(k2, shared)},
			keys: [][]byte{p1, p2},
			ok:   true,
		},
		"one key many messages": {
			msgs: [][]byte{m1, m2},
			sigs: [][]byte{ed25519.Sign(k1, m1), ed25519.Sign(k1, m2)},
			keys: [][]byte{p1},
			ok:   true,
		},
		"empty batch": {
			ok: true,
		},
		"cardinality mismatch": {
			msgs: [][]byte{m1, m2},
			sigs: [][]byte{ed25519.Sign(k1, m1), ed25519.Sign(k2, m2), ed25519.Sign(k3, m3)},
			keys: [][]byte{p1, p2},
			err:  ErrInvalidBatchFormat,
		},
		"malformed signature": {
			msgs: [][]byte{m1, m2},
			sigs: [][]byte{[]byte("nope"), ed25519.Sign(k2, m2)},
			keys: [][]byte{p1, p2},
			err:  ErrInvalidSignatureFormat,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ok, err := Verifier{}.Ed25519BatchVerify(tc.msgs, tc.sigs, tc.keys)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				assert.False(t, ok)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.ok, ok)
		})
	}

	_, err := Ed25519BatchVerify([][]byte{m1}, nil, [][]byte{p1, p2})
	assert.Equal(t, rterrors.CodeBatchErr, Code(err))
}
