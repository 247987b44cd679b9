package address

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rterrors "github.com/scrtlabs/hostbridge/internal/runtime/error"
)

const (
	validAddr    = "secret1h99hrcc54ms9luwpex9kw0rwdt7etvfdxrrn4q"
	validHex     = "b94b71e314aee05ff1c1c98b673c6e6afd95b12d"
	foreignAddr  = "cosmos1h99hrcc54ms9luwpex9kw0rwdt7etvfdyxh6gu"
	badChecksum  = "cosmos1h99hrcc54ms9lxxxx"
	longPayload  = "secret1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5z5tpwxqergd3c8g7rusq6tn66r"
	zeroAddr     = "secret1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqq3x5k6p"
	canonicalLen = 20
)

func newTestCodec() *Codec {
	return NewCodec("secret", canonicalLen)
}

func TestCanonicalizeErrorClasses(t *testing.T) {
	codec := newTestCodec()

	cases := map[string]struct {
		input string
		want  error
		code  rterrors.ErrorCode
	}{
		"empty":          {input: "", want: ErrEmptyAddress, code: rterrors.CodeEmptyAddress},
		"blank":          {input: "   ", want: ErrEmptyAddress, code: rterrors.CodeEmptyAddress},
		"bad checksum":   {input: badChecksum, want: ErrMalformedAddress, code: rterrors.CodeMalformedAddress},
		"garbage":        {input: "badbech32xxxx", want: ErrMalformedAddress, code: rterrors.CodeMalformedAddress},
		"wrong prefix":   {input: foreignAddr, want: ErrWrongPrefix, code: rterrors.CodeWrongPrefix},
		"wrong length":   {input: longPayload, want: ErrMalformedAddress, code: rterrors.CodeMalformedAddress},
		"padded":         {input: " " + validAddr, want: ErrMalformedAddress, code: rterrors.CodeMalformedAddress},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Canonicalize(tc.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, tc.code, Code(err))
		})
	}
}

func TestCanonicalizeValid(t *testing.T) {
	codec := newTestCodec()

	canonical, err := codec.Canonicalize(validAddr)
	require.NoError(t, err)
	assert.Equal(t, validHex, hex.EncodeToString(canonical))

	// repeated calls give the same answer
	again, err := codec.Canonicalize(validAddr)
	require.NoError(t, err)
	assert.Equal(t, canonical, again)

	// case is normalized away
	upper, err := codec.Canonicalize(strings.ToUpper(validAddr))
	require.NoError(t, err)
	assert.Equal(t, canonical, upper)
}

func TestRoundTrip(t *testing.T) {
	codec := newTestCodec()

	for _, human := range []string{validAddr, zeroAddr} {
		canonical, err := codec.Canonicalize(human)
		require.NoError(t, err)
		back, err := codec.Humanize(canonical)
		require.NoError(t, err)
		assert.Equal(t, human, back)
	}

	canonical := make([]byte, canonicalLen)
	for i := range canonical {
		canonical[i] = byte(i + 1)
	}
	human, err := codec.Humanize(canonical)
	require.NoError(t, err)
	assert.Equal(t, "secret1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5a8chmq", human)
	decoded, err := codec.Canonicalize(human)
	require.NoError(t, err)
	assert.Equal(t, canonical, decoded)
}

func TestHumanizeInvalidCanonical(t *testing.T) {
	codec := newTestCodec()

	for _, input := range [][]byte{nil, make([]byte, 19), make([]byte, 32)} {
		_, err := codec.Humanize(input)
		assert.ErrorIs(t, err, ErrInvalidCanonical)
		assert.Equal(t, rterrors.CodeInvalidCanonical, Code(err))
	}
}

func TestValidate(t *testing.T) {
	codec := newTestCodec()

	require.NoError(t, codec.Validate(validAddr))

	err := codec.Validate(strings.ToUpper(validAddr))
	assert.ErrorIs(t, err, ErrNotNormalized)
	assert.Equal(t, rterrors.CodeNotNormalized, Code(err))

	assert.ErrorIs(t, codec.Validate(""), ErrEmptyAddress)
	assert.ErrorIs(t, codec.Validate(foreignAddr), ErrWrongPrefix)
}
