package address

import (
	"testing"

	"github.com/stretchr/testify/require"

	rterrors "github.com/scrtlabs/hostbridge/internal/runtime/error"
)

func FuzzCanonicalizeRoundTrip(f *testing.F) {
	f.Add(validAddr)
	f.Add(foreignAddr)
	f.Add(zeroAddr)
	f.Add(longPayload)
	f.Add("SECRET1H99HRCC54MS9LUWPEX9KW0RWDT7ETVFDXRRN4Q")
	f.Add("")

	codec := newTestCodec()
	f.Fuzz(func(t *testing.T, human string) {
		canonical, err := codec.Canonicalize(human)
		if err != nil {
			require.NotEqual(t, rterrors.CodeOK, Code(err), "every rejection maps to a guest error code")
			return
		}
		require.Len(t, canonical, canonicalLen)

		normalized, err := codec.Humanize(canonical)
		require.NoError(t, err)
		require.NoError(t, codec.Validate(normalized))

		again, err := codec.Canonicalize(normalized)
		require.NoError(t, err)
		require.Equal(t, canonical, again)
	})
}
