package memory_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scrtlabs/hostbridge/internal/runtime/memory"
	"github.com/scrtlabs/hostbridge/internal/runtime/memory/memtest"
)

func FuzzDecodeSections(f *testing.F) {
	f.Add([]byte{})
	f.Add(memory.EncodeSections([][]byte{[]byte("msg"), {}, []byte("signature")}))
	f.Add([]byte{0, 0, 0, 9})
	f.Add([]byte{1, 2, 3})

	f.Fuzz(func(t *testing.T, data []byte) {
		sections, err := memory.DecodeSections(data)
		if err != nil {
			require.ErrorIs(t, err, memory.ErrInvalidSections)
			return
		}
		require.Equal(t, data, memory.EncodeSections(sections), "decoded sections must encode back to the input")
	})
}

func FuzzReadRegion(f *testing.F) {
	f.Add(uint32(64), uint32(8), uint32(8), uint32(1024))
	f.Add(uint32(0), uint32(0), uint32(0), uint32(0))
	f.Add(uint32(65530), uint32(100), uint32(100), uint32(1024))
	f.Add(uint32(64), uint32(4), uint32(8), uint32(1024))
	f.Add(^uint32(0), ^uint32(0), ^uint32(0), ^uint32(0))

	f.Fuzz(func(t *testing.T, offset, capacity, length, maxLength uint32) {
		mem := memtest.New(1)
		region := memory.Region{Offset: offset, Capacity: capacity, Length: length}
		require.True(t, mem.Write(16, region.Encode()))
		m := memory.NewManager(mem, mem)

		data, err := m.ReadRegion(16, maxLength)
		if err == nil {
			require.Len(t, data, int(length))
			return
		}
		var accessErr *memory.MemoryAccessError
		var tooBig *memory.RegionLengthTooBigError
		require.True(t, errors.As(err, &accessErr) || errors.As(err, &tooBig), "unexpected error type %T: %v", err, err)
	})
}
