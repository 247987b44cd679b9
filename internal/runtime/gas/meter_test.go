package gas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rterrors "github.com/scrtlabs/hostbridge/internal/runtime/error"
	"github.com/scrtlabs/hostbridge/types"
)

func TestDefaultMeter(t *testing.T) {
	m := NewDefaultMeter(100)

	require.NoError(t, m.Consume(40, "first"))
	require.NoError(t, m.Consume(60, "second"))
	assert.Equal(t, uint64(0), m.Remaining())
	assert.False(t, m.Exhausted())
	require.NoError(t, m.Consume(0, "free"))
	assert.False(t, m.Exhausted())

	// spending exactly the limit is fine, anything beyond is not
	err := m.Consume(1, "third")
	var gasErr *rterrors.GasError
	require.ErrorAs(t, err, &gasErr)
	assert.Equal(t, "third", gasErr.Descriptor)
	assert.Equal(t, uint64(1), gasErr.Wanted)
	assert.Equal(t, uint64(0), gasErr.Available)
	assert.True(t, m.Exhausted())
}

func TestDefaultMeterLatchesExhaustion(t *testing.T) {
	m := NewDefaultMeter(100)
	require.Error(t, m.Consume(150, "too much"))
	assert.Equal(t, uint64(100), m.Consumed())

	// even a free charge fails after exhaustion
	require.Error(t, m.Consume(0, "free"))
	assert.Equal(t, Report{Limit: 100, Remaining: 0, Used: 100}, m.Report())
}

func TestChargerCharge(t *testing.T) {
	m := NewDefaultMeter(1000)
	c := NewCharger(m, types.GasConfig{DbWrite: types.OperationCost{Base: 200, Variable: 2}})

	require.NoError(t, c.Charge(c.Config().DbWrite, 10, "db_write"))
	assert.Equal(t, uint64(220), m.Consumed())

	require.NoError(t, c.Checkpoint(80))
	assert.Equal(t, uint64(300), m.Consumed())

	err := c.Charge(types.OperationCost{Base: 1, Variable: 1 << 40}, 1<<40, "huge")
	require.Error(t, err)
	assert.True(t, m.Exhausted())
}
