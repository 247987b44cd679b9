package gas

import (
	rterrors "github.com/scrtlabs/hostbridge/internal/runtime/error"
)

// Meter tracks gas consumption during contract execution
type Meter interface {
	// Consume charges the specified amount of gas
	Consume(amount uint64, descriptor string) error
	// Remaining returns the amount of gas left
	Remaining() uint64
	// Consumed returns the amount of gas used so far
	Consumed() uint64
	// Exhausted reports whether a charge has already failed
	Exhausted() bool
}

// DefaultMeter is the default implementation of Meter. Once a charge fails
// the meter stays exhausted and refuses every further charge.
type DefaultMeter struct {
	limit     uint64
	consumed  uint64
	exhausted bool
}

var _ Meter = (*DefaultMeter)(nil)

// NewDefaultMeter creates a new gas meter with the specified limit
func NewDefaultMeter(limit uint64) *DefaultMeter {
	return &DefaultMeter{
		limit:    limit,
		consumed: 0,
	}
}

func (m *DefaultMeter) Consume(amount uint64, descriptor string) error {
	if m.exhausted || amount > m.Remaining() {
		m.exhausted = true
		// nothing more can be done in this context, account for all of it
		available := m.Remaining()
		m.consumed = m.limit
		return &rterrors.GasError{
			Descriptor: descriptor,
			Wanted:     amount,
			Available:  available,
		}
	}
	m.consumed += amount
	return nil
}

func (m *DefaultMeter) Remaining() uint64 {
	if m.consumed >= m.limit {
		return 0
	}
	return m.limit - m.consumed
}

func (m *DefaultMeter) Consumed() uint64 {
	return m.consumed
}

func (m *DefaultMeter) Exhausted() bool {
	return m.exhausted
}

// Report returns the usage summary of the meter.
func (m *DefaultMeter) Report() Report {
	return Report{
		Limit:     m.limit,
		Remaining: m.Remaining(),
		Used:      m.consumed,
	}
}

// Report contains information about gas usage
type Report struct {
	Limit     uint64
	Remaining uint64
	Used      uint64
}
