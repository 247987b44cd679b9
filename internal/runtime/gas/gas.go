// Package gas meters host and guest work for one execution context.
package gas

import (
	"github.com/scrtlabs/hostbridge/types"
)

// Charger applies the configured cost table to a meter.
type Charger struct {
	meter  Meter
	config types.GasConfig
}

// NewCharger binds a cost table to a meter.
func NewCharger(meter Meter, config types.GasConfig) *Charger {
	return &Charger{meter: meter, config: config}
}

// Meter returns the underlying meter.
func (c *Charger) Meter() Meter {
	return c.meter
}

// Config returns the cost table.
func (c *Charger) Config() types.GasConfig {
	return c.config
}

// Charge consumes cost for n units of work.
func (c *Charger) Charge(cost types.OperationCost, n uint64, descriptor string) error {
	total := cost.TotalCost(n)
	// saturate instead of wrapping around on absurd sizes
	if cost.Variable != 0 && n > (^uint64(0)-cost.Base)/cost.Variable {
		total = ^uint64(0)
	}
	return c.meter.Consume(total, descriptor)
}

// Checkpoint consumes gas reported by the guest for its own compute.
func (c *Charger) Checkpoint(amount uint64) error {
	return c.meter.Consume(amount, "gas checkpoint")
}
