package error

import (
	"fmt"
)

// GasError represents an error related to gas consumption
type GasError struct {
	Descriptor string
	Wanted     uint64
	Available  uint64
}

func (e *GasError) Error() string {
	return fmt.Sprintf("out of gas in %s: required %d, but only %d available", e.Descriptor, e.Wanted, e.Available)
}
