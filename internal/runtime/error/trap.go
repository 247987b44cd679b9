package error

import (
	"errors"
	"fmt"
)

// TrapKind classifies unrecoverable aborts of an execution context.
type TrapKind uint8

const (
	TrapInternal TrapKind = iota
	TrapOutOfGas
	TrapMemoryAccess
	TrapGuestPanic
	TrapQueryDepthExceeded
	TrapReadOnly
)

func (k TrapKind) String() string {
	switch k {
	case TrapOutOfGas:
		return "out of gas"
	case TrapMemoryAccess:
		return "memory access"
	case TrapGuestPanic:
		return "guest panic"
	case TrapQueryDepthExceeded:
		return "query depth exceeded"
	case TrapReadOnly:
		return "read only violation"
	default:
		return "internal"
	}
}

// Trap aborts the whole execution context. Host functions raise it by
// panicking with it, the engine recovers it from the call error.
type Trap struct {
	Kind TrapKind
	Err  error
}

// NewTrap builds a trap of the given kind.
func NewTrap(kind TrapKind, err error) *Trap {
	return &Trap{Kind: kind, Err: err}
}

func (t *Trap) Error() string {
	if t.Err == nil {
		return t.Kind.String()
	}
	return fmt.Sprintf("%s: %v", t.Kind, t.Err)
}

func (t *Trap) Unwrap() error {
	return t.Err
}

// AsTrap extracts a trap from err, if it carries one.
func AsTrap(err error) (*Trap, bool) {
	var trap *Trap
	if errors.As(err, &trap) {
		return trap, true
	}
	return nil, false
}
