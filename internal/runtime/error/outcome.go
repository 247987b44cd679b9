package error

// OutcomeKind tags an Outcome.
type OutcomeKind uint8

const (
	OutcomeValue OutcomeKind = iota
	OutcomeRecoverable
	OutcomeTrap
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeValue:
		return "value"
	case OutcomeRecoverable:
		return "recoverable"
	case OutcomeTrap:
		return "trap"
	default:
		return "unknown"
	}
}

// Outcome is what every import returns: a value, a recoverable error the
// guest can branch on, or a trap. Only Wire turns it into guest integers.
type Outcome struct {
	kind   OutcomeKind
	value  uint64
	code   ErrorCode
	err    error
	trap   *Trap
	packed bool
}

// Value is a successful outcome carrying v (a region pointer, a flag, ...).
func Value(v uint64) Outcome {
	return Outcome{kind: OutcomeValue, value: v}
}

// Void is a successful outcome without a result.
func Void() Outcome {
	return Outcome{kind: OutcomeValue}
}

// Verified maps a signature check to the guest convention, 0 for valid.
func Verified(ok bool) Outcome {
	if ok {
		return Value(verified)
	}
	return Value(notVerified)
}

// Recoverable is an error the guest sees as code.
func Recoverable(code ErrorCode, err error) Outcome {
	return Outcome{kind: OutcomeRecoverable, code: code, err: err}
}

// Fatal aborts the execution context.
func Fatal(trap *Trap) Outcome {
	return Outcome{kind: OutcomeTrap, trap: trap}
}

// Packed marks a recoverable outcome of an i64 import, where the error code
// lives in the upper 32 bits and the region pointer in the lower ones.
func (o Outcome) Packed() Outcome {
	o.packed = true
	return o
}

func (o Outcome) Kind() OutcomeKind { return o.kind }
func (o Outcome) Value() uint64     { return o.value }
func (o Outcome) Code() ErrorCode   { return o.code }
func (o Outcome) Trap() *Trap       { return o.trap }

// Err returns the recoverable error or the trap, nil on success.
func (o Outcome) Err() error {
	switch o.kind {
	case OutcomeRecoverable:
		return o.err
	case OutcomeTrap:
		return o.trap
	default:
		return nil
	}
}

// Wire encodes the outcome for the guest. A trap has no wire form and is
// returned instead.
func (o Outcome) Wire() (uint64, *Trap) {
	switch o.kind {
	case OutcomeTrap:
		return 0, o.trap
	case OutcomeRecoverable:
		if o.packed {
			return uint64(uint32(o.code)) << 32, nil
		}
		return uint64(uint32(o.code)), nil
	default:
		return o.value, nil
	}
}
