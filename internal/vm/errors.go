package vm

import (
	"errors"
	"fmt"
)

var (
	ErrStackUnderflow = errors.New("stack underflow")
	ErrStackOverflow  = errors.New("stack overflow")
)

// DecodeError reports an opcode the VM cannot execute. Variant is set when
// the instruction family is known but its low-order encoding is not.
type DecodeError struct {
	PC      uint16
	Opcode  uint16
	Variant bool
}

func (e *DecodeError) Error() string {
	if e.Variant {
		return fmt.Sprintf("unsupported variant of 0x%X000 opcode: 0x%04X at 0x%04x", e.Opcode>>12, e.Opcode, e.PC)
	}
	return fmt.Sprintf("unknown op code 0x%04X at 0x%04x", e.Opcode, e.PC)
}

// IsMachineError reports whether err was raised by the program itself
// rather than by the host.
func IsMachineError(err error) bool {
	var decodeErr *DecodeError
	return errors.As(err, &decodeErr) ||
		errors.Is(err, ErrStackUnderflow) ||
		errors.Is(err, ErrStackOverflow)
}
