package vm

// KeyWaitState is the state of the FX0A key-wait instruction.
type KeyWaitState uint8

const (
	// Scanning means the VM executes normally.
	Scanning KeyWaitState = iota
	// Parked means the VM sits on FX0A until a key goes down.
	Parked
)

func (s KeyWaitState) String() string {
	switch s {
	case Scanning:
		return "scanning"
	case Parked:
		return "parked"
	default:
		return "unknown"
	}
}

// awaitKey resolves FX0A: the lowest held key is returned, otherwise the VM
// parks and rewinds pc so the same instruction runs again next Step.
func (vm *VM) awaitKey() (Key, bool) {
	for i, down := range vm.keypad {
		if down {
			vm.keyWait = Scanning
			return Key(i), true
		}
	}

	vm.keyWait = Parked
	vm.pc -= InstructionSize
	return 0, false
}
