package vm

// stack is the fixed-depth return address stack used by 2NNN/00EE.
type stack struct {
	entries [StackSize]uint16
	sp      int
}

func (s *stack) reset() {
	s.entries = [StackSize]uint16{}
	s.sp = 0
}

func (s *stack) push(addr uint16) error {
	if s.sp == len(s.entries) {
		return ErrStackOverflow
	}
	s.entries[s.sp] = addr
	s.sp++
	return nil
}

func (s *stack) pop() (uint16, error) {
	if s.sp == 0 {
		return 0, ErrStackUnderflow
	}
	s.sp--
	return s.entries[s.sp], nil
}

func (s *stack) depth() int {
	return s.sp
}
