package vm

import (
	"context"
	"fmt"
	"log/slog"
)

func (vm *VM) executeOpcode(opcode uint16) error {
	instr := decode(opcode)

	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		slog.Debug(
			"exec",
			"pc", fmt.Sprintf("0x%04x", vm.pc-InstructionSize),
			"opcode", fmt.Sprintf("0x%04x", opcode),
			"instr", instr.Name(opcode),
		)
	}

	return instr.Execute(vm, opcode)
}

// Disassemble returns the mnemonic for opcode.
func Disassemble(opcode uint16) string {
	return decode(opcode).Name(opcode)
}

type instruction struct {
	Name func(opcode uint16) string

	// Execute runs with pc already pointing at the next instruction.
	Execute func(vm *VM, opcode uint16) error
}

func regX(opcode uint16) uint16 { return (opcode & 0x0F00) >> 8 }
func regY(opcode uint16) uint16 { return (opcode & 0x00F0) >> 4 }
func imm8(opcode uint16) uint8  { return uint8(opcode & 0x00FF) }
func addr(opcode uint16) uint16 { return opcode & 0x0FFF }

func decode(opcode uint16) instruction {
	switch opcode & 0xF000 {
	case 0x0000:
		switch opcode {
		case 0x00E0:
			// 00E0 - Clear screen
			return clsInstruction

		case 0x00EE:
			// 00EE - Return from subroutine
			return rtsInstruction
		}

	case 0x1000:
		// 1NNN - Jumps to address NNN
		return jmpInstruction

	case 0x2000:
		// 2NNN - Calls subroutine at NNN
		return jsrInstruction

	case 0x3000:
		// 3XNN - Skips the next instruction if VX equals NN
		return skeq1Instruction

	case 0x4000:
		// 4XNN - Skips the next instruction if VX does not equal NN
		return skne1Instruction

	case 0x5000:
		// 5XY0 - Skips the next instruction if VX equals VY
		if opcode&0x000F == 0 {
			return skeq2Instruction
		}
		return unsupportedInstruction

	case 0x6000:
		// 6XNN - Sets VX to NN
		return mov1Instruction

	case 0x7000:
		// 7XNN - Adds NN to VX, no carry
		return add1Instruction

	case 0x8000:
		// 8XY_
		switch opcode & 0x000F {
		case 0x0000:
			// 8XY0 - Sets VX to the value of VY
			return mov2Instruction

		case 0x0001:
			// 8XY1 - Sets VX to (VX OR VY)
			return orInstruction

		case 0x0002:
			// 8XY2 - Sets VX to (VX AND VY)
			return andInstruction

		case 0x0003:
			// 8XY3 - Sets VX to (VX XOR VY)
			return xorInstruction

		case 0x0004:
			// 8XY4 - Adds VY to VX. VF is set to 1 when there's a carry, and to 0 when there isn't.
			return add2Instruction

		case 0x0005:
			// 8XY5 - VY is subtracted from VX. VF is set to 0 when there's a borrow, and 1 when there isn't.
			return subInstruction

		case 0x0006:
			// 8XY6 - Shifts VX right by one. VF is set to the least significant bit of VX before the shift.
			return shrInstruction

		case 0x0007:
			// 8XY7 - Sets VX to VY minus VX. VF is set to 0 when there's a borrow, and 1 when there isn't.
			return rsbInstruction

		case 0x000E:
			// 8XYE - Shifts VX left by one. VF is set to the most significant bit of VX before the shift.
			return shlInstruction
		}
		return unsupportedInstruction

	case 0x9000:
		// 9XY0 - Skips the next instruction if VX doesn't equal VY
		return skne2Instruction

	case 0xA000:
		// ANNN - Sets I to the address NNN
		return mviInstruction

	case 0xB000:
		// BNNN - Jumps to the address NNN plus V0
		return jmiInstruction

	case 0xC000:
		// CXNN - Sets VX to a random number, masked by NN
		return randInstruction

	case 0xD000:
		// DXYN - Draws an 8xN sprite read from I at (VX, VY), wrapping at
		// the screen edges. VF is set to 1 if any set pixel is cleared.
		return spriteInstruction

	case 0xE000:
		switch opcode & 0x00FF {
		case 0x009E:
			// EX9E - Skips the next instruction if the key stored in VX is pressed
			return skprInstruction

		case 0x00A1:
			// EXA1 - Skips the next instruction if the key stored in VX isn't pressed
			return skupInstruction
		}

	case 0xF000:
		switch opcode & 0x00FF {
		case 0x0007:
			// FX07 - Sets VX to the value of the delay timer
			return gdelayInstruction

		case 0x000A:
			// FX0A - A key press is awaited, and then stored in VX
			return keyInstruction

		case 0x0015:
			// FX15 - Sets the delay timer to VX
			return sdelayInstruction

		case 0x0018:
			// FX18 - Sets the sound timer to VX
			return ssoundInstruction

		case 0x001E:
			// FX1E - Adds VX to I. VF is left untouched.
			return adiInstruction

		case 0x0029:
			// FX29 - Sets I to the location of the 4x5 font sprite for the
			// hex digit in VX
			return fontInstruction

		case 0x0033:
			// FX33 - Stores the BCD representation of VX at I, I+1 and I+2
			return bcdInstruction

		case 0x0055:
			// FX55 - Stores V0 to VX in memory starting at address I
			return strInstruction

		case 0x0065:
			// FX65 - Reads memory starting at address I into V0...VX
			return ldrInstruction
		}
	}

	return unknownInstruction
}

func registerPair(op string) instruction {
	return instruction{
		Name: func(opcode uint16) string {
			return fmt.Sprintf("%s v%x, v%x", op, regX(opcode), regY(opcode))
		},
	}
}

func registerImm(op string) instruction {
	return instruction{
		Name: func(opcode uint16) string {
			return fmt.Sprintf("%s v%x, %d", op, regX(opcode), imm8(opcode))
		},
	}
}

func register(op string) instruction {
	return instruction{
		Name: func(opcode uint16) string {
			return fmt.Sprintf("%s v%x", op, regX(opcode))
		},
	}
}

func address(op string) instruction {
	return instruction{
		Name: func(opcode uint16) string {
			return fmt.Sprintf("%s 0x%04x", op, addr(opcode))
		},
	}
}

func (i instruction) with(execute func(vm *VM, opcode uint16) error) instruction {
	i.Execute = execute
	return i
}

// skipIf advances over the following instruction when cond holds.
func (vm *VM) skipIf(cond bool) {
	if cond {
		vm.pc += InstructionSize
	}
}

// setWithFlag stores v into VX and then the flag into VF, so VF holds the
// flag even when X is F.
func (vm *VM) setWithFlag(vX uint16, v uint8, flag bool) {
	vm.registers[vX] = v
	if flag {
		vm.registers[0x0F] = 1
	} else {
		vm.registers[0x0F] = 0
	}
}

var (
	// 00E0	cls	Clear the screen
	clsInstruction = instruction{
		Name: func(opcode uint16) string {
			return "cls"
		},
		Execute: func(vm *VM, opcode uint16) error {
			vm.gfx = [ScreenWidth * ScreenHeight]uint8{}
			vm.drawFlag = true
			return nil
		},
	}

	// 00EE	rts	return from subroutine call
	rtsInstruction = instruction{
		Name: func(opcode uint16) string {
			return "rts"
		},
		Execute: func(vm *VM, opcode uint16) error {
			pc, err := vm.stack.pop()
			if err != nil {
				return fmt.Errorf("rts at 0x%04x: %w", vm.pc-InstructionSize, err)
			}
			vm.pc = pc
			return nil
		},
	}

	// 1xxx	jmp xxx	jump to address xxx
	jmpInstruction = address("jmp").with(func(vm *VM, opcode uint16) error {
		vm.pc = addr(opcode)
		return nil
	})

	// 2xxx	jsr xxx	jump to subroutine at address xxx
	jsrInstruction = address("jsr").with(func(vm *VM, opcode uint16) error {
		if err := vm.stack.push(vm.pc); err != nil {
			return fmt.Errorf("jsr at 0x%04x: %w", vm.pc-InstructionSize, err)
		}
		vm.pc = addr(opcode)
		return nil
	})

	// 3rxx	skeq vr,xx	skip if register r = constant
	skeq1Instruction = registerImm("skeq").with(func(vm *VM, opcode uint16) error {
		vm.skipIf(vm.registers[regX(opcode)] == imm8(opcode))
		return nil
	})

	// 4rxx	skne vr,xx	skip if register r <> constant
	skne1Instruction = registerImm("skne").with(func(vm *VM, opcode uint16) error {
		vm.skipIf(vm.registers[regX(opcode)] != imm8(opcode))
		return nil
	})

	// 5ry0	skeq vr,vy	skip if register r = register y
	skeq2Instruction = registerPair("skeq").with(func(vm *VM, opcode uint16) error {
		vm.skipIf(vm.registers[regX(opcode)] == vm.registers[regY(opcode)])
		return nil
	})

	// 6rxx	mov vr,xx	move constant to register r
	mov1Instruction = registerImm("mov").with(func(vm *VM, opcode uint16) error {
		vm.registers[regX(opcode)] = imm8(opcode)
		return nil
	})

	// 7rxx	add vr,xx	add constant to register r	No carry generated
	add1Instruction = registerImm("add").with(func(vm *VM, opcode uint16) error {
		vm.registers[regX(opcode)] += imm8(opcode)
		return nil
	})

	// 8ry0	mov vr,vy	move register vy into vr
	mov2Instruction = registerPair("mov").with(func(vm *VM, opcode uint16) error {
		vm.registers[regX(opcode)] = vm.registers[regY(opcode)]
		return nil
	})

	// 8ry1	or rx,ry	or register vy into register vx
	orInstruction = registerPair("or").with(func(vm *VM, opcode uint16) error {
		vm.registers[regX(opcode)] |= vm.registers[regY(opcode)]
		return nil
	})

	// 8ry2	and rx,ry	and register vy into register vx
	andInstruction = registerPair("and").with(func(vm *VM, opcode uint16) error {
		vm.registers[regX(opcode)] &= vm.registers[regY(opcode)]
		return nil
	})

	// 8ry3	xor rx,ry	exclusive or register ry into register rx
	xorInstruction = registerPair("xor").with(func(vm *VM, opcode uint16) error {
		vm.registers[regX(opcode)] ^= vm.registers[regY(opcode)]
		return nil
	})

	// 8ry4	add vr,vy	add register vy to vr,carry in vf
	add2Instruction = registerPair("add").with(func(vm *VM, opcode uint16) error {
		vX := regX(opcode)
		x := vm.registers[vX]
		y := vm.registers[regY(opcode)]

		vm.setWithFlag(vX, x+y, uint16(x)+uint16(y) > 0xFF)
		return nil
	})

	// 8ry5	sub vr,vy	subtract register vy from vr	vf set to 1 if no borrow
	subInstruction = registerPair("sub").with(func(vm *VM, opcode uint16) error {
		vX := regX(opcode)
		x := vm.registers[vX]
		y := vm.registers[regY(opcode)]

		vm.setWithFlag(vX, x-y, x >= y)
		return nil
	})

	// 8r06	shr vr	shift register vr right, bit 0 goes into register vf
	shrInstruction = register("shr").with(func(vm *VM, opcode uint16) error {
		vX := regX(opcode)
		x := vm.registers[vX]

		vm.setWithFlag(vX, x>>1, x&0x1 == 1)
		return nil
	})

	// 8ry7	rsb vr,vy	subtract register vr from register vy, result in vr	vf set to 1 if no borrow
	rsbInstruction = registerPair("rsb").with(func(vm *VM, opcode uint16) error {
		vX := regX(opcode)
		x := vm.registers[vX]
		y := vm.registers[regY(opcode)]

		vm.setWithFlag(vX, y-x, y >= x)
		return nil
	})

	// 8r0e	shl vr	shift register vr left, bit 7 goes into register vf
	shlInstruction = register("shl").with(func(vm *VM, opcode uint16) error {
		vX := regX(opcode)
		x := vm.registers[vX]

		vm.setWithFlag(vX, x<<1, x>>7 == 1)
		return nil
	})

	// 9ry0	skne vr,vy	skip if register r <> register y
	skne2Instruction = registerPair("skne").with(func(vm *VM, opcode uint16) error {
		vm.skipIf(vm.registers[regX(opcode)] != vm.registers[regY(opcode)])
		return nil
	})

	// axxx	mvi xxx	Load index register with constant xxx
	mviInstruction = address("mvi").with(func(vm *VM, opcode uint16) error {
		vm.index = addr(opcode)
		return nil
	})

	// bxxx	jmi xxx	Jump to address xxx+register v0
	jmiInstruction = address("jmi").with(func(vm *VM, opcode uint16) error {
		vm.pc = addr(opcode) + uint16(vm.registers[0])
		return nil
	})

	// crxx	rand vr,xx	vr = random byte masked by xx
	randInstruction = registerImm("rand").with(func(vm *VM, opcode uint16) error {
		x := uint8(vm.rng.IntN(256))
		vm.registers[regX(opcode)] = x & imm8(opcode)
		return nil
	})

	// drys	sprite vr,vy,s	Draw sprite at screen location vr,vy height s
	// Sprites stored in memory at location in index register, 8 bits wide.
	// Wraps around the screen.
	// If when drawn, clears a pixel, vf is set to 1 otherwise it is zero.
	// All drawing is xor drawing (e.g. it toggles the screen pixels)
	spriteInstruction = instruction{
		Name: func(opcode uint16) string {
			return fmt.Sprintf("sprite v%x, v%x, %d", regX(opcode), regY(opcode), opcode&0x000F)
		},
		Execute: func(vm *VM, opcode uint16) error {
			xLocation := uint16(vm.registers[regX(opcode)]) % ScreenWidth
			yLocation := uint16(vm.registers[regY(opcode)]) % ScreenHeight
			height := opcode & 0x000F

			vm.registers[0x0F] = 0

			for y := uint16(0); y < height; y++ {
				pixel := vm.read(vm.index + y)

				const width = uint16(8)
				for x := uint16(0); x < width; x++ {
					mask := uint8(0x80 >> x)
					if pixel&mask == 0 {
						continue
					}

					screenAddr := getScreenAddr(x+xLocation, y+yLocation)
					if vm.gfx[screenAddr] != 0 {
						vm.registers[0x0F] = 1
					}
					vm.gfx[screenAddr] ^= 1
				}
			}

			vm.drawFlag = true
			return nil
		},
	}

	// ek9e	skpr k	skip if key (register rk) pressed
	skprInstruction = register("skpr").with(func(vm *VM, opcode uint16) error {
		key := vm.registers[regX(opcode)] & 0x0F
		vm.skipIf(vm.keypad[key])
		return nil
	})

	// eka1	skup k	skip if key (register rk) not pressed
	skupInstruction = register("skup").with(func(vm *VM, opcode uint16) error {
		key := vm.registers[regX(opcode)] & 0x0F
		vm.skipIf(!vm.keypad[key])
		return nil
	})

	// fr07	gdelay vr	get delay timer into vr
	gdelayInstruction = register("gdelay").with(func(vm *VM, opcode uint16) error {
		vm.registers[regX(opcode)] = vm.timers.delay
		return nil
	})

	// fr0a	key vr	wait for keypress, put key in register vr
	keyInstruction = register("key").with(func(vm *VM, opcode uint16) error {
		if key, ok := vm.awaitKey(); ok {
			vm.registers[regX(opcode)] = uint8(key)
		}
		return nil
	})

	// fr15	sdelay vr	set the delay timer to vr
	sdelayInstruction = register("sdelay").with(func(vm *VM, opcode uint16) error {
		vm.timers.delay = vm.registers[regX(opcode)]
		return nil
	})

	// fr18	ssound vr	set the sound timer to vr
	ssoundInstruction = register("ssound").with(func(vm *VM, opcode uint16) error {
		vm.timers.sound = vm.registers[regX(opcode)]
		return nil
	})

	// fr1e	adi vr	add register vr to the index register
	adiInstruction = register("adi").with(func(vm *VM, opcode uint16) error {
		vm.index += uint16(vm.registers[regX(opcode)])
		return nil
	})

	// fr29	font vr	point I to the sprite for hexadecimal character in vr	Sprite is 5 bytes high
	fontInstruction = register("font").with(func(vm *VM, opcode uint16) error {
		vm.index = uint16(vm.registers[regX(opcode)]) * FontGlyphSize
		return nil
	})

	// fr33	bcd vr	store the bcd representation of register vr at location I,I+1,I+2	Doesn't change I
	bcdInstruction = register("bcd").with(func(vm *VM, opcode uint16) error {
		x := vm.registers[regX(opcode)]

		vm.write(vm.index, x/100)
		vm.write(vm.index+1, (x/10)%10)
		vm.write(vm.index+2, x%10)
		return nil
	})

	// fr55	str v0-vr	store registers v0-vr at location I onwards	I = I + r + 1
	strInstruction = instruction{
		Name: func(opcode uint16) string {
			return fmt.Sprintf("str %d", regX(opcode))
		},
		Execute: func(vm *VM, opcode uint16) error {
			n := regX(opcode)

			for i := uint16(0); i <= n; i++ {
				vm.write(vm.index+i, vm.registers[i])
			}

			// On the original interpreter, when the operation is done, I = I + X + 1.
			vm.index += n + 1
			return nil
		},
	}

	// fr65	ldr v0-vr	load registers v0-vr from location I onwards	I = I + r + 1
	ldrInstruction = instruction{
		Name: func(opcode uint16) string {
			return fmt.Sprintf("ldr %d", regX(opcode))
		},
		Execute: func(vm *VM, opcode uint16) error {
			n := regX(opcode)

			for i := uint16(0); i <= n; i++ {
				vm.registers[i] = vm.read(vm.index + i)
			}

			vm.index += n + 1
			return nil
		},
	}

	unsupportedInstruction = instruction{
		Name: func(opcode uint16) string {
			return fmt.Sprintf("unsupported 0x%04X", opcode)
		},
		Execute: func(vm *VM, opcode uint16) error {
			return &DecodeError{PC: vm.pc - InstructionSize, Opcode: opcode, Variant: true}
		},
	}

	unknownInstruction = instruction{
		Name: func(opcode uint16) string {
			return fmt.Sprintf("unknown 0x%04X", opcode)
		},
		Execute: func(vm *VM, opcode uint16) error {
			return &DecodeError{PC: vm.pc - InstructionSize, Opcode: opcode}
		},
	}
)

func getScreenAddr(x, y uint16) uint16 {
	x %= ScreenWidth
	y %= ScreenHeight

	return ScreenWidth*y + x
}
