// Package encoder is AluVM's external-facing text codec: turning a
// library's code segment into readable mnemonic lines. It is a
// separate decode path from package vm's own internal decodeInstruction
// (vm/opcodes.go) — the executor never imports this package, and this
// package never reaches into the executor's unexported decode helpers;
// both simply agree on the same wire format (spec §6), the way the
// teacher keeps its own encoder package independent of the interpreter
// loop in vm/executor.go.
package encoder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aluvm/aluvm/vm"
)

// Line is one disassembled instruction: its byte offset, mnemonic, and
// rendered operand text.
type Line struct {
	Offset   uint16
	Mnemonic string
	Operands string
}

func (l Line) String() string {
	if l.Operands == "" {
		return fmt.Sprintf("%04x: %s", l.Offset, l.Mnemonic)
	}
	return fmt.Sprintf("%04x: %s %s", l.Offset, l.Mnemonic, l.Operands)
}

// Disassemble renders every instruction in lib's code segment as text,
// starting at offset 0 and reading until the code segment is exhausted.
func Disassemble(lib *vm.Library) ([]Line, error) {
	cursor := vm.NewCursor(lib)
	var lines []Line

	for !cursor.AtEnd() {
		pos := cursor.Pos()
		opByte, err := cursor.ReadByte()
		if err != nil {
			return lines, &EncodingError{Offset: pos, Message: "instruction truncated at end of code segment", Wrapped: ErrTruncated}
		}
		op := vm.Opcode(opByte)

		text, err := disassembleOperands(cursor, op)
		if err != nil {
			return lines, WrapEncodingError(pos, opByte, err)
		}

		name, ok := mnemonics[op]
		if !ok {
			name = fmt.Sprintf("db 0x%02x", opByte)
		}
		lines = append(lines, Line{Offset: pos, Mnemonic: name, Operands: text})
	}
	return lines, nil
}

func regRefText(ref vm.RegRef) string {
	if ref.Family == vm.FamilyS {
		return fmt.Sprintf("s[%d]", ref.Index)
	}
	return fmt.Sprintf("%s%d[%d]", familyLetter(ref.Family), ref.Bank, ref.Index)
}

// disassembleOperands reads and renders an instruction's operand bytes,
// mirroring the width/shape of each case in vm/opcodes.go's
// decodeInstruction without sharing code with it.
func disassembleOperands(c *vm.Cursor, op vm.Opcode) (string, error) {
	switch op {
	case vm.OpFail, vm.OpSucc, vm.OpRet, vm.OpStInv, vm.OpCurve25519, vm.OpNop:
		return "", nil

	case vm.OpJmp, vm.OpJif:
		off, err := c.ReadWord()
		return fmt.Sprintf("0x%04x", off), err

	case vm.OpRoutine:
		off, err := c.ReadWord()
		return fmt.Sprintf("0x%04x", off), err

	case vm.OpCall, vm.OpExec:
		depIdx, err := c.ReadRef()
		if err != nil {
			return "", err
		}
		off, err := c.ReadWord()
		return fmt.Sprintf("dep[%d] 0x%04x", depIdx, off), err

	case vm.OpClrA:
		ref, err := c.ReadRegRef(vm.FamilyA)
		return regRefText(ref), err
	case vm.OpClrF:
		ref, err := c.ReadRegRef(vm.FamilyF)
		return regRefText(ref), err
	case vm.OpClrR:
		ref, err := c.ReadRegRef(vm.FamilyR)
		return regRefText(ref), err

	case vm.OpPutA, vm.OpPutIfA:
		return disassemblePut(c, vm.FamilyA)
	case vm.OpPutF, vm.OpPutIfF:
		return disassemblePut(c, vm.FamilyF)
	case vm.OpPutR, vm.OpPutIfR:
		return disassemblePut(c, vm.FamilyR)

	case vm.OpMov, vm.OpDup, vm.OpSwp, vm.OpCpy:
		return disassembleFamilyPair(c)
	case vm.OpSpy:
		a, err := c.ReadRegRef(vm.FamilyA)
		if err != nil {
			return "", err
		}
		r, err := c.ReadRegRef(vm.FamilyR)
		return fmt.Sprintf("%s %s", regRefText(a), regRefText(r)), err
	case vm.OpCnv:
		a, err := c.ReadRegRef(vm.FamilyA)
		if err != nil {
			return "", err
		}
		b, err := c.ReadRegRef(vm.FamilyA)
		if err != nil {
			return "", err
		}
		signed, err := c.ReadBits(1)
		return fmt.Sprintf("%s %s signed=%d", regRefText(a), regRefText(b), signed), err
	case vm.OpCnvAF:
		a, err := c.ReadRegRef(vm.FamilyA)
		if err != nil {
			return "", err
		}
		f, err := c.ReadRegRef(vm.FamilyF)
		return fmt.Sprintf("%s %s", regRefText(a), regRefText(f)), err
	case vm.OpCnvFA:
		f, err := c.ReadRegRef(vm.FamilyF)
		if err != nil {
			return "", err
		}
		a, err := c.ReadRegRef(vm.FamilyA)
		return fmt.Sprintf("%s %s", regRefText(f), regRefText(a)), err

	case vm.OpGt, vm.OpLt:
		return disassembleFamilyPair(c)
	case vm.OpEq:
		a, err := c.ReadRegRef(vm.FamilyA)
		if err != nil {
			return "", err
		}
		b, err := c.ReadRegRef(vm.FamilyA)
		if err != nil {
			return "", err
		}
		modes, err := c.ReadBits(2)
		return fmt.Sprintf("%s %s modes=%d", regRefText(a), regRefText(b), modes), err
	case vm.OpIfZero, vm.OpIfNotSet:
		ref, err := c.ReadRegRef(vm.FamilyA)
		return regRefText(ref), err
	case vm.OpStMerge:
		mode, err := c.ReadBits(2)
		if err != nil {
			return "", err
		}
		ref, err := c.ReadRegRef(vm.FamilyA)
		return fmt.Sprintf("mode=%d %s", mode, regRefText(ref)), err

	case vm.OpNegA, vm.OpAbsA:
		ref, err := c.ReadRegRef(vm.FamilyA)
		return regRefText(ref), err
	case vm.OpNegF, vm.OpAbsF:
		ref, err := c.ReadRegRef(vm.FamilyF)
		return regRefText(ref), err
	case vm.OpAddA, vm.OpSubA, vm.OpMulA, vm.OpDivA, vm.OpRemA:
		return disassembleArith3(c, vm.FamilyA, 2)
	case vm.OpAddF, vm.OpSubF, vm.OpMulF, vm.OpDivF:
		return disassembleArith3(c, vm.FamilyF, 2)
	case vm.OpStp:
		ref, err := c.ReadRegRef(vm.FamilyA)
		if err != nil {
			return "", err
		}
		raw, err := c.ReadWord()
		if err != nil {
			return "", err
		}
		wrap, err := c.ReadBits(1)
		return fmt.Sprintf("%s %d wrap=%d", regRefText(ref), int16(raw), wrap), err

	case vm.OpAnd, vm.OpOr, vm.OpXor:
		return disassembleBitwise3(c)
	case vm.OpNot, vm.OpRev:
		fam, err := bitwiseFamily(c)
		if err != nil {
			return "", err
		}
		ref, err := c.ReadRegRef(fam)
		return regRefText(ref), err
	case vm.OpShl, vm.OpShrA, vm.OpShrR, vm.OpScl, vm.OpScr:
		return disassembleShift(c, op)

	case vm.OpPutS:
		idx, err := c.ReadByte()
		if err != nil {
			return "", err
		}
		data, _, err := c.ReadBytes()
		return fmt.Sprintf("s[%d] %d bytes", idx, len(data)), err
	case vm.OpMovS, vm.OpSwpS, vm.OpEqS:
		a, b, err := readSPair(c)
		return fmt.Sprintf("s[%d] s[%d]", a, b), err
	case vm.OpJoinS:
		a, b, err := readSPair(c)
		if err != nil {
			return "", err
		}
		dst, err := c.ReadByte()
		return fmt.Sprintf("s[%d] s[%d] s[%d]", a, b, dst), err
	case vm.OpFillS:
		idx, err := c.ReadByte()
		if err != nil {
			return "", err
		}
		from, err := c.ReadWord()
		if err != nil {
			return "", err
		}
		to, err := c.ReadWord()
		if err != nil {
			return "", err
		}
		value, err := c.ReadByte()
		if err != nil {
			return "", err
		}
		extend, err := c.ReadBits(1)
		return fmt.Sprintf("s[%d] [%d:%d]=0x%02x extend=%d", idx, from, to, value, extend), err
	case vm.OpLenS:
		src, err := c.ReadByte()
		if err != nil {
			return "", err
		}
		dst, err := disassembleAorRRef(c)
		return fmt.Sprintf("s[%d] %s", src, dst), err
	case vm.OpCntS:
		src, err := c.ReadByte()
		if err != nil {
			return "", err
		}
		byteReg, err := c.ReadRegRef(vm.FamilyA)
		if err != nil {
			return "", err
		}
		dst, err := disassembleAorRRef(c)
		return fmt.Sprintf("s[%d] %s %s", src, regRefText(byteReg), dst), err
	case vm.OpConS:
		a, b, err := readSPair(c)
		if err != nil {
			return "", err
		}
		n, err := c.ReadWord()
		if err != nil {
			return "", err
		}
		dstOff, err := c.ReadRegRef(vm.FamilyA)
		if err != nil {
			return "", err
		}
		dstLen, err := c.ReadRegRef(vm.FamilyA)
		return fmt.Sprintf("s[%d] s[%d] n=%d %s %s", a, b, n, regRefText(dstOff), regRefText(dstLen)), err
	case vm.OpFindS:
		a, b, err := readSPair(c)
		return fmt.Sprintf("s[%d] s[%d]", a, b), err
	case vm.OpExtrS:
		src, err := c.ReadByte()
		if err != nil {
			return "", err
		}
		dst, err := disassembleAorRRef(c)
		if err != nil {
			return "", err
		}
		offset, err := disassembleAorRRef(c)
		return fmt.Sprintf("s[%d] %s %s", src, dst, offset), err
	case vm.OpInjS:
		dst, err := c.ReadByte()
		if err != nil {
			return "", err
		}
		src, err := disassembleAorRRef(c)
		if err != nil {
			return "", err
		}
		offset, err := disassembleAorRRef(c)
		return fmt.Sprintf("s[%d] %s %s", dst, src, offset), err
	case vm.OpSpltS:
		src, err := c.ReadByte()
		if err != nil {
			return "", err
		}
		offset, err := c.ReadWord()
		if err != nil {
			return "", err
		}
		dstA, err := c.ReadByte()
		if err != nil {
			return "", err
		}
		dstB, err := c.ReadByte()
		return fmt.Sprintf("s[%d] %d s[%d] s[%d]", src, offset, dstA, dstB), err
	case vm.OpInsS:
		src, err := c.ReadByte()
		if err != nil {
			return "", err
		}
		offset, err := c.ReadWord()
		if err != nil {
			return "", err
		}
		data, _, err := c.ReadBytes()
		return fmt.Sprintf("s[%d] %d %d bytes", src, offset, len(data)), err
	case vm.OpDelS:
		src, err := c.ReadByte()
		if err != nil {
			return "", err
		}
		from, err := c.ReadWord()
		if err != nil {
			return "", err
		}
		to, err := c.ReadWord()
		return fmt.Sprintf("s[%d] [%d:%d]", src, from, to), err
	case vm.OpRevS:
		idx, err := c.ReadByte()
		return fmt.Sprintf("s[%d]", idx), err

	case vm.OpRipemd, vm.OpSha256, vm.OpSha512:
		src, dst, err := readSPair(c)
		return fmt.Sprintf("s[%d] s[%d]", src, dst), err

	case vm.OpSecp256kGen:
		scalar, err := c.ReadRegRef(vm.FamilyR)
		if err != nil {
			return "", err
		}
		x, err := c.ReadRegRef(vm.FamilyR)
		if err != nil {
			return "", err
		}
		y, err := c.ReadRegRef(vm.FamilyR)
		return fmt.Sprintf("%s %s %s", regRefText(scalar), regRefText(x), regRefText(y)), err
	case vm.OpSecp256kMul:
		return disassembleArith3(c, vm.FamilyR, 3)
	case vm.OpSecp256kAdd:
		regs := make([]string, 0, 6)
		for i := 0; i < 6; i++ {
			ref, err := c.ReadRegRef(vm.FamilyR)
			if err != nil {
				return "", err
			}
			regs = append(regs, regRefText(ref))
		}
		return strings.Join(regs, " "), nil
	case vm.OpSecp256kNeg:
		x, err := c.ReadRegRef(vm.FamilyR)
		if err != nil {
			return "", err
		}
		y, err := c.ReadRegRef(vm.FamilyR)
		return fmt.Sprintf("%s %s", regRefText(x), regRefText(y)), err
	}

	return "", nil
}

func disassemblePut(c *vm.Cursor, family vm.Family) (string, error) {
	ref, err := c.ReadRegRef(family)
	if err != nil {
		return "", err
	}
	width := vm.BankLayout(family, ref.Bank).Width()
	data, _, err := c.ReadFixed(width)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s 0x%s", regRefText(ref), hexString(data)), nil
}

func disassembleFamilyPair(c *vm.Cursor) (string, error) {
	family, err := c.ReadBits(2)
	if err != nil {
		return "", err
	}
	a, err := c.ReadRegRef(vm.Family(family))
	if err != nil {
		return "", err
	}
	b, err := c.ReadRegRef(vm.Family(family))
	return fmt.Sprintf("%s %s", regRefText(a), regRefText(b)), err
}

func disassembleArith3(c *vm.Cursor, family vm.Family, flagBits int) (string, error) {
	a, err := c.ReadRegRef(family)
	if err != nil {
		return "", err
	}
	b, err := c.ReadRegRef(family)
	if err != nil {
		return "", err
	}
	dst, err := c.ReadRegRef(family)
	if err != nil {
		return "", err
	}
	if flagBits == 3 {
		x, err := c.ReadRegRef(family)
		if err != nil {
			return "", err
		}
		y, err := c.ReadRegRef(family)
		return fmt.Sprintf("%s %s %s %s %s", regRefText(a), regRefText(b), regRefText(dst), regRefText(x), regRefText(y)), err
	}
	flags, err := c.ReadBits(flagBits)
	return fmt.Sprintf("%s %s %s flags=%d", regRefText(a), regRefText(b), regRefText(dst), flags), err
}

func bitwiseFamily(c *vm.Cursor) (vm.Family, error) {
	bit, err := c.ReadBits(1)
	if err != nil {
		return vm.FamilyA, err
	}
	if bit == 1 {
		return vm.FamilyR, nil
	}
	return vm.FamilyA, nil
}

func disassembleBitwise3(c *vm.Cursor) (string, error) {
	fam, err := bitwiseFamily(c)
	if err != nil {
		return "", err
	}
	a, err := c.ReadRegRef(fam)
	if err != nil {
		return "", err
	}
	b, err := c.ReadRegRef(fam)
	if err != nil {
		return "", err
	}
	dst, err := c.ReadRegRef(fam)
	return fmt.Sprintf("%s %s %s", regRefText(a), regRefText(b), regRefText(dst)), err
}

func disassembleShift(c *vm.Cursor, op vm.Opcode) (string, error) {
	fam, err := bitwiseFamily(c)
	if err != nil {
		return "", err
	}
	src, err := c.ReadRegRef(fam)
	if err != nil {
		return "", err
	}
	dst, err := c.ReadRegRef(fam)
	if err != nil {
		return "", err
	}
	shiftReg, err := c.ReadBits(5)
	if err != nil {
		return "", err
	}
	wide, err := c.ReadBits(1)
	if err != nil {
		return "", err
	}
	base := fmt.Sprintf("%s %s shiftreg=%d wide=%d", regRefText(src), regRefText(dst), shiftReg, wide)
	if op == vm.OpShrA {
		signBit, err := c.ReadBits(1)
		return base + fmt.Sprintf(" signed=%d", signBit), err
	}
	return base, nil
}

func disassembleAorRRef(c *vm.Cursor) (string, error) {
	bit, err := c.ReadBits(1)
	if err != nil {
		return "", err
	}
	fam := vm.FamilyA
	if bit == 1 {
		fam = vm.FamilyR
	}
	ref, err := c.ReadRegRef(fam)
	return regRefText(ref), err
}

func readSPair(c *vm.Cursor) (byte, byte, error) {
	a, err := c.ReadByte()
	if err != nil {
		return 0, 0, err
	}
	b, err := c.ReadByte()
	return a, b, err
}

func hexString(b []byte) string {
	var sb strings.Builder
	for _, x := range b {
		if x < 16 {
			sb.WriteByte('0')
		}
		sb.WriteString(strconv.FormatUint(uint64(x), 16))
	}
	return sb.String()
}
