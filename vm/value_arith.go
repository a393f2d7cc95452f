package vm

import "math/big"

// assertSameLayout panics on a layout mismatch: spec §4.1 "Operands must
// share layout; differing layouts is a programmer error" — this is an
// invariant enforced by instruction decode (operands of a binary opcode are
// always read from the same bank), never reachable from untrusted bytecode.
func assertSameLayout(a, b Value) {
	if a.layout != b.layout {
		panic("vm: mismatched layouts in binary operation")
	}
}

// IntAdd implements spec §4.1 int_add. ok is false when the result failed
// to fit and flags.Wrap was unset ("none").
func IntAdd(a, b Value, flags IntFlags) (Value, bool) {
	return intBinOp(a, b, flags, func(x, y *big.Int) *big.Int { return new(big.Int).Add(x, y) })
}

// IntSub implements spec §4.1 int_sub.
func IntSub(a, b Value, flags IntFlags) (Value, bool) {
	return intBinOp(a, b, flags, func(x, y *big.Int) *big.Int { return new(big.Int).Sub(x, y) })
}

// IntMul implements spec §4.1 int_mul.
func IntMul(a, b Value, flags IntFlags) (Value, bool) {
	return intBinOp(a, b, flags, func(x, y *big.Int) *big.Int { return new(big.Int).Mul(x, y) })
}

// IntDiv implements spec §4.1 int_div, including the Euclidean-vs-truncating
// split for signed division under wrap (spec §8 scenario 3).
func IntDiv(a, b Value, flags IntFlags) (Value, bool) {
	assertSameLayout(a, b)
	x, y := a.bigInt(), b.bigInt()
	if y.Sign() == 0 {
		return Zero(a.layout), false
	}
	var q *big.Int
	if flags.Signed && flags.Wrap {
		q, _ = euclideanDivMod(x, y)
	} else {
		q = new(big.Int).Quo(x, y) // truncation toward zero
	}
	return finishIntOp(q, a.layout, flags)
}

// IntRem implements spec §4.4.5 rem. Division by zero yields none.
func IntRem(a, b Value, flags IntFlags) (Value, bool) {
	assertSameLayout(a, b)
	x, y := a.bigInt(), b.bigInt()
	if y.Sign() == 0 {
		return Zero(a.layout), false
	}
	var r *big.Int
	if flags.Signed && flags.Wrap {
		_, r = euclideanDivMod(x, y)
	} else {
		r = new(big.Int).Rem(x, y)
	}
	return finishIntOp(r, a.layout, flags)
}

// euclideanDivMod returns floor-division quotient and the nonnegative
// Euclidean remainder (spec §4.1 "Euclidean (floor) division semantics").
func euclideanDivMod(x, y *big.Int) (*big.Int, *big.Int) {
	q, r := new(big.Int), new(big.Int)
	q.QuoRem(x, y, r)
	if r.Sign() < 0 {
		if y.Sign() > 0 {
			q.Sub(q, big.NewInt(1))
			r.Add(r, y)
		} else {
			q.Add(q, big.NewInt(1))
			r.Sub(r, y)
		}
	}
	return q, r
}

func intBinOp(a, b Value, flags IntFlags, op func(x, y *big.Int) *big.Int) (Value, bool) {
	assertSameLayout(a, b)
	n := op(a.bigInt(), b.bigInt())
	return finishIntOp(n, a.layout, flags)
}

// finishIntOp reshapes a widened result back to layout, honoring wrap.
func finishIntOp(n *big.Int, layout Layout, flags IntFlags) (Value, bool) {
	if fitsLayout(n, layout) {
		return fromBigInt(n, layout), true
	}
	if !flags.Wrap {
		return Zero(layout), false
	}
	return fromBigInt(n, layout), true
}

// stpValue implements spec §4.4.5 stp: increments a register by a signed
// 16-bit step, with full integer overflow discipline (reuses IntAdd).
func stpValue(a Value, step int16, flags IntFlags) (Value, bool) {
	stepLayout := IntLayout(true, 2)
	var raw [2]byte
	raw[0] = byte(uint16(step))
	raw[1] = byte(uint16(step) >> 8)
	stepVal := FromSlice(raw[:], stepLayout)
	widened := stepVal
	widened.Reshape(a.layout)
	return IntAdd(a, widened, flags)
}

// ApplyingSign implements spec §4.1 applying_sign. On unsigned integers it
// returns none; on the minimum signed value it returns none; on floats it
// flips the sign bit.
func ApplyingSign(v Value, negative bool) (Value, bool) {
	if v.layout.IsFloat {
		if unsupportedFloatLayout(v.layout.Float) {
			return Zero(v.layout), false
		}
		out := v.ToClean()
		w := v.layout.Width()
		wantNeg := negative
		curNeg := out.bytes[w-1]&0x80 != 0
		if curNeg != wantNeg {
			out.bytes[w-1] ^= 0x80
		}
		return out, true
	}
	if !v.layout.Signed {
		return Zero(v.layout), false
	}
	n := v.bigInt()
	want := new(big.Int).Abs(n)
	if negative {
		want.Neg(want)
	}
	if !fitsLayout(want, v.layout) {
		return Zero(v.layout), false
	}
	return fromBigInt(want, v.layout), true
}

// Abs implements spec §4.1 abs: "returns none precisely when
// applying_sign(false) would".
func Abs(v Value) (Value, bool) {
	return ApplyingSign(v, false)
}

// Neg negates v (used by isa_arith `neg`): equivalent to applying the
// opposite of the current sign.
func Neg(v Value) (Value, bool) {
	return ApplyingSign(v, v.IsPositive())
}

// Compare implements spec §4.1's total order across values of the same
// layout: numeric for integers (including signed/unsigned width-matched
// cross comparison used by eq), IEEE order for floats (never comparing
// against NaN, since NaN is never stored).
func Compare(a, b Value) CmpOrdering {
	if a.layout.IsFloat || b.layout.IsFloat {
		fa, fb := floatFromBits(a), floatFromBits(b)
		switch {
		case fa < fb:
			return Less
		case fa > fb:
			return Greater
		default:
			return Equal
		}
	}
	return CmpOrdering(a.bigInt().Cmp(b.bigInt()))
}

// RoundingCompare implements spec §4.1 rounding_cmp: masks the
// least-significant mantissa bit before comparing, producing the "nearly
// equal" relation used by FloatEq::Rounding.
func RoundingCompare(a, b Value) CmpOrdering {
	if !a.layout.IsFloat {
		return Compare(a, b)
	}
	spec := floatSpecs[a.layout.Float]
	ra, rb := a.ToClean(), b.ToClean()
	if spec.bits > 0 {
		maskLSB(&ra)
		maskLSB(&rb)
	}
	return Compare(ra, rb)
}

func maskLSB(v *Value) {
	w := v.layout.Width()
	if w == 0 {
		return
	}
	v.bytes[0] &^= 0x01
}
