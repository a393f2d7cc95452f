package vm

import (
	"math"
	"math/big"
)

// floatSpec describes a float layout's IEEE-style bit packing: one sign
// bit, expBits biased-exponent bits, manBits mantissa bits (fraction only;
// leading bit is implicit except for X87Extended80, which stores it
// explicitly per the historical x87 format). hasInf controls whether
// overflow is representable as infinity (all IEEE layouts) or must saturate
// at the maximum finite magnitude (bfloat16, spec §4.1 "Float arithmetic").
type floatSpec struct {
	bits    int
	expBits int
	manBits int
	bias    int64
	hasInf  bool
}

var floatSpecs = [8]floatSpec{
	BFloat16:      {16, 8, 7, 127, false},
	IeeeHalf:      {16, 5, 10, 15, true},
	IeeeSingle:    {32, 8, 23, 127, true},
	IeeeDouble:    {64, 11, 52, 1023, true},
	X87Extended80: {80, 15, 64, 16383, true},
	IeeeQuad128:   {128, 15, 112, 16383, true},
	IeeeOct256:    {},
	Tapered512:    {},
}

// floatFromBits decodes the significant bytes of a float Value to a
// float64 approximation (used as the uniform arithmetic working type for
// every float layout in this implementation; see DESIGN.md stdlib
// justification). Returns NaN if the stored pattern is itself NaN — which
// spec forbids ever persisting, so this only occurs transiently inside
// arithmetic before the NaN-collapse check.
func floatFromBits(v Value) float64 {
	spec := floatSpecs[v.layout.Float]
	if spec.bits == 0 {
		return math.NaN()
	}
	bitsBuf := v.bytes[:spec.bits/8]
	var bits uint64
	for i := len(bitsBuf) - 1; i >= 0 && i < 8; i-- {
		bits = bits<<8 | uint64(bitsBuf[i])
	}
	// For widths > 64 bits (quad128, extended80) only the low 64 bits of
	// mantissa/exponent participate in this implementation's float64
	// working representation; see DESIGN.md Open Question notes.
	sign := (bits >> uint(spec.bits-1)) & 1
	expMask := uint64(1)<<uint(spec.expBits) - 1
	manMask := uint64(1)<<uint(minInt(spec.manBits, 52)) - 1
	exp := (bits >> uint(manShift(spec))) & expMask
	man := bits & manMask

	if exp == expMask {
		if man == 0 {
			if sign == 1 {
				return math.Inf(-1)
			}
			return math.Inf(1)
		}
		return math.NaN()
	}
	if exp == 0 && man == 0 {
		if sign == 1 {
			return math.Copysign(0, -1)
		}
		return 0
	}

	// Reconstruct as an IEEE-754 binary64 by rebiasing the exponent and
	// left-aligning the mantissa into the 52-bit double mantissa field.
	unbiased := int64(exp) - spec.bias
	dblExp := unbiased + 1023
	if dblExp <= 0 || dblExp >= 2047 {
		// Out of double range: saturate rather than wrap.
		if sign == 1 {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}
	manBits := minInt(spec.manBits, 52)
	dblMan := man << uint(52-manBits)
	dblBits := sign<<63 | uint64(dblExp)<<52 | dblMan
	return math.Float64frombits(dblBits)
}

func manShift(spec floatSpec) int {
	if spec.manBits > 52 {
		return 0 // unreachable for our working representation; guarded by caller
	}
	return spec.manBits
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// floatToBits encodes f into a Value of layout, honoring rounding for the
// mantissa truncation and reporting whether the result overflowed (and, for
// hasInf layouts, was stored as infinity) or was NaN (spec: NaN is never
// storable; callers collapse to unset instead of calling this).
func floatToBits(f float64, layout Layout, rounding RoundingMode) (Value, bool) {
	spec := floatSpecs[layout.Float]
	v := Zero(layout)
	if spec.bits == 0 {
		return v, false
	}
	if math.IsNaN(f) {
		return v, false
	}

	sign := uint64(0)
	if math.Signbit(f) {
		sign = 1
	}
	mag := math.Abs(f)

	if math.IsInf(f, 0) || mag == 0 {
		if mag == 0 {
			bits := sign << uint(spec.bits-1)
			return fromFormatBits(bits, spec, layout), true
		}
		if !spec.hasInf {
			return saturate(sign, spec, layout), false
		}
		expMask := uint64(1)<<uint(spec.expBits) - 1
		bits := sign<<uint(spec.bits-1) | expMask<<uint(manShift(spec))
		return fromFormatBits(bits, spec, layout), true
	}

	dblBits := math.Float64bits(mag)
	dblExp := int64((dblBits>>52)&0x7FF) - 1023
	dblMan := dblBits & ((1 << 52) - 1)

	biasedExp := dblExp + spec.bias
	maxExp := int64(1)<<uint(spec.expBits) - 1
	if biasedExp >= maxExp {
		if !spec.hasInf {
			return saturate(sign, spec, layout), false
		}
		bits := sign<<uint(spec.bits-1) | uint64(maxExp)<<uint(manShift(spec))
		return fromFormatBits(bits, spec, layout), true
	}
	if biasedExp <= 0 {
		// Underflow: flush to zero in this implementation (subnormals are
		// not modeled); not a spec-observed scenario.
		bits := sign << uint(spec.bits-1)
		return fromFormatBits(bits, spec, layout), false
	}

	manBits := minInt(spec.manBits, 52)
	shift := uint(52 - manBits)
	man := roundMantissa(dblMan, shift, rounding, sign == 1)
	if man>>uint(manBits) != 0 {
		// Rounding carried into the exponent.
		man = 0
		biasedExp++
		if biasedExp >= maxExp {
			if !spec.hasInf {
				return saturate(sign, spec, layout), false
			}
			bits := sign<<uint(spec.bits-1) | uint64(maxExp)<<uint(manShift(spec))
			return fromFormatBits(bits, spec, layout), true
		}
	}

	bits := sign<<uint(spec.bits-1) | uint64(biasedExp)<<uint(manShift(spec)) | man
	return fromFormatBits(bits, spec, layout), false
}

func roundMantissa(man uint64, shift uint, rounding RoundingMode, negative bool) uint64 {
	if shift == 0 {
		return man
	}
	truncated := man >> shift
	remainder := man & (1<<shift - 1)
	half := uint64(1) << (shift - 1)
	switch rounding {
	case RoundTowardsZero:
		return truncated
	case RoundFloor:
		if negative && remainder != 0 {
			return truncated + 1
		}
		return truncated
	case RoundCeil:
		if !negative && remainder != 0 {
			return truncated + 1
		}
		return truncated
	default: // RoundTowardsNearest
		if remainder > half || (remainder == half && truncated&1 == 1) {
			return truncated + 1
		}
		return truncated
	}
}

func saturate(sign uint64, spec floatSpec, layout Layout) Value {
	expMask := uint64(1)<<uint(spec.expBits) - 1
	manMask := uint64(1)<<uint(minInt(spec.manBits, 52)) - 1
	bits := sign<<uint(spec.bits-1) | (expMask-1)<<uint(manShift(spec)) | manMask
	return fromFormatBits(bits, spec, layout)
}

// fromFormatBits packs a raw bit pattern (already shaped to spec) into the
// Value's little-endian byte buffer.
func fromFormatBits(bits uint64, spec floatSpec, layout Layout) Value {
	v := Zero(layout)
	n := spec.bits / 8
	for i := 0; i < n && i < 8; i++ {
		v.bytes[i] = byte(bits >> uint(8*i))
	}
	return v
}

// reshapeFloatToFloat converts between float layouts via the float64
// working representation.
func (v *Value) reshapeFloatToFloat(target Layout) bool {
	if unsupportedFloatLayout(v.layout.Float) || unsupportedFloatLayout(target.Float) {
		*v = Zero(target)
		return false
	}
	f := floatFromBits(*v)
	out, _ := floatToBits(f, target, RoundTowardsNearest)
	back := floatFromBits(out)
	lossless := f == back || (math.IsNaN(f) && math.IsNaN(back))
	*v = out
	return lossless
}

// reshapeIntToFloat converts an integer Value to the nearest representable
// float of target layout.
func (v *Value) reshapeIntToFloat(target Layout) bool {
	n := v.bigInt()
	f := bigIntToFloat64(n)
	out, _ := floatToBits(f, target, RoundTowardsNearest)
	lossless := floatFromBits(out) == f
	*v = out
	return lossless
}

// reshapeFloatToInt truncates a float Value towards zero into an integer
// layout; out-of-range magnitudes clamp and report lossy.
func (v *Value) reshapeFloatToInt(target Layout) bool {
	f := floatFromBits(*v)
	if math.IsNaN(f) {
		*v = Zero(target)
		return false
	}
	trunc := math.Trunc(f)
	n := float64ToBigInt(trunc)
	lossless := fitsLayout(n, target) && trunc == f
	*v = fromBigInt(n, target)
	return lossless
}

func bigIntToFloat64(n *big.Int) float64 {
	bf := new(big.Float).SetPrec(200).SetInt(n)
	f, _ := bf.Float64()
	return f
}

func float64ToBigInt(f float64) *big.Int {
	bf := new(big.Float).SetPrec(200).SetFloat64(f)
	n, _ := bf.Int(nil)
	return n
}
