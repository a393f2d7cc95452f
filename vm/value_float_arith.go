package vm

import "math"

// FloatAdd implements spec §4.1 float_add: any NaN result yields none;
// overflow to infinity is preserved on IEEE layouts, saturates on bfloat16.
func FloatAdd(a, b Value, rounding RoundingMode) (Value, bool) {
	return floatBinOp(a, b, rounding, func(x, y float64) float64 { return x + y })
}

// FloatSub implements spec §4.1 float_sub.
func FloatSub(a, b Value, rounding RoundingMode) (Value, bool) {
	return floatBinOp(a, b, rounding, func(x, y float64) float64 { return x - y })
}

// FloatMul implements spec §4.1 float_mul.
func FloatMul(a, b Value, rounding RoundingMode) (Value, bool) {
	return floatBinOp(a, b, rounding, func(x, y float64) float64 { return x * y })
}

// FloatDiv implements spec §4.1 float_div. Division by zero produces NaN
// under IEEE semantics, which this layer collapses to none just like any
// other NaN result.
func FloatDiv(a, b Value, rounding RoundingMode) (Value, bool) {
	return floatBinOp(a, b, rounding, func(x, y float64) float64 { return x / y })
}

func floatBinOp(a, b Value, rounding RoundingMode, op func(x, y float64) float64) (Value, bool) {
	assertSameLayout(a, b)
	if unsupportedFloatLayout(a.layout.Float) {
		return Zero(a.layout), false
	}
	fa, fb := floatFromBits(a), floatFromBits(b)
	r := op(fa, fb)
	if math.IsNaN(r) {
		return Zero(a.layout), false
	}
	out, _ := floatToBits(r, a.layout, rounding)
	return out, true
}
