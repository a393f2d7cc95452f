package vm

// MaybeValue is either a Value or the unset marker (spec §3). The zero
// MaybeValue is unset; it must never be silently collapsed to a zero Value
// (spec §9 "Unset as first class").
type MaybeValue struct {
	value Value
	isSet bool
}

// Some wraps a Value as set.
func Some(v Value) MaybeValue { return MaybeValue{value: v, isSet: true} }

// None is the unset MaybeValue.
func None() MaybeValue { return MaybeValue{} }

// IsSet reports whether a value is present.
func (m MaybeValue) IsSet() bool { return m.isSet }

// Unwrap returns the underlying Value and whether it was set. Reading the
// Value of an unset MaybeValue yields the zero Value of an empty layout;
// callers must check the bool.
func (m MaybeValue) Unwrap() (Value, bool) { return m.value, m.isSet }

// UnwrapOr returns the contained value or a provided default.
func (m MaybeValue) UnwrapOr(def Value) Value {
	if m.isSet {
		return m.value
	}
	return def
}

// Reshape mutates v in place to target, reporting losslessness (spec §4.1).
// Unsupported layout crossings are reported, never silently truncated.
func (v *Value) Reshape(target Layout) bool {
	switch {
	case !v.layout.IsFloat && !target.IsFloat:
		return v.reshapeIntToInt(target)
	case v.layout.IsFloat && target.IsFloat:
		return v.reshapeFloatToFloat(target)
	case !v.layout.IsFloat && target.IsFloat:
		return v.reshapeIntToFloat(target)
	default:
		return v.reshapeFloatToInt(target)
	}
}

// reshapeIntToInt changes integer width and/or signedness.
func (v *Value) reshapeIntToInt(target Layout) bool {
	n := v.bigInt()
	lossless := fitsLayout(n, target)
	if v.layout.Signed != target.Signed {
		// A sign change is lossless only if the value is representable
		// (nonnegative magnitude fits, or unsigned->signed with MSB clear,
		// or signed nonnegative -> unsigned).
		if target.Signed {
			lossless = lossless && n.Sign() >= 0
		} else {
			lossless = lossless && n.Sign() >= 0
		}
	}
	*v = fromBigInt(n, target)
	return lossless
}

// Reshape reports lossless iff no bits were lost, i.e. the exported
// Reshape(target Layout) on *Value is the only entry point; this satisfies
// spec's "reshape(target_layout): mutates the value to the target layout;
// returns true if lossless" for the integer<->integer cross product.

func cloneAsLayout(v Value, layout Layout) Value {
	out := Zero(layout)
	copy(out.bytes[:], v.bytes[:])
	return out
}
