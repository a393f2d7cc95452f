package vm

// IntFlags parameterizes integer arithmetic (spec §4.1).
type IntFlags struct {
	Signed bool
	Wrap   bool
}

// RoundingMode parameterizes float arithmetic (spec §4.1).
type RoundingMode byte

const (
	RoundTowardsZero RoundingMode = iota
	RoundTowardsNearest
	RoundFloor
	RoundCeil
)

// FloatEqMode selects exact vs rounding-tolerant float equality
// (spec §4.1 rounding_cmp, §4.4.4 FloatEq::Rounding).
type FloatEqMode byte

const (
	FloatEqExact FloatEqMode = iota
	FloatEqRounding
)

// UnsetEqMode selects whether both-unset compares equal for A/R eq
// (spec §4.4.4).
type UnsetEqMode byte

const (
	UnsetEqFalse UnsetEqMode = iota
	UnsetEqTrue
)

// StMergeMode selects how st0 combines into a register's low bit
// (spec §4.4.4 st_merge).
type StMergeMode byte

const (
	StMergeSet StMergeMode = iota
	StMergeAddSaturating
	StMergeAnd
	StMergeOr
)

// CmpOrdering is a three-way comparison result.
type CmpOrdering int

const (
	Less CmpOrdering = -1
	Equal CmpOrdering = 0
	Greater CmpOrdering = 1
)
