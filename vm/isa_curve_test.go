package vm

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func r256(n byte) RegRef { return RegRef{Family: FamilyR, Bank: 2, Index: n} }

func TestSecp256kGenMatchesGeneratorForScalarOne(t *testing.T) {
	rf := NewRegisterFile()
	rf.Set(r256(0), Some(fromBigInt(bigOne(), bankLayout(FamilyR, 2))))

	Secp256kGen{Scalar: r256(0), DstX: r256(1), DstY: r256(2)}.Execute(rf, LibrarySite{}, nil)
	require.True(t, rf.St0)

	x, ok := rf.Get(r256(1)).Unwrap()
	require.True(t, ok)
	assert.Equal(t, secp256k1Gx, x.bigInt())
}

func TestSecp256kAddGeneratorToItselfMatchesDouble(t *testing.T) {
	rf := NewRegisterFile()
	g := secpPoint{X: secp256k1Gx, Y: secp256k1Gy}
	pointToRegs(rf, r256(1), r256(2), g)
	pointToRegs(rf, r256(3), r256(4), g)

	Secp256kAdd{AX: r256(1), AY: r256(2), BX: r256(3), BY: r256(4), DstX: r256(5), DstY: r256(6)}.
		Execute(rf, LibrarySite{}, nil)
	require.True(t, rf.St0)

	doubled := secpDouble(g)
	gotX, _ := rf.Get(r256(5)).Unwrap()
	assert.Equal(t, doubled.X, gotX.bigInt())
}

func TestSecp256kNegThenAddIsIdentity(t *testing.T) {
	rf := NewRegisterFile()
	g := secpPoint{X: secp256k1Gx, Y: secp256k1Gy}
	pointToRegs(rf, r256(1), r256(2), g)

	Secp256kNeg{X: r256(1), Y: r256(2)}.Execute(rf, LibrarySite{}, nil)
	negX, _ := rf.Get(r256(1)).Unwrap()
	negY, _ := rf.Get(r256(2)).Unwrap()
	neg := secpPoint{X: negX.bigInt(), Y: negY.bigInt()}

	sum := secpAdd(g, neg)
	assert.True(t, sum.Inf)
}

func TestCurve25519AlwaysFails(t *testing.T) {
	rf := NewRegisterFile()
	rf.St0 = true
	Curve25519Op{Mnemonic: "gen"}.Execute(rf, LibrarySite{}, nil)
	assert.False(t, rf.St0)
}

func bigOne() *big.Int { return big.NewInt(1) }
