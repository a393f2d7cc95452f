package vm

import "math/big"

// Curve family (spec §4.4.9, ISA extension). Secp256k1 points are carried as
// 32-byte X/Y coordinates across a pair of R256 registers; scalars are plain
// 32-byte R256 values. Curve25519 is decode-but-reject per the Open Question
// decision recorded in DESIGN.md: it never produces a result, only Some/None.

var (
	secp256k1P  = mustHex("fffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2f")
	secp256k1N  = mustHex("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")
	secp256k1Gx = mustHex("79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")
	secp256k1Gy = mustHex("483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8")
)

func mustHex(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("vm: bad secp256k1 constant")
	}
	return n
}

// secpPoint is an affine point, with Inf marking the identity.
type secpPoint struct {
	X, Y *big.Int
	Inf  bool
}

func secpOnCurve(x, y *big.Int) bool {
	lhs := new(big.Int).Mul(y, y)
	lhs.Mod(lhs, secp256k1P)
	rhs := new(big.Int).Mul(x, x)
	rhs.Mul(rhs, x)
	rhs.Add(rhs, big.NewInt(7))
	rhs.Mod(rhs, secp256k1P)
	return lhs.Cmp(rhs) == 0
}

func secpAdd(p, q secpPoint) secpPoint {
	if p.Inf {
		return q
	}
	if q.Inf {
		return p
	}
	if p.X.Cmp(q.X) == 0 {
		if new(big.Int).Add(p.Y, q.Y).Mod(new(big.Int).Add(p.Y, q.Y), secp256k1P).Sign() == 0 {
			return secpPoint{Inf: true}
		}
		return secpDouble(p)
	}
	lambda := new(big.Int).Sub(q.Y, p.Y)
	denom := new(big.Int).Sub(q.X, p.X)
	denom.Mod(denom, secp256k1P)
	denom.ModInverse(denom, secp256k1P)
	lambda.Mul(lambda, denom)
	lambda.Mod(lambda, secp256k1P)

	x3 := new(big.Int).Mul(lambda, lambda)
	x3.Sub(x3, p.X)
	x3.Sub(x3, q.X)
	x3.Mod(x3, secp256k1P)

	y3 := new(big.Int).Sub(p.X, x3)
	y3.Mul(y3, lambda)
	y3.Sub(y3, p.Y)
	y3.Mod(y3, secp256k1P)

	return secpPoint{X: x3, Y: y3}
}

func secpDouble(p secpPoint) secpPoint {
	if p.Inf || p.Y.Sign() == 0 {
		return secpPoint{Inf: true}
	}
	num := new(big.Int).Mul(p.X, p.X)
	num.Mul(num, big.NewInt(3))
	denom := new(big.Int).Lsh(p.Y, 1)
	denom.Mod(denom, secp256k1P)
	denom.ModInverse(denom, secp256k1P)
	lambda := new(big.Int).Mul(num, denom)
	lambda.Mod(lambda, secp256k1P)

	x3 := new(big.Int).Mul(lambda, lambda)
	x3.Sub(x3, new(big.Int).Lsh(p.X, 1))
	x3.Mod(x3, secp256k1P)

	y3 := new(big.Int).Sub(p.X, x3)
	y3.Mul(y3, lambda)
	y3.Sub(y3, p.Y)
	y3.Mod(y3, secp256k1P)

	return secpPoint{X: x3, Y: y3}
}

func secpMul(k *big.Int, p secpPoint) secpPoint {
	result := secpPoint{Inf: true}
	addend := p
	kk := new(big.Int).Mod(k, secp256k1N)
	for bit := 0; bit < kk.BitLen(); bit++ {
		if kk.Bit(bit) == 1 {
			result = secpAdd(result, addend)
		}
		addend = secpDouble(addend)
	}
	return result
}

func pointFromRegs(rf *RegisterFile, xRef, yRef RegRef) (secpPoint, bool) {
	vx, okx := rf.Get(xRef).Unwrap()
	vy, oky := rf.Get(yRef).Unwrap()
	if !okx || !oky {
		return secpPoint{}, false
	}
	x, y := vx.bigInt(), vy.bigInt()
	if x.Sign() == 0 && y.Sign() == 0 {
		return secpPoint{Inf: true}, true
	}
	if !secpOnCurve(x, y) {
		return secpPoint{}, false
	}
	return secpPoint{X: x, Y: y}, true
}

func pointToRegs(rf *RegisterFile, xRef, yRef RegRef, p secpPoint) {
	layout := bankLayout(xRef.Family, xRef.Bank)
	if p.Inf {
		rf.Set(xRef, Some(Zero(layout)))
		rf.Set(yRef, Some(Zero(layout)))
		return
	}
	rf.Set(xRef, Some(fromBigInt(p.X, layout)))
	rf.Set(yRef, Some(fromBigInt(p.Y, layout)))
}

// Secp256kGen multiplies the curve generator by a scalar register.
type Secp256kGen struct {
	Scalar     RegRef
	DstX, DstY RegRef
}

func (i Secp256kGen) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	sv, ok := rf.Get(i.Scalar).Unwrap()
	if !ok {
		rf.St0 = false
		return Next()
	}
	g := secpPoint{X: secp256k1Gx, Y: secp256k1Gy}
	result := secpMul(sv.bigInt(), g)
	pointToRegs(rf, i.DstX, i.DstY, result)
	rf.St0 = true
	return Next()
}
func (Secp256kGen) Complexity() uint64 { return ComplexityCurve }

// Secp256kMul multiplies a point by a scalar.
type Secp256kMul struct {
	Scalar     RegRef
	X, Y       RegRef
	DstX, DstY RegRef
}

func (i Secp256kMul) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	sv, ok := rf.Get(i.Scalar).Unwrap()
	p, pok := pointFromRegs(rf, i.X, i.Y)
	if !ok || !pok {
		rf.St0 = false
		return Next()
	}
	result := secpMul(sv.bigInt(), p)
	pointToRegs(rf, i.DstX, i.DstY, result)
	rf.St0 = true
	return Next()
}
func (Secp256kMul) Complexity() uint64 { return ComplexityCurve }

// Secp256kAdd adds two points.
type Secp256kAdd struct {
	AX, AY, BX, BY RegRef
	DstX, DstY     RegRef
}

func (i Secp256kAdd) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	pa, oka := pointFromRegs(rf, i.AX, i.AY)
	pb, okb := pointFromRegs(rf, i.BX, i.BY)
	if !oka || !okb {
		rf.St0 = false
		return Next()
	}
	pointToRegs(rf, i.DstX, i.DstY, secpAdd(pa, pb))
	rf.St0 = true
	return Next()
}
func (Secp256kAdd) Complexity() uint64 { return ComplexityCurve }

// Secp256kNeg negates a point's Y coordinate in place.
type Secp256kNeg struct{ X, Y RegRef }

func (i Secp256kNeg) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	p, ok := pointFromRegs(rf, i.X, i.Y)
	if !ok {
		rf.St0 = false
		return Next()
	}
	if !p.Inf {
		p.Y = new(big.Int).Sub(secp256k1P, p.Y)
		p.Y.Mod(p.Y, secp256k1P)
	}
	pointToRegs(rf, i.X, i.Y, p)
	rf.St0 = true
	return Next()
}
func (Secp256kNeg) Complexity() uint64 { return ComplexityCurve }

// Curve25519 is decode-but-reject (DESIGN.md Open Question decision): the
// opcode space is reserved but every variant reports failure rather than
// computing a result, since no library in scope implements its field
// arithmetic and a hand-rolled Montgomery ladder risks silent miscomputation
// on a security-sensitive curve.
type Curve25519Op struct{ Mnemonic string }

func (i Curve25519Op) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	rf.St0 = false
	return Next()
}
func (Curve25519Op) Complexity() uint64 { return ComplexityCurve }
