package vm

import (
	"crypto/sha256"
	"crypto/sha512"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // spec §4.4.8 names ripemd as a required digest
)

// Digest family (spec §4.4.8): hashes the bytes of an S-register into
// another S-register, st0 = source was set.

type digestFunc func([]byte) []byte

func digestOp(rf *RegisterFile, src, dst byte, fn digestFunc) Step {
	s, ok := rf.GetS(src)
	if !ok {
		rf.ClearS(dst)
		rf.St0 = false
		return Next()
	}
	rf.SetS(dst, NewByteString(fn(s.Bytes())))
	rf.St0 = true
	return Next()
}

// Ripemd computes the RIPEMD-160 digest.
type Ripemd struct{ Src, Dst byte }

func (i Ripemd) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	return digestOp(rf, i.Src, i.Dst, func(b []byte) []byte {
		h := ripemd160.New()
		h.Write(b)
		return h.Sum(nil)
	})
}
func (Ripemd) Complexity() uint64 { return ComplexityDigest }

// Sha256 computes the SHA-256 digest.
type Sha256 struct{ Src, Dst byte }

func (i Sha256) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	return digestOp(rf, i.Src, i.Dst, func(b []byte) []byte {
		h := sha256.Sum256(b)
		return h[:]
	})
}
func (Sha256) Complexity() uint64 { return ComplexityDigest }

// Sha512 computes the SHA-512 digest.
type Sha512 struct{ Src, Dst byte }

func (i Sha512) Execute(rf *RegisterFile, _ LibrarySite, _ Context) Step {
	return digestOp(rf, i.Src, i.Dst, func(b []byte) []byte {
		h := sha512.Sum512(b)
		return h[:]
	})
}
func (Sha512) Complexity() uint64 { return ComplexityDigest }
