package vm

import (
	"crypto/sha256"
	"crypto/sha512"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck
)

func TestDigestOpsMatchStandardImplementations(t *testing.T) {
	rf := NewRegisterFile()
	PutS{Idx: 0, Data: []byte("aluvm")}.Execute(rf, LibrarySite{}, nil)

	Sha256{Src: 0, Dst: 1}.Execute(rf, LibrarySite{}, nil)
	got, ok := rf.GetS(1)
	require.True(t, ok)
	want := sha256.Sum256([]byte("aluvm"))
	assert.Equal(t, want[:], got.Bytes())

	Sha512{Src: 0, Dst: 2}.Execute(rf, LibrarySite{}, nil)
	got, _ = rf.GetS(2)
	want512 := sha512.Sum512([]byte("aluvm"))
	assert.Equal(t, want512[:], got.Bytes())

	Ripemd{Src: 0, Dst: 3}.Execute(rf, LibrarySite{}, nil)
	got, _ = rf.GetS(3)
	h := ripemd160.New()
	h.Write([]byte("aluvm"))
	assert.Equal(t, h.Sum(nil), got.Bytes())
}

func TestDigestOfUnsetSourceFails(t *testing.T) {
	rf := NewRegisterFile()
	Sha256{Src: 9, Dst: 10}.Execute(rf, LibrarySite{}, nil)
	assert.False(t, rf.St0)
	_, ok := rf.GetS(10)
	assert.False(t, ok)
}
