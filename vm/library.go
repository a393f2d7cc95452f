package vm

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// LibID is a library's 32-byte tagged-hash identifier (spec §4.5).
type LibID [LibIDSize]byte

// String renders the raw hex of the identifier. Human-readable "alu:"
// prefixed/Baid-style rendering lives in package loader (spec §6), which
// is the external-facing wire layer; the core only needs equality,
// ordering, and hashing.
func (id LibID) String() string {
	return fmt.Sprintf("%x", [LibIDSize]byte(id))
}

// LibrarySite is a (library-id, code-offset) pair: the target of a
// cross-library call (spec §3 LibrarySite, GLOSSARY).
type LibrarySite struct {
	Lib    LibID
	Offset uint16
}

// String renders a site as "<libid>:<offset>" for logging/display.
func (s LibrarySite) String() string {
	return fmt.Sprintf("%s:%04x", s.Lib, s.Offset)
}

// Library is the immutable record of spec §3/§4.5: ISA-extensions tag,
// code segment, data segment, and a dependency list of other libraries'
// identifiers, referenced by call/exec via a 1-byte index.
type Library struct {
	ISAE string
	Code []byte
	Data []byte
	Deps []LibID

	id     LibID
	hasID  bool
}

// NewLibrary builds a Library and computes its identifier eagerly, so Id()
// is a cheap field read afterwards. Constructing a Library with out-of-
// bound segments is a programmer error in this layer (the wire codec in
// package loader is responsible for rejecting malformed persisted
// libraries before they reach here).
func NewLibrary(isae string, code, data []byte, deps []LibID) *Library {
	l := &Library{ISAE: isae, Code: code, Data: data, Deps: deps}
	l.id = computeLibID(l)
	l.hasID = true
	return l
}

// Id returns the library's deterministic 32-byte identifier (spec §4.5):
// libraries are equated, ordered, and hashed by identifier, not by content
// pointer.
func (l *Library) Id() LibID {
	if !l.hasID {
		l.id = computeLibID(l)
		l.hasID = true
	}
	return l.id
}

// aluTagPrefix is the fixed 32-byte domain-separator string this
// implementation tags its library-identifier hash with (spec §4.5 "a
// 32-byte tag derived from a constant string"), matching the upstream
// reference implementation's LIB_ID_TAG constant byte for byte.
const aluTagPrefix = "urn:ubideco:aluvm:lib:v01#230304"

var aluTag = computeTag(aluTagPrefix)

func computeTag(s string) [32]byte {
	h := sha256.Sum256([]byte(s))
	// BIP-340-style tagged hash: SHA256(tag) concatenated to itself forms
	// the 64-byte prefix for every subsequent hash (spec §4.5).
	return h
}

// computeLibID implements spec §4.5's tagged-hash construction over the
// four persisted fields, in persisted order.
func computeLibID(l *Library) LibID {
	h := sha256.New()
	h.Write(aluTag[:])
	h.Write(aluTag[:])

	h.Write([]byte{byte(len(l.ISAE))})
	h.Write([]byte(l.ISAE))

	var codeLen [2]byte
	binary.LittleEndian.PutUint16(codeLen[:], uint16(len(l.Code)))
	h.Write(codeLen[:])
	h.Write(l.Code)

	var dataLen [2]byte
	binary.LittleEndian.PutUint16(dataLen[:], uint16(len(l.Data)))
	h.Write(dataLen[:])
	h.Write(l.Data)

	h.Write([]byte{byte(len(l.Deps))})
	for _, d := range l.Deps {
		h.Write(d[:])
	}

	var out LibID
	copy(out[:], h.Sum(nil))
	return out
}

// DepByIndex resolves a 1-byte dependency index into a LibID (spec §4.5
// "Call and exec instructions reference external libraries by a 1-byte
// index into the current library's dependency segment").
func (l *Library) DepByIndex(idx byte) (LibID, bool) {
	if int(idx) >= len(l.Deps) {
		return LibID{}, false
	}
	return l.Deps[idx], true
}
