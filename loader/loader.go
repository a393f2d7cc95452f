// Package loader implements the persisted library wire format of spec §6:
// a structured record (ISA-extensions tag, code, data, dependencies) and
// the human-readable "alu:"-prefixed identifier string. Grounded on the
// teacher's loader.go role (turning a persisted program into the VM's
// in-memory form) generalized from "assemble ARM text into memory" to
// "decode an AluVM library record into package vm's Library type".
package loader

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/aluvm/aluvm/vm"
)

// EncodeLibrary serializes lib to the persisted wire format of spec §6:
// ISA-extensions segment (1-byte length prefix), code segment (2-byte LE
// length prefix), data segment (2-byte LE length prefix), dependencies
// segment (1-byte count prefix, 32 bytes per entry).
func EncodeLibrary(lib *vm.Library) ([]byte, error) {
	if len(lib.ISAE) > vm.ISAEMaxBytes {
		return nil, fmt.Errorf("loader: ISA-extensions tag exceeds %d bytes", vm.ISAEMaxBytes)
	}
	if len(lib.Code) > vm.CodeSegmentMaxBytes {
		return nil, fmt.Errorf("loader: code segment exceeds %d bytes", vm.CodeSegmentMaxBytes)
	}
	if len(lib.Data) > vm.DataSegmentMaxBytes {
		return nil, fmt.Errorf("loader: data segment exceeds %d bytes", vm.DataSegmentMaxBytes)
	}
	if len(lib.Deps) > vm.MaxDeps {
		return nil, fmt.Errorf("loader: dependency list exceeds %d entries", vm.MaxDeps)
	}

	out := make([]byte, 0, 1+len(lib.ISAE)+2+len(lib.Code)+2+len(lib.Data)+1+len(lib.Deps)*vm.LibIDSize)

	out = append(out, byte(len(lib.ISAE)))
	out = append(out, lib.ISAE...)

	var codeLen [2]byte
	binary.LittleEndian.PutUint16(codeLen[:], uint16(len(lib.Code)))
	out = append(out, codeLen[:]...)
	out = append(out, lib.Code...)

	var dataLen [2]byte
	binary.LittleEndian.PutUint16(dataLen[:], uint16(len(lib.Data)))
	out = append(out, dataLen[:]...)
	out = append(out, lib.Data...)

	out = append(out, byte(len(lib.Deps)))
	for _, d := range lib.Deps {
		out = append(out, d[:]...)
	}

	return out, nil
}

// DecodeLibrary parses the persisted wire format back into a Library,
// rejecting truncated or oversized records (spec §6).
func DecodeLibrary(b []byte) (*vm.Library, error) {
	r := &byteReader{data: b}

	isaeLen, err := r.readByte()
	if err != nil {
		return nil, fmt.Errorf("loader: reading ISA-extensions length: %w", err)
	}
	isae, err := r.readN(int(isaeLen))
	if err != nil {
		return nil, fmt.Errorf("loader: reading ISA-extensions tag: %w", err)
	}

	codeLen, err := r.readUint16LE()
	if err != nil {
		return nil, fmt.Errorf("loader: reading code length: %w", err)
	}
	code, err := r.readN(int(codeLen))
	if err != nil {
		return nil, fmt.Errorf("loader: reading code segment: %w", err)
	}

	dataLen, err := r.readUint16LE()
	if err != nil {
		return nil, fmt.Errorf("loader: reading data length: %w", err)
	}
	data, err := r.readN(int(dataLen))
	if err != nil {
		return nil, fmt.Errorf("loader: reading data segment: %w", err)
	}

	depCount, err := r.readByte()
	if err != nil {
		return nil, fmt.Errorf("loader: reading dependency count: %w", err)
	}
	deps := make([]vm.LibID, 0, depCount)
	for i := 0; i < int(depCount); i++ {
		raw, err := r.readN(vm.LibIDSize)
		if err != nil {
			return nil, fmt.Errorf("loader: reading dependency %d: %w", i, err)
		}
		var id vm.LibID
		copy(id[:], raw)
		deps = append(deps, id)
	}

	if !r.atEnd() {
		return nil, fmt.Errorf("loader: %d trailing bytes after library record", r.remaining())
	}

	return vm.NewLibrary(string(isae), code, data, deps), nil
}

type byteReader struct {
	data []byte
	pos  int
}

func (r *byteReader) readByte() (byte, error) {
	b, err := r.readN(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *byteReader) readUint16LE() (uint16, error) {
	b, err := r.readN(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *byteReader) readN(n int) ([]byte, error) {
	if r.pos+n > len(r.data) {
		return nil, fmt.Errorf("unexpected end of record (need %d bytes, have %d)", n, len(r.data)-r.pos)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *byteReader) atEnd() bool    { return r.pos == len(r.data) }
func (r *byteReader) remaining() int { return len(r.data) - r.pos }

const idPrefix = "alu:"

// chunkWidth groups the Baid-style base64 rendering into readable clusters,
// matching the chunked presentation spec §6 describes without pinning an
// exact width; 8 characters per chunk keeps a 32-byte id to 6 chunks.
const chunkWidth = 8

// FormatLibID renders a library identifier as spec §6 describes: the
// "alu:" prefix, chunked base64 of the 32 raw bytes, and a mnemonic
// checksum suffix derived from the same bytes.
func FormatLibID(id vm.LibID) string {
	encoded := base64.RawURLEncoding.EncodeToString(id[:])
	var chunks []string
	for i := 0; i < len(encoded); i += chunkWidth {
		end := i + chunkWidth
		if end > len(encoded) {
			end = len(encoded)
		}
		chunks = append(chunks, encoded[i:end])
	}
	return idPrefix + strings.Join(chunks, "-") + "#" + mnemonicChecksum(id)
}

// ParseLibID accepts the prefixed, unprefixed, and mnemonic-suffixed forms
// of a library identifier string (spec §6).
func ParseLibID(s string) (vm.LibID, error) {
	s = strings.TrimPrefix(s, idPrefix)
	if hashIdx := strings.IndexByte(s, '#'); hashIdx >= 0 {
		suffix := s[hashIdx+1:]
		s = s[:hashIdx]
		var zero vm.LibID
		decoded, err := decodeChunked(s)
		if err != nil {
			return zero, err
		}
		var id vm.LibID
		copy(id[:], decoded)
		if want := mnemonicChecksum(id); want != suffix {
			return zero, fmt.Errorf("loader: mnemonic checksum mismatch: got %q want %q", suffix, want)
		}
		return id, nil
	}

	decoded, err := decodeChunked(s)
	if err != nil {
		return vm.LibID{}, err
	}
	var id vm.LibID
	if len(decoded) != vm.LibIDSize {
		return id, fmt.Errorf("loader: decoded identifier is %d bytes, want %d", len(decoded), vm.LibIDSize)
	}
	copy(id[:], decoded)
	return id, nil
}

func decodeChunked(s string) ([]byte, error) {
	joined := strings.ReplaceAll(s, "-", "")
	decoded, err := base64.RawURLEncoding.DecodeString(joined)
	if err != nil {
		return nil, fmt.Errorf("loader: invalid identifier encoding: %w", err)
	}
	return decoded, nil
}

// mnemonicWords is a small fixed wordlist; the checksum picks two words by
// hashing the identifier bytes, giving a human-speakable suffix without
// pulling in a full BIP-39-style dependency for 8 bits of entropy.
var mnemonicWords = [16]string{
	"able", "acid", "aged", "also", "area", "army", "away", "axis",
	"baby", "back", "bald", "barn", "bear", "beat", "been", "beer",
}

func mnemonicChecksum(id vm.LibID) string {
	var sum byte
	for _, b := range id {
		sum ^= b
	}
	first := mnemonicWords[sum&0x0F]
	second := mnemonicWords[(sum>>4)&0x0F]
	return first + "-" + second
}
