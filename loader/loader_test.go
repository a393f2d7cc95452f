package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aluvm/aluvm/vm"
)

func sampleLibrary() *vm.Library {
	deps := []vm.LibID{{1, 2, 3}, {4, 5, 6}}
	return vm.NewLibrary("ALU", []byte{0x01, 0x02, 0x03}, []byte{0xAA, 0xBB}, deps)
}

func TestEncodeDecodeLibraryRoundTrips(t *testing.T) {
	lib := sampleLibrary()

	encoded, err := EncodeLibrary(lib)
	require.NoError(t, err)

	decoded, err := DecodeLibrary(encoded)
	require.NoError(t, err)

	assert.Equal(t, lib.ISAE, decoded.ISAE)
	assert.Equal(t, lib.Code, decoded.Code)
	assert.Equal(t, lib.Data, decoded.Data)
	assert.Equal(t, lib.Deps, decoded.Deps)
	assert.Equal(t, lib.Id(), decoded.Id())
}

func TestEncodeLibraryRejectsOversizedSegments(t *testing.T) {
	lib := vm.NewLibrary("ALU", make([]byte, vm.CodeSegmentMaxBytes+1), nil, nil)
	_, err := EncodeLibrary(lib)
	require.Error(t, err)
}

func TestDecodeLibraryRejectsTruncatedRecord(t *testing.T) {
	lib := sampleLibrary()
	encoded, err := EncodeLibrary(lib)
	require.NoError(t, err)

	_, err = DecodeLibrary(encoded[:len(encoded)-1])
	require.Error(t, err)
}

func TestDecodeLibraryRejectsTrailingBytes(t *testing.T) {
	lib := sampleLibrary()
	encoded, err := EncodeLibrary(lib)
	require.NoError(t, err)

	_, err = DecodeLibrary(append(encoded, 0xFF))
	require.Error(t, err)
}

func TestFormatLibIDHasAluPrefixAndChecksumSuffix(t *testing.T) {
	lib := sampleLibrary()
	formatted := FormatLibID(lib.Id())

	assert.Regexp(t, `^alu:[A-Za-z0-9_-]+(-[A-Za-z0-9_-]+)*#[a-z]+-[a-z]+$`, formatted)
}

func TestParseLibIDAcceptsPrefixedMnemonicSuffixedForm(t *testing.T) {
	lib := sampleLibrary()
	id := lib.Id()
	formatted := FormatLibID(id)

	parsed, err := ParseLibID(formatted)
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestParseLibIDAcceptsUnprefixedForm(t *testing.T) {
	lib := sampleLibrary()
	id := lib.Id()
	formatted := FormatLibID(id)
	unprefixed := formatted[len(idPrefix):]

	parsed, err := ParseLibID(unprefixed)
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestParseLibIDRejectsBadChecksum(t *testing.T) {
	lib := sampleLibrary()
	formatted := FormatLibID(lib.Id())

	tampered := formatted[:len(formatted)-1] + "z"
	_, err := ParseLibID(tampered)
	require.Error(t, err)
}
