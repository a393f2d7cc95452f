package debugger

// TUI Display Update Constants
const (
	// DisplayUpdateFrequency is a step interval (every N steps) for TUI
	// display updates during continuous execution. The TUI does not read
	// it.
	DisplayUpdateFrequency = 100
)

// Disassembly View Constants. No view in this package reads them; the TUI
// disassembly pane lists every line of the library.
const (
	// CodeContextLinesBefore is a line count before the current site for
	// a full disassembly view.
	CodeContextLinesBefore = 20

	// CodeContextLinesAfter is a line count after the current site for a
	// full disassembly view.
	CodeContextLinesAfter = 80

	// CodeContextLinesBeforeCompact/AfterCompact are the compact-view
	// counterparts.
	CodeContextLinesBeforeCompact = 5
	CodeContextLinesAfterCompact  = 10
)

// Byte-string (S-bank) Display Constants
const (
	// BytesPerLine is a row width in bytes for an S-register hex dump. No
	// code in this package reads it.
	BytesPerLine = 16

	// MaxBytesDisplayed is a byte cap for rendering an S-register's
	// contents. No command reads it.
	MaxBytesDisplayed = 256
)

// Call Stack Display Constants
const (
	// CallStackDisplayDepth is an entry count for call-stack (cs0)
	// display. The `backtrace` command does not read it and lists every
	// entry.
	CallStackDisplayDepth = 16
)

// Register Display Constants
const (
	// RegisterGroupSize is the number of register slots shown per row
	// when rendering a bank.
	RegisterGroupSize = 8

	// RegisterViewBanks is the number of banks shown per family in the
	// compact register view (spec §3: 8 banks each for A/F/R).
	RegisterViewBanks = 8
)
