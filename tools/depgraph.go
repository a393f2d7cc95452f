package tools

import (
	"fmt"
	"strings"

	"github.com/aluvm/aluvm/encoder"
	"github.com/aluvm/aluvm/loader"
	"github.com/aluvm/aluvm/vm"
)

// DepReferenceKind distinguishes how an instruction reaches a dependency,
// the AluVM analogue of the teacher's ReferenceType over branch/load/call
// label references.
type DepReferenceKind int

const (
	// DepCall is a cross-library call that pushes a return site.
	DepCall DepReferenceKind = iota
	// DepExec is a cross-library tail call with no return site.
	DepExec
)

func (k DepReferenceKind) String() string {
	switch k {
	case DepCall:
		return "call"
	case DepExec:
		return "exec"
	default:
		return "unknown"
	}
}

// DepReference is one call or exec instruction addressing a dependency.
type DepReference struct {
	Offset   uint16
	DepIndex byte
	Target   uint16
	Kind     DepReferenceKind
}

// DepNode is one declared dependency slot and every reference to it found
// in the library's code segment.
type DepNode struct {
	Index      byte
	LibID      vm.LibID
	References []DepReference
}

// DepGraph is a library's dependency segment cross-referenced against the
// call/exec instructions that actually address it.
type DepGraph struct {
	Nodes []*DepNode

	// Undeclared holds references whose dep index falls outside the
	// library's declared Deps segment.
	Undeclared []DepReference
}

// BuildDepGraph disassembles lib and cross-references every call/exec
// instruction against lib.Deps.
func BuildDepGraph(lib *vm.Library) (*DepGraph, error) {
	lines, err := encoder.Disassemble(lib)
	if err != nil {
		return nil, fmt.Errorf("depgraph: disassemble: %w", err)
	}

	g := &DepGraph{Nodes: make([]*DepNode, len(lib.Deps))}
	for i, id := range lib.Deps {
		g.Nodes[i] = &DepNode{Index: byte(i), LibID: id}
	}

	for _, ln := range lines {
		var kind DepReferenceKind
		switch ln.Mnemonic {
		case "call":
			kind = DepCall
		case "exec":
			kind = DepExec
		default:
			continue
		}

		idx, ok := parseDepIndex(ln.Operands)
		if !ok {
			continue
		}
		target, _ := parseTargetOperand(ln.Operands)
		ref := DepReference{Offset: ln.Offset, DepIndex: idx, Target: target, Kind: kind}

		if int(idx) < len(g.Nodes) {
			g.Nodes[idx].References = append(g.Nodes[idx].References, ref)
		} else {
			g.Undeclared = append(g.Undeclared, ref)
		}
	}

	return g, nil
}

// Unreferenced returns the declared dependencies that no call or exec
// instruction in this library's code segment ever addresses.
func (g *DepGraph) Unreferenced() []*DepNode {
	var out []*DepNode
	for _, n := range g.Nodes {
		if len(n.References) == 0 {
			out = append(out, n)
		}
	}
	return out
}

// Format renders the graph as a sorted text listing, one dependency per
// line followed by its references, suitable for a CLI "deps" subcommand.
func (g *DepGraph) Format() string {
	var lines []string
	for _, n := range g.Nodes {
		lines = append(lines, fmt.Sprintf("dep[%d] %s (%d references)", n.Index, loader.FormatLibID(n.LibID), len(n.References)))
		for _, ref := range n.References {
			lines = append(lines, fmt.Sprintf("  %04x: %s -> 0x%04x", ref.Offset, ref.Kind, ref.Target))
		}
	}
	for _, ref := range g.Undeclared {
		lines = append(lines, fmt.Sprintf("undeclared dep[%d] referenced at %04x", ref.DepIndex, ref.Offset))
	}
	return strings.Join(lines, "\n")
}

// parseTargetOperand parses the trailing "0x%04x" field of a "dep[%d]
// 0x%04x" operand pair.
func parseTargetOperand(operands string) (uint16, bool) {
	fields := strings.Fields(operands)
	if len(fields) < 2 {
		return 0, false
	}
	return parseHexOperand(fields[1])
}
