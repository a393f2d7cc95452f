package tools

import (
	"testing"

	"github.com/aluvm/aluvm/vm"
)

func TestBuildDepGraph_Referenced(t *testing.T) {
	dep := vm.LibID{0xaa}
	lib := buildLib(t, []vm.LibID{dep},
		func(c *vm.Cursor) {
			c.WriteByte(byte(vm.OpCall))
			if _, err := c.WriteRef(dep); err != nil {
				t.Fatalf("WriteRef: %v", err)
			}
			c.WriteWord(0x10)
		},
		writeOp(vm.OpSucc),
	)

	graph, err := BuildDepGraph(lib)
	if err != nil {
		t.Fatalf("BuildDepGraph: %v", err)
	}

	if len(graph.Nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(graph.Nodes))
	}
	node := graph.Nodes[0]
	if len(node.References) != 1 {
		t.Fatalf("expected 1 reference, got %d", len(node.References))
	}
	ref := node.References[0]
	if ref.Kind != DepCall || ref.Target != 0x10 || ref.Offset != 0 {
		t.Errorf("unexpected reference: %+v", ref)
	}

	if len(graph.Unreferenced()) != 0 {
		t.Errorf("expected no unreferenced deps, got %v", graph.Unreferenced())
	}
}

func TestBuildDepGraph_Unreferenced(t *testing.T) {
	dep := vm.LibID{0xbb}
	lib := buildLib(t, []vm.LibID{dep},
		writeOp(vm.OpSucc),
	)

	graph, err := BuildDepGraph(lib)
	if err != nil {
		t.Fatalf("BuildDepGraph: %v", err)
	}

	unreferenced := graph.Unreferenced()
	if len(unreferenced) != 1 || unreferenced[0].LibID != dep {
		t.Errorf("expected dep %x unreferenced, got %v", dep, unreferenced)
	}
}

func TestBuildDepGraph_Undeclared(t *testing.T) {
	lib := buildLib(t, nil,
		func(c *vm.Cursor) {
			c.WriteByte(byte(vm.OpExec))
			c.WriteByte(0) // no deps declared, this index is out of range
			c.WriteWord(0x20)
		},
	)

	graph, err := BuildDepGraph(lib)
	if err != nil {
		t.Fatalf("BuildDepGraph: %v", err)
	}

	if len(graph.Undeclared) != 1 {
		t.Fatalf("expected 1 undeclared reference, got %d", len(graph.Undeclared))
	}
	if graph.Undeclared[0].Kind != DepExec || graph.Undeclared[0].Target != 0x20 {
		t.Errorf("unexpected undeclared reference: %+v", graph.Undeclared[0])
	}
}
