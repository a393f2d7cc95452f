package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aluvm/aluvm/service"
	"github.com/aluvm/aluvm/vm"
)

// watch.go replaces the teacher's expr_lexer.go/expr_parser.go: ARM watch
// expressions parse C-like pointer/struct-member syntax over a flat
// register+memory model that has no AluVM analogue. This is a much smaller
// grammar scoped to AluVM's register-bank/index syntax (spec §3):
//
//	<ref> [ "==" | "!=" <rhs> ]
//
// ref is "a3[7]", "f0[0]", "r4[12]", "s[200]", or one of the scalars
// "st0"/"cy0"/"ca0". rhs is a hex literal ("0x2a"), a decimal integer, or
// "true"/"false" for st0. A bare ref with no operator means "is this slot
// set" for A/F/R/S refs, or "is this scalar non-zero" for st0/cy0/ca0.

// ParseRegRef parses "a3[7]" / "f0[0]" / "r4[12]" into a vm.RegRef. S refs
// use "s[200]" (bank is unused for the byte-string family).
func ParseRegRef(s string) (vm.RegRef, error) {
	if len(s) < 4 {
		return vm.RegRef{}, fmt.Errorf("watch: %q is not a register reference", s)
	}
	open := strings.IndexByte(s, '[')
	close := strings.IndexByte(s, ']')
	if open < 2 || close != len(s)-1 || close <= open {
		return vm.RegRef{}, fmt.Errorf("watch: %q is not a register reference", s)
	}
	familyLetter := s[0]
	bankDigits := s[1:open]
	idxStr := s[open+1 : close]

	idx, err := strconv.ParseUint(idxStr, 10, 16)
	if err != nil {
		return vm.RegRef{}, fmt.Errorf("watch: bad index in %q: %w", s, err)
	}

	var family vm.Family
	switch familyLetter {
	case 'a':
		family = vm.FamilyA
	case 'f':
		family = vm.FamilyF
	case 'r':
		family = vm.FamilyR
	case 's':
		family = vm.FamilyS
		if bankDigits != "" {
			return vm.RegRef{}, fmt.Errorf("watch: s refs take no bank, got %q", s)
		}
		return vm.RegRef{Family: family, Index: byte(idx)}, nil
	default:
		return vm.RegRef{}, fmt.Errorf("watch: unknown family %q", string(familyLetter))
	}

	bank, err := strconv.ParseUint(bankDigits, 10, 8)
	if err != nil || bank > 7 {
		return vm.RegRef{}, fmt.Errorf("watch: bad bank in %q", s)
	}
	return vm.RegRef{Family: family, Bank: byte(bank), Index: byte(idx)}, nil
}

// refHex reads a register's hex rendering out of a RegisterState snapshot,
// mirroring what RegisterFile.Get/GetS would say live.
func refHex(snap service.RegisterState, ref vm.RegRef) (string, bool) {
	switch ref.Family {
	case vm.FamilyA:
		sv := snap.A[ref.Bank][ref.Index]
		return sv.Hex, sv.Set
	case vm.FamilyF:
		sv := snap.F[ref.Bank][ref.Index]
		return sv.Hex, sv.Set
	case vm.FamilyR:
		sv := snap.R[ref.Bank][ref.Index]
		return sv.Hex, sv.Set
	default:
		hex, ok := snap.S[ref.Index]
		return hex, ok
	}
}

// EvaluateWatch parses and evaluates a watch expression against a live
// session, for use both as service.ConditionEvaluator (conditional
// breakpoints) and by Watchpoint.Check below.
func EvaluateWatch(rf *vm.RegisterFile, expr string) (bool, error) {
	return evaluateWatch(service.SnapshotRegisters(rf), expr)
}

func evaluateWatch(snap service.RegisterState, expr string) (bool, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return false, fmt.Errorf("watch: empty expression")
	}

	for _, op := range []string{"==", "!="} {
		if idx := strings.Index(expr, op); idx >= 0 {
			lhs := strings.TrimSpace(expr[:idx])
			rhs := strings.TrimSpace(expr[idx+len(op):])
			got, err := lhsValue(snap, lhs)
			if err != nil {
				return false, err
			}
			if !strings.HasPrefix(strings.ToLower(rhs), "0x") {
				if n, perr := strconv.ParseUint(rhs, 10, 64); perr == nil {
					rhs = strconv.FormatUint(n, 16)
				}
			}
			eq := normalizeHex(got) == normalizeHex(rhs)
			if op == "!=" {
				return !eq, nil
			}
			return eq, nil
		}
	}

	switch expr {
	case "st0":
		return snap.St0, nil
	case "cy0":
		return snap.Cy0 != 0, nil
	case "ca0":
		return snap.Ca0 != 0, nil
	}
	ref, err := ParseRegRef(expr)
	if err != nil {
		return false, err
	}
	_, set := refHex(snap, ref)
	return set, nil
}

func lhsValue(snap service.RegisterState, lhs string) (string, error) {
	switch lhs {
	case "st0":
		if snap.St0 {
			return "true", nil
		}
		return "false", nil
	case "cy0":
		return fmt.Sprintf("%x", snap.Cy0), nil
	case "ca0":
		return fmt.Sprintf("%x", snap.Ca0), nil
	}
	ref, err := ParseRegRef(lhs)
	if err != nil {
		return "", err
	}
	hex, set := refHex(snap, ref)
	if !set {
		return "", fmt.Errorf("watch: %s is unset", lhs)
	}
	return hex, nil
}

func normalizeHex(s string) string {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	s = strings.TrimLeft(s, "0")
	if s == "" {
		return "0"
	}
	return s
}
