package encoder

import "github.com/aluvm/aluvm/vm"

// mnemonics maps every concrete opcode to the text name disassembly prints,
// grouped by instruction family the same way the
// teacher's encoder split branch/data-processing/memory/other into
// separate files (spec §4.4's ten families, here one flat table since the
// AluVM opcode space is small enough not to need per-family files).
var mnemonics = map[vm.Opcode]string{
	vm.OpFail:    "fail",
	vm.OpSucc:    "succ",
	vm.OpJmp:     "jmp",
	vm.OpJif:     "jif",
	vm.OpRoutine: "routine",
	vm.OpCall:    "call",
	vm.OpExec:    "exec",
	vm.OpRet:     "ret",

	vm.OpClrA:    "clr_a",
	vm.OpClrF:    "clr_f",
	vm.OpClrR:    "clr_r",
	vm.OpPutA:    "put_a",
	vm.OpPutF:    "put_f",
	vm.OpPutR:    "put_r",
	vm.OpPutIfA:  "putif_a",
	vm.OpPutIfF:  "putif_f",
	vm.OpPutIfR:  "putif_r",

	vm.OpMov:   "mov",
	vm.OpDup:   "dup",
	vm.OpSwp:   "swp",
	vm.OpCpy:   "cpy",
	vm.OpCnv:   "cnv",
	vm.OpSpy:   "spy",
	vm.OpCnvAF: "cnv_af",
	vm.OpCnvFA: "cnv_fa",

	vm.OpGt:         "gt",
	vm.OpLt:         "lt",
	vm.OpEq:         "eq",
	vm.OpIfZero:     "ifz",
	vm.OpIfNotSet:   "ifn",
	vm.OpStMerge:    "stmerge",
	vm.OpStInv:      "stinv",

	vm.OpNegA: "neg_a",
	vm.OpNegF: "neg_f",
	vm.OpAbsA: "abs_a",
	vm.OpAbsF: "abs_f",
	vm.OpAddA: "add_a",
	vm.OpSubA: "sub_a",
	vm.OpMulA: "mul_a",
	vm.OpDivA: "div_a",
	vm.OpRemA: "rem_a",
	vm.OpAddF: "add_f",
	vm.OpSubF: "sub_f",
	vm.OpMulF: "mul_f",
	vm.OpDivF: "div_f",
	vm.OpStp:  "stp",

	vm.OpAnd:  "and",
	vm.OpOr:   "or",
	vm.OpXor:  "xor",
	vm.OpNot:  "not",
	vm.OpShl:  "shl",
	vm.OpShrA: "shr_a",
	vm.OpShrR: "shr_r",
	vm.OpScl:  "scl",
	vm.OpScr:  "scr",
	vm.OpRev:  "rev",

	vm.OpPutS:  "put_s",
	vm.OpMovS:  "mov_s",
	vm.OpSwpS:  "swp_s",
	vm.OpFillS: "fill_s",
	vm.OpLenS:  "len_s",
	vm.OpCntS:  "cnt_s",
	vm.OpEqS:   "eq_s",
	vm.OpConS:  "con_s",
	vm.OpFindS: "find_s",
	vm.OpExtrS: "extr_s",
	vm.OpInjS:  "inj_s",
	vm.OpJoinS: "join_s",
	vm.OpSpltS: "splt_s",
	vm.OpInsS:  "ins_s",
	vm.OpDelS:  "del_s",
	vm.OpRevS:  "rev_s",

	vm.OpRipemd: "ripemd",
	vm.OpSha256: "sha256",
	vm.OpSha512: "sha512",

	vm.OpSecp256kGen: "secp_gen",
	vm.OpSecp256kMul: "secp_mul",
	vm.OpSecp256kAdd: "secp_add",
	vm.OpSecp256kNeg: "secp_neg",
	vm.OpCurve25519:  "curve25519",

	vm.OpNop: "nop",
}

func familyLetter(f vm.Family) string {
	switch f {
	case vm.FamilyA:
		return "a"
	case vm.FamilyF:
		return "f"
	case vm.FamilyR:
		return "r"
	default:
		return "s"
	}
}
