package qasm

// Kind identifies the category of an AST node. The set is closed.
type Kind int

const (
	KindProgram Kind = iota
	KindFormat
	KindInclude
	KindQreg
	KindCreg
	KindID
	KindIndexedID
	KindIDList
	KindPrimaryList
	KindGate
	KindGateBody
	KindGopList
	KindCustomUnitary
	KindUniversalUnitary
	KindCnot
	KindBarrier
	KindMeasure
	KindReset
	KindIf
	KindOpaque
	KindExpressionList
	KindReal
	KindInt
	KindBinaryOp
	KindPrefix
	KindExternal
)

var kindNames = [...]string{
	KindProgram:          "program",
	KindFormat:           "format",
	KindInclude:          "include",
	KindQreg:             "qreg",
	KindCreg:             "creg",
	KindID:               "id",
	KindIndexedID:        "indexed_id",
	KindIDList:           "id_list",
	KindPrimaryList:      "primary_list",
	KindGate:             "gate",
	KindGateBody:         "gate_body",
	KindGopList:          "gop_list",
	KindCustomUnitary:    "custom_unitary",
	KindUniversalUnitary: "universal_unitary",
	KindCnot:             "cnot",
	KindBarrier:          "barrier",
	KindMeasure:          "measure",
	KindReset:            "reset",
	KindIf:               "if",
	KindOpaque:           "opaque",
	KindExpressionList:   "expression_list",
	KindReal:             "real",
	KindInt:              "int",
	KindBinaryOp:         "binop",
	KindPrefix:           "prefix",
	KindExternal:         "external",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}
