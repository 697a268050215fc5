package base

import "fmt"

// DataType is the element type of a Vector.
type DataType uint8

const (
	U8 DataType = iota + 1
	I32
	I64
	F32
	F64
	Str
)

// Size returns the width of one element, or 0 for variable width types.
func (t DataType) Size() int {
	switch t {
	case U8:
		return 1
	case I32, F32:
		return 4
	case I64, F64:
		return 8
	default:
		return 0
	}
}

func (t DataType) Valid() bool {
	_, ok := dtypeNames[t]
	return ok
}

var dtypeNames = map[DataType]string{
	U8:  "u8",
	I32: "i32",
	I64: "i64",
	F32: "f32",
	F64: "f64",
	Str: "str",
}

func (t DataType) String() string {
	if name, ok := dtypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("dtype(%d)", uint8(t))
}
