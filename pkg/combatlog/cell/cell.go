// Package cell implements the value grammar of World of Warcraft combat
// log lines. Each comma-delimited token of an event body decodes into a
// Cell: a 64-bit integer, a float, a resource/amount pair, a string, or a
// bracketed array of further cells.
package cell

import (
	"strings"

	json "github.com/goccy/go-json"
)

// Kind identifies which variant a Cell holds.
type Kind int

const (
	// KindInt is a 64-bit signed integer.
	KindInt Kind = iota
	// KindFloat is a 64-bit float.
	KindFloat
	// KindMultiPower is a resource-type/amount integer pair ("3|450").
	KindMultiPower
	// KindString is a quoted, unquoted, hex or icon-path string.
	KindString
	// KindArray is an ordered, possibly empty, list of cells.
	KindArray
)

// String returns the kind name for error messages and debug output.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindMultiPower:
		return "multipower"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	}
	return "unknown"
}

// MultiPower is a resource-type/amount pair. The combat log writes it as
// two unsigned digit runs separated by a literal '|'.
type MultiPower struct {
	Type   int64 `json:"type"`
	Amount int64 `json:"amount"`
}

// Cell is one decoded value from a combat log line. Exactly one of the
// payload fields is meaningful, selected by Kind.
//
// String cells are substrings of the line they were decoded from; they
// share its backing array and are only valid while that line is being
// processed. Callers that retain a field past the line must copy it.
type Cell struct {
	Kind  Kind
	Int   int64
	Float float64
	Power MultiPower
	Str   string
	Elems []Cell
}

// Constructors, mainly for tests and schema-driven decoders.

// Int returns an integer cell.
func Int(v int64) Cell { return Cell{Kind: KindInt, Int: v} }

// Float returns a float cell.
func Float(v float64) Cell { return Cell{Kind: KindFloat, Float: v} }

// Power returns a multi-power cell.
func Power(typ, amount int64) Cell {
	return Cell{Kind: KindMultiPower, Power: MultiPower{Type: typ, Amount: amount}}
}

// String returns a string cell.
func String(s string) Cell { return Cell{Kind: KindString, Str: s} }

// Array returns an array cell.
func Array(elems ...Cell) Cell { return Cell{Kind: KindArray, Elems: elems} }

// Bool coerces a cell to a boolean flag, as the trailing fields of damage
// and heal events require.
//
// Numbers are true when nonzero (for multi-power, when the resource type
// is nonzero), arrays when non-empty, and strings when non-empty, except
// the literal token "nil", which the log format uses for an absent value
// and therefore coerces to false.
func (c Cell) Bool() bool {
	switch c.Kind {
	case KindInt:
		return c.Int != 0
	case KindFloat:
		return c.Float != 0
	case KindMultiPower:
		return c.Power.Type != 0
	case KindString:
		return c.Str != "" && c.Str != "nil"
	case KindArray:
		return len(c.Elems) != 0
	}
	return false
}

// MarshalJSON encodes the active variant directly: numbers as numbers,
// strings as strings, arrays as arrays, and multi-power pairs as a
// {"type","amount"} object.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case KindInt:
		return json.Marshal(c.Int)
	case KindFloat:
		return json.Marshal(c.Float)
	case KindMultiPower:
		return json.Marshal(c.Power)
	case KindString:
		return json.Marshal(c.Str)
	case KindArray:
		if c.Elems == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(c.Elems)
	}
	return []byte("null"), nil
}

// GoString renders a cell in a compact literal-like form for debug and
// error output.
func (c Cell) GoString() string {
	var sb strings.Builder
	c.writeGoString(&sb)
	return sb.String()
}

func (c Cell) writeGoString(sb *strings.Builder) {
	switch c.Kind {
	case KindInt:
		sb.WriteString("Int(")
		writeInt(sb, c.Int)
		sb.WriteByte(')')
	case KindFloat:
		sb.WriteString("Float(")
		b, _ := json.Marshal(c.Float)
		sb.Write(b)
		sb.WriteByte(')')
	case KindMultiPower:
		sb.WriteString("Power(")
		writeInt(sb, c.Power.Type)
		sb.WriteByte('|')
		writeInt(sb, c.Power.Amount)
		sb.WriteByte(')')
	case KindString:
		b, _ := json.Marshal(c.Str)
		sb.Write(b)
	case KindArray:
		sb.WriteByte('[')
		for i, e := range c.Elems {
			if i > 0 {
				sb.WriteByte(',')
			}
			e.writeGoString(sb)
		}
		sb.WriteByte(']')
	}
}

func writeInt(sb *strings.Builder, v int64) {
	b, _ := json.Marshal(v)
	sb.Write(b)
}
