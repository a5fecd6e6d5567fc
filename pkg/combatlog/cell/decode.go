package cell

import (
	"fmt"
	"strconv"
)

// GrammarError reports that no grammar alternative matched at the current
// position of the input.
type GrammarError struct {
	// Input is the remaining input at the failure point.
	Input string
	// Msg describes the alternative that was expected.
	Msg string
}

func (e *GrammarError) Error() string {
	in := e.Input
	if len(in) > 40 {
		in = in[:40] + "..."
	}
	return fmt.Sprintf("cell grammar: %s at %q", e.Msg, in)
}

func errf(input, format string, args ...any) (Cell, string, error) {
	return Cell{}, input, &GrammarError{Input: input, Msg: fmt.Sprintf(format, args...)}
}

// Decode decodes a single cell from the front of input and returns it
// together with the unconsumed remainder. It fails with *GrammarError if
// no grammar alternative matches.
//
// Dispatch is keyed on the first one or two characters:
//
//	'[' or '('     array, recursively decoded, matching closer required
//	"0x"           hex literal, kept verbatim as a string cell
//	'0'..'8', '-'  number: multi-power, then float, then integer
//	anything else  string: icon-path escape, quoted run, or unquoted run
//
// A leading '9' is not routed to the number alternatives and decodes as an
// unquoted string; the combat log format never relies on the distinction
// and the behavior is kept for compatibility with existing consumers.
func Decode(input string) (Cell, string, error) {
	if input == "" {
		return errf(input, "unexpected end of input")
	}
	// Single-character input must not reach the two-character "0x"
	// lookahead below.
	if len(input) == 1 {
		switch input[0] {
		case '[':
			return decodeArray(input, '[', ']')
		case '(':
			return decodeArray(input, '(', ')')
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '-':
			return decodeInt(input)
		default:
			return decodeString(input)
		}
	}
	switch input[0] {
	case '[':
		return decodeArray(input, '[', ']')
	case '(':
		return decodeArray(input, '(', ')')
	case '0':
		if input[1] == 'x' {
			return decodeHex(input)
		}
		return decodeNumber(input)
	case '1', '2', '3', '4', '5', '6', '7', '8', '-':
		return decodeNumber(input)
	default:
		return decodeString(input)
	}
}

// DecodeList decodes a comma-separated list of one or more cells. It
// consumes as many "<cell>" and ",<cell>" runs as match; a separator whose
// following element does not parse is left unconsumed in the remainder, so
// the caller can distinguish trailing data from a clean stop.
func DecodeList(input string) ([]Cell, string, error) {
	c, rest, err := Decode(input)
	if err != nil {
		return nil, input, err
	}
	cells := []Cell{c}
	for len(rest) > 0 && rest[0] == ',' {
		c, after, err := Decode(rest[1:])
		if err != nil {
			break
		}
		cells = append(cells, c)
		rest = after
	}
	return cells, rest, nil
}

// decodeArray decodes "open cells... close" where cells is a possibly
// empty comma-separated list. Delimiters must pair: '[' with ']' and '('
// with ')'.
func decodeArray(input string, open, close byte) (Cell, string, error) {
	rest := input[1:]
	var elems []Cell
	if len(rest) > 0 && rest[0] != close {
		var err error
		elems, rest, err = DecodeList(rest)
		if err != nil {
			return Cell{}, input, err
		}
	}
	if len(rest) == 0 || rest[0] != close {
		return errf(rest, "expected %q closing array", string(close))
	}
	return Cell{Kind: KindArray, Elems: elems}, rest[1:], nil
}

// decodeHex consumes "0x" plus one or more alphanumeric characters. The
// value is kept verbatim, "0x" prefix included, and never numerically
// interpreted.
func decodeHex(input string) (Cell, string, error) {
	i := 2
	for i < len(input) && isAlphanumeric(input[i]) {
		i++
	}
	if i == 2 {
		return errf(input, "expected hex digits after 0x")
	}
	return Cell{Kind: KindString, Str: input[:i]}, input[i:], nil
}

// decodeNumber tries multi-power first so that "5|3" is never mis-read as
// the integer 5 followed by leftover "|3", then float, then integer.
func decodeNumber(input string) (Cell, string, error) {
	if c, rest, err := decodeMultiPower(input); err == nil {
		return c, rest, nil
	}
	if c, rest, err := decodeFloat(input); err == nil {
		return c, rest, nil
	}
	return decodeInt(input)
}

// decodeMultiPower decodes "<digits>|<digits>". Both halves are unsigned.
func decodeMultiPower(input string) (Cell, string, error) {
	typ, rest, ok := takeDigits(input)
	if !ok || len(rest) == 0 || rest[0] != '|' {
		return errf(input, "expected multi-power pair")
	}
	amount, rest, ok := takeDigits(rest[1:])
	if !ok {
		return errf(input, "expected multi-power amount")
	}
	t, err := strconv.ParseInt(typ, 10, 64)
	if err != nil {
		return errf(input, "multi-power type out of range")
	}
	a, err := strconv.ParseInt(amount, 10, 64)
	if err != nil {
		return errf(input, "multi-power amount out of range")
	}
	return Cell{Kind: KindMultiPower, Power: MultiPower{Type: t, Amount: a}}, rest, nil
}

// decodeFloat decodes "[-]<digits>.<digits>". A bare integer is not a
// float; the '.' is required.
func decodeFloat(input string) (Cell, string, error) {
	rest := input
	if len(rest) > 0 && rest[0] == '-' {
		rest = rest[1:]
	}
	_, rest, ok := takeDigits(rest)
	if !ok || len(rest) == 0 || rest[0] != '.' {
		return errf(input, "expected float")
	}
	_, rest, ok = takeDigits(rest[1:])
	if !ok {
		return errf(input, "expected digits after decimal point")
	}
	span := input[:len(input)-len(rest)]
	v, err := strconv.ParseFloat(span, 64)
	if err != nil {
		return errf(input, "float out of range")
	}
	return Cell{Kind: KindFloat, Float: v}, rest, nil
}

// decodeInt decodes "[-]<digits>".
func decodeInt(input string) (Cell, string, error) {
	rest := input
	if len(rest) > 0 && rest[0] == '-' {
		rest = rest[1:]
	}
	_, rest, ok := takeDigits(rest)
	if !ok {
		return errf(input, "expected integer")
	}
	span := input[:len(input)-len(rest)]
	v, err := strconv.ParseInt(span, 10, 64)
	if err != nil {
		return errf(input, "integer out of range")
	}
	return Cell{Kind: KindInt, Int: v}, rest, nil
}

// decodeString decodes one of the three string forms:
//
//	|T.....!   icon-path escape; yields the inner text
//	"....."    quoted run, excluding '"' and '\'; yields the inner text
//	.....      unquoted run, stopping at any structural delimiter
func decodeString(input string) (Cell, string, error) {
	switch input[0] {
	case '|':
		if len(input) < 2 || input[1] != 'T' {
			return errf(input, "expected |T icon escape")
		}
		i := 2
		for i < len(input) && input[i] >= 0x20 && input[i] != '!' {
			i++
		}
		if i == 2 || i == len(input) || input[i] != '!' {
			return errf(input, "unterminated icon escape")
		}
		return Cell{Kind: KindString, Str: input[2:i]}, input[i+1:], nil
	case '"':
		i := 1
		for i < len(input) && isQuotedChar(input[i]) {
			i++
		}
		if i == len(input) || input[i] != '"' {
			return errf(input, "unterminated quoted string")
		}
		return Cell{Kind: KindString, Str: input[1:i]}, input[i+1:], nil
	default:
		i := 0
		for i < len(input) && isUnquotedChar(input[i]) {
			i++
		}
		if i == 0 {
			return errf(input, "expected string")
		}
		return Cell{Kind: KindString, Str: input[:i]}, input[i:], nil
	}
}

func takeDigits(s string) (digits, rest string, ok bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return "", s, false
	}
	return s[:i], s[i:], true
}

func isAlphanumeric(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// isQuotedChar reports whether c may appear inside a quoted string:
// visible characters excluding the quote and backslash. Bytes of
// multi-byte UTF-8 sequences are all >= 0x80 and therefore pass.
func isQuotedChar(c byte) bool {
	return c >= 0x20 && c != '"' && c != '\\'
}

// isUnquotedChar additionally excludes the structural delimiters an
// unquoted token must stop at.
func isUnquotedChar(c byte) bool {
	return c >= 0x20 && c != '"' && c != '\\' && c != ']' && c != ',' && c != ')'
}
