// Package parser decodes single World of Warcraft combat log lines into
// typed events. It is wired together by the public combatlog package.
package parser

import (
	"strings"

	"github.com/wowlog/wowlog-go/pkg/combatlog/event"
)

// Result is a fully decoded line.
type Result struct {
	Time  event.Time
	Event event.Event

	// Trailing is input the decoder did not consume. A non-empty value on
	// a supported event indicates the line carried more cells than the
	// schema expects; drivers report it as a data-integrity warning. For
	// Unsupported events Trailing is empty by construction.
	Trailing string
}

// Parse decodes one combat log line.
//
// Failure modes, in order of detection: a *FramingError when the
// timestamp prefix or the body separator is malformed, a
// *cell.GrammarError when a cell of a supported event does not parse, and
// an *ArityError when the decoded cell count does not match the event's
// schema. Lines with an unrecognized event tag succeed with an
// event.Unsupported payload.
func Parse(line string) (Result, error) {
	line = strings.TrimRight(line, "\r")

	ts, body, err := SplitLine(line)
	if err != nil {
		return Result{}, err
	}

	ev, trailing, err := dispatch(body)
	if err != nil {
		return Result{}, err
	}
	return Result{Time: ts, Event: ev, Trailing: trailing}, nil
}

// SplitLine frames a raw line into its timestamp and event body. The
// timestamp is "month/day hour:minute:second.millisecond" followed by
// exactly two spaces; all components are digit runs with no range
// validation.
func SplitLine(line string) (event.Time, string, error) {
	var ts event.Time
	rest := line

	var ok bool
	if ts.Month, rest, ok = digits(rest); !ok {
		return ts, "", &FramingError{Msg: "expected month"}
	}
	if rest, ok = literal(rest, '/'); !ok {
		return ts, "", &FramingError{Msg: "expected '/' after month"}
	}
	if ts.Day, rest, ok = digits(rest); !ok {
		return ts, "", &FramingError{Msg: "expected day"}
	}
	if rest, ok = literal(rest, ' '); !ok {
		return ts, "", &FramingError{Msg: "expected ' ' after date"}
	}
	if ts.Hour, rest, ok = digits(rest); !ok {
		return ts, "", &FramingError{Msg: "expected hour"}
	}
	if rest, ok = literal(rest, ':'); !ok {
		return ts, "", &FramingError{Msg: "expected ':' after hour"}
	}
	if ts.Minute, rest, ok = digits(rest); !ok {
		return ts, "", &FramingError{Msg: "expected minute"}
	}
	if rest, ok = literal(rest, ':'); !ok {
		return ts, "", &FramingError{Msg: "expected ':' after minute"}
	}
	if ts.Second, rest, ok = digits(rest); !ok {
		return ts, "", &FramingError{Msg: "expected second"}
	}
	if rest, ok = literal(rest, '.'); !ok {
		return ts, "", &FramingError{Msg: "expected '.' after second"}
	}
	if ts.Millis, rest, ok = digits(rest); !ok {
		return ts, "", &FramingError{Msg: "expected milliseconds"}
	}
	if !strings.HasPrefix(rest, "  ") {
		return ts, "", &FramingError{Msg: "expected two spaces before event body"}
	}
	return ts, rest[2:], nil
}

// dispatch reads the event tag before the first comma and routes to the
// matching decoder. Unrecognized tags yield event.Unsupported with the
// body untouched; that is a classification, not an error.
func dispatch(body string) (event.Event, string, error) {
	tag, _, found := strings.Cut(body, ",")
	if !found {
		return nil, "", &FramingError{Msg: "event body has no comma after type tag"}
	}
	switch tag {
	case "EMOTE":
		return decodeEmote(body)
	case "SPELL_CAST_SUCCESS":
		return decodeSpellCastSuccess(body)
	case "SPELL_DAMAGE":
		return decodeSpellDamage(body)
	case "SPELL_HEAL":
		return decodeSpellHeal(body)
	default:
		return event.Unsupported{}, "", nil
	}
}

func digits(s string) (run, rest string, ok bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return "", s, false
	}
	return s[:i], s[i:], true
}

func literal(s string, c byte) (string, bool) {
	if len(s) == 0 || s[0] != c {
		return s, false
	}
	return s[1:], true
}
