package combatlog

import (
	"github.com/wowlog/wowlog-go/internal/parser"
	"github.com/wowlog/wowlog-go/pkg/combatlog/event"
)

// Record is one decoded combat log line: its timestamp and typed event.
//
// Cell-typed fields of the event share the backing array of the source
// line and are scoped to it; copy out any field that must outlive the
// line.
type Record struct {
	// Time is the line's timestamp, kept as raw digit runs.
	Time event.Time `json:"time"`

	// Type mirrors Event.EventType() for convenient filtering and output.
	Type event.Type `json:"type"`

	// Event is the decoded payload.
	Event event.Event `json:"event,omitempty"`

	// RawLine is the original line, populated only when requested via
	// WithIncludeRawLine / WithParseIncludeRawLine.
	RawLine string `json:"raw,omitempty"`

	// Num is the 1-based line number within the input, 0 when the record
	// was parsed outside a driver.
	Num int `json:"-"`

	// Trailing is unconsumed input after the decoded event, empty on a
	// clean decode. Drivers additionally surface it as *TrailingDataError.
	Trailing string `json:"-"`
}

// ParseLine decodes a single combat log line.
//
// Return values:
//   - (*Record, nil): successfully decoded; Record.Type is
//     event.TypeUnsupported when the event tag is not implemented.
//   - (nil, error): the line is malformed. The error is a *FramingError,
//     *ArityError or *cell.GrammarError.
//
// Example:
//
//	rec, err := combatlog.ParseLine(`8/3 20:15:42.123  EMOTE,Player-1-ABC,"Thrall",0x0,0x0,Hello there`)
//	if err != nil {
//	    log.Printf("parse error: %v", err)
//	} else if em, ok := rec.Event.(*event.Emote); ok {
//	    fmt.Println(em.Text)
//	}
func ParseLine(line string) (*Record, error) {
	res, err := parser.Parse(line)
	if err != nil {
		return nil, err
	}
	return &Record{
		Time:     res.Time,
		Type:     res.Event.EventType(),
		Event:    res.Event,
		Trailing: res.Trailing,
	}, nil
}
