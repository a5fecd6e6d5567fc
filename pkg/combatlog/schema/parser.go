package schema

import (
	"context"
	"strings"

	"github.com/wowlog/wowlog-go/internal/parser"
	"github.com/wowlog/wowlog-go/pkg/combatlog"
	"github.com/wowlog/wowlog-go/pkg/combatlog/cell"
	"github.com/wowlog/wowlog-go/pkg/combatlog/event"
)

// Parser decodes lines whose event tag matches one of the schemas in a
// File. It implements combatlog.Parser; lines with other tags do not
// match, so it is typically chained before or after
// combatlog.DefaultParser.
type Parser struct {
	byTag map[string]Event
}

// NewParser compiles a validated schema file into a Parser.
func NewParser(sf *File) (*Parser, error) {
	if err := sf.Validate(); err != nil {
		return nil, err
	}
	byTag := make(map[string]Event, len(sf.Events))
	for _, ev := range sf.Events {
		byTag[ev.Tag] = ev
	}
	return &Parser{byTag: byTag}, nil
}

// FromFile loads a schema file and compiles it into a Parser.
func FromFile(path string) (*Parser, error) {
	sf, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewParser(sf)
}

// Tags returns the event tags this parser decodes.
func (p *Parser) Tags() []string {
	tags := make([]string, 0, len(p.byTag))
	for tag := range p.byTag {
		tags = append(tags, tag)
	}
	return tags
}

// ParseLine implements combatlog.Parser.
//
// A line matches when it frames as a combat log line and its tag is
// declared in the schema file. Matching lines decode through the cell
// grammar with the schema's fixed arity; mismatched counts fail with an
// arity error just like the built-in events. Non-matching lines return
// Matched=false without error, including lines that fail framing; the
// default parser in the chain owns that diagnosis.
func (p *Parser) ParseLine(ctx context.Context, line string) (combatlog.ParseResult, error) {
	line = strings.TrimRight(line, "\r")

	ts, body, err := parser.SplitLine(line)
	if err != nil {
		return combatlog.ParseResult{}, nil
	}
	tag, rest, found := strings.Cut(body, ",")
	if !found {
		return combatlog.ParseResult{}, nil
	}
	sc, ok := p.byTag[tag]
	if !ok {
		return combatlog.ParseResult{}, nil
	}

	cells, trailing, err := cell.DecodeList(rest)
	if err != nil {
		return combatlog.ParseResult{}, err
	}
	if len(cells) != sc.Arity() {
		return combatlog.ParseResult{}, &parser.ArityError{
			Type: event.Type(tag),
			Want: sc.Arity(),
			Got:  len(cells),
		}
	}

	ev := &event.Custom{
		Tag:    tag,
		Fields: make(map[string]cell.Cell, len(sc.Fields)),
	}
	boolStart := len(sc.Fields) - sc.BoolTail
	for i, name := range sc.Fields {
		if i >= boolStart {
			if ev.Flags == nil {
				ev.Flags = make(map[string]bool, sc.BoolTail)
			}
			ev.Flags[name] = cells[i].Bool()
			continue
		}
		ev.Fields[name] = cells[i]
	}

	rec := &combatlog.Record{
		Time:     ts,
		Type:     ev.EventType(),
		Event:    ev,
		Trailing: trailing,
	}
	return combatlog.ParseResult{Records: []*combatlog.Record{rec}, Matched: true}, nil
}

// Ensure Parser implements combatlog.Parser.
var _ combatlog.Parser = (*Parser)(nil)
