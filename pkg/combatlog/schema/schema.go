// Package schema provides declarative decoding of combat log event kinds
// beyond the built-in set. Users describe an event's tag, ordered field
// names and trailing boolean flags in a YAML file; matching lines decode
// through the same cell grammar and arity discipline as the built-in
// events, yielding event.Custom records.
package schema

// File represents the structure of a YAML schema file.
//
// Example:
//
//	version: 1
//	events:
//	  - tag: SWING_DAMAGE
//	    fields: [sourceGUID, sourceName, sourceFlags, sourceRaidFlags,
//	             destGUID, destName, destFlags, destRaidFlags,
//	             amount, overkill, school, resisted, blocked, absorbed,
//	             critical, glancing, crushing, isOffHand]
//	    bool_tail: 4
type File struct {
	// Version is the schema file format version. Currently only version 1
	// is supported.
	Version int `yaml:"version"`

	// Events is the list of event schemas.
	Events []Event `yaml:"events"`
}

// Event declares one event kind.
type Event struct {
	// Tag is the event-type token at the head of the line body, exactly
	// as the log writes it (e.g. "SWING_DAMAGE"). Tags must be unique
	// within a file.
	Tag string `yaml:"tag"`

	// Fields names the cells of the event body in positional order. The
	// length of this list is the event's fixed arity.
	Fields []string `yaml:"fields"`

	// BoolTail is the number of trailing fields to coerce to booleans
	// (critical/glancing style flags). Must not exceed len(Fields).
	BoolTail int `yaml:"bool_tail"`
}

// Arity returns the event's fixed cell count.
func (e Event) Arity() int { return len(e.Fields) }
