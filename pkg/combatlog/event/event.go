// Package event defines the typed records a combat log line decodes into.
//
// The set of built-in kinds is closed: Emote, SpellCastSuccess,
// SpellDamage, SpellHeal and Unsupported. Lines whose event tag is not
// recognized decode to Unsupported, which is a legitimate classification,
// not a failure. Schema-defined kinds decode to Custom.
package event

import "github.com/wowlog/wowlog-go/pkg/combatlog/cell"

// Type identifies an event kind.
type Type string

// Built-in event types.
const (
	TypeEmote            Type = "emote"
	TypeSpellCastSuccess Type = "spell_cast_success"
	TypeSpellDamage      Type = "spell_damage"
	TypeSpellHeal        Type = "spell_heal"
	TypeUnsupported      Type = "unsupported"
)

// Event is implemented by every decoded record kind.
type Event interface {
	EventType() Type
}

// Time is the timestamp prefix of a combat log line, kept as the raw
// digit runs the line carries. The format provides no year or timezone,
// so the components are not folded into a calendar type; ordering and
// arithmetic are the caller's concern.
type Time struct {
	Month  string `json:"month"`
	Day    string `json:"day"`
	Hour   string `json:"hour"`
	Minute string `json:"minute"`
	Second string `json:"second"`
	Millis string `json:"ms"`
}

// String renders the timestamp the way the log file writes it.
func (t Time) String() string {
	return t.Month + "/" + t.Day + " " + t.Hour + ":" + t.Minute + ":" + t.Second + "." + t.Millis
}

// Emote is a free-text emote line. Its fields are plain delimited
// substrings rather than grammar-typed cells: the trailing text is free
// form and may contain any delimiter.
type Emote struct {
	SourceGUID      string `json:"sourceGUID"`
	SourceName      string `json:"sourceName"`
	SourceFlags     string `json:"sourceFlags"`
	SourceRaidFlags string `json:"sourceRaidFlags"`
	Text            string `json:"text"`
}

// EventType implements Event.
func (*Emote) EventType() Type { return TypeEmote }

// SpellBase is the 28-cell prefix shared by every spell event: source and
// destination identity, spell identity, the advanced-logging combatant
// snapshot, and position.
type SpellBase struct {
	SourceGUID      cell.Cell `json:"sourceGUID"`
	SourceName      cell.Cell `json:"sourceName"`
	SourceFlags     cell.Cell `json:"sourceFlags"`
	SourceRaidFlags cell.Cell `json:"sourceRaidFlags"`
	DestGUID        cell.Cell `json:"destGUID"`
	DestName        cell.Cell `json:"destName"`
	DestFlags       cell.Cell `json:"destFlags"`
	DestRaidFlags   cell.Cell `json:"destRaidFlags"`
	SpellID         cell.Cell `json:"spellId"`
	SpellName       cell.Cell `json:"spellName"`
	SpellSchool     cell.Cell `json:"spellSchool"`
	UnitGUID        cell.Cell `json:"unitGUID"`
	OwnerGUID       cell.Cell `json:"ownerGUID"`
	CurrentHP       cell.Cell `json:"currHp"`
	MaxHP           cell.Cell `json:"maxHp"`
	AttackPower     cell.Cell `json:"attackPower"`
	SpellPower      cell.Cell `json:"spellPower"`
	Armor           cell.Cell `json:"armor"`
	TotalAbsorbs    cell.Cell `json:"totalDamageAbsorbs"`
	ResourceType    cell.Cell `json:"resourceType"`
	CurrentResource cell.Cell `json:"currResource"`
	MaxResource     cell.Cell `json:"maxResource"`
	ResourceCost    cell.Cell `json:"resourceCost"`
	Y               cell.Cell `json:"y"`
	X               cell.Cell `json:"x"`
	MapID           cell.Cell `json:"mapId"`
	Facing          cell.Cell `json:"facing"`
	ItemLevel       cell.Cell `json:"ilvl"`
}

// SpellBaseArity is the cell count of the shared spell prefix.
const SpellBaseArity = 28

// SpellCastSuccess is a successful spell cast. It carries the shared
// prefix and nothing else.
type SpellCastSuccess struct {
	SpellBase
}

// EventType implements Event.
func (*SpellCastSuccess) EventType() Type { return TypeSpellCastSuccess }

// SpellDamage is a damage event: the shared prefix plus the damage
// breakdown and four boolean-coerced flag fields.
type SpellDamage struct {
	SpellBase
	Amount   cell.Cell `json:"amount"`
	Overkill cell.Cell `json:"overkill"`
	School   cell.Cell `json:"school"`
	Resisted cell.Cell `json:"resisted"`
	Blocked  cell.Cell `json:"blocked"`
	Absorbed cell.Cell `json:"absorbed"`
	Critical bool      `json:"critical"`
	Glancing bool      `json:"glancing"`
	Crushing bool      `json:"crushing"`
	OffHand  bool      `json:"isOffHand"`
}

// EventType implements Event.
func (*SpellDamage) EventType() Type { return TypeSpellDamage }

// SpellHeal is a heal event: the shared prefix plus the heal breakdown
// and a boolean-coerced critical flag.
type SpellHeal struct {
	SpellBase
	Amount      cell.Cell `json:"amount"`
	Overhealing cell.Cell `json:"overhealing"`
	Absorbed    cell.Cell `json:"absorbed"`
	Critical    bool      `json:"critical"`
}

// EventType implements Event.
func (*SpellHeal) EventType() Type { return TypeSpellHeal }

// Unsupported marks a line whose event tag is recognized as well-formed
// but not implemented. It carries no payload; the raw line remains
// available to the caller through the record that wraps it.
type Unsupported struct{}

// EventType implements Event.
func (Unsupported) EventType() Type { return TypeUnsupported }

// Custom is an event decoded by a user-supplied schema (see the schema
// package). Fields holds the decoded cells by schema field name; Flags
// holds the boolean-coerced tail fields.
type Custom struct {
	Tag    string               `json:"tag"`
	Fields map[string]cell.Cell `json:"fields"`
	Flags  map[string]bool      `json:"flags,omitempty"`
}

// EventType implements Event.
func (c *Custom) EventType() Type { return Type(c.Tag) }
