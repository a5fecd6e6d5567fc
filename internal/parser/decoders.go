package parser

import (
	"strings"

	"github.com/wowlog/wowlog-go/pkg/combatlog/cell"
	"github.com/wowlog/wowlog-go/pkg/combatlog/event"
)

// Fixed cell counts per event kind, tag and comma excluded.
const (
	emoteArity       = 5
	castSuccessArity = event.SpellBaseArity
	damageArity      = event.SpellBaseArity + 10
	healArity        = event.SpellBaseArity + 5
)

// decodeEmote maps the five comma-delimited emote fields. The fields are
// plain substrings, not cells: the trailing message is free text and must
// not be subject to the cell grammar's delimiter rules. The source name
// is stored without its surrounding quotes.
func decodeEmote(body string) (event.Event, string, error) {
	rest := body[len("EMOTE,"):]
	fields := strings.SplitN(rest, ",", emoteArity)
	if len(fields) != emoteArity {
		return nil, "", &ArityError{Type: event.TypeEmote, Want: emoteArity, Got: len(fields)}
	}
	return &event.Emote{
		SourceGUID:      fields[0],
		SourceName:      unquote(fields[1]),
		SourceFlags:     fields[2],
		SourceRaidFlags: fields[3],
		Text:            fields[4],
	}, "", nil
}

func decodeSpellCastSuccess(body string) (event.Event, string, error) {
	cells, trailing, err := decodeCells(body, "SPELL_CAST_SUCCESS,", event.TypeSpellCastSuccess, castSuccessArity)
	if err != nil {
		return nil, "", err
	}
	ev := &event.SpellCastSuccess{}
	ev.SpellBase = spellBase(cells)
	return ev, trailing, nil
}

func decodeSpellDamage(body string) (event.Event, string, error) {
	cells, trailing, err := decodeCells(body, "SPELL_DAMAGE,", event.TypeSpellDamage, damageArity)
	if err != nil {
		return nil, "", err
	}
	ev := &event.SpellDamage{
		SpellBase: spellBase(cells),
		Amount:    cells[28],
		Overkill:  cells[29],
		School:    cells[30],
		Resisted:  cells[31],
		Blocked:   cells[32],
		Absorbed:  cells[33],
		Critical:  cells[34].Bool(),
		Glancing:  cells[35].Bool(),
		Crushing:  cells[36].Bool(),
		OffHand:   cells[37].Bool(),
	}
	return ev, trailing, nil
}

func decodeSpellHeal(body string) (event.Event, string, error) {
	cells, trailing, err := decodeCells(body, "SPELL_HEAL,", event.TypeSpellHeal, healArity)
	if err != nil {
		return nil, "", err
	}
	ev := &event.SpellHeal{
		SpellBase:   spellBase(cells),
		Amount:      cells[28],
		Overhealing: cells[29],
		Absorbed:    cells[30],
		Critical:    cells[31].Bool(),
		// cells[32] is reserved and always nil in current log versions.
	}
	return ev, trailing, nil
}

// decodeCells strips the tag prefix, decodes the comma-separated cell
// list and enforces the event's fixed arity before any field is mapped.
func decodeCells(body, prefix string, typ event.Type, want int) ([]cell.Cell, string, error) {
	cells, trailing, err := cell.DecodeList(body[len(prefix):])
	if err != nil {
		return nil, "", err
	}
	if len(cells) != want {
		return nil, "", &ArityError{Type: typ, Want: want, Got: len(cells)}
	}
	return cells, trailing, nil
}

// spellBase maps the shared 28-cell prefix. Callers have already checked
// the slice is at least that long.
func spellBase(c []cell.Cell) event.SpellBase {
	return event.SpellBase{
		SourceGUID:      c[0],
		SourceName:      c[1],
		SourceFlags:     c[2],
		SourceRaidFlags: c[3],
		DestGUID:        c[4],
		DestName:        c[5],
		DestFlags:       c[6],
		DestRaidFlags:   c[7],
		SpellID:         c[8],
		SpellName:       c[9],
		SpellSchool:     c[10],
		UnitGUID:        c[11],
		OwnerGUID:       c[12],
		CurrentHP:       c[13],
		MaxHP:           c[14],
		AttackPower:     c[15],
		SpellPower:      c[16],
		Armor:           c[17],
		TotalAbsorbs:    c[18],
		ResourceType:    c[19],
		CurrentResource: c[20],
		MaxResource:     c[21],
		ResourceCost:    c[22],
		Y:               c[23],
		X:               c[24],
		MapID:           c[25],
		Facing:          c[26],
		ItemLevel:       c[27],
	}
}

// unquote strips one pair of surrounding double quotes, if present.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
