package parser

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wowlog/wowlog-go/pkg/combatlog/cell"
	"github.com/wowlog/wowlog-go/pkg/combatlog/event"
)

// The SPELL_DAMAGE body from a real retail combat log (38 cells).
const damageBody = `SPELL_DAMAGE,Player-1379-0A9FF58F,"Yerrog-Sanguino",0x512,0x0,Creature-0-4252-2515-19964-196102-000550239A,"Conjured Lasher",0xa48,0x0,213709,"Brambles",0x8,Creature-0-4252-2515-19964-196102-000550239A,0000000000000000,1483954,1952835,0,0,5043,0,1,0,0,0,-5095.52,1142.47,2073,6.1556,70,488,488,-1,8,0,0,0,nil,nil,nil`

func TestSplitLine(t *testing.T) {
	ts, body, err := SplitLine("8/3 20:15:42.123  EMOTE,rest")
	require.NoError(t, err)
	assert.Equal(t, event.Time{
		Month: "8", Day: "3", Hour: "20", Minute: "15", Second: "42", Millis: "123",
	}, ts)
	assert.Equal(t, "EMOTE,rest", body)
}

func TestSplitLine_Malformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "empty", line: ""},
		{name: "no timestamp", line: "EMOTE,a,b,c,d"},
		{name: "missing slash", line: "83 20:15:42.123  EMOTE,x"},
		{name: "missing millis", line: "8/3 20:15:42  EMOTE,x"},
		{name: "single space separator", line: "8/3 20:15:42.123 EMOTE,x"},
		{name: "alpha month", line: "Aug/3 20:15:42.123  EMOTE,x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := SplitLine(tt.line)
			var fe *FramingError
			require.ErrorAs(t, err, &fe)
		})
	}
}

func TestParse_Emote(t *testing.T) {
	res, err := Parse(`8/3 20:15:42.123  EMOTE,Player-1-ABC,"Thrall",0x0,0x0,Hello there`)
	require.NoError(t, err)

	assert.Equal(t, event.Time{
		Month: "8", Day: "3", Hour: "20", Minute: "15", Second: "42", Millis: "123",
	}, res.Time)
	assert.Empty(t, res.Trailing)

	em, ok := res.Event.(*event.Emote)
	require.True(t, ok, "expected *event.Emote, got %T", res.Event)
	assert.Equal(t, &event.Emote{
		SourceGUID:      "Player-1-ABC",
		SourceName:      "Thrall",
		SourceFlags:     "0x0",
		SourceRaidFlags: "0x0",
		Text:            "Hello there",
	}, em)
}

func TestParse_EmoteFreeText(t *testing.T) {
	// The trailing message is free text: commas, quotes and brackets must
	// not be interpreted.
	res, err := Parse(`1/1 0:0:0.0  EMOTE,G,"N",0x0,0x0,says: "hello, [world]" (loudly)`)
	require.NoError(t, err)

	em := res.Event.(*event.Emote)
	assert.Equal(t, `says: "hello, [world]" (loudly)`, em.Text)
}

func TestParse_EmoteArity(t *testing.T) {
	_, err := Parse(`1/1 0:0:0.0  EMOTE,G,"N",0x0`)
	var ae *ArityError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, event.TypeEmote, ae.Type)
	assert.Equal(t, 5, ae.Want)
	assert.Equal(t, 4, ae.Got)
}

func TestParse_SpellDamage(t *testing.T) {
	res, err := Parse("4/20 21:13:47.719  " + damageBody)
	require.NoError(t, err)
	assert.Empty(t, res.Trailing)

	dmg, ok := res.Event.(*event.SpellDamage)
	require.True(t, ok, "expected *event.SpellDamage, got %T", res.Event)

	if diff := cmp.Diff(cell.String("Player-1379-0A9FF58F"), dmg.SourceGUID); diff != "" {
		t.Errorf("sourceGUID mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, cell.String("Yerrog-Sanguino"), dmg.SourceName)
	assert.Equal(t, cell.String("0x512"), dmg.SourceFlags)
	assert.Equal(t, cell.Int(213709), dmg.SpellID)
	assert.Equal(t, cell.String("Brambles"), dmg.SpellName)
	assert.Equal(t, cell.Int(1483954), dmg.CurrentHP)
	assert.Equal(t, cell.Float(-5095.52), dmg.Y)
	assert.Equal(t, cell.Float(6.1556), dmg.Facing)
	assert.Equal(t, cell.Int(488), dmg.Amount)
	assert.Equal(t, cell.Int(-1), dmg.School)

	// The trailing flag cells are 0/nil; all coerce to false.
	assert.False(t, dmg.Critical)
	assert.False(t, dmg.Glancing)
	assert.False(t, dmg.Crushing)
	assert.False(t, dmg.OffHand)
}

func TestParse_SpellDamageArity(t *testing.T) {
	// Drop the last cell: 37 instead of 38.
	short := strings.TrimSuffix(damageBody, ",nil")
	_, err := Parse("4/20 21:13:47.719  " + short)

	var ae *ArityError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, event.TypeSpellDamage, ae.Type)
	assert.Equal(t, 38, ae.Want)
	assert.Equal(t, 37, ae.Got)
}

func TestParse_SpellCastSuccess(t *testing.T) {
	cells := make([]string, 0, castSuccessArity)
	cells = append(cells,
		"Player-1-A", `"Caster"`, "0x511", "0x0",
		"Creature-0-B", `"Target"`, "0xa48", "0x0",
		"8936", `"Regrowth"`, "0x8",
	)
	for len(cells) < castSuccessArity-5 {
		cells = append(cells, "0")
	}
	cells = append(cells, "-812.33", "2044.16", "2112", "3.1415", "70")

	res, err := Parse("12/31 23:59:59.999  SPELL_CAST_SUCCESS," + strings.Join(cells, ","))
	require.NoError(t, err)
	assert.Empty(t, res.Trailing)

	cast, ok := res.Event.(*event.SpellCastSuccess)
	require.True(t, ok, "expected *event.SpellCastSuccess, got %T", res.Event)
	assert.Equal(t, cell.String("Caster"), cast.SourceName)
	assert.Equal(t, cell.Int(8936), cast.SpellID)
	assert.Equal(t, cell.String("Regrowth"), cast.SpellName)
	assert.Equal(t, cell.Float(-812.33), cast.Y)
	assert.Equal(t, cell.Int(70), cast.ItemLevel)
}

func TestParse_SpellHeal(t *testing.T) {
	cells := make([]string, healArity)
	for i := range cells {
		cells[i] = "1"
	}
	cells[28] = "5000" // amount
	cells[29] = "1200" // overhealing
	cells[30] = "0"    // absorbed
	cells[31] = "1"    // critical
	cells[32] = "nil"

	res, err := Parse("4/20 21:13:48.001  SPELL_HEAL," + strings.Join(cells, ","))
	require.NoError(t, err)

	heal, ok := res.Event.(*event.SpellHeal)
	require.True(t, ok, "expected *event.SpellHeal, got %T", res.Event)
	assert.Equal(t, cell.Int(5000), heal.Amount)
	assert.Equal(t, cell.Int(1200), heal.Overhealing)
	assert.Equal(t, cell.Int(0), heal.Absorbed)
	assert.True(t, heal.Critical)
}

func TestParse_UnsupportedTag(t *testing.T) {
	res, err := Parse("8/3 20:15:42.123  UNKNOWN_EVENT,1,2,3")
	require.NoError(t, err)
	assert.Equal(t, event.Unsupported{}, res.Event)
	assert.Empty(t, res.Trailing)
}

func TestParse_NoCommaInBody(t *testing.T) {
	_, err := Parse("8/3 20:15:42.123  COMBAT_LOG_VERSION")
	var fe *FramingError
	require.ErrorAs(t, err, &fe)
}

func TestParse_TrailingData(t *testing.T) {
	cells := make([]string, healArity)
	for i := range cells {
		cells[i] = "1"
	}
	line := "4/20 21:13:48.001  SPELL_HEAL," + strings.Join(cells, ",") + `,"unclosed`

	res, err := Parse(line)
	require.NoError(t, err)
	assert.Equal(t, `,"unclosed`, res.Trailing)
	_, ok := res.Event.(*event.SpellHeal)
	assert.True(t, ok)
}

func TestParse_GrammarErrorInCell(t *testing.T) {
	// First cell is an unterminated quoted string; the whole list fails.
	_, err := Parse(`4/20 21:13:47.719  SPELL_DAMAGE,"unclosed`)
	var ge *cell.GrammarError
	require.ErrorAs(t, err, &ge)
}

func TestParse_CRLF(t *testing.T) {
	res, err := Parse("8/3 20:15:42.123  EMOTE,G,\"N\",0x0,0x0,hi\r")
	require.NoError(t, err)
	em := res.Event.(*event.Emote)
	assert.Equal(t, "hi", em.Text)
}
