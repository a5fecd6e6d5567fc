package schema_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wowlog/wowlog-go/pkg/combatlog"
	"github.com/wowlog/wowlog-go/pkg/combatlog/cell"
	"github.com/wowlog/wowlog-go/pkg/combatlog/event"
	"github.com/wowlog/wowlog-go/pkg/combatlog/schema"
)

const swingYAML = `
version: 1
events:
  - tag: SWING_DAMAGE
    fields: [sourceGUID, sourceName, destGUID, destName, amount, critical]
    bool_tail: 1
`

func newSwingParser(t *testing.T) *schema.Parser {
	t.Helper()
	sf, err := schema.LoadBytes([]byte(swingYAML))
	require.NoError(t, err)
	p, err := schema.NewParser(sf)
	require.NoError(t, err)
	return p
}

func TestParser_Match(t *testing.T) {
	p := newSwingParser(t)

	line := `4/20 21:13:47.719  SWING_DAMAGE,Player-1-A,"Warrior",Creature-0-B,"Boar",152,1`
	result, err := p.ParseLine(context.Background(), line)
	require.NoError(t, err)
	require.True(t, result.Matched)
	require.Len(t, result.Records, 1)

	rec := result.Records[0]
	assert.Equal(t, event.Type("SWING_DAMAGE"), rec.Type)
	assert.Equal(t, "4", rec.Time.Month)
	assert.Empty(t, rec.Trailing)

	ev, ok := rec.Event.(*event.Custom)
	require.True(t, ok, "expected *event.Custom, got %T", rec.Event)
	assert.Equal(t, "SWING_DAMAGE", ev.Tag)
	assert.Equal(t, cell.String("Player-1-A"), ev.Fields["sourceGUID"])
	assert.Equal(t, cell.String("Warrior"), ev.Fields["sourceName"])
	assert.Equal(t, cell.Int(152), ev.Fields["amount"])

	// The bool_tail field lands in Flags, coerced.
	_, inFields := ev.Fields["critical"]
	assert.False(t, inFields)
	assert.True(t, ev.Flags["critical"])
}

func TestParser_FlagCoercion(t *testing.T) {
	p := newSwingParser(t)

	line := `4/20 21:13:47.719  SWING_DAMAGE,a,b,c,d,152,nil`
	result, err := p.ParseLine(context.Background(), line)
	require.NoError(t, err)

	ev := result.Records[0].Event.(*event.Custom)
	assert.False(t, ev.Flags["critical"])
}

func TestParser_UnknownTag(t *testing.T) {
	p := newSwingParser(t)

	result, err := p.ParseLine(context.Background(), `4/20 21:13:47.719  SPELL_DAMAGE,a,b`)
	require.NoError(t, err)
	assert.False(t, result.Matched)
	assert.Empty(t, result.Records)
}

func TestParser_FramingFailureDoesNotMatch(t *testing.T) {
	p := newSwingParser(t)

	// Not a combat log line at all: no match, no error. A chained default
	// parser reports the framing failure instead.
	result, err := p.ParseLine(context.Background(), "garbage")
	require.NoError(t, err)
	assert.False(t, result.Matched)
}

func TestParser_Arity(t *testing.T) {
	p := newSwingParser(t)

	_, err := p.ParseLine(context.Background(), `4/20 21:13:47.719  SWING_DAMAGE,a,b,c,d,152`)
	var ae *combatlog.ArityError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, event.Type("SWING_DAMAGE"), ae.Type)
	assert.Equal(t, 6, ae.Want)
	assert.Equal(t, 5, ae.Got)
}

func TestParser_GrammarError(t *testing.T) {
	p := newSwingParser(t)

	_, err := p.ParseLine(context.Background(), `4/20 21:13:47.719  SWING_DAMAGE,"unclosed`)
	var ge *cell.GrammarError
	require.ErrorAs(t, err, &ge)
}

func TestParser_Trailing(t *testing.T) {
	p := newSwingParser(t)

	line := `4/20 21:13:47.719  SWING_DAMAGE,a,b,c,d,152,1,"unclosed`
	result, err := p.ParseLine(context.Background(), line)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, `,"unclosed`, result.Records[0].Trailing)
}

func TestParser_Tags(t *testing.T) {
	p := newSwingParser(t)
	assert.ElementsMatch(t, []string{"SWING_DAMAGE"}, p.Tags())
}

func TestParser_ChainedWithDefault(t *testing.T) {
	p := newSwingParser(t)
	chain := &combatlog.ParserChain{
		Mode:    combatlog.ChainFirst,
		Parsers: []combatlog.Parser{p, combatlog.DefaultParser{}},
	}

	// Schema tag decodes via the schema parser.
	result, err := chain.ParseLine(context.Background(), `4/20 21:13:47.719  SWING_DAMAGE,a,b,c,d,152,1`)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.IsType(t, &event.Custom{}, result.Records[0].Event)

	// Built-in tag falls through to the default parser.
	result, err = chain.ParseLine(context.Background(), `8/3 20:15:42.123  EMOTE,G,"N",0x0,0x0,hi`)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, event.TypeEmote, result.Records[0].Type)
}
