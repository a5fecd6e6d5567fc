package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wowlog/wowlog-go/pkg/combatlog/event"
)

func TestBuildParser_NoSchemas(t *testing.T) {
	p, err := buildParser(nil)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestBuildParser_WithSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.yaml")
	yaml := "version: 1\nevents:\n  - tag: PARTY_KILL\n    fields: [sourceGUID, sourceName, destGUID, destName]\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	p, err := buildParser([]string{path})
	require.NoError(t, err)
	require.NotNil(t, p)

	// Schema tag decodes to a custom record.
	result, err := p.ParseLine(context.Background(), `4/20 21:13:47.719  PARTY_KILL,Player-1-A,"Rogue",Creature-0-B,"Boar"`)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, event.Type("PARTY_KILL"), result.Records[0].Type)

	// Built-in tags still work through the chained default parser.
	result, err = p.ParseLine(context.Background(), `8/3 20:15:42.123  EMOTE,G,"N",0x0,0x0,hi`)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, event.TypeEmote, result.Records[0].Type)
}

func TestBuildParser_BadSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 9\n"), 0o644))

	_, err := buildParser([]string{path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema file 1")
}
