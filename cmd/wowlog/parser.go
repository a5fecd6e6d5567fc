package main

import (
	"fmt"

	"github.com/wowlog/wowlog-go/pkg/combatlog"
	"github.com/wowlog/wowlog-go/pkg/combatlog/schema"
)

// buildParser builds a Parser from schema file paths.
// Returns a nil parser if no schema files are specified (use the default
// parser). Schema parsers run first so user-declared tags win; the
// default parser picks up everything else.
func buildParser(schemaFiles []string) (combatlog.Parser, error) {
	if len(schemaFiles) == 0 {
		return nil, nil
	}

	var parsers []combatlog.Parser
	for i, path := range schemaFiles {
		sp, err := schema.FromFile(path)
		if err != nil {
			// Errors from the schema package are already sanitized (no path).
			return nil, fmt.Errorf("schema file %d: %w", i+1, err)
		}
		parsers = append(parsers, sp)
	}
	parsers = append(parsers, combatlog.DefaultParser{})

	return &combatlog.ParserChain{
		Mode:    combatlog.ChainFirst,
		Parsers: parsers,
	}, nil
}
