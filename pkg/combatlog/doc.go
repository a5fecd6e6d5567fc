// Package combatlog provides parsing and monitoring of World of Warcraft
// combat log files.
//
// This package allows you to:
//   - Decode combat log lines into typed event records
//   - Drive whole files or streams with per-line error reporting
//   - Monitor a live combat log for new events
//   - Declare additional event kinds via YAML schema files
//
// # Basic Usage
//
// To decode a single log line:
//
//	rec, err := combatlog.ParseLine(line)
//	if err != nil {
//	    log.Printf("parse error: %v", err)
//	    return
//	}
//	switch ev := rec.Event.(type) {
//	case *event.SpellDamage:
//	    fmt.Printf("%#v damaged %#v\n", ev.SourceName, ev.DestName)
//	case *event.Emote:
//	    fmt.Println(ev.Text)
//	case event.Unsupported:
//	    // recognized shape, kind not implemented; not an error
//	}
//
// To process a whole file, including gzipped archives:
//
//	stats, err := combatlog.ParseFile(ctx, "WoWCombatLog.txt",
//	    func(rec *combatlog.Record, err error) error {
//	        if err != nil {
//	            log.Printf("skipped: %v", err) // malformed line, run continues
//	            return nil
//	        }
//	        // process rec
//	        return nil
//	    })
//
// To monitor the live combat log:
//
//	records, errs, err := combatlog.WatchWithOptions(ctx,
//	    combatlog.WithIncludeTypes(event.TypeSpellDamage, event.TypeSpellHeal),
//	)
//
// # Error model
//
// Per-line failures are typed: *FramingError when the timestamp prefix is
// malformed, *cell.GrammarError when a value does not parse, and
// *ArityError when an event body has the wrong field count. Drivers wrap
// them in *LineError with the offending line and continue unless
// configured otherwise. Lines whose event tag is simply not implemented
// decode successfully to an Unsupported record.
//
// # Custom Parsers
//
// Implement the [Parser] interface for custom line parsing, or declare
// additional fixed-arity event kinds in YAML via the [schema] subpackage:
//
//	parser, err := schema.FromFile("events.yaml")
//	stats, err := combatlog.ParseFile(ctx, path, handler,
//	    combatlog.WithParseParsers(parser, combatlog.DefaultParser{}))
//
// # Lifetime contract
//
// Cell-typed fields of a decoded record are substrings of the line they
// came from. They are valid for the duration of the handler call or
// channel receive; copy out anything that must persist.
package combatlog
