package main

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"github.com/wowlog/wowlog-go/pkg/combatlog"
	"github.com/wowlog/wowlog-go/pkg/combatlog/event"
)

// ValidFormats lists all valid output formats.
var ValidFormats = map[string]bool{
	"jsonl":  true,
	"pretty": true,
}

// OutputRecord writes a record in the specified format to the writer.
func OutputRecord(format string, rec *combatlog.Record, out io.Writer) error {
	switch format {
	case "jsonl":
		return OutputJSON(rec, out)
	case "pretty":
		return OutputPretty(rec, out)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// OutputJSON writes a record as JSON Lines format.
func OutputJSON(rec *combatlog.Record, out io.Writer) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// OutputPretty writes a record in human-readable format.
func OutputPretty(rec *combatlog.Record, out io.Writer) error {
	ts := rec.Time.String()

	var err error
	switch ev := rec.Event.(type) {
	case *event.Emote:
		_, err = fmt.Fprintf(out, "[%s] %s: %s\n", ts, ev.SourceName, ev.Text)
	case *event.SpellCastSuccess:
		_, err = fmt.Fprintf(out, "[%s] %#v cast %#v\n", ts, ev.SourceName, ev.SpellName)
	case *event.SpellDamage:
		_, err = fmt.Fprintf(out, "[%s] %#v hit %#v with %#v for %#v%s\n",
			ts, ev.SourceName, ev.DestName, ev.SpellName, ev.Amount, critMark(ev.Critical))
	case *event.SpellHeal:
		_, err = fmt.Fprintf(out, "[%s] %#v healed %#v with %#v for %#v%s\n",
			ts, ev.SourceName, ev.DestName, ev.SpellName, ev.Amount, critMark(ev.Critical))
	case *event.Custom:
		_, err = fmt.Fprintf(out, "[%s] %s (%d fields)\n", ts, ev.Tag, len(ev.Fields)+len(ev.Flags))
	default:
		_, err = fmt.Fprintf(out, "[%s] %s\n", ts, rec.Type)
	}

	return err
}

func critMark(critical bool) string {
	if critical {
		return " (critical)"
	}
	return ""
}
