package combatlog

import (
	"context"
	"errors"
)

// ParseResult represents the result of parsing a log line.
type ParseResult struct {
	// Records contains the decoded records.
	Records []*Record

	// Matched indicates whether the parser recognized the line. It can be
	// true with no records (e.g. a filtering parser that matched and
	// dropped the line).
	Matched bool
}

// Parser is the interface for combat log line parsers. DefaultParser
// implements the built-in event kinds; schema.Parser decodes
// YAML-declared kinds; callers may supply their own.
type Parser interface {
	// ParseLine parses a single log line.
	// Returns ParseResult with Matched=true if the line was recognized.
	// Returns error for malformed lines, not for unrecognized ones.
	ParseLine(ctx context.Context, line string) (ParseResult, error)
}

// ParserFunc is an adapter to allow ordinary functions to be used as
// Parsers.
type ParserFunc func(ctx context.Context, line string) (ParseResult, error)

// ParseLine implements the Parser interface.
func (f ParserFunc) ParseLine(ctx context.Context, line string) (ParseResult, error) {
	return f(ctx, line)
}

// DefaultParser decodes the built-in combat log event kinds: emote,
// spell_cast_success, spell_damage, spell_heal, and the unsupported
// classification for every other tag.
type DefaultParser struct{}

// ParseLine implements the Parser interface. Lines with an unrecognized
// event tag match and yield an unsupported record; malformed lines return
// the decode error.
func (DefaultParser) ParseLine(ctx context.Context, line string) (ParseResult, error) {
	rec, err := ParseLine(line)
	if err != nil {
		return ParseResult{}, err
	}
	return ParseResult{Records: []*Record{rec}, Matched: true}, nil
}

// Ensure DefaultParser implements Parser.
var _ Parser = DefaultParser{}

// ChainMode specifies how ParserChain executes parsers.
type ChainMode int

const (
	// ChainAll executes all parsers and combines results (default).
	ChainAll ChainMode = iota

	// ChainFirst stops at the first parser that matches.
	ChainFirst

	// ChainContinueOnError skips parsers that return errors and continues.
	// Errors are collected and returned together at the end.
	ChainContinueOnError
)

// ParserChain combines multiple parsers.
type ParserChain struct {
	Mode    ChainMode
	Parsers []Parser
}

// ParseLine implements the Parser interface.
//
// If the context is cancelled mid-chain, ParseLine returns the records
// collected so far together with the context error; callers should
// usually discard the partial result.
func (c *ParserChain) ParseLine(ctx context.Context, line string) (ParseResult, error) {
	var all []*Record
	var errs []error
	anyMatched := false

	for _, p := range c.Parsers {
		if err := ctx.Err(); err != nil {
			return ParseResult{Records: all, Matched: anyMatched}, err
		}
		if p == nil {
			continue
		}

		result, err := p.ParseLine(ctx, line)
		if err != nil {
			if c.Mode == ChainContinueOnError {
				errs = append(errs, err)
				continue
			}
			return ParseResult{}, err
		}
		if result.Matched {
			anyMatched = true
			all = append(all, result.Records...)
			if c.Mode == ChainFirst {
				return ParseResult{Records: all, Matched: true}, nil
			}
		}
	}

	if len(errs) > 0 {
		return ParseResult{Records: all, Matched: anyMatched}, errors.Join(errs...)
	}
	return ParseResult{Records: all, Matched: anyMatched}, nil
}
