// Package lexer turns assemblyish source text into a flat token sequence.
//
// The scan is a single left-to-right pass with no backtracking. A Scanner is
// not restartable; construct a fresh one to re-scan.
package lexer

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"assemblyish/pkg/token"
)

// Error is a lexing failure carrying the source position at which scanning
// stopped.
type Error struct {
	Line  int
	Index int
	Msg   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("lex error on line %d (index %d): %s", e.Line, e.Index, e.Msg)
}

// Scanner holds all mutable state for a single scanning pass over src.
type Scanner struct {
	src    []rune
	cursor int // index of the next rune to consume
	line   int // current 1-based source line
	log    zerolog.Logger
}

// NewScanner validates the scan preconditions and returns a scanner
// positioned at the start of src. Source must be non-empty and end with a
// newline, otherwise no token is ever produced.
func NewScanner(src string) (*Scanner, error) {
	if len(src) == 0 {
		return nil, &Error{Line: 1, Index: 0, Msg: "no code input given"}
	}
	if src[len(src)-1] != '\n' {
		return nil, &Error{Line: 1, Index: 0, Msg: "code must end with a newline"}
	}
	return &Scanner{src: []rune(src), line: 1, log: zerolog.Nop()}, nil
}

// SetLogger installs a logger used to trace each produced token at debug
// level.
func (s *Scanner) SetLogger(log zerolog.Logger) {
	s.log = log
}

// Next returns the next token from the source. The final newline is never
// consumed: once the cursor reaches it, Next reports EOF.
func (s *Scanner) Next() (token.Token, error) {
	for {
		if s.cursor >= len(s.src)-1 {
			return token.Token{Kind: token.EOF, Line: s.line, Index: s.cursor}, nil
		}

		ch := s.src[s.cursor]
		switch {
		case isLetter(ch):
			return s.scanIdentifier(), nil
		case isDigit(ch):
			return s.scanNumber(), nil
		case ch == ';':
			return s.scanComment(), nil
		case ch == '"':
			return s.scanString()
		case ch == '.':
			s.cursor++
			return token.Token{Kind: token.VarMarker, Line: s.line, Index: s.cursor}, nil
		case ch == ':':
			s.cursor++
			return token.Token{Kind: token.GotoMarker, Line: s.line, Index: s.cursor}, nil
		case isSpace(ch):
			if tok, ok := s.skipWhitespace(); ok {
				return tok, nil
			}
			// no line terminator in the run, keep scanning
		default:
			return token.Token{}, &Error{
				Line:  s.line,
				Index: s.cursor,
				Msg:   fmt.Sprintf("unexpected token: %c", ch),
			}
		}
	}
}

// All runs the scanner to completion and returns the raw token sequence,
// bracketed by START and EOF and still carrying comments and quoted strings.
func (s *Scanner) All() ([]token.Token, error) {
	toks := []token.Token{{Kind: token.Start, Line: 1}}
	for toks[len(toks)-1].Kind != token.EOF {
		tok, err := s.Next()
		if err != nil {
			return nil, err
		}
		s.log.Debug().Int("n", len(toks)).Stringer("token", tok).Msg("scanned")
		toks = append(toks, tok)
	}
	return toks, nil
}

// scanIdentifier collects a maximal run of word characters. The leading
// letter must still be at the cursor. Identifier values are upper-cased.
func (s *Scanner) scanIdentifier() token.Token {
	start := s.cursor
	for s.cursor < len(s.src) && isWord(s.src[s.cursor]) {
		s.cursor++
	}
	return token.Token{
		Kind:  token.Identifier,
		Line:  s.line,
		Index: s.cursor,
		Value: strings.ToUpper(string(s.src[start:s.cursor])),
	}
}

// scanNumber collects a maximal run of decimal digits, kept as raw text.
func (s *Scanner) scanNumber() token.Token {
	start := s.cursor
	for s.cursor < len(s.src) && isDigit(s.src[s.cursor]) {
		s.cursor++
	}
	return token.Token{
		Kind:  token.Number,
		Line:  s.line,
		Index: s.cursor,
		Value: string(s.src[start:s.cursor]),
	}
}

// scanComment collects everything from ';' to end-of-line, exclusive of the
// terminator.
func (s *Scanner) scanComment() token.Token {
	start := s.cursor
	for s.cursor < len(s.src) && s.src[s.cursor] != '\n' {
		s.cursor++
	}
	return token.Token{
		Kind:  token.Comment,
		Line:  s.line,
		Index: s.cursor,
		Value: string(s.src[start:s.cursor]),
	}
}

// scanString collects a quoted string honoring backslash escapes. Escape
// sequences are kept textually; the value includes the surrounding quotes.
func (s *Scanner) scanString() (token.Token, error) {
	start := s.cursor
	s.cursor++ // opening quote
	for {
		if s.cursor >= len(s.src) {
			return token.Token{}, &Error{Line: s.line, Index: start, Msg: "unterminated string"}
		}
		switch s.src[s.cursor] {
		case '\\':
			s.cursor += 2
		case '"':
			s.cursor++
			return token.Token{
				Kind:  token.String,
				Line:  s.line,
				Index: s.cursor,
				Value: string(s.src[start:s.cursor]),
			}, nil
		default:
			s.cursor++
		}
	}
}

// skipWhitespace consumes a run of spaces and indentation. If the run ends
// at a line terminator, the terminator is consumed too and a NEWLINE token
// for the freshly started line is returned.
func (s *Scanner) skipWhitespace() (token.Token, bool) {
	for s.cursor < len(s.src) {
		ch := s.src[s.cursor]
		if ch == ' ' || ch == '\t' || ch == '\r' {
			s.cursor++
			continue
		}
		if ch == '\n' {
			s.cursor++
			s.line++
			return token.Token{Kind: token.Newline, Line: s.line, Index: s.cursor}, true
		}
		break
	}
	return token.Token{}, false
}

func isLetter(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isWord(ch rune) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_'
}

func isSpace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}
