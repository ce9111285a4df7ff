package lexer

import (
	"github.com/rs/zerolog"

	"assemblyish/pkg/token"
)

// Scan tokenizes src and returns the sequence the compiler consumes:
// START, EOF and comment tokens are filtered out and string values have
// their surrounding quotes stripped.
func Scan(src string) ([]token.Token, error) {
	return scan(src, false, zerolog.Nop())
}

// ScanRaw tokenizes src keeping the START/EOF brackets and comment tokens.
// String values are still unquoted. Each produced token is traced on log.
func ScanRaw(src string, log zerolog.Logger) ([]token.Token, error) {
	return scan(src, true, log)
}

func scan(src string, raw bool, log zerolog.Logger) ([]token.Token, error) {
	s, err := NewScanner(src)
	if err != nil {
		return nil, err
	}
	s.SetLogger(log)

	toks, err := s.All()
	if err != nil {
		return nil, err
	}

	out := make([]token.Token, 0, len(toks))
	for _, tok := range toks {
		if !raw {
			switch tok.Kind {
			case token.Start, token.EOF, token.Comment:
				continue
			}
		}
		if tok.Kind == token.String {
			tok.Value = tok.Value[1 : len(tok.Value)-1]
		}
		out = append(out, tok)
	}
	return out, nil
}
