package compiler

import (
	"github.com/rs/zerolog"

	"assemblyish/pkg/lexer"
)

// Assemble runs the whole pipeline on src: scan, resolve, encode.
func Assemble(src string) ([]byte, error) {
	return AssembleWithLogger(src, zerolog.Nop())
}

// AssembleWithLogger is Assemble with pipeline tracing on log.
func AssembleWithLogger(src string, log zerolog.Logger) ([]byte, error) {
	toks, err := lexer.Scan(src)
	if err != nil {
		return nil, err
	}

	c := New()
	c.SetLogger(log)
	prog, err := c.Compile(toks)
	if err != nil {
		return nil, err
	}

	return prog.Encode()
}
