package compiler

import (
	"io"

	json "github.com/goccy/go-json"

	"assemblyish/pkg/token"
)

// Listing is a human-inspectable summary of a resolved program: the final
// symbol tables and one entry per record. It is serialized as JSON, it is
// not part of the binary format.
type Listing struct {
	Variables map[string]uint64 `json:"variables"`
	Labels    map[string]uint64 `json:"labels"`
	Records   []ListingRecord   `json:"records"`
}

// ListingRecord summarizes one resolved instruction.
type ListingRecord struct {
	Opcode byte     `json:"opcode"`
	Line   int      `json:"line"`
	Args   []string `json:"args,omitempty"`
}

// Listing builds the summary for a resolved program.
func (p *Program) Listing() Listing {
	l := Listing{
		Variables: p.Variables,
		Labels:    p.Labels,
		Records:   make([]ListingRecord, 0, len(p.Records)),
	}
	for _, rec := range p.Records {
		entry := ListingRecord{Opcode: rec.Opcode, Line: rec.Line}
		for _, arg := range rec.Args {
			if arg.Kind == token.String {
				entry.Args = append(entry.Args, `"`+arg.Value+`"`)
				continue
			}
			entry.Args = append(entry.Args, arg.Value)
		}
		l.Records = append(l.Records, entry)
	}
	return l
}

// WriteListing writes the program summary to w as indented JSON.
func (p *Program) WriteListing(w io.Writer) error {
	out, err := json.MarshalIndent(p.Listing(), "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(out, '\n'))
	return err
}
