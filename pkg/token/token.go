// Package token defines the lexical units produced by the assemblyish scanner.
package token

import "fmt"

// Kind classifies a scanned token.
type Kind uint8

const (
	// Start and EOF bracket a raw scan; both are filtered from the
	// sequence handed to the compiler.
	Start Kind = iota
	EOF
	Identifier
	Number
	String
	Comment
	VarMarker  // '.'  introduces a variable declaration
	GotoMarker // ':'  introduces a label declaration
	Newline
)

var kindNames = map[Kind]string{
	Start:      "START",
	EOF:        "EOF",
	Identifier: "IDENTIFIER",
	Number:     "NUMBER",
	String:     "STRING",
	Comment:    "COMMENT",
	VarMarker:  "VAR",
	GotoMarker: "GOTO",
	Newline:    "NEWLINE",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Token is a single lexical unit. Line is the 1-based source line and Index
// the cumulative character offset just past the token's last character.
// Identifier values are upper-cased by the scanner; String values keep their
// surrounding quotes until the scanner's final unquoting pass.
type Token struct {
	Kind  Kind
	Line  int
	Index int
	Value string
}

func (t Token) String() string {
	return fmt.Sprintf("<Token kind=%s line=%d index=%d value=%q>", t.Kind, t.Line, t.Index, t.Value)
}
