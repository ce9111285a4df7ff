// Command asmc assembles an assemblyish source file into its bytecode image.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/k0kubun/pp/v3"
	"github.com/rs/zerolog"

	"assemblyish/pkg/compiler"
	"assemblyish/pkg/disasm"
	"assemblyish/pkg/lexer"
)

func main() {
	out := flag.String("o", "out.bin", "output file for the encoded program")
	tokens := flag.Bool("tokens", false, "dump the raw token stream and exit")
	listing := flag.String("listing", "", "write a JSON symbol/record listing to this file")
	dump := flag.Bool("dump", false, "decode the emitted bytes and pretty-print them")
	debug := flag.Bool("debug", false, "trace scanning and resolution on stderr")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: asmc [flags] file.asm")
		flag.PrintDefaults()
		os.Exit(2)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "read error:", err)
		os.Exit(1)
	}
	src := string(data)

	log := zerolog.Nop()
	if *debug {
		log = zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = os.Stderr
		})).Level(zerolog.DebugLevel)
	}

	if *tokens {
		toks, err := lexer.ScanRaw(src, log)
		if err != nil {
			fmt.Fprintln(os.Stderr, "lex error:", err)
			os.Exit(1)
		}
		pp.Println(toks)
		return
	}

	toks, err := lexer.Scan(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, "lex error:", err)
		os.Exit(1)
	}

	c := compiler.New()
	c.SetLogger(log)
	prog, err := c.Compile(toks)
	if err != nil {
		fmt.Fprintln(os.Stderr, "compile error:", err)
		os.Exit(1)
	}

	code, err := prog.Encode()
	if err != nil {
		fmt.Fprintln(os.Stderr, "encode error:", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, code, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "write error:", err)
		os.Exit(1)
	}

	if *listing != "" {
		f, err := os.Create(*listing)
		if err != nil {
			fmt.Fprintln(os.Stderr, "listing error:", err)
			os.Exit(1)
		}
		if err := prog.WriteListing(f); err != nil {
			f.Close()
			fmt.Fprintln(os.Stderr, "listing error:", err)
			os.Exit(1)
		}
		f.Close()
	}

	if *dump {
		insts, err := disasm.Decode(code)
		if err != nil {
			fmt.Fprintln(os.Stderr, "decode error:", err)
			os.Exit(1)
		}
		pp.Println(insts)
	}

	fmt.Printf("wrote %d bytes to %s\n", len(code), *out)
}
