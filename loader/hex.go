// Package loader parses flat hex program files: one 32-bit instruction
// word per line, loaded contiguously at 4-byte strides.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// DefaultBase is the load address used when the file carries no @addr
// directive.
const DefaultBase = 0x9000

// Program is a parsed program ready for Simulator.LoadProgram.
type Program struct {
	// Base is the address the first word loads at.
	Base uint32
	// Words are the instruction words in load order.
	Words []uint32
}

// Load reads and parses a hex program file.
//
// Format: one hex word per line (with or without an 0x prefix), blank
// lines ignored, `#` starts a comment, and an optional `@addr` line
// sets the load base. A trailing zero word is the end-of-program
// sentinel and is kept as part of the program.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program file: %w", err)
	}
	defer func() { _ = f.Close() }()

	prog, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}

// Parse parses the hex program format from r.
func Parse(r io.Reader) (*Program, error) {
	prog := &Program{Base: DefaultBase}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "@") {
			if len(prog.Words) > 0 {
				return nil, fmt.Errorf("line %d: @addr directive after program words", lineNo)
			}
			base, err := parseWord(strings.TrimSpace(line[1:]))
			if err != nil {
				return nil, fmt.Errorf("line %d: bad base address: %w", lineNo, err)
			}
			prog.Base = base
			continue
		}

		word, err := parseWord(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		prog.Words = append(prog.Words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}

	if len(prog.Words) == 0 {
		return nil, fmt.Errorf("program contains no instruction words")
	}
	return prog, nil
}

// parseWord parses a 32-bit hex word, accepting an optional 0x prefix.
func parseWord(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid hex word %q", s)
	}
	return uint32(v), nil
}
