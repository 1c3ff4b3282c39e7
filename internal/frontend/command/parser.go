package command

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseResult holds the parsed command name and arguments from a text line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining words after the command.
	Args []string
	// RawArgs is the raw text after the command.
	RawArgs string
}

// Parse splits a text line into a command and arguments.
//
// Postcondition: Returns a ParseResult. If line is empty, Command is empty.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}

	// Split at first space for the command word
	spaceIdx := strings.IndexAny(line, " \t")
	if spaceIdx < 0 {
		return ParseResult{
			Command: strings.ToLower(line),
		}
	}

	cmd := strings.ToLower(line[:spaceIdx])
	rest := strings.TrimSpace(line[spaceIdx+1:])

	var args []string
	if rest != "" {
		args = strings.Fields(rest)
	}

	return ParseResult{
		Command: cmd,
		Args:    args,
		RawArgs: rest,
	}
}

// Indices converts 1-based position arguments into 0-based indices. A single
// argument of digits only, such as "135", is read as one position per digit.
//
// Postcondition: every returned index is >= 0, or a non-nil error names the
// offending argument.
func Indices(args []string) ([]int, error) {
	if len(args) == 1 && len(args[0]) > 1 && isDigits(args[0]) {
		out := make([]int, 0, len(args[0]))
		for _, r := range args[0] {
			n := int(r - '0')
			if n < 1 {
				return nil, fmt.Errorf("position %q must be 1 or more", string(r))
			}
			out = append(out, n-1)
		}
		return out, nil
	}

	out := make([]int, 0, len(args))
	for _, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("position %q is not a number", a)
		}
		if n < 1 {
			return nil, fmt.Errorf("position %d must be 1 or more", n)
		}
		out = append(out, n-1)
	}
	return out, nil
}

// Index converts one 1-based position argument into a 0-based index.
func Index(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("position %q is not a number", arg)
	}
	if n < 1 {
		return 0, fmt.Errorf("position %d must be 1 or more", n)
	}
	return n - 1, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
