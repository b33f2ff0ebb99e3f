// Package shellquote splits and quotes command lines the way desktop entry
// Exec keys expect them.
package shellquote

import (
	"fmt"
	"strings"
)

// Quote wraps s in single quotes, escaping any internal single quotes.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// QuoteIfNeeded quotes strings that a shell would otherwise split or expand.
func QuoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n#[]()|!\"'$`\\*?;&<>") {
		return Quote(s)
	}
	return s
}

// Join renders argv as a single copy-pasteable command line.
func Join(argv []string) string {
	parts := make([]string, len(argv))
	for i, a := range argv {
		parts[i] = QuoteIfNeeded(a)
	}
	return strings.Join(parts, " ")
}

// Split breaks an Exec value into arguments. Arguments may be enclosed in
// double quotes, inside which \" \` \$ and \\ are escapes.
func Split(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		hasArg  bool
	)

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inQuote && c == '\\' && i+1 < len(line) && strings.IndexByte("\"`$\\", line[i+1]) >= 0:
			i++
			cur.WriteByte(line[i])
		case c == '"':
			inQuote = !inQuote
			hasArg = true
		case !inQuote && (c == ' ' || c == '\t'):
			if hasArg {
				args = append(args, cur.String())
				cur.Reset()
				hasArg = false
			}
		default:
			cur.WriteByte(c)
			hasArg = true
		}
	}

	if inQuote {
		return nil, fmt.Errorf("unterminated quote in %q", line)
	}
	if hasArg {
		args = append(args, cur.String())
	}
	return args, nil
}
