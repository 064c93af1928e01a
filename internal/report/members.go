package report

import (
	"fmt"
	"strconv"
	"strings"
)

// EncodeMembers renders paths as a bracketed, comma separated list of Go
// quoted strings. Bytes that are not valid UTF-8 become \x escapes, so every
// path survives unchanged. Printable UTF-8 paths read the same as a JSON
// array of strings.
func EncodeMembers(paths []string) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, p := range paths {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(p))
	}
	b.WriteByte(']')
	return b.String()
}

// ParseMembers is the inverse of EncodeMembers.
func ParseMembers(s string) ([]string, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), "[")
	if !ok {
		return nil, fmt.Errorf("members %q: missing [", s)
	}
	rest, ok = strings.CutSuffix(rest, "]")
	if !ok {
		return nil, fmt.Errorf("members %q: missing ]", s)
	}

	paths := []string{}
	for rest != "" {
		q, err := strconv.QuotedPrefix(rest)
		if err != nil {
			return nil, fmt.Errorf("members %q: %w", s, err)
		}
		p, err := strconv.Unquote(q)
		if err != nil {
			return nil, fmt.Errorf("members %q: %w", s, err)
		}
		paths = append(paths, p)

		rest = rest[len(q):]
		if rest == "" {
			break
		}
		if rest, ok = strings.CutPrefix(rest, ","); !ok || rest == "" {
			return nil, fmt.Errorf("members %q: expected , between paths", s)
		}
	}
	return paths, nil
}
