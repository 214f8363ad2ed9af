// Package clinic models native functions through their argument clinic
// signature, the compact notation CPython uses for functions implemented
// in C:
//
//	str.split.__text_signature__  ==  "($self, /, sep=None, maxsplit=-1)"
//
// Parse turns such a signature into parameters, Iterate matches a call's
// unpacked arguments against them and Repack wraps a Go implementation so
// that it only runs for calls that match.
package clinic

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Param is one parameter of a clinic signature.
type Param struct {
	Name         string
	Optional     bool
	AllowKeyword bool
	// Stars is 1 for `*args`, 2 for `**kwargs`.
	Stars int
	// Default is the declared default as written, or "".
	Default string
}

func (p Param) String() string {
	var sb strings.Builder
	sb.WriteString(strings.Repeat("*", p.Stars))
	sb.WriteString(p.Name)
	if p.Default != "" {
		sb.WriteString("=" + p.Default)
	}
	if p.Optional && p.Default == "" {
		sb.WriteString("?")
	}
	return sb.String()
}

// Parse parses a signature, without the surrounding parentheses.
//
// Optional groups are only understood at the end of a signature: once a
// bracket is opened every later parameter is optional, as is every
// parameter after one with a default. After `/`, a bare `*` or a starred
// parameter, every later parameter accepts keywords. `$self` marks the
// receiver and yields no parameter.
func Parse(signature string) ([]Param, error) {
	var params []Param
	allowKeyword := false
	optional := false

	s := signature
	i := 0
	for i < len(s) {
		switch c := s[i]; {
		case c == ' ' || c == ',' || c == ']':
			i++
		case c == '[':
			optional = true
			i++
		case c == '/':
			allowKeyword = true
			i++
		default:
			start := i
			stars := 0
			for i < len(s) && s[i] == '*' {
				stars++
				i++
			}
			receiver := false
			if i < len(s) && s[i] == '$' {
				receiver = true
				i++
			}
			nameStart := i
			for i < len(s) && isWordByte(s[i]) {
				i++
			}
			name := s[nameStart:i]

			def := ""
			hasDefault := false
			if i < len(s) && s[i] == '=' {
				var err error
				def, i, err = scanDefault(s, i+1)
				if err != nil {
					return nil, fmt.Errorf("clinic signature %q: %w", signature, err)
				}
				hasDefault = true
			}

			switch {
			case name == "" && stars == 1 && !receiver && !hasDefault:
				// Bare `*`: keyword-only marker.
				allowKeyword = true
				continue
			case name == "":
				return nil, fmt.Errorf("clinic signature %q: unexpected %q at offset %d", signature, s[start:min(start+1, len(s))], start)
			case stars > 2:
				return nil, fmt.Errorf("clinic signature %q: too many stars on %s", signature, name)
			case receiver:
				if stars > 0 || hasDefault {
					return nil, fmt.Errorf("clinic signature %q: malformed receiver $%s", signature, name)
				}
				continue
			}

			if hasDefault {
				optional = true
			}
			params = append(params, Param{
				Name:         name,
				Optional:     optional,
				AllowKeyword: allowKeyword,
				Stars:        stars,
				Default:      def,
			})
			if stars > 0 {
				allowKeyword = true
			}
		}
	}
	return params, nil
}

// scanDefault reads a default value starting at i, up to the next
// top-level `,`, `[` or `]`.
func scanDefault(s string, i int) (string, int, error) {
	start := i
	depth := 0
	var quote byte
scan:
	for ; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(', '{':
			depth++
		case ')', '}':
			depth--
		case ',', '[', ']':
			if depth == 0 {
				break scan
			}
		}
	}
	if quote != 0 {
		return "", i, fmt.Errorf("unterminated string in default at offset %d", start)
	}
	def := strings.TrimSpace(s[start:i])
	if def == "" {
		return "", i, fmt.Errorf("empty default at offset %d", start)
	}
	return def, i, nil
}

func isWordByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

var parseCache = struct {
	sync.Mutex
	m map[string][]Param
}{m: make(map[string][]Param)}

// ParseCached is Parse with a process-wide cache. Callers get their own
// copy of the parameters.
func ParseCached(signature string) ([]Param, error) {
	parseCache.Lock()
	defer parseCache.Unlock()
	if params, ok := parseCache.m[signature]; ok {
		return slices.Clone(params), nil
	}
	params, err := Parse(signature)
	if err != nil {
		return nil, err
	}
	parseCache.m[signature] = params
	return slices.Clone(params), nil
}
