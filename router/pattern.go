package router

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrDuplicateParam is returned when a template declares the same @name twice.
var ErrDuplicateParam = errors.New("duplicate parameter name")

var paramToken = regexp.MustCompile(`@(\w+)`)

// Params holds the named captures of a matched template.
type Params map[string]string

// Get returns the value bound to name, or "" when absent.
func (p Params) Get(name string) string {
	return p[name]
}

// Pattern is a compiled path template. Every @name token matches one or more
// characters other than '/', everything else matches literally and the whole
// path must match.
type Pattern struct {
	template string
	names    []string
	re       *regexp.Regexp
}

// CompilePattern translates a template such as "/v1/media/upload/@id" into an
// anchored expression.
func CompilePattern(template string) (*Pattern, error) {
	var (
		expr  strings.Builder
		names []string
		last  int
	)

	seen := make(map[string]struct{})
	expr.WriteString("^")

	for _, loc := range paramToken.FindAllStringSubmatchIndex(template, -1) {
		name := template[loc[2]:loc[3]]
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w %q in %q", ErrDuplicateParam, name, template)
		}
		seen[name] = struct{}{}
		names = append(names, name)

		expr.WriteString(regexp.QuoteMeta(template[last:loc[0]]))
		expr.WriteString("(?P<" + name + ">[^/]+)")
		last = loc[1]
	}

	expr.WriteString(regexp.QuoteMeta(template[last:]))
	expr.WriteString("$")

	re, err := regexp.Compile(expr.String())
	if err != nil {
		return nil, fmt.Errorf("compile template %q: %w", template, err)
	}

	return &Pattern{template: template, names: names, re: re}, nil
}

// MustCompilePattern is like CompilePattern but panics on error.
func MustCompilePattern(template string) *Pattern {
	p, err := CompilePattern(template)
	if err != nil {
		panic("router: " + err.Error())
	}
	return p
}

// Match reports whether path matches the template and returns its captures.
func (p *Pattern) Match(path string) (Params, bool) {
	matches := p.re.FindStringSubmatch(path)
	if matches == nil {
		return nil, false
	}

	params := make(Params, len(p.names))
	for i, name := range p.re.SubexpNames() {
		if i > 0 && name != "" {
			params[name] = matches[i]
		}
	}

	return params, true
}

// Names returns the parameter names in declaration order.
func (p *Pattern) Names() []string {
	return cloneStrings(p.names)
}

// String returns the original template.
func (p *Pattern) String() string {
	return p.template
}
