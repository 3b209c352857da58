package recipe

import (
	"fmt"
	"strings"
)

// constantTable tracks declared constants and expands ${name}
// references lazily, one line at a time, with no recursive expansion:
// a constant's own value is never re-scanned for further references.
type constantTable struct {
	values map[string]string
	order  []string
}

func newConstantTable() *constantTable {
	return &constantTable{values: map[string]string{}}
}

func (c *constantTable) define(name, value string) error {
	if existing, ok := c.values[name]; ok {
		if existing == value {
			return nil
		}
		return fmt.Errorf("constant %q redefined with a different value", name)
	}
	c.values[name] = value
	c.order = append(c.order, name)
	return nil
}

func (c *constantTable) names() []string {
	return c.order
}

// expand replaces every ${name} in s with its defined value. An
// undefined reference is an error naming the unresolved identifier.
func (c *constantTable) expand(s string) (string, error) {
	var out strings.Builder
	i := 0
	for i < len(s) {
		start := strings.Index(s[i:], "${")
		if start < 0 {
			out.WriteString(s[i:])
			break
		}
		start += i
		out.WriteString(s[i:start])

		end := strings.IndexByte(s[start+2:], '}')
		if end < 0 {
			return "", fmt.Errorf("unterminated constant reference in %q", s[start:])
		}
		end += start + 2

		name := s[start+2 : end]
		value, ok := c.values[name]
		if !ok {
			msg := fmt.Sprintf("undefined constant reference ${%s}", name)
			return "", fmt.Errorf("%s", suggest(msg, name, c.names()))
		}
		out.WriteString(value)
		i = end + 1
	}
	return out.String(), nil
}

func (c *constantTable) expandAll(parts []string) ([]string, error) {
	out := make([]string, len(parts))
	for i, p := range parts {
		v, err := c.expand(p)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
