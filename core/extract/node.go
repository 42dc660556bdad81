package extract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gaurav-prasanna/pressblocks/core"
)

// ErrStructure reports an element whose content cannot become a Record value.
var ErrStructure = errors.New("unexpected XML structure")

// Node is a buffered XML node. It is either *Element or *Text.
type Node interface {
	node()
}

// Element is a buffered element with its qualified name (prefix:local).
type Element struct {
	Name     string
	Children []Node
}

// Text is character data, CDATA included.
type Text struct {
	Data string
}

func (*Element) node() {}
func (*Text) node() {}

var keyReplacer = strings.NewReplacer(":", "_", "-", "_")

// Key converts a qualified tag name into a Record key: wp:post_id → wp_post_id.
func Key(name string) string {
	return keyReplacer.Replace(name)
}

// BuildRecord converts the children of el into a Record.
func BuildRecord(el *Element) (core.Record, error) {
	rec := core.Record{}
	for _, child := range el.Children {
		switch c := child.(type) {
		case *Text:
			if strings.TrimSpace(c.Data) != "" {
				return nil, fmt.Errorf("%w: text mixed with elements in <%s>", ErrStructure, el.Name)
			}
		case *Element:
			v, err := value(c)
			if err != nil {
				return nil, err
			}
			add(rec, Key(c.Name), v)
		default:
			return nil, fmt.Errorf("%w: node %T in <%s>", ErrStructure, child, el.Name)
		}
	}
	return rec, nil
}

// value returns nil for an empty element, a coerced scalar for a text-only
// element and a nested Record otherwise.
func value(el *Element) (any, error) {
	var (
		text     strings.Builder
		hasText  bool
		elements bool
	)
	for _, child := range el.Children {
		switch c := child.(type) {
		case *Text:
			text.WriteString(c.Data)
			if strings.TrimSpace(c.Data) != "" {
				hasText = true
			}
		case *Element:
			elements = true
		default:
			return nil, fmt.Errorf("%w: node %T in <%s>", ErrStructure, child, el.Name)
		}
	}

	switch {
	case elements:
		return BuildRecord(el)
	case hasText:
		return coerce(text.String()), nil
	default:
		return nil, nil
	}
}

func add(rec core.Record, key string, v any) {
	existing, ok := rec[key]
	if !ok {
		rec[key] = v
		return
	}
	if seq, ok := existing.([]any); ok {
		rec[key] = append(seq, v)
		return
	}
	rec[key] = []any{existing, v}
}

func coerce(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return s
}
