package docxmerge

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Value is the data bound to one placeholder: either a scalar replacement
// text or an ordered sequence of scalar texts (an array placeholder).
type Value struct {
	scalar string
	items  []string
	seq    bool
}

// Scalar returns a scalar value.
func Scalar(s string) Value {
	return Value{scalar: s}
}

// Sequence returns an array value with one element per item.
func Sequence(items ...string) Value {
	cp := make([]string, len(items))
	copy(cp, items)
	return Value{items: cp, seq: true}
}

// IsSequence reports whether v is an array value.
func (v Value) IsSequence() bool { return v.seq }

// Len returns the number of elements of an array value, or 1 for a scalar.
func (v Value) Len() int {
	if v.seq {
		return len(v.items)
	}
	return 1
}

// Items returns the elements of an array value.
func (v Value) Items() []string { return v.items }

// String returns the text of a scalar value.
func (v Value) String() string {
	if v.seq {
		return fmt.Sprint(v.items)
	}
	return v.scalar
}

// NewValue converts a Go value to a Value. Strings, numbers, booleans,
// fmt.Stringers and nil are scalars; slices and arrays of those are
// sequences. Nested sequences, maps and structs are rejected with
// ErrUnsupportedValue.
func NewValue(v any) (Value, error) {
	switch x := v.(type) {
	case Value:
		return x, nil
	case []string:
		return Sequence(x...), nil
	case []byte:
		return Scalar(string(x)), nil
	}

	if s, ok := scalarText(v); ok {
		return Scalar(s), nil
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return Scalar(""), nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}

	items := make([]string, rv.Len())
	for i := range items {
		s, ok := scalarText(rv.Index(i).Interface())
		if !ok {
			return Value{}, fmt.Errorf("%w: element %d of %T is %T", ErrUnsupportedValue, i, v, rv.Index(i).Interface())
		}
		items[i] = s
	}
	return Value{items: items, seq: true}, nil
}

func scalarText(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", true
	case string:
		return x, true
	case fmt.Stringer:
		return x.String(), true
	case bool:
		return strconv.FormatBool(x), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(x), true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "", true
		}
		return scalarText(rv.Elem().Interface())
	case reflect.String:
		return rv.String(), true
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprint(rv.Interface()), true
	}
	return "", false
}

// Field binds a placeholder name to a Go value.
type Field struct {
	Name  string
	Value any
}

// Data is the ordered data mapping of a render call. Placeholders are
// resolved in slice order.
type Data []Field

// DataFromMap converts a map to Data. Go maps are unordered, so keys are
// sorted to keep rendering deterministic.
func DataFromMap(m map[string]any) Data {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	data := make(Data, 0, len(keys))
	for _, k := range keys {
		data = append(data, Field{Name: k, Value: m[k]})
	}
	return data
}

// Names returns the placeholder names in order.
func (d Data) Names() []string {
	names := make([]string, len(d))
	for i, f := range d {
		names[i] = f.Name
	}
	return names
}

// DataFromYAML reads a YAML (or JSON) mapping, keeping keys in document
// order. Scalars keep their source text, so "007" stays "007".
func DataFromYAML(b []byte) (Data, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse data: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return Data{}, nil
	}
	root := resolveAlias(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse data: line %d: top level must be a mapping", root.Line)
	}

	data := make(Data, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i]
		val, err := yamlValue(resolveAlias(root.Content[i+1]))
		if err != nil {
			return nil, fmt.Errorf("parse data: key %q: %w", key.Value, err)
		}
		data = append(data, Field{Name: key.Value, Value: val})
	}
	return data, nil
}

func yamlValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil, nil
		}
		return n.Value, nil
	case yaml.SequenceNode:
		items := make([]any, len(n.Content))
		for i, c := range n.Content {
			c = resolveAlias(c)
			if c.Kind != yaml.ScalarNode {
				// left for NewValue to reject with ErrUnsupportedValue
				var decoded any
				if err := c.Decode(&decoded); err != nil {
					return nil, err
				}
				items[i] = decoded
				continue
			}
			v, _ := yamlValue(c)
			items[i] = v
		}
		return items, nil
	default:
		var decoded any
		if err := n.Decode(&decoded); err != nil {
			return nil, err
		}
		return decoded, nil
	}
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}
