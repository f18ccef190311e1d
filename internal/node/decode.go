package node

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Reserved mapping keys of the object-graph document.
const (
	ClassKey   = "__class__"
	TupleKey   = "__tuple__"
	NDArrayKey = "__ndarray__"
)

// Decode reads an object-graph document (YAML, or JSON as a YAML subset).
//
// A mapping with a "__class__: module.Class" key is a *Node whose other keys are attributes.
// {__tuple__: [...]} is a Tuple and {__ndarray__: {shape: [...], data: [...]}} is an *Array.
// YAML anchors and aliases share one decoded object, like a pickle memo.
func Decode(r io.Reader) (any, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty document", ErrMalformedDocument)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	d := &decoder{seen: make(map[*yaml.Node]any)}
	return d.value(&doc)
}

// DecodeNode reads a document whose root must be an object.
func DecodeNode(r io.Reader) (*Node, error) {
	v, err := Decode(r)
	if err != nil {
		return nil, err
	}
	n, ok := v.(*Node)
	if !ok {
		return nil, fmt.Errorf("%w: root is %s, not an object", ErrMalformedDocument, TypeName(v))
	}
	return n, nil
}

// DecodeFile reads an object-graph document from disk.
func DecodeFile(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	n, err := DecodeNode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}

type decoder struct {
	seen map[*yaml.Node]any
}

func (d *decoder) errorf(y *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrMalformedDocument, y.Line, fmt.Sprintf(format, args...))
}

func (d *decoder) value(y *yaml.Node) (any, error) {
	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return nil, nil
		}
		return d.value(y.Content[0])
	case yaml.AliasNode:
		if v, ok := d.seen[y.Alias]; ok {
			return v, nil
		}
		return d.value(y.Alias)
	case yaml.ScalarNode:
		return d.scalar(y)
	case yaml.SequenceNode:
		list := make([]any, 0, len(y.Content))
		for _, c := range y.Content {
			v, err := d.value(c)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.MappingNode:
		return d.mapping(y)
	default:
		return nil, d.errorf(y, "unexpected YAML node kind %d", y.Kind)
	}
}

func (d *decoder) scalar(y *yaml.Node) (any, error) {
	switch y.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := y.Decode(&b); err != nil {
			return nil, d.errorf(y, "%v", err)
		}
		return b, nil
	case "!!int":
		var i int64
		if err := y.Decode(&i); err != nil {
			return nil, d.errorf(y, "%v", err)
		}
		return i, nil
	case "!!float":
		switch strings.ToLower(y.Value) {
		case ".nan", "nan":
			return math.NaN(), nil
		}
		var f float64
		if err := y.Decode(&f); err != nil {
			return nil, d.errorf(y, "%v", err)
		}
		return f, nil
	default:
		return y.Value, nil
	}
}

func (d *decoder) mapping(y *yaml.Node) (any, error) {
	keys := make([]string, 0, len(y.Content)/2)
	vals := make([]*yaml.Node, 0, len(y.Content)/2)
	for i := 0; i+1 < len(y.Content); i += 2 {
		k := y.Content[i]
		if k.Kind != yaml.ScalarNode {
			return nil, d.errorf(k, "mapping keys must be strings")
		}
		keys = append(keys, k.Value)
		vals = append(vals, y.Content[i+1])
	}

	if len(keys) == 1 {
		switch keys[0] {
		case TupleKey:
			v, err := d.value(vals[0])
			if err != nil {
				return nil, err
			}
			l, ok := v.([]any)
			if !ok {
				return nil, d.errorf(vals[0], "%s expects a sequence", TupleKey)
			}
			t := Tuple(l)
			d.seen[y] = t
			return t, nil
		case NDArrayKey:
			a, err := d.array(vals[0])
			if err != nil {
				return nil, err
			}
			d.seen[y] = a
			return a, nil
		}
	}

	for i, k := range keys {
		if k == ClassKey {
			return d.object(y, vals[i], keys, vals)
		}
	}

	dict := make(map[string]any, len(keys))
	d.seen[y] = dict
	for i, k := range keys {
		if isReserved(k) {
			return nil, d.errorf(vals[i], "unknown reserved key %q", k)
		}
		v, err := d.value(vals[i])
		if err != nil {
			return nil, err
		}
		dict[k] = v
	}
	return dict, nil
}

func (d *decoder) object(y, class *yaml.Node, keys []string, vals []*yaml.Node) (*Node, error) {
	if class.Kind != yaml.ScalarNode || class.Value == "" {
		return nil, d.errorf(class, "%s must be a non-empty string", ClassKey)
	}
	module, name := Parse(class.Value)
	n := New(module, name, make(map[string]any, len(keys)-1))
	d.seen[y] = n

	for i, k := range keys {
		if k == ClassKey {
			continue
		}
		if isReserved(k) {
			return nil, d.errorf(vals[i], "unknown reserved key %q", k)
		}
		v, err := d.value(vals[i])
		if err != nil {
			return nil, err
		}
		n.Attrs[k] = v
	}
	return n, nil
}

func (d *decoder) array(y *yaml.Node) (*Array, error) {
	v, err := d.value(y)
	if err != nil {
		return nil, err
	}
	spec, ok := v.(map[string]any)
	if !ok {
		return nil, d.errorf(y, "%s expects a mapping with shape and data", NDArrayKey)
	}

	var values []any
	raw, ok := spec["data"].([]any)
	if !ok {
		return nil, d.errorf(y, "%s.data must be a sequence", NDArrayKey)
	}
	values = flatten(raw, values)

	var shape []int
	if s, ok := spec["shape"]; ok && s != nil {
		dims, ok := AsList(s)
		if !ok {
			return nil, d.errorf(y, "%s.shape must be a sequence", NDArrayKey)
		}
		size := 1
		for _, dim := range dims {
			n, ok := AsInt(dim)
			if !ok || n < 0 {
				return nil, d.errorf(y, "%s.shape has invalid dimension %v", NDArrayKey, dim)
			}
			shape = append(shape, n)
			size *= n
		}
		if size != len(values) {
			return nil, d.errorf(y, "%s shape %v does not match %d values", NDArrayKey, shape, len(values))
		}
	} else {
		shape = []int{len(values)}
	}
	return &Array{Shape: shape, Values: values}, nil
}

func flatten(in []any, out []any) []any {
	for _, v := range in {
		if nested, ok := v.([]any); ok {
			out = flatten(nested, out)
			continue
		}
		out = append(out, v)
	}
	return out
}

func isReserved(k string) bool {
	return strings.HasPrefix(k, "__") && strings.HasSuffix(k, "__") && len(k) > 4
}
