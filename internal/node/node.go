// Package node models the deserialized object graph handed to the converter:
// class-tagged attribute records plus the typed accessors steps read them with.
package node

import (
	"sort"
	"strings"
)

// Node is one deserialized object: an originating class identity and its attributes.
//
// Attribute values are nil (None), bool, int64, float64, string, []any (list),
// Tuple, *Array, map[string]any (dict) or a nested *Node.
type Node struct {
	Module string
	Class  string
	Attrs  map[string]any
}

// New creates a Node. A nil attribute map is replaced by an empty one.
func New(module, class string, attrs map[string]any) *Node {
	if attrs == nil {
		attrs = make(map[string]any)
	}
	return &Node{Module: module, Class: class, Attrs: attrs}
}

// Parse splits a qualified "module.Class" name.
func Parse(qualified string) (module, class string) {
	i := strings.LastIndexByte(qualified, '.')
	if i < 0 {
		return "", qualified
	}
	return qualified[:i], qualified[i+1:]
}

// ClassName returns the qualified class name.
func (n *Node) ClassName() string {
	if n.Module == "" {
		return n.Class
	}
	return n.Module + "." + n.Class
}

func (n *Node) String() string {
	return n.ClassName()
}

// Get returns the raw attribute value.
func (n *Node) Get(name string) (any, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

// Has reports whether the attribute is present and not None.
func (n *Node) Has(name string) bool {
	v, ok := n.Attrs[name]
	return ok && v != nil
}

// Keys returns the attribute names in sorted order.
func (n *Node) Keys() []string {
	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Tuple is an ordered, fixed-length Python tuple.
type Tuple []any

// Array is a numpy ndarray: a row-major flat value list plus its shape.
type Array struct {
	Shape  []int
	Values []any
}

// NewArray creates a one-dimensional array.
func NewArray(values ...any) *Array {
	return &Array{Shape: []int{len(values)}, Values: values}
}

// NewMatrix creates a two-dimensional array from rows of equal length.
func NewMatrix(rows ...[]any) *Array {
	a := &Array{Shape: []int{len(rows), 0}}
	if len(rows) > 0 {
		a.Shape[1] = len(rows[0])
	}
	for _, row := range rows {
		a.Values = append(a.Values, row...)
	}
	return a
}

// Ndim returns the number of dimensions.
func (a *Array) Ndim() int {
	return len(a.Shape)
}

// Len returns the size of the first dimension.
func (a *Array) Len() int {
	if len(a.Shape) == 0 {
		return len(a.Values)
	}
	return a.Shape[0]
}

// Rows splits a two-dimensional array into its rows.
// A one-dimensional array is treated as a single row.
func (a *Array) Rows() [][]any {
	if a.Ndim() < 2 {
		return [][]any{a.Values}
	}
	cols := a.Shape[1]
	rows := make([][]any, 0, a.Shape[0])
	for i := 0; i < a.Shape[0]; i++ {
		rows = append(rows, a.Values[i*cols:(i+1)*cols])
	}
	return rows
}
