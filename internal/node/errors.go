package node

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAttribute is returned when a required attribute is absent or None.
	ErrMissingAttribute = errors.New("missing attribute")

	// ErrAttributeType is returned when an attribute holds a value of the wrong shape.
	ErrAttributeType = errors.New("unexpected attribute type")

	// ErrUnsupportedValue is returned when an option attribute holds an unrecognized value.
	ErrUnsupportedValue = errors.New("unsupported attribute value")

	// ErrMalformedDocument is returned by the decoder for invalid object-graph documents.
	ErrMalformedDocument = errors.New("malformed object graph")
)

// AttributeError names the attribute and owning class of a failed read.
type AttributeError struct {
	Class     string
	Attribute string
	Detail    string
	Err       error
}

func (e *AttributeError) Error() string {
	msg := fmt.Sprintf("attribute '%s' of %s: %v", e.Attribute, e.Class, e.Err)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *AttributeError) Unwrap() error {
	return e.Err
}

func (n *Node) attrError(name string, err error, format string, args ...any) error {
	return &AttributeError{
		Class:     n.ClassName(),
		Attribute: name,
		Detail:    fmt.Sprintf(format, args...),
		Err:       err,
	}
}
