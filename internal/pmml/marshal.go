package pmml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
)

// Marshal renders the document as indented XML with a declaration.
func Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes the document as indented XML with a declaration.
func Encode(w io.Writer, doc *Document) error {
	if doc.Model == nil {
		return fmt.Errorf("pmml: document has no model")
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "\t")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("pmml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
