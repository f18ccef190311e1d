package pmml

import (
	"encoding/xml"
	"strings"
)

// Array types.
const (
	ArrayInt    = "int"
	ArrayReal   = "real"
	ArrayString = "string"
)

// Array is a whitespace-separated value list.
type Array struct {
	N      int      `xml:"n,attr"`
	Type   string   `xml:"type,attr"`
	Values []string `xml:"-"`
}

// MarshalXML writes the values as element content, quoting strings that need it.
func (a Array) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Attr = append(start.Attr,
		xml.Attr{Name: xml.Name{Local: "n"}, Value: itoa(a.N)},
		xml.Attr{Name: xml.Name{Local: "type"}, Value: a.Type},
	)
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := e.EncodeToken(xml.CharData(a.Content())); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

// Content renders the element text.
func (a Array) Content() string {
	parts := make([]string, len(a.Values))
	for i, v := range a.Values {
		if a.Type == ArrayString && needsQuotes(v) {
			v = `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
		}
		parts[i] = v
	}
	return strings.Join(parts, " ")
}

func needsQuotes(v string) bool {
	return v == "" || strings.ContainsAny(v, " \t\n\"")
}
