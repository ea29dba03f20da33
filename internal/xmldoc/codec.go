// Package xmldoc converts flat-file XML documents to and from a generic
// in-memory tree.
//
// A decoded element is represented the same way fast, schema-less XML
// parsers do it:
//
//   - an element with neither attributes nor child elements is its trimmed text (string)
//   - any other element is an M; attributes are stored under "@name", child
//     elements under their tag name and non-blank text under "#text"
//   - a tag that repeats under the same parent becomes a []any in document order
//
// The last rule is why consumers must never assume cardinality: a parent with
// one <item> yields a single value, with two it yields a list, with none the
// key is absent. Use AsList or Records before iterating.
package xmldoc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

const (
	// AttrPrefix marks keys that are encoded as XML attributes.
	AttrPrefix = "@"
	// TextKey holds the character data of an element that also has attributes or children.
	TextKey = "#text"
)

// ErrMalformedDocument is returned when the input is not well-formed XML.
var ErrMalformedDocument = errors.New("malformed document")

// M is a decoded element. The decoded document itself is an M with exactly
// one key: the root tag.
type M map[string]any

type frame struct {
	name   string
	fields M
	text   strings.Builder
}

func (f *frame) value() any {
	text := strings.TrimSpace(f.text.String())
	if len(f.fields) == 0 {
		return text
	}
	if text != "" {
		f.fields[TextKey] = text
	}
	return f.fields
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedDocument, fmt.Sprintf(format, args...))
}

// Decode parses raw bytes into a document tree.
func Decode(data []byte) (M, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		stack []*frame
		doc   M
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 && doc != nil {
				return nil, malformed("multiple root elements")
			}
			f := &frame{name: t.Name.Local, fields: M{}}
			for _, attr := range t.Attr {
				if attr.Name.Space == "xmlns" || attr.Name.Local == "xmlns" {
					continue
				}
				f.fields[AttrPrefix+attr.Name.Local] = attr.Value
			}
			stack = append(stack, f)

		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, malformed("text outside root element")
				}
				continue
			}
			stack[len(stack)-1].text.Write(t)

		case xml.EndElement:
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				doc = M{f.name: f.value()}
				continue
			}
			addChild(stack[len(stack)-1].fields, f.name, f.value())
		}
	}

	if len(stack) > 0 {
		return nil, malformed("unclosed element <%s>", stack[len(stack)-1].name)
	}
	if doc == nil {
		return nil, malformed("no root element")
	}
	return doc, nil
}

func addChild(fields M, name string, v any) {
	existing, ok := fields[name]
	if !ok {
		fields[name] = v
		return
	}
	if list, ok := existing.([]any); ok {
		fields[name] = append(list, v)
		return
	}
	fields[name] = []any{existing, v}
}

// Encode serializes a document tree. The tree must hold exactly one root key.
// Keys are written in a stable order: attributes first, then text, then
// children sorted by tag name. Lists are written as repeated elements; an
// empty list writes nothing.
func Encode(doc M) ([]byte, error) {
	if len(doc) != 1 {
		return nil, fmt.Errorf("xmldoc: document must have exactly one root element, got %d", len(doc))
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	for name, v := range doc {
		if _, isList := v.([]any); isList {
			return nil, fmt.Errorf("xmldoc: root element <%s> cannot be a list", name)
		}
		if err := encodeElement(enc, name, v); err != nil {
			return nil, err
		}
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func encodeValue(enc *xml.Encoder, name string, v any) error {
	list, ok := v.([]any)
	if !ok {
		return encodeElement(enc, name, v)
	}
	for _, item := range list {
		if _, nested := item.([]any); nested {
			return fmt.Errorf("xmldoc: nested list under <%s>", name)
		}
		if err := encodeElement(enc, name, item); err != nil {
			return err
		}
	}
	return nil
}

func encodeElement(enc *xml.Encoder, name string, v any) error {
	start := xml.StartElement{Name: xml.Name{Local: name}}

	fields, isMap := asMap(v)
	if !isMap {
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		if text := scalar(v); text != "" {
			if err := enc.EncodeToken(xml.CharData(text)); err != nil {
				return err
			}
		}
		return enc.EncodeToken(start.End())
	}

	var children []string
	for _, key := range sortedKeys(fields) {
		switch {
		case strings.HasPrefix(key, AttrPrefix):
			start.Attr = append(start.Attr, xml.Attr{
				Name:  xml.Name{Local: strings.TrimPrefix(key, AttrPrefix)},
				Value: scalar(fields[key]),
			})
		case key == TextKey:
		default:
			children = append(children, key)
		}
	}

	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if text := scalar(fields[TextKey]); text != "" {
		if err := enc.EncodeToken(xml.CharData(text)); err != nil {
			return err
		}
	}
	for _, key := range children {
		if err := encodeValue(enc, key, fields[key]); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

func asMap(v any) (M, bool) {
	switch typed := v.(type) {
	case M:
		return typed, true
	case map[string]any:
		return M(typed), true
	}
	return nil, false
}

func scalar(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case fmt.Stringer:
		return typed.String()
	}
	return fmt.Sprint(v)
}

func sortedKeys(m M) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
