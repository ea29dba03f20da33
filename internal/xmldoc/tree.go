package xmldoc

import "strings"

// AsList normalizes the three shapes a decoded child can take into a list:
// absent (nil) yields an empty list, a single value yields a one-element list
// and a list is returned as is.
func AsList(v any) []any {
	switch typed := v.(type) {
	case nil:
		return []any{}
	case []any:
		return typed
	}
	return []any{v}
}

// Records is AsList for record-shaped children. Elements that decoded to
// plain text (records without attributes or fields) become an M holding that
// text, so every entry can be read with the M accessors.
func Records(v any) []M {
	list := AsList(v)
	out := make([]M, 0, len(list))
	for _, item := range list {
		if m, ok := asMap(item); ok {
			out = append(out, m)
			continue
		}
		rec := M{}
		if text := strings.TrimSpace(scalar(item)); text != "" {
			rec[TextKey] = text
		}
		out = append(out, rec)
	}
	return out
}

// List returns the normalized list stored under key.
func (m M) List(key string) []any {
	return AsList(m[key])
}

// Records returns the normalized records stored under key.
func (m M) Records(key string) []M {
	return Records(m[key])
}

// SetRecords stores records under key, replacing whatever was there.
func (m M) SetRecords(key string, records []M) {
	list := make([]any, len(records))
	for i, rec := range records {
		list[i] = rec
	}
	m[key] = list
}

// Text returns the text of a field given either as a child element or as an
// attribute. Missing fields yield "". When the field repeats, the first
// occurrence wins.
func (m M) Text(key string) string {
	v, ok := m[key]
	if !ok {
		v, ok = m[AttrPrefix+key]
	}
	if !ok {
		return ""
	}
	if list, isList := v.([]any); isList {
		if len(list) == 0 {
			return ""
		}
		v = list[0]
	}
	if fields, isMap := asMap(v); isMap {
		return strings.TrimSpace(scalar(fields[TextKey]))
	}
	return strings.TrimSpace(scalar(v))
}

// Map returns the child element under key when it decoded to an M. Text,
// absent and list values yield nil; reading from a nil M is safe.
func (m M) Map(key string) M {
	fields, _ := asMap(m[key])
	return fields
}

// Ensure returns the child element under key, converting it into an M when
// it is absent or plain text. When the key holds a list, the first record in
// it is returned.
func (m M) Ensure(key string) M {
	switch typed := m[key].(type) {
	case M:
		return typed
	case map[string]any:
		return M(typed)
	case []any:
		for _, item := range typed {
			if fields, ok := asMap(item); ok {
				return fields
			}
		}
	}

	fields := M{}
	if text := strings.TrimSpace(scalar(m[key])); text != "" {
		if _, isList := m[key].([]any); !isList {
			fields[TextKey] = text
		}
	}
	m[key] = fields
	return fields
}

// Root returns the body of the document's root element, creating an empty
// one when the root decoded to text. The second result is false when the
// document's root tag is not name.
func (m M) Root(name string) (M, bool) {
	if _, ok := m[name]; !ok {
		return nil, false
	}
	return m.Ensure(name), true
}

// Canonical returns the form a tree takes after an Encode/Decode round trip:
// scalars become trimmed strings, empty lists disappear, one-element lists
// collapse to their element and elements left with nothing but text become
// that text. Trees produced by Decode are already canonical.
func Canonical(v any) any {
	switch typed := v.(type) {
	case nil:
		return ""
	case []any:
		return canonicalList(typed)
	}

	fields, isMap := asMap(v)
	if !isMap {
		return strings.TrimSpace(scalar(v))
	}

	out := M{}
	for key, val := range fields {
		switch {
		case strings.HasPrefix(key, AttrPrefix):
			out[key] = scalar(val)
		case key == TextKey:
			if text := strings.TrimSpace(scalar(val)); text != "" {
				out[key] = text
			}
		default:
			if list, isList := val.([]any); isList {
				if c := canonicalList(list); c != nil {
					out[key] = c
				}
				continue
			}
			out[key] = Canonical(val)
		}
	}

	if len(out) == 0 {
		return ""
	}
	if text, ok := out[TextKey]; ok && len(out) == 1 {
		return text
	}
	return out
}

func canonicalList(list []any) any {
	switch len(list) {
	case 0:
		return nil
	case 1:
		return Canonical(list[0])
	}
	out := make([]any, len(list))
	for i, item := range list {
		out[i] = Canonical(item)
	}
	return out
}
