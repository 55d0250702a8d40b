package domain

import "strings"

// ContentType describes how the Content of a record is interpreted
type ContentType int

const (
	ContentTypeText ContentType = iota
	ContentTypeNumeric
)

var contentTypeNames = map[ContentType]string{
	ContentTypeText:    "Text",
	ContentTypeNumeric: "Numeric",
}

// String returns the stored textual name of the content type
func (t ContentType) String() string {
	if name, ok := contentTypeNames[t]; ok {
		return name
	}
	return contentTypeNames[ContentTypeText]
}

// ParseContentType parses a stored content type name. Matching is case
// insensitive; empty or unknown names fall back to ContentTypeText.
func ParseContentType(s string) ContentType {
	s = strings.TrimSpace(s)
	for t, name := range contentTypeNames {
		if strings.EqualFold(name, s) {
			return t
		}
	}
	return ContentTypeText
}

// MarshalText implements encoding.TextMarshaler
func (t ContentType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *ContentType) UnmarshalText(b []byte) error {
	*t = ParseContentType(string(b))
	return nil
}
