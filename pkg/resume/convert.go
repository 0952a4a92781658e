package resume

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// Text is a string that also accepts JSON numbers, for values such as GPA
// that services send either way.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("resume: text value %s: %w", data, err)
	}
	if f, err := n.Float64(); err == nil {
		*t = Text(strconv.FormatFloat(f, 'f', -1, 64))
		return nil
	}
	*t = Text(n.String())
	return nil
}

// FromMap decodes a document from its generic JSON shape.
func FromMap(data map[string]any) (Document, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Document{}, fmt.Errorf("resume: encode document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("resume: decode document: %w", err)
	}
	return doc, nil
}

// ToMap encodes the document into its generic JSON shape.
func (d Document) ToMap() (map[string]any, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("resume: encode document: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("resume: decode document: %w", err)
	}
	return out, nil
}
