package state

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-resumeform/pkg/model"
)

// Load re-initialises the store for form and fills it from a document in
// payload shape: nested objects are read back through dotted ids, string
// lists of delimiter fields are joined into text, and item lists become
// Items. Keys the form does not declare are ignored; arrays shorter than
// minItems are padded with empty items.
func (s *Store) Load(form model.Form, doc map[string]any) {
	s.Reset(form)
	for _, field := range form.Fields {
		raw, ok := lookupDotted(doc, field.ID)
		if !ok {
			continue
		}
		s.values[field.ID] = importValue(field, raw)
	}
}

func lookupDotted(doc map[string]any, id string) (any, bool) {
	if doc == nil {
		return nil, false
	}
	if value, ok := doc[id]; ok {
		return value, true
	}
	segments := strings.Split(id, ".")
	var current any = doc
	for _, segment := range segments {
		object, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = object[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func importValue(field model.Field, raw any) any {
	if field.Kind == model.KindArray {
		return importItems(field, raw)
	}
	if field.Delimiter != "" {
		if list, ok := stringList(raw); ok {
			return strings.Join(list, joiner(field.Delimiter))
		}
	}
	switch v := raw.(type) {
	case nil:
		return ""
	case string, *model.File:
		return v
	case float64, float32, int, int64, int32, bool:
		return fmt.Sprint(v)
	default:
		return ""
	}
}

func importItems(field model.Field, raw any) []Item {
	var records []map[string]any
	switch v := raw.(type) {
	case []map[string]any:
		records = v
	case []Item:
		for _, item := range v {
			records = append(records, map[string]any(item))
		}
	case []any:
		for _, entry := range v {
			if record, ok := entry.(map[string]any); ok {
				records = append(records, record)
			}
		}
	}

	items := make([]Item, 0, max(len(records), field.MinItems))
	for _, record := range records {
		item := make(Item, len(record)+len(field.Template))
		for k, v := range record {
			item[k] = v
		}
		for _, sub := range field.Template {
			value, ok := record[sub.ID]
			if !ok {
				item[sub.ID] = initialValue(sub)
				continue
			}
			item[sub.ID] = importValue(sub, value)
		}
		items = append(items, item)
	}
	for len(items) < field.MinItems {
		items = append(items, newItem(field))
	}
	return items
}

func stringList(raw any) ([]string, bool) {
	switch v := raw.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, entry := range v {
			out = append(out, fmt.Sprint(entry))
		}
		return out, true
	default:
		return nil, false
	}
}

func joiner(delimiter string) string {
	if delimiter == "," {
		return ", "
	}
	return delimiter
}
