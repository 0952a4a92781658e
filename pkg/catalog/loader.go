package catalog

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-resumeform/pkg/model"
)

// Catalog holds one validated form per resume type.
type Catalog struct {
	forms map[string]model.Form
}

// New builds a catalog from already constructed forms, validating each.
func New(forms ...model.Form) (*Catalog, error) {
	c := &Catalog{forms: make(map[string]model.Form, len(forms))}
	for _, form := range forms {
		if err := c.add(form, "memory"); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// LoadFS walks fsys and parses every JSON/YAML catalog document. JSON files
// are read with the YAML decoder as well so template order is preserved for
// both formats. A nil fsys yields an empty catalog.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	c := &Catalog{forms: make(map[string]model.Form)}
	if fsys == nil {
		return c, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSchemaFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("catalog: read %s: %w", path, err)
		}
		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		types := make([]string, 0, len(doc.ResumeTypes))
		for name := range doc.ResumeTypes {
			types = append(types, name)
		}
		sort.Strings(types)

		for _, name := range types {
			form := doc.ResumeTypes[name].toForm(strings.TrimSpace(name))
			if err := c.add(form, path); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) add(form model.Form, source string) error {
	if _, exists := c.forms[form.Type]; exists {
		return fmt.Errorf("catalog: duplicate resume type %q (file %s)", form.Type, source)
	}
	if err := model.ValidateForm(form); err != nil {
		return fmt.Errorf("catalog: %s: %w", source, err)
	}
	c.forms[form.Type] = form
	return nil
}

// Form returns the form registered for resumeType.
func (c *Catalog) Form(resumeType string) (model.Form, bool) {
	if c == nil {
		return model.Form{}, false
	}
	form, ok := c.forms[strings.TrimSpace(resumeType)]
	return form, ok
}

// Types lists the registered resume types in sorted order.
func (c *Catalog) Types() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.forms))
	for name := range c.forms {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Empty reports whether the catalog holds any forms.
func (c *Catalog) Empty() bool {
	return c == nil || len(c.forms) == 0
}

type documentFile struct {
	ResumeTypes map[string]formFile `yaml:"resumeTypes"`
}

type formFile struct {
	Title       string      `yaml:"title"`
	Description string      `yaml:"description"`
	Fields      []fieldFile `yaml:"fields"`
}

type fieldFile struct {
	ID          string          `yaml:"id"`
	Label       string          `yaml:"label"`
	Kind        string          `yaml:"kind"`
	Required    bool            `yaml:"required"`
	Placeholder string          `yaml:"placeholder"`
	Description string          `yaml:"description"`
	Validation  *ruleFile       `yaml:"validation"`
	Rows        int             `yaml:"rows"`
	Options     []model.Option  `yaml:"options"`
	Template    orderedTemplate `yaml:"template"`
	MinItems    int             `yaml:"minItems"`
	Accept      string          `yaml:"accept"`
	MaxSize     int64           `yaml:"maxSize"`
	Delimiter   string          `yaml:"delimiter"`
}

type templateEntry struct {
	key   string
	field fieldFile
}

// orderedTemplate keeps the declaration order of template keys, which a Go
// map would lose.
type orderedTemplate []templateEntry

func (t *orderedTemplate) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("catalog: template must be a mapping (line %d)", node.Line)
	}
	entries := make(orderedTemplate, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var key string
		if err := node.Content[i].Decode(&key); err != nil {
			return err
		}
		var field fieldFile
		if err := node.Content[i+1].Decode(&field); err != nil {
			return fmt.Errorf("catalog: template key %q: %w", key, err)
		}
		entries = append(entries, templateEntry{key: key, field: field})
	}
	*t = entries
	return nil
}

// ruleFile accepts either a bare rule name ("email") or a mapping with kind
// and params.
type ruleFile struct {
	Kind   string            `yaml:"kind"`
	Params map[string]string `yaml:"params"`
}

func (r *ruleFile) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		r.Kind = strings.TrimSpace(node.Value)
		return nil
	}
	type plain ruleFile
	var out plain
	if err := node.Decode(&out); err != nil {
		return err
	}
	*r = ruleFile(out)
	return nil
}

func (f formFile) toForm(resumeType string) model.Form {
	form := model.Form{
		Type:        resumeType,
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Fields:      make([]model.Field, 0, len(f.Fields)),
	}
	for _, raw := range f.Fields {
		form.Fields = append(form.Fields, raw.toField(raw.ID))
	}
	return form
}

func (f fieldFile) toField(id string) model.Field {
	field := model.Field{
		ID:          strings.TrimSpace(id),
		Label:       f.Label,
		Kind:        model.Kind(strings.ToLower(strings.TrimSpace(f.Kind))),
		Required:    f.Required,
		Placeholder: f.Placeholder,
		Description: f.Description,
		Rows:        f.Rows,
		Options:     append([]model.Option(nil), f.Options...),
		MinItems:    f.MinItems,
		Accept:      strings.TrimSpace(f.Accept),
		MaxSize:     f.MaxSize,
		Delimiter:   f.Delimiter,
	}
	if len(field.Options) == 0 {
		field.Options = nil
	}
	if f.Validation != nil && f.Validation.Kind != "" {
		field.Validation = &model.ValidationRule{Kind: f.Validation.Kind}
		if len(f.Validation.Params) > 0 {
			field.Validation.Params = make(map[string]string, len(f.Validation.Params))
			for k, v := range f.Validation.Params {
				field.Validation.Params[k] = v
			}
		}
	}
	for _, entry := range f.Template {
		field.Template = append(field.Template, entry.field.toField(entry.key))
	}
	return field
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("catalog: file %s is empty", source)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("catalog: parse %s: %w", source, err)
	}
	if len(doc.ResumeTypes) == 0 {
		return documentFile{}, fmt.Errorf("catalog: file %s defines no resume types", source)
	}
	return doc, nil
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
