package vanilla

import (
	"fmt"
	"strconv"

	"github.com/goliatone/go-resumeform/pkg/render"
	"github.com/goliatone/go-resumeform/pkg/render/template"
)

// Form actions posted by the add and remove buttons of a repeater and the
// remove button of an uploaded file.
const (
	ActionAdd    = "_add"
	ActionRemove = "_remove"
	ActionClear  = "_clear"
)

type fieldRenderer struct {
	templates template.TemplateRenderer
	classes   map[string]string
}

func newFieldRenderer(templates template.TemplateRenderer, classes map[string]string) *fieldRenderer {
	return &fieldRenderer{templates: templates, classes: classes}
}

// render draws one widget. Repeater items are rendered depth first and handed
// to the repeater template as markup, so nesting depth is not limited by the
// templates.
func (r *fieldRenderer) render(w render.Widget) (string, error) {
	view := widgetView(w)
	view["class"] = r.classes["field"]

	var name string
	switch v := w.(type) {
	case *render.TextInput:
		name = "input"
		view["input_type"] = v.InputType
		view["value"] = v.Value
		view["placeholder"] = v.Placeholder
	case *render.TextArea:
		name = "textarea"
		view["rows"] = strconv.Itoa(v.Rows)
		view["value"] = v.Value
		view["placeholder"] = v.Placeholder
	case *render.Select:
		name = "select"
		view["placeholder"] = v.Placeholder
		options := make([]map[string]any, 0, len(v.Options))
		for _, opt := range v.Options {
			options = append(options, map[string]any{
				"value":    opt.Value,
				"label":    opt.Label,
				"selected": opt.Value == v.Value,
			})
		}
		view["options"] = options
	case *render.FileUpload:
		name = "file"
		view["empty"] = v.Empty()
		view["accept"] = v.Accept
		view["hint"] = v.Hint
		view["clear_action"] = ActionClear
		if !v.Empty() {
			view["file_name"] = v.File.Name
			view["file_size"] = v.Size()
		}
	case *render.Repeater:
		name = "repeater"
		view["class"] = r.classes["repeater"]
		view["add_label"] = v.AddLabel
		view["add_action"] = ActionAdd
		view["empty"] = v.Empty()
		view["empty_message"] = v.EmptyMessage
		items := make([]map[string]any, 0, len(v.Items))
		for _, item := range v.Items {
			fields := make([]string, 0, len(item.Fields))
			for _, child := range item.Fields {
				markup, err := r.render(child)
				if err != nil {
					return "", err
				}
				fields = append(fields, markup)
			}
			items = append(items, map[string]any{
				"title":         item.Title,
				"removable":     item.Removable,
				"remove_action": ActionRemove,
				"remove_value":  w.ID() + "." + strconv.Itoa(item.Index),
				"fields":        fields,
			})
		}
		view["items"] = items
	default:
		return "", fmt.Errorf("vanilla renderer: unsupported widget %T for %q", w, w.ID())
	}

	out, err := r.templates.RenderTemplate("templates/widgets/"+name, map[string]any{"field": view})
	if err != nil {
		return "", fmt.Errorf("render %s widget %q: %w", name, w.ID(), err)
	}
	return out, nil
}

func widgetView(w render.Widget) map[string]any {
	field := w.Field()
	return map[string]any{
		"id":          w.ID(),
		"control_id":  controlID(w.ID()),
		"error_id":    errorID(w.ID()),
		"label":       w.Label(),
		"required":    field.Required,
		"description": field.Description,
		"error":       w.ErrorText(),
	}
}
