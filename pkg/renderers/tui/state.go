package tui

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-resumeform/pkg/render"
)

// widgetIDs lists the top-level widget ids in form order.
func widgetIDs(widgets []render.Widget) []string {
	ids := make([]string, 0, len(widgets))
	for _, w := range widgets {
		ids = append(ids, w.ID())
	}
	return ids
}

// findWidget resolves a runtime id anywhere in the tree, descending into
// repeater items.
func findWidget(widgets []render.Widget, id string) render.Widget {
	for _, w := range widgets {
		if w.ID() == id {
			return w
		}
		rep, ok := w.(*render.Repeater)
		if !ok || !strings.HasPrefix(id, w.ID()+".") {
			continue
		}
		for _, item := range rep.Items {
			if found := findWidget(item.Fields, id); found != nil {
				return found
			}
		}
	}
	return nil
}

func writeWidget(b *strings.Builder, w render.Widget, indent string) {
	label := strings.TrimSuffix(w.Label(), " *")
	switch v := w.(type) {
	case *render.TextInput:
		writeLine(b, indent, label, v.Value)
	case *render.TextArea:
		writeLine(b, indent, label, v.Value)
	case *render.Select:
		value := v.Value
		if opt, ok := v.Selected(); ok {
			value = opt.Label
		}
		writeLine(b, indent, label, value)
	case *render.FileUpload:
		value := ""
		if !v.Empty() {
			value = fmt.Sprintf("%s (%s)", v.File.Name, v.Size())
		}
		writeLine(b, indent, label, value)
	case *render.Repeater:
		if v.Empty() {
			writeLine(b, indent, label, v.EmptyMessage)
			break
		}
		fmt.Fprintf(b, "%s%s:\n", indent, label)
		for _, item := range v.Items {
			fmt.Fprintf(b, "%s  %s\n", indent, item.Title)
			for _, field := range item.Fields {
				writeWidget(b, field, indent+"    ")
			}
		}
	}
	if msg := w.ErrorText(); msg != "" {
		fmt.Fprintf(b, "%s  ! %s\n", indent, msg)
	}
}

func writeLine(b *strings.Builder, indent, label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = "-"
	}
	if strings.Contains(value, "\n") {
		value = strings.ReplaceAll(value, "\n", "\n"+indent+"  ")
	}
	fmt.Fprintf(b, "%s%s: %s\n", indent, label, value)
}
