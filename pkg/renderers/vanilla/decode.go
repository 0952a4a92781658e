package vanilla

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/goliatone/go-resumeform/pkg/model"
	"github.com/goliatone/go-resumeform/pkg/render"
)

// ActionSubmit is posted by the generate button.
const ActionSubmit = "_submit"

// DefaultMaxMemory bounds the multipart parts kept in memory while decoding.
const DefaultMaxMemory = 16 << 20

// Session is the form a posted page is applied to. Its widgets carry the
// mutation callbacks, so *builder.Session satisfies it.
type Session interface {
	Widgets() []render.Widget
}

// Post is a decoded form submission: field values keyed by runtime id and
// picked files keyed by the id of their file field.
type Post struct {
	Values url.Values
	Files  map[string]*model.File
}

// Outcome reports what a post asked for after its values were applied.
type Outcome struct {
	// Action is ActionAdd, ActionRemove, ActionClear, ActionSubmit or empty.
	Action string
	// Target is the runtime id the action addressed.
	Target string
	// Rejections lists picked files refused by their field.
	Rejections []*render.Rejection
}

// Submit reports whether the generate button was pressed.
func (o Outcome) Submit() bool { return o.Action == ActionSubmit }

var (
	ErrUnknownTarget   = errors.New("vanilla: action target does not match a field")
	ErrMultipleActions = errors.New("vanilla: more than one action posted")
)

// DecodeRequest reads a posted form. Multipart bodies yield files, read
// whole and typed by content; urlencoded bodies yield values only.
func DecodeRequest(r *http.Request, maxMemory int64) (Post, error) {
	if maxMemory <= 0 {
		maxMemory = DefaultMaxMemory
	}
	post := Post{Files: map[string]*model.File{}}

	err := r.ParseMultipartForm(maxMemory)
	switch {
	case errors.Is(err, http.ErrNotMultipart):
		if err := r.ParseForm(); err != nil {
			return Post{}, fmt.Errorf("vanilla: parse form: %w", err)
		}
	case err != nil:
		return Post{}, fmt.Errorf("vanilla: parse multipart form: %w", err)
	}
	post.Values = r.PostForm

	if r.MultipartForm == nil {
		return post, nil
	}
	for name, headers := range r.MultipartForm.File {
		for _, header := range headers {
			if header.Filename == "" {
				continue
			}
			f, err := header.Open()
			if err != nil {
				return Post{}, fmt.Errorf("vanilla: open upload %s: %w", name, err)
			}
			data, err := io.ReadAll(f)
			_ = f.Close()
			if err != nil {
				return Post{}, fmt.Errorf("vanilla: read upload %s: %w", name, err)
			}
			post.Files[name] = &model.File{
				Name:        header.Filename,
				Size:        int64(len(data)),
				ContentType: mimetype.Detect(data).String(),
				Content:     data,
			}
			break
		}
	}
	return post, nil
}

// Apply writes post back through the widgets of sess. Changed values go
// through each widget's Change or Pick, then the posted button action runs
// against the updated widget tree. Values for names that match no widget,
// such as hidden fields, are ignored.
func Apply(sess Session, post Post) (Outcome, error) {
	var out Outcome
	for _, w := range flatten(sess.Widgets()) {
		if err := applyValue(w, post, &out); err != nil {
			return out, err
		}
	}

	action, target, err := postedAction(post.Values)
	if err != nil || action == "" {
		return out, err
	}
	out.Action, out.Target = action, target
	if action == ActionSubmit {
		return out, nil
	}
	return out, runAction(flatten(sess.Widgets()), action, target)
}

func applyValue(w render.Widget, post Post, out *Outcome) error {
	id := w.ID()
	switch v := w.(type) {
	case *render.TextInput:
		if value, ok := posted(post.Values, id); ok && value != v.Value {
			return v.Change(value)
		}
	case *render.TextArea:
		if value, ok := posted(post.Values, id); ok && value != v.Value {
			return v.Change(value)
		}
	case *render.Select:
		if value, ok := posted(post.Values, id); ok && value != v.Value {
			return v.Change(value)
		}
	case *render.FileUpload:
		file := post.Files[id]
		if file == nil {
			return nil
		}
		var rejection *render.Rejection
		if err := v.Pick(file); errors.As(err, &rejection) {
			out.Rejections = append(out.Rejections, rejection)
		} else if err != nil {
			return err
		}
	}
	return nil
}

func posted(values url.Values, id string) (string, bool) {
	list, ok := values[id]
	if !ok || len(list) == 0 {
		return "", false
	}
	return strings.ReplaceAll(list[0], "\r\n", "\n"), true
}

func postedAction(values url.Values) (string, string, error) {
	action, target := "", ""
	for _, name := range []string{ActionAdd, ActionRemove, ActionClear, ActionSubmit} {
		value, ok := posted(values, name)
		if !ok {
			continue
		}
		if action != "" {
			return "", "", ErrMultipleActions
		}
		action, target = name, strings.TrimSpace(value)
	}
	return action, target, nil
}

func runAction(widgets []render.Widget, action, target string) error {
	switch action {
	case ActionAdd:
		if rep, ok := find(widgets, target).(*render.Repeater); ok {
			return rep.Add()
		}
	case ActionClear:
		if upload, ok := find(widgets, target).(*render.FileUpload); ok {
			return upload.Remove()
		}
	case ActionRemove:
		cut := strings.LastIndex(target, ".")
		if cut < 0 {
			break
		}
		index, err := strconv.Atoi(target[cut+1:])
		if err != nil {
			break
		}
		rep, ok := find(widgets, target[:cut]).(*render.Repeater)
		if !ok {
			break
		}
		for _, item := range rep.Items {
			if item.Index == index {
				return item.Remove()
			}
		}
	}
	return fmt.Errorf("%w: %s=%q", ErrUnknownTarget, action, target)
}

func find(widgets []render.Widget, id string) render.Widget {
	for _, w := range widgets {
		if w.ID() == id {
			return w
		}
	}
	return nil
}

// flatten lists every widget depth first, repeater items included.
func flatten(widgets []render.Widget) []render.Widget {
	out := make([]render.Widget, 0, len(widgets))
	for _, w := range widgets {
		out = append(out, w)
		if rep, ok := w.(*render.Repeater); ok {
			for _, item := range rep.Items {
				out = append(out, flatten(item.Fields)...)
			}
		}
	}
	return out
}
