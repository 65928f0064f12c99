// Package views renders a portal.ViewModel as an HTML page.
package views

import (
	"bytes"
	"html/template"
	"io"
	"io/fs"
	"math"
	"path"
	"time"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/tusthegr8/campus-companion/core/board"
	"github.com/tusthegr8/campus-companion/core/portal"
)

const layoutName = "layout"

// Page is what the layout template executes with.
type Page struct {
	portal.ViewModel
	CSRFToken string
}

type (
	// list feeds a collection template: Page gives access to the CSRF token & the current user.
	list struct {
		Items interface{}
		Page  Page
	}

	delAction struct {
		List string
		ID   int64
		Page Page
	}

	field struct {
		ID, Label, Type, Name string
		Value, Error          string
	}
)

func listOf(items interface{}, page Page) list { return list{Items: items, Page: page} }

func deleteAction(l string, id int64, page Page) delAction {
	return delAction{List: l, ID: id, Page: page}
}

func inputField(id, label, typ, name string, form portal.FormView) field {
	return field{ID: id, Label: label, Type: typ, Name: name, Value: form.Value(name), Error: form.Error(name)}
}

func selectField(id string, form portal.FormView) field {
	return inputField(id, "User type", "", portal.FieldUserType, form)
}

// Renderer is a pure projection: the same Page always renders the same output.
type Renderer struct {
	tmpl *template.Template
	md   goldmark.Markdown
}

// NewRenderer parses every `*.gohtml` template under `dir` in `fsys`.
func NewRenderer(fsys fs.FS, dir string) (*Renderer, error) {
	r := &Renderer{
		// raw HTML is escaped: WithUnsafe is not set
		md: goldmark.New(
			goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
			goldmark.WithRendererOptions(goldmarkhtml.WithHardWraps()),
		),
	}

	tmpl, err := template.New(layoutName).Funcs(r.funcs()).ParseFS(fsys, path.Join(dir, "*.gohtml"))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s templates", dir)
	}
	if tmpl.Lookup(layoutName) == nil {
		return nil, errors.Errorf("%s: missing %q template", dir, layoutName)
	}
	r.tmpl = tmpl.Option("missingkey=error")
	return r, nil
}

// Render writes the page to `w`. Nothing is written when rendering fails.
func (r *Renderer) Render(w io.Writer, page Page) error {
	var buff bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buff, layoutName, page); err != nil {
		return errors.Wrapf(err, "rendering %s", page.Section)
	}
	_, err := buff.WriteTo(w)
	return err
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"markdown":      r.markdown,
		"seconds":       seconds,
		"priorityClass": priorityClass,
		"priorities":    func() []board.Priority { return board.Priorities },
		"listOf":        listOf,
		"deleteAction":  deleteAction,
		"inputField":    inputField,
		"selectField":   selectField,
	}
}

func (r *Renderer) markdown(src string) template.HTML {
	var buff bytes.Buffer
	if err := r.md.Convert([]byte(src), &buff); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buff.String())
}

// seconds rounds `d` up to whole seconds, for meta refresh.
func seconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}

func priorityClass(p board.Priority) string {
	switch p {
	case board.PriorityUrgent:
		return "badge badge-urgent"
	case board.PriorityImportant:
		return "badge badge-important"
	default:
		return "badge badge-normal"
	}
}
