package main

import (
	"io"
	"io/fs"
	"path"
	"text/template"

	"github.com/pkg/errors"

	"github.com/tusthegr8/campus-companion/core/portal"
)

// textRenderer prints a portal.ViewModel as plain text.
type textRenderer struct {
	tmpl *template.Template
}

func newTextRenderer(fsys fs.FS, dir string) (*textRenderer, error) {
	tmpl, err := template.ParseFS(fsys, path.Join(dir, "*.tmpl"))
	if err != nil {
		return nil, errors.Wrap(err, "parsing cli templates")
	}
	return &textRenderer{tmpl: tmpl.Option("missingkey=zero")}, nil
}

func (r *textRenderer) Render(w io.Writer, vm portal.ViewModel) error {
	if err := r.tmpl.ExecuteTemplate(w, "view", vm); err != nil {
		return errors.Wrap(err, "rendering view")
	}
	return nil
}
