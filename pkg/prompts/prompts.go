// Package prompts renders prompt templates with text/template and sprig functions.
package prompts

import (
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/cockroachdb/errors"
)

// Template is a parsed prompt template.
// Missing values are reported as errors.
type Template struct {
	tmpl *template.Template
}

// New parses the template text
func New(name, text string) (*Template, error) {
	tmpl, err := template.New(name).
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s template", name)
	}
	return &Template{tmpl: tmpl}, nil
}

// Must is like New but panics on error
func Must(name, text string) *Template {
	t, err := New(name, text)
	if err != nil {
		panic(err)
	}
	return t
}

// Format renders the template
func (t *Template) Format(values map[string]any) (string, error) {
	var b strings.Builder
	if err := t.tmpl.Execute(&b, values); err != nil {
		return "", errors.Wrapf(err, "failed to render %s template", t.tmpl.Name())
	}
	return b.String(), nil
}

// ChatTemplate is a pair of system and user templates
type ChatTemplate struct {
	System *Template
	User   *Template
}

// NewChatTemplate parses the system and user template texts
func NewChatTemplate(name, system, user string) (*ChatTemplate, error) {
	s, err := New(name+".system", system)
	if err != nil {
		return nil, err
	}
	u, err := New(name+".user", user)
	if err != nil {
		return nil, err
	}
	return &ChatTemplate{System: s, User: u}, nil
}

// Format renders both templates with the same values
func (c *ChatTemplate) Format(values map[string]any) (system string, user string, err error) {
	system, err = c.System.Format(values)
	if err != nil {
		return "", "", err
	}
	user, err = c.User.Format(values)
	if err != nil {
		return "", "", err
	}
	return strings.TrimSpace(system), strings.TrimSpace(user), nil
}
