// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
	"text/template"

	"github.com/z5labs/adam/internal/try"
)

// TemplateOption configures a [TemplateRenderer].
type TemplateOption func(*TemplateRenderer)

// TemplateFunc makes f callable from the template as name. It replaces
// any builtin function of the same name.
func TemplateFunc(name string, f any) TemplateOption {
	return func(tr *TemplateRenderer) {
		tr.funcs[name] = f
	}
}

// TemplateDelims sets the action delimiters. An empty delimiter stands
// for the default, {{ or }}.
func TemplateDelims(left, right string) TemplateOption {
	return func(tr *TemplateRenderer) {
		tr.left = left
		tr.right = right
	}
}

// TemplateRenderer is an [io.Reader] over the rendered form of a
// text/template read from another [io.Reader].
//
// Templates can call:
//
//	env "NAME"            the value of the environment variable NAME
//	default "def" VALUE   VALUE, or "def" if VALUE is empty
type TemplateRenderer struct {
	src         io.Reader
	left, right string
	funcs       template.FuncMap

	once sync.Once
	err  error
	buf  bytes.Buffer
}

// RenderTextTemplate returns a [TemplateRenderer] for the template in r.
// The template is rendered on the first call to Read.
func RenderTextTemplate(r io.Reader, opts ...TemplateOption) *TemplateRenderer {
	tr := &TemplateRenderer{
		src: r,
		funcs: template.FuncMap{
			"env":     os.Getenv,
			"default": defaultValue,
		},
	}
	for _, opt := range opts {
		opt(tr)
	}
	return tr
}

func defaultValue(def, v string) string {
	if v == "" {
		return def
	}
	return v
}

// TemplateParseError occurs when the template is not valid text/template syntax.
type TemplateParseError struct {
	Cause error
}

// Error implements the error interface.
func (e TemplateParseError) Error() string {
	return fmt.Sprintf("config: failed to parse template: %s", e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e TemplateParseError) Unwrap() error {
	return e.Cause
}

// TemplateExecError occurs when rendering fails, usually because a
// template function returned an error or panicked.
type TemplateExecError struct {
	Cause error
}

// Error implements the error interface.
func (e TemplateExecError) Error() string {
	return fmt.Sprintf("config: failed to render template: %s", e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e TemplateExecError) Unwrap() error {
	return e.Cause
}

// Read implements the [io.Reader] interface.
func (tr *TemplateRenderer) Read(b []byte) (int, error) {
	tr.once.Do(func() {
		tr.err = tr.render()
	})
	if tr.err != nil {
		return 0, tr.err
	}
	return tr.buf.Read(b)
}

func (tr *TemplateRenderer) render() (err error) {
	defer try.Close(&err, tr.src)

	raw, err := io.ReadAll(tr.src)
	if err != nil {
		return err
	}

	tmpl, err := template.New("config").
		Delims(tr.left, tr.right).
		Funcs(tr.funcs).
		Parse(string(raw))
	if err != nil {
		return TemplateParseError{Cause: err}
	}

	err = tmpl.Execute(&tr.buf, nil)
	if err != nil {
		return TemplateExecError{Cause: err}
	}
	return nil
}
