// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/z5labs/adam/internal/try"

	"gopkg.in/yaml.v3"
)

// DecodeError occurs when a source's contents are not valid in its format.
type DecodeError struct {
	Format string
	Cause  error
}

// Error implements the error interface.
func (e DecodeError) Error() string {
	return fmt.Sprintf("config: invalid %s: %s", e.Format, e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e DecodeError) Unwrap() error {
	return e.Cause
}

type unmarshalFunc func([]byte, any) error

// Document is a [Source] read from an encoded document. The reader is
// closed after it is applied if it implements [io.Closer].
type Document struct {
	format    string
	r         io.Reader
	unmarshal unmarshalFunc
}

// FromYaml returns a [Source] which parses YAML from r.
func FromYaml(r io.Reader) Document {
	return Document{format: "yaml", r: r, unmarshal: yaml.Unmarshal}
}

// FromJson returns a [Source] which parses JSON from r.
func FromJson(r io.Reader) Document {
	return Document{format: "json", r: r, unmarshal: json.Unmarshal}
}

// Apply implements the [Source] interface.
func (d Document) Apply(store Store) (err error) {
	defer try.Close(&err, d.r)

	b, err := io.ReadAll(d.r)
	if err != nil {
		return err
	}

	m := make(map[string]any)
	err = d.unmarshal(b, &m)
	if err != nil {
		return DecodeError{Format: d.format, Cause: err}
	}
	return Map(m).Apply(store)
}
