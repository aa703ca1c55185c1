// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package static serves files for requests which match no route.
package static

import (
	"errors"
	"io/fs"
	"mime"
	"path"
	"strings"
)

// ErrNotFound is returned by a [Provider] when no resource exists for a path.
var ErrNotFound = errors.New("static: resource not found")

// DefaultContentType is used for resources without a known extension.
const DefaultContentType = "text/html"

// Provider returns the bytes of the resource at path.
type Provider interface {
	Fetch(path string) ([]byte, error)
}

// ProviderFunc is an adapter to allow the use of ordinary functions as [Provider]s.
type ProviderFunc func(string) ([]byte, error)

// Fetch implements the [Provider] interface.
func (f ProviderFunc) Fetch(path string) ([]byte, error) {
	return f(path)
}

// FS is a [Provider] backed by a file system.
type FS struct {
	fsys fs.FS
}

// NewFS returns a [Provider] which reads resources from fsys.
func NewFS(fsys fs.FS) *FS {
	return &FS{fsys: fsys}
}

// Fetch implements the [Provider] interface. A blank or "/" path
// fetches "/index.html".
func (s *FS) Fetch(p string) ([]byte, error) {
	name := strings.TrimPrefix(Normalize(p), "/")
	if !fs.ValidPath(name) {
		return nil, ErrNotFound
	}
	b, err := fs.ReadFile(s.fsys, name)
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Normalize maps a blank or root path to "/index.html".
func Normalize(p string) string {
	if p == "" || p == "/" {
		return "/index.html"
	}
	return p
}

// ContentType guesses the media type of the resource at p from its
// extension.
func ContentType(p string) string {
	ext := path.Ext(Normalize(p))
	if ext == "" {
		return DefaultContentType
	}
	ct := mime.TypeByExtension(ext)
	if ct == "" {
		return DefaultContentType
	}
	return ct
}
