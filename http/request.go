// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package http

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	ContentTypeForm = "application/x-www-form-urlencoded"
	ContentTypeJSON = "application/json"
	ContentTypeHTML = "text/html"
)

var (
	ErrMalformedRequestLine = errors.New("http: malformed request line")
	ErrMalformedHeader      = errors.New("http: malformed header line")
)

// HeaderLineError reports the header line which could not be parsed.
type HeaderLineError struct {
	Line string
}

// Error implements the error interface.
func (e HeaderLineError) Error() string {
	return fmt.Sprintf("http: malformed header line: %q", e.Line)
}

// Is reports whether target is ErrMalformedHeader.
func (e HeaderLineError) Is(target error) bool {
	return target == ErrMalformedHeader
}

// Request is a parsed HTTP/1.1 request.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Proto    string

	header  Header
	params  Params
	cookies []Cookie

	contentLength int
	body          []byte
	bodyRead      bool
	framer        *Framer
}

// ReadRequest reads and parses the next request from f. An aborted
// stream yields an empty request and no error, see [Request.Empty].
//
// Form and JSON bodies with a positive Content-Length are read
// eagerly. Form bodies are merged into the parameters after those
// taken from the query string.
func ReadRequest(f *Framer) (*Request, error) {
	text, _, err := f.ReadHeaderBlock()
	if err != nil {
		return nil, err
	}

	req := &Request{
		contentLength: -1,
		framer:        f,
	}
	if text == "" {
		return req, nil
	}

	lines := strings.Split(text, "\n")
	err = req.parseRequestLine(strings.TrimSuffix(lines[0], "\r"))
	if err != nil {
		return nil, err
	}
	for _, line := range lines[1:] {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			break
		}
		name, value, found := strings.Cut(line, ": ")
		if !found {
			return nil, HeaderLineError{Line: line}
		}
		req.header.Set(name, value)
	}

	if v, ok := req.header.Get("Cookie"); ok {
		req.cookies = parseCookies(v)
	}

	err = req.params.ParseParams(req.RawQuery)
	if err != nil {
		return nil, err
	}

	if v, ok := req.header.Get("Content-Length"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			return nil, ErrInvalidContentLength
		}
		req.contentLength = n
	}

	err = req.readEagerBody()
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *Request) parseRequestLine(line string) error {
	parts := strings.Split(line, " ")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return ErrMalformedRequestLine
	}
	r.Method = parts[0]
	r.Path, r.RawQuery, _ = strings.Cut(parts[1], "?")
	if len(parts) > 2 {
		r.Proto = parts[2]
	}
	return nil
}

func (r *Request) readEagerBody() error {
	if r.contentLength <= 0 {
		return nil
	}
	isForm := hasMediaType(r.ContentType(), ContentTypeForm)
	if !isForm && !hasMediaType(r.ContentType(), ContentTypeJSON) {
		return nil
	}

	body, err := r.ReadBody(r.contentLength)
	if err != nil {
		return err
	}
	if !isForm {
		return nil
	}
	return r.params.ParseParams(string(body))
}

func hasMediaType(contentType, mediaType string) bool {
	return len(contentType) >= len(mediaType) && strings.EqualFold(contentType[:len(mediaType)], mediaType)
}

// Empty reports whether the stream ended before a complete header
// block was received.
func (r *Request) Empty() bool {
	return r.Method == ""
}

// Header returns the value of the named header, ignoring case.
func (r *Request) Header(name string) (string, bool) {
	return r.header.Get(name)
}

// HeaderNames returns the header names in the order they were received.
func (r *Request) HeaderNames() []string {
	return r.header.Names()
}

// Parameter returns the first value of the named query or form parameter.
func (r *Request) Parameter(name string) (string, bool) {
	return r.params.Get(name)
}

// ParameterValues returns all values of the named parameter. It is
// empty, not nil, when the parameter is absent.
func (r *Request) ParameterValues(name string) []string {
	return r.params.Values(name)
}

func (r *Request) ParameterNames() []string {
	return r.params.Names()
}

func (r *Request) ParameterMap() map[string][]string {
	return r.params.Map()
}

// Cookies returns the cookies sent with the request.
func (r *Request) Cookies() []Cookie {
	return append([]Cookie(nil), r.cookies...)
}

// Cookie returns the first cookie with the given name or [ErrNoCookie].
func (r *Request) Cookie(name string) (Cookie, error) {
	for _, c := range r.cookies {
		if c.Name == name {
			return c, nil
		}
	}
	return Cookie{}, ErrNoCookie
}

// ContentLength is the declared body length or -1 if none was sent.
func (r *Request) ContentLength() int {
	return r.contentLength
}

func (r *Request) ContentType() string {
	v, _ := r.header.Get("Content-Type")
	return v
}

// Body returns the body if it has been read.
func (r *Request) Body() []byte {
	return r.body
}

// ReadBody reads n body bytes from the connection. Bodies which were
// read eagerly are returned as is.
func (r *Request) ReadBody(n int) ([]byte, error) {
	if r.bodyRead {
		return r.body, nil
	}
	if r.framer == nil {
		return nil, ErrHeaderNotRead
	}
	body, err := r.framer.ReadBody(n)
	if err != nil {
		return nil, err
	}
	r.body = body
	r.bodyRead = true
	return body, nil
}
