// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package http

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"
)

// Status is one of the response lines this server knows how to send.
type Status int

const (
	StatusOK Status = iota
	StatusNotFound
)

// Code returns the numeric status code.
func (s Status) Code() int {
	switch s {
	case StatusNotFound:
		return 404
	default:
		return 200
	}
}

// Line returns the full status line without its CRLF.
func (s Status) Line() string {
	switch s {
	case StatusNotFound:
		return "HTTP/1.1 404 NOT FOUND"
	default:
		return "HTTP/1.1 200 OK"
	}
}

func (s Status) String() string {
	return s.Line()
}

var ErrResponseWritten = errors.New("http: response already written")

// Response collects the status, headers and cookies of a reply and
// serializes them, along with the body, exactly once.
type Response struct {
	w io.Writer

	status      Status
	header      Header
	cookies     []Cookie
	contentType string
	written     bool
}

// NewResponse returns a 200 OK response which will be written to w.
func NewResponse(w io.Writer) *Response {
	return &Response{
		w:           w,
		status:      StatusOK,
		contentType: ContentTypeHTML,
	}
}

func (r *Response) SetStatus(s Status) {
	r.status = s
}

func (r *Response) Status() Status {
	return r.status
}

// SetHeader sets a header which is sent ahead of Content-Type and
// Content-Length. Those two are always computed by [Response.Write].
func (r *Response) SetHeader(name, value string) {
	r.header.Set(name, value)
}

func (r *Response) Header(name string) (string, bool) {
	return r.header.Get(name)
}

func (r *Response) SetContentType(contentType string) {
	r.contentType = contentType
}

func (r *Response) ContentType() string {
	return r.contentType
}

// AddCookie queues a Set-Cookie header.
func (r *Response) AddCookie(c Cookie) {
	r.cookies = append(r.cookies, c)
}

func (r *Response) Cookies() []Cookie {
	return append([]Cookie(nil), r.cookies...)
}

// Written reports whether the response has been serialized.
func (r *Response) Written() bool {
	return r.written
}

// Write serializes the status line, headers and body. An empty
// contentType keeps the one currently set on the response.
func (r *Response) Write(contentType string, body []byte) error {
	if r.written {
		return ErrResponseWritten
	}
	r.written = true
	if contentType != "" {
		r.contentType = contentType
	}

	bw := bufio.NewWriter(r.w)
	writeLine(bw, r.status.Line())
	r.header.Each(func(name, value string) {
		if strings.EqualFold(name, "Content-Type") || strings.EqualFold(name, "Content-Length") {
			return
		}
		writeLine(bw, name+": "+value)
	})
	writeLine(bw, "Content-Type: "+r.contentType)
	writeLine(bw, "Content-Length: "+strconv.Itoa(len(body)))
	for _, c := range r.cookies {
		writeLine(bw, "Set-Cookie: "+c.String())
	}
	bw.WriteString("\r\n")
	bw.Write(body)
	return bw.Flush()
}

// bufio.Writer keeps the first error and reports it from Flush.
func writeLine(w *bufio.Writer, s string) {
	w.WriteString(s)
	w.WriteString("\r\n")
}
