// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

const (
	// DefaultChunkSize is the number of bytes requested from the
	// connection per read while looking for the end of the header block.
	DefaultChunkSize = 128

	// DefaultMaxHeaderBytes bounds the size of a header block.
	DefaultMaxHeaderBytes = 1 << 20
)

var headerTerminator = []byte("\r\n\r\n")

var (
	ErrHeaderAlreadyRead    = errors.New("http: header block already read")
	ErrHeaderNotRead        = errors.New("http: header block must be read before the body")
	ErrBodyAlreadyRead      = errors.New("http: body already read")
	ErrHeaderTooLarge       = errors.New("http: header block too large")
	ErrInvalidContentLength = errors.New("http: invalid content length")
	ErrShortBody            = errors.New("http: body shorter than content length")
)

// ShortBodyError occurs when the connection ends before the declared
// Content-Length worth of body bytes could be read.
type ShortBodyError struct {
	Want  int
	Got   int
	Cause error
}

// Error implements the error interface.
func (e ShortBodyError) Error() string {
	return fmt.Sprintf("http: body ended after %d of %d bytes: %s", e.Got, e.Want, e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e ShortBodyError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrShortBody.
func (e ShortBodyError) Is(target error) bool {
	return target == ErrShortBody
}

// FramerOption configures a Framer.
type FramerOption func(*Framer)

// ChunkSize sets how many bytes are requested per read while
// searching for the header terminator.
func ChunkSize(n int) FramerOption {
	return func(f *Framer) {
		if n <= 0 {
			return
		}
		f.chunkSize = n
	}
}

// MaxHeaderBytes bounds the number of bytes read while searching
// for the header terminator.
func MaxHeaderBytes(n int) FramerOption {
	return func(f *Framer) {
		if n <= 0 {
			return
		}
		f.maxHeaderBytes = n
	}
}

// Framer splits a request byte stream into its header block and body.
// Bytes read past the header terminator are kept and handed back as
// the start of the body.
type Framer struct {
	r              io.Reader
	chunkSize      int
	maxHeaderBytes int

	headerRead bool
	bodyRead   bool
	overflow   []byte
}

// NewFramer returns a Framer reading from r.
func NewFramer(r io.Reader, opts ...FramerOption) *Framer {
	f := &Framer{
		r:              r,
		chunkSize:      DefaultChunkSize,
		maxHeaderBytes: DefaultMaxHeaderBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ReadHeaderBlock reads until the first CRLF CRLF and returns the text
// before it along with any bytes already read after it. If the stream
// ends before the terminator is seen an empty block and no error are
// returned.
func (f *Framer) ReadHeaderBlock() (string, []byte, error) {
	if f.headerRead {
		return "", nil, ErrHeaderAlreadyRead
	}
	f.headerRead = true

	buf := make([]byte, 0, f.chunkSize)
	chunk := make([]byte, f.chunkSize)
	for {
		n, err := f.r.Read(chunk)
		if n > 0 {
			// only the tail of the previous data plus the new chunk can
			// contain a terminator that was not already found.
			from := max(len(buf)-len(headerTerminator)+1, 0)
			buf = append(buf, chunk[:n]...)

			if i := bytes.Index(buf[from:], headerTerminator); i >= 0 {
				end := from + i
				f.overflow = bytes.Clone(buf[end+len(headerTerminator):])
				return string(buf[:end]), f.overflow, nil
			}
			if len(buf) > f.maxHeaderBytes {
				return "", nil, ErrHeaderTooLarge
			}
		}
		if errors.Is(err, io.EOF) {
			return "", nil, nil
		}
		if err != nil {
			return "", nil, err
		}
	}
}

// Overflow returns the body bytes that were read along with the header block.
func (f *Framer) Overflow() []byte {
	return f.overflow
}

// ReadBody returns exactly n body bytes. Overflow bytes are used
// first and only the remainder is read from the underlying reader.
func (f *Framer) ReadBody(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrInvalidContentLength
	}
	if !f.headerRead {
		return nil, ErrHeaderNotRead
	}
	if f.bodyRead {
		return nil, ErrBodyAlreadyRead
	}
	f.bodyRead = true

	buffered := min(n, len(f.overflow))
	body := make([]byte, n)
	copy(body, f.overflow[:buffered])
	f.overflow = nil

	if buffered == n {
		return body, nil
	}

	read, err := io.ReadFull(f.r, body[buffered:])
	if err != nil {
		return nil, ShortBodyError{
			Want:  n,
			Got:   buffered + read,
			Cause: err,
		}
	}
	return body, nil
}
