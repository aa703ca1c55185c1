// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package try

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecover(t *testing.T) {
	t.Run("will update the error ref value", func(t *testing.T) {
		t.Run("if a panic is recovered and the ref is nil", func(t *testing.T) {
			f := func() (err error) {
				defer Recover(&err)
				panic("hello world")
			}

			err := f()

			var perr PanicError
			if !assert.ErrorAs(t, err, &perr) {
				return
			}
			if !assert.Equal(t, "hello world", perr.Value) {
				return
			}
			if !assert.Nil(t, perr.Unwrap()) {
				return
			}
		})

		t.Run("if a panic is recovered and the ref is already set", func(t *testing.T) {
			funcErr := errors.New("error value")
			panicErr := errors.New("panic error")
			f := func() (err error) {
				defer Recover(&err)
				err = funcErr
				panic(panicErr)
			}

			err := f()

			if !assert.ErrorIs(t, err, funcErr) {
				return
			}
			if !assert.ErrorIs(t, err, panicErr) {
				return
			}
		})
	})

	t.Run("will not update the error ref value", func(t *testing.T) {
		t.Run("if no panic occurred", func(t *testing.T) {
			f := func() (err error) {
				defer Recover(&err)
				return nil
			}

			if !assert.Nil(t, f()) {
				return
			}
		})
	})
}

func TestCall(t *testing.T) {
	t.Run("will return the value", func(t *testing.T) {
		t.Run("if f does not panic", func(t *testing.T) {
			v, err := Call(func() (int, error) {
				return 42, nil
			})
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, 42, v) {
				return
			}
		})
	})

	t.Run("will return a PanicError", func(t *testing.T) {
		t.Run("if f panics", func(t *testing.T) {
			_, err := Call(func() (int, error) {
				var m map[string]int
				m["boom"] = 1
				return 0, nil
			})

			var perr PanicError
			if !assert.ErrorAs(t, err, &perr) {
				return
			}
		})
	})
}

type closeFunc func() error

func (f closeFunc) Close() error {
	return f()
}

func TestClose(t *testing.T) {
	t.Run("will update the error ref value", func(t *testing.T) {
		t.Run("if the close fails and the ref value is nil", func(t *testing.T) {
			closeErr := errors.New("close failed")
			c := closeFunc(func() error {
				return closeErr
			})

			f := func() (err error) {
				defer Close(&err, c)
				return nil
			}

			err := f()

			var cerr CloseError
			if !assert.ErrorAs(t, err, &cerr) {
				return
			}
			if !assert.ErrorIs(t, cerr, closeErr) {
				return
			}
		})

		t.Run("if the close fails and the ref value is non-nil", func(t *testing.T) {
			closeErr := errors.New("close failed")
			c := closeFunc(func() error {
				return closeErr
			})

			funcErr := errors.New("func error")
			f := func() (err error) {
				defer Close(&err, c)
				return funcErr
			}

			err := f()
			if !assert.ErrorIs(t, err, funcErr) {
				return
			}
			if !assert.ErrorIs(t, err, closeErr) {
				return
			}
		})
	})

	t.Run("will not change the error ref value", func(t *testing.T) {
		t.Run("if the value is not an io.Closer", func(t *testing.T) {
			funcErr := errors.New("func error")
			f := func() (err error) {
				defer Close(&err, nil)
				return funcErr
			}

			if !assert.Equal(t, funcErr, f()) {
				return
			}
		})

		t.Run("if the resource was already closed", func(t *testing.T) {
			c := closeFunc(func() error {
				return net.ErrClosed
			})

			f := func() (err error) {
				defer Close(&err, c)
				return nil
			}

			if !assert.Nil(t, f()) {
				return
			}
		})
	})
}
