// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package http runs a raw HTTP/1.1 server over a [net.Listener].
//
// A single goroutine accepts connections and hands them to a fixed
// number of workers through a bounded queue holding twice as many
// connections as there are workers. When the queue is full the
// acceptor stops accepting until a worker frees a slot.
//
// Every connection carries exactly one request. The worker reads it,
// passes it to the [ConnHandler] and closes the connection whether or
// not handling succeeded.
//
// # Shutdown
//
// The runtime drains when the context given to [Runtime.Run] is
// cancelled, when [Runtime.Drain] is called or when accepting fails.
// Draining closes the listener, lets every accepted connection finish
// and then waits up to the drain timeout for the workers to exit.
//
//	ln, err := http.Listen(8888)
//	if err != nil {
//	    return err
//	}
//	rt := http.NewRuntime(ln, dispatcher, http.Workers(8))
//	return rt.Run(ctx)
package http
