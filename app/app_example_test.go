// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package app

import (
	"context"
	"fmt"

	"github.com/z5labs/adam"
	"github.com/z5labs/adam/lifecycle"
)

func ExampleRecover() {
	a := adam.AppFunc(func(ctx context.Context) error {
		panic("hello world")
	})

	err := Recover(a).Run(context.Background())

	fmt.Println(err)
	// Output: recovered from panic: hello world
}

func ExamplePostRun() {
	a := adam.AppFunc(func(ctx context.Context) error {
		fmt.Println("serving")
		return nil
	})

	flush := lifecycle.HookFunc(func(ctx context.Context) error {
		fmt.Println("flushed")
		return nil
	})

	err := PostRun(a, flush).Run(context.Background())
	if err != nil {
		fmt.Println(err)
		return
	}
	// Output: serving
	// flushed
}
