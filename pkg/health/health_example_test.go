// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package health

import (
	"context"
	"fmt"
)

func ExampleBinary() {
	var b Binary
	fmt.Println(b.Healthy(context.Background()))

	b.MarkHealthy()
	fmt.Println(b.Healthy(context.Background()))
	// Output: false
	// true
}

func ExampleAnd() {
	var a Binary
	a.MarkHealthy()
	var b Binary

	ab := And(&a, &b)
	fmt.Println(ab.Healthy(context.Background()))
	// Output: false
}
