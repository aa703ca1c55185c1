// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package example is a small controller showing each kind of handler argument.
package example

import (
	"context"

	"github.com/z5labs/adam/http"
	"github.com/z5labs/adam/route"
)

// Author is included in every hello response.
const Author = "caichongjian"

// User is decoded from the body of /example/json.
type User struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

// Routes returns the example routes under /example.
func Routes() route.Routes {
	return route.Group(
		"/example",
		route.Route{
			Path: "/hello",
			Params: []route.Param{
				route.Scalar("id", route.Int),
				route.Scalar("name", route.String),
			},
			Handler: route.HandlerFunc(hello),
		},
		route.Route{
			Path:    "/hi",
			Params:  []route.Param{route.Request()},
			Handler: route.HandlerFunc(hi),
		},
		route.Route{
			Path:    "/parameter/array",
			Params:  []route.Param{route.Array("ids", route.Long)},
			Handler: route.HandlerFunc(arrayParameter),
		},
		route.Route{
			Path:    "/json",
			Params:  []route.Param{route.Body[User]("user")},
			Handler: route.HandlerFunc(echoUser),
		},
		route.Route{
			Path:    "/cookie",
			Params:  []route.Param{route.Response()},
			Handler: route.HandlerFunc(setCookies),
		},
	)
}

func hello(_ context.Context, args route.Args) (any, error) {
	return map[string]any{
		"id":     route.Get[int32](args, 0),
		"name":   route.Get[string](args, 1),
		"author": Author,
	}, nil
}

func hi(_ context.Context, args route.Args) (any, error) {
	req := route.Get[*http.Request](args, 0)
	return req.ParameterMap(), nil
}

func arrayParameter(_ context.Context, args route.Args) (any, error) {
	return map[string]any{
		"ids": route.Get[[]int64](args, 0),
	}, nil
}

func echoUser(_ context.Context, args route.Args) (any, error) {
	return []*User{route.Get[*User](args, 0)}, nil
}

func setCookies(_ context.Context, args route.Args) (any, error) {
	resp := route.Get[*http.Response](args, 0)
	resp.AddCookie(http.Cookie{Name: "a_my_name", Value: "ccj", Path: "/"})
	resp.AddCookie(http.Cookie{Name: "a_my_age", Value: "28"})
	resp.AddCookie(http.Cookie{
		Name:     "a_qwertyuiop",
		Value:    "asdfghjklzxcvbnm",
		Path:     "/",
		Domain:   "localhost",
		MaxAge:   1800,
		Secure:   true,
		HttpOnly: true,
	})
	return map[string]bool{"success": true}, nil
}
