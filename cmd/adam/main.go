// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Command adam serves the example routes and static resources over HTTP/1.1.
package main

import (
	"bytes"
	"context"
	_ "embed"
	"log/slog"
	"os"

	"github.com/z5labs/adam"
	"github.com/z5labs/adam/appbuilder"
	"github.com/z5labs/adam/cmd/adam/server"
	"github.com/z5labs/adam/config"
	"github.com/z5labs/adam/pkg/slogfield"

	"github.com/spf13/cobra"
)

//go:embed config.yaml
var defaultConfig []byte

func main() {
	err := buildCmd(server.Builder{}).ExecuteContext(context.Background())
	if err != nil {
		slog.Error("adam stopped", slogfield.Error(err))
		os.Exit(1)
	}
}

func buildCmd(builder adam.AppBuilder[server.Config]) *cobra.Command {
	var (
		cfgFile   string
		overrides []string
	)

	cmd := &cobra.Command{
		Use:           "adam",
		Short:         "Serve HTTP/1.1 requests with a fixed pool of workers",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			srcs := []config.Source{
				config.FromYaml(config.RenderTextTemplate(bytes.NewReader(defaultConfig))),
			}

			if cfgFile != "" {
				f, err := os.Open(cfgFile)
				if err != nil {
					return err
				}
				srcs = append(srcs, config.FromYaml(config.RenderTextTemplate(f)))
			}

			if len(overrides) > 0 {
				srcs = append(srcs, config.Overrides(overrides))
			}

			b := appbuilder.Recover(appbuilder.OTel(builder))
			return adam.Run(cmd.Context(), b, srcs...)
		},
	}

	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "yaml config file merged over the defaults")
	cmd.Flags().StringArrayVar(&overrides, "set", nil, "override a single config value, e.g. server.port=9090")
	return cmd
}
