// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package appbuilder

import (
	"context"
	"errors"

	"github.com/z5labs/adam"
	"github.com/z5labs/adam/app"
	"github.com/z5labs/adam/lifecycle"
	"github.com/z5labs/adam/pkg/otelconfig"
)

// OTelConfigurer is implemented by configs which choose how telemetry
// is exported.
type OTelConfigurer interface {
	OTelInitializer() (otelconfig.Initializer, error)
}

// OTel installs the OTel providers chosen by the config before building
// the app. The providers are shut down once the app stops running, or
// right away if building fails.
func OTel[T OTelConfigurer](builder adam.AppBuilder[T]) adam.AppBuilder[T] {
	return adam.AppBuilderFunc[T](func(ctx context.Context, cfg T) (adam.App, error) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		initializer, err := cfg.OTelInitializer()
		if err != nil {
			return nil, err
		}

		providers, err := otelconfig.Install(ctx, initializer)
		if err != nil {
			return nil, err
		}
		shutdown := lifecycle.HookFunc(providers.Shutdown)

		base, err := builder.Build(ctx, cfg)
		if err != nil {
			return nil, errors.Join(err, shutdown.Run(context.WithoutCancel(ctx)))
		}

		lc, ok := lifecycle.FromContext(ctx)
		if !ok {
			return app.PostRun(base, shutdown), nil
		}
		lc.OnPostRun(shutdown)
		return base, nil
	})
}
