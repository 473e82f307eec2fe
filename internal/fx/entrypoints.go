package fx

import (
	"log/slog"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	httpFX "github.com/sp3dr4/tern/internal/fx/http"
)

// HTTPServerModules is everything the HTTP server binary needs. fx's own
// events go through the application logger.
var HTTPServerModules = fx.Options(
	CoreModules,
	httpFX.HTTPModule,
	httpFX.HTTPLifecycleModule,
	fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
		return &fxevent.SlogLogger{Logger: logger}
	}),
)
