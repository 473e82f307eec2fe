package http

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/sp3dr4/tern/config"
	"github.com/sp3dr4/tern/internal/server"
)

// ServerParams holds the parameters needed for HTTP server lifecycle management
type ServerParams struct {
	fx.In

	Server server.Server
	Config *config.Config
	Logger *slog.Logger
}

// RegisterHTTPServerHooks starts the listener with the app and drains it on shutdown.
func RegisterHTTPServerHooks(lc fx.Lifecycle, params ServerParams) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := params.Server.Start(ctx); err != nil {
				params.Logger.Error("Failed to start HTTP server", "addr", params.Server.Addr(), "error", err)
				return err
			}
			params.Logger.Info("HTTP server listening",
				"addr", params.Server.Addr(),
				"store", params.Config.Store.Type,
				"cache_enabled", params.Config.Cache.Enabled,
				"base_url", params.Config.App.BaseURL,
			)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			params.Logger.Info("Shutting down HTTP server...")
			if err := params.Server.Stop(ctx); err != nil {
				params.Logger.Error("Failed to shutdown HTTP server", "error", err)
				return err
			}
			params.Logger.Info("HTTP server shutdown completed")
			return nil
		},
	})
}
