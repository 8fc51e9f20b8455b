package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/eleven-am/asr-stream/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
)

func NewLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func NewEchoServer() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	return e
}

func RegisterRoutes(e *echo.Echo, handler *server.Handler) {
	handler.RegisterRoutes(e)
}

func StartServer(lc fx.Lifecycle, e *echo.Echo, cfg *Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := e.Start(cfg.ServerAddr); err != nil && err != http.ErrServerClosed {
					e.Logger.Fatal(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}

var ServerModule = fx.Options(
	fx.Provide(
		NewLogger,
		NewEchoServer,
		server.NewHandler,
	),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(StartServer),
)

// Run starts the stub recognition server and blocks until shutdown.
func Run() {
	fx.New(
		fx.Provide(LoadConfig),
		ServerModule,
	).Run()
}
