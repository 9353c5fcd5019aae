package main

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/memohai/websearch-mcp/internal/config"
	"github.com/memohai/websearch-mcp/internal/handlers"
	"github.com/memohai/websearch-mcp/internal/healthcheck"
	searchchecker "github.com/memohai/websearch-mcp/internal/healthcheck/checkers/search"
	strategychecker "github.com/memohai/websearch-mcp/internal/healthcheck/checkers/strategies"
	toolschecker "github.com/memohai/websearch-mcp/internal/healthcheck/checkers/tools"
	"github.com/memohai/websearch-mcp/internal/logger"
	"github.com/memohai/websearch-mcp/internal/mcp"
	mcpstrategy "github.com/memohai/websearch-mcp/internal/mcp/providers/strategy"
	mcpweb "github.com/memohai/websearch-mcp/internal/mcp/providers/web"
	"github.com/memohai/websearch-mcp/internal/searchproviders"
	"github.com/memohai/websearch-mcp/internal/server"
	"github.com/memohai/websearch-mcp/internal/strategies"
	"github.com/memohai/websearch-mcp/internal/version"
)

func runServe(cfg config.Config) error {
	app := fx.New(appOptions(cfg))
	if err := app.Err(); err != nil {
		return err
	}
	app.Run()
	return nil
}

func appOptions(cfg config.Config) fx.Option {
	return fx.Options(
		fx.Supply(cfg),
		fx.Provide(
			provideLogger,
			provideSearchService,
			provideStrategyStore,
			strategies.NewService,
			provideToolGatewayService,
		),
		transportOption(cfg.Server.Transport),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	)
}

func transportOption(transport string) fx.Option {
	if transport == config.TransportHTTP {
		return fx.Options(
			fx.Provide(
				provideServerHandler(handlers.NewPingHandler),
				provideServerHandler(handlers.NewMCPHandler),
				provideServerHandler(handlers.NewHealthHandler),
				provideHealthRunner,
				provideServer,
			),
			fx.Invoke(startServer),
		)
	}
	return fx.Invoke(startStdio)
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideSearchService(log *slog.Logger, cfg config.Config) *searchproviders.Service {
	return searchproviders.NewService(log, cfg.Search)
}

func provideStrategyStore(log *slog.Logger, cfg config.Config) (strategies.Store, error) {
	path, err := cfg.Strategies.StrategiesPath()
	if err != nil {
		return nil, fmt.Errorf("strategies path: %w", err)
	}
	if path == "" {
		log.Info("using bundled strategy document")
	} else {
		log.Info("using strategy document on disk", slog.String("path", path))
	}
	return strategies.NewStore(path), nil
}

func provideToolGatewayService(log *slog.Logger, searchService *searchproviders.Service, strategyService *strategies.Service) *mcp.ToolGatewayService {
	webExec := mcpweb.NewExecutor(log, searchService)
	strategyExec := mcpstrategy.NewExecutor(log, strategyService)
	return mcp.NewToolGatewayService(log, []mcp.ToolExecutor{webExec, strategyExec})
}

func provideHealthRunner(log *slog.Logger, gateway *mcp.ToolGatewayService, searchService *searchproviders.Service, store strategies.Store) *healthcheck.Runner {
	return healthcheck.NewRunner(
		toolschecker.NewChecker(log, gateway, mcpweb.ToolName, mcpstrategy.ToolName),
		searchchecker.NewChecker(searchService),
		strategychecker.NewChecker(log, store),
	)
}

type serverParams struct {
	fx.In

	Logger         *slog.Logger
	Config         config.Config
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, params.Config.Server.Addr, params.ServerHandlers...)
}

func startServer(lc fx.Lifecycle, logger *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("starting MCP server",
				slog.String("version", version.GetInfo()),
				slog.String("transport", config.TransportHTTP),
				slog.String("addr", srv.Addr()),
			)
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}

// startStdio serves on stdin/stdout. stdout carries protocol frames only, so
// everything else goes through the logger on stderr.
func startStdio(lc fx.Lifecycle, logger *slog.Logger, gateway *mcp.ToolGatewayService, shutdowner fx.Shutdowner) {
	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("starting MCP server",
				slog.String("version", version.GetInfo()),
				slog.String("transport", config.TransportStdio),
			)
			go func() {
				defer close(done)
				if err := mcp.RunStdio(runCtx, gateway); err != nil && runCtx.Err() == nil {
					logger.Error("stdio session ended", slog.Any("error", err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
					return
				}
				logger.Info("stdio session closed")
				_ = shutdowner.Shutdown()
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-ctx.Done():
			}
			return nil
		},
	})
}
