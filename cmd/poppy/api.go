package main

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectoinject"
	"github.com/spf13/cobra"

	"github.com/Ramsey-B/poppy/internal/handlers"
	catalogrepo "github.com/Ramsey-B/poppy/internal/repositories/catalog"
	"github.com/Ramsey-B/poppy/internal/services/catalog"
	"github.com/Ramsey-B/poppy/internal/services/textsql"
	"github.com/Ramsey-B/poppy/pkg/database"
	"github.com/Ramsey-B/poppy/pkg/health"
	"github.com/Ramsey-B/poppy/pkg/llm"
	"github.com/Ramsey-B/poppy/pkg/schema"
	"github.com/Ramsey-B/poppy/pkg/sqlexec"
	"github.com/Ramsey-B/poppy/pkg/startup"
)

func apiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "api",
		Short: "Run the backend API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			rt, err := newRuntime(ctx, cmd, "")
			if err != nil {
				return err
			}
			defer rt.Close()

			cfg, logger := rt.cfg, rt.logger

			db, err := database.Open(cfg.Database(), logger)
			if err != nil {
				return err
			}

			ctx, err = rt.provide(ctx, db)
			if err != nil {
				_ = db.Close()
				return err
			}

			registrars, checker, err := apiComponents(ctx)
			if err != nil {
				_ = db.Close()
				return err
			}
			e := handlers.NewRouter(rt.routerConfig(), logger, registrars...)

			server := startup.NewServerDependency("http-server", e, fmt.Sprintf(":%d", cfg.Port), logger, "database").
				OnStarted(func() { checker.SetReady(true) })

			s := startup.NewStartup(logger, cfg.StartupMaxAttempts)
			s.AddDependency(startup.NewDatabaseDependency(db))
			s.AddDependency(server)

			return serve(ctx, s, server, logger)
		},
	}
}

// apiComponents builds the route registrars of the backend from the
// command's container.
func apiComponents(ctx context.Context) ([]handlers.RouteRegistrar, *health.Checker, error) {
	ctx, cfg, logger, err := shared(ctx)
	if err != nil {
		return nil, nil, err
	}

	_, db, err := ectoinject.GetContext[database.DB](ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve database: %w", err)
	}

	reader := schema.NewReader(db, logger)
	executor := sqlexec.NewExecutor(db, logger)
	llmClient := llm.NewClient(cfg.LLM(), reader, logger)
	checker := health.NewChecker(db, llmClient, version, logger)

	registrars := []handlers.RouteRegistrar{
		handlers.NewCatalogHandler(catalog.NewService(catalogrepo.NewRepository(db, logger), logger)),
		handlers.NewSearchHandler(executor, textsql.NewService(llmClient, executor, logger), reader, logger),
		checker,
	}
	if cfg.AdminEnabled {
		registrars = append(registrars, handlers.NewAdminHandler(reader))
	}

	return registrars, checker, nil
}
