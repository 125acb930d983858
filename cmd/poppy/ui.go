package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ramsey-B/poppy/internal/handlers"
	"github.com/Ramsey-B/poppy/pkg/frontend"
	"github.com/Ramsey-B/poppy/pkg/llm"
	"github.com/Ramsey-B/poppy/pkg/startup"
)

const modelListTimeout = 3 * time.Second

func uiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Run the web UI in front of the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			rt, err := newRuntime(ctx, cmd, "poppy-ui")
			if err != nil {
				return err
			}
			defer rt.Close()

			cfg, logger := rt.cfg, rt.logger

			ctx, err = rt.provide(ctx, nil)
			if err != nil {
				return err
			}

			h, err := uiHandler(ctx)
			if err != nil {
				return err
			}

			e := handlers.NewRouter(rt.routerConfig(), logger, h)

			server := startup.NewServerDependency("ui-server", e, fmt.Sprintf(":%d", cfg.UIPort), logger)
			s := startup.NewStartup(logger, cfg.StartupMaxAttempts)
			s.AddDependency(server)

			return serve(ctx, s, server, logger)
		},
	}
}

// uiHandler builds the frontend from the command's container.
func uiHandler(ctx context.Context) (*frontend.Handler, error) {
	_, cfg, logger, err := shared(ctx)
	if err != nil {
		return nil, err
	}

	uiCfg := cfg.Frontend()
	models := llm.NewClient(llm.Config{BaseURL: uiCfg.OllamaURL, Timeout: modelListTimeout}, nil, logger)
	return frontend.NewHandler(uiCfg, frontend.NewBackendClient(uiCfg), models, logger)
}
