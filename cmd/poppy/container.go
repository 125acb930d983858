package main

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectoinject/ectocontainer"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/poppy/config"
	"github.com/Ramsey-B/poppy/pkg/database"
)

// provide registers the shared components of a command in a container of
// its own and returns a context that resolves from it. db may be nil.
func (r *runtime) provide(ctx context.Context, db database.DB) (context.Context, error) {
	containerCfg := ectoinject.DefaultContainerConfig
	containerCfg.ID = fmt.Sprintf("%s-%s", r.cfg.AppName, uuid.NewString())
	containerCfg.LoggerConfig = &ectocontainer.DIContainerLoggerConfig{Enabled: false}

	container, err := ectoinject.NewDIContainer(containerCfg)
	if err != nil {
		return ctx, fmt.Errorf("failed to create container: %w", err)
	}

	if err := ectoinject.RegisterInstance[*config.Config](container, r.cfg); err != nil {
		return ctx, err
	}
	if err := ectoinject.RegisterInstance[ectologger.Logger](container, r.logger); err != nil {
		return ctx, err
	}
	if db != nil {
		if err := ectoinject.RegisterInstance[database.DB](container, db); err != nil {
			return ctx, err
		}
	}

	return ectoinject.SetActiveContainer(ctx, containerCfg.ID)
}

// shared resolves the config and logger every component builder needs.
func shared(ctx context.Context) (context.Context, *config.Config, ectologger.Logger, error) {
	ctx, cfg, err := ectoinject.GetContext[*config.Config](ctx)
	if err != nil {
		return ctx, nil, nil, fmt.Errorf("failed to resolve config: %w", err)
	}

	ctx, logger, err := ectoinject.GetContext[ectologger.Logger](ctx)
	if err != nil {
		return ctx, nil, nil, fmt.Errorf("failed to resolve logger: %w", err)
	}

	return ctx, cfg, logger, nil
}
