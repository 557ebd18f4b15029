// proyectos-audit revisa y repara la coherencia entre membresías y columnas legacy.
//
// Uso:
//
//	proyectos-audit check
//	proyectos-audit sync-legacy --all | --project <id>
//	proyectos-audit backfill --all | --project <id>
//	proyectos-audit migrate
package main

import (
	"context"
	"errors"
	"os"

	"github.com/jhoicas/Proyectos-api/internal/application/ports"
	"github.com/jhoicas/Proyectos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Proyectos-api/pkg/config"
	"github.com/jhoicas/Proyectos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: "proyectos-audit",
		Output:  os.Stderr,
	})

	open := func(ctx context.Context) (ports.Store, func(), error) {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewTxRunner(pool), pool.Close, nil
	}
	migrate := func(ctx context.Context) error {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return err
		}
		defer pool.Close()
		return postgres.Migrate(ctx, pool)
	}

	root := newRootCmd(open, migrate, log.Zerolog(), os.Stdout)
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errFindings) {
			log.Error().Err(err).Msg("proyectos-audit")
		}
		os.Exit(1)
	}
}
