package main

import (
	"context"
	"fmt"
	"os"

	"backend-fieldops/internal/config"
	"backend-fieldops/internal/db"
	"backend-fieldops/internal/events"
	"backend-fieldops/internal/server"

	"github.com/spf13/cobra"
)

// openServices connects to the stores and returns the domain services.
var openServices = func(ctx context.Context, cfg config.Config) (server.Services, func(), error) {
	pg, err := db.ConnectPostgres(cfg)
	if err != nil {
		return server.Services{}, nil, fmt.Errorf("connect postgres: %w", err)
	}
	rdb := db.ConnectRedis(cfg)
	svcs, err := server.BuildServices(cfg, pg, rdb, nil, events.Nop{})
	if err != nil {
		pg.Close()
		return server.Services{}, nil, err
	}
	return svcs, func() {
		pg.Close()
		if rdb != nil {
			_ = rdb.Close()
		}
	}, nil
}

var loadConfig = config.Load

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fieldctl",
		Short:         "Field operations admin tool",
		Long:          `Operational commands for the field attendance backend: range reports, distance recomputation and development tokens.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newReportCmd(), newRecomputeCmd(), newTokenCmd())
	return root
}

// Execute runs the root command
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
