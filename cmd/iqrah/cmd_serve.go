package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iqrahapp/iqrah-mobile-sub008/internal/config"
	"github.com/iqrahapp/iqrah-mobile-sub008/internal/graph"
	"github.com/iqrahapp/iqrah-mobile-sub008/internal/logging"
	"github.com/iqrahapp/iqrah-mobile-sub008/internal/memory"
	"github.com/iqrahapp/iqrah-mobile-sub008/internal/scheduler"
	"github.com/iqrahapp/iqrah-mobile-sub008/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	logger := logging.NewLogger(cfg.Logging.Level, os.Stderr)

	if cfg.Server.GraphPath == "" {
		return fmt.Errorf("serve requires server.graph_path (or IQRAH_GRAPH_PATH)")
	}
	g, err := graph.LoadFile(cfg.Server.GraphPath)
	if err != nil {
		return err
	}

	store, err := memory.OpenSQLite(cfg.Server.DBPath, g)
	if err != nil {
		return err
	}
	defer store.Close()

	sched := scheduler.New(g, store, cfg.Student, scheduler.WithLogger(logger))
	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.New(sched, version),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr,
			"graph_nodes", g.NodeCount(), "db", store.Path)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
