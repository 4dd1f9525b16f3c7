package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iwvelando/lever-planner/internal/server"
	"github.com/iwvelando/lever-planner/pkg/constants"
)

var serveCmd = &cobra.Command{
	Use:         "serve",
	Short:       "Serve the lever API over a planning session",
	Annotations: map[string]string{skipPlanAnnotation: ""},
	RunE:        runServe,
}

func init() {
	f := serveCmd.Flags()
	f.String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	f.String("address", "", "listen address (default from server config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	serverConfigPath, _ := cmd.Flags().GetString("server-config")
	srvCfg, err := server.LoadConfig(serverConfigPath)
	if err != nil {
		return err
	}

	// The plan flag wins over the server config's plan.
	planPath := configLocation
	if !cmd.Flags().Changed("config") && srvCfg.Plan != "" {
		planPath = srvCfg.Plan
	}
	if err := loadPlan(planPath, srvCfg.Logging); err != nil {
		return err
	}

	if addr, _ := cmd.Flags().GetString("address"); addr != "" {
		srvCfg.Address = addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctrl, client, err := newSession(ctx, conf, logger)
	if err != nil {
		return err
	}

	opts := server.Options{
		MaxUploadSize: srvCfg.UploadSizeBytes(),
		Version:       version,
	}
	if client != nil {
		opts.Simulator = client
	}

	srv := &http.Server{
		Addr:    srvCfg.Address,
		Handler: server.NewHandler(logger, ctrl, opts),
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down server", zap.String("op", "main.runServe"))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), srvCfg.ShutdownTimeoutDuration())
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.String("op", "main.runServe"), zap.Error(err))
		}
	}()

	logger.Info("starting server",
		zap.String("op", "main.runServe"),
		zap.String("address", srvCfg.Address),
		zap.Int("offices", len(ctrl.Offices())),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return eris.Wrapf(err, "server listen on %s", srvCfg.Address)
	}
	return nil
}
