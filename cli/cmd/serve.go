package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sflowg/campaignmonitor/runtime"
	"github.com/spf13/cobra"
)

var (
	serveAddr      string
	workflowsDir   string
	shutdownPeriod time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the node over HTTP",
	Long: `Serve starts the HTTP surface: node execution, option lists and the
stored workflows of the configured directory.

Example:
  sflowg-cm serve --addr :8080 --workflows ./workflows
`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().StringVar(&workflowsDir, "workflows", "", "stored workflows directory (overrides server.workflows)")
	serveCmd.Flags().DurationVar(&shutdownPeriod, "shutdown-timeout", 10*time.Second, "grace period for in-flight requests")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := hostConfig.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	dir := hostConfig.Server.Workflows
	if workflowsDir != "" {
		dir = workflowsDir
	}

	h, err := newHost(ctx, logger, hostConfig)
	if err != nil {
		return err
	}
	defer func() {
		if err := h.Close(context.Background()); err != nil {
			logger.Error("Node shutdown failed", "error", err)
		}
	}()

	app, err := runtime.NewApp(h.container, dir, runtime.NewYAMLLoader())
	if err != nil {
		return fmt.Errorf("error initializing app: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	g := gin.New()
	g.Use(gin.Recovery())
	runtime.NewHttpHandler(app, h.executor, g)

	server := &http.Server{
		Addr:              addr,
		Handler:           g,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", addr, "workflows", len(app.Workflows))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error running server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownPeriod)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
