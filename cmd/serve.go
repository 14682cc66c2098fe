package cmd

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

	"github.com/kilianp07/disburse/api/jobs"
	"github.com/kilianp07/disburse/api/runs"
	"github.com/kilianp07/disburse/app"
	"github.com/kilianp07/disburse/config"
	"github.com/kilianp07/disburse/infra/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Accept batches over HTTP and expose the run log",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer closeService(svc)

	log := logger.New("api")
	jh := jobs.NewHandler(ctx, svc, cfg.API.Token, log)
	mux := http.NewServeMux()
	jh.Register(mux)
	mux.Handle("/api/runs", runs.NewHandler(svc.RunLog(), cfg.API.Token))

	srv := &http.Server{Addr: cfg.API.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Infof("listening on %s", cfg.API.Addr)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnf("shutdown: %v", err)
	}
	jh.Wait()
	return nil
}
