package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/disburse/app"
	"github.com/kilianp07/disburse/config"
	"github.com/kilianp07/disburse/core/disburse"
	"github.com/kilianp07/disburse/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "disburse",
	Short:        "Assign geolocated cases to field agents",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func newService() (*app.Service, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return app.New(cfg)
}

func closeService(svc *app.Service) {
	if err := svc.Close(); err != nil {
		logger.New("main").Errorf("service close: %v", err)
	}
}

// readRequest decodes a batch from path, or from r when path is "-".
func readRequest(path string, r io.Reader) (disburse.Request, error) {
	var req disburse.Request
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return req, err
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return req, fmt.Errorf("decode request: %w", err)
	}
	return req, nil
}
