package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/disburse/pkg/export"
)

var (
	inputPath    string
	outputPath   string
	outputFormat string
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Run one disbursement batch and print the report",
	RunE:  runSolve,
}

func init() {
	solveCmd.Flags().StringVarP(&inputPath, "input", "i", "-", "request file with users and cases (- for stdin)")
	solveCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the report to this file instead of stdout")
	solveCmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "report format: "+strings.Join(export.Formats, ", "))
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	req, err := readRequest(inputPath, cmd.InOrStdin())
	if err != nil {
		return err
	}
	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)

	rep, err := svc.Run(ctx, req)
	if err != nil {
		return err
	}
	if outputPath == "" {
		return export.Write(cmd.OutOrStdout(), outputFormat, rep)
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := export.Write(f, outputFormat, rep); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
