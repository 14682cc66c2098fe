package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/disburse/core/geo"
	"github.com/kilianp07/disburse/core/model"
)

var partitionCmd = &cobra.Command{
	Use:   "partition",
	Short: "Show how a request would be clustered without solving it",
	RunE:  runPartition,
}

func init() {
	partitionCmd.Flags().StringVarP(&inputPath, "input", "i", "-", "request file with users and cases (- for stdin)")
	rootCmd.AddCommand(partitionCmd)
}

func runPartition(cmd *cobra.Command, args []string) error {
	req, err := readRequest(inputPath, cmd.InOrStdin())
	if err != nil {
		return err
	}
	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)

	part, err := svc.Partition(req)
	if err != nil {
		return err
	}
	precision, err := geo.ResolvePrecision(context.Background(), geo.PointCounter(model.ObjectivePoints(req.Objectives)), "location", nil)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "CLUSTER\tUSERS\tCASES")
	for _, c := range part.Clusters {
		_, _ = fmt.Fprintf(tw, "%d\t%d\t%d\n", c.ID, len(c.Agents), len(c.Objectives))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "clusters=%d without_users=%d without_cases=%d geohash_precision=%d\n",
		len(part.Clusters), part.NoAgents, part.NoObjectives, precision)
	return err
}
