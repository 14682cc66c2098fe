// Package export writes batch reports in the formats the CLI offers.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/kilianp07/disburse/core/disburse"
)

// Formats lists the accepted Write formats.
var Formats = []string{"json", "csv"}

// Write encodes rep to w in the given format.
func Write(w io.Writer, format string, rep disburse.Report) error {
	switch format {
	case "", "json":
		return WriteJSON(w, rep)
	case "csv":
		return WriteCSV(w, rep)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, rep disburse.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// WriteCSV writes one row per case: assigned cases first, grouped by user
// in id order, then the unassigned ones with an empty user_id.
func WriteCSV(w io.Writer, rep disburse.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"run_id", "user_id", "case_id", "assigned"}); err != nil {
		return err
	}
	agents := make([]string, 0, len(rep.Assignments))
	for id := range rep.Assignments {
		agents = append(agents, id)
	}
	sort.Strings(agents)
	for _, agent := range agents {
		for _, c := range rep.Assignments[agent] {
			if err := cw.Write([]string{rep.RunID, agent, c, strconv.FormatBool(true)}); err != nil {
				return err
			}
		}
	}
	for _, o := range rep.Unassigned {
		if err := cw.Write([]string{rep.RunID, "", o.ID, strconv.FormatBool(false)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
