package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/wheelsched/config"
	"github.com/kilianp07/wheelsched/core/report"
	"github.com/kilianp07/wheelsched/infra/dataset"
)

var reportJSON bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show order lateness and machine utilisation",
	RunE:  runReport,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that no machine runs two operations at once",
	RunE:  runCheck,
}

func init() {
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(reportCmd, checkCmd)
}

func loadDataset() (*config.Config, *time.Location, *dataset.Loader, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	loc, err := cfg.Schedule.Location()
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, loc, dataset.NewLoader(loc), nil
}

func runReport(cmd *cobra.Command, _ []string) error {
	cfg, loc, loader, err := loadDataset()
	if err != nil {
		return err
	}
	orders, tl, err := loader.Load(cfg.Schedule.OrdersPath, cfg.Schedule.SchedulePath)
	if err != nil {
		return err
	}
	r := report.Build(tl, orders)
	if reportJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	return printReport(cmd.OutOrStdout(), r, loc)
}

func printReport(w io.Writer, r report.Report, loc *time.Location) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tCOMPLETION\tDUE\tLATENESS (h)")
	for _, o := range r.Orders {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\n", o.OrderID,
			o.Completion.In(loc).Format(displayLayout), o.DueDate.In(loc).Format(displayLayout), o.LatenessHours)
	}
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "late orders\t%d/%d\n", r.LateCount, len(r.Orders))
	fmt.Fprintf(tw, "lateness mean\t%.2f h\n", r.MeanLateness)
	fmt.Fprintf(tw, "lateness stddev\t%.2f h\n", r.StdDevLateness)
	fmt.Fprintf(tw, "lateness max\t%.2f h\n", r.MaxLateness)
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "MACHINE\tOPS\tBUSY (h)\tUTILISATION")
	for _, m := range r.Machines {
		fmt.Fprintf(tw, "%s\t%d\t%.1f\t%.0f%%\n", m.Machine, m.Operations, m.BusyHours, m.Utilisation*100)
	}
	return tw.Flush()
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, loc, loader, err := loadDataset()
	if err != nil {
		return err
	}
	_, tl, err := loader.Load(cfg.Schedule.OrdersPath, cfg.Schedule.SchedulePath)
	if err != nil {
		return err
	}
	conflicts := tl.Overlaps()
	w := cmd.OutOrStdout()
	for _, c := range conflicts {
		fmt.Fprintf(w, "%s: %s seq %d [%s, %s) overlaps %s seq %d [%s, %s)\n", c.Machine,
			c.First.OrderID, c.First.Sequence, c.First.Start.In(loc).Format(displayLayout), c.First.End.In(loc).Format(displayLayout),
			c.Second.OrderID, c.Second.Sequence, c.Second.Start.In(loc).Format(displayLayout), c.Second.End.In(loc).Format(displayLayout))
	}
	if len(conflicts) > 0 {
		return fmt.Errorf("%d overlapping operation pairs", len(conflicts))
	}
	fmt.Fprintf(w, "%d operations on %d machines, no overlaps\n", tl.Len(), len(tl.Machines()))
	return nil
}
