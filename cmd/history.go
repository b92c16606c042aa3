package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/araddon/dateparse"
	"github.com/spf13/cobra"

	"github.com/kilianp07/wheelsched/core/cmdlog"
)

var historyOpts struct {
	since  string
	until  string
	order  string
	source string
	failed bool
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List commands recorded in the command log",
	RunE:  runHistory,
}

func init() {
	f := historyCmd.Flags()
	f.StringVar(&historyOpts.since, "since", "", "only commands at or after this time")
	f.StringVar(&historyOpts.until, "until", "", "only commands at or before this time")
	f.StringVar(&historyOpts.order, "order", "", "only commands naming this order")
	f.StringVar(&historyOpts.source, "source", "", "only commands extracted by this strategy (model or pattern)")
	f.BoolVar(&historyOpts.failed, "failed", false, "only rejected commands")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.CommandLog.Backend == cmdlog.BackendMemory {
		return fmt.Errorf("command_log backend %q keeps no history between runs", cfg.CommandLog.Backend)
	}
	loc, err := cfg.Schedule.Location()
	if err != nil {
		return err
	}
	q := cmdlog.Query{OrderID: historyOpts.order, Source: historyOpts.source, FailedOnly: historyOpts.failed}
	if q.Start, err = parseBound(historyOpts.since, loc); err != nil {
		return fmt.Errorf("--since: %w", err)
	}
	if q.End, err = parseBound(historyOpts.until, loc); err != nil {
		return fmt.Errorf("--until: %w", err)
	}

	store, err := cmdlog.Open(cfg.CommandLog.Options())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	entries, err := store.Query(context.Background(), q)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tSOURCE\tRESULT\tCOMMAND")
	for _, e := range entries {
		result := e.Message
		if !e.OK {
			result = "Cannot apply: " + e.Message
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Timestamp.In(loc).Format(time.DateTime), e.Source, result, e.Raw)
	}
	return tw.Flush()
}

func parseBound(v string, loc *time.Location) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return dateparse.ParseIn(v, loc)
}
