package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/wheelsched/app"
	"github.com/kilianp07/wheelsched/pkg/export"
)

var applyOpts struct {
	file   string
	out    string
	format string
	view   viewFlags
}

var applyCmd = &cobra.Command{
	Use:   "apply [command...]",
	Short: "Apply commands to the schedule and print or export the result",
	Example: `  wheelsched apply "delay O021 by 2 hours" "swap O014 with O030"
  wheelsched apply --file edits.txt --out schedule.csv`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVarP(&applyOpts.file, "file", "f", "", "read commands from a file, one per line (- for stdin)")
	applyCmd.Flags().StringVarP(&applyOpts.out, "out", "o", "", "write the resulting schedule to this file")
	applyCmd.Flags().StringVar(&applyOpts.format, "format", "csv", "output format for --out: csv or json")
	applyOpts.view.register(applyCmd)
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	if applyOpts.format != "csv" && applyOpts.format != "json" {
		return fmt.Errorf("unsupported format %q", applyOpts.format)
	}
	texts := args
	if applyOpts.file != "" {
		lines, err := readCommands(cmd.InOrStdin(), applyOpts.file)
		if err != nil {
			return err
		}
		texts = append(texts, lines...)
	}
	if len(texts) == 0 {
		return fmt.Errorf("no commands given")
	}
	return withService(cmd, func(ctx context.Context, svc *app.Service) error {
		w := cmd.OutOrStdout()
		for _, text := range texts {
			printOutcome(w, svc.Submit(ctx, text))
		}
		tl := svc.Timeline()
		if applyOpts.out == "" {
			fmt.Fprintln(w)
			return printTimeline(w, applyOpts.view.apply(tl), svc.Location())
		}
		f, err := os.Create(applyOpts.out)
		if err != nil {
			return err
		}
		if applyOpts.format == "json" {
			err = export.WriteJSON(f, tl)
		} else {
			err = export.WriteCSV(f, tl, svc.Location())
		}
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		return err
	})
}

// readCommands returns the non-blank lines of path. Lines starting with #
// are comments.
func readCommands(stdin io.Reader, path string) ([]string, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, sc.Err()
}
