package cmd

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/wheelsched/app"
)

var shellView viewFlags

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Read commands from stdin and apply them one by one",
	RunE:  runShell,
}

func init() {
	shellView.register(shellCmd)
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, _ []string) error {
	return withService(cmd, func(ctx context.Context, svc *app.Service) error {
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, `Type a command, "show" to print the schedule or "quit" to leave.`)
		sc := bufio.NewScanner(cmd.InOrStdin())
		for {
			fmt.Fprint(w, "> ")
			if !sc.Scan() {
				fmt.Fprintln(w)
				return sc.Err()
			}
			line := strings.TrimSpace(sc.Text())
			switch strings.ToLower(line) {
			case "":
				continue
			case "quit", "exit":
				return nil
			case "show":
				if err := printTimeline(w, shellView.apply(svc.Timeline()), svc.Location()); err != nil {
					return err
				}
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			printOutcome(w, svc.Submit(ctx, line))
		}
	})
}
