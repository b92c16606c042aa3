package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/wheelsched/app"
	"github.com/kilianp07/wheelsched/config"
	"github.com/kilianp07/wheelsched/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "wheelsched",
	Short: "Edit a wheel production schedule with free-text commands",
	Long: `wheelsched loads an orders file and a machine schedule, then applies
commands such as "delay O021 by 2 hours", "move O014 to Aug 30 9am" or
"swap O014 with O030". Every applied command repacks the schedule so no
machine runs two operations at once.`,
	SilenceUsage: true,
	RunE:         runShell,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// withService builds the service, starts its background parts and closes it
// once fn returns.
func withService(cmd *cobra.Command, fn func(ctx context.Context, svc *app.Service) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	svc.Start(ctx)
	return fn(ctx, svc)
}
