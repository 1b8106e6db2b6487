package main

import (
	"context"
	"fmt"
	"os"

	"clinical-intel/internal/app"
	"clinical-intel/pkg/config"
	"clinical-intel/pkg/logger"

	"github.com/spf13/cobra"
)

type cli struct {
	asJSON    bool
	container *app.Container
}

func main() {
	c := &cli{}
	root := &cobra.Command{
		Use:           "cohortctl",
		Short:         "Query patient cohorts, notes and terms from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			return c.connect(cmd.Context())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.container != nil {
				c.container.Close()
			}
			logger.Sync()
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().BoolVar(&c.asJSON, "json", false, "print JSON instead of tables")

	root.AddCommand(
		c.patientCmd(),
		c.similarCmd(),
		c.medsCmd(),
		c.labsCmd(),
		c.searchCmd(),
		c.extractCmd(),
		c.reindexCmd(),
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (c *cli) connect(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.InitConsole(cfg.Logger.Level); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	container, err := app.New(ctx, cfg, logger.Get())
	if err != nil {
		return err
	}
	c.container = container
	return nil
}
