package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tridentos/bosun/internal/bootstrap"
	"github.com/tridentos/bosun/internal/config"
	"github.com/tridentos/bosun/internal/logging"
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Run only the host preparation steps",
	Long: `Run the bootstrap steps without launching any services: relax the
Docker socket permissions, derive the hardware identifier, and link the
resolver file to the host's.

Every step is idempotent; re-running against a prepared host is safe.`,
	RunE: runBootstrap,
}

func init() {
	rootCmd.AddCommand(bootstrapCmd)
}

func runBootstrap(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	runner := bootstrap.NewRunner(bootstrapSteps(cfg), logger)
	outcomes, err := runner.Run(cmd.Context())

	// Report what ran before surfacing any fatal error.
	for _, o := range outcomes {
		switch o.Result.Status {
		case bootstrap.StatusApplied:
			fmt.Printf("%s %s %s\n", okStyle.Render("✓"), nameStyle.Render(o.Name),
				commandStyle.Render(o.Result.Detail))
		case bootstrap.StatusSkipped:
			fmt.Printf("%s %s %s\n", warnStyle.Render("-"), nameStyle.Render(o.Name),
				commandStyle.Render(o.Result.Detail))
		}
	}

	return err
}
