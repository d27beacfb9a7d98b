package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tridentos/bosun/internal/config"
	"github.com/tridentos/bosun/internal/environ"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Show the environment snapshot services will receive",
	Long: `Print the variables that would be propagated into every service
session, after filtering the current environment by the configured
domain prefix.`,
	RunE: runEnv,
}

func init() {
	rootCmd.AddCommand(envCmd)
}

func runEnv(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	snap := environ.Filter(os.Environ(), cfg.Env.Prefix)
	if len(snap) == 0 {
		fmt.Printf("no %s* variables set; sessions receive an empty snapshot\n", cfg.Env.Prefix)
		return nil
	}

	for _, key := range snap.Keys() {
		fmt.Printf("%s=%s\n", nameStyle.Render(key), snap[key])
	}
	return nil
}
