package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tridentos/bosun/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "bosun",
	Short: "Boot supervisor for the vehicle service fleet",
	Long: `Bosun brings up the companion computer's service fleet at boot:
it prepares the host environment, then launches every service in its own
durable tmux session in a fixed order, priority services first.

Sessions survive bosun itself; attach to any service at any time with
'bosun services attach <name>'.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/bosun/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("/etc/bosun")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("BOSUN")
	// Replace dots with underscores for nested keys in env vars
	// e.g., BOSUN_SCHEDULER_SETTLE_DELAY_SECONDS for scheduler.settle_delay_seconds
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
