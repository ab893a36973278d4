package cmd

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "wrsn",
	Short: "Mobile charging simulator for rechargeable sensor networks",
	Long: `wrsn routes a mobile charger through clusters of sensor peripherals and
reports the energy spent on travel and transfer and when peripherals fail.
Configuration values can be overridden with K_ prefixed variables, such as
K_SIMULATION__POLICY=threshold, set in the environment or in --env-file.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadEnvFile,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with K_ overrides, skipped when missing")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadEnvFile never overrides variables already set in the environment.
func loadEnvFile(cmd *cobra.Command, args []string) error {
	if envFile == "" {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
