package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/wrsn/app"
	"github.com/kilianp07/wrsn/config"
	"github.com/kilianp07/wrsn/core/scheduler"
	"github.com/kilianp07/wrsn/infra/logger"
	"github.com/kilianp07/wrsn/pkg/export"
)

var (
	runPolicy string
	runSeed   int64
	runOut    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulation and print its summary",
	RunE:  runSimulation,
}

func init() {
	runCmd.Flags().StringVar(&runPolicy, "policy", "", "scheduling policy (round_robin|threshold)")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "placement seed")
	runCmd.Flags().StringVar(&runOut, "out", "", "export the run to a .json or .csv file")
	rootCmd.AddCommand(runCmd)
}

// loadConfig reads cfgPath and applies the command line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if f := cmd.Flags().Lookup("policy"); f != nil && f.Changed {
		cfg.Simulation.Policy = runPolicy
	}
	if f := cmd.Flags().Lookup("seed"); f != nil && f.Changed {
		cfg.Placement.Seed = runSeed
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()

	run, runErr := svc.Run(ctx)
	if run != nil {
		printSummary(cmd, run)
		if runOut != "" {
			if err := export.WriteFile(runOut, run); err != nil {
				return fmt.Errorf("export: %w", err)
			}
		}
	}
	return runErr
}

func printSummary(cmd *cobra.Command, run *scheduler.Run) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s (%s) ended: %s after %d cycles, %s simulated\n",
		run.ID, run.Policy, run.Reason, run.Cycles, run.Elapsed)
	fmt.Fprintf(out, "energy: travel %.3f, transfer %.3f, total %.3f\n",
		run.TravelEnergy, run.TransferEnergy, run.TotalEnergy)
	fmt.Fprintf(out, "ratios: effective %.3f, ineffective %.3f\n",
		run.EffectiveRatio(), run.IneffectiveRatio())
	if run.HasFailure {
		fmt.Fprintf(out, "failures: %d, first at %s\n", run.FailureCount(), run.FirstFailure)
	} else {
		fmt.Fprintln(out, "failures: none")
	}
	fmt.Fprintf(out, "average charge: %.1f%%\n", run.AverageChargePct())
}
