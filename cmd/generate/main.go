package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cybercommand/internal/factory"
	"cybercommand/internal/service"
	"cybercommand/internal/util"
)

var params service.GenerateAllParams

var rootCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate and publish a synthetic security telemetry corpus",
	Long: `Runs one full generation pass: user, asset and threat indicator
catalogs, background network and authentication streams, and an injected
exfiltration scenario. The run is staged under a fresh epoch and published
atomically on success.`,
	RunE: runGenerate,
}

func init() {
	flags := rootCmd.Flags()
	flags.IntVar(&params.UserCount, "users", 0, "number of users to generate (0 uses the configured default)")
	flags.IntVar(&params.AssetCount, "assets", 0, "number of assets to generate (0 uses the configured default)")
	flags.IntVar(&params.DaysBack, "days", 0, "days of event history to generate (0 uses the configured default)")
	flags.IntVar(&params.NetworkPerDay, "network-per-day", 0, "network events per day (0 uses the configured default)")
	flags.IntVar(&params.AuthPerDay, "auth-per-day", 0, "auth events per day (0 uses the configured default)")
	flags.Int64Var(&params.Seed, "seed", 0, "random seed for reproducible runs (0 uses the configured default)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	f, err := factory.NewFactory()
	if err != nil {
		return err
	}
	defer f.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	summary, err := f.ServiceFactory().GeneratorService().GenerateAll(ctx, params)
	if err != nil {
		return err
	}

	util.Info("Generation run completed",
		util.String("run_id", summary.RunID),
		util.String("epoch_id", summary.EpochID),
		util.Int64("seed", summary.Seed),
		util.Int("users_written", int(summary.UsersWritten)),
		util.Int("assets_written", int(summary.AssetsWritten)),
		util.Int("indicators_written", int(summary.IndicatorsWritten)),
		util.Int("network_written", int(summary.NetworkWritten)),
		util.Int("auth_written", int(summary.AuthWritten)),
		util.Int("injected_written", int(summary.InjectedWritten)),
		util.Duration("duration", summary.FinishedAt.Sub(summary.StartedAt)),
	)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
