package sim

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/sector/cmd/util"
	"github.com/ValentinKolb/sector/lib/common"
	"github.com/ValentinKolb/sector/lib/sector"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	simConfig = &common.SimConfig{}
	simOps    []Op

	// SimCmd replays an operation script against a container
	SimCmd = &cobra.Command{
		Use:   "sim",
		Short: "Replay an operation script against a container",
		Long: `Replay an operation script against a container and print length and capacity after every step.
The configuration can be set via command line flags or environment variables. The format of the environment variables is SECTOR_<flag> (e.g. SECTOR_POLICY=tight)

Operations (comma separated): push[:n], pop[:n], insert:i, remove:i, reserve:n, shrink, grow:n, shrinkby:n, clear, drain, convert:policy`,
		Example: `  sector sim --policy dynamic --capacity 4 --ops "push:5,pop:3"
  sector sim --policy fixed --capacity 2 --ops "push:3,convert:normal,push"
  sector sim --policy tight --zero-sized --ops "push:10"`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	cobra.OnInitialize(util.InitConfig)

	key := "policy"
	SimCmd.Flags().String(key, "normal", util.WrapString("Capacity policy of the container (see `sector policies`)"))
	key = "capacity"
	SimCmd.Flags().Int(key, -1, util.WrapString("Initial capacity requested from the policy, negative to start without one"))
	key = "ops"
	SimCmd.Flags().String(key, "push:8,pop:6", util.WrapString("Comma-separated operation script"))
	key = "zero-sized"
	SimCmd.Flags().Bool(key, false, util.WrapString("Use a container of zero-sized elements instead of int64"))
	key = "budget"
	SimCmd.Flags().Uint64(key, 0, util.WrapString("Maximum number of bytes the container may allocate (0 = unlimited)"))
	key = "metrics"
	SimCmd.Flags().Bool(key, false, util.WrapString("Print the container metrics in Prometheus format after the run"))
	key = "log-level"
	SimCmd.Flags().String(key, "warn", util.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and environment variables
func processConfig(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	simConfig.Policy = viper.GetString("policy")
	simConfig.Capacity = viper.GetInt("capacity")
	simConfig.Ops = viper.GetString("ops")
	simConfig.ZeroSized = viper.GetBool("zero-sized")
	simConfig.BudgetBytes = viper.GetUint64("budget")
	simConfig.Metrics = viper.GetBool("metrics")
	simConfig.LogLevel = viper.GetString("log-level")

	var err error
	if simOps, err = ParseOps(simConfig.Ops); err != nil {
		return err
	}
	_, err = sector.NewPolicy(simConfig.Policy)
	return err
}

func run(_ *cobra.Command, _ []string) error {
	fmt.Println("Configuration:")
	fmt.Println(simConfig.String())

	var err error
	if simConfig.ZeroSized {
		_, err = runScript(simConfig, simOps, func(int) struct{} { return struct{}{} }, os.Stdout)
	} else {
		_, err = runScript(simConfig, simOps, func(i int) int64 { return int64(i) }, os.Stdout)
	}
	if err != nil {
		return err
	}

	if simConfig.Metrics {
		fmt.Println()
		sector.WriteMetrics(os.Stdout)
	}
	return nil
}
