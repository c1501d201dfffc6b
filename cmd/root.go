package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/sector/cmd/bench"
	"github.com/ValentinKolb/sector/cmd/sim"
	"github.com/ValentinKolb/sector/lib/sector"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "sector",
		Short: "growable buffers with pluggable capacity policies",
		Long: fmt.Sprintf(`sector (v%s)

A growable buffer container for Go whose growth and shrink behaviour
is decided by an interchangeable capacity policy.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of sector",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sector v%s\n", Version)
		},
	}
	policiesCmd = &cobra.Command{
		Use:   "policies",
		Short: "List the registered capacity policies",
		Long:  "List the registered capacity policies with the operations they expose and the buffer they end up with after a number of pushes.",
		RunE: func(cmd *cobra.Command, args []string) error {
			pushes, err := cmd.Flags().GetInt("pushes")
			if err != nil {
				return err
			}
			fmt.Printf("%-10s %-44s %s\n", "POLICY", "FEATURES", fmt.Sprintf("AFTER %d PUSHES", pushes))
			for _, name := range sector.PolicyNames() {
				p, err := sector.NewPolicy(name)
				if err != nil {
					return err
				}
				fmt.Printf("%-10s %-44s %s\n", name, features(p), afterPushes(p, pushes))
			}
			return nil
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(sim.SimCmd)
	RootCmd.AddCommand(bench.BenchCmd)
	RootCmd.AddCommand(policiesCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	policiesCmd.Flags().Int("pushes", 1000, "Number of int64 values pushed onto an empty container per policy")
}

// features lists the capacity operations p exposes
func features(p sector.Policy) sector.Feature {
	var f sector.Feature
	for _, single := range []sector.Feature{
		sector.FeatureMutate, sector.FeatureReserve,
		sector.FeatureShrinkToFit, sector.FeatureManualResize,
	} {
		if sector.SupportsFeature(p, single) {
			f |= single
		}
	}
	return f
}

// afterPushes describes the container p produces from n pushes onto an empty container
func afterPushes(p sector.Policy, n int) string {
	s, err := sector.FromPolicy[int64](p)
	if err != nil {
		return err.Error()
	}
	defer s.Close()

	for i := 0; i < n; i++ {
		if err := s.Push(int64(i)); err != nil {
			return fmt.Sprintf("stops at len %d (%v)", s.Len(), err)
		}
	}
	return fmt.Sprintf("cap %d, %s, %d resizes", s.Cap(), humanize.IBytes(s.Bytes()), s.Resizes())
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
