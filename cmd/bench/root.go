package bench

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/sector/cmd/util"
	"github.com/ValentinKolb/sector/lib/common"
	"github.com/ValentinKolb/sector/lib/sector"
	sectortesting "github.com/ValentinKolb/sector/lib/sector/testing"
	"github.com/cockroachdb/errors"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	plog = logger.GetLogger("bench")

	benchConfig = &common.BenchConfig{}

	// BenchCmd runs the container benchmarks for every selected policy
	BenchCmd = &cobra.Command{
		Use:     "bench",
		Short:   "Performance testing tool for capacity policies",
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	cobra.OnInitialize(util.InitConfig)

	key := "policies"
	BenchCmd.Flags().String(key, "", util.WrapString("Policies to benchmark (comma separated, default: all registered)"))
	key = "size"
	BenchCmd.Flags().Int(key, 1000, util.WrapString("Number of elements in the benchmarked containers"))
	key = "skip"
	BenchCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. push,clone)"))
	key = "csv"
	BenchCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
	key = "log-level"
	BenchCmd.Flags().String(key, "warn", util.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

func processConfig(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	benchConfig.Policies = util.SplitList(viper.GetString("policies"))
	if len(benchConfig.Policies) == 0 {
		benchConfig.Policies = sector.PolicyNames()
	}
	for _, name := range benchConfig.Policies {
		if _, err := sector.NewPolicy(name); err != nil {
			return err
		}
	}

	benchConfig.Size = viper.GetInt("size")
	if benchConfig.Size <= 0 {
		return errors.Newf("size must be positive, got %d", benchConfig.Size)
	}
	benchConfig.Skip = util.SplitList(strings.ToLower(viper.GetString("skip")))
	benchConfig.CSVPath = viper.GetString("csv")
	benchConfig.LogLevel = viper.GetString("log-level")
	return nil
}

// result is the outcome of one benchmark for one policy
type result struct {
	policy    string
	benchmark string
	result    testing.BenchmarkResult
}

func run(_ *cobra.Command, _ []string) error {
	fmt.Println("Performance testing tool for capacity policies")

	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(benchConfig.String())

	fmt.Println("starting benchmarks...")

	var results []result
	for _, name := range benchConfig.Policies {
		factory := func() sector.Policy {
			p, _ := sector.NewPolicy(name)
			return p
		}

		fmt.Printf("\n%s\n", strings.ToUpper(name))
		for _, bm := range sectortesting.Benchmarks {
			if slices.Contains(benchConfig.Skip, strings.ToLower(bm.Name)) {
				continue
			}
			plog.Debugf("running %s/%s", name, bm.Name)
			res := testing.Benchmark(func(b *testing.B) {
				bm.Run(b, factory, benchConfig.Size)
			})
			results = append(results, result{policy: name, benchmark: bm.Name, result: res})
			printResult(bm.Name, res)
		}
	}

	if benchConfig.CSVPath != "" {
		if err := writeResultsToCSV(benchConfig.CSVPath, results, benchConfig); err != nil {
			return err
		}
		fmt.Printf("\nresults written to %s\n", benchConfig.CSVPath)
	}
	return nil
}

// --------------------------------------------------------------------------
// Output
// --------------------------------------------------------------------------

func printResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("  %-18sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	fmt.Printf("  %-18s%.0fns/op (%s/op)\t%.0f ops/sec\t%d allocs/op\n",
		test, nsPerOp, time.Duration(nsPerOp), opsPerSec, result.AllocsPerOp())
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results []result, config *common.BenchConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return errors.Wrap(err, "failed to create CSV file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{
		"Policy", "Test", "NsPerOp", "DurationPerOp", "OpsPerSec",
		"AllocsPerOp", "BytesPerOp", "Skipped", "Size",
	}
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, "failed to write CSV header")
	}

	for _, r := range results {
		var nsPerOp, opsPerSec float64
		skipped := "true"
		if r.result.NsPerOp() != 0 {
			skipped = "false"
			nsPerOp = math.Max(float64(r.result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		row := []string{
			r.policy,
			r.benchmark,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			strconv.FormatInt(r.result.AllocsPerOp(), 10),
			strconv.FormatInt(r.result.AllocedBytesPerOp(), 10),
			skipped,
			strconv.Itoa(config.Size),
		}
		if err := writer.Write(row); err != nil {
			return errors.Wrapf(err, "failed to write row for %s/%s", r.policy, r.benchmark)
		}
	}

	writer.Flush()
	return writer.Error()
}
