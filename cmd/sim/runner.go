package sim

import (
	"fmt"
	"io"
	"strconv"

	"github.com/ValentinKolb/sector/lib/alloc"
	"github.com/ValentinKolb/sector/lib/common"
	"github.com/ValentinKolb/sector/lib/sector"
	"github.com/ValentinKolb/sector/lib/sector/trace"
	"github.com/dustin/go-humanize"
	"github.com/lni/dragonboat/v4/logger"
)

var plog = logger.GetLogger("sim")

// runScript replays ops on a container of T built from config and writes one
// line per step to out. next produces the element pushed or inserted at step i.
// Failing operations are reported and the script continues.
func runScript[T any](config *common.SimConfig, ops []Op, next func(i int) T, out io.Writer) (trace.Summary, error) {
	policy, err := sector.NewPolicy(config.Policy)
	if err != nil {
		return trace.Summary{}, err
	}

	var opts []sector.Option
	if config.Capacity >= 0 {
		opts = append(opts, sector.WithInitialCapacity(config.Capacity))
	}
	var budget *alloc.Budget
	if config.BudgetBytes > 0 {
		budget = alloc.NewBudget(config.BudgetBytes)
		opts = append(opts, sector.WithAllocator(budget))
	}

	s, err := sector.FromPolicy[T](policy, opts...)
	if err != nil {
		return trace.Summary{}, err
	}
	// s is replaced by convert
	defer func() { _ = s.Close() }()

	recorder := trace.NewRecorder()
	report := func(label string, err error) {
		step := recorder.Observe(label, s, err)
		result := "ok"
		if err != nil {
			result = err.Error()
		}
		resized := ""
		if step.Resized {
			resized = "*"
		}
		fmt.Fprintf(out, "%-16s len=%-6d cap=%-10s %-1s %s\n", label, step.Len, formatCap(step.Cap), resized, result)
	}

	fmt.Fprintf(out, "%s\n", s)
	counter := 0
	for _, op := range ops {
		plog.Debugf("applying %s to %s", op, s)
		switch op.Kind {
		case "push":
			for i := 0; i < op.Arg; i++ {
				report("push", s.Push(next(counter)))
				counter++
			}
		case "pop":
			for i := 0; i < op.Arg; i++ {
				_, ok, err := s.Pop()
				if err == nil && !ok {
					report("pop (empty)", nil)
					continue
				}
				report("pop", err)
			}
		case "insert":
			report(op.String(), s.Insert(op.Arg, next(counter)))
			counter++
		case "remove":
			_, err := s.Remove(op.Arg)
			report(op.String(), err)
		case "reserve":
			report(op.String(), s.Reserve(op.Arg))
		case "grow":
			report(op.String(), s.GrowBy(op.Arg))
		case "shrinkby":
			report(op.String(), s.ShrinkBy(op.Arg))
		case "shrink":
			report(op.String(), s.ShrinkToFit())
		case "clear":
			report(op.String(), s.Clear())
		case "drain":
			drained, err := s.Drain()
			report(fmt.Sprintf("drain (%d)", len(drained)), err)
		case "convert":
			target, err := sector.NewPolicy(op.Policy)
			if err == nil {
				var converted *sector.Sector[T]
				if converted, err = s.Convert(target); err == nil {
					s = converted
				}
			}
			report(op.String(), err)
		}
	}

	summary := recorder.Summary()
	printSummary(out, summary, budget)
	return summary, nil
}

func printSummary(out io.Writer, summary trace.Summary, budget *alloc.Budget) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "SUMMARY")
	fmt.Fprintf(out, "  %-22s: %d\n", "Steps", summary.Steps)
	fmt.Fprintf(out, "  %-22s: %d\n", "Failures", summary.Failures)
	fmt.Fprintf(out, "  %-22s: %d\n", "Resizes", summary.Resizes)
	fmt.Fprintf(out, "  %-22s: %.1f%% (min %d%%, median %.0f%%)\n", "Utilization",
		summary.MeanUtilization, summary.MinUtilization, summary.P50Utilization)
	fmt.Fprintf(out, "  %-22s: %.0f .. %.0f (mean %.1f)\n", "Capacity",
		summary.Capacity.Min, summary.Capacity.Max, summary.Capacity.Mean)
	fmt.Fprintf(out, "  %-22s: %s\n", "Peak Buffer", humanize.IBytes(summary.PeakBytes))
	fmt.Fprintf(out, "  %-22s: %s\n", "Final Buffer", humanize.IBytes(summary.FinalBytes))
	if budget != nil {
		fmt.Fprintf(out, "  %-22s: %s of %s in use, %d refusals\n", "Budget",
			humanize.IBytes(budget.InUse()), humanize.IBytes(budget.Limit()), budget.Refusals())
	}
}

func formatCap(c int) string {
	if c == sector.Unbounded {
		return "unbounded"
	}
	return strconv.Itoa(c)
}
