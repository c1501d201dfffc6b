package common

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// --------------------------------------------------------------------------
// Simulation configuration struct
// --------------------------------------------------------------------------

// SimConfig holds all parameters of a `sector sim` run.
type SimConfig struct {
	// Policy is the registered name of the policy under test
	Policy string
	// Capacity is the initial capacity, negative to start without one
	Capacity int
	// Ops is the operation script, e.g. "push:5,pop:2,convert:tight"
	Ops string
	// ZeroSized runs the script on a container of zero-sized elements
	ZeroSized bool
	// BudgetBytes limits the bytes the container may allocate, 0 means unlimited
	BudgetBytes uint64
	// Metrics prints the container metrics after the run
	Metrics bool

	// Logging configuration
	LogLevel string
}

// String returns a formatted string representation of the configuration
func (c *SimConfig) String() string {
	var sb strings.Builder
	section, field := formatters(&sb)

	section("Container")
	field("Policy", c.Policy)
	if c.Capacity < 0 {
		field("Initial Capacity", "none")
	} else {
		field("Initial Capacity", fmt.Sprintf("%d", c.Capacity))
	}
	field("Zero-Sized", fmt.Sprintf("%t", c.ZeroSized))
	if c.BudgetBytes == 0 {
		field("Budget", "unlimited")
	} else {
		field("Budget", humanize.IBytes(c.BudgetBytes))
	}

	section("Script")
	field("Operations", c.Ops)

	section("Logging")
	field("Log Level", c.LogLevel)

	return sb.String()
}

// --------------------------------------------------------------------------
// Benchmark configuration struct
// --------------------------------------------------------------------------

// BenchConfig holds all parameters of a `sector bench` run.
type BenchConfig struct {
	Policies []string
	Size     int
	Skip     []string
	CSVPath  string

	// Logging configuration
	LogLevel string
}

// String returns a formatted string representation of the configuration
func (c *BenchConfig) String() string {
	var sb strings.Builder
	section, field := formatters(&sb)

	section("Benchmark")
	field("Policies", strings.Join(c.Policies, ", "))
	field("Container Size", fmt.Sprintf("%d", c.Size))
	if len(c.Skip) > 0 {
		field("Skip", strings.Join(c.Skip, ", "))
	}
	if c.CSVPath != "" {
		field("CSV Output", c.CSVPath)
	}

	section("Logging")
	field("Log Level", c.LogLevel)

	return sb.String()
}

// formatters returns helpers for consistent section and field formatting
func formatters(sb *strings.Builder) (addSection func(string), addField func(string, string)) {
	addSection = func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}
	addField = func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}
	return addSection, addField
}
