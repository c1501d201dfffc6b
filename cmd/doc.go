// Package cmd implements the command-line interface for sector. It provides
// tools to watch capacity policies at work and to compare their performance.
//
// The package is organized into several subpackages:
//
//   - sim: Replays an operation script (push, pop, insert, convert, ...) against a
//     container and traces length and capacity after every step
//   - bench: Runs the container benchmarks for every registered policy
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See sector -help for a list of all commands.
package cmd
