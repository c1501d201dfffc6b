// Package testing provides standardised tests and benchmarks for
// capacity policies that satisfy the sector.Policy interface.
//
// The package contains:
//   - testing: A conformance suite checking the container contract under a policy
//     (length never exceeds capacity, ordering, failure atomicity, conversion)
//   - benchmark: Performance tests for the common container operations
//
// Tests for operations a policy does not expose are skipped, based on the
// policy's feature flags.
//
// Example usage:
//
//	// Creating a factory function for your policy
//	factory := func() sector.Policy {
//		return MyPolicy{}
//	}
//
//	// Running the standard test suite
//	testing.RunPolicyTests(t, "MyPolicy", factory)
//
//	// Running performance benchmarks
//	testing.RunPolicyBenchmarks(b, "MyPolicy", factory)
package testing
