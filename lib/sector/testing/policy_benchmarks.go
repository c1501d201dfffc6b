package testing

import (
	"math/rand"
	"testing"

	"github.com/ValentinKolb/sector/lib/sector"
)

// Benchmark is a named benchmark over containers of a given size.
type Benchmark struct {
	Name string
	Run  func(b *testing.B, factory sector.PolicyFactory, size int)
}

// Benchmarks lists the benchmarks run by RunPolicyBenchmarks, in order.
// The sector bench command runs them with testing.Benchmark.
var Benchmarks = []Benchmark{
	{Name: "Push", Run: benchmarkPush},
	{Name: "PushPop", Run: benchmarkPushPop},
	{Name: "InsertFront", Run: benchmarkInsertFront},
	{Name: "RemoveRandom", Run: benchmarkRemoveRandom},
	{Name: "Iterate", Run: benchmarkIterate},
	{Name: "Clone", Run: benchmarkClone},
	{Name: "Convert", Run: benchmarkConvert},
}

// RunPolicyBenchmarks runs all benchmarks for a capacity policy
func RunPolicyBenchmarks(b *testing.B, name string, factory sector.PolicyFactory) {
	b.Run(name, func(b *testing.B) {
		for _, bm := range Benchmarks {
			b.Run(bm.Name, func(b *testing.B) {
				bm.Run(b, factory, 1000)
			})
		}
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

// newFilled returns a container holding the elements 1..size
func newFilled(b *testing.B, factory sector.PolicyFactory, size int, opts ...sector.Option) *sector.Sector[int] {
	s, err := sector.FromSlice[int](factory(), sequence(size), opts...)
	if err != nil {
		b.Fatalf("Failed to create container: %v", err)
	}
	return s
}

// Benchmark for Push until size elements, starting from an empty container
func benchmarkPush(b *testing.B, factory sector.PolicyFactory, size int) {
	p := factory()
	requireFeature(b, p, sector.FeatureMutate)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		s, err := sector.FromPolicy[int](factory(), sector.WithInitialCapacity(size))
		if err != nil {
			b.Fatalf("Failed to create container: %v", err)
		}
		// Fixed and Manual only accept what fits the initial capacity
		for j := 0; j < size; j++ {
			if err := s.Push(j); err != nil {
				b.Fatalf("Push failed: %v", err)
			}
		}
		s.Close()
	}
}

// Benchmark for a Push immediately followed by a Pop
func benchmarkPushPop(b *testing.B, factory sector.PolicyFactory, size int) {
	requireFeature(b, factory(), sector.FeatureMutate)

	s := newFilled(b, factory, size, sector.WithInitialCapacity(size+1))
	defer s.Close()

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := s.Push(i); err != nil {
			b.Fatalf("Push failed: %v", err)
		}
		if _, _, err := s.Pop(); err != nil {
			b.Fatalf("Pop failed: %v", err)
		}
	}
}

// Benchmark for Insert at index 0, the worst case for shifting
func benchmarkInsertFront(b *testing.B, factory sector.PolicyFactory, size int) {
	requireFeature(b, factory(), sector.FeatureMutate)

	s := newFilled(b, factory, size, sector.WithInitialCapacity(size+1))
	defer s.Close()

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := s.Insert(0, i); err != nil {
			b.Fatalf("Insert failed: %v", err)
		}
		if _, _, err := s.Pop(); err != nil {
			b.Fatalf("Pop failed: %v", err)
		}
	}
}

// Benchmark for Remove at random positions, refilling with Push
func benchmarkRemoveRandom(b *testing.B, factory sector.PolicyFactory, size int) {
	requireFeature(b, factory(), sector.FeatureMutate)

	s := newFilled(b, factory, size, sector.WithInitialCapacity(size))
	defer s.Close()

	rng := rand.New(rand.NewSource(1))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := s.Remove(rng.Intn(s.Len())); err != nil {
			b.Fatalf("Remove failed: %v", err)
		}
		if err := s.Push(i); err != nil {
			b.Fatalf("Push failed: %v", err)
		}
	}
}

// Benchmark for a full iteration over size elements
func benchmarkIterate(b *testing.B, factory sector.PolicyFactory, size int) {
	s := newFilled(b, factory, size)
	defer s.Close()

	b.ResetTimer()

	sum := 0
	for i := 0; i < b.N; i++ {
		for v := range s.Values() {
			sum += v
		}
	}
	_ = sum
}

// Benchmark for Clone of a container with size elements
func benchmarkClone(b *testing.B, factory sector.PolicyFactory, size int) {
	s := newFilled(b, factory, size)
	defer s.Close()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		c, err := s.Clone()
		if err != nil {
			b.Fatalf("Clone failed: %v", err)
		}
		c.Close()
	}
}

// Benchmark for converting a container into the benchmarked policy
func benchmarkConvert(b *testing.B, factory sector.PolicyFactory, size int) {
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		src, err := sector.FromSlice[int](sector.Normal{}, sequence(size))
		if err != nil {
			b.Fatalf("Failed to create container: %v", err)
		}
		b.StartTimer()

		dst, err := src.Convert(factory())
		if err != nil {
			b.Fatalf("Convert failed: %v", err)
		}
		dst.Close()
	}
}
