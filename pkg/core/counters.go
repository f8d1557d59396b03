package core

// TraceCounters tallies intersection work done by a single worker.
// A counters value is never shared between goroutines; workers merge
// their totals with Add once their task is done.
type TraceCounters struct {
	Rays           int64 // Rays handed to the scene
	BoxTests       int64 // Bounding box slab tests
	PrimitiveTests int64 // Exact primitive intersection tests
	Hits           int64 // Queries that found a primitive
}

// Add accumulates other into c
func (c *TraceCounters) Add(other TraceCounters) {
	c.Rays += other.Rays
	c.BoxTests += other.BoxTests
	c.PrimitiveTests += other.PrimitiveTests
	c.Hits += other.Hits
}
