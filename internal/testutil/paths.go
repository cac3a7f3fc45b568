package testutil

// Trace fixtures relative to the repository root.
const (
	TraceDir = "testdata/traces"

	// TraceShort allocates, resizes and frees a handful of small blocks.
	TraceShort = TraceDir + "/short1.rep"

	// TraceCoalescing frees neighbours in an order that exercises every
	// merge case.
	TraceCoalescing = TraceDir + "/coalescing.rep"

	// TraceRealloc grows one block repeatedly between small allocations.
	TraceRealloc = TraceDir + "/realloc.rep"

	// TraceBad frees an id that was never allocated.
	TraceBad = TraceDir + "/bad-free.rep"
)
