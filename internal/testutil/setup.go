package testutil

import (
	"os"
	"testing"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/memlib"
)

// NewAllocator builds an allocator over a fresh memlib.Slice of maxHeap bytes
// (memlib.DefaultMaxHeap when zero) and checks the initial heap.
//
// Example:
//
//	a, mem := testutil.NewAllocator(t, 1<<20, nil)
//	p, err := a.Alloc(64)
func NewAllocator(t testing.TB, maxHeap int, opts *alloc.Options) (*alloc.Allocator, *memlib.Slice) {
	t.Helper()

	mem, err := memlib.NewSlice(maxHeap)
	if err != nil {
		t.Fatalf("Failed to create arena: %v", err)
	}
	a, err := alloc.New(mem, opts)
	if err != nil {
		t.Fatalf("Failed to create allocator: %v", err)
	}
	RequireHeapValid(t, a)
	return a, mem
}

// NewMappedAllocator is like NewAllocator but backs the heap with an mmap
// arena, released when the test ends.
func NewMappedAllocator(t testing.TB, maxHeap int, opts *alloc.Options) *alloc.Allocator {
	t.Helper()

	mem, err := memlib.NewMapped(maxHeap)
	if err != nil {
		t.Fatalf("Failed to map arena: %v", err)
	}
	t.Cleanup(func() {
		if err := mem.Close(); err != nil {
			t.Errorf("Failed to unmap arena: %v", err)
		}
	})
	a, err := alloc.New(mem, opts)
	if err != nil {
		t.Fatalf("Failed to create allocator: %v", err)
	}
	RequireHeapValid(t, a)
	return a
}

// RequireHeapValid fails the test with the first broken heap invariant.
func RequireHeapValid(t testing.TB, a *alloc.Allocator) {
	t.Helper()
	if err := a.Check(); err != nil {
		t.Fatalf("Heap check failed: %v", err)
	}
}

// TracePath resolves a fixture path such as TraceShort from any package
// directory. Calls t.Skip if the fixture is not found.
func TracePath(t testing.TB, relativePath string) string {
	t.Helper()
	return resolveTestPath(t, relativePath)
}

// resolveTestPath attempts to find a fixture by trying multiple path resolutions.
// This handles the fact that tests may be run from different working directories.
func resolveTestPath(t testing.TB, relativePath string) string {
	t.Helper()

	// Try paths in order of likelihood
	candidates := []string{
		relativePath,                  // Direct path (from repo root)
		"../" + relativePath,          // From package one level deep
		"../../" + relativePath,       // From package two levels deep (e.g., heap/trace/)
		"../../../" + relativePath,    // From package three levels deep
		"../../../../" + relativePath, // From package four levels deep
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	// If not found, skip the test
	t.Skipf("Fixture not found at any candidate path starting from: %s", relativePath)
	return "" // unreachable
}
