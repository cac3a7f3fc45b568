// Package trace replays malloc-lab style allocation traces against the
// allocator and measures space utilization and throughput.
//
// A trace file is a small header followed by one request per line:
//
//	20000      suggested heap size (informational)
//	2          number of distinct block ids
//	4          number of requests
//	1          weight
//	a 0 512    allocate 512 bytes as block 0
//	a 1 128
//	r 0 640    resize block 0 to 640 bytes
//	f 1        free block 1
//
// Blank lines and lines starting with '#' are ignored.
//
// Replay checks every pointer the allocator returns: payloads must be 8-byte
// aligned, lie inside the committed heap, not overlap any live payload, and
// keep their contents across realloc. Each payload is filled with a byte
// pattern derived from its id so corruption by a neighbour is caught when the
// block is next touched.
package trace
