// Package cachebench empirically infers CPU cache hierarchy parameters.
//
// The tool measures memory-access latency under pointer-chasing access
// patterns and never consults OS or CPU metadata for the inference itself.
// A pointer chain is materialized over a large page-aligned backing arena;
// each dereference yields the address of the next slot, so latency cannot
// be hidden by prefetching or out-of-order execution. Latency is sampled
// repeatedly until the running mean converges, and the resulting
// latency-vs-parameter curves are scanned for spikes that mark cache
// boundaries.
//
// Three probes run in sequence, each feeding the next:
//   - Cache line size: double the stride until consecutive accesses stop
//     sharing a line.
//   - Cache size: grow the footprint until it no longer fits.
//   - Associativity: grow the number of conflicting ways in one set until
//     the set overflows.
//
// The final output is the tuple {cache line size, cache size, associativity}.
// Sweep points stream to stdout as CSV; diagnostics go to stderr.
package cachebench
