// Package coordinator keeps tile placements in step with the roster.
//
// A Coordinator owns the roster.Store, the selected layout, the viewport
// and the tile view flag. Inputs arrive as Events; each one updates state
// and marks a recompute pending. Pending work is coalesced: under Run a
// timer per kind (Delays) batches bursts of events, and without Run the
// caller decides when to Flush.
//
// A recompute builds a Plan from a fresh roster snapshot and sends only
// the placements whose canonical bytes changed since the last emission,
// so redundant triggers (for example a resize to the same size) send
// nothing.
//
// Thread-safety model:
//   - Enqueue(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//   - Handle(), Flush(), Recompute(), Plan(): single caller, never
//     concurrently with Run
package coordinator
