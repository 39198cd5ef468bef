// Package sink implements coordinator.Sink for the places placement
// updates go: a framed stream to an external renderer (NDJSON or CBOR), an
// in-memory recorder, the structured log and the session journal.
//
// Every sink here is safe for concurrent use; the coordinator calls them
// from its Run goroutine while readers may inspect a Recorder from tests.
package sink
