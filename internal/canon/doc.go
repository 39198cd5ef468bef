// Package canon provides RFC 8785 canonical JSON and domain-separated
// content fingerprints.
//
// Placement plans are compared by their canonical bytes: re-running the
// layout with unchanged inputs must produce byte-identical output, so the
// coordinator never re-emits a placement whose canonical form is unchanged.
package canon
