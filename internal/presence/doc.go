// Package presence decodes conference presence stanzas.
//
// A stanza arrives as a generic attribute tree (Node). Decode flattens the
// parts the tiering feature cares about into Fields and ignores everything
// else, so the decoder is pure and safe for concurrent use.
package presence
