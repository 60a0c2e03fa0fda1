// Package tsion implements TSION, a textual serialization codec with
// automatic structural deduplication.
//
// TSION encodes a value tree (null, booleans, numbers, big integers,
// strings, arrays, objects with string keys) into a single textual
// payload in which every distinct non-trivial substructure appears at
// most once. Repeated literals and repeated composite structures are
// lifted into a dictionary prefix and referenced by compact
// back-references:
//
//	Encode(["a", "a"])            => "&a\x00[$0$0]"
//	Encode([{"k":1}, {"k":1}])    => "{&k#1}\x00[$0$0]"
//
// The payload is "[dictionary NUL]? content": a flat concatenation of
// fully-resolved dictionary entries, a single NUL delimiter (omitted
// when the dictionary is empty), and the encoded root value. Each
// token is self-terminating, so dictionary entries need no separators.
//
// # Token Forms
//
//	:n :t :f :inf :ninf :nan    constants
//	&<escaped chars>            string
//	#<decimal>                  number (IEEE-754 double)
//	%<decimal integer>          big integer
//	$<n>                        dictionary back-reference
//	[ tok* ]                    array
//	{ }                         empty object
//	{ key val }                 single-entry object
//	{ keyArr val+ }             multi-entry object (keyArr lists the keys)
//
// # Contract
//
// Encode is total on finite acyclic value trees; cyclic inputs are
// undefined behavior (the encoder recurses without a visited set).
// Decode reconstructs an equal tree or fails with a *DecodeError
// quoting the offending token. Both are pure, synchronous, and safe to
// call concurrently on disjoint inputs.
package tsion
