// Package topic provides hierarchical topic types and pattern matching for the bus.
//
// # Topic Format
//
// Topics use dot-notation to create hierarchical namespaces:
//
//	xbox.newgame
//	order.payment.captured
//	sensor.kitchen.temperature
//
// # Wildcards
//
// Patterns used at subscribe time may contain two wildcard tokens:
//
//   - "*" matches exactly one segment
//   - "#" matches zero or more segments
//
// Examples:
//
//	order.*               matches order.created, order.cancelled (not order.payment.captured)
//	order.#               matches order, order.created, order.payment.captured
//	*.created             matches order.created, user.created
//	order.*.captured      matches order.payment.captured
//	#.captured            matches captured, order.payment.captured
//	#                     matches everything
//
// A pattern may contain at most one "#". Wildcards must occupy a whole
// segment: "ord*" is rejected rather than treated as a prefix match.
// Published topics never contain wildcards.
//
// # Matching
//
// [Match] is the reference matcher: a pure segment-wise comparison that tries
// the shortest "#" expansion first and backtracks when a later segment fails
// to align. [Index] is a trie over registered patterns that returns every
// pattern matching a concrete topic without scanning all of them.
package topic
