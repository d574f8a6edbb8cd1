// Package cayley enumerates elements of a permutation group by walking its
// Cayley graph from the identity.
//
// Every [Explorer] yields [perm.Elem] values in non-decreasing word length,
// starting with the identity and its empty word. Three strategies are
// provided:
//
//   - [NewBFS]: breadth-first with an exact visited set. Every reachable
//     element is produced exactly once and the walk terminates.
//   - [NewDepthLimited]: iterative deepening over an explicit stack. Only
//     the depth of each produced element is remembered, never the frontier.
//   - [NewBounded]: breadth-first with a Bloom filter as visited set, for
//     groups too large to remember exactly.
//
// A Bloom false positive makes the bounded explorer skip an element it has
// never produced. Consumers that only need short words for many elements,
// such as the short-word table builder, tolerate this.
//
// [Ball] materializes a small neighbourhood of the identity for rendering
// with Graphviz.
package cayley
