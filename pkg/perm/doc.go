// Package perm provides the permutation algebra underlying every other
// shortword package: permutations, cycle notation, generator sets and
// words over them.
//
// # Conventions
//
// A [Perm] is a slice of images on the domain [0, n). Composition applies
// the right operand first:
//
//	Compose(a, b)[i] == a[b[i]]
//
// A [Word] is a sequence of [Letter] values. Letter 2g addresses generator
// g and letter 2g+1 addresses its inverse, so [Letter.Inverse] is a single
// bit flip. Replaying a word starts at the identity and composes each
// letter on the left in order:
//
//	p := Identity(n)
//	for _, l := range w {
//	    p = Compose(gens.Perm(l), p)
//	}
//
// Reversing a word and inverting each of its letters yields a word for the
// inverse permutation ([Word.Inverse]).
//
// # Elements
//
// An [Elem] pairs a permutation with a word that produces it. Elements are
// what the Cayley explorers emit, what the short-word table stores and what
// the factorizers concatenate. [Elem.Compose] keeps the pair consistent:
//
//	x.Compose(y).Perm == Compose(x.Perm, y.Perm)
//	x.Compose(y).Word == y.Word followed by x.Word
//
// # Notation
//
// [ParseCycles] and [Perm.String] use 0-indexed cycle notation such as
// "(0,4,6)(1,5,7)". [GeneratorSet.Render] prints words in puzzle notation:
// move names joined by "." with inverses prefixed by "-".
package perm
