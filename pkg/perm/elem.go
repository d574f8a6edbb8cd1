package perm

// Elem is a group element together with a word that produces it.
//
// Fresh marks elements that were stored or derived since the last
// improvement pass of a short-word table; other packages treat it as an
// opaque flag.
type Elem struct {
	Perm  Perm
	Word  Word
	Fresh bool
}

// IdentityElem returns the identity on n points with the empty word.
func IdentityElem(n int) Elem {
	return Elem{Perm: Identity(n), Word: Word{}}
}

// Len returns the word length of e.
func (e Elem) Len() int { return len(e.Word) }

// Compose returns e∘o: the permutation applies o first, and the word is
// o's word followed by e's. The result is marked fresh.
func (e Elem) Compose(o Elem) Elem {
	return Elem{
		Perm:  Compose(e.Perm, o.Perm),
		Word:  Concat(o.Word, e.Word),
		Fresh: true,
	}
}

// Inverse returns the inverse element. Freshness is preserved.
func (e Elem) Inverse() Elem {
	return Elem{Perm: e.Perm.Inverse(), Word: e.Word.Inverse(), Fresh: e.Fresh}
}
