package perm

import (
	"fmt"
	"slices"
	"strings"

	errs "github.com/matzehuels/shortword/pkg/errors"
)

// Letter addresses a generator (even values) or its inverse (odd values).
type Letter uint16

// Inverse returns the letter of the inverse move.
func (l Letter) Inverse() Letter { return l ^ 1 }

// Generator returns the index of the generator l refers to.
func (l Letter) Generator() int { return int(l >> 1) }

// IsInverse reports whether l addresses an inverse move.
func (l Letter) IsInverse() bool { return l&1 == 1 }

// Word is a sequence of letters, applied left to right.
type Word []Letter

// Len returns the number of letters in w.
func (w Word) Len() int { return len(w) }

// Inverse returns the word of the inverse permutation: w reversed with
// each letter inverted.
func (w Word) Inverse() Word {
	out := make(Word, len(w))
	for i, l := range w {
		out[len(w)-1-i] = l.Inverse()
	}
	return out
}

// Concat returns a new word holding the letters of ws in order.
func Concat(ws ...Word) Word {
	n := 0
	for _, w := range ws {
		n += len(w)
	}
	out := make(Word, 0, n)
	for _, w := range ws {
		out = append(out, w...)
	}
	return out
}

// Generator is a named permutation.
type Generator struct {
	Name string
	Perm Perm
}

// GeneratorSet is a validated, immutable collection of generators with
// their inverses registered as addressable letters.
type GeneratorSet struct {
	gens   []Generator
	perms  []Perm // indexed by Letter
	byName map[string]Letter
	size   int
}

// NewGeneratorSet validates gens and returns the set. It fails with a
// structural error if gens is empty, the domain sizes differ, a
// permutation is malformed, or a name is reused.
func NewGeneratorSet(gens []Generator) (*GeneratorSet, error) {
	if len(gens) == 0 {
		return nil, errs.New(errs.ErrCodeStructural, "generator set is empty")
	}
	if 2*len(gens) > 1<<16 {
		return nil, errs.New(errs.ErrCodeStructural, "too many generators: %d", len(gens))
	}

	size := len(gens[0].Perm)
	s := &GeneratorSet{
		gens:   make([]Generator, len(gens)),
		perms:  make([]Perm, 0, 2*len(gens)),
		byName: make(map[string]Letter, 2*len(gens)),
		size:   size,
	}
	for i, g := range gens {
		if len(g.Perm) != size {
			return nil, errs.New(errs.ErrCodeStructural,
				"generator %q acts on %d points, expected %d", g.Name, len(g.Perm), size)
		}
		if !g.Perm.Valid() {
			return nil, errs.New(errs.ErrCodeStructural, "generator %q is not a permutation", g.Name)
		}
		if err := errs.ValidateGeneratorName(g.Name); err != nil {
			return nil, errs.Wrap(errs.ErrCodeStructural, err, "generator %d", i)
		}
		if _, dup := s.byName[g.Name]; dup {
			return nil, errs.New(errs.ErrCodeStructural, "duplicate generator name %q", g.Name)
		}
		l := Letter(2 * i)
		s.byName[g.Name] = l
		s.byName["-"+g.Name] = l.Inverse()
		s.gens[i] = Generator{Name: g.Name, Perm: g.Perm.Clone()}
		s.perms = append(s.perms, s.gens[i].Perm, g.Perm.Inverse())
	}
	return s, nil
}

// NamedGenerators builds generators named prefix0, prefix1, ... from perms.
func NamedGenerators(prefix string, perms ...Perm) []Generator {
	out := make([]Generator, len(perms))
	for i, p := range perms {
		out[i] = Generator{Name: fmt.Sprintf("%s%d", prefix, i), Perm: p}
	}
	return out
}

// Size returns the domain size shared by all generators.
func (s *GeneratorSet) Size() int { return s.size }

// Len returns the number of generators, not counting inverses.
func (s *GeneratorSet) Len() int { return len(s.gens) }

// Generators returns a copy of the generators.
func (s *GeneratorSet) Generators() []Generator {
	return slices.Clone(s.gens)
}

// Perms returns the generator permutations without their inverses.
func (s *GeneratorSet) Perms() []Perm {
	out := make([]Perm, len(s.gens))
	for i, g := range s.gens {
		out[i] = g.Perm
	}
	return out
}

// Letters returns every letter in enumeration order: g0, g0⁻¹, g1, ...
func (s *GeneratorSet) Letters() []Letter {
	out := make([]Letter, len(s.perms))
	for i := range out {
		out[i] = Letter(i)
	}
	return out
}

// Perm returns the permutation addressed by l.
func (s *GeneratorSet) Perm(l Letter) Perm { return s.perms[l] }

// Elem returns the one-letter element for l.
func (s *GeneratorSet) Elem(l Letter) Elem {
	return Elem{Perm: s.perms[l], Word: Word{l}, Fresh: true}
}

// Name returns the move name of l, "-" prefixed for inverses.
func (s *GeneratorSet) Name(l Letter) string {
	name := s.gens[l.Generator()].Name
	if l.IsInverse() {
		return "-" + name
	}
	return name
}

// Letter looks up a move name as produced by Name.
func (s *GeneratorSet) Letter(name string) (Letter, bool) {
	l, ok := s.byName[name]
	return l, ok
}

// Replay returns the permutation produced by w starting from the identity.
func (s *GeneratorSet) Replay(w Word) Perm {
	p := Identity(s.size)
	for _, l := range w {
		p = Compose(s.perms[l], p)
	}
	return p
}

// Render prints w in puzzle notation, move names joined by ".".
func (s *GeneratorSet) Render(w Word) string {
	names := make([]string, len(w))
	for i, l := range w {
		names[i] = s.Name(l)
	}
	return strings.Join(names, ".")
}

// ParseWord parses the notation produced by Render.
func (s *GeneratorSet) ParseWord(text string) (Word, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Word{}, nil
	}
	parts := strings.Split(text, ".")
	w := make(Word, len(parts))
	for i, name := range parts {
		l, ok := s.byName[strings.TrimSpace(name)]
		if !ok {
			return nil, errs.New(errs.ErrCodeInvalidInput, "unknown move %q", name)
		}
		w[i] = l
	}
	return w, nil
}
