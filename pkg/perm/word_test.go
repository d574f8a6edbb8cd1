package perm

import (
	"math/rand"
	"testing"

	errs "github.com/matzehuels/shortword/pkg/errors"
)

func eightPoint(t *testing.T) *GeneratorSet {
	t.Helper()
	gens, err := NewGeneratorSet([]Generator{
		{Name: "a", Perm: MustParseCycles("(0,4,6)(1,5,7)", 8)},
		{Name: "b", Perm: MustParseCycles("(0,4)(2,3,7,1)", 8)},
	})
	if err != nil {
		t.Fatalf("NewGeneratorSet: %v", err)
	}
	return gens
}

func TestNewGeneratorSetErrors(t *testing.T) {
	tests := []struct {
		name string
		gens []Generator
	}{
		{"empty", nil},
		{"size mismatch", []Generator{{Name: "a", Perm: Identity(3)}, {Name: "b", Perm: Identity(4)}}},
		{"malformed", []Generator{{Name: "a", Perm: Perm{0, 0}}}},
		{"duplicate name", []Generator{{Name: "a", Perm: Identity(2)}, {Name: "a", Perm: Identity(2)}}},
		{"bad name", []Generator{{Name: "-a", Perm: Identity(2)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGeneratorSet(tt.gens)
			if !errs.Is(err, errs.ErrCodeStructural) {
				t.Errorf("NewGeneratorSet error = %v, want STRUCTURAL_FAILURE", err)
			}
		})
	}
}

func TestLetterEncoding(t *testing.T) {
	gens := eightPoint(t)
	letters := gens.Letters()
	if len(letters) != 4 {
		t.Fatalf("Letters() = %d, want 4", len(letters))
	}
	for _, l := range letters {
		if !Compose(gens.Perm(l), gens.Perm(l.Inverse())).IsIdentity() {
			t.Errorf("letter %d and its inverse do not cancel", l)
		}
	}
	if gens.Name(1) != "-a" || gens.Name(2) != "b" {
		t.Errorf("names = %q %q", gens.Name(1), gens.Name(2))
	}
}

func TestReplay(t *testing.T) {
	gens := eightPoint(t)
	a, b := gens.Perm(0), gens.Perm(2)

	// a then b: b∘a.
	got := gens.Replay(Word{0, 2})
	if !got.Equal(Compose(b, a)) {
		t.Errorf("Replay(a.b) = %v, want %v", got, Compose(b, a))
	}
	if !gens.Replay(nil).IsIdentity() {
		t.Error("empty word should replay to identity")
	}
}

func TestWordInverse(t *testing.T) {
	gens := eightPoint(t)
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		w := make(Word, rng.Intn(12))
		for i := range w {
			w[i] = Letter(rng.Intn(4))
		}
		p := gens.Replay(w)
		if !gens.Replay(w.Inverse()).Equal(p.Inverse()) {
			t.Fatalf("inverse word of %v does not replay to inverse", w)
		}
	}
}

func TestElemCompose(t *testing.T) {
	gens := eightPoint(t)
	x := gens.Elem(0).Compose(gens.Elem(2))
	if !gens.Replay(x.Word).Equal(x.Perm) {
		t.Errorf("composed word %v does not replay to %v", x.Word, x.Perm)
	}
	inv := x.Inverse()
	if !gens.Replay(inv.Word).Equal(inv.Perm) {
		t.Errorf("inverse word %v does not replay to %v", inv.Word, inv.Perm)
	}
}

func TestRenderParseWord(t *testing.T) {
	gens := eightPoint(t)
	w := Word{0, 3, 2, 1}
	text := gens.Render(w)
	if text != "a.-b.b.-a" {
		t.Errorf("Render = %q", text)
	}
	back, err := gens.ParseWord(text)
	if err != nil {
		t.Fatalf("ParseWord: %v", err)
	}
	if len(back) != len(w) {
		t.Fatalf("ParseWord length %d, want %d", len(back), len(w))
	}
	for i := range w {
		if back[i] != w[i] {
			t.Errorf("letter %d = %d, want %d", i, back[i], w[i])
		}
	}
	if _, err := gens.ParseWord("a.c"); err == nil {
		t.Error("unknown move should fail")
	}
}
