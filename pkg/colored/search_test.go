package colored

import (
	"context"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/shortword/pkg/cayley"
	errs "github.com/matzehuels/shortword/pkg/errors"
	"github.com/matzehuels/shortword/pkg/minkwitz"
	"github.com/matzehuels/shortword/pkg/perm"
)

func eightPoint(t *testing.T) *perm.GeneratorSet {
	t.Helper()
	gens, err := perm.NewGeneratorSet([]perm.Generator{
		{Name: "a", Perm: perm.MustParseCycles("(0,4,6)(1,5,7)", 8)},
		{Name: "b", Perm: perm.MustParseCycles("(0,4)(2,3,7,1)", 8)},
	})
	if err != nil {
		t.Fatal(err)
	}
	return gens
}

func fullTable(t *testing.T, gens *perm.GeneratorSet) *minkwitz.Table {
	t.Helper()
	base := []int{0, 1, 2, 3, 4}
	b, err := minkwitz.NewBuilder(gens, base, minkwitz.Options{
		Rounds:       1000,
		ImproveEvery: 60,
		MaxWordLen:   40,
		OrbitSizes:   minkwitz.OrbitSizes(gens, base),
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	return b.Table()
}

// partialTable stops the builder after rounds explorer elements, before
// any improvement pass.
func partialTable(t *testing.T, gens *perm.GeneratorSet, base []int, rounds int) *minkwitz.Table {
	t.Helper()
	b, err := minkwitz.NewBuilder(gens, base, minkwitz.Options{
		Rounds:       rounds,
		ImproveEvery: 1000,
		MaxWordLen:   20,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	return b.Table()
}

func TestClassesFromLabels(t *testing.T) {
	c := ClassesFromLabels(ParseLabels("a;b;a;b"))
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if diff := cmp.Diff([]int{0, 2}, c.Members(c.Of(0))); diff != "" {
		t.Errorf("class of 0 (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 3}, c.Members(c.Of(3))); diff != "" {
		t.Errorf("class of 3 (-want +got):\n%s", diff)
	}
	if !c.Preserves(perm.MustParseCycles("(0,2)(1,3)", 4)) {
		t.Error("(0,2)(1,3) keeps both classes in place")
	}
	if c.Preserves(perm.MustParseCycles("(0,1)", 4)) {
		t.Error("(0,1) mixes the classes")
	}
}

func TestNewClassesErrors(t *testing.T) {
	if _, err := NewClasses(4, [][]int{{0, 1}, {1, 2}}); err == nil {
		t.Error("overlapping classes accepted")
	}
	if _, err := NewClasses(4, [][]int{{0, 4}}); err == nil {
		t.Error("out of range point accepted")
	}
	c, err := NewClasses(4, [][]int{{0, 3}})
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 3 {
		t.Errorf("uncovered points should become singletons, got %d classes", c.Len())
	}
}

func TestSearchSingletonsIsExact(t *testing.T) {
	gens := eightPoint(t)
	table := fullTable(t, gens)
	classes := Singletons(8)

	for _, e := range cayley.Take(cayley.NewBFS(gens), 60) {
		res, err := Search(context.Background(), table, e.Perm, classes, Options{})
		if err != nil {
			t.Fatalf("Search(%v): %v", e.Perm, err)
		}
		if got := gens.Replay(res.Word); !got.Equal(e.Perm) {
			t.Fatalf("word %s replays to %v, want %v", gens.Render(res.Word), got, e.Perm)
		}
	}
}

func TestSearchColoredReplay(t *testing.T) {
	gens := eightPoint(t)
	table := fullTable(t, gens)
	classes := ClassesFromLabels(ParseLabels("A;B;C;D;A;B;C;D"))
	group := cayley.Take(cayley.NewBFS(gens), 0)

	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 40; trial++ {
		target := group[rng.Intn(len(group))].Perm
		res, err := Search(context.Background(), table, target, classes, Options{MaxSteps: 5000})
		if err != nil {
			t.Fatalf("Search(%v): %v", target, err)
		}
		residual := perm.Compose(target.Inverse(), gens.Replay(res.Word))
		if !classes.Preserves(residual) {
			t.Fatalf("residual %v of word %s leaves a class", residual, gens.Render(res.Word))
		}
		if !residual.Equal(res.Residual) {
			t.Errorf("reported residual %v, recomputed %v", res.Residual, residual)
		}

		exact, err := minkwitz.Factorize(table, target)
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Word) > len(exact) {
			t.Errorf("colored word length %d exceeds exact length %d", len(res.Word), len(exact))
		}
	}
}

func TestSearchIdentityTarget(t *testing.T) {
	gens := eightPoint(t)
	table := fullTable(t, gens)
	classes := ClassesFromLabels(ParseLabels("x;x;y;y;z;z;w;w"))

	res, err := Search(context.Background(), table, perm.Identity(8), classes, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Word) != 0 {
		t.Errorf("identity target produced word of length %d", len(res.Word))
	}
	if !classes.Preserves(gens.Replay(res.Word)) {
		t.Error("replay of the word does not preserve classes")
	}
}

func TestSearchExhausted(t *testing.T) {
	gens := eightPoint(t)
	table := fullTable(t, gens)

	_, err := Search(context.Background(), table, gens.Perm(0), Singletons(8), Options{MaxSteps: 1})
	if !errs.Is(err, errs.ErrCodeExhausted) {
		t.Errorf("Search error = %v, want EXHAUSTED", err)
	}
}

func TestSearchIncompleteTable(t *testing.T) {
	gens := eightPoint(t)
	table := minkwitz.NewTable([]int{0, 1, 2, 3, 4}, 8)

	_, err := Search(context.Background(), table, gens.Perm(0), Singletons(8), Options{})
	if !errs.Is(err, errs.ErrCodeIncomplete) {
		t.Errorf("Search error = %v, want INCOMPLETE", err)
	}
}

func TestSearchSizeMismatch(t *testing.T) {
	table := minkwitz.NewTable([]int{0}, 3)
	_, err := Search(context.Background(), table, perm.Identity(4), Singletons(4), Options{})
	if !errs.Is(err, errs.ErrCodeStructural) {
		t.Errorf("Search error = %v, want STRUCTURAL_FAILURE", err)
	}
}

func TestSearchBridgesMissingCell(t *testing.T) {
	gens, err := perm.NewGeneratorSet([]perm.Generator{
		{Name: "a", Perm: perm.MustParseCycles("(0,1)", 3)},
		{Name: "b", Perm: perm.MustParseCycles("(1,2)", 3)},
	})
	if err != nil {
		t.Fatal(err)
	}
	// Three rounds sift the identity, a and b: row 0 gets column 1 and row 1
	// gets column 2, while (0,2) stays empty.
	table := partialTable(t, gens, []int{0, 1}, 3)
	if _, ok := table.Get(0, 2); ok {
		t.Fatal("cell (0,2) should be empty after three rounds")
	}
	for _, k := range []minkwitz.Key{{Row: 0, Col: 1}, {Row: 1, Col: 2}} {
		if _, ok := table.Get(k.Row, k.Col); !ok {
			t.Fatalf("cell %v should be filled after three rounds", k)
		}
	}

	target := perm.MustParseCycles("(0,2)", 3)
	if _, err := minkwitz.Factorize(table, target); !errs.Is(err, errs.ErrCodeIncomplete) {
		t.Fatalf("Factorize error = %v, want INCOMPLETE", err)
	}

	res, err := Search(context.Background(), table, target, Singletons(3), Options{})
	if err != nil {
		t.Fatalf("Search through (1,2) and (0,1): %v", err)
	}
	if got := gens.Replay(res.Word); !got.Equal(target) {
		t.Errorf("word %s replays to %v, want %v", gens.Render(res.Word), got, target)
	}

	classes := ClassesFromLabels(ParseLabels("x;y;x"))
	res, err = Search(context.Background(), table, perm.MustParseCycles("(0,2,1)", 3), classes, Options{})
	if err != nil {
		t.Fatalf("colored Search: %v", err)
	}
	residual := perm.Compose(perm.MustParseCycles("(0,1,2)", 3), gens.Replay(res.Word))
	if !classes.Preserves(residual) {
		t.Errorf("residual %v of word %s leaves a class", residual, gens.Render(res.Word))
	}
}

func TestSearchNeverWorseThanExact(t *testing.T) {
	gens := eightPoint(t)
	table := partialTable(t, gens, []int{0, 1, 2, 3, 4}, 40)
	classes := Singletons(8)

	solvable := 0
	for _, e := range cayley.Take(cayley.NewBFS(gens), 0) {
		exact, err := minkwitz.Factorize(table, e.Perm)
		if err != nil {
			continue
		}
		solvable++
		res, err := Search(context.Background(), table, e.Perm, classes, Options{})
		if err != nil {
			t.Fatalf("Search(%v) failed although Factorize succeeds: %v", e.Perm, err)
		}
		if got := gens.Replay(res.Word); !got.Equal(e.Perm) {
			t.Fatalf("word %s replays to %v, want %v", gens.Render(res.Word), got, e.Perm)
		}
		if len(res.Word) > len(exact) {
			t.Errorf("Search(%v) length %d exceeds exact length %d", e.Perm, len(res.Word), len(exact))
		}
	}
	if solvable < 2 {
		t.Fatalf("partial table factorizes only %d elements", solvable)
	}
}

func TestResidualIndexSeparatesCollisions(t *testing.T) {
	ix := make(residualIndex[int])
	p := perm.MustParseCycles("(0,1)", 3)
	q := perm.MustParseCycles("(1,2)", 3)

	// Force both permutations into one bucket.
	ix.put(7, p, 1)
	if _, ok := ix.get(7, q); ok {
		t.Fatal("a different permutation in the same bucket was reported present")
	}
	ix.put(7, q, 2)
	ix.put(7, p, 3)

	if v, ok := ix.get(7, p); !ok || v != 3 {
		t.Errorf("get(p) = %d, %v, want 3, true", v, ok)
	}
	if v, ok := ix.get(7, q); !ok || v != 2 {
		t.Errorf("get(q) = %d, %v, want 2, true", v, ok)
	}
	if len(ix[7]) != 2 {
		t.Errorf("bucket holds %d entries, want 2", len(ix[7]))
	}
}
