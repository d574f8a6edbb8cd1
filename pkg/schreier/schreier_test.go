package schreier

import (
	"fmt"
	"math/big"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/shortword/pkg/cayley"
	errs "github.com/matzehuels/shortword/pkg/errors"
	"github.com/matzehuels/shortword/pkg/perm"
)

func eightPoint() []perm.Perm {
	return []perm.Perm{
		perm.MustParseCycles("(0,4,6)(1,5,7)", 8),
		perm.MustParseCycles("(0,4)(2,3,7,1)", 8),
	}
}

func cube2() []perm.Perm {
	cycles := []string{
		"(8,9,11,10)(2,12,21,7)(3,14,20,5)",
		"(16,17,19,18)(0,6,23,13)(1,4,22,15)",
		"(0,1,3,2)(8,4,16,12)(9,5,17,13)",
		"(20,21,23,22)(10,14,18,6)(11,15,19,7)",
		"(4,5,7,6)(8,20,19,0)(10,22,17,2)",
		"(12,13,15,14)(9,1,18,21)(11,3,16,23)",
	}
	out := make([]perm.Perm, len(cycles))
	for i, c := range cycles {
		out[i] = perm.MustParseCycles(c, 24)
	}
	return out
}

func TestOrbit(t *testing.T) {
	gens := eightPoint()
	tr := Orbit(0, gens)
	if tr.Len() != 8 {
		t.Fatalf("orbit of 0 has %d points, want 8", tr.Len())
	}
	for _, x := range tr.Orbit {
		u, ok := tr.Rep(x)
		if !ok {
			t.Fatalf("no representative for %d", x)
		}
		if u[0] != x {
			t.Errorf("Rep(%d) maps 0 to %d", x, u[0])
		}
	}
}

func TestStabilizerGeneratorsFixAlpha(t *testing.T) {
	for alpha := 0; alpha < 8; alpha++ {
		sgs := StabilizerGenerators(alpha, eightPoint())
		if len(sgs) == 0 {
			t.Fatalf("alpha %d: no stabilizer generators", alpha)
		}
		seen := make(map[string]bool)
		for _, s := range sgs {
			if s[alpha] != alpha {
				t.Errorf("alpha %d: generator %v moves alpha", alpha, s)
			}
			if s.IsIdentity() {
				t.Errorf("alpha %d: identity generator returned", alpha)
			}
			if seen[s.Key()] {
				t.Errorf("alpha %d: duplicate generator %v", alpha, s)
			}
			seen[s.Key()] = true
		}
	}
}

func TestStabilizerGeneratorsTerminal(t *testing.T) {
	if got := StabilizerGenerators(0, nil); got != nil {
		t.Errorf("empty generators gave %v", got)
	}
	mixed := []perm.Perm{perm.Identity(3), perm.Identity(4)}
	if got := StabilizerGenerators(0, mixed); got != nil {
		t.Errorf("mismatched sizes gave %v", got)
	}
}

func TestChainOrder(t *testing.T) {
	tests := []struct {
		name    string
		gens    []perm.Perm
		order   int64
		baseLen int
	}{
		{"symmetric 3", []perm.Perm{perm.MustParseCycles("(0,1)", 3), perm.MustParseCycles("(1,2)", 3)}, 6, 2},
		{"symmetric 5", []perm.Perm{perm.MustParseCycles("(0,1)", 5), perm.MustParseCycles("(0,1,2,3,4)", 5)}, 120, 4},
		{"eight point", eightPoint(), 360, 5},
		{"cube 2x2x2", cube2(), 88179840, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewChain(tt.gens)
			if err != nil {
				t.Fatalf("NewChain: %v", err)
			}
			if c.Order().Cmp(big.NewInt(tt.order)) != 0 {
				t.Errorf("Order() = %s, want %d", c.Order(), tt.order)
			}
			if got := len(c.Base()); got != tt.baseLen {
				t.Errorf("base length = %d, want %d", got, tt.baseLen)
			}
			for _, g := range tt.gens {
				if !c.Contains(g) {
					t.Errorf("chain does not contain generator %v", g)
				}
			}
		})
	}
}

func TestChainBaseIsBase(t *testing.T) {
	gens := eightPoint()
	c, err := NewChain(gens)
	if err != nil {
		t.Fatal(err)
	}
	base := c.Base()

	// Every group element fixing the whole base is the identity.
	for _, e := range cayley.Take(cayley.NewBFS(mustSet(t, gens)), 0) {
		fixes := true
		for _, b := range base {
			if e.Perm[b] != b {
				fixes = false
				break
			}
		}
		if fixes && !e.Perm.IsIdentity() {
			t.Fatalf("%v fixes base %v", e.Perm, base)
		}
	}
}

func TestChainRejectsOutsiders(t *testing.T) {
	c, err := NewChain(eightPoint())
	if err != nil {
		t.Fatal(err)
	}
	// The group has order 360 < 8!, so some transposition is missing.
	outside := 0
	for i := 1; i < 8; i++ {
		if !c.Contains(perm.MustParseCycles(fmt.Sprintf("(0,%d)", i), 8)) {
			outside++
		}
	}
	if outside == 0 {
		t.Error("every transposition (0,i) reported as a member")
	}
	if c.Contains(perm.Identity(5)) {
		t.Error("wrong size permutation reported as member")
	}
}

func TestNewChainErrors(t *testing.T) {
	_, err := NewChain([]perm.Perm{perm.Identity(3), perm.Identity(4)})
	if !errs.Is(err, errs.ErrCodeStructural) {
		t.Errorf("NewChain size mismatch error = %v", err)
	}

	c, err := NewChain(nil)
	if err != nil {
		t.Fatalf("NewChain(nil): %v", err)
	}
	if len(c.Base()) != 0 || c.Order().Int64() != 1 {
		t.Errorf("empty chain: base %v order %s", c.Base(), c.Order())
	}
}

func TestRandomChain(t *testing.T) {
	gens := cube2()
	rng := rand.New(rand.NewSource(42))
	c, err := NewRandomChain(gens, NewRandomSampler(gens, rng), 64)
	if err != nil {
		t.Fatal(err)
	}
	if err := ValidateBase(c.Base(), 24); err != nil {
		t.Fatalf("random base invalid: %v", err)
	}
	// A randomized chain never overestimates.
	if c.Order().Cmp(big.NewInt(88179840)) > 0 {
		t.Errorf("Order() = %s exceeds true order", c.Order())
	}
	for _, g := range gens {
		if !c.Contains(g) {
			t.Errorf("random chain misses generator %v", g)
		}
	}
}

func TestRandomChainDeterministicSeed(t *testing.T) {
	gens := eightPoint()
	run := func() []int {
		rng := rand.New(rand.NewSource(7))
		c, err := NewRandomChain(gens, NewRandomSampler(gens, rng), 16)
		if err != nil {
			t.Fatal(err)
		}
		return c.Base()
	}
	if diff := cmp.Diff(run(), run()); diff != "" {
		t.Errorf("same seed gave different bases (-first +second):\n%s", diff)
	}
}

func TestExplorerSampler(t *testing.T) {
	gens := eightPoint()
	s := NewExplorerSampler(cayley.NewBFS(mustSet(t, gens)), 8)
	c, err := NewRandomChain(gens, s, 400)
	if err != nil {
		t.Fatal(err)
	}
	if c.Order().Int64() != 360 {
		t.Errorf("explorer sampled chain order = %s, want 360", c.Order())
	}
}

func TestFindBase(t *testing.T) {
	set := mustSet(t, eightPoint())

	base, err := FindBase(set, BaseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{0, 1, 2, 3, 4}, base); diff != "" {
		t.Errorf("deterministic base mismatch (-want +got):\n%s", diff)
	}

	supplied := []int{7, 6, 5, 4, 3, 2, 1, 0}
	got, err := FindBase(set, BaseOptions{Supplied: supplied})
	if err != nil || !cmp.Equal(got, supplied) {
		t.Errorf("supplied base = %v, %v", got, err)
	}

	if _, err := FindBase(set, BaseOptions{Supplied: []int{0, 0}}); err == nil {
		t.Error("repeated supplied base point should fail")
	}
}

func TestBaseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.base")
	base := []int{2, 0, 1, 6, 7, 11, 3}
	if err := SaveBase(path, base); err != nil {
		t.Fatal(err)
	}
	got, err := LoadBase(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(base, got); diff != "" {
		t.Errorf("base round trip (-want +got):\n%s", diff)
	}
	if FormatBase(base) != "2.0.1.6.7.11.3" {
		t.Errorf("FormatBase = %q", FormatBase(base))
	}
	if _, err := ParseBase("1.x"); err == nil {
		t.Error("ParseBase should reject non-numbers")
	}
}

func TestOrbitToDOT(t *testing.T) {
	dot := Orbit(0, eightPoint()).ToDOT([]string{"a", "b"})
	if !strings.Contains(dot, "digraph Orbit") || !strings.Contains(dot, `label="a"`) {
		t.Errorf("unexpected DOT:\n%s", dot)
	}
}

func mustSet(t *testing.T, gens []perm.Perm) *perm.GeneratorSet {
	t.Helper()
	set, err := perm.NewGeneratorSet(perm.NamedGenerators("g", gens...))
	if err != nil {
		t.Fatal(err)
	}
	return set
}
