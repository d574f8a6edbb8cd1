package perm_test

import (
	"fmt"

	"github.com/matzehuels/shortword/pkg/perm"
)

func ExampleCompose() {
	a := perm.MustParseCycles("(0,1,2)", 3)
	b := perm.MustParseCycles("(0,1)", 3)
	fmt.Println(perm.Compose(a, b))
	// Output:
	// (0,2)
}

func ExamplePerm_Info() {
	p := perm.MustParseCycles("(0,4)(2,3,7,1)", 8)
	info := p.Info()
	fmt.Println("cycles:", info.Cycles)
	fmt.Println("even:", info.Even)
	// Output:
	// cycles: [[0 4] [1 2 3 7]]
	// even: true
}

func ExampleGeneratorSet_Render() {
	gens, _ := perm.NewGeneratorSet([]perm.Generator{
		{Name: "f0", Perm: perm.MustParseCycles("(0,1)", 3)},
		{Name: "f1", Perm: perm.MustParseCycles("(1,2)", 3)},
	})
	w, _ := gens.ParseWord("f0.-f1.f0")
	fmt.Println(gens.Render(w))
	fmt.Println(gens.Replay(w))
	// Output:
	// f0.-f1.f0
	// (0,2)
}
