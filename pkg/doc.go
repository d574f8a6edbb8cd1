// Package pkg provides the core libraries for Shortword.
//
// # Overview
//
// Shortword writes states of permutation puzzles as short sequences of
// moves. It builds a short-word strong generating set: a table indexed by
// base point and orbit point whose cells hold a permutation together with
// the move sequence that produces it. Any reachable state then factorizes
// into one cell per row, and the table is grown and improved over many runs
// until its words are short.
//
// # Architecture
//
// The typical data flow:
//
//	Puzzle definition (TOML/YAML/JSON)
//	         ↓
//	    [pipeline] package (parse generators, pick base)
//	         ↓
//	    [schreier] package (Schreier-Sims base and orbit sizes)
//	         ↓
//	    [minkwitz] package (build and improve the table, walking [cayley])
//	         ↓
//	    [minkwitz.Factorize] or [colored.Search]
//	         ↓
//	    Move sequence
//
// # Quick Start
//
//	gens, _ := perm.NewGeneratorSet([]perm.Generator{
//	    {Name: "a", Perm: a},
//	    {Name: "b", Perm: b},
//	})
//	base, _ := schreier.FindBase(gens, schreier.BaseOptions{})
//
//	b, _ := minkwitz.NewBuilder(gens, base, minkwitz.Options{
//	    Rounds:     10000,
//	    OrbitSizes: minkwitz.OrbitSizes(gens, base),
//	})
//	b.Run(ctx)
//
//	word, _ := minkwitz.Factorize(b.Table(), target)
//	fmt.Println(gens.Render(word))
//
// # Main Packages
//
// ## Group Theory
//
// [perm] - Permutations, cycle notation, generator sets and words over
// generators and their inverses.
//
// [schreier] - Orbits with Schreier trees, and deterministic or randomized
// Schreier-Sims for finding a base.
//
// [cayley] - Explorers that enumerate group elements in shortest-word order
// (exact BFS, Bloom-filter bounded BFS, depth-limited DFS) and Cayley ball
// graphs rendered with Graphviz.
//
// ## Tables
//
// [minkwitz] - The short-word table: sifting, improvement passes, orbit
// filling, exact factorization and the zstd-compressed binary format.
//
// [colored] - Best-first search for words that reach a target up to a
// coloring of the points.
//
// ## Infrastructure
//
// [pipeline] - Definition parsing and the Runner that prepares puzzles,
// builds tables and solves targets with caching. Shared by the CLI and the
// HTTP server.
//
// [cache] - File, Redis and MongoDB caches for bases, tables and solutions.
//
// [metrics] - Prometheus collectors for the observability hooks.
//
// [observability] - Hook interfaces for builds, searches, cache and HTTP.
//
// [errors] - Coded errors mapped to exit statuses and HTTP statuses.
//
// [buildinfo] - Version information set at link time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/minkwitz/...           # Specific package
//	go test -run Example                 # Examples only
//
// [perm]: https://pkg.go.dev/github.com/matzehuels/shortword/pkg/perm
// [schreier]: https://pkg.go.dev/github.com/matzehuels/shortword/pkg/schreier
// [cayley]: https://pkg.go.dev/github.com/matzehuels/shortword/pkg/cayley
// [minkwitz]: https://pkg.go.dev/github.com/matzehuels/shortword/pkg/minkwitz
// [colored]: https://pkg.go.dev/github.com/matzehuels/shortword/pkg/colored
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/shortword/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/shortword/pkg/cache
// [metrics]: https://pkg.go.dev/github.com/matzehuels/shortword/pkg/metrics
// [observability]: https://pkg.go.dev/github.com/matzehuels/shortword/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/shortword/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/shortword/pkg/buildinfo
//
// [minkwitz.Factorize]: https://pkg.go.dev/github.com/matzehuels/shortword/pkg/minkwitz#Factorize
// [colored.Search]: https://pkg.go.dev/github.com/matzehuels/shortword/pkg/colored#Search
package pkg
