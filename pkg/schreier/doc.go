// Package schreier computes bases and stabilizer chains of permutation
// groups with the Schreier-Sims algorithm.
//
// A base is a sequence of points whose joint stabilizer is trivial. The
// short-word table builder needs one row per base point, so this package
// is the first step of every table build:
//
//	chain, err := schreier.NewChain(gens.Perms())
//	base := chain.Base()
//	order := chain.Order() // *big.Int
//
// For large groups the randomized variant sifts sampled elements and stops
// after a run of trivial residues:
//
//	rng := rand.New(rand.NewSource(seed))
//	chain, err := schreier.NewRandomChain(gens.Perms(), schreier.NewRandomSampler(gens.Perms(), rng), 32)
//
// The randomized chain may miss part of the group with low probability; the
// base it returns is still a set of distinct points and the table builder
// accepts any base.
package schreier
