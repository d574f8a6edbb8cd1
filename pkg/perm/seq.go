package perm

import "slices"

// Seq returns the sequence [0, 1, ..., n-1]. For n <= 0 it returns an
// empty slice.
func Seq(n int) []int {
	if n <= 0 {
		return []int{}
	}
	result := make([]int, n)
	for i := range result {
		result[i] = i
	}
	return result
}

// Factorial returns n!, the order of the full symmetric group on n points.
// For n <= 1 it returns 1. The result overflows int for n > 20.
func Factorial(n int) int {
	result := 1
	for i := 2; i <= n; i++ {
		result *= i
	}
	return result
}

// Symmetric returns every element of the symmetric group on n points, in
// the order produced by Heap's algorithm. If limit > 0 at most limit
// permutations are returned.
//
// Intended for brute-force cross checks on small domains. Always pass a
// limit for n above 10.
func Symmetric(n, limit int) []Perm {
	if n <= 0 {
		return []Perm{{}}
	}

	cur := Seq(n)
	state := make([]int, n)

	capacity := limit
	if capacity <= 0 || n <= 10 {
		capacity = Factorial(min(n, 10))
	}
	result := make([]Perm, 0, capacity)
	result = append(result, slices.Clone(cur))

	for i := 0; i < n && (limit <= 0 || len(result) < limit); {
		if state[i] < i {
			if i&1 == 0 {
				cur[0], cur[i] = cur[i], cur[0]
			} else {
				cur[state[i]], cur[i] = cur[i], cur[state[i]]
			}
			result = append(result, slices.Clone(cur))
			state[i]++
			i = 0
		} else {
			state[i] = 0
			i++
		}
	}
	return result
}
