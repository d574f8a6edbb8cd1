package schreier

import (
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/shortword/pkg/errors"
	"github.com/matzehuels/shortword/pkg/perm"
)

// BaseOptions selects how FindBase obtains a base.
type BaseOptions struct {
	// Supplied, when non-nil, is returned as is after checking that its
	// points are distinct and in range. Bases from external geometry
	// helpers come in this way.
	Supplied []int

	// Random selects randomized Schreier-Sims seeded with Seed.
	Random     bool
	Seed       int64
	Confidence int

	Logger *log.Logger
}

// FindBase returns a base for the group generated by gens.
func FindBase(gens *perm.GeneratorSet, opts BaseOptions) ([]int, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	if opts.Supplied != nil {
		if err := ValidateBase(opts.Supplied, gens.Size()); err != nil {
			return nil, err
		}
		logger.Debug("using supplied base", "points", len(opts.Supplied))
		return append([]int(nil), opts.Supplied...), nil
	}

	var (
		chain *Chain
		err   error
	)
	if opts.Random {
		rng := rand.New(rand.NewSource(opts.Seed))
		chain, err = NewRandomChain(gens.Perms(), NewRandomSampler(gens.Perms(), rng), opts.Confidence)
	} else {
		chain, err = NewChain(gens.Perms())
	}
	if err != nil {
		return nil, err
	}

	logger.Debug("computed stabilizer chain",
		"random", opts.Random,
		"base", len(chain.Levels()),
		"order", chain.Order().String())
	return chain.Base(), nil
}

// ValidateBase checks that base consists of distinct points in [0, n).
func ValidateBase(base []int, n int) error {
	seen := make(map[int]bool, len(base))
	for _, b := range base {
		if b < 0 || b >= n {
			return errs.New(errs.ErrCodeStructural, "base point %d out of range [0,%d)", b, n)
		}
		if seen[b] {
			return errs.New(errs.ErrCodeStructural, "base point %d repeated", b)
		}
		seen[b] = true
	}
	return nil
}

// FormatBase renders a base as "."-joined point indices.
func FormatBase(base []int) string {
	parts := make([]string, len(base))
	for i, b := range base {
		parts[i] = strconv.Itoa(b)
	}
	return strings.Join(parts, ".")
}

// ParseBase parses the format written by FormatBase.
func ParseBase(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []int{}, nil
	}
	parts := strings.Split(s, ".")
	base := make([]int, len(parts))
	for i, p := range parts {
		b, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "parse base point %q", p)
		}
		base[i] = b
	}
	return base, nil
}

// LoadBase reads a base file.
func LoadBase(path string) ([]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodePersistence, err, "read base %s", path)
	}
	return ParseBase(string(data))
}

// SaveBase writes a base file.
func SaveBase(path string, base []int) error {
	if err := os.WriteFile(path, []byte(FormatBase(base)+"\n"), 0o644); err != nil {
		return errs.Wrap(errs.ErrCodePersistence, err, "write base %s", path)
	}
	return nil
}
