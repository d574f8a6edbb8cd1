package pipeline

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/shortword/pkg/cache"
	"github.com/matzehuels/shortword/pkg/colored"
	errs "github.com/matzehuels/shortword/pkg/errors"
	"github.com/matzehuels/shortword/pkg/perm"
)

// Definition formats accepted by ParseDefinition.
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

// Definition describes a puzzle: its domain size, named generators in
// 0-indexed cycle notation, an optional base and an optional goal
// coloring.
//
//	name = "pocket"
//	size = 24
//	goal = "W;W;W;W;R;R;R;R;..."
//
//	[[generators]]
//	name = "f"
//	cycles = "(0,1,3,2)(4,16,15,9)(5,18,14,7)"
type Definition struct {
	Name       string          `toml:"name" yaml:"name" json:"name"`
	Size       int             `toml:"size" yaml:"size" json:"size"`
	Generators []GeneratorSpec `toml:"generators" yaml:"generators" json:"generators"`
	Base       []int           `toml:"base,omitempty" yaml:"base,omitempty" json:"base,omitempty"`
	// Goal lists one label per point separated by ';'. Points sharing a
	// label form a color class.
	Goal string `toml:"goal,omitempty" yaml:"goal,omitempty" json:"goal,omitempty"`
}

// GeneratorSpec is one named move.
type GeneratorSpec struct {
	Name   string `toml:"name" yaml:"name" json:"name"`
	Cycles string `toml:"cycles" yaml:"cycles" json:"cycles"`
}

// LoadDefinition reads a definition file; the format follows the
// extension (.toml, .yaml, .yml).
func LoadDefinition(path string) (*Definition, error) {
	if err := errs.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errs.Wrap(errs.ErrCodeNotFound, err, "definition %s", path)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read definition %s", path)
	}
	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	def, err := ParseDefinition(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if def.Name == "" {
		def.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return def, def.Validate()
}

func formatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", errs.New(errs.ErrCodeUnsupported, "unknown definition format %q (use .toml or .yaml)", filepath.Ext(path))
	}
}

// ParseDefinition decodes a definition without validating it.
func ParseDefinition(data []byte, format string) (*Definition, error) {
	var def Definition
	switch format {
	case FormatTOML:
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&def)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode toml")
		}
		if undec := md.Undecoded(); len(undec) > 0 {
			return nil, errs.New(errs.ErrCodeInvalidInput, "unknown key %q", undec[0].String())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode yaml")
		}
	default:
		return nil, errs.New(errs.ErrCodeUnsupported, "unknown definition format %q", format)
	}
	return &def, nil
}

// Validate checks names, the goal length and the base. Generator
// permutations are checked by GeneratorSet.
func (d *Definition) Validate() error {
	if err := errs.ValidateDefinitionName(d.Name); err != nil {
		return err
	}
	if d.Size <= 0 {
		return errs.New(errs.ErrCodeInvalidInput, "definition %s: size must be positive", d.Name)
	}
	if len(d.Generators) == 0 {
		return errs.New(errs.ErrCodeStructural, "definition %s has no generators", d.Name)
	}
	if d.Goal != "" {
		if n := len(colored.ParseLabels(d.Goal)); n != d.Size {
			return errs.New(errs.ErrCodeInvalidInput,
				"definition %s: goal has %d labels, want %d", d.Name, n, d.Size)
		}
	}
	return nil
}

// GeneratorSet parses the generator cycles.
func (d *Definition) GeneratorSet() (*perm.GeneratorSet, error) {
	gens := make([]perm.Generator, 0, len(d.Generators))
	for _, g := range d.Generators {
		p, err := perm.ParseCycles(g.Cycles, d.Size)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeStructural, err, "generator %q", g.Name)
		}
		gens = append(gens, perm.Generator{Name: g.Name, Perm: p})
	}
	return perm.NewGeneratorSet(gens)
}

// Classes returns the goal coloring, or singletons when no goal is set.
func (d *Definition) Classes() *colored.Classes {
	if d.Goal == "" {
		return colored.Singletons(d.Size)
	}
	return colored.ClassesFromLabels(colored.ParseLabels(d.Goal))
}

// Hash identifies the group presentation: size plus generator names and
// permutations. Definition names and goals do not contribute, so renamed
// copies share cached tables.
func (d *Definition) Hash(gens *perm.GeneratorSet) string {
	parts := []string{strconv.Itoa(gens.Size())}
	for _, g := range gens.Generators() {
		parts = append(parts, g.Name, g.Perm.Key())
	}
	return cache.HashStrings(parts...)
}

// ParseTarget reads a permutation either in cycle notation ("(0,1)(2,3)")
// or as a list of images ("1 0 3 2" or "1,0,3,2").
func ParseTarget(s string, n int) (perm.Perm, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "(") {
		p, err := perm.ParseCycles(s, n)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "target")
		}
		return p, nil
	}
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	if len(fields) != n {
		return nil, errs.New(errs.ErrCodeInvalidInput, "target has %d images, want %d", len(fields), n)
	}
	img := make([]int, n)
	for i, f := range fields {
		x, err := strconv.Atoi(f)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "target image %d", i)
		}
		img[i] = x
	}
	p, err := perm.New(img)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "target")
	}
	return p, nil
}
