package minkwitz

import (
	"cmp"
	"fmt"
	"slices"

	errs "github.com/matzehuels/shortword/pkg/errors"
	"github.com/matzehuels/shortword/pkg/perm"
)

// Key addresses a table cell.
type Key struct {
	Row, Col int
}

// Table is a sparse short-word strong generating set. It is owned by one
// Builder while under construction; a finished table is read-only and
// safe for concurrent lookups.
type Table struct {
	base    []int
	size    int
	gens    int // generators the words are spelled over, 0 if unknown
	entries map[Key]perm.Elem
	rowLens []int

	// Processed counts explorer elements consumed by all runs so far.
	Processed int
	// Changes counts cell writes by all runs so far.
	Changes int
	// Limit is the word-length ceiling reached by the last run.
	Limit int
}

// NewTable returns a table for base on size points with every row seeded
// by the identity at (i, base[i]).
func NewTable(base []int, size int) *Table {
	t := &Table{
		base:    slices.Clone(base),
		size:    size,
		entries: make(map[Key]perm.Elem, 2*len(base)),
		rowLens: make([]int, len(base)),
	}
	for i, b := range base {
		t.entries[Key{i, b}] = perm.Elem{Perm: perm.Identity(size), Word: perm.Word{}, Fresh: true}
		t.rowLens[i] = 1
	}
	return t
}

// Base returns a copy of the base.
func (t *Table) Base() []int { return slices.Clone(t.base) }

// Rows returns the number of rows, the base length.
func (t *Table) Rows() int { return len(t.base) }

// Size returns the domain size.
func (t *Table) Size() int { return t.size }

// Generators returns the number of generators the cell words are spelled
// over, or 0 for a table that has never been built.
func (t *Table) Generators() int { return t.gens }

// Compatible reports whether t can be used with gens. The domain size and
// generator count must match, and a non-nil base must equal the table's.
func (t *Table) Compatible(gens *perm.GeneratorSet, base []int) error {
	if t.size != gens.Size() {
		return errs.New(errs.ErrCodeStructural,
			"table acts on %d points, generators on %d", t.size, gens.Size())
	}
	if t.gens != 0 && t.gens != gens.Len() {
		return errs.New(errs.ErrCodeStructural,
			"table is spelled over %d generators, puzzle has %d", t.gens, gens.Len())
	}
	if base != nil && !slices.Equal(t.base, base) {
		return errs.New(errs.ErrCodeStructural,
			"table base %v differs from puzzle base %v", t.base, base)
	}
	return nil
}

// Len returns the number of populated cells.
func (t *Table) Len() int { return len(t.entries) }

// Get returns the cell at (row, col).
func (t *Table) Get(row, col int) (perm.Elem, bool) {
	e, ok := t.entries[Key{row, col}]
	return e, ok
}

func (t *Table) set(k Key, e perm.Elem) {
	if _, ok := t.entries[k]; !ok {
		t.rowLens[k.Row]++
	}
	e.Fresh = true
	t.entries[k] = e
	t.Changes++
}

// RowLen returns the number of populated cells in row.
func (t *Table) RowLen(row int) int { return t.rowLens[row] }

// Keys returns every populated key ordered by row, then column.
func (t *Table) Keys() []Key {
	keys := make([]Key, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys)
	return keys
}

// rowKeys returns the populated keys of row in column order.
func (t *Table) rowKeys(row int) []Key {
	var keys []Key
	for k := range t.entries {
		if k.Row == row {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, compareKeys)
	return keys
}

// keysByRow groups the populated keys by row, each in column order.
func (t *Table) keysByRow() [][]Key {
	rows := make([][]Key, len(t.base))
	for _, k := range t.Keys() {
		rows[k.Row] = append(rows[k.Row], k)
	}
	return rows
}

func compareKeys(a, b Key) int {
	if c := cmp.Compare(a.Row, b.Row); c != 0 {
		return c
	}
	return cmp.Compare(a.Col, b.Col)
}

// Full reports whether every row covers its whole basic orbit. orbitSizes
// must be the basic orbit sizes for this table's base.
func (t *Table) Full(orbitSizes []int) bool {
	return slices.Equal(t.rowLens, orbitSizes)
}

// Stats summarizes word lengths across the table.
type Stats struct {
	Cells   int
	MaxWord int
	SumWord int
	RowLens []int
}

// Stats returns word-length statistics.
func (t *Table) Stats() Stats {
	s := Stats{Cells: len(t.entries), RowLens: slices.Clone(t.rowLens)}
	for _, e := range t.entries {
		s.SumWord += e.Len()
		s.MaxWord = max(s.MaxWord, e.Len())
	}
	return s
}

// Check verifies the row invariant on every cell: the stored permutation
// sends the column to its row's base point and fixes every earlier base
// point. With gens non-nil it also checks that each word replays to its
// permutation.
func (t *Table) Check(gens *perm.GeneratorSet) error {
	for _, k := range t.Keys() {
		e := t.entries[k]
		if err := t.checkCell(k, e, gens); err != nil {
			return errs.Wrap(errs.ErrCodeInternal, err, "cell (%d,%d)", k.Row, k.Col)
		}
	}
	return nil
}

func (t *Table) checkCell(k Key, e perm.Elem, gens *perm.GeneratorSet) error {
	if gens != nil {
		for _, l := range e.Word {
			if int(l) >= 2*gens.Len() {
				return fmt.Errorf("letter %d outside %d generators", l, gens.Len())
			}
		}
	}
	if k.Row < 0 || k.Row >= len(t.base) || k.Col < 0 || k.Col >= t.size {
		return fmt.Errorf("key out of range")
	}
	if e.Perm.Size() != t.size || !e.Perm.Valid() {
		return fmt.Errorf("malformed permutation %v", e.Perm)
	}
	if got := e.Perm[k.Col]; got != t.base[k.Row] {
		return fmt.Errorf("maps column %d to %d, want base point %d", k.Col, got, t.base[k.Row])
	}
	for i := 0; i < k.Row; i++ {
		if b := t.base[i]; e.Perm[b] != b {
			return fmt.Errorf("moves base point %d (row %d)", b, i)
		}
	}
	if gens != nil && !gens.Replay(e.Word).Equal(e.Perm) {
		return fmt.Errorf("word %s does not replay to %v", gens.Render(e.Word), e.Perm)
	}
	return nil
}
