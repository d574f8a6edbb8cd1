package minkwitz

import (
	errs "github.com/matzehuels/shortword/pkg/errors"
	"github.com/matzehuels/shortword/pkg/perm"
)

// Factorize rewrites target as a word over the generators. It walks the
// rows once: at row i the residual sends base[i] to some column c, and the
// cell (i, c) strips it. The concatenated cell words replay to target.
//
// A missing cell yields an Incomplete error naming the row and column; a
// larger table or another base may succeed.
func Factorize(t *Table, target perm.Perm) (perm.Word, error) {
	if target.Size() != t.size {
		return nil, errs.New(errs.ErrCodeStructural,
			"target acts on %d points, table on %d", target.Size(), t.size)
	}

	residual := target.Inverse()
	var w perm.Word
	for i, b := range t.base {
		col := residual[b]
		e, ok := t.entries[Key{i, col}]
		if !ok {
			return nil, errs.New(errs.ErrCodeIncomplete, "no entry at row %d column %d", i, col)
		}
		residual = perm.Compose(e.Perm, residual)
		w = append(w, e.Word...)
	}
	if !residual.IsIdentity() {
		return nil, errs.New(errs.ErrCodeIncomplete,
			"residual %v remains after the last row; the base does not cover the group", residual)
	}
	return w, nil
}
