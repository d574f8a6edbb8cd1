package minkwitz

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	errs "github.com/matzehuels/shortword/pkg/errors"
	"github.com/matzehuels/shortword/pkg/perm"
	"github.com/matzehuels/shortword/pkg/schreier"
)

// Binary layout, little endian:
//
//	magic "SWT1", version u16
//	size u32, generators u32, base length u32, base points u32...
//	processed u64, changes u64, limit u32
//	cell count u32, then per cell in key order:
//	  row u32, col u32, fresh u8, images u32 x size, word length u32, letters u16...
var magic = [4]byte{'S', 'W', 'T', '1'}

// FormatVersion is the version of the binary table layout.
const FormatVersion uint16 = 2

// encoder accumulates the first write error.
type encoder struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (e *encoder) put(v any) {
	if e.err != nil {
		return
	}
	e.err = binary.Write(e.w, binary.LittleEndian, v)
	if e.err == nil {
		e.n += int64(binary.Size(v))
	}
}

// WriteTo writes the uncompressed encoding of t. Cells are written in key
// order so equal tables encode to equal bytes.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	e := &encoder{w: bufio.NewWriter(w)}
	e.put(magic)
	e.put(FormatVersion)
	e.put(uint32(t.size))
	e.put(uint32(t.gens))
	e.put(uint32(len(t.base)))
	for _, b := range t.base {
		e.put(uint32(b))
	}
	e.put(uint64(t.Processed))
	e.put(uint64(t.Changes))
	e.put(uint32(t.Limit))
	e.put(uint32(len(t.entries)))

	images := make([]uint32, t.size)
	for _, k := range t.Keys() {
		cell := t.entries[k]
		e.put(uint32(k.Row))
		e.put(uint32(k.Col))
		var fresh uint8
		if cell.Fresh {
			fresh = 1
		}
		e.put(fresh)
		for i, v := range cell.Perm {
			images[i] = uint32(v)
		}
		e.put(images)
		e.put(uint32(len(cell.Word)))
		letters := make([]uint16, len(cell.Word))
		for i, l := range cell.Word {
			letters[i] = uint16(l)
		}
		e.put(letters)
	}
	if e.err == nil {
		e.err = e.w.Flush()
	}
	if e.err != nil {
		return e.n, errs.Wrap(errs.ErrCodePersistence, e.err, "encode table")
	}
	return e.n, nil
}

type decoder struct {
	r   *bufio.Reader
	err error
}

func (d *decoder) get(v any) {
	if d.err != nil {
		return
	}
	d.err = binary.Read(d.r, binary.LittleEndian, v)
}

func (d *decoder) u32() int {
	var v uint32
	d.get(&v)
	return int(v)
}

// maxDecodedSize bounds lengths read from a table file before allocating.
const maxDecodedSize = 1 << 24

// ReadTable decodes a table written by WriteTo. Beyond the framing it
// rejects base points that are out of range or repeated, cell images that
// are not permutations, and letters outside the recorded generators.
func ReadTable(r io.Reader) (*Table, error) {
	d := &decoder{r: bufio.NewReader(r)}
	var m [4]byte
	var version uint16
	d.get(&m)
	d.get(&version)
	if d.err != nil {
		return nil, errs.Wrap(errs.ErrCodePersistence, d.err, "read table header")
	}
	if m != magic {
		return nil, errs.New(errs.ErrCodePersistence, "not a table file (magic %q)", m[:])
	}
	if version != FormatVersion {
		return nil, errs.New(errs.ErrCodePersistence, "unsupported table version %d", version)
	}

	size := d.u32()
	ngens := d.u32()
	rows := d.u32()
	if d.err == nil && (size > maxDecodedSize || rows > size) {
		d.err = fmt.Errorf("implausible size %d with %d rows", size, rows)
	}
	if d.err == nil && 2*ngens > 1<<16 {
		d.err = fmt.Errorf("implausible generator count %d", ngens)
	}
	if d.err != nil {
		return nil, errs.Wrap(errs.ErrCodePersistence, d.err, "read table header")
	}
	base := make([]int, rows)
	for i := range base {
		base[i] = d.u32()
	}
	if d.err == nil {
		d.err = schreier.ValidateBase(base, size)
	}
	if d.err != nil {
		return nil, errs.Wrap(errs.ErrCodePersistence, d.err, "read table base")
	}

	t := &Table{base: base, size: size, gens: ngens}
	var processed, changes uint64
	d.get(&processed)
	d.get(&changes)
	t.Processed = int(processed)
	t.Changes = int(changes)
	t.Limit = d.u32()
	cells := d.u32()
	if d.err == nil && cells > rows*size {
		d.err = fmt.Errorf("implausible cell count %d", cells)
	}
	if d.err != nil {
		return nil, errs.Wrap(errs.ErrCodePersistence, d.err, "read table header")
	}

	t.entries = make(map[Key]perm.Elem, cells)
	t.rowLens = make([]int, rows)
	images := make([]uint32, size)
	for c := 0; c < cells; c++ {
		k := Key{Row: d.u32(), Col: d.u32()}
		var fresh uint8
		d.get(&fresh)
		d.get(images)
		n := d.u32()
		if d.err == nil && n > maxDecodedSize {
			d.err = fmt.Errorf("implausible word length %d", n)
		}
		letters := make([]uint16, 0)
		if d.err == nil {
			letters = make([]uint16, n)
			d.get(letters)
		}
		if d.err == nil && (k.Row >= rows || k.Col >= size) {
			d.err = fmt.Errorf("key (%d,%d) out of range", k.Row, k.Col)
		}
		p := make(perm.Perm, size)
		for i, v := range images {
			p[i] = int(v)
		}
		if d.err == nil && !p.Valid() {
			d.err = fmt.Errorf("cell (%d,%d) images are not a permutation", k.Row, k.Col)
		}
		w := make(perm.Word, len(letters))
		for i, l := range letters {
			if d.err == nil && int(l) >= 2*ngens {
				d.err = fmt.Errorf("cell (%d,%d) letter %d outside %d generators", k.Row, k.Col, l, ngens)
			}
			w[i] = perm.Letter(l)
		}
		if d.err != nil {
			return nil, errs.Wrap(errs.ErrCodePersistence, d.err, "read cell %d", c)
		}
		if _, dup := t.entries[k]; !dup {
			t.rowLens[k.Row]++
		}
		t.entries[k] = perm.Elem{Perm: p, Word: w, Fresh: fresh == 1}
	}
	return t, nil
}

// Marshal returns the zstd-compressed encoding of t.
func Marshal(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodePersistence, err, "init compressor")
	}
	if _, err := t.WriteTo(zw); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, errs.Wrap(errs.ErrCodePersistence, err, "compress table")
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes the output of Marshal.
func Unmarshal(data []byte) (*Table, error) {
	zr, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodePersistence, err, "init decompressor")
	}
	defer zr.Close()
	return ReadTable(zr)
}

// Save writes t to path. The data goes to a temporary file in the same
// directory first and is renamed into place, so a crash never leaves a
// truncated table behind.
func Save(t *Table, path string) error {
	data, err := Marshal(t)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrap(errs.ErrCodePersistence, err, "create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return errs.Wrap(errs.ErrCodePersistence, err, "create temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errs.Wrap(errs.ErrCodePersistence, err, "write %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		return errs.Wrap(errs.ErrCodePersistence, err, "close %s", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errs.Wrap(errs.ErrCodePersistence, err, "rename to %s", path)
	}
	return nil
}

// Load reads a table written by Save.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		code := errs.ErrCodePersistence
		if os.IsNotExist(err) {
			code = errs.ErrCodeNotFound
		}
		return nil, errs.Wrap(code, err, "open table %s", path)
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodePersistence, err, "init decompressor")
	}
	defer zr.Close()

	t, err := ReadTable(zr)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodePersistence, err, "load table %s", path)
	}
	return t, nil
}
