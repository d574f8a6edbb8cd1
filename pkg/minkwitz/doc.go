// Package minkwitz builds short-word strong generating sets ("Minkwitz
// tables") for permutation groups and factorizes group elements with them.
//
// # The Table
//
// A [Table] has one row per base point. The cell at (i, j) holds an
// element that fixes base[0..i) and whose inverse sends base[i] to j, so
// the stored permutation itself sends j back to base[i]. Rows start with
// the identity at (i, base[i]).
//
// # Construction
//
// A [Builder] feeds elements from a Cayley explorer through the table:
//
//	b, err := minkwitz.NewBuilder(gens, base, minkwitz.Options{Rounds: 10000})
//	stats, err := b.Run(ctx)
//	table := b.Table()
//
// Each element is sifted row by row. A missing cell takes the element's
// inverse; a cell holding a longer word is replaced; otherwise the element
// is stripped by the cell and moves to the next row. Every ImproveEvery
// rounds, products of cell pairs sharing a row are sifted again and
// orbit gaps are filled by conjugation, after which the word-length
// ceiling grows by a quarter.
//
// Runs are resumable. Table.Processed counts consumed explorer elements,
// and [ResumeBuilder] skips that many before continuing.
//
// # Factorization
//
// [Factorize] rewrites any group element as a word by walking the rows
// once. The result replays to the target exactly.
//
// # Persistence
//
// [Save] and [Load] store a table as one zstd-compressed binary file.
// [Table.WriteTo] and [ReadTable] expose the uncompressed encoding.
package minkwitz
