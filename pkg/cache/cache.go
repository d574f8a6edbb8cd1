// Package cache stores built tables and search results between runs.
//
// Four backends implement [Cache]:
//   - [FileCache] keeps entries under a local directory (CLI default)
//   - [RedisCache] shares entries between serve instances
//   - [MongoCache] stores entries as documents with a TTL index
//   - [NullCache] disables caching
//
// Keys are produced by a [Keyer] so that every backend agrees on the
// namespace layout. [ScopedKeyer] prefixes all keys; the CLI scopes them by
// table format version so a format change never reads stale entries.
package cache

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
// A miss is reported by ok == false with a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by backends that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// Keyer derives cache keys for the artifacts shortword persists.
type Keyer interface {
	// BaseKey addresses a stabilizer-chain base for a generator set.
	BaseKey(genHash string, opts BaseKeyOpts) string
	// TableKey addresses a table for a generator set and base.
	TableKey(genHash string, base []int) string
	// SolveKey addresses a solved word for a target under a table.
	SolveKey(tableKey string, opts SolveKeyOpts) string
}

// BaseKeyOpts are the inputs that change which base FindBase returns.
type BaseKeyOpts struct {
	Random     bool
	Seed       int64
	Confidence int
}

// SolveKeyOpts identify a single solve request.
type SolveKeyOpts struct {
	Target   string // permutation key of the target
	Classes  string // rendered color classes, empty for exact solves
	MaxSteps int
	Revision int // table change counter; a grown table may find shorter words
}

// DefaultKeyer produces keys of the form "<kind>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// BaseKey implements Keyer.
func (DefaultKeyer) BaseKey(genHash string, opts BaseKeyOpts) string {
	return hashKey("base", genHash, opts.Random, opts.Seed, opts.Confidence)
}

// TableKey implements Keyer.
func (DefaultKeyer) TableKey(genHash string, base []int) string {
	return hashKey("table", genHash, formatInts(base))
}

// SolveKey implements Keyer.
func (DefaultKeyer) SolveKey(tableKey string, opts SolveKeyOpts) string {
	return hashKey("solve", tableKey, opts.Target, opts.Classes, opts.MaxSteps, opts.Revision)
}

func formatInts(xs []int) string {
	var sb strings.Builder
	for i, x := range xs {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(strconv.Itoa(x))
	}
	return sb.String()
}

// Describe renders a short human label for a key, used in log lines.
func Describe(key string) string {
	i := strings.LastIndexByte(key, ':')
	if i < 0 || len(key)-i-1 < 12 {
		return key
	}
	return key[:i+13]
}

var _ Keyer = DefaultKeyer{}
