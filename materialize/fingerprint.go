package materialize

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/rowmap"
	"github.com/syssam/rowmap/schema"
)

const (
	offset64 = 14695981039346656037
	prime64  = 1099511628211
)

var errFingerprintDone = errors.New("materialize: fingerprint builder already finalized")

// FingerprintBuilder folds a sequence of values into a Fingerprint. The
// fold is order-sensitive and stable across processes: each value is
// encoded with msgpack (sorted map keys) and its FNV-64a digest is mixed
// into the running hash.
//
// A builder is single use. After Sum or Discard, Add fails.
type FingerprintBuilder struct {
	h    uint64
	n    int
	buf  bytes.Buffer
	enc  *msgpack.Encoder
	done bool
}

// NewFingerprint returns an empty builder.
func NewFingerprint() *FingerprintBuilder {
	b := &FingerprintBuilder{h: offset64}
	b.enc = msgpack.NewEncoder(&b.buf)
	b.enc.SetSortMapKeys(true)
	return b
}

// Add folds v into the fingerprint.
func (b *FingerprintBuilder) Add(v any) error {
	if b.done {
		return errFingerprintDone
	}
	b.buf.Reset()
	if err := b.enc.Encode(v); err != nil {
		return fmt.Errorf("materialize: fingerprint value %d: %w", b.n, err)
	}
	var kind reflect.Kind
	if v != nil {
		kind = reflect.TypeOf(v).Kind()
	}
	d := fnv.New64a()
	var hdr [9]byte
	hdr[0] = byte(kind)
	binary.BigEndian.PutUint64(hdr[1:], uint64(b.buf.Len()))
	d.Write(hdr[:])
	d.Write(b.buf.Bytes())
	b.h = (b.h ^ d.Sum64()) * prime64
	b.n++
	return nil
}

// Len returns the number of folded values.
func (b *FingerprintBuilder) Len() int { return b.n }

// Sum finalizes the builder and returns the fingerprint.
func (b *FingerprintBuilder) Sum() rowmap.Fingerprint {
	if b.done {
		return 0
	}
	b.done = true
	return rowmap.Fingerprint(b.h)
}

// Discard drops the running hash. It is a no-op after Sum.
func (b *FingerprintBuilder) Discard() {
	if b.done {
		return
	}
	b.done = true
	b.h = 0
	b.buf.Reset()
}

// FingerprintOf returns the fingerprint of the current values of the
// columns of t present in pm, read from entity. It is the fingerprint the
// materializer attaches after a load, recomputed on demand.
func FingerprintOf(entity any, pm PositionMap, t *schema.Table) (rowmap.Fingerprint, error) {
	fp := NewFingerprint()
	defer fp.Discard()
	for i := 0; i < t.NumColumns(); i++ {
		if !pm.Present(i) {
			continue
		}
		if err := fp.Add(t.ColumnAt(i).Get(entity)); err != nil {
			return 0, err
		}
	}
	return fp.Sum(), nil
}
