// Package lookup implements a fixed-size string-keyed table tuned for the
// evaluation hot path: when the key's bucket has never collided, a lookup is
// one FNV-1a hash plus one string comparison. A bucket that receives a
// second distinct key degrades permanently to a plain map lookup, so the
// table stays correct no matter how many keys are inserted.
package lookup

// numBuckets is prime so the hash modulus spreads short keys evenly.
const numBuckets = 1021

// collided marks a bucket whose keys must be resolved through the fallback
// map. Bucket states only ever move forward: empty, then direct, then
// collided.
const collided = numBuckets

// Table maps string keys to values of type T. The zero value is not ready
// for use; call New.
type Table[T any] struct {
	buckets  [numBuckets]uint32 // 0 empty, i+1 direct index into values, collided sentinel
	names    [numBuckets]string // key retained per direct bucket, verified on lookup
	values   []T
	fallback map[string]uint32 // every inserted key, collided or not
}

func New[T any]() *Table[T] {
	return &Table[T]{fallback: make(map[string]uint32)}
}

// Set binds key to value. Re-setting an existing key appends a fresh slot
// and repoints the key at it through the fallback map; the bucket it hashes
// to becomes collided and never returns to the direct state.
func (t *Table[T]) Set(key string, value T) {
	index := uint32(len(t.values))
	t.values = append(t.values, value)
	t.fallback[key] = index

	b := fnv32a(key) % numBuckets
	if t.buckets[b] == 0 {
		t.buckets[b] = index + 1
	} else {
		t.buckets[b] = collided
	}
	t.names[b] = key
}

// Get returns the value bound to key. A direct bucket is trusted only after
// comparing the retained key against the query, since the hash is not
// collision-free; a collided bucket resolves through the fallback map.
func (t *Table[T]) Get(key string) (T, bool) {
	var zero T

	b := fnv32a(key) % numBuckets
	index := t.buckets[b]
	if index == 0 {
		return zero, false
	}
	if index < collided {
		if t.names[b] != key {
			return zero, false
		}
		return t.values[index-1], true
	}

	index, ok := t.fallback[key]
	if !ok {
		return zero, false
	}
	return t.values[index], true
}

// Len reports the number of inserted entries, counting re-sets of the same
// key once per Set.
func (t *Table[T]) Len() int {
	return len(t.values)
}

// Clear resets every bucket to empty and discards all values and fallback
// entries.
func (t *Table[T]) Clear() {
	t.buckets = [numBuckets]uint32{}
	t.names = [numBuckets]string{}
	t.values = nil
	t.fallback = make(map[string]uint32)
}

const (
	fnvOffset32 = 2166136261
	fnvPrime32  = 16777619
)

// fnv32a is FNV-1a over the key bytes, written out instead of hash/fnv so
// Get does not allocate converting the key to []byte.
func fnv32a(s string) uint32 {
	h := uint32(fnvOffset32)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime32
	}
	return h
}
