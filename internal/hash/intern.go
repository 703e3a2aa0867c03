package hash

// Interner assigns dense first-seen indices to strings, keyed by xxHash64
// with an explicit collision chain. Ingestion uses it to group identical
// alternative strings without keeping a map keyed by the (possibly long)
// strings themselves.
type Interner struct {
	buckets map[uint64][]int
	entries []string
}

// NewInterner creates an empty Interner.
func NewInterner() *Interner {
	return &Interner{buckets: make(map[uint64][]int)}
}

// Intern returns the index assigned to s, allocating the next index on
// first sight. added reports whether s was new.
func (it *Interner) Intern(s string) (idx int, added bool) {
	h := ID(s)
	for _, i := range it.buckets[h] {
		if it.entries[i] == s {
			return i, false
		}
	}

	idx = len(it.entries)
	it.entries = append(it.entries, s)
	it.buckets[h] = append(it.buckets[h], idx)

	return idx, true
}

// Lookup returns the index of s and whether it has been interned.
func (it *Interner) Lookup(s string) (int, bool) {
	h := ID(s)
	for _, i := range it.buckets[h] {
		if it.entries[i] == s {
			return i, true
		}
	}

	return 0, false
}

// Entries returns the interned strings in first-seen order. The returned
// slice is the Interner's own backing store; callers must not modify it.
func (it *Interner) Entries() []string {
	return it.entries
}

// Len returns the number of distinct strings interned.
func (it *Interner) Len() int {
	return len(it.entries)
}
