package search

import "sync"

// skipTable maps a byte to the distance the window may slide when that byte
// is under the anchor position.
type skipTable [256]int

// tablePool recycles skip tables between searches.
// Tables are rebuilt in full on every use, so no reset is needed on Put.
var tablePool = sync.Pool{
	New: func() interface{} {
		return new(skipTable)
	},
}

// getTable retrieves a table from the pool.
func getTable() *skipTable {
	return tablePool.Get().(*skipTable)
}

// putTable returns a table to the pool.
// The table should not be used after calling this function.
func putTable(t *skipTable) {
	if t == nil {
		return
	}
	tablePool.Put(t)
}

// buildForward fills t for a left-to-right Horspool scan anchored on the
// last pattern byte.
func (t *skipTable) buildForward(pat []byte) {
	m := len(pat)
	for i := range t {
		t[i] = m
	}
	for j := 0; j < m-1; j++ {
		t[pat[j]] = m - 1 - j
	}
}

// buildBackward fills t for a right-to-left scan anchored on the first
// pattern byte.
func (t *skipTable) buildBackward(pat []byte) {
	m := len(pat)
	for i := range t {
		t[i] = m
	}
	for j := m - 1; j >= 1; j-- {
		t[pat[j]] = j
	}
}
