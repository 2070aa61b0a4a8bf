// Package memo is the table of solved positions. Entries are written once
// and never revised; the table is split into shards, each behind its own
// lock, so that many solver goroutines can share it.
package memo

import (
	"math/bits"
	"sort"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/cespare/xxhash"
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/domino14/bearoff/board"
)

const DefaultShards = 64

type TableLock interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

type FakeLock struct{}

func (f FakeLock) Lock()    {}
func (f FakeLock) Unlock()  {}
func (f FakeLock) RLock()   {}
func (f FakeLock) RUnlock() {}

type shard[P any] struct {
	TableLock
	entries map[board.Board]P
}

type Stats struct {
	Entries uint64
	Lookups uint64
	Hits    uint64
}

type Table[P any] struct {
	shards   []shard[P]
	mask     uint64
	created  atomic.Uint64
	lookups  atomic.Uint64
	hits     atomic.Uint64
	threaded bool
}

// New creates a table with the given number of shards, rounded up to a
// power of two. A table is multi-threaded unless SetSingleThreadedMode is
// called before it is shared.
func New[P any](numShards int) *Table[P] {
	if numShards < 1 {
		numShards = DefaultShards
	}
	n := 1 << bits.Len(uint(numShards-1))
	t := &Table[P]{
		shards:   make([]shard[P], n),
		mask:     uint64(n - 1),
		threaded: true,
	}
	for i := range t.shards {
		t.shards[i].TableLock = new(sync.RWMutex)
		t.shards[i].entries = make(map[board.Board]P)
	}
	log.Debug().Int("shards", n).
		Uint64("total-system-memory-bytes", memory.TotalMemory()).
		Msg("memo-table-created")
	return t
}

func (t *Table[P]) SetSingleThreadedMode() {
	t.threaded = false
	for i := range t.shards {
		t.shards[i].TableLock = FakeLock{}
	}
}

func (t *Table[P]) SetMultiThreadedMode() {
	t.threaded = true
	for i := range t.shards {
		t.shards[i].TableLock = new(sync.RWMutex)
	}
}

func (t *Table[P]) Threaded() bool {
	return t.threaded
}

func (t *Table[P]) shardFor(b board.Board) *shard[P] {
	return &t.shards[xxhash.Sum64(b[:])&t.mask]
}

func (t *Table[P]) Lookup(b board.Board) (P, bool) {
	s := t.shardFor(b)
	s.RLock()
	v, ok := s.entries[b]
	s.RUnlock()
	t.lookups.Add(1)
	if ok {
		t.hits.Add(1)
	}
	return v, ok
}

// Store inserts v for b. An existing entry is final: it is kept and Store
// returns false.
func (t *Table[P]) Store(b board.Board, v P) bool {
	s := t.shardFor(b)
	s.Lock()
	defer s.Unlock()
	if _, ok := s.entries[b]; ok {
		return false
	}
	s.entries[b] = v
	t.created.Add(1)
	return true
}

func (t *Table[P]) Len() int {
	return int(t.created.Load())
}

// Boards returns every stored board, ordered by checker count and then
// lexicographically.
func (t *Table[P]) Boards() []board.Board {
	out := make([]board.Board, 0, t.Len())
	for i := range t.shards {
		s := &t.shards[i]
		s.RLock()
		for b := range s.entries {
			out = append(out, b)
		}
		s.RUnlock()
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := out[i].Checkers(), out[j].Checkers()
		if ci != cj {
			return ci < cj
		}
		return out[i].Less(out[j])
	})
	return out
}

func (t *Table[P]) Reset() {
	for i := range t.shards {
		s := &t.shards[i]
		s.Lock()
		clear(s.entries)
		s.Unlock()
	}
	t.created.Store(0)
	t.lookups.Store(0)
	t.hits.Store(0)
}

func (t *Table[P]) Stats() Stats {
	return Stats{
		Entries: t.created.Load(),
		Lookups: t.lookups.Load(),
		Hits:    t.hits.Load(),
	}
}

// LogStats writes the table counters at info level.
func (t *Table[P]) LogStats() {
	st := t.Stats()
	var p P
	// boards plus one value header per entry; the values themselves may
	// point to much more.
	estimate := st.Entries * uint64(unsafe.Sizeof(board.Board{})+unsafe.Sizeof(p))
	hitRate := 0.0
	if st.Lookups > 0 {
		hitRate = float64(st.Hits) / float64(st.Lookups)
	}
	log.Info().Uint64("entries", st.Entries).
		Uint64("lookups", st.Lookups).
		Uint64("hits", st.Hits).
		Float64("hit-rate", hitRate).
		Uint64("estimated-entry-bytes", estimate).
		Uint64("total-system-memory-bytes", memory.TotalMemory()).
		Msg("memo-table-stats")
}
