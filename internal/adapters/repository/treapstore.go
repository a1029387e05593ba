package repository

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/okian/primeapi/internal/domain/model"
)

// Treap-based, in-memory Store implementation.
//
// Nodes are ordered by value. Rank grows with value, so the same in-order
// traversal is sorted by rank as well and every key range maps to one
// contiguous index range. Subtree sizes make that range countable and
// indexable in O(log n), which is what uniform sampling needs.

type node struct {
	rec   model.Record
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

func insert(n *node, rec model.Record, prio uint64) *node {
	if n == nil {
		return &node{rec: rec, prio: prio, size: 1}
	}
	if rec.Value < n.rec.Value {
		n.left = insert(n.left, rec, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, rec, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

// countBelow returns how many records have key < x.
func countBelow(n *node, key model.Key, x int64) int {
	c := 0
	for n != nil {
		if key.Of(n.rec) < x {
			c += nsize(n.left) + 1
			n = n.right
		} else {
			n = n.left
		}
	}
	return c
}

// countAtMost returns how many records have key <= x.
func countAtMost(n *node, key model.Key, x int64) int {
	c := 0
	for n != nil {
		if key.Of(n.rec) <= x {
			c += nsize(n.left) + 1
			n = n.right
		} else {
			n = n.left
		}
	}
	return c
}

// nth returns the i-th record in order (0-based). i must be in range.
func nth(n *node, i int) model.Record {
	for {
		ls := nsize(n.left)
		switch {
		case i < ls:
			n = n.left
		case i == ls:
			return n.rec
		default:
			i -= ls + 1
			n = n.right
		}
	}
}

func find(n *node, value int64) (model.Record, bool) {
	for n != nil {
		switch {
		case value < n.rec.Value:
			n = n.left
		case value > n.rec.Value:
			n = n.right
		default:
			return n.rec, true
		}
	}
	return model.Record{}, false
}

// collectRange appends up to limit records with key in [lo, hi], walking
// in-order for Ascending and reverse in-order for Descending. Subtrees that
// cannot intersect the range are skipped.
func collectRange(n *node, key model.Key, lo, hi int64, dir model.Direction, limit int, out *[]model.Record) {
	if n == nil || len(*out) >= limit {
		return
	}
	k := key.Of(n.rec)
	first, second := n.left, n.right
	firstOpen, secondOpen := k > lo, k < hi
	if dir == model.Descending {
		first, second = n.right, n.left
		firstOpen, secondOpen = k < hi, k > lo
	}
	if firstOpen {
		collectRange(first, key, lo, hi, dir, limit, out)
	}
	if k >= lo && k <= hi && len(*out) < limit {
		*out = append(*out, n.rec)
	}
	if secondOpen {
		collectRange(second, key, lo, hi, dir, limit, out)
	}
}

// TreapStore keeps the whole dataset in memory.
type TreapStore struct {
	mu     sync.RWMutex
	root   *node
	top    *model.Record
	closed bool
	now    func() time.Time
}

// NewTreapStore constructs an empty treap store.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func checkKey(key model.Key) error {
	if key != model.KeyValue && key != model.KeyRank {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// Append implements Appender. Records are validated as a whole before any is inserted.
func (s *TreapStore) Append(ctx context.Context, records []model.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	last := s.top
	for i := range records {
		r := records[i]
		if r.Rank < 1 || (last != nil && (r.Value <= last.Value || r.Rank <= last.Rank)) {
			return fmt.Errorf("%w: value %d rank %d", ErrNotMonotonic, r.Value, r.Rank)
		}
		last = &records[i]
	}

	stamp := s.now()
	for _, r := range records {
		if r.RecordedAt.IsZero() {
			r.RecordedAt = stamp
		}
		s.root = insert(s.root, r, rand.Uint64())
		rec := r
		s.top = &rec
	}
	return nil
}

// FindExtremal implements Store.FindExtremal.
func (s *TreapStore) FindExtremal(ctx context.Context, key model.Key, dir model.Direction) (model.Record, error) {
	if err := checkKey(key); err != nil {
		return model.Record{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return model.Record{}, ErrClosed
	}

	n := s.root
	if n == nil {
		return model.Record{}, ErrNotFound
	}
	if dir == model.Descending {
		for n.right != nil {
			n = n.right
		}
	} else {
		for n.left != nil {
			n = n.left
		}
	}
	return n.rec, nil
}

// FindRange implements Store.FindRange.
func (s *TreapStore) FindRange(ctx context.Context, key model.Key, lo, hi int64, dir model.Direction, limit int) ([]model.Record, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	out := make([]model.Record, 0, min(limit, 64))
	if lo <= hi {
		collectRange(s.root, key, lo, hi, dir, limit, &out)
	}
	return out, nil
}

// SampleRange implements Store.SampleRange. Indices are drawn with Floyd's
// algorithm over the matching index range, then shuffled.
func (s *TreapStore) SampleRange(ctx context.Context, key model.Key, lo, hi int64, size int) ([]model.Record, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	if size < 1 {
		return nil, ErrInvalidLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	if lo > hi {
		return []model.Record{}, nil
	}
	first := countBelow(s.root, key, lo)
	n := countAtMost(s.root, key, hi) - first
	k := min(size, n)

	out := make([]model.Record, 0, k)
	picked := make(map[int]struct{}, k)
	for j := n - k; j < n; j++ {
		t := rand.IntN(j + 1)
		if _, dup := picked[t]; dup {
			t = j
		}
		picked[t] = struct{}{}
		out = append(out, nth(s.root, first+t))
	}
	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out, nil
}

// FindExactMatch implements Store.FindExactMatch.
func (s *TreapStore) FindExactMatch(ctx context.Context, values []int64) ([]model.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	out := make([]model.Record, 0, len(values))
	seen := make(map[int64]struct{}, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		if rec, ok := find(s.root, v); ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Count returns the total number of records.
func (s *TreapStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	return nsize(s.root), nil
}

// Ping implements Store.Ping.
func (s *TreapStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return ctx.Err()
}

// Close releases the dataset. Later calls fail with ErrClosed.
func (s *TreapStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.root = nil
	s.top = nil
	return nil
}
