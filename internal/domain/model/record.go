// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// Record is one classified integer: a prime and its position among all primes.
// Records are immutable once stored and the dataset only grows.
type Record struct {
	Value      int64     // the classified integer
	Rank       int64     // 1-based position among records of the same classification
	RecordedAt time.Time // insertion time assigned by the store
}

// Key selects the record field that drives filtering, sorting and sampling.
type Key string

const (
	KeyValue Key = "value"
	KeyRank  Key = "rank"
)

// Keys lists the accepted keys in the order they are reported to clients.
var Keys = []Key{KeyValue, KeyRank}

// ParseKey resolves a client-supplied key. The original field names
// "number" and "order" are accepted as aliases.
func ParseKey(s string) (Key, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "value", "number":
		return KeyValue, true
	case "rank", "order":
		return KeyRank, true
	}
	return "", false
}

// Of returns the field of r selected by k.
func (k Key) Of(r Record) int64 {
	if k == KeyRank {
		return r.Rank
	}
	return r.Value
}

// Direction is a sort direction for store scans.
type Direction int

const (
	Ascending  Direction = 1
	Descending Direction = -1
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Order values accepted by range queries.
const (
	OrderDescending = -1
	OrderRandom     = 0
	OrderAscending  = 1
)

// Orders lists the accepted order values.
var Orders = []int{OrderDescending, OrderRandom, OrderAscending}
