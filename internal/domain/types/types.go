// Package types contains the read shapes returned by the API.
package types

import "github.com/okian/primeapi/internal/domain/model"

// Number is a classified integer as exposed to clients. Store identifiers
// and insertion timestamps are not part of it.
type Number struct {
	Value int64 `json:"value"`
	Rank  int64 `json:"rank"`
}

// Lookup is one batch classification result. Record is null when no record
// exists for Queried.
type Lookup struct {
	Queried int64   `json:"queried"`
	Record  *Number `json:"record"`
}

// About summarizes the dataset as of the request.
type About struct {
	About       string `json:"about"`
	LastUpdated string `json:"last_updated"`
	MaxValue    int64  `json:"max_value"`
	MaxRank     int64  `json:"max_rank"`
}

// FromRecord converts a domain record.
func FromRecord(r model.Record) Number {
	return Number{Value: r.Value, Rank: r.Rank}
}

// FromRecords converts a slice of domain records. The result is never nil so
// an empty range encodes as [].
func FromRecords(rs []model.Record) []Number {
	out := make([]Number, len(rs))
	for i, r := range rs {
		out[i] = FromRecord(r)
	}
	return out
}
