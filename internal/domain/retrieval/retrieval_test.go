package retrieval

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/primeapi/internal/adapters/repository"
	"github.com/okian/primeapi/internal/domain/model"
	"github.com/okian/primeapi/internal/domain/query"
	. "github.com/smartystreets/goconvey/convey"
)

var firstPrimes = []int64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47}

func newStore(t *testing.T) *repository.TreapStore {
	t.Helper()
	store := repository.NewTreapStore()
	recs := make([]model.Record, len(firstPrimes))
	for i, p := range firstPrimes {
		recs[i] = model.Record{Value: p, Rank: int64(i + 1)}
	}
	if err := store.Append(context.Background(), recs); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store
}

func values(recs []model.Record) []int64 {
	out := make([]int64, len(recs))
	for i, r := range recs {
		out[i] = r.Value
	}
	return out
}

type failingReader struct{ err error }

func (f failingReader) FindRange(context.Context, model.Key, int64, int64, model.Direction, int) ([]model.Record, error) {
	return nil, f.err
}

func (f failingReader) SampleRange(context.Context, model.Key, int64, int64, int) ([]model.Record, error) {
	return nil, f.err
}

func TestSortedScan(t *testing.T) {
	ctx := context.Background()

	Convey("Given a retriever over the first primes", t, func() {
		r := NewRetriever(newStore(t))

		Convey("Ascending should return the lowest values first", func() {
			recs, err := r.Retrieve(ctx, query.ValidatedQuery{Order: 1, Key: model.KeyValue, Min: 10, Max: 30, Limit: 3})
			So(err, ShouldBeNil)
			So(cmp.Diff([]int64{11, 13, 17}, values(recs)), ShouldBeEmpty)
		})

		Convey("Descending should return the highest values first", func() {
			recs, err := r.Retrieve(ctx, query.ValidatedQuery{Order: -1, Key: model.KeyValue, Min: 10, Max: 30, Limit: 3})
			So(err, ShouldBeNil)
			So(cmp.Diff([]int64{29, 23, 19}, values(recs)), ShouldBeEmpty)
		})

		Convey("Rank filters should apply to rank", func() {
			recs, err := r.Retrieve(ctx, query.ValidatedQuery{Order: 1, Key: model.KeyRank, Min: 4, Max: 6, Limit: 10})
			So(err, ShouldBeNil)
			So(cmp.Diff([]int64{7, 11, 13}, values(recs)), ShouldBeEmpty)
		})

		Convey("A full descending scan should reverse the ascending one", func() {
			q := query.ValidatedQuery{Order: 1, Key: model.KeyValue, Min: 2, Max: 47, Limit: 1000}
			asc, err := r.Retrieve(ctx, q)
			So(err, ShouldBeNil)
			q.Order = -1
			desc, err := r.Retrieve(ctx, q)
			So(err, ShouldBeNil)
			slices.Reverse(desc)
			So(cmp.Diff(asc, desc), ShouldBeEmpty)
			So(len(asc), ShouldEqual, len(firstPrimes))
		})

		Convey("An inverted range should return an empty non-nil slice", func() {
			recs, err := r.Retrieve(ctx, query.ValidatedQuery{Order: 1, Key: model.KeyValue, Min: 30, Max: 10, Limit: 5})
			So(err, ShouldBeNil)
			So(recs, ShouldNotBeNil)
			So(recs, ShouldBeEmpty)
		})

		Convey("A range with no primes should return an empty non-nil slice", func() {
			recs, err := r.Retrieve(ctx, query.ValidatedQuery{Order: -1, Key: model.KeyValue, Min: 24, Max: 28, Limit: 5})
			So(err, ShouldBeNil)
			So(recs, ShouldNotBeNil)
			So(recs, ShouldBeEmpty)
		})
	})
}

func TestSample(t *testing.T) {
	ctx := context.Background()

	Convey("Given a retriever over the first primes", t, func() {
		r := NewRetriever(newStore(t))

		Convey("Samples should hold min(len, matches) distinct in-range records", func() {
			for i := 0; i < 100; i++ {
				recs, err := r.Retrieve(ctx, query.ValidatedQuery{Order: 0, Key: model.KeyValue, Min: 5, Max: 31, Limit: 4})
				So(err, ShouldBeNil)
				So(len(recs), ShouldEqual, 4)
				seen := map[int64]bool{}
				for _, rec := range recs {
					So(rec.Value, ShouldBeBetweenOrEqual, 5, 31)
					So(seen[rec.Value], ShouldBeFalse)
					seen[rec.Value] = true
				}
			}
		})

		Convey("A sample larger than the match set should return every match", func() {
			recs, err := r.Retrieve(ctx, query.ValidatedQuery{Order: 0, Key: model.KeyValue, Min: 40, Max: 47, Limit: 100})
			So(err, ShouldBeNil)
			got := values(recs)
			slices.Sort(got)
			So(got, ShouldResemble, []int64{41, 43, 47})
		})

		Convey("Every match should eventually be drawn", func() {
			seen := map[int64]bool{}
			for i := 0; i < 500; i++ {
				recs, err := r.Retrieve(ctx, query.ValidatedQuery{Order: 0, Key: model.KeyRank, Min: 1, Max: 15, Limit: 1})
				So(err, ShouldBeNil)
				seen[recs[0].Value] = true
			}
			So(len(seen), ShouldEqual, len(firstPrimes))
		})
	})
}

func TestStoreFailure(t *testing.T) {
	Convey("Given a failing store", t, func() {
		boom := errors.New("boom")
		r := NewRetriever(failingReader{err: boom})

		Convey("Both strategies should wrap the store error", func() {
			_, err := r.Retrieve(context.Background(), query.ValidatedQuery{Order: 1, Key: model.KeyValue, Min: 2, Max: 3, Limit: 1})
			So(errors.Is(err, boom), ShouldBeTrue)
			_, err = r.Retrieve(context.Background(), query.ValidatedQuery{Order: 0, Key: model.KeyValue, Min: 2, Max: 3, Limit: 1})
			So(errors.Is(err, boom), ShouldBeTrue)
		})
	})
}
