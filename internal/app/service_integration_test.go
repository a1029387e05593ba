package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	service "github.com/okian/primeapi/internal/app"
	repository "github.com/okian/primeapi/internal/adapters/repository"
	"github.com/okian/primeapi/internal/adapters/repository/sqlite"
	"github.com/okian/primeapi/internal/domain/model"
	"github.com/okian/primeapi/internal/domain/query"
	"github.com/okian/primeapi/internal/domain/sieve"
	"github.com/okian/primeapi/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func ptr[T any](v T) *T { return &v }

func seedSQLite(t *testing.T, path string, limit int64) {
	t.Helper()
	ctx := context.Background()
	store, err := sqlite.Open(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()
	if err := sieve.New().Generate(ctx, model.Record{}, limit, func(batch []model.Record) error {
		return store.Append(ctx, batch)
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestServiceIntegration(t *testing.T) {
	drivers := map[string]func(t *testing.T) *service.Service{
		"memory": func(*testing.T) *service.Service {
			return service.New(service.WithSeedLimit(100), service.WithMaxLen(20))
		},
		"sqlite": func(t *testing.T) *service.Service {
			path := filepath.Join(t.TempDir(), "primes.db")
			seedSQLite(t, path, 100)
			return service.New(
				service.WithStoreDriver("sqlite"),
				service.WithSQLitePath(path),
				service.WithMaxLen(20),
			)
		},
	}

	for name, build := range drivers {
		Convey("Given a started "+name+" service over the primes up to 100", t, func() {
			svc := build(t)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			Convey("About should report the dataset maximum", func() {
				about, err := svc.About(ctx)
				So(err, ShouldBeNil)
				So(about.MaxValue, ShouldEqual, 97)
				So(about.MaxRank, ShouldEqual, 25)
				_, err = time.Parse("2006-01-02", about.LastUpdated)
				So(err, ShouldBeNil)
			})

			Convey("Numbers should run sorted scans", func() {
				got, err := svc.Numbers(ctx, query.Params{Order: 1, Min: ptr[int64](80), Limit: ptr(20)})
				So(err, ShouldBeNil)
				So(got, ShouldResemble, []types.Number{{Value: 83, Rank: 23}, {Value: 89, Rank: 24}, {Value: 97, Rank: 25}})

				got, err = svc.Numbers(ctx, query.Params{Order: -1, Key: "rank", Limit: ptr(2)})
				So(err, ShouldBeNil)
				So(got, ShouldResemble, []types.Number{{Value: 97, Rank: 25}, {Value: 89, Rank: 24}})
			})

			Convey("Numbers should default to a single random prime", func() {
				got, err := svc.Numbers(ctx, query.Params{})
				So(err, ShouldBeNil)
				So(len(got), ShouldEqual, 1)
				So(got[0].Value, ShouldBeBetweenOrEqual, 2, 97)
			})

			Convey("Numbers should enforce the configured length cap", func() {
				_, err := svc.Numbers(ctx, query.Params{Limit: ptr(21)})
				So(errors.Is(err, model.ErrLimitExceeded), ShouldBeTrue)
			})

			Convey("Numbers should reject bounds outside the dataset", func() {
				_, err := svc.Numbers(ctx, query.Params{Max: ptr[int64](98)})
				ve, ok := model.AsValidation(err)
				So(ok, ShouldBeTrue)
				So(ve.Max, ShouldEqual, 97)
			})

			Convey("CheckIfPrime should pair each token with its record", func() {
				got, err := svc.CheckIfPrime(ctx, []string{"97", "96", "97"})
				So(err, ShouldBeNil)
				So(got, ShouldResemble, []types.Lookup{
					{Queried: 97, Record: &types.Number{Value: 97, Rank: 25}},
					{Queried: 96},
					{Queried: 97, Record: &types.Number{Value: 97, Rank: 25}},
				})
			})

			Convey("Health should ping the store", func() {
				So(svc.Health(ctx), ShouldBeNil)
			})
		})
	}
}

func TestServiceSeesAppends(t *testing.T) {
	Convey("Given a service over a store that is still being ingested", t, func() {
		ctx := context.Background()
		store := repository.NewTreapStore()
		So(store.Append(ctx, []model.Record{{Value: 2, Rank: 1}, {Value: 3, Rank: 2}}), ShouldBeNil)

		svc := service.New(service.WithStore(store))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Values past the maximum should be out of bounds until ingested", func() {
			_, err := svc.CheckIfPrime(ctx, []string{"5"})
			So(errors.Is(err, model.ErrOutOfBounds), ShouldBeTrue)

			So(store.Append(ctx, []model.Record{{Value: 5, Rank: 3}}), ShouldBeNil)

			got, err := svc.CheckIfPrime(ctx, []string{"5"})
			So(err, ShouldBeNil)
			So(got[0].Record, ShouldResemble, &types.Number{Value: 5, Rank: 3})

			about, err := svc.About(ctx)
			So(err, ShouldBeNil)
			So(about.MaxValue, ShouldEqual, 5)
		})
	})

	Convey("Given a service over an empty store", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithStore(repository.NewTreapStore()))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Queries should fail as server faults", func() {
			_, err := svc.About(ctx)
			So(errors.Is(err, model.ErrEmptyDataset), ShouldBeTrue)
			_, err = svc.Numbers(ctx, query.Params{})
			So(errors.Is(err, model.ErrEmptyDataset), ShouldBeTrue)
			So(model.IsValidation(err), ShouldBeFalse)
		})
	})
}

func TestServiceLengthCap(t *testing.T) {
	Convey("Given a service over the 1229 primes below 10000", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithSeedLimit(10000))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("len=1000 should return exactly 1000 records in every order", func() {
			for _, order := range []int{-1, 0, 1} {
				got, err := svc.Numbers(ctx, query.Params{Order: order, Limit: ptr(1000)})
				So(err, ShouldBeNil)
				So(len(got), ShouldEqual, 1000)
			}
		})

		Convey("len=1001 and len=0 should be rejected", func() {
			for _, n := range []int{0, 1001} {
				_, err := svc.Numbers(ctx, query.Params{Limit: ptr(n)})
				So(errors.Is(err, model.ErrLimitExceeded), ShouldBeTrue)
			}
		})
	})
}
