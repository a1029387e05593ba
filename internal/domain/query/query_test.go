package query

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/primeapi/internal/domain/bounds"
	"github.com/okian/primeapi/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type stubResolver struct {
	calls int
	b     map[model.Key]bounds.Bounds
	err   error
}

func (s *stubResolver) Resolve(_ context.Context, key model.Key) (bounds.Bounds, error) {
	s.calls++
	if s.err != nil {
		return bounds.Bounds{}, s.err
	}
	return s.b[key], nil
}

func newStub() *stubResolver {
	return &stubResolver{b: map[model.Key]bounds.Bounds{
		model.KeyValue: {Key: model.KeyValue, Min: 2, Max: 47},
		model.KeyRank:  {Key: model.KeyRank, Min: 1, Max: 15},
	}}
}

func ptr[T any](v T) *T { return &v }

func TestValidateDefaults(t *testing.T) {
	Convey("Given a validator over primes 2..47", t, func() {
		stub := newStub()
		v := NewValidator(stub)

		Convey("Empty params should resolve to the full value range with len 1", func() {
			q, err := v.Validate(context.Background(), Params{})
			So(err, ShouldBeNil)
			So(q, ShouldResemble, ValidatedQuery{Order: 0, Key: model.KeyValue, Min: 2, Max: 47, Limit: 1})
		})

		Convey("Rank queries should take rank bounds", func() {
			q, err := v.Validate(context.Background(), Params{Key: "rank", Order: 1})
			So(err, ShouldBeNil)
			So(q.Min, ShouldEqual, 1)
			So(q.Max, ShouldEqual, 15)
		})

		Convey("The original key aliases should be accepted", func() {
			q, err := v.Validate(context.Background(), Params{Key: "order"})
			So(err, ShouldBeNil)
			So(q.Key, ShouldEqual, model.KeyRank)
		})

		Convey("Explicit values inside the bounds should be kept", func() {
			q, err := v.Validate(context.Background(), Params{
				Order: -1, Min: ptr[int64](5), Max: ptr[int64](29), Limit: ptr(1000),
			})
			So(err, ShouldBeNil)
			So(q, ShouldResemble, ValidatedQuery{Order: -1, Key: model.KeyValue, Min: 5, Max: 29, Limit: 1000})
		})

		Convey("Min above Max should be accepted", func() {
			q, err := v.Validate(context.Background(), Params{Min: ptr[int64](30), Max: ptr[int64](10)})
			So(err, ShouldBeNil)
			So(q.Min, ShouldBeGreaterThan, q.Max)
		})
	})
}

func TestValidateRejects(t *testing.T) {
	ctx := context.Background()

	Convey("Given a validator over primes 2..47", t, func() {
		stub := newStub()
		v := NewValidator(stub, WithMaxLimit(100))

		Convey("Order outside -1..1 should be rejected before reading bounds", func() {
			for _, order := range []int{-2, 2, 99} {
				_, err := v.Validate(ctx, Params{Order: order})
				So(errors.Is(err, model.ErrInvalidOrder), ShouldBeTrue)
				So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
			}
			So(stub.calls, ShouldEqual, 0)
		})

		Convey("An unknown type should be rejected", func() {
			_, err := v.Validate(ctx, Params{Key: "twin"})
			ve, ok := model.AsValidation(err)
			So(ok, ShouldBeTrue)
			So(errors.Is(err, model.ErrInvalidKey), ShouldBeTrue)
			So(ve.Param, ShouldEqual, ParamKey)
			So(stub.calls, ShouldEqual, 0)
		})

		Convey("Len outside 1..cap should be rejected", func() {
			for _, n := range []int{0, -1, 101} {
				_, err := v.Validate(ctx, Params{Limit: ptr(n)})
				So(errors.Is(err, model.ErrLimitExceeded), ShouldBeTrue)
			}
			_, err := v.Validate(ctx, Params{Limit: ptr(100)})
			So(err, ShouldBeNil)
		})

		Convey("Min below the dataset minimum should name min and the range", func() {
			_, err := v.Validate(ctx, Params{Min: ptr[int64](1)})
			ve, ok := model.AsValidation(err)
			So(ok, ShouldBeTrue)
			So(errors.Is(err, model.ErrOutOfBounds), ShouldBeTrue)
			So(ve.Param, ShouldEqual, ParamMin)
			So(ve.Min, ShouldEqual, 2)
			So(ve.Max, ShouldEqual, 47)
			So(ve.Error(), ShouldContainSubstring, "[2, 47]")
		})

		Convey("Max above the dataset maximum should name max", func() {
			_, err := v.Validate(ctx, Params{Max: ptr[int64](48)})
			ve, ok := model.AsValidation(err)
			So(ok, ShouldBeTrue)
			So(ve.Param, ShouldEqual, ParamMax)
		})

		Convey("Exact bounds should be accepted", func() {
			_, err := v.Validate(ctx, Params{Min: ptr[int64](2), Max: ptr[int64](47)})
			So(err, ShouldBeNil)
		})

		Convey("A bounds failure should propagate unchanged", func() {
			stub.err = model.ErrEmptyDataset
			_, err := v.Validate(ctx, Params{})
			So(errors.Is(err, model.ErrEmptyDataset), ShouldBeTrue)
			So(model.IsValidation(err), ShouldBeFalse)
		})
	})
}
