package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/tharu280/tourAgent/internal/domain/model"
)

type mockLanguage struct {
	mock.Mock
}

func (m *mockLanguage) ClassifyQuery(ctx context.Context, query string) (*model.GuardrailOutcome, error) {
	args := m.Called(ctx, query)
	outcome, _ := args.Get(0).(*model.GuardrailOutcome)
	return outcome, args.Error(1)
}

func (m *mockLanguage) ExtractLocations(ctx context.Context, query string) (*model.ExtractedLocations, error) {
	args := m.Called(ctx, query)
	locations, _ := args.Get(0).(*model.ExtractedLocations)
	return locations, args.Error(1)
}

func (m *mockLanguage) RankAttractions(ctx context.Context, rc *model.RankingContext) ([]model.RankedAttraction, error) {
	args := m.Called(ctx, rc)
	ranked, _ := args.Get(0).([]model.RankedAttraction)
	return ranked, args.Error(1)
}

func (m *mockLanguage) WriteItinerary(ctx context.Context, ic *model.ItineraryContext) (string, error) {
	args := m.Called(ctx, ic)
	return args.String(0), args.Error(1)
}

type mockGeocoder struct {
	mock.Mock
}

func (m *mockGeocoder) Geocode(ctx context.Context, placeName string) (*model.LatLng, error) {
	args := m.Called(ctx, placeName)
	coords, _ := args.Get(0).(*model.LatLng)
	return coords, args.Error(1)
}

type mockRouter struct {
	mock.Mock
}

func (m *mockRouter) GetDrivingRoute(ctx context.Context, origin, destination model.LatLng) (*model.RouteDetails, error) {
	args := m.Called(ctx, origin, destination)
	details, _ := args.Get(0).(*model.RouteDetails)
	return details, args.Error(1)
}

// fakePlaces は検索中心ごとの結果を返す。未登録の中心は0件
type fakePlaces struct {
	mu      sync.Mutex
	byPoint map[model.LatLng][]model.Place
	failAt  map[model.LatLng]bool
	panicAt map[model.LatLng]bool
	queries []model.PlaceSearchQuery
}

func newFakePlaces() *fakePlaces {
	return &fakePlaces{
		byPoint: map[model.LatLng][]model.Place{},
		failAt:  map[model.LatLng]bool{},
		panicAt: map[model.LatLng]bool{},
	}
}

func (f *fakePlaces) SearchNearby(ctx context.Context, q model.PlaceSearchQuery) ([]model.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.panicAt[q.Center] {
		panic("places provider blew up")
	}
	if f.failAt[q.Center] {
		return nil, errors.New("places service unavailable")
	}
	places := f.byPoint[q.Center]
	if len(places) > q.Limit {
		places = places[:q.Limit]
	}
	return places, nil
}

func (f *fakePlaces) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func namedPlaces(names ...string) []model.Place {
	places := make([]model.Place, len(names))
	for i, n := range names {
		places[i] = model.Place{ID: fmt.Sprintf("p%d", i), Name: n, Categories: []string{"tourism"}}
	}
	return places
}

// stubStage は任意の振る舞いをするステージ
type stubStage struct {
	name  StageName
	run   func(record model.TripRecord) (*model.TripUpdate, error)
	calls int
}

func (s *stubStage) Name() StageName { return s.name }

func (s *stubStage) Run(ctx context.Context, record model.TripRecord) (*model.TripUpdate, error) {
	s.calls++
	return s.run(record)
}
