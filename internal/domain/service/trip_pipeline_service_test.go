package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tharu280/tourAgent/internal/domain/helper"
	"github.com/tharu280/tourAgent/internal/domain/model"
)

var (
	colombo = model.LatLng{Lat: 6.9271, Lng: 79.8612}
	kandy   = model.LatLng{Lat: 7.2906, Lng: 80.6337}
)

type pipelineDeps struct {
	language *mockLanguage
	geocoder *mockGeocoder
	router   *mockRouter
	places   *fakePlaces
}

func newTestPipeline(t *testing.T) (TripPipelineService, *pipelineDeps) {
	t.Helper()
	deps := &pipelineDeps{
		language: &mockLanguage{},
		geocoder: &mockGeocoder{},
		router:   &mockRouter{},
		places:   newFakePlaces(),
	}
	pipeline, err := NewTripPipelineService(TripStages{
		Guardrail:  NewGuardrailStage(deps.language),
		Extractor:  NewExtractorStage(deps.language),
		Geocoder:   NewGeocoderStage(deps.geocoder),
		Router:     NewRouterStage(deps.router),
		Attraction: NewAttractionSamplerStage(deps.places, 4),
		Ranker:     NewRankerStage(deps.language),
		Itinerary:  NewItineraryStage(deps.language),
	})
	require.NoError(t, err)
	return pipeline, deps
}

// linePath は出発地から目的地までを n 点で結ぶ [経度, 緯度] のパス
func linePath(from, to model.LatLng, n int) orb.LineString {
	path := make(orb.LineString, n)
	for i := 0; i < n; i++ {
		f := float64(i) / float64(n-1)
		path[i] = orb.Point{
			from.Lng + (to.Lng-from.Lng)*f,
			from.Lat + (to.Lat-from.Lat)*f,
		}
	}
	return path
}

func TestTripPipeline_ColomboToKandyThreeDays(t *testing.T) {
	const query = "Plan a 3 day scenic trip from Colombo to Kandy"
	pipeline, deps := newTestPipeline(t)

	path := linePath(colombo, kandy, 50)
	midway := model.LatLngFromPoint(path[helper.PercentileIndex(len(path), 5)])
	late := model.LatLngFromPoint(path[helper.PercentileIndex(len(path), 9)])

	deps.places.byPoint[midway] = namedPlaces("Pinnawala Elephant Orphanage", "Kegalle Viewpoint")
	deps.places.byPoint[late] = namedPlaces("Kadugannawa Pass", "Peradeniya Botanical Gardens")
	deps.places.byPoint[kandy] = namedPlaces(
		"Temple of the Tooth", "Kandy Lake", "Peradeniya Botanical Gardens", "Bahirawakanda Vihara",
		"Udawatta Kele Sanctuary", "Kandy View Point", "Ceylon Tea Museum", "Lankatilaka Temple",
		"Embekke Devalaya", "Gadaladeniya Temple", "Kandy City Centre", "Hanthana Mountain Range",
		"Royal Palace of Kandy", "National Museum of Kandy", "Kandyan Arts Association",
		"overflow beyond limit",
	)

	deps.language.On("ClassifyQuery", mock.Anything, query).
		Return(&model.GuardrailOutcome{Decision: model.DecisionValid, FeedbackMessage: "Sounds great!"}, nil)
	deps.language.On("ExtractLocations", mock.Anything, query).
		Return(&model.ExtractedLocations{Origin: "Colombo", Destination: "Kandy", DurationDays: model.Ptr(3)}, nil)
	deps.geocoder.On("Geocode", mock.Anything, "Colombo").Return(&colombo, nil)
	deps.geocoder.On("Geocode", mock.Anything, "Kandy").Return(&kandy, nil)
	deps.router.On("GetDrivingRoute", mock.Anything, colombo, kandy).Return(&model.RouteDetails{
		DistanceMeters: 115432.7,
		TotalDuration:  3*time.Hour + 17*time.Minute + 12*time.Second,
		Path:           path,
	}, nil)

	ranked := []model.RankedAttraction{
		{Name: "Pinnawala Elephant Orphanage", Reasoning: "Stopover on the way"},
		{Name: "Kadugannawa Pass", Reasoning: "Scenic pass"},
		{Name: "Made Up Waterfall", Reasoning: "not a candidate"},
		{Name: "Temple of the Tooth", Reasoning: "Iconic"},
		{Name: "Kandy Lake", Reasoning: "Evening walk"},
		{Name: "Peradeniya Botanical Gardens", Reasoning: "Gardens"},
		{Name: "Bahirawakanda Vihara", Reasoning: "Views"},
		{Name: "Udawatta Kele Sanctuary", Reasoning: "Nature"},
		{Name: "Ceylon Tea Museum", Reasoning: "Tea history"},
		{Name: "Embekke Devalaya", Reasoning: "Wood carvings"},
		{Name: "Royal Palace of Kandy", Reasoning: "History"},
		{Name: "Hanthana Mountain Range", Reasoning: "Hiking"},
	}
	deps.language.On("RankAttractions", mock.Anything, mock.MatchedBy(func(rc *model.RankingContext) bool {
		return rc.DurationDays == 3 && rc.DriveTime == "3h 17m" &&
			rc.OriginName == "Colombo" && rc.DestinationName == "Kandy" && len(rc.Candidates) > 0
	})).Return(ranked, nil)
	deps.language.On("WriteItinerary", mock.Anything, mock.MatchedBy(func(ic *model.ItineraryContext) bool {
		return ic.DurationDays == 3 && len(ic.Attractions) == 11
	})).Return("Day 1: Colombo to Kandy\nDay 2: Kandy\nDay 3: Peradeniya", nil)

	record, err := pipeline.Execute(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, model.DecisionValid, record.GuardrailDecision)
	assert.Nil(t, record.FinalResponse)
	assert.Equal(t, "Colombo", *record.OriginName)
	assert.Equal(t, "Kandy", *record.DestinationName)
	assert.Equal(t, 3, *record.TripDurationDays)
	assert.Equal(t, colombo, *record.OriginCoords)
	assert.Equal(t, kandy, *record.DestinationCoords)
	assert.Equal(t, 115.4, *record.RouteDistanceKm)
	assert.Equal(t, "3h 17m", *record.RouteDurationLabel)
	assert.Len(t, record.RoutePath, 50)

	assert.Equal(t, 10, deps.places.queryCount())
	names := map[string]bool{}
	for _, c := range record.CandidateAttractions {
		assert.False(t, names[c.Name], "重複した候補: %s", c.Name)
		names[c.Name] = true
	}
	assert.Len(t, record.CandidateAttractions, 18)
	assert.Equal(t, "Pinnawala Elephant Orphanage", record.CandidateAttractions[0].Name)
	assert.Equal(t, "Stopover (~50% mark)", record.CandidateAttractions[0].LocationContext)
	assert.False(t, names["overflow beyond limit"])

	require.Len(t, record.RankedAttractions, 11)
	for _, r := range record.RankedAttractions {
		assert.True(t, names[r.Name], "候補にない名前: %s", r.Name)
	}
	assert.Contains(t, *record.FinalItinerary, "Day 1")

	deps.language.AssertExpectations(t)
	deps.geocoder.AssertExpectations(t)
	deps.router.AssertExpectations(t)
}

func TestTripPipeline_GreetingStopsAfterGuardrail(t *testing.T) {
	pipeline, deps := newTestPipeline(t)
	deps.language.On("ClassifyQuery", mock.Anything, "hi").
		Return(&model.GuardrailOutcome{Decision: model.DecisionGreeting, FeedbackMessage: "Hello! Where would you like to go?"}, nil)

	record, err := pipeline.Execute(context.Background(), "hi")
	require.NoError(t, err)

	assert.Equal(t, &model.TripRecord{
		OriginalQuery:     "hi",
		GuardrailDecision: model.DecisionGreeting,
		FinalResponse:     model.Ptr("Hello! Where would you like to go?"),
	}, record)
	deps.language.AssertNotCalled(t, "ExtractLocations", mock.Anything, mock.Anything)
	deps.language.AssertNotCalled(t, "RankAttractions", mock.Anything, mock.Anything)
	deps.language.AssertNotCalled(t, "WriteItinerary", mock.Anything, mock.Anything)
	deps.geocoder.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
	assert.Zero(t, deps.places.queryCount())
}

func TestTripPipeline_NonValidDecisionsTerminateEarly(t *testing.T) {
	tests := []struct {
		name         string
		outcome      *model.GuardrailOutcome
		classifyErr  error
		wantDecision model.GuardrailDecision
		wantMessage  string
	}{
		{
			name:         "incomplete",
			outcome:      &model.GuardrailOutcome{Decision: model.DecisionIncomplete, FeedbackMessage: "Where are you starting from?"},
			wantDecision: model.DecisionIncomplete,
			wantMessage:  "Where are you starting from?",
		},
		{
			name:         "unrelated",
			outcome:      &model.GuardrailOutcome{Decision: model.DecisionUnrelated, FeedbackMessage: "I can only help with trips."},
			wantDecision: model.DecisionUnrelated,
			wantMessage:  "I can only help with trips.",
		},
		{
			name:         "空のメッセージは定型文で補う",
			outcome:      &model.GuardrailOutcome{Decision: model.DecisionGreeting},
			wantDecision: model.DecisionGreeting,
			wantMessage:  model.GuardrailFallbackMessage,
		},
		{
			name:         "分類の失敗は error として終了",
			classifyErr:  errors.New("retries exhausted"),
			wantDecision: model.DecisionError,
			wantMessage:  model.GuardrailFallbackMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipeline, deps := newTestPipeline(t)
			deps.language.On("ClassifyQuery", mock.Anything, "some query").Return(tt.outcome, tt.classifyErr)

			record, err := pipeline.Execute(context.Background(), "some query")
			require.NoError(t, err)

			assert.Equal(t, tt.wantDecision, record.GuardrailDecision)
			require.NotNil(t, record.FinalResponse)
			assert.Equal(t, tt.wantMessage, *record.FinalResponse)
			assert.Nil(t, record.OriginName)
			assert.Nil(t, record.DestinationName)
			assert.Nil(t, record.TripDurationDays)
			assert.Nil(t, record.OriginCoords)
			assert.Nil(t, record.DestinationCoords)
			assert.Nil(t, record.RouteDistanceKm)
			assert.Nil(t, record.RouteDurationLabel)
			assert.Nil(t, record.RoutePath)
			assert.Nil(t, record.CandidateAttractions)
			assert.Nil(t, record.RankedAttractions)
			assert.Nil(t, record.FinalItinerary)
			deps.language.AssertNumberOfCalls(t, "ClassifyQuery", 1)
			deps.language.AssertNotCalled(t, "ExtractLocations", mock.Anything, mock.Anything)
		})
	}
}

func expectValid(deps *pipelineDeps, query string) {
	deps.language.On("ClassifyQuery", mock.Anything, query).
		Return(&model.GuardrailOutcome{Decision: model.DecisionValid}, nil)
}

func TestTripPipeline_OnlyOriginResolved(t *testing.T) {
	const query = "from Colombo to Atlantis"
	pipeline, deps := newTestPipeline(t)
	expectValid(deps, query)
	deps.language.On("ExtractLocations", mock.Anything, query).
		Return(&model.ExtractedLocations{Origin: "Colombo", Destination: "Atlantis"}, nil)
	deps.geocoder.On("Geocode", mock.Anything, "Colombo").Return(&colombo, nil)
	deps.geocoder.On("Geocode", mock.Anything, "Atlantis").Return(nil, nil)
	deps.language.On("WriteItinerary", mock.Anything, mock.MatchedBy(func(ic *model.ItineraryContext) bool {
		return ic.DurationDays == 1 && ic.DriveTime == model.UnknownDriveTime && len(ic.Attractions) == 0
	})).Return("Day 1: explore Colombo", nil)

	record, err := pipeline.Execute(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, colombo, *record.OriginCoords)
	assert.Nil(t, record.DestinationCoords)
	assert.Nil(t, record.TripDurationDays)
	assert.Nil(t, record.RouteDistanceKm)
	assert.Nil(t, record.RoutePath)
	assert.Empty(t, record.CandidateAttractions)
	assert.Empty(t, record.RankedAttractions)
	assert.Equal(t, "Day 1: explore Colombo", *record.FinalItinerary)
	deps.router.AssertNotCalled(t, "GetDrivingRoute", mock.Anything, mock.Anything, mock.Anything)
	assert.Zero(t, deps.places.queryCount())
	deps.language.AssertNotCalled(t, "RankAttractions", mock.Anything, mock.Anything)
}

func TestTripPipeline_OnlyDestinationResolvedSearchesDestinationOnce(t *testing.T) {
	const query = "trip to Kandy from somewhere"
	pipeline, deps := newTestPipeline(t)
	expectValid(deps, query)
	deps.language.On("ExtractLocations", mock.Anything, query).
		Return(&model.ExtractedLocations{Origin: "somewhere", Destination: "Kandy"}, nil)
	deps.geocoder.On("Geocode", mock.Anything, "somewhere").Return(nil, errors.New("timeout"))
	deps.geocoder.On("Geocode", mock.Anything, "Kandy").Return(&kandy, nil)
	deps.places.byPoint[kandy] = namedPlaces("Temple of the Tooth", "Kandy Lake")
	deps.language.On("RankAttractions", mock.Anything, mock.Anything).
		Return([]model.RankedAttraction{{Name: "Temple of the Tooth", Reasoning: "must see"}}, nil)
	deps.language.On("WriteItinerary", mock.Anything, mock.Anything).Return("Day 1: Kandy", nil)

	record, err := pipeline.Execute(context.Background(), query)
	require.NoError(t, err)

	assert.Nil(t, record.OriginCoords)
	assert.Equal(t, kandy, *record.DestinationCoords)
	deps.router.AssertNotCalled(t, "GetDrivingRoute", mock.Anything, mock.Anything, mock.Anything)

	require.Equal(t, 1, deps.places.queryCount())
	q := deps.places.queries[0]
	assert.Equal(t, kandy, q.Center)
	assert.Equal(t, 15, q.Limit)
	assert.Equal(t, 10000, q.RadiusMeters)
	assert.Equal(t, "tourism", q.Category)

	require.Len(t, record.CandidateAttractions, 2)
	assert.Equal(t, model.DestinationTag, record.CandidateAttractions[0].LocationContext)
	assert.Len(t, record.RankedAttractions, 1)
}

func TestTripPipeline_ExtractionFailureDegradesGracefully(t *testing.T) {
	const query = "plan my trip"
	pipeline, deps := newTestPipeline(t)
	expectValid(deps, query)
	deps.language.On("ExtractLocations", mock.Anything, query).Return(nil, errors.New("malformed"))
	deps.language.On("WriteItinerary", mock.Anything, mock.Anything).Return("", errors.New("quota"))

	record, err := pipeline.Execute(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, model.DecisionValid, record.GuardrailDecision)
	assert.Nil(t, record.OriginName)
	assert.Nil(t, record.DestinationName)
	assert.Nil(t, record.OriginCoords)
	assert.Equal(t, model.ItineraryFallbackMessage, *record.FinalItinerary)
	deps.geocoder.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
}

func TestTripPipeline_RankerFailureKeepsCandidates(t *testing.T) {
	const query = "weekend in Kandy"
	pipeline, deps := newTestPipeline(t)
	expectValid(deps, query)
	deps.language.On("ExtractLocations", mock.Anything, query).
		Return(&model.ExtractedLocations{Destination: "Kandy", DurationDays: model.Ptr(2)}, nil)
	deps.geocoder.On("Geocode", mock.Anything, "Kandy").Return(&kandy, nil)
	deps.places.byPoint[kandy] = namedPlaces("Temple of the Tooth")
	deps.language.On("RankAttractions", mock.Anything, mock.Anything).Return(nil, errors.New("overloaded"))
	deps.language.On("WriteItinerary", mock.Anything, mock.MatchedBy(func(ic *model.ItineraryContext) bool {
		return ic.DurationDays == 2 && len(ic.Attractions) == 0
	})).Return("Day 1 and Day 2 in Kandy", nil)

	record, err := pipeline.Execute(context.Background(), query)
	require.NoError(t, err)

	assert.Len(t, record.CandidateAttractions, 1)
	assert.Nil(t, record.RankedAttractions)
	assert.Equal(t, "Day 1 and Day 2 in Kandy", *record.FinalItinerary)
}

func TestTripPipeline_EmptyQuery(t *testing.T) {
	pipeline, _ := newTestPipeline(t)
	_, err := pipeline.Execute(context.Background(), "")
	assert.Error(t, err)
}

func TestTripPipeline_StageErrorsAndPanicsAreEmptyUpdates(t *testing.T) {
	var seen []StageName
	stub := func(name StageName, run func(model.TripRecord) (*model.TripUpdate, error)) *stubStage {
		return &stubStage{name: name, run: func(r model.TripRecord) (*model.TripUpdate, error) {
			seen = append(seen, name)
			return run(r)
		}}
	}
	ok := func(model.TripRecord) (*model.TripUpdate, error) { return &model.TripUpdate{}, nil }

	stages := TripStages{
		Guardrail: stub(StageGuardrail, func(model.TripRecord) (*model.TripUpdate, error) {
			return &model.TripUpdate{GuardrailDecision: model.Ptr(model.DecisionValid)}, nil
		}),
		Extractor: stub(StageExtractor, func(model.TripRecord) (*model.TripUpdate, error) {
			return &model.TripUpdate{OriginName: model.Ptr("Colombo")}, nil
		}),
		Geocoder: stub(StageGeocoder, func(model.TripRecord) (*model.TripUpdate, error) {
			panic("boom")
		}),
		Router: stub(StageRouter, func(model.TripRecord) (*model.TripUpdate, error) {
			return &model.TripUpdate{RouteDistanceKm: model.Ptr(12.5)}, errors.New("partial result is discarded")
		}),
		Attraction: stub(StageAttraction, func(r model.TripRecord) (*model.TripUpdate, error) {
			// 読み取り用コピーへの変更はレコードに反映されない
			r.OriginName = model.Ptr("mutated")
			return &model.TripUpdate{DestinationName: model.Ptr("Kandy")}, nil
		}),
		Ranker: stub(StageRanker, ok),
		Itinerary: stub(StageItinerary, func(r model.TripRecord) (*model.TripUpdate, error) {
			return &model.TripUpdate{FinalItinerary: model.Ptr("itinerary for " + *r.OriginName)}, nil
		}),
	}
	pipeline, err := NewTripPipelineService(stages)
	require.NoError(t, err)

	record, err := pipeline.Execute(context.Background(), "anything")
	require.NoError(t, err)

	assert.Equal(t, []StageName{
		StageGuardrail, StageExtractor, StageGeocoder, StageRouter, StageAttraction, StageRanker, StageItinerary,
	}, seen)
	assert.Equal(t, "Colombo", *record.OriginName)
	assert.Equal(t, "Kandy", *record.DestinationName)
	assert.Nil(t, record.RouteDistanceKm)
	assert.Equal(t, "itinerary for Colombo", *record.FinalItinerary)
}

func TestNewTripPipelineService_RejectsIncompleteOrDuplicateStages(t *testing.T) {
	ok := func(model.TripRecord) (*model.TripUpdate, error) { return nil, nil }
	s := func(name StageName) *stubStage { return &stubStage{name: name, run: ok} }

	_, err := NewTripPipelineService(TripStages{Guardrail: s(StageGuardrail)})
	assert.Error(t, err)

	_, err = NewTripPipelineService(TripStages{
		Guardrail: s(StageGuardrail), Extractor: s(StageExtractor), Geocoder: s(StageGeocoder),
		Router: s(StageRouter), Attraction: s(StageRouter), Ranker: s(StageRanker), Itinerary: s(StageItinerary),
	})
	assert.Error(t, err)
}
