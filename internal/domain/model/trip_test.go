package model

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestTripRecord_MergeKeepsUntouchedFields(t *testing.T) {
	r := NewTripRecord("Colombo to Kandy")
	r.Merge(&TripUpdate{
		GuardrailDecision: Ptr(DecisionValid),
		OriginName:        Ptr("Colombo"),
		DestinationName:   Ptr("Kandy"),
	})
	r.Merge(&TripUpdate{TripDurationDays: Ptr(2)})
	r.Merge(nil)
	r.Merge(&TripUpdate{})

	assert.Equal(t, "Colombo to Kandy", r.OriginalQuery)
	assert.Equal(t, DecisionValid, r.GuardrailDecision)
	assert.Equal(t, "Colombo", *r.OriginName)
	assert.Equal(t, "Kandy", *r.DestinationName)
	assert.Equal(t, 2, *r.TripDurationDays)
	assert.Nil(t, r.FinalResponse)
}

func TestTripRecord_SnapshotIsIndependent(t *testing.T) {
	r := NewTripRecord("q")
	r.Merge(&TripUpdate{
		RoutePath:            orb.LineString{{79.86, 6.93}, {80.63, 7.29}},
		CandidateAttractions: []Attraction{{Name: "Temple of the Tooth"}},
	})

	s := r.Snapshot()
	s.RoutePath[0] = orb.Point{0, 0}
	s.CandidateAttractions[0].Name = "changed"

	assert.Equal(t, orb.Point{79.86, 6.93}, r.RoutePath[0])
	assert.Equal(t, "Temple of the Tooth", r.CandidateAttractions[0].Name)
}

func TestTripUpdate_IsEmpty(t *testing.T) {
	var nilUpdate *TripUpdate
	assert.True(t, nilUpdate.IsEmpty())
	assert.True(t, (&TripUpdate{}).IsEmpty())
	assert.False(t, (&TripUpdate{CandidateAttractions: []Attraction{}}).IsEmpty())
}

func TestTripRecord_Defaults(t *testing.T) {
	r := NewTripRecord("q")
	assert.Equal(t, 1, r.DurationDaysOrDefault())
	assert.Equal(t, "unknown", r.DriveTimeOrUnknown())

	r.TripDurationDays = Ptr(4)
	r.RouteDurationLabel = Ptr("3h 10m")
	assert.Equal(t, 4, r.DurationDaysOrDefault())
	assert.Equal(t, "3h 10m", r.DriveTimeOrUnknown())
}

func TestTargetAttractionCount(t *testing.T) {
	tests := []struct {
		days     int
		min, max int
	}{
		{1, 5, 7},
		{2, 10, 15},
		{3, 10, 15},
		{4, 15, 20},
		{10, 15, 20},
	}
	for _, tt := range tests {
		lo, hi := TargetAttractionCount(tt.days)
		assert.Equal(t, tt.min, lo, "days=%d", tt.days)
		assert.Equal(t, tt.max, hi, "days=%d", tt.days)
	}
}

func TestToTripPlanResponse(t *testing.T) {
	r := NewTripRecord("q")
	r.Merge(&TripUpdate{
		GuardrailDecision:    Ptr(DecisionValid),
		RoutePath:            orb.LineString{{1, 2}, {3, 4}},
		CandidateAttractions: []Attraction{{Name: "a"}},
		RankedAttractions:    []RankedAttraction{{Name: "a", Reasoning: "r"}},
	})

	resp := r.ToTripPlanResponse("plan-1")

	assert.Equal(t, "plan-1", resp.PlanID)
	assert.Equal(t, []RankedAttraction{{Name: "a", Reasoning: "r"}}, resp.RankedAttractions)
}

func TestAttraction_IsStopover(t *testing.T) {
	assert.True(t, Attraction{LocationContext: StopoverTag(40)}.IsStopover())
	assert.False(t, Attraction{LocationContext: DestinationTag}.IsStopover())
	assert.Equal(t, "Stopover (~40% mark)", StopoverTag(40))
}
