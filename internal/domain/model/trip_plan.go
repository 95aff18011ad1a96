package model

// TripPlanRequest POST /plan-trip のリクエスト
type TripPlanRequest struct {
	Query string `json:"query" binding:"required"`
}

// TripPlanResponse 呼び出し元に返す旅行計画
// RoutePath と CandidateAttractions は内部作業用のため含めない
type TripPlanResponse struct {
	PlanID             string             `json:"plan_id"`
	OriginalQuery      string             `json:"original_query"`
	GuardrailDecision  GuardrailDecision  `json:"guardrail_decision"`
	FinalResponse      *string            `json:"final_response,omitempty"`
	OriginName         *string            `json:"origin_name,omitempty"`
	DestinationName    *string            `json:"destination_name,omitempty"`
	TripDurationDays   *int               `json:"trip_duration_days,omitempty"`
	OriginCoords       *LatLng            `json:"origin_coords,omitempty"`
	DestinationCoords  *LatLng            `json:"destination_coords,omitempty"`
	RouteDistanceKm    *float64           `json:"route_distance_km,omitempty"`
	RouteDurationLabel *string            `json:"route_duration_label,omitempty"`
	RankedAttractions  []RankedAttraction `json:"ranked_attractions,omitempty"`
	FinalItinerary     *string            `json:"final_itinerary,omitempty"`
}

// ToTripPlanResponse レコードから公開用のレスポンスを作成
func (r *TripRecord) ToTripPlanResponse(planID string) *TripPlanResponse {
	return &TripPlanResponse{
		PlanID:             planID,
		OriginalQuery:      r.OriginalQuery,
		GuardrailDecision:  r.GuardrailDecision,
		FinalResponse:      r.FinalResponse,
		OriginName:         r.OriginName,
		DestinationName:    r.DestinationName,
		TripDurationDays:   r.TripDurationDays,
		OriginCoords:       r.OriginCoords,
		DestinationCoords:  r.DestinationCoords,
		RouteDistanceKm:    r.RouteDistanceKm,
		RouteDurationLabel: r.RouteDurationLabel,
		RankedAttractions:  r.RankedAttractions,
		FinalItinerary:     r.FinalItinerary,
	}
}

// GuardrailOutcome ゲートキーパーの分類結果
type GuardrailOutcome struct {
	Decision        GuardrailDecision `json:"decision"`
	FeedbackMessage string            `json:"feedback_message"`
}

// ExtractedLocations クエリから抽出した出発地・目的地・日数
// DurationDays は未指定の場合 nil（1日と区別する）
type ExtractedLocations struct {
	Origin       string `json:"origin"`
	Destination  string `json:"destination"`
	DurationDays *int   `json:"duration_days"`
}

// RankingContext ランキングに渡す情報
type RankingContext struct {
	OriginalQuery   string
	OriginName      string
	DestinationName string
	DurationDays    int
	DriveTime       string
	Candidates      []Attraction
}

// ItineraryContext 旅程生成に渡す情報
type ItineraryContext struct {
	OriginName      string
	DestinationName string
	DurationDays    int
	DriveTime       string
	Attractions     []RankedAttraction
}
