package model

import (
	"strings"

	"github.com/paulmach/orb"
)

// TripRecord は1回のパイプライン実行で各ステージに受け渡される旅行計画の状態
// 生成時は OriginalQuery のみが設定され、各ステージの TripUpdate がマージされていく
type TripRecord struct {
	OriginalQuery string `json:"original_query"`

	// ゲートキーパー
	GuardrailDecision GuardrailDecision `json:"guardrail_decision,omitempty"`
	FinalResponse     *string           `json:"final_response,omitempty"`

	// 抽出
	OriginName       *string `json:"origin_name,omitempty"`
	DestinationName  *string `json:"destination_name,omitempty"`
	TripDurationDays *int    `json:"trip_duration_days,omitempty"`

	// ジオコーディング
	OriginCoords      *LatLng `json:"origin_coords,omitempty"`
	DestinationCoords *LatLng `json:"destination_coords,omitempty"`

	// ルート（RoutePath は出発地から目的地への [経度, 緯度] 列）
	RouteDistanceKm    *float64       `json:"route_distance_km,omitempty"`
	RouteDurationLabel *string        `json:"route_duration_label,omitempty"`
	RoutePath          orb.LineString `json:"route_path,omitempty"`

	// 観光地
	CandidateAttractions []Attraction       `json:"candidate_attractions,omitempty"`
	RankedAttractions    []RankedAttraction `json:"ranked_attractions,omitempty"`

	FinalItinerary *string `json:"final_itinerary,omitempty"`
}

// TripUpdate はステージが返す部分更新
// nil のフィールドは「変更なし」を意味し、マージ時に既存の値が保持される
type TripUpdate struct {
	GuardrailDecision    *GuardrailDecision
	FinalResponse        *string
	OriginName           *string
	DestinationName      *string
	TripDurationDays     *int
	OriginCoords         *LatLng
	DestinationCoords    *LatLng
	RouteDistanceKm      *float64
	RouteDurationLabel   *string
	RoutePath            orb.LineString
	CandidateAttractions []Attraction
	RankedAttractions    []RankedAttraction
	FinalItinerary       *string
}

// NewTripRecord はクエリのみを持つ新しいレコードを作成する
func NewTripRecord(query string) *TripRecord {
	return &TripRecord{OriginalQuery: query}
}

// IsEmpty は更新内容が一つもないかを判定する
func (u *TripUpdate) IsEmpty() bool {
	return u == nil || (u.GuardrailDecision == nil &&
		u.FinalResponse == nil &&
		u.OriginName == nil &&
		u.DestinationName == nil &&
		u.TripDurationDays == nil &&
		u.OriginCoords == nil &&
		u.DestinationCoords == nil &&
		u.RouteDistanceKm == nil &&
		u.RouteDurationLabel == nil &&
		u.RoutePath == nil &&
		u.CandidateAttractions == nil &&
		u.RankedAttractions == nil &&
		u.FinalItinerary == nil)
}

// Merge は部分更新をフィールド単位でレコードに反映する
// OriginalQuery は更新対象外
func (r *TripRecord) Merge(u *TripUpdate) {
	if u == nil {
		return
	}
	if u.GuardrailDecision != nil {
		r.GuardrailDecision = *u.GuardrailDecision
	}
	if u.FinalResponse != nil {
		r.FinalResponse = u.FinalResponse
	}
	if u.OriginName != nil {
		r.OriginName = u.OriginName
	}
	if u.DestinationName != nil {
		r.DestinationName = u.DestinationName
	}
	if u.TripDurationDays != nil {
		r.TripDurationDays = u.TripDurationDays
	}
	if u.OriginCoords != nil {
		r.OriginCoords = u.OriginCoords
	}
	if u.DestinationCoords != nil {
		r.DestinationCoords = u.DestinationCoords
	}
	if u.RouteDistanceKm != nil {
		r.RouteDistanceKm = u.RouteDistanceKm
	}
	if u.RouteDurationLabel != nil {
		r.RouteDurationLabel = u.RouteDurationLabel
	}
	if u.RoutePath != nil {
		r.RoutePath = u.RoutePath.Clone()
	}
	if u.CandidateAttractions != nil {
		r.CandidateAttractions = append([]Attraction(nil), u.CandidateAttractions...)
	}
	if u.RankedAttractions != nil {
		r.RankedAttractions = append([]RankedAttraction(nil), u.RankedAttractions...)
	}
	if u.FinalItinerary != nil {
		r.FinalItinerary = u.FinalItinerary
	}
}

// Snapshot はステージに渡す読み取り用のコピーを返す
func (r *TripRecord) Snapshot() TripRecord {
	s := *r
	if r.RoutePath != nil {
		s.RoutePath = r.RoutePath.Clone()
	}
	if r.CandidateAttractions != nil {
		s.CandidateAttractions = append([]Attraction(nil), r.CandidateAttractions...)
	}
	if r.RankedAttractions != nil {
		s.RankedAttractions = append([]RankedAttraction(nil), r.RankedAttractions...)
	}
	return s
}

// DurationDaysOrDefault は日数が未指定の場合に1日を返す
func (r *TripRecord) DurationDaysOrDefault() int {
	if r.TripDurationDays == nil || *r.TripDurationDays < 1 {
		return DefaultTripDurationDays
	}
	return *r.TripDurationDays
}

// DriveTimeOrUnknown はルートの所要時間ラベル、未取得の場合は "unknown" を返す
func (r *TripRecord) DriveTimeOrUnknown() string {
	if r.RouteDurationLabel == nil || *r.RouteDurationLabel == "" {
		return UnknownDriveTime
	}
	return *r.RouteDurationLabel
}

// Attraction はルート沿いのサンプリングで見つかった観光地候補
type Attraction struct {
	Name            string `json:"name"`
	Categories      string `json:"kinds"`            // カテゴリをカンマ区切りにしたラベル
	LocationContext string `json:"location_context"` // 例: "Stopover (~40% mark)"
}

// IsStopover は途中経由地で見つかった候補かどうかを判定する
func (a Attraction) IsStopover() bool {
	return strings.HasPrefix(a.LocationContext, StopoverTagPrefix)
}

// RankedAttraction はランキング済みの観光地と選定理由
type RankedAttraction struct {
	Name      string `json:"name"`
	Reasoning string `json:"reasoning"`
}

// Ptr は値のポインタを返す
func Ptr[T any](v T) *T {
	return &v
}
