package service

import (
	"context"

	"github.com/tharu280/tourAgent/internal/domain/model"
)

// StageName はパイプライン上のステージ名
type StageName string

const (
	StageGuardrail  StageName = "guardrail"
	StageExtractor  StageName = "extract_locations"
	StageGeocoder   StageName = "geocode"
	StageRouter     StageName = "route"
	StageAttraction StageName = "find_attractions"
	StageRanker     StageName = "rank_attractions"
	StageItinerary  StageName = "build_itinerary"

	// StageEnd は終端（次のステージなし）
	StageEnd StageName = ""
)

// Stage はレコードの読み取り用コピーを受け取り、部分更新を返すパイプラインの1ステップ
// 返した更新はエンジンがマージする。エラーやパニックは空の更新として扱われる
type Stage interface {
	Name() StageName
	Run(ctx context.Context, record model.TripRecord) (*model.TripUpdate, error)
}
