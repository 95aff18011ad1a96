package service

import (
	"context"
	"log"
	"strings"

	"github.com/tharu280/tourAgent/internal/domain/model"
	"github.com/tharu280/tourAgent/internal/domain/repository"
)

// ExtractorStage はクエリから出発地・目的地・日数を取り出す
type ExtractorStage struct {
	language repository.TripLanguageRepository
}

func NewExtractorStage(language repository.TripLanguageRepository) *ExtractorStage {
	return &ExtractorStage{language: language}
}

func (s *ExtractorStage) Name() StageName { return StageExtractor }

// Run は抽出結果を返す。失敗時は3項目とも未設定のまま（空の更新）
func (s *ExtractorStage) Run(ctx context.Context, record model.TripRecord) (*model.TripUpdate, error) {
	locations, err := s.language.ExtractLocations(ctx, record.OriginalQuery)
	if err != nil {
		log.Printf("⚠️ 地名の抽出に失敗しました: %v", err)
		return &model.TripUpdate{}, nil
	}

	update := &model.TripUpdate{}
	if origin := strings.TrimSpace(locations.Origin); origin != "" {
		update.OriginName = model.Ptr(origin)
	}
	if destination := strings.TrimSpace(locations.Destination); destination != "" {
		update.DestinationName = model.Ptr(destination)
	}
	if locations.DurationDays != nil && *locations.DurationDays >= 1 {
		update.TripDurationDays = model.Ptr(*locations.DurationDays)
	}

	log.Printf("📍 抽出結果: origin=%q destination=%q days=%v",
		locations.Origin, locations.Destination, durationForLog(update.TripDurationDays))
	return update, nil
}

func durationForLog(days *int) any {
	if days == nil {
		return "未指定"
	}
	return *days
}
