package service

import (
	"context"
	"log"

	"github.com/tharu280/tourAgent/internal/domain/model"
	"github.com/tharu280/tourAgent/internal/domain/repository"
)

// ItineraryStage はランキング済みの観光地から日別の旅程を作る
type ItineraryStage struct {
	language repository.TripLanguageRepository
}

func NewItineraryStage(language repository.TripLanguageRepository) *ItineraryStage {
	return &ItineraryStage{language: language}
}

func (s *ItineraryStage) Name() StageName { return StageItinerary }

// Run は常に何らかの旅程テキストを返す。失敗時は定型のお詫び文
func (s *ItineraryStage) Run(ctx context.Context, record model.TripRecord) (*model.TripUpdate, error) {
	text, err := s.language.WriteItinerary(ctx, &model.ItineraryContext{
		OriginName:      deref(record.OriginName),
		DestinationName: deref(record.DestinationName),
		DurationDays:    record.DurationDaysOrDefault(),
		DriveTime:       record.DriveTimeOrUnknown(),
		Attractions:     record.RankedAttractions,
	})
	if err != nil || text == "" {
		log.Printf("❌ 旅程の生成に失敗しました: %v", err)
		return &model.TripUpdate{FinalItinerary: model.Ptr(model.ItineraryFallbackMessage)}, nil
	}

	log.Printf("📝 旅程を生成しました (%d文字)", len(text))
	return &model.TripUpdate{FinalItinerary: model.Ptr(text)}, nil
}
