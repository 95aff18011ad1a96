package service

import (
	"context"
	"fmt"
	"log"

	"github.com/tharu280/tourAgent/internal/domain/helper"
	"github.com/tharu280/tourAgent/internal/domain/model"
	"github.com/tharu280/tourAgent/internal/domain/repository"
)

// RankerStage は候補の中から旅行日数に合った観光地を選び、優先順に並べる
type RankerStage struct {
	language repository.TripLanguageRepository
}

func NewRankerStage(language repository.TripLanguageRepository) *RankerStage {
	return &RankerStage{language: language}
}

func (s *RankerStage) Name() StageName { return StageRanker }

// Run はランキング結果を返す。候補にない名前は除外する
func (s *RankerStage) Run(ctx context.Context, record model.TripRecord) (*model.TripUpdate, error) {
	if record.OriginalQuery == "" || len(record.CandidateAttractions) == 0 {
		log.Printf("⚠️ クエリまたは候補がないためランキングをスキップします")
		return &model.TripUpdate{}, nil
	}

	days := record.DurationDaysOrDefault()
	ranked, err := s.language.RankAttractions(ctx, &model.RankingContext{
		OriginalQuery:   record.OriginalQuery,
		OriginName:      deref(record.OriginName),
		DestinationName: deref(record.DestinationName),
		DurationDays:    days,
		DriveTime:       record.DriveTimeOrUnknown(),
		Candidates:      record.CandidateAttractions,
	})
	if err != nil {
		return nil, fmt.Errorf("観光地のランキングに失敗: %w", err)
	}

	kept, dropped := helper.KeepOfferedAttractions(ranked, record.CandidateAttractions)
	if dropped > 0 {
		log.Printf("⚠️ 候補にない・重複した観光地を%d件除外しました", dropped)
	}

	minCount, maxCount := model.TargetAttractionCount(days)
	log.Printf("🏆 ランキング: %d件 (目標 %d〜%d件, %d日間)", len(kept), minCount, maxCount, days)
	return &model.TripUpdate{RankedAttractions: kept}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
