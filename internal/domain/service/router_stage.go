package service

import (
	"context"
	"log"

	"github.com/tharu280/tourAgent/internal/domain/helper"
	"github.com/tharu280/tourAgent/internal/domain/model"
	"github.com/tharu280/tourAgent/internal/domain/repository"
)

// RouterStage は出発地から目的地までの車ルートを取得する
type RouterStage struct {
	routing repository.RoutingRepository
}

func NewRouterStage(routing repository.RoutingRepository) *RouterStage {
	return &RouterStage{routing: routing}
}

func (s *RouterStage) Name() StageName { return StageRouter }

// Run は両方の座標が揃っている場合のみルートを返す。失敗時は空の更新（リトライなし）
func (s *RouterStage) Run(ctx context.Context, record model.TripRecord) (*model.TripUpdate, error) {
	if record.OriginCoords == nil || record.DestinationCoords == nil {
		log.Printf("⚠️ 座標が揃っていないためルート検索をスキップします")
		return &model.TripUpdate{}, nil
	}

	details, err := s.routing.GetDrivingRoute(ctx, *record.OriginCoords, *record.DestinationCoords)
	if err != nil {
		log.Printf("⚠️ ルート検索に失敗しました: %v", err)
		return &model.TripUpdate{}, nil
	}

	update := &model.TripUpdate{
		RouteDistanceKm:    model.Ptr(helper.RoundDistanceKm(details.DistanceMeters)),
		RouteDurationLabel: model.Ptr(helper.FormatDurationLabel(details.TotalDuration)),
	}
	// パスは2点以上ある場合のみ保持
	if len(details.Path) >= 2 {
		update.RoutePath = details.Path
	}

	log.Printf("🚗 ルート: %.1f km, %s, %d点", *update.RouteDistanceKm, *update.RouteDurationLabel, len(details.Path))
	return update, nil
}
