package service

import (
	"context"
	"log"

	"github.com/tharu280/tourAgent/internal/domain/model"
	"github.com/tharu280/tourAgent/internal/domain/repository"
)

// GeocoderStage は出発地と目的地の名前を座標に変換する
// 片方だけ解決できた状態もそのまま次へ渡す
type GeocoderStage struct {
	geocoder repository.GeocodingRepository
}

func NewGeocoderStage(geocoder repository.GeocodingRepository) *GeocoderStage {
	return &GeocoderStage{geocoder: geocoder}
}

func (s *GeocoderStage) Name() StageName { return StageGeocoder }

func (s *GeocoderStage) Run(ctx context.Context, record model.TripRecord) (*model.TripUpdate, error) {
	return &model.TripUpdate{
		OriginCoords:      s.resolve(ctx, "origin", record.OriginName),
		DestinationCoords: s.resolve(ctx, "destination", record.DestinationName),
	}, nil
}

// resolve は名前が無い・見つからない・エラーのいずれでも nil を返す
func (s *GeocoderStage) resolve(ctx context.Context, side string, name *string) *model.LatLng {
	if name == nil || *name == "" {
		return nil
	}
	coords, err := s.geocoder.Geocode(ctx, *name)
	if err != nil {
		log.Printf("⚠️ %s のジオコーディングに失敗しました（%q）: %v", side, *name, err)
		return nil
	}
	if coords == nil {
		log.Printf("⚠️ %s が見つかりませんでした: %q", side, *name)
		return nil
	}
	log.Printf("🌐 %s: %q -> %s", side, *name, coords)
	return coords
}
