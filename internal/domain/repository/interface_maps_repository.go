package repository

import (
	"context"

	"github.com/tharu280/tourAgent/internal/domain/model"
)

// GeocodingRepository は地名を座標に変換する
// 見つからない場合はエラーではなく nil を返す
type GeocodingRepository interface {
	Geocode(ctx context.Context, placeName string) (*model.LatLng, error)
}

// GeocodeCacheRepository はジオコーディング結果のキャッシュ
// キャッシュにない場合は (nil, nil) を返す
type GeocodeCacheRepository interface {
	Get(ctx context.Context, placeName string) (*model.GeocodeResult, error)
	Put(ctx context.Context, result *model.GeocodeResult) error
}

// RoutingRepository は2地点間の車での経路を取得する
type RoutingRepository interface {
	GetDrivingRoute(ctx context.Context, origin, destination model.LatLng) (*model.RouteDetails, error)
}
