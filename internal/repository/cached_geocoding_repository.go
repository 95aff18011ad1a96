package repository

import (
	"context"
	"log"

	"github.com/tharu280/tourAgent/internal/domain/model"
	"github.com/tharu280/tourAgent/internal/domain/repository"
)

// CachedGeocodingRepository はキャッシュを先に参照するジオコーダー
// キャッシュの障害はログに残し、上流のジオコーダーで処理を続ける
type CachedGeocodingRepository struct {
	upstream repository.GeocodingRepository
	cache    repository.GeocodeCacheRepository
}

func NewCachedGeocodingRepository(upstream repository.GeocodingRepository, cache repository.GeocodeCacheRepository) repository.GeocodingRepository {
	return &CachedGeocodingRepository{
		upstream: upstream,
		cache:    cache,
	}
}

func (r *CachedGeocodingRepository) Geocode(ctx context.Context, placeName string) (*model.LatLng, error) {
	cached, err := r.cache.Get(ctx, placeName)
	if err != nil {
		log.Printf("⚠️ Geocode cache lookup failed for %q: %v", placeName, err)
	}
	if cached != nil {
		log.Printf("🗂️ Geocode cache hit: %q", placeName)
		if !cached.Found {
			return nil, nil
		}
		coords := cached.Coords
		return &coords, nil
	}

	coords, err := r.upstream.Geocode(ctx, placeName)
	if err != nil {
		// 一時的な障害はキャッシュしない
		return nil, err
	}

	result := &model.GeocodeResult{Query: placeName, Found: coords != nil}
	if coords != nil {
		result.Coords = *coords
	}
	if err := r.cache.Put(ctx, result); err != nil {
		log.Printf("⚠️ Geocode cache store failed for %q: %v", placeName, err)
	}
	return coords, nil
}
