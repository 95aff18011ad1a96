package repository

import (
	"context"

	"github.com/tharu280/tourAgent/internal/domain/model"
)

// PlacesRepository は指定地点周辺の観光地を検索する
type PlacesRepository interface {
	SearchNearby(ctx context.Context, q model.PlaceSearchQuery) ([]model.Place, error)
}
