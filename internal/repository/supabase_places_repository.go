package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/paulmach/orb/geo"

	"github.com/tharu280/tourAgent/internal/domain/model"
	"github.com/tharu280/tourAgent/internal/domain/repository"
	"github.com/tharu280/tourAgent/internal/infrastructure/database"
)

// SupabasePlacesRepository はSupabaseの pois テーブルから観光地を検索する
// PostgRESTでは地理関数が使えないため、緯度経度の矩形で絞り込んだ後に距離で再フィルタする
type SupabasePlacesRepository struct {
	client *database.SupabaseClient
}

func NewSupabasePlacesRepository(client *database.SupabaseClient) repository.PlacesRepository {
	return &SupabasePlacesRepository{
		client: client,
	}
}

// supabasePlace pois テーブルの行
type supabasePlace struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
	Lat        float64  `json:"lat"`
	Lng        float64  `json:"lng"`
}

// 矩形の角で拾われる余分な行を見込んで多めに取得する
const supabaseFetchFactor = 4

func (r *SupabasePlacesRepository) SearchNearby(ctx context.Context, q model.PlaceSearchQuery) ([]model.Place, error) {
	bound := geo.NewBoundAroundPoint(q.Center.ToPoint(), float64(q.RadiusMeters))
	categoryFilter, err := json.Marshal([]string{q.Category})
	if err != nil {
		return nil, fmt.Errorf("カテゴリJSONマーシャルエラー: %w", err)
	}

	data, _, err := r.client.GetClient().From("pois").
		Select("id,name,categories,lat,lng", "", false).
		Gte("lat", formatCoord(bound.Min.Lat())).
		Lte("lat", formatCoord(bound.Max.Lat())).
		Gte("lng", formatCoord(bound.Min.Lon())).
		Lte("lng", formatCoord(bound.Max.Lon())).
		Filter("categories", "cs", string(categoryFilter)).
		Limit(q.Limit*supabaseFetchFactor, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("周辺観光地データの取得失敗: %w", err)
	}

	var rows []supabasePlace
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("観光地データのJSONアンマーシャル失敗: %w", err)
	}

	return nearestWithinRadius(rows, q), nil
}

// nearestWithinRadius は半径内の行を近い順に並べ、上限件数に切り詰める
func nearestWithinRadius(rows []supabasePlace, q model.PlaceSearchQuery) []model.Place {
	type candidate struct {
		place    model.Place
		distance float64
	}

	center := q.Center.ToPoint()
	var within []candidate
	for _, row := range rows {
		loc := model.LatLng{Lat: row.Lat, Lng: row.Lng}
		d := geo.Distance(center, loc.ToPoint())
		if d > float64(q.RadiusMeters) {
			continue
		}
		within = append(within, candidate{
			place: model.Place{
				ID:         row.ID,
				Name:       row.Name,
				Categories: row.Categories,
				Location:   &loc,
			},
			distance: d,
		})
	}

	sort.SliceStable(within, func(i, j int) bool {
		return within[i].distance < within[j].distance
	})
	if q.Limit > 0 && len(within) > q.Limit {
		within = within[:q.Limit]
	}

	places := make([]model.Place, 0, len(within))
	for _, c := range within {
		places = append(places, c.place)
	}
	return places
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
