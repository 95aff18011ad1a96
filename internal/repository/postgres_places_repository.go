package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/tharu280/tourAgent/internal/domain/model"
	"github.com/tharu280/tourAgent/internal/domain/repository"
	"github.com/tharu280/tourAgent/internal/infrastructure/database"
)

// PostgresPlacesRepository はPostGISの pois テーブルから観光地を検索する
type PostgresPlacesRepository struct {
	client *database.PostgreSQLClient
}

func NewPostgresPlacesRepository(client *database.PostgreSQLClient) repository.PlacesRepository {
	return &PostgresPlacesRepository{
		client: client,
	}
}

// placeRow PostGISクエリの結果を受け取るための構造体
type placeRow struct {
	ID             string
	Name           string
	Location       string
	Categories     string
	DistanceMeters float64
}

// toPlace placeRowをmodel.Placeに変換
func (pr *placeRow) toPlace() (model.Place, error) {
	var location model.Geometry
	if err := json.Unmarshal([]byte(pr.Location), &location); err != nil {
		return model.Place{}, fmt.Errorf("location JSONBパースエラー: %w", err)
	}

	var categories []string
	if pr.Categories != "" {
		if err := json.Unmarshal([]byte(pr.Categories), &categories); err != nil {
			return model.Place{}, fmt.Errorf("categories JSONBパースエラー: %w", err)
		}
	}

	return model.Place{
		ID:         pr.ID,
		Name:       pr.Name,
		Categories: categories,
		Location:   location.ToLatLng(),
	}, nil
}

const searchNearbyQuery = `
	SELECT
		p.id, p.name,
		ST_AsGeoJSON(p.location)::jsonb as location,
		p.categories,
		ST_Distance(
			ST_GeogFromText('POINT(' || $2 || ' ' || $1 || ')'),
			p.location::geography
		) as distance_meters
	FROM pois p
	WHERE ST_DWithin(
		ST_GeogFromText('POINT(' || $2 || ' ' || $1 || ')'),
		p.location::geography,
		$3
	)
	AND p.categories @> $4::jsonb
	ORDER BY distance_meters
	LIMIT $5
`

// SearchNearby は中心点から半径内にある指定カテゴリの観光地を近い順に返す
func (r *PostgresPlacesRepository) SearchNearby(ctx context.Context, q model.PlaceSearchQuery) ([]model.Place, error) {
	categoriesJSON, err := json.Marshal([]string{q.Category})
	if err != nil {
		return nil, fmt.Errorf("カテゴリJSONマーシャルエラー: %w", err)
	}

	rows, err := r.client.DB.QueryContext(ctx, searchNearbyQuery,
		q.Center.Lat, q.Center.Lng, q.RadiusMeters, string(categoriesJSON), q.Limit)
	if err != nil {
		return nil, fmt.Errorf("周辺観光地検索失敗: %w", err)
	}
	defer rows.Close()

	return scanPlaces(rows)
}

func scanPlaces(rows *sql.Rows) ([]model.Place, error) {
	var places []model.Place
	for rows.Next() {
		var row placeRow
		var categories sql.NullString
		if err := rows.Scan(&row.ID, &row.Name, &row.Location, &categories, &row.DistanceMeters); err != nil {
			return nil, fmt.Errorf("観光地データスキャンエラー: %w", err)
		}
		row.Categories = categories.String

		place, err := row.toPlace()
		if err != nil {
			return nil, err
		}
		places = append(places, place)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("行イテレーション中のエラー: %w", err)
	}
	return places, nil
}
