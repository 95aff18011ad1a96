package maps

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/tharu280/tourAgent/internal/domain/model"
)

const defaultGeoapifyURL = "https://api.geoapify.com/v2/places"

// GeoapifyPlacesProvider はGeoapify Places APIを使用した観光地検索の実装
type GeoapifyPlacesProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewGeoapifyPlacesProvider は新しいプロバイダを生成する
func NewGeoapifyPlacesProvider(apiKey, baseURL string, timeout time.Duration) *GeoapifyPlacesProvider {
	if baseURL == "" {
		baseURL = defaultGeoapifyURL
	}
	return &GeoapifyPlacesProvider{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SearchNearby は中心点から半径内の観光地を検索する
func (g *GeoapifyPlacesProvider) SearchNearby(ctx context.Context, q model.PlaceSearchQuery) ([]model.Place, error) {
	lon := strconv.FormatFloat(q.Center.Lng, 'f', -1, 64)
	lat := strconv.FormatFloat(q.Center.Lat, 'f', -1, 64)

	params := url.Values{}
	params.Set("categories", q.Category)
	params.Set("filter", fmt.Sprintf("circle:%s,%s,%d", lon, lat, q.RadiusMeters))
	params.Set("bias", fmt.Sprintf("proximity:%s,%s", lon, lat))
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("apiKey", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("APIリクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスの読み取りに失敗: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("APIからエラーステータスが返されました: %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("GeoJSONのパースに失敗: %w", err)
	}

	places := make([]model.Place, 0, len(fc.Features))
	for _, f := range fc.Features {
		name, _ := f.Properties["name"].(string)
		if name == "" {
			continue
		}
		id, _ := f.Properties["place_id"].(string)
		place := model.Place{
			ID:         id,
			Name:       name,
			Categories: stringSlice(f.Properties["categories"]),
		}
		if p, ok := f.Geometry.(orb.Point); ok {
			loc := model.LatLngFromPoint(p)
			place.Location = &loc
		}
		places = append(places, place)
	}
	return places, nil
}

func stringSlice(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
