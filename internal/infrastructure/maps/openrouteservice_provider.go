package maps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/tharu280/tourAgent/internal/domain/model"
)

const defaultORSURL = "https://api.openrouteservice.org"

// OpenRouteServiceProvider はOpenRouteServiceのDirections APIを使用した車ルート検索の実装
type OpenRouteServiceProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewOpenRouteServiceProvider は新しいプロバイダを生成する
func NewOpenRouteServiceProvider(apiKey, baseURL string, timeout time.Duration) *OpenRouteServiceProvider {
	if baseURL == "" {
		baseURL = defaultORSURL
	}
	return &OpenRouteServiceProvider{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type orsRequest struct {
	Coordinates [][2]float64 `json:"coordinates"`
	Preference  string       `json:"preference"`
}

// GetDrivingRoute は出発地から目的地までの車ルートを取得する
// ORS は [経度, 緯度] の順で座標を受け取り、返却されるパスも同じ順序
func (o *OpenRouteServiceProvider) GetDrivingRoute(ctx context.Context, origin, destination model.LatLng) (*model.RouteDetails, error) {
	body, err := json.Marshal(orsRequest{
		Coordinates: [][2]float64{
			{origin.Lng, origin.Lat},
			{destination.Lng, destination.Lat},
		},
		Preference: "recommended",
	})
	if err != nil {
		return nil, fmt.Errorf("リクエストのシリアライズに失敗: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/v2/directions/driving-car/geojson", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Authorization", o.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/geo+json")

	resp, err := o.httpClient.Do(req)
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
	if len(fc.Features) == 0 {
		return nil, errors.New("APIから有効なルートが返されませんでした")
	}

	feature := fc.Features[0]
	path, ok := feature.Geometry.(orb.LineString)
	if !ok {
		return nil, fmt.Errorf("想定外のジオメトリ型です: %T", feature.Geometry)
	}

	summary, ok := feature.Properties["summary"].(map[string]interface{})
	if !ok {
		return nil, errors.New("ルートのsummaryがありません")
	}
	distance, _ := summary["distance"].(float64)
	durationSec, _ := summary["duration"].(float64)

	return &model.RouteDetails{
		DistanceMeters: distance,
		TotalDuration:  time.Duration(int64(durationSec)) * time.Second,
		Path:           path,
	}, nil
}
