package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tharu280/tourAgent/internal/domain/model"
)

const defaultGoogleDirectionsURL = "https://maps.googleapis.com/maps/api/directions/json"

// GoogleDirectionsProvider はGoogle Maps Directions APIを使用した経路検索の実装
type GoogleDirectionsProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewGoogleDirectionsProvider は新しいプロバイダを生成する
func NewGoogleDirectionsProvider(apiKey, baseURL string, timeout time.Duration) *GoogleDirectionsProvider {
	if baseURL == "" {
		baseURL = defaultGoogleDirectionsURL
	}
	return &GoogleDirectionsProvider{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetDrivingRoute はGoogle Maps Directions APIを呼び出して車ルート情報を取得する
func (g *GoogleDirectionsProvider) GetDrivingRoute(ctx context.Context, origin, destination model.LatLng) (*model.RouteDetails, error) {
	// 1. APIリクエストURLを構築
	reqURL := g.buildURL(origin, destination)

	// 2. HTTPリクエストを作成・実行
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("APIリクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("APIからエラーステータスが返されました: %s", resp.Status)
	}

	// 3. JSONレスポンスをパース
	var apiResp googleRouteResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("JSONのパースに失敗: %w", err)
	}

	if apiResp.Status != "" && apiResp.Status != "OK" {
		return nil, fmt.Errorf("APIエラー: %s %s", apiResp.Status, apiResp.ErrorMessage)
	}
	if len(apiResp.Routes) == 0 {
		return nil, errors.New("APIから有効なルートが返されませんでした")
	}

	// 4. ドメインモデルに変換して返す
	firstRoute := apiResp.Routes[0]
	var totalDurationSec, totalDistance int
	for _, leg := range firstRoute.Legs {
		totalDurationSec += leg.Duration.Value
		totalDistance += leg.Distance.Value
	}

	path, err := DecodePolyline(firstRoute.OverviewPolyline.Points)
	if err != nil {
		return nil, fmt.Errorf("ポリラインのデコードに失敗: %w", err)
	}

	return &model.RouteDetails{
		DistanceMeters: float64(totalDistance),
		TotalDuration:  time.Duration(totalDurationSec) * time.Second,
		Path:           path,
	}, nil
}

func (g *GoogleDirectionsProvider) buildURL(origin, destination model.LatLng) string {
	params := url.Values{}
	params.Set("origin", fmt.Sprintf("%f,%f", origin.Lat, origin.Lng))
	params.Set("destination", fmt.Sprintf("%f,%f", destination.Lat, destination.Lng))
	params.Set("mode", "driving")
	params.Set("language", "en")
	params.Set("key", g.apiKey)

	return fmt.Sprintf("%s?%s", strings.TrimRight(g.baseURL, "/"), params.Encode())
}

// --- Google Maps APIのレスポンスをパースするための構造体 ---

type googleRouteResponse struct {
	Routes       []route `json:"routes"`
	Status       string  `json:"status"`
	ErrorMessage string  `json:"error_message,omitempty"`
}
type route struct {
	Legs             []leg            `json:"legs"`
	OverviewPolyline overviewPolyline `json:"overview_polyline"`
}
type leg struct {
	Duration textValue `json:"duration"` // seconds
	Distance textValue `json:"distance"` // meters
}
type textValue struct {
	Value int `json:"value"`
}
type overviewPolyline struct {
	Points string `json:"points"`
}
