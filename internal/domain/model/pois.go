package model

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

// LatLng 緯度経度を表す基本的な型（ジオコーディング結果や検索中心点で使用）
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ToPoint orb.Point（[経度, 緯度]）に変換
func (l LatLng) ToPoint() orb.Point {
	return orb.Point{l.Lng, l.Lat}
}

// LatLngFromPoint orb.Point（[経度, 緯度]）から LatLng を作成
func LatLngFromPoint(p orb.Point) LatLng {
	return LatLng{Lat: p.Lat(), Lng: p.Lon()}
}

func (l LatLng) String() string {
	return fmt.Sprintf("%f,%f", l.Lat, l.Lng)
}

// Place 外部の観光地検索で取得したスポット
type Place struct {
	ID         string   `json:"id,omitempty"`
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
	Location   *LatLng  `json:"location,omitempty"`
}

// CategoryLabel カテゴリをカンマ区切りのラベルにする（カテゴリなしは "N/A"）
func (p *Place) CategoryLabel() string {
	if len(p.Categories) == 0 {
		return "N/A"
	}
	return strings.Join(p.Categories, ", ")
}

// PlaceSearchQuery 観光地検索の条件
type PlaceSearchQuery struct {
	Center       LatLng
	RadiusMeters int
	Category     string
	Limit        int
}

// Geometry PostGIS GEOMETRY型に対応する構造体
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [longitude, latitude]
}

// ToLatLng Geometry を LatLng に変換（座標が不足している場合は nil）
func (g *Geometry) ToLatLng() *LatLng {
	if g == nil || len(g.Coordinates) < 2 {
		return nil
	}
	return &LatLng{Lat: g.Coordinates[1], Lng: g.Coordinates[0]}
}
