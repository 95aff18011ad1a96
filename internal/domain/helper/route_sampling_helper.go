package helper

import (
	"github.com/paulmach/orb"

	"github.com/tharu280/tourAgent/internal/domain/model"
)

// SearchPoint は観光地検索を行う地点
type SearchPoint struct {
	Coords model.LatLng
	Tag    string // 例: "Stopover (~40% mark)"
	Limit  int
}

// SampleResult は1地点分の検索結果
type SampleResult struct {
	Point  SearchPoint
	Places []model.Place
}

// BuildSearchPoints はルート上の10%〜90%の9地点と目的地の計10地点を返す
// パスが短い（10点未満）または無い場合は目的地の1地点のみ
func BuildSearchPoints(destination model.LatLng, path orb.LineString) []SearchPoint {
	destinationPoint := SearchPoint{
		Coords: destination,
		Tag:    model.DestinationTag,
		Limit:  model.DestinationResultLimit,
	}

	n := len(path)
	if n < model.MinRoutePathPoints {
		return []SearchPoint{destinationPoint}
	}

	points := make([]SearchPoint, 0, model.SampleIntervals)
	for i := 1; i < model.SampleIntervals; i++ {
		points = append(points, SearchPoint{
			Coords: model.LatLngFromPoint(path[PercentileIndex(n, i)]),
			Tag:    model.StopoverTag(i * 100 / model.SampleIntervals),
			Limit:  model.StopoverResultLimit,
		})
	}
	return append(points, destinationPoint)
}

// PercentileIndex は長さ n のパスの i/10 地点のインデックスを返す（最後のインデックスでクランプ）
func PercentileIndex(n, i int) int {
	idx := n * i / model.SampleIntervals
	if idx > n-1 {
		idx = n - 1
	}
	return idx
}

// MergeUniqueByName は地点順に結果を結合し、名前の重複を除外する
// 同じ名前は最初に現れたもの（地点インデックスが小さいもの）を残す
func MergeUniqueByName(results []SampleResult) []model.Attraction {
	seen := make(map[string]struct{})
	var merged []model.Attraction
	for _, r := range results {
		for i := range r.Places {
			place := &r.Places[i]
			if place.Name == "" {
				continue
			}
			if _, ok := seen[place.Name]; ok {
				continue
			}
			seen[place.Name] = struct{}{}
			merged = append(merged, model.Attraction{
				Name:            place.Name,
				Categories:      place.CategoryLabel(),
				LocationContext: r.Point.Tag,
			})
		}
	}
	return merged
}
