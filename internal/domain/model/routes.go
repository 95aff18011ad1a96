package model

import (
	"time"

	"github.com/paulmach/orb"
)

// RouteDetails ルーティングサービスから返される経路情報
type RouteDetails struct {
	DistanceMeters float64
	TotalDuration  time.Duration
	Path           orb.LineString // [経度, 緯度] の順で出発地から目的地へ
}

// GeocodeResult ジオコーディングキャッシュに保存する結果
// Found が false の場合は「見つからなかった」ことをキャッシュしている
type GeocodeResult struct {
	Query  string
	Found  bool
	Coords LatLng
}
