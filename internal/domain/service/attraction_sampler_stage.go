package service

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tharu280/tourAgent/internal/domain/helper"
	"github.com/tharu280/tourAgent/internal/domain/model"
	"github.com/tharu280/tourAgent/internal/domain/repository"
)

// AttractionSamplerStage はルート上の地点ごとに観光地を検索し、名前で重複を除いた候補を作る
type AttractionSamplerStage struct {
	places        repository.PlacesRepository
	maxGoroutines int
}

// NewAttractionSamplerStage は新しいステージを作成する。concurrency が1以下なら逐次実行
func NewAttractionSamplerStage(places repository.PlacesRepository, concurrency int) *AttractionSamplerStage {
	if concurrency < 1 {
		concurrency = 1
	}
	return &AttractionSamplerStage{
		places:        places,
		maxGoroutines: concurrency,
	}
}

func (s *AttractionSamplerStage) Name() StageName { return StageAttraction }

func (s *AttractionSamplerStage) Run(ctx context.Context, record model.TripRecord) (*model.TripUpdate, error) {
	if record.DestinationCoords == nil {
		log.Printf("⚠️ 目的地の座標がないため観光地検索をスキップします")
		return &model.TripUpdate{}, nil
	}

	points := helper.BuildSearchPoints(*record.DestinationCoords, record.RoutePath)
	log.Printf("🚀 観光地検索開始: %d地点 (同時実行数 %d)", len(points), s.maxGoroutines)
	start := time.Now()

	// 結果は地点インデックスの位置に格納し、到着順ではなくインデックス順にマージする
	results := make([]helper.SampleResult, len(points))
	var g errgroup.Group
	g.SetLimit(s.maxGoroutines)

	for i, point := range points {
		g.Go(func() error {
			// goroutine 内のパニックはエンジンの recover に届かないため、ここで0件として扱う
			defer func() {
				if r := recover(); r != nil {
					log.Printf("❌ %s の観光地検索でパニックが発生しました: %v", point.Tag, r)
					results[i] = helper.SampleResult{Point: point}
				}
			}()
			results[i] = helper.SampleResult{Point: point, Places: s.search(ctx, point)}
			return nil
		})
	}
	_ = g.Wait() // 各地点の失敗は search 内で握りつぶしている

	candidates := helper.MergeUniqueByName(results)
	log.Printf("✅ 観光地検索完了: 候補%d件 (うち経由地%d件) (%v)",
		len(candidates), helper.CountStopovers(candidates), time.Since(start))

	if candidates == nil {
		candidates = []model.Attraction{}
	}
	return &model.TripUpdate{CandidateAttractions: candidates}, nil
}

// search は1地点の検索を行う。失敗時はログを残して0件として扱う
func (s *AttractionSamplerStage) search(ctx context.Context, point helper.SearchPoint) []model.Place {
	places, err := s.places.SearchNearby(ctx, model.PlaceSearchQuery{
		Center:       point.Coords,
		RadiusMeters: model.SearchRadiusMeters,
		Category:     model.AttractionSearchCategory,
		Limit:        point.Limit,
	})
	if err != nil {
		log.Printf("⚠️ %s の観光地検索に失敗しました: %v", point.Tag, err)
		return nil
	}
	return places
}
