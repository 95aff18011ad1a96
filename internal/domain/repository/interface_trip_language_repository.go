package repository

import (
	"context"

	"github.com/tharu280/tourAgent/internal/domain/model"
)

// TripLanguageRepository は言語モデルを使った分類・抽出・ランキング・旅程生成の責務を持つリポジトリインターフェース
// 実装側で一時的な失敗のリトライを行い、返るエラーはリトライ後のもの
type TripLanguageRepository interface {
	// ClassifyQuery はクエリを valid / incomplete / unrelated / greeting に分類し、ユーザー向けの返答を生成する
	ClassifyQuery(ctx context.Context, query string) (*model.GuardrailOutcome, error)

	// ExtractLocations はクエリから出発地・目的地・日数を抽出する
	ExtractLocations(ctx context.Context, query string) (*model.ExtractedLocations, error)

	// RankAttractions は候補から旅行日数に合わせた観光地を選び、優先順に並べる
	RankAttractions(ctx context.Context, rc *model.RankingContext) ([]model.RankedAttraction, error)

	// WriteItinerary は日別の旅程テキストを生成する
	WriteItinerary(ctx context.Context, ic *model.ItineraryContext) (string, error)
}
