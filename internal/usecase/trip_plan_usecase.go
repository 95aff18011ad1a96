package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/tharu280/tourAgent/internal/domain/model"
	"github.com/tharu280/tourAgent/internal/domain/service"
)

// ErrPlanningFailed はパイプライン自体が失敗した場合に返す
var ErrPlanningFailed = errors.New("旅行計画の生成に失敗しました")

type TripPlanUseCase interface {
	// PlanTrip はクエリから旅行計画を作成し、公開用のレスポンスを返す
	PlanTrip(ctx context.Context, req *model.TripPlanRequest) (*model.TripPlanResponse, error)
}

// tripPlanUseCaseImpl はTripPlanUseCaseの実装
type tripPlanUseCaseImpl struct {
	pipeline service.TripPipelineService
}

// NewTripPlanUseCase は新しいTripPlanUseCaseインスタンスを作成
func NewTripPlanUseCase(pipeline service.TripPipelineService) TripPlanUseCase {
	return &tripPlanUseCaseImpl{
		pipeline: pipeline,
	}
}

// PlanTrip はパイプラインを1回実行する
// パイプライン外に漏れたパニックもここで受け止め、ErrPlanningFailed として返す
func (u *tripPlanUseCaseImpl) PlanTrip(ctx context.Context, req *model.TripPlanRequest) (resp *model.TripPlanResponse, err error) {
	planID := uuid.New().String()
	start := time.Now()
	log.Printf("🚀 [%s] 旅行計画の生成開始: %q", planID, req.Query)

	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ [%s] 旅行計画の生成中にパニックが発生しました: %v\n%s", planID, r, debug.Stack())
			resp, err = nil, ErrPlanningFailed
		}
	}()

	record, err := u.pipeline.Execute(ctx, req.Query)
	if err != nil {
		log.Printf("❌ [%s] パイプラインの実行に失敗: %v", planID, err)
		return nil, fmt.Errorf("%w: %v", ErrPlanningFailed, err)
	}

	log.Printf("✅ [%s] 旅行計画の生成完了: decision=%s, 観光地%d件 (%v)",
		planID, record.GuardrailDecision, len(record.RankedAttractions), time.Since(start))
	return record.ToTripPlanResponse(planID), nil
}
