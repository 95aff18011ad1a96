package service

import (
	"context"
	"log"

	"github.com/tharu280/tourAgent/internal/domain/model"
	"github.com/tharu280/tourAgent/internal/domain/repository"
)

// GuardrailStage はクエリが旅行計画の依頼かどうかを分類する
type GuardrailStage struct {
	language repository.TripLanguageRepository
}

func NewGuardrailStage(language repository.TripLanguageRepository) *GuardrailStage {
	return &GuardrailStage{language: language}
}

func (s *GuardrailStage) Name() StageName { return StageGuardrail }

// Run は分類結果を返す。呼び出しに失敗した場合は error 分類と定型メッセージ
func (s *GuardrailStage) Run(ctx context.Context, record model.TripRecord) (*model.TripUpdate, error) {
	outcome, err := s.language.ClassifyQuery(ctx, record.OriginalQuery)
	if err != nil {
		log.Printf("❌ クエリの分類に失敗しました: %v", err)
		return &model.TripUpdate{
			GuardrailDecision: model.Ptr(model.DecisionError),
			FinalResponse:     model.Ptr(model.GuardrailFallbackMessage),
		}, nil
	}

	log.Printf("🛡️ 分類結果: %s", outcome.Decision)
	update := &model.TripUpdate{GuardrailDecision: model.Ptr(outcome.Decision)}
	if !outcome.Decision.IsValid() {
		message := outcome.FeedbackMessage
		if message == "" {
			message = model.GuardrailFallbackMessage
		}
		update.FinalResponse = model.Ptr(message)
	}
	return update, nil
}
