package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"time"

	"github.com/tharu280/tourAgent/internal/domain/model"
)

// TripPipelineService はクエリから旅行計画レコードを作るパイプライン
type TripPipelineService interface {
	Execute(ctx context.Context, query string) (*model.TripRecord, error)
}

// transition は遷移表の1行。next が nil の場合は終端
type transition struct {
	stage Stage
	next  func(record *model.TripRecord) StageName
}

type tripPipelineService struct {
	entry StageName
	table map[StageName]transition
}

// TripStages はパイプラインを構成する7つのステージ
type TripStages struct {
	Guardrail  Stage
	Extractor  Stage
	Geocoder   Stage
	Router     Stage
	Attraction Stage
	Ranker     Stage
	Itinerary  Stage
}

// NewTripPipelineService はゲートキーパーを入口とし、valid 以外で終了する遷移表を組み立てる
func NewTripPipelineService(stages TripStages) (TripPipelineService, error) {
	ordered := []Stage{
		stages.Guardrail, stages.Extractor, stages.Geocoder, stages.Router,
		stages.Attraction, stages.Ranker, stages.Itinerary,
	}
	for i, s := range ordered {
		if s == nil {
			return nil, fmt.Errorf("ステージ%dが設定されていません", i+1)
		}
	}

	table := make(map[StageName]transition, len(ordered))
	for i, s := range ordered {
		if _, dup := table[s.Name()]; dup {
			return nil, fmt.Errorf("ステージ名が重複しています: %s", s.Name())
		}
		next := StageEnd
		if i+1 < len(ordered) {
			next = ordered[i+1].Name()
		}
		table[s.Name()] = transition{stage: s, next: always(next)}
	}

	// ゲートキーパーの後だけ条件分岐
	extractor := stages.Extractor.Name()
	table[stages.Guardrail.Name()] = transition{
		stage: stages.Guardrail,
		next: func(record *model.TripRecord) StageName {
			if record.GuardrailDecision.IsValid() {
				return extractor
			}
			return StageEnd
		},
	}

	return &tripPipelineService{
		entry: stages.Guardrail.Name(),
		table: table,
	}, nil
}

func always(name StageName) func(*model.TripRecord) StageName {
	return func(*model.TripRecord) StageName { return name }
}

// Execute はステージを順に実行し、完成または途中終了したレコードを返す
// ステージの失敗はそのステージの寄与がないだけで、パイプライン全体は止めない
func (s *tripPipelineService) Execute(ctx context.Context, query string) (*model.TripRecord, error) {
	if query == "" {
		return nil, errors.New("クエリが空です")
	}

	record := model.NewTripRecord(query)
	start := time.Now()

	current := s.entry
	// 遷移表はループを持たないが、念のためステージ数で打ち切る
	for steps := 0; current != StageEnd && steps < len(s.table); steps++ {
		t, ok := s.table[current]
		if !ok {
			log.Printf("❌ 未登録のステージです: %s", current)
			break
		}

		stageStart := time.Now()
		update := s.runStage(ctx, t.stage, record)
		record.Merge(update)
		log.Printf("✅ ステージ完了: %s (%v)", current, time.Since(stageStart))

		current = t.next(record)
	}

	log.Printf("🏁 パイプライン完了: decision=%s (%v)", record.GuardrailDecision, time.Since(start))
	return record, nil
}

// runStage はステージを実行し、エラーやパニックを空の更新に変換する
func (s *tripPipelineService) runStage(ctx context.Context, stage Stage, record *model.TripRecord) (update *model.TripUpdate) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ ステージ %s でパニックが発生しました: %v\n%s", stage.Name(), r, debug.Stack())
			update = nil
		}
	}()

	update, err := stage.Run(ctx, record.Snapshot())
	if err != nil {
		log.Printf("⚠️ ステージ %s が失敗しました（更新なしで続行）: %v", stage.Name(), err)
		return nil
	}
	return update
}
