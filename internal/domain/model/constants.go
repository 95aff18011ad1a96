package model

import "fmt"

// GuardrailDecision はゲートキーパーによるクエリの分類結果
type GuardrailDecision string

const (
	DecisionValid      GuardrailDecision = "valid"
	DecisionIncomplete GuardrailDecision = "incomplete"
	DecisionUnrelated  GuardrailDecision = "unrelated"
	DecisionGreeting   GuardrailDecision = "greeting"
	DecisionError      GuardrailDecision = "error"
)

// IsValid はパイプラインを続行すべき分類かどうかを判定する
func (d GuardrailDecision) IsValid() bool {
	return d == DecisionValid
}

// IsKnown は言語モデルが返してよい分類かどうかを判定する（error は内部専用）
func (d GuardrailDecision) IsKnown() bool {
	switch d {
	case DecisionValid, DecisionIncomplete, DecisionUnrelated, DecisionGreeting:
		return true
	default:
		return false
	}
}

// ClassifiableDecisions は言語モデルに提示する分類の一覧
func ClassifiableDecisions() []string {
	return []string{
		string(DecisionValid),
		string(DecisionIncomplete),
		string(DecisionUnrelated),
		string(DecisionGreeting),
	}
}

const (
	DefaultTripDurationDays = 1
	UnknownDriveTime        = "unknown"
)

// 観光地サンプリングの定数
const (
	MinRoutePathPoints       = 10    // これ未満のパスは目的地のみの検索にフォールバック
	SampleIntervals          = 10    // 10%刻み
	SearchRadiusMeters       = 10000 // 各サンプル地点の検索半径
	StopoverResultLimit      = 5
	DestinationResultLimit   = 15
	AttractionSearchCategory = "tourism"
)

// タグの定数
const (
	StopoverTagPrefix = "Stopover"
	DestinationTag    = "Destination (100% mark)"
)

// StopoverTag はルート上の割合に応じた経由地タグを生成する
func StopoverTag(percent int) string {
	return fmt.Sprintf("%s (~%d%% mark)", StopoverTagPrefix, percent)
}

// ユーザー向けの固定メッセージ
const (
	GuardrailFallbackMessage = "I'm having a little trouble understanding that. Could you try asking for a specific trip plan?"
	ItineraryFallbackMessage = "Sorry, I couldn't generate the detailed itinerary text."
)

// TargetAttractionCount は旅行日数に応じたランキングの目標件数（下限, 上限）を返す
func TargetAttractionCount(days int) (int, int) {
	switch {
	case days <= 1:
		return 5, 7
	case days <= 3:
		return 10, 15
	default:
		return 15, 20
	}
}
