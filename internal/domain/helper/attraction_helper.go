package helper

import "github.com/tharu280/tourAgent/internal/domain/model"

// KeepOfferedAttractions はランキング結果のうち候補に含まれる名前だけを残す
// 候補にない名前と2回目以降の同名は除外し、除外した件数も返す
func KeepOfferedAttractions(ranked []model.RankedAttraction, candidates []model.Attraction) ([]model.RankedAttraction, int) {
	offered := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		offered[c.Name] = struct{}{}
	}

	kept := make([]model.RankedAttraction, 0, len(ranked))
	picked := make(map[string]struct{}, len(ranked))
	for _, r := range ranked {
		if _, ok := offered[r.Name]; !ok {
			continue
		}
		if _, dup := picked[r.Name]; dup {
			continue
		}
		picked[r.Name] = struct{}{}
		kept = append(kept, r)
	}
	return kept, len(ranked) - len(kept)
}

// CountStopovers は経由地タグの候補数を返す
func CountStopovers(candidates []model.Attraction) int {
	count := 0
	for _, c := range candidates {
		if c.IsStopover() {
			count++
		}
	}
	return count
}
