package helper

import (
	"fmt"
	"math"
	"time"
)

// RoundDistanceKm はメートルをキロメートルに変換し、小数点以下1桁に丸める
func RoundDistanceKm(meters float64) float64 {
	return math.Round(meters/100) / 10
}

// FormatDurationLabel は所要時間を "3h 17m" 形式にする（秒未満・分未満は切り捨て）
func FormatDurationLabel(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	totalSeconds := int64(d / time.Second)
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
