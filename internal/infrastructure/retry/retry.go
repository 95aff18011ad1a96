package retry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// Policy は一時的な失敗に対するリトライ方針
// 待機時間は base + attempt * increment（attempt は1始まり）
type Policy struct {
	MaxRetries  int
	BaseDelay   time.Duration
	Increment   time.Duration
	IsTransient func(error) bool

	// OnRetry は待機に入る前に呼ばれる（ログ用、nil 可）
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultPolicy は 20秒, 35秒, 50秒 の間隔で最大3回リトライする
func DefaultPolicy(isTransient func(error) bool) Policy {
	return Policy{
		MaxRetries:  3,
		BaseDelay:   5 * time.Second,
		Increment:   15 * time.Second,
		IsTransient: isTransient,
	}
}

// Delay は attempt 回目のリトライ前の待機時間
func (p Policy) Delay(attempt int) time.Duration {
	return p.BaseDelay + time.Duration(attempt)*p.Increment
}

// ExhaustedError はリトライ回数を使い切った一時的な失敗
// 呼び出し側には致命的なエラーとして扱われる
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%d回試行しても成功しませんでした: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// Do は call を実行し、一時的な失敗であれば方針に従ってリトライする
// 致命的な失敗はリトライせずにそのまま返す
func Do[T any](ctx context.Context, p Policy, call func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := 0
	for {
		attempts++
		result, err := call(ctx)
		if err == nil {
			return result, nil
		}
		if p.IsTransient == nil || !p.IsTransient(err) {
			return zero, err
		}
		if attempts > p.MaxRetries {
			return zero, &ExhaustedError{Attempts: attempts, Last: err}
		}

		delay := p.Delay(attempts)
		if p.OnRetry != nil {
			p.OnRetry(attempts, delay, err)
		} else {
			log.Printf("🔁 一時的なエラーのため %v 後にリトライします (%d/%d): %v", delay, attempts, p.MaxRetries, err)
		}
		if err := sleep(ctx, delay); err != nil {
			return zero, fmt.Errorf("リトライ待機中にキャンセルされました: %w", err)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ContainsSignature はエラーメッセージに予約済みのシグネチャが含まれるかを判定する述語を返す
// 大文字小文字は区別しない
func ContainsSignature(signatures ...string) func(error) bool {
	lowered := make([]string, len(signatures))
	for i, s := range signatures {
		lowered[i] = strings.ToLower(s)
	}
	return func(err error) bool {
		if err == nil {
			return false
		}
		if errors.Is(err, context.Canceled) {
			return false
		}
		msg := strings.ToLower(err.Error())
		for _, s := range lowered {
			if strings.Contains(msg, s) {
				return true
			}
		}
		return false
	}
}
