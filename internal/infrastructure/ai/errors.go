package ai

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tharu280/tourAgent/internal/infrastructure/retry"
)

// TransientSignatures はリトライ対象とみなすエラーメッセージの予約済みシグネチャ
var TransientSignatures = []string{
	"RESOURCE_EXHAUSTED",
	"UNAVAILABLE",
	"rate limit",
	"too many requests",
	"quota",
	"overloaded",
}

var hasTransientSignature = retry.ContainsSignature(TransientSignatures...)

// APIError はGemini APIが200以外を返した場合のエラー
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("API呼び出しエラー (status: %d %s): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("API呼び出しエラー (status: %d): %s", e.StatusCode, e.Message)
}

// MalformedResponseError はレスポンスが期待した形式でない場合のエラー（リトライしない）
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return "不正なレスポンス: " + e.Reason
}

// IsTransientError はリトライで回復する見込みのあるエラーかどうかを判定する
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}

	var malformed *MalformedResponseError
	if errors.As(err, &malformed) {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound,
			http.StatusInternalServerError:
			return false
		}
	}

	return hasTransientSignature(err)
}
