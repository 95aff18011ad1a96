package ai

import (
	"encoding/json"
	"errors"
	"strings"
)

// ExtractJSON はマークダウンのコードブロックに囲まれている可能性のある応答からJSONを取り出す
func ExtractJSON(text string) (string, error) {
	s := strings.TrimSpace(text)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		if end := strings.LastIndex(s, "```"); end >= 0 {
			s = s[:end]
		}
		s = strings.TrimSpace(s)
	}

	if json.Valid([]byte(s)) {
		return s, nil
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return "", errors.New("JSONが見つかりません")
	}
	closing := "}"
	if s[start] == '[' {
		closing = "]"
	}
	end := strings.LastIndex(s, closing)
	if end <= start {
		return "", errors.New("JSONが閉じられていません")
	}

	candidate := s[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return "", errors.New("有効なJSONではありません")
	}
	return candidate, nil
}
