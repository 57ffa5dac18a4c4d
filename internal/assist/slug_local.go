package assist

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// maxSlugBaseLength はスラグのタイトル由来部分の最大長。
const maxSlugBaseLength = 40

// LocalSlugger はスラグ生成サービス未設定時のローカルフォールバック実装。
// タイトルの正規化とuuid由来の短いサフィックスにより一意なスラグを生成する。
type LocalSlugger struct{}

// NewLocalSlugger はLocalSluggerの新しいインスタンスを生成する。
func NewLocalSlugger() *LocalSlugger {
	return &LocalSlugger{}
}

// GenerateSlug はテキストから一意なスラグを生成する。
// 英数字以外をハイフンに置換して正規化し、uuidの先頭8文字をサフィックスとして付与する。
// 常に成功する（エラーは返らない）。
func (s *LocalSlugger) GenerateSlug(_ context.Context, text string) (string, error) {
	base := normalizeSlugBase(text)
	suffix := uuid.New().String()[:8]
	if base == "" {
		return suffix, nil
	}
	return base + "-" + suffix, nil
}

// normalizeSlugBase はテキストをスラグのベース部分に正規化する。
// 小文字化 → 英数字以外をハイフンに置換 → 連続ハイフンの圧縮 → 前後のハイフン除去 → 最大長で切り詰め。
func normalizeSlugBase(text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))

	var b strings.Builder
	prevHyphen := false
	for _, r := range lower {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlnum {
			b.WriteRune(r)
			prevHyphen = false
			continue
		}
		if !prevHyphen && b.Len() > 0 {
			b.WriteByte('-')
			prevHyphen = true
		}
	}

	base := strings.Trim(b.String(), "-")
	if len(base) > maxSlugBaseLength {
		base = strings.Trim(base[:maxSlugBaseLength], "-")
	}
	return base
}
