// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TitleSanitizerService はコラボレータから取得した表示タイトルをサニタイズし、
// タグ混入やXSSのリスクからユーザーを保護する。
// bluemondayのStrictPolicyにより全HTMLタグを除去し、プレーンテキストのみを残す。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// maxTitleLength はサニタイズ後の表示タイトルの最大文字数（rune単位）。
const maxTitleLength = 200

// TitleSanitizerService は表示タイトルのサニタイズ機能のインターフェースを定義する。
// リンクメタデータの構築前およびアーカイブノートの保存前に使用される。
type TitleSanitizerService interface {
	// Sanitize はタイトル文字列から全HTMLタグを除去し、
	// 空白を正規化した上で最大長に切り詰めたプレーンテキストを返す。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// titleSanitizer はTitleSanitizerServiceの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフにサニタイズ処理を行う。
type titleSanitizer struct {
	policy *bluemonday.Policy
}

// NewTitleSanitizer はTitleSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyは全タグ・全属性を除去する。
func NewTitleSanitizer() *titleSanitizer {
	return &titleSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はタイトル文字列をサニタイズする。
// タグ除去 → HTMLエンティティのデコード → 空白正規化 → 最大長切り詰め の順に処理する。
func (s *titleSanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}

	stripped := s.policy.Sanitize(raw)

	// bluemondayはエンティティをエスケープしたまま返すためデコードする
	decoded := html.UnescapeString(stripped)

	// 連続する空白・改行を単一スペースに正規化
	normalized := strings.Join(strings.Fields(decoded), " ")

	runes := []rune(normalized)
	if len(runes) > maxTitleLength {
		return string(runes[:maxTitleLength])
	}
	return normalized
}

// compile-time interface check
var _ TitleSanitizerService = (*titleSanitizer)(nil)
