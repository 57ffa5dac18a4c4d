// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, entry, project, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidTitle       = "INVALID_TITLE"
	ErrCodeInvalidCategory    = "INVALID_CATEGORY"
	ErrCodeInvalidDate        = "INVALID_DATE"
	ErrCodeInvalidTerm        = "INVALID_TERM"
	ErrCodeInvalidURL         = "INVALID_URL"
	ErrCodeSSRFBlocked        = "SSRF_BLOCKED"
	ErrCodeEntryNotFound      = "ENTRY_NOT_FOUND"
	ErrCodeProjectNotFound    = "PROJECT_NOT_FOUND"
	ErrCodeArchivedImmutable  = "ARCHIVED_IMMUTABLE"
	ErrCodeResourceNotDone    = "RESOURCE_NOT_ACTIONABLE"
	ErrCodeNotLinkEntry       = "NOT_LINK_ENTRY"
	ErrCodeProjectNotComplete = "PROJECT_NOT_COMPLETE"
)

// NewInvalidTitleError は空文字列・空白のみのタイトルに対するエラーを生成する。
// 分類が試行される前に入力バリデーションで返される。
func NewInvalidTitleError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidTitle,
		Message:  "タイトルが空です。",
		Category: "validation",
		Action:   "1文字以上のテキストを入力してください。",
	}
}

// NewInvalidCategoryError は無効なカテゴリエラーを生成する。
func NewInvalidCategoryError(raw string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCategory,
		Message:  fmt.Sprintf("無効なカテゴリです: %s", raw),
		Category: "validation",
		Action:   "カテゴリには Projects、Areas、Resources、Archives のいずれか、または Auto を指定してください。",
	}
}

// NewInvalidDateError は無効な日付エラーを生成する。
func NewInvalidDateError(raw string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDate,
		Message:  fmt.Sprintf("無効な日付です: %s", raw),
		Category: "validation",
		Action:   "日付は YYYY-MM-DD 形式で指定してください。",
	}
}

// NewInvalidTermError は無効な期間区分エラーを生成する。
func NewInvalidTermError(raw string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidTerm,
		Message:  fmt.Sprintf("無効な期間区分です: %s", raw),
		Category: "validation",
		Action:   "期間区分には mid または long を指定してください。",
	}
}

// NewInvalidURLError は無効なURLエラーを生成する。
func NewInvalidURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidURL,
		Message:  fmt.Sprintf("無効なURLです: %s", reason),
		Category: "validation",
		Action:   "正しいURL形式（http:// または https:// で始まるURL）を入力してください。",
	}
}

// NewSSRFBlockedError はSSRFブロックエラーを生成する。
func NewSSRFBlockedError() *APIError {
	return &APIError{
		Code:     ErrCodeSSRFBlocked,
		Message:  "セキュリティポリシーにより、指定されたURLへのアクセスがブロックされました。",
		Category: "validation",
		Action:   "公開されているWebサイトのURLを入力してください。ローカルネットワークやプライベートIPへのアクセスは許可されていません。",
	}
}

// NewEntryNotFoundError はエントリ未検出エラーを生成する。
// 読み取り操作でのみ使用する。変更操作の未知IDはエラーではなくno-opとする。
func NewEntryNotFoundError(entryID string) *APIError {
	return &APIError{
		Code:     ErrCodeEntryNotFound,
		Message:  fmt.Sprintf("指定されたエントリが見つかりません: %s", entryID),
		Category: "entry",
		Action:   "エントリIDを確認してください。",
	}
}

// NewProjectNotFoundError はプロジェクト未検出エラーを生成する。
// 読み取り操作でのみ使用する。変更操作の未知IDはエラーではなくno-opとする。
func NewProjectNotFoundError(projectID string) *APIError {
	return &APIError{
		Code:     ErrCodeProjectNotFound,
		Message:  fmt.Sprintf("指定されたプロジェクトが見つかりません: %s", projectID),
		Category: "project",
		Action:   "プロジェクトIDを確認してください。",
	}
}

// NewArchivedImmutableError はアーカイブ済みエントリへの変更操作に対するエラーを生成する。
func NewArchivedImmutableError() *APIError {
	return &APIError{
		Code:     ErrCodeArchivedImmutable,
		Message:  "アーカイブ済みのエントリは変更できません。",
		Category: "entry",
		Action:   "アーカイブ済みエントリに対して可能な操作は削除のみです。",
	}
}

// NewResourceNotActionableError はResourcesエントリへの完了操作に対するエラーを生成する。
func NewResourceNotActionableError() *APIError {
	return &APIError{
		Code:     ErrCodeResourceNotDone,
		Message:  "Resourcesカテゴリのエントリは参照資料であり、完了状態を持ちません。",
		Category: "entry",
		Action:   "完了操作はProjects、Areas、Archivesのエントリに対して実行してください。",
	}
}

// NewNotLinkEntryError はリンクを持たないエントリへのピン留め操作に対するエラーを生成する。
func NewNotLinkEntryError(entryID string) *APIError {
	return &APIError{
		Code:     ErrCodeNotLinkEntry,
		Message:  fmt.Sprintf("指定されたエントリはリンクを持ちません: %s", entryID),
		Category: "entry",
		Action:   "ピン留めはリンク由来のエントリに対してのみ実行できます。",
	}
}

// NewProjectNotCompleteError は未完了プロジェクトへのアーカイブ操作に対するエラーを生成する。
func NewProjectNotCompleteError(projectID string) *APIError {
	return &APIError{
		Code:     ErrCodeProjectNotComplete,
		Message:  fmt.Sprintf("プロジェクトには未完了の項目が残っています: %s", projectID),
		Category: "project",
		Action:   "すべての項目を完了させてからアーカイブしてください。",
	}
}
