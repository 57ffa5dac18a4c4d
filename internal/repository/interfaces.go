// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/paraman/internal/model"
)

// EntryFilter はエントリ一覧取得の絞り込み条件。
// nilのフィールドは絞り込みを行わない。
type EntryFilter struct {
	Date     *time.Time
	Category *model.Category
}

// EntryRepository はエントリデータの永続化インターフェース。
type EntryRepository interface {
	// FindByID は指定IDのエントリを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Entry, error)

	// List は条件に一致するエントリ一覧を作成日時昇順で返す。
	List(ctx context.Context, filter EntryFilter) ([]*model.Entry, error)

	// Create はエントリを作成する。
	// リンクメタデータとアーカイブスナップショットは同一トランザクションで保存される。
	Create(ctx context.Context, entry *model.Entry) error

	// Update はエントリ本体とリンクメタデータを更新する。
	// アーカイブスナップショットは不変のため対象外。
	Update(ctx context.Context, entry *model.Entry) error

	// DeleteByID は指定IDのエントリを削除する。
	// 関連するリンク・アーカイブ行はCASCADE削除される。存在しないIDは何もしない。
	DeleteByID(ctx context.Context, id string) error
}

// ProjectRepository はプロジェクト集約の永続化インターフェース。
type ProjectRepository interface {
	// FindByID は指定IDのプロジェクトをサブタスク込みで取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Project, error)

	// List は全プロジェクトをサブタスク込みで作成日時昇順で返す。
	List(ctx context.Context) ([]*model.Project, error)

	// Create はプロジェクトとサブタスクを同一トランザクションで作成する。
	Create(ctx context.Context, project *model.Project) error

	// Replace はプロジェクト集約全体を置き換える。
	// プロジェクト行を更新し、サブタスクは全削除後に挿入順で再挿入する。
	// 対象IDが存在しない場合は何もしない。
	Replace(ctx context.Context, project *model.Project) error

	// DeleteByID は指定IDのプロジェクトを削除する。
	// サブタスクはCASCADE削除される。存在しないIDは何もしない。
	DeleteByID(ctx context.Context, id string) error

	// ListFullyCompleted はサブタスクを1件以上持ち、全サブタスクが完了している
	// プロジェクトの一覧を返す。自動アーカイブの走査に使用する。
	ListFullyCompleted(ctx context.Context) ([]*model.Project, error)
}
