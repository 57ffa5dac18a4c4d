package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/paraman/internal/model"
)

// PostgresProjectRepo はPostgreSQLを使用したプロジェクトリポジトリ。
type PostgresProjectRepo struct {
	db *sql.DB
}

// NewPostgresProjectRepo はPostgresProjectRepoを生成する。
func NewPostgresProjectRepo(db *sql.DB) *PostgresProjectRepo {
	return &PostgresProjectRepo{db: db}
}

// FindByID は指定IDのプロジェクトをサブタスク込みで取得する。見つからない場合はnilを返す。
func (r *PostgresProjectRepo) FindByID(ctx context.Context, id string) (*model.Project, error) {
	project := &model.Project{}
	var deadline sql.NullTime
	var description sql.NullString

	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, description, term, deadline, status, slug, created_at, updated_at
		 FROM projects WHERE id = $1`,
		id,
	).Scan(
		&project.ID, &project.Title, &description, &project.Term,
		&deadline, &project.Status, &project.Slug,
		&project.CreatedAt, &project.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("プロジェクトの取得に失敗しました: %w", err)
	}

	project.Description = nullStringValue(description)
	if deadline.Valid {
		project.Deadline = &deadline.Time
	}

	items, err := r.listItems(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	project.Items = items
	return project, nil
}

// List は全プロジェクトをサブタスク込みで作成日時昇順で返す。
func (r *PostgresProjectRepo) List(ctx context.Context) ([]*model.Project, error) {
	return r.list(ctx,
		`SELECT id, title, description, term, deadline, status, slug, created_at, updated_at
		 FROM projects ORDER BY created_at ASC`)
}

// ListFullyCompleted はサブタスクを1件以上持ち、全サブタスクが完了している
// プロジェクトの一覧を返す。自動アーカイブの走査に使用する。
func (r *PostgresProjectRepo) ListFullyCompleted(ctx context.Context) ([]*model.Project, error) {
	return r.list(ctx,
		`SELECT p.id, p.title, p.description, p.term, p.deadline, p.status, p.slug,
		        p.created_at, p.updated_at
		 FROM projects p
		 WHERE EXISTS (SELECT 1 FROM project_items i WHERE i.project_id = p.id)
		   AND NOT EXISTS (
		       SELECT 1 FROM project_items i
		       WHERE i.project_id = p.id AND i.completed = false)
		 ORDER BY p.created_at ASC`)
}

// list はクエリを実行し、各プロジェクトにサブタスクを付与して返す。
func (r *PostgresProjectRepo) list(ctx context.Context, query string) ([]*model.Project, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("プロジェクト一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var projects []*model.Project
	for rows.Next() {
		project := &model.Project{}
		var deadline sql.NullTime
		var description sql.NullString

		if err := rows.Scan(
			&project.ID, &project.Title, &description, &project.Term,
			&deadline, &project.Status, &project.Slug,
			&project.CreatedAt, &project.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("プロジェクト行の読み取りに失敗しました: %w", err)
		}

		project.Description = nullStringValue(description)
		if deadline.Valid {
			project.Deadline = &deadline.Time
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("プロジェクト一覧の走査に失敗しました: %w", err)
	}

	for _, project := range projects {
		items, err := r.listItems(ctx, project.ID)
		if err != nil {
			return nil, err
		}
		project.Items = items
	}
	return projects, nil
}

// Create はプロジェクトとサブタスクを同一トランザクションで作成する。
func (r *PostgresProjectRepo) Create(ctx context.Context, project *model.Project) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO projects (id, title, description, term, deadline, status, slug, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		project.ID, project.Title, nullString(project.Description),
		string(project.Term), project.Deadline, string(project.Status),
		project.Slug, project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("プロジェクトの作成に失敗しました: %w", err)
	}

	if err := insertItems(ctx, tx, project); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("トランザクションのコミットに失敗しました: %w", err)
	}
	return nil
}

// Replace はプロジェクト集約全体を置き換える。
// プロジェクト行を更新し、サブタスクは全削除後に挿入順で再挿入する。
// 対象IDが存在しない場合は何もしない。
func (r *PostgresProjectRepo) Replace(ctx context.Context, project *model.Project) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE projects SET
		    title = $2, description = $3, term = $4, deadline = $5,
		    status = $6, slug = $7, updated_at = $8
		 WHERE id = $1`,
		project.ID, project.Title, nullString(project.Description),
		string(project.Term), project.Deadline, string(project.Status),
		project.Slug, project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("プロジェクトの更新に失敗しました: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新行数の取得に失敗しました: %w", err)
	}
	if affected == 0 {
		// 対象プロジェクトが存在しない
		return nil
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM project_items WHERE project_id = $1`, project.ID)
	if err != nil {
		return fmt.Errorf("サブタスクの削除に失敗しました: %w", err)
	}
	if err := insertItems(ctx, tx, project); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("トランザクションのコミットに失敗しました: %w", err)
	}
	return nil
}

// DeleteByID は指定IDのプロジェクトを削除する。
// project_itemsはCASCADE削除される。存在しないIDは何もしない。
func (r *PostgresProjectRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("プロジェクトの削除に失敗しました: %w", err)
	}
	return nil
}

// listItems はプロジェクトのサブタスクを挿入順で取得する。
func (r *PostgresProjectRepo) listItems(ctx context.Context, projectID string) ([]model.ProjectItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, completed, deadline
		 FROM project_items WHERE project_id = $1 ORDER BY position ASC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("サブタスク一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var items []model.ProjectItem
	for rows.Next() {
		var item model.ProjectItem
		var deadline sql.NullTime
		if err := rows.Scan(&item.ID, &item.Title, &item.Completed, &deadline); err != nil {
			return nil, fmt.Errorf("サブタスク行の読み取りに失敗しました: %w", err)
		}
		if deadline.Valid {
			item.Deadline = &deadline.Time
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("サブタスク一覧の走査に失敗しました: %w", err)
	}
	return items, nil
}

// insertItems はサブタスクをposition付きで挿入する。
func insertItems(ctx context.Context, tx *sql.Tx, project *model.Project) error {
	for position, item := range project.Items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO project_items (id, project_id, title, completed, deadline, position)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			item.ID, project.ID, item.Title, item.Completed, item.Deadline, position,
		)
		if err != nil {
			return fmt.Errorf("サブタスクの作成に失敗しました: %w", err)
		}
	}
	return nil
}

// nullString は空文字列をsql.NullStringに変換する。
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullStringValue はsql.NullStringから文字列を取得する。
func nullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// compile-time interface check
var _ ProjectRepository = (*PostgresProjectRepo)(nil)
