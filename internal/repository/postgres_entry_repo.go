package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/paraman/internal/model"
)

// PostgresEntryRepo はPostgreSQLを使用したエントリリポジトリ。
type PostgresEntryRepo struct {
	db *sql.DB
}

// NewPostgresEntryRepo はPostgresEntryRepoを生成する。
func NewPostgresEntryRepo(db *sql.DB) *PostgresEntryRepo {
	return &PostgresEntryRepo{db: db}
}

// FindByID は指定IDのエントリを取得する。見つからない場合はnilを返す。
func (r *PostgresEntryRepo) FindByID(ctx context.Context, id string) (*model.Entry, error) {
	entry := &model.Entry{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, category, entry_date, completed, created_at, updated_at
		 FROM entries WHERE id = $1`,
		id,
	).Scan(
		&entry.ID, &entry.Title, &entry.Category, &entry.Date,
		&entry.Completed, &entry.CreatedAt, &entry.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("エントリの取得に失敗しました: %w", err)
	}

	if err := r.attachLink(ctx, entry); err != nil {
		return nil, err
	}
	if err := r.attachArchive(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// List は条件に一致するエントリ一覧を作成日時昇順で返す。
func (r *PostgresEntryRepo) List(ctx context.Context, filter EntryFilter) ([]*model.Entry, error) {
	query := `SELECT id, title, category, entry_date, completed, created_at, updated_at
	          FROM entries WHERE 1=1`
	args := []interface{}{}
	argIndex := 1

	if filter.Date != nil {
		query += fmt.Sprintf(" AND entry_date = $%d", argIndex)
		args = append(args, *filter.Date)
		argIndex++
	}
	if filter.Category != nil {
		query += fmt.Sprintf(" AND category = $%d", argIndex)
		args = append(args, string(*filter.Category))
		argIndex++
	}
	query += " ORDER BY created_at ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("エントリ一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var entries []*model.Entry
	for rows.Next() {
		entry := &model.Entry{}
		if err := rows.Scan(
			&entry.ID, &entry.Title, &entry.Category, &entry.Date,
			&entry.Completed, &entry.CreatedAt, &entry.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("エントリ行の読み取りに失敗しました: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("エントリ一覧の走査に失敗しました: %w", err)
	}

	for _, entry := range entries {
		if err := r.attachLink(ctx, entry); err != nil {
			return nil, err
		}
		if err := r.attachArchive(ctx, entry); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// Create はエントリを作成する。
// リンクメタデータとアーカイブスナップショットは同一トランザクションで保存される。
func (r *PostgresEntryRepo) Create(ctx context.Context, entry *model.Entry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO entries (id, title, category, entry_date, completed, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.Title, string(entry.Category), entry.Date,
		entry.Completed, entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("エントリの作成に失敗しました: %w", err)
	}

	if entry.Link != nil {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO entry_links (entry_id, display_title, domain, favicon_url, slug, is_pinned)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			entry.ID, entry.Link.DisplayTitle, entry.Link.Domain,
			entry.Link.FaviconURL, entry.Link.Slug, entry.Link.IsPinned,
		)
		if err != nil {
			return fmt.Errorf("リンクメタデータの作成に失敗しました: %w", err)
		}
	}

	if entry.Archive != nil {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO entry_archives (entry_id, notes) VALUES ($1, $2)`,
			entry.ID, entry.Archive.Notes,
		)
		if err != nil {
			return fmt.Errorf("アーカイブスナップショットの作成に失敗しました: %w", err)
		}
		for position, item := range entry.Archive.Items {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO entry_archive_items (id, entry_id, title, completed, deadline, position)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				item.ID, entry.ID, item.Title, item.Completed, item.Deadline, position,
			)
			if err != nil {
				return fmt.Errorf("アーカイブ項目の作成に失敗しました: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("トランザクションのコミットに失敗しました: %w", err)
	}
	return nil
}

// Update はエントリ本体とリンクメタデータを更新する。
// アーカイブスナップショットは不変のため更新しない。対象IDが存在しない場合は何もしない。
func (r *PostgresEntryRepo) Update(ctx context.Context, entry *model.Entry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE entries SET
		    title = $2, category = $3, entry_date = $4, completed = $5, updated_at = $6
		 WHERE id = $1`,
		entry.ID, entry.Title, string(entry.Category), entry.Date,
		entry.Completed, entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("エントリの更新に失敗しました: %w", err)
	}

	if entry.Link != nil {
		_, err = tx.ExecContext(ctx,
			`UPDATE entry_links SET
			    display_title = $2, domain = $3, favicon_url = $4, slug = $5, is_pinned = $6
			 WHERE entry_id = $1`,
			entry.ID, entry.Link.DisplayTitle, entry.Link.Domain,
			entry.Link.FaviconURL, entry.Link.Slug, entry.Link.IsPinned,
		)
		if err != nil {
			return fmt.Errorf("リンクメタデータの更新に失敗しました: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("トランザクションのコミットに失敗しました: %w", err)
	}
	return nil
}

// DeleteByID は指定IDのエントリを削除する。
// 関連するentry_links、entry_archives、entry_archive_itemsはCASCADE削除される。
func (r *PostgresEntryRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("エントリの削除に失敗しました: %w", err)
	}
	return nil
}

// attachLink はエントリにリンクメタデータを付与する。リンク行がなければ何もしない。
func (r *PostgresEntryRepo) attachLink(ctx context.Context, entry *model.Entry) error {
	link := &model.LinkMetadata{}
	err := r.db.QueryRowContext(ctx,
		`SELECT display_title, domain, favicon_url, slug, is_pinned
		 FROM entry_links WHERE entry_id = $1`,
		entry.ID,
	).Scan(&link.DisplayTitle, &link.Domain, &link.FaviconURL, &link.Slug, &link.IsPinned)

	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("リンクメタデータの取得に失敗しました: %w", err)
	}
	entry.Link = link
	return nil
}

// attachArchive はエントリにアーカイブスナップショットを付与する。アーカイブ行がなければ何もしない。
func (r *PostgresEntryRepo) attachArchive(ctx context.Context, entry *model.Entry) error {
	archive := &model.ArchivedProject{}
	err := r.db.QueryRowContext(ctx,
		`SELECT notes FROM entry_archives WHERE entry_id = $1`,
		entry.ID,
	).Scan(&archive.Notes)

	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("アーカイブスナップショットの取得に失敗しました: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, completed, deadline
		 FROM entry_archive_items WHERE entry_id = $1 ORDER BY position ASC`,
		entry.ID,
	)
	if err != nil {
		return fmt.Errorf("アーカイブ項目の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.ArchivedItem
		var deadline sql.NullTime
		if err := rows.Scan(&item.ID, &item.Title, &item.Completed, &deadline); err != nil {
			return fmt.Errorf("アーカイブ項目行の読み取りに失敗しました: %w", err)
		}
		if deadline.Valid {
			item.Deadline = &deadline.Time
		}
		archive.Items = append(archive.Items, item)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("アーカイブ項目の走査に失敗しました: %w", err)
	}

	entry.Archive = archive
	return nil
}

// compile-time interface check
var _ EntryRepository = (*PostgresEntryRepo)(nil)
