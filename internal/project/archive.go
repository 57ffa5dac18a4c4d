package project

import (
	"time"

	"github.com/hitoshi/paraman/internal/model"
)

// Snapshot はプロジェクトのアーカイブ遷移による凍結エントリを構築する。
// Notesにはプロジェクト説明を、Itemsにはサブタスクを挿入順のまま凍結して保持する。
// dateはエントリが紐づく暦日（アーカイブ実行日）。
func Snapshot(p model.Project, entryID string, date time.Time, now time.Time) *model.Entry {
	items := make([]model.ArchivedItem, 0, len(p.Items))
	for _, item := range p.Items {
		var deadline *time.Time
		if item.Deadline != nil {
			d := *item.Deadline
			deadline = &d
		}
		items = append(items, model.ArchivedItem{
			ID:        item.ID,
			Title:     item.Title,
			Completed: item.Completed,
			Deadline:  deadline,
		})
	}

	return &model.Entry{
		ID:        entryID,
		Title:     p.Title,
		Category:  model.CategoryArchives,
		Date:      date,
		Completed: true,
		Archive: &model.ArchivedProject{
			Notes: p.Description,
			Items: items,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
