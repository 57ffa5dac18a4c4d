package project

import (
	"testing"
	"time"

	"github.com/hitoshi/paraman/internal/model"
)

// TestSnapshot はアーカイブ遷移の凍結エントリ構築をテストする。
func TestSnapshot(t *testing.T) {
	deadline := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	proj := model.Project{
		ID:          "p1",
		Title:       "確定申告",
		Description: "2025年度分の確定申告を完了させる",
		Items: []model.ProjectItem{
			{ID: "i1", Title: "書類集め", Completed: true, Deadline: &deadline},
			{ID: "i2", Title: "e-Tax提出", Completed: true},
		},
	}
	date := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	now := time.Now()

	entry := Snapshot(proj, "entry-1", date, now)

	if entry.ID != "entry-1" {
		t.Errorf("期待ID: entry-1, 結果: %s", entry.ID)
	}
	if entry.Category != model.CategoryArchives {
		t.Errorf("期待カテゴリ: Archives, 結果: %s", entry.Category)
	}
	if entry.Title != "確定申告" {
		t.Errorf("タイトルはプロジェクトタイトルであるべき, 結果: %s", entry.Title)
	}
	if !entry.Date.Equal(date) {
		t.Errorf("エントリの日付はアーカイブ実行日であるべき, 結果: %v", entry.Date)
	}
	if entry.Archive == nil {
		t.Fatal("アーカイブスナップショットが設定されるべき")
	}
	if entry.Archive.Notes != proj.Description {
		t.Errorf("Notesはプロジェクト説明であるべき, 結果: %s", entry.Archive.Notes)
	}
	if len(entry.Archive.Items) != 2 {
		t.Fatalf("サブタスクが挿入順で凍結されるべき, 結果: %d件", len(entry.Archive.Items))
	}
	if entry.Archive.Items[0].ID != "i1" || entry.Archive.Items[1].ID != "i2" {
		t.Error("凍結サブタスクは挿入順を保持すべき")
	}
	if entry.Archive.Items[0].Deadline == nil || !entry.Archive.Items[0].Deadline.Equal(deadline) {
		t.Error("サブタスクの期限が凍結されるべき")
	}
}

// TestSnapshot_DeadlineIsCopied は凍結された期限が元の値と独立していることをテストする。
func TestSnapshot_DeadlineIsCopied(t *testing.T) {
	deadline := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	proj := model.Project{
		ID:    "p1",
		Title: "t",
		Items: []model.ProjectItem{
			{ID: "i1", Title: "item", Completed: true, Deadline: &deadline},
		},
	}

	entry := Snapshot(proj, "entry-1", time.Now(), time.Now())

	// 元のポインタを書き換えてもスナップショットは影響を受けない
	deadline = deadline.AddDate(1, 0, 0)
	want := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	if !entry.Archive.Items[0].Deadline.Equal(want) {
		t.Error("凍結された期限は元の値と独立であるべき")
	}
}
