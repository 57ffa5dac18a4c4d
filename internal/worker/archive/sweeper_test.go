package archive

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/hitoshi/paraman/internal/model"
	"github.com/hitoshi/paraman/internal/repository"
)

// stubProjectRepo はListFullyCompletedのみを使用するテスト用リポジトリ。
type stubProjectRepo struct {
	repository.ProjectRepository
	completed []*model.Project
	err       error
}

func (r *stubProjectRepo) ListFullyCompleted(ctx context.Context) ([]*model.Project, error) {
	return r.completed, r.err
}

// spyArchiver はアーカイブ遷移の呼び出しを記録するテスト用Archiver。
type spyArchiver struct {
	archived []string
	failFor  map[string]error
}

func (a *spyArchiver) Archive(ctx context.Context, projectID string) (*model.Entry, error) {
	if err := a.failFor[projectID]; err != nil {
		return nil, err
	}
	a.archived = append(a.archived, projectID)
	return &model.Entry{ID: "entry-" + projectID, Category: model.CategoryArchives}, nil
}

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// TestRunOnce_ArchivesCompletedProjects は完了済みプロジェクトが
// アーカイブされることを検証する。
func TestRunOnce_ArchivesCompletedProjects(t *testing.T) {
	var buf bytes.Buffer
	repo := &stubProjectRepo{completed: []*model.Project{
		{ID: "p1"}, {ID: "p2"},
	}}
	archiver := &spyArchiver{}
	sweeper := NewSweeper(repo, archiver, newTestLogger(&buf))

	if err := sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnceが失敗した: %v", err)
	}

	if len(archiver.archived) != 2 {
		t.Errorf("2件アーカイブされるべき, 結果: %d件", len(archiver.archived))
	}
}

// TestRunOnce_NoCandidates は対象なしの場合に何もしないことを検証する。
func TestRunOnce_NoCandidates(t *testing.T) {
	var buf bytes.Buffer
	sweeper := NewSweeper(&stubProjectRepo{}, &spyArchiver{}, newTestLogger(&buf))

	if err := sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("対象なしはエラーではない: %v", err)
	}
	if !strings.Contains(buf.String(), "アーカイブ対象のプロジェクトはありません") {
		t.Error("対象なしのログが出力されるべき")
	}
}

// TestRunOnce_ContinuesOnFailure は個々の遷移失敗で走査が中断しないことを検証する。
func TestRunOnce_ContinuesOnFailure(t *testing.T) {
	var buf bytes.Buffer
	repo := &stubProjectRepo{completed: []*model.Project{
		{ID: "p1"}, {ID: "p2"}, {ID: "p3"},
	}}
	archiver := &spyArchiver{failFor: map[string]error{
		"p2": errors.New("一時的な障害"),
	}}
	sweeper := NewSweeper(repo, archiver, newTestLogger(&buf))

	if err := sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("個別の失敗で走査全体が失敗すべきではない: %v", err)
	}

	if len(archiver.archived) != 2 {
		t.Errorf("失敗をスキップして2件アーカイブされるべき, 結果: %d件", len(archiver.archived))
	}
	if !strings.Contains(buf.String(), "自動アーカイブに失敗しました") {
		t.Error("失敗のログが出力されるべき")
	}
}

// TestRunOnce_RepoError は走査クエリの失敗がエラーとして返ることを検証する。
func TestRunOnce_RepoError(t *testing.T) {
	var buf bytes.Buffer
	repo := &stubProjectRepo{err: errors.New("接続断")}
	sweeper := NewSweeper(repo, &spyArchiver{}, newTestLogger(&buf))

	if err := sweeper.RunOnce(context.Background()); err == nil {
		t.Error("走査クエリの失敗はエラーを返すべき")
	}
}
