// Package archive は完了済みプロジェクトの自動アーカイブジョブを提供する。
// AUTO_ARCHIVEが有効な場合のみワーカーモードで起動される。
package archive

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/paraman/internal/model"
	"github.com/hitoshi/paraman/internal/repository"
)

// Archiver はアーカイブ遷移の実行インターフェース。
type Archiver interface {
	// Archive は指定プロジェクトのアーカイブ遷移を実行する。
	Archive(ctx context.Context, projectID string) (*model.Entry, error)
}

// Sweeper は全サブタスク完了済みのプロジェクトを定期的に走査し、
// アーカイブ遷移を実行する。
type Sweeper struct {
	projectRepo repository.ProjectRepository
	archiver    Archiver
	logger      *slog.Logger
}

// NewSweeper はSweeperの新しいインスタンスを生成する。
func NewSweeper(projectRepo repository.ProjectRepository, archiver Archiver, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		projectRepo: projectRepo,
		archiver:    archiver,
		logger:      logger,
	}
}

// Start は指定間隔のティッカーでスイーパーを起動する。
// コンテキストがキャンセルされるまで実行を継続する。
func (s *Sweeper) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("自動アーカイブスイーパーを開始しました",
		slog.Duration("interval", interval),
	)

	// 起動直後に1回実行
	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("アーカイブ走査の実行に失敗しました",
			slog.String("error", err.Error()),
		)
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("自動アーカイブスイーパーを停止しました")
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logger.Error("アーカイブ走査の実行に失敗しました",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// RunOnce は全サブタスク完了済みのプロジェクトを1回走査し、
// 順次アーカイブ遷移を実行する。
// 個々の遷移失敗は記録して継続する（冪等: 次回の走査で再試行される）。
func (s *Sweeper) RunOnce(ctx context.Context) error {
	start := time.Now()

	projects, err := s.projectRepo.ListFullyCompleted(ctx)
	if err != nil {
		return err
	}

	if len(projects) == 0 {
		s.logger.Info("アーカイブ対象のプロジェクトはありません")
		return nil
	}

	archived := 0
	for _, proj := range projects {
		if _, err := s.archiver.Archive(ctx, proj.ID); err != nil {
			s.logger.Error("自動アーカイブに失敗しました",
				slog.String("project_id", proj.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		archived++
	}

	duration := time.Since(start)
	s.logger.Info("アーカイブ走査が完了しました",
		slog.Int("candidates", len(projects)),
		slog.Int("archived", archived),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
