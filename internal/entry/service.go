package entry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/paraman/internal/model"
	"github.com/hitoshi/paraman/internal/repository"
)

// ServiceMetrics はエントリサービスが記録するメトリクスのインターフェース。
type ServiceMetrics interface {
	RecordEntryCreated(category string)
}

// Service はエントリのユースケースを提供する。
type Service struct {
	entryRepo repository.EntryRepository
	engine    *CategorizationEngine
	metrics   ServiceMetrics
	logger    *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(entryRepo repository.EntryRepository, engine *CategorizationEngine, metrics ServiceMetrics, logger *slog.Logger) *Service {
	return &Service{
		entryRepo: entryRepo,
		engine:    engine,
		metrics:   metrics,
		logger:    logger,
	}
}

// AddEntry はテキストを分類してエントリを作成する。
// manualがnilの場合は自動分類（URL判定→分類サービス→Resourcesデフォルト）を行う。
func (s *Service) AddEntry(ctx context.Context, title string, manual *model.Category, date time.Time) (*model.Entry, error) {
	classification, err := s.engine.Classify(ctx, ClassifyInput{Text: title, Manual: manual})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entry := &model.Entry{
		ID:        uuid.New().String(),
		Title:     title,
		Category:  classification.Category,
		Date:      date,
		Completed: false,
		Link:      classification.Link,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("エントリの保存に失敗しました: %w", err)
	}

	s.metrics.RecordEntryCreated(string(entry.Category))
	s.logger.Info("エントリを作成しました",
		slog.String("entry_id", entry.ID),
		slog.String("category", string(entry.Category)),
		slog.Bool("link_bearing", entry.IsLinkBearing()),
	)
	return entry, nil
}

// Get は指定IDのエントリを取得する。見つからない場合はエラーを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Entry, error) {
	entry, err := s.entryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("エントリの取得に失敗しました: %w", err)
	}
	if entry == nil {
		return nil, model.NewEntryNotFoundError(id)
	}
	return entry, nil
}

// List は条件に一致するエントリ一覧を返す。
// dateとcategoryはnilの場合に絞り込みを行わない。
func (s *Service) List(ctx context.Context, date *time.Time, category *model.Category) ([]*model.Entry, error) {
	entries, err := s.entryRepo.List(ctx, repository.EntryFilter{Date: date, Category: category})
	if err != nil {
		return nil, fmt.Errorf("エントリ一覧の取得に失敗しました: %w", err)
	}
	return entries, nil
}

// SetCompleted はエントリの完了状態を設定する。
// 未知のIDは何もしない。アーカイブ済みエントリとResourcesエントリはエラーを返す。
func (s *Service) SetCompleted(ctx context.Context, id string, completed bool) (*model.Entry, error) {
	entry, err := s.entryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("エントリの取得に失敗しました: %w", err)
	}
	if entry == nil {
		// 未知IDへの変更操作はno-op
		return nil, nil
	}
	if entry.IsArchivedProject() {
		return nil, model.NewArchivedImmutableError()
	}
	if !entry.Category.IsActionable() {
		return nil, model.NewResourceNotActionableError()
	}

	if entry.Completed == completed {
		// 冪等: 状態が変わらなければ更新しない
		return entry, nil
	}

	entry.Completed = completed
	entry.UpdatedAt = time.Now()
	if err := s.entryRepo.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("エントリの更新に失敗しました: %w", err)
	}
	return entry, nil
}

// SetPinned はリンク由来エントリのピン留め状態を設定する。
// 未知のIDは何もしない。リンクを持たないエントリはエラーを返す。
func (s *Service) SetPinned(ctx context.Context, id string, pinned bool) (*model.Entry, error) {
	entry, err := s.entryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("エントリの取得に失敗しました: %w", err)
	}
	if entry == nil {
		// 未知IDへの変更操作はno-op
		return nil, nil
	}
	if entry.IsArchivedProject() {
		return nil, model.NewArchivedImmutableError()
	}
	if !entry.IsLinkBearing() {
		return nil, model.NewNotLinkEntryError(id)
	}

	if entry.Link.IsPinned == pinned {
		return entry, nil
	}

	entry.Link.IsPinned = pinned
	entry.UpdatedAt = time.Now()
	if err := s.entryRepo.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("エントリの更新に失敗しました: %w", err)
	}
	return entry, nil
}

// Delete は指定IDのエントリを削除する。存在しないIDも成功として扱う（冪等）。
// アーカイブ済みエントリに対して許可される唯一の変更操作。
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.entryRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("エントリの削除に失敗しました: %w", err)
	}
	return nil
}
