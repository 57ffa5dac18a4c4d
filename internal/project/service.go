package project

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/paraman/internal/model"
	"github.com/hitoshi/paraman/internal/repository"
)

// SlugGenerator はスラグ生成コラボレータのインターフェース。
type SlugGenerator interface {
	GenerateSlug(ctx context.Context, text string) (string, error)
}

// Decomposer はプロジェクト分解コラボレータのインターフェース。
type Decomposer interface {
	Decompose(ctx context.Context, title, description string) ([]string, error)
}

// ServiceMetrics はプロジェクトサービスが記録するメトリクスのインターフェース。
type ServiceMetrics interface {
	RecordSlugFallback()
	RecordDecompositionItems(count int)
	RecordArchiveTransition()
}

// ProjectView はプロジェクトと派生値（進捗率・アクティブ判定）をまとめた読み取りビュー。
type ProjectView struct {
	Project  *model.Project
	Progress int
	IsActive bool
}

// CreateInput はプロジェクト作成の入力。
// SeedItemsはカンマ区切りの初期サブタスクタイトル。
type CreateInput struct {
	Title       string
	Description string
	Term        model.Term
	Deadline    *time.Time
	SeedItems   string
}

// Service はプロジェクトのユースケースを提供する。
// すべての変更操作は純粋なコピーオンライト関数をリポジトリのスナップショットに
// 適用し、集約全体を置き換えて永続化する。
type Service struct {
	projectRepo repository.ProjectRepository
	entryRepo   repository.EntryRepository
	slugger     SlugGenerator
	slugBackup  SlugGenerator
	decomposer  Decomposer
	metrics     ServiceMetrics
	logger      *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
// slugBackupはslugger障害時のローカルフォールバック。作成が失敗しないことを保証する。
func NewService(
	projectRepo repository.ProjectRepository,
	entryRepo repository.EntryRepository,
	slugger SlugGenerator,
	slugBackup SlugGenerator,
	decomposer Decomposer,
	metrics ServiceMetrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		projectRepo: projectRepo,
		entryRepo:   entryRepo,
		slugger:     slugger,
		slugBackup:  slugBackup,
		decomposer:  decomposer,
		metrics:     metrics,
		logger:      logger,
	}
}

// Create はプロジェクトを作成する。
// スラグは作成時に1回だけ生成され、以後不変。
// スラグ生成サービスの障害時はローカル生成にフォールバックし、作成自体は失敗しない。
func (s *Service) Create(ctx context.Context, input CreateInput) (*ProjectView, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, model.NewInvalidTitleError()
	}

	slug, err := s.slugger.GenerateSlug(ctx, title)
	if err != nil {
		s.metrics.RecordSlugFallback()
		s.logger.Warn("スラグ生成サービスの呼び出しに失敗したためローカル生成にフォールバックします",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		slug, err = s.slugBackup.GenerateSlug(ctx, title)
		if err != nil {
			return nil, fmt.Errorf("スラグの生成に失敗しました: %w", err)
		}
	}

	now := time.Now()
	proj := &model.Project{
		ID:          uuid.New().String(),
		Title:       title,
		Description: input.Description,
		Term:        input.Term,
		Deadline:    input.Deadline,
		Status:      model.StatusInProgress,
		Slug:        slug,
		Items:       seedItems(input.SeedItems),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.projectRepo.Create(ctx, proj); err != nil {
		return nil, fmt.Errorf("プロジェクトの保存に失敗しました: %w", err)
	}

	s.logger.Info("プロジェクトを作成しました",
		slog.String("project_id", proj.ID),
		slog.String("slug", proj.Slug),
		slog.Int("seed_items", len(proj.Items)),
	)
	return s.view(proj), nil
}

// seedItems はカンマ区切りの初期サブタスク指定をProjectItemのスライスに変換する。
// 空白のみの要素は無視する。
func seedItems(raw string) []model.ProjectItem {
	var items []model.ProjectItem
	for _, part := range strings.Split(raw, ",") {
		title := strings.TrimSpace(part)
		if title == "" {
			continue
		}
		items = append(items, model.ProjectItem{
			ID:    uuid.New().String(),
			Title: title,
		})
	}
	return items
}

// Get は指定IDのプロジェクトを進捗率付きで取得する。見つからない場合はエラーを返す。
func (s *Service) Get(ctx context.Context, id string) (*ProjectView, error) {
	proj, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("プロジェクトの取得に失敗しました: %w", err)
	}
	if proj == nil {
		return nil, model.NewProjectNotFoundError(id)
	}
	return s.view(proj), nil
}

// List はプロジェクト一覧を進捗率付きで返す。
// activeOnlyが真の場合、アクティブ判定を満たすプロジェクトのみを返す。
func (s *Service) List(ctx context.Context, activeOnly bool) ([]*ProjectView, error) {
	projects, err := s.projectRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("プロジェクト一覧の取得に失敗しました: %w", err)
	}

	views := make([]*ProjectView, 0, len(projects))
	for _, proj := range projects {
		v := s.view(proj)
		if activeOnly && !v.IsActive {
			continue
		}
		views = append(views, v)
	}
	return views, nil
}

// Update はプロジェクト本体の部分更新を適用する。
// タイトル・説明・期限のみが対象で、ID・スラグ・サブタスクは変更されない。
// 未知のIDは何もしない。
func (s *Service) Update(ctx context.Context, id string, edits Edits) (*ProjectView, error) {
	proj, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("プロジェクトの取得に失敗しました: %w", err)
	}
	if proj == nil {
		// 未知IDへの変更操作はno-op
		return nil, nil
	}

	updated := MergeEdits(*proj, edits)
	updated.UpdatedAt = time.Now()
	if err := s.projectRepo.Replace(ctx, &updated); err != nil {
		return nil, fmt.Errorf("プロジェクトの更新に失敗しました: %w", err)
	}
	return s.view(&updated), nil
}

// Delete は指定IDのプロジェクトを所有サブタスクごと削除する。
// 存在しないIDも成功として扱う（冪等）。
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.projectRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("プロジェクトの削除に失敗しました: %w", err)
	}
	return nil
}

// AddItem はプロジェクトにサブタスクを追加する。未知のプロジェクトIDは何もしない。
func (s *Service) AddItem(ctx context.Context, projectID, title string, deadline *time.Time) (*ProjectView, error) {
	if strings.TrimSpace(title) == "" {
		return nil, model.NewInvalidTitleError()
	}

	proj, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("プロジェクトの取得に失敗しました: %w", err)
	}
	if proj == nil {
		return nil, nil
	}

	item := model.ProjectItem{
		ID:       uuid.New().String(),
		Title:    strings.TrimSpace(title),
		Deadline: deadline,
	}
	updated := AddItem(*proj, item)
	updated.UpdatedAt = time.Now()
	if err := s.projectRepo.Replace(ctx, &updated); err != nil {
		return nil, fmt.Errorf("サブタスクの追加に失敗しました: %w", err)
	}
	return s.view(&updated), nil
}

// UpdateItem はIDが一致するサブタスクを丸ごと置き換える。
// 未知のプロジェクトID・サブタスクIDは何もしない（冪等）。
func (s *Service) UpdateItem(ctx context.Context, projectID string, item model.ProjectItem) (*ProjectView, error) {
	proj, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("プロジェクトの取得に失敗しました: %w", err)
	}
	if proj == nil {
		return nil, nil
	}

	updated := ReplaceItem(*proj, item)
	updated.UpdatedAt = time.Now()
	if err := s.projectRepo.Replace(ctx, &updated); err != nil {
		return nil, fmt.Errorf("サブタスクの更新に失敗しました: %w", err)
	}
	return s.view(&updated), nil
}

// RemoveItem はIDが一致するサブタスクを取り除く。
// 未知のプロジェクトID・サブタスクIDは何もしない。
func (s *Service) RemoveItem(ctx context.Context, projectID, itemID string) (*ProjectView, error) {
	proj, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("プロジェクトの取得に失敗しました: %w", err)
	}
	if proj == nil {
		return nil, nil
	}

	updated := RemoveItem(*proj, itemID)
	updated.UpdatedAt = time.Now()
	if err := s.projectRepo.Replace(ctx, &updated); err != nil {
		return nil, fmt.Errorf("サブタスクの削除に失敗しました: %w", err)
	}
	return s.view(&updated), nil
}

// Breakdown は分解コラボレータでプロジェクトをサブタスクに分解し、
// 返されたタイトルを順序どおり新規サブタスクとして追加する。
// コラボレータの障害と空リストは回復可能: サブタスクを追加せずに現状を返す。
func (s *Service) Breakdown(ctx context.Context, projectID string) (*ProjectView, error) {
	proj, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("プロジェクトの取得に失敗しました: %w", err)
	}
	if proj == nil {
		return nil, model.NewProjectNotFoundError(projectID)
	}

	titles, err := s.decomposer.Decompose(ctx, proj.Title, proj.Description)
	if err != nil {
		s.logger.Warn("分解サービスの呼び出しに失敗したためサブタスクを追加しません",
			slog.String("project_id", projectID),
			slog.String("error", err.Error()),
		)
		return s.view(proj), nil
	}
	if len(titles) == 0 {
		return s.view(proj), nil
	}

	updated := *proj
	for _, title := range titles {
		updated = AddItem(updated, model.ProjectItem{
			ID:    uuid.New().String(),
			Title: title,
		})
	}
	updated.UpdatedAt = time.Now()
	if err := s.projectRepo.Replace(ctx, &updated); err != nil {
		return nil, fmt.Errorf("分解結果の保存に失敗しました: %w", err)
	}

	s.metrics.RecordDecompositionItems(len(titles))
	s.logger.Info("プロジェクトを分解しました",
		slog.String("project_id", projectID),
		slog.Int("items_added", len(titles)),
	)
	return s.view(&updated), nil
}

// Archive はプロジェクトのアーカイブ遷移を実行する。
// サブタスクを1件以上持ち全件完了している場合のみ許可される。
// アクティブな集合からプロジェクトを取り除き、凍結されたArchivesエントリを作成する。
func (s *Service) Archive(ctx context.Context, projectID string) (*model.Entry, error) {
	proj, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("プロジェクトの取得に失敗しました: %w", err)
	}
	if proj == nil {
		return nil, model.NewProjectNotFoundError(projectID)
	}
	if len(proj.Items) == 0 || IsActive(*proj) {
		return nil, model.NewProjectNotCompleteError(projectID)
	}

	now := time.Now()
	entry := Snapshot(*proj, uuid.New().String(), now, now)

	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("アーカイブエントリの作成に失敗しました: %w", err)
	}
	if err := s.projectRepo.DeleteByID(ctx, projectID); err != nil {
		return nil, fmt.Errorf("アーカイブ後のプロジェクト削除に失敗しました: %w", err)
	}

	s.metrics.RecordArchiveTransition()
	s.logger.Info("プロジェクトをアーカイブしました",
		slog.String("project_id", projectID),
		slog.String("entry_id", entry.ID),
		slog.Int("items", len(entry.Archive.Items)),
	)
	return entry, nil
}

// view はプロジェクトの読み取りビューを構築する。
func (s *Service) view(p *model.Project) *ProjectView {
	return &ProjectView{
		Project:  p,
		Progress: Progress(*p),
		IsActive: IsActive(*p),
	}
}
