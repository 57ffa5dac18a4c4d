package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/paraman/internal/model"
	"github.com/hitoshi/paraman/internal/project"
)

// ProjectServiceInterface はプロジェクトハンドラーが必要とするサービスインターフェース。
type ProjectServiceInterface interface {
	// Create はプロジェクトを作成する。
	Create(ctx context.Context, input project.CreateInput) (*project.ProjectView, error)
	// Get は指定IDのプロジェクトを進捗率付きで取得する。
	Get(ctx context.Context, id string) (*project.ProjectView, error)
	// List はプロジェクト一覧を返す。activeOnlyが真の場合はアクティブのみ。
	List(ctx context.Context, activeOnly bool) ([]*project.ProjectView, error)
	// Update はプロジェクト本体の部分更新を適用する。未知のIDはno-op（nilを返す）。
	Update(ctx context.Context, id string, edits project.Edits) (*project.ProjectView, error)
	// Delete は指定IDのプロジェクトを削除する（冪等）。
	Delete(ctx context.Context, id string) error
	// AddItem はサブタスクを追加する。未知のプロジェクトIDはno-op。
	AddItem(ctx context.Context, projectID, title string, deadline *time.Time) (*project.ProjectView, error)
	// UpdateItem はIDが一致するサブタスクを丸ごと置き換える。未知のIDはno-op。
	UpdateItem(ctx context.Context, projectID string, item model.ProjectItem) (*project.ProjectView, error)
	// RemoveItem はIDが一致するサブタスクを取り除く。未知のIDはno-op。
	RemoveItem(ctx context.Context, projectID, itemID string) (*project.ProjectView, error)
	// Breakdown は分解コラボレータでサブタスクを生成し追加する。
	Breakdown(ctx context.Context, projectID string) (*project.ProjectView, error)
	// Archive はアーカイブ遷移を実行し、凍結されたArchivesエントリを返す。
	Archive(ctx context.Context, projectID string) (*model.Entry, error)
}

// ProjectHandler はプロジェクト管理のHTTPハンドラー。
type ProjectHandler struct {
	service ProjectServiceInterface
}

// NewProjectHandler はProjectHandlerを生成する。
func NewProjectHandler(service ProjectServiceInterface) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// --- リクエスト・レスポンス型 ---

// createProjectRequest はプロジェクト作成リクエストのボディ。
// seed_itemsはカンマ区切りの初期サブタスクタイトル。
type createProjectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Term        string `json:"term,omitempty"`
	Deadline    string `json:"deadline,omitempty"`
	SeedItems   string `json:"seed_items,omitempty"`
}

// patchProjectRequest はプロジェクト部分更新リクエストのボディ。
// nilのフィールドは変更しない。
type patchProjectRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Deadline    *string `json:"deadline,omitempty"`
}

// projectItemRequest はサブタスク追加・更新リクエストのボディ。
type projectItemRequest struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed,omitempty"`
	Deadline  string `json:"deadline,omitempty"`
}

// projectItemResponse はサブタスクのAPIレスポンス。
type projectItemResponse struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Completed bool    `json:"completed"`
	Deadline  *string `json:"deadline,omitempty"`
}

// projectResponse はプロジェクトのAPIレスポンス。
// 進捗率とアクティブ判定は読み取りのたびに再計算される派生値。
type projectResponse struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Term        string                `json:"term"`
	Deadline    *string               `json:"deadline,omitempty"`
	Status      string                `json:"status"`
	Slug        string                `json:"slug"`
	Items       []projectItemResponse `json:"items"`
	Progress    int                   `json:"progress"`
	IsActive    bool                  `json:"is_active"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// CreateProject はプロジェクトを作成する。
// POST /api/projects
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError())
		return
	}

	term, ok := model.ParseTerm(req.Term)
	if !ok {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidTermError(req.Term))
		return
	}

	deadline, apiErr := parseOptionalDeadline(req.Deadline)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	view, err := h.service.Create(r.Context(), project.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Term:        term,
		Deadline:    deadline,
		SeedItems:   req.SeedItems,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toProjectResponse(view))
}

// ListProjects はプロジェクト一覧を取得する。
// GET /api/projects?active=true
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	views, err := h.service.List(r.Context(), activeOnly)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]projectResponse, len(views))
	for i, view := range views {
		results[i] = toProjectResponse(view)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// GetProject はプロジェクト詳細を進捗率付きで取得する。
// GET /api/projects/:id
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	view, err := h.service.Get(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toProjectResponse(view))
}

// UpdateProject はプロジェクト本体の部分更新を適用する。
// PATCH /api/projects/:id
// タイトル・説明・期限のみが対象。未知のIDはno-opとして204を返す。
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	var req patchProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError())
		return
	}

	edits := project.Edits{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Deadline != nil {
		deadline, apiErr := parseOptionalDeadline(*req.Deadline)
		if apiErr != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
			return
		}
		edits.Deadline = deadline
	}

	view, err := h.service.Update(r.Context(), projectID, edits)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if view == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toProjectResponse(view))
}

// DeleteProject はプロジェクトを所有サブタスクごと削除する。
// DELETE /api/projects/:id
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), projectID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddProjectItem はプロジェクトにサブタスクを追加する。
// POST /api/projects/:id/items
// 未知のプロジェクトIDはno-opとして204を返す。
func (h *ProjectHandler) AddProjectItem(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	var req projectItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError())
		return
	}

	deadline, apiErr := parseOptionalDeadline(req.Deadline)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	view, err := h.service.AddItem(r.Context(), projectID, req.Title, deadline)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if view == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toProjectResponse(view))
}

// UpdateProjectItem はIDが一致するサブタスクを丸ごと置き換える。
// PUT /api/projects/:id/items/:itemID
// 未知のプロジェクトIDはno-opとして204、未知のサブタスクIDは変更なしの200を返す。
func (h *ProjectHandler) UpdateProjectItem(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	itemID := chi.URLParam(r, "itemID")

	var req projectItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError())
		return
	}

	deadline, apiErr := parseOptionalDeadline(req.Deadline)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	item := model.ProjectItem{
		ID:        itemID,
		Title:     req.Title,
		Completed: req.Completed,
		Deadline:  deadline,
	}

	view, err := h.service.UpdateItem(r.Context(), projectID, item)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if view == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toProjectResponse(view))
}

// RemoveProjectItem はIDが一致するサブタスクを取り除く。
// DELETE /api/projects/:id/items/:itemID
func (h *ProjectHandler) RemoveProjectItem(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	itemID := chi.URLParam(r, "itemID")

	view, err := h.service.RemoveItem(r.Context(), projectID, itemID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if view == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toProjectResponse(view))
}

// BreakdownProject は分解コラボレータでプロジェクトをサブタスクに分解する。
// POST /api/projects/:id/breakdown
// コラボレータの障害と空リストは回復可能であり、変更なしの200を返す。
func (h *ProjectHandler) BreakdownProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	view, err := h.service.Breakdown(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toProjectResponse(view))
}

// ArchiveProject はプロジェクトのアーカイブ遷移を実行する。
// POST /api/projects/:id/archive
// サブタスクを1件以上持ち全件完了している場合のみ許可される。
func (h *ProjectHandler) ArchiveProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	entry, err := h.service.Archive(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toEntryResponse(entry))
}

// --- ヘルパー関数 ---

// parseOptionalDeadline は省略可能な期限文字列をパースする。空文字列はnilを返す。
func parseOptionalDeadline(raw string) (*time.Time, *model.APIError) {
	if raw == "" {
		return nil, nil
	}
	deadline, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, model.NewInvalidDateError(raw)
	}
	return &deadline, nil
}

// toProjectResponse はProjectViewからAPIレスポンスに変換する。
func toProjectResponse(view *project.ProjectView) projectResponse {
	p := view.Project
	items := make([]projectItemResponse, len(p.Items))
	for i, item := range p.Items {
		items[i] = projectItemResponse{
			ID:        item.ID,
			Title:     item.Title,
			Completed: item.Completed,
			Deadline:  formatDeadline(item.Deadline),
		}
	}

	return projectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Term:        string(p.Term),
		Deadline:    formatDeadline(p.Deadline),
		Status:      string(p.Status),
		Slug:        p.Slug,
		Items:       items,
		Progress:    view.Progress,
		IsActive:    view.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
