// Package handler はHTTP APIハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/paraman/internal/model"
)

// dateLayout はAPIで使用する日付フォーマット。
const dateLayout = "2006-01-02"

// EntryServiceInterface はエントリハンドラーが必要とするサービスインターフェース。
type EntryServiceInterface interface {
	// AddEntry はテキストを分類してエントリを作成する。manualがnilの場合は自動分類。
	AddEntry(ctx context.Context, title string, manual *model.Category, date time.Time) (*model.Entry, error)
	// Get は指定IDのエントリを取得する。
	Get(ctx context.Context, id string) (*model.Entry, error)
	// List は条件に一致するエントリ一覧を返す。
	List(ctx context.Context, date *time.Time, category *model.Category) ([]*model.Entry, error)
	// SetCompleted はエントリの完了状態を設定する。未知のIDはno-op（nilを返す）。
	SetCompleted(ctx context.Context, id string, completed bool) (*model.Entry, error)
	// SetPinned はリンク由来エントリのピン留め状態を設定する。未知のIDはno-op。
	SetPinned(ctx context.Context, id string, pinned bool) (*model.Entry, error)
	// Delete は指定IDのエントリを削除する（冪等）。
	Delete(ctx context.Context, id string) error
}

// EntryHandler はエントリ管理のHTTPハンドラー。
type EntryHandler struct {
	service EntryServiceInterface
}

// NewEntryHandler はEntryHandlerを生成する。
func NewEntryHandler(service EntryServiceInterface) *EntryHandler {
	return &EntryHandler{service: service}
}

// --- リクエスト・レスポンス型 ---

// addEntryRequest はエントリ作成リクエストのボディ。
// categoryは省略または "Auto" で自動分類になる。
type addEntryRequest struct {
	Title    string `json:"title"`
	Category string `json:"category,omitempty"`
	Date     string `json:"date,omitempty"`
}

// setCompletedRequest は完了状態更新リクエストのボディ。
type setCompletedRequest struct {
	Completed *bool `json:"completed"`
}

// setPinnedRequest はピン留め更新リクエストのボディ。
type setPinnedRequest struct {
	Pinned *bool `json:"pinned"`
}

// linkResponse はリンクメタデータのAPIレスポンス。
type linkResponse struct {
	DisplayTitle string `json:"display_title"`
	Domain       string `json:"domain"`
	FaviconURL   string `json:"favicon_url"`
	Slug         string `json:"slug"`
	IsPinned     bool   `json:"is_pinned"`
}

// archivedItemResponse はアーカイブ済みサブ項目のAPIレスポンス。
type archivedItemResponse struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Completed bool    `json:"completed"`
	Deadline  *string `json:"deadline,omitempty"`
}

// archiveResponse はアーカイブ済みプロジェクトスナップショットのAPIレスポンス。
type archiveResponse struct {
	Notes string                 `json:"notes"`
	Items []archivedItemResponse `json:"items"`
}

// entryResponse はエントリのAPIレスポンス。
type entryResponse struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Category  string           `json:"category"`
	Date      string           `json:"date"`
	Completed bool             `json:"completed"`
	Link      *linkResponse    `json:"link,omitempty"`
	Archive   *archiveResponse `json:"archive,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// AddEntry はエントリを作成する。
// POST /api/entries
func (h *EntryHandler) AddEntry(w http.ResponseWriter, r *http.Request) {
	var req addEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError())
		return
	}

	manual, apiErr := parseManualCategory(req.Category)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	date, apiErr := parseEntryDate(req.Date)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	entry, err := h.service.AddEntry(r.Context(), req.Title, manual, date)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toEntryResponse(entry))
}

// ListEntries はエントリ一覧を取得する。
// GET /api/entries?date=YYYY-MM-DD&category=Projects
func (h *EntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	var date *time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidDateError(raw))
			return
		}
		date = &parsed
	}

	var category *model.Category
	if raw := r.URL.Query().Get("category"); raw != "" {
		parsed, err := model.ParseCategory(raw)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidCategoryError(raw))
			return
		}
		category = &parsed
	}

	entries, err := h.service.List(r.Context(), date, category)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]entryResponse, len(entries))
	for i, entry := range entries {
		results[i] = toEntryResponse(entry)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// GetEntry はエントリ詳細を取得する。
// GET /api/entries/:id
func (h *EntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "id")

	entry, err := h.service.Get(r.Context(), entryID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toEntryResponse(entry))
}

// SetCompleted はエントリの完了状態を更新する。
// PUT /api/entries/:id/completed
// 未知のIDはno-opとして204を返す。
func (h *EntryHandler) SetCompleted(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "id")

	var req setCompletedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Completed == nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError())
		return
	}

	entry, err := h.service.SetCompleted(r.Context(), entryID, *req.Completed)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if entry == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toEntryResponse(entry))
}

// SetPinned はリンク由来エントリのピン留め状態を更新する。
// PUT /api/entries/:id/pin
// 未知のIDはno-opとして204を返す。
func (h *EntryHandler) SetPinned(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "id")

	var req setPinnedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Pinned == nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError())
		return
	}

	entry, err := h.service.SetPinned(r.Context(), entryID, *req.Pinned)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if entry == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toEntryResponse(entry))
}

// DeleteEntry はエントリを削除する。
// DELETE /api/entries/:id
// アーカイブ済みエントリに対して許可される唯一の変更操作。
func (h *EntryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), entryID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- ヘルパー関数 ---

// parseManualCategory はリクエストのcategoryフィールドを手動指定カテゴリに変換する。
// 空文字列と "Auto" は手動指定なし（nil）を意味する。
func parseManualCategory(raw string) (*model.Category, *model.APIError) {
	if raw == "" || raw == "Auto" {
		return nil, nil
	}
	category, err := model.ParseCategory(raw)
	if err != nil {
		return nil, model.NewInvalidCategoryError(raw)
	}
	return &category, nil
}

// parseEntryDate はリクエストのdateフィールドをエントリの暦日に変換する。
// 空文字列は当日（UTC）を意味する。
func parseEntryDate(raw string) (time.Time, *model.APIError) {
	if raw == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, model.NewInvalidDateError(raw)
	}
	return date, nil
}

// toEntryResponse はmodel.EntryからAPIレスポンスに変換する。
func toEntryResponse(entry *model.Entry) entryResponse {
	resp := entryResponse{
		ID:        entry.ID,
		Title:     entry.Title,
		Category:  string(entry.Category),
		Date:      entry.Date.Format(dateLayout),
		Completed: entry.Completed,
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,
	}

	if entry.Link != nil {
		resp.Link = &linkResponse{
			DisplayTitle: entry.Link.DisplayTitle,
			Domain:       entry.Link.Domain,
			FaviconURL:   entry.Link.FaviconURL,
			Slug:         entry.Link.Slug,
			IsPinned:     entry.Link.IsPinned,
		}
	}

	if entry.Archive != nil {
		items := make([]archivedItemResponse, len(entry.Archive.Items))
		for i, item := range entry.Archive.Items {
			items[i] = archivedItemResponse{
				ID:        item.ID,
				Title:     item.Title,
				Completed: item.Completed,
				Deadline:  formatDeadline(item.Deadline),
			}
		}
		resp.Archive = &archiveResponse{
			Notes: entry.Archive.Notes,
			Items: items,
		}
	}

	return resp
}

// formatDeadline は期限をAPIレスポンス用の日付文字列に変換する。
func formatDeadline(deadline *time.Time) *string {
	if deadline == nil {
		return nil
	}
	s := deadline.Format(dateLayout)
	return &s
}

// newInvalidRequestError はリクエストボディ不正のエラーを生成する。
func newInvalidRequestError() *model.APIError {
	return &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidTitle,
		model.ErrCodeInvalidCategory,
		model.ErrCodeInvalidDate,
		model.ErrCodeInvalidTerm,
		model.ErrCodeInvalidURL,
		"INVALID_REQUEST":
		return http.StatusBadRequest
	case model.ErrCodeSSRFBlocked:
		return http.StatusForbidden
	case model.ErrCodeEntryNotFound, model.ErrCodeProjectNotFound:
		return http.StatusNotFound
	case model.ErrCodeArchivedImmutable,
		model.ErrCodeResourceNotDone,
		model.ErrCodeNotLinkEntry,
		model.ErrCodeProjectNotComplete:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
