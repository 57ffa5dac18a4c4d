package assist

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
)

// Slugger はスラグ生成サービスのクライアント。
// タイトルから短い一意な識別子文字列を取得する。
type Slugger struct {
	httpClient *http.Client
	logger     *slog.Logger
	endpoint   string
}

// NewSlugger はSluggerの新しいインスタンスを生成する。
// baseURLにはスラグ生成サービスのベースURLを指定する。
func NewSlugger(httpClient *http.Client, logger *slog.Logger, baseURL string) *Slugger {
	return &Slugger{
		httpClient: httpClient,
		logger:     logger,
		endpoint:   baseURL + "/slug",
	}
}

// slugRequest はスラグ生成リクエストのボディ。
type slugRequest struct {
	Text string `json:"text"`
}

// slugResponse はスラグ生成レスポンスのボディ。
type slugResponse struct {
	Slug string `json:"slug"`
}

// GenerateSlug はテキストからスラグを生成する。
// 空スラグはエラーとして扱う。
func (s *Slugger) GenerateSlug(ctx context.Context, text string) (string, error) {
	var resp slugResponse
	if err := postJSON(ctx, s.httpClient, s.endpoint, slugRequest{Text: text}, &resp); err != nil {
		s.logger.Error("スラグ生成サービスの呼び出しに失敗しました",
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("スラグ生成に失敗しました: %w", err)
	}

	if resp.Slug == "" {
		return "", fmt.Errorf("スラグ生成サービスが空のスラグを返しました")
	}

	return resp.Slug, nil
}
