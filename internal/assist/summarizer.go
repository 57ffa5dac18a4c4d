package assist

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
)

// Summarizer はリンク要約サービスのクライアント。
// URLから短い人間可読タイトルを取得する。
type Summarizer struct {
	httpClient *http.Client
	logger     *slog.Logger
	endpoint   string
}

// NewSummarizer はSummarizerの新しいインスタンスを生成する。
// baseURLには要約サービスのベースURLを指定する。
func NewSummarizer(httpClient *http.Client, logger *slog.Logger, baseURL string) *Summarizer {
	return &Summarizer{
		httpClient: httpClient,
		logger:     logger,
		endpoint:   baseURL + "/summarize",
	}
}

// summarizeRequest は要約リクエストのボディ。
type summarizeRequest struct {
	URL string `json:"url"`
}

// summarizeResponse は要約レスポンスのボディ。
type summarizeResponse struct {
	Title string `json:"title"`
}

// Summarize はURLの短いタイトルを取得する。
// 空タイトルはエラーとして扱う（リンクメタデータ構築を中断させるため）。
func (s *Summarizer) Summarize(ctx context.Context, url string) (string, error) {
	var resp summarizeResponse
	if err := postJSON(ctx, s.httpClient, s.endpoint, summarizeRequest{URL: url}, &resp); err != nil {
		s.logger.Error("要約サービスの呼び出しに失敗しました",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("リンク要約に失敗しました: %w", err)
	}

	if resp.Title == "" {
		return "", fmt.Errorf("要約サービスが空のタイトルを返しました: %s", url)
	}

	return resp.Title, nil
}
