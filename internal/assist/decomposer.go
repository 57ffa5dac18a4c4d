package assist

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
)

// Decomposer はプロジェクト分解サービスのクライアント。
// プロジェクトのタイトルと説明から、候補サブタスクのタイトル列を取得する。
type Decomposer struct {
	httpClient *http.Client
	logger     *slog.Logger
	endpoint   string
}

// NewDecomposer はDecomposerの新しいインスタンスを生成する。
// baseURLには分解サービスのベースURLを指定する。
func NewDecomposer(httpClient *http.Client, logger *slog.Logger, baseURL string) *Decomposer {
	return &Decomposer{
		httpClient: httpClient,
		logger:     logger,
		endpoint:   baseURL + "/decompose",
	}
}

// decomposeRequest は分解リクエストのボディ。
type decomposeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// decomposeResponse は分解レスポンスのボディ。
type decomposeResponse struct {
	Items []string `json:"items"`
}

// Decompose はプロジェクトを候補サブタスクのタイトル列に分解する。
// 空のリストは有効な結果であり、エラーではない。
// 返却順はそのままサブタスクの追加順になる。
func (d *Decomposer) Decompose(ctx context.Context, title, description string) ([]string, error) {
	var resp decomposeResponse
	if err := postJSON(ctx, d.httpClient, d.endpoint, decomposeRequest{Title: title, Description: description}, &resp); err != nil {
		d.logger.Error("分解サービスの呼び出しに失敗しました",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("プロジェクト分解に失敗しました: %w", err)
	}

	return resp.Items, nil
}
