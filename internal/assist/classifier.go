package assist

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/paraman/internal/model"
)

// Classifier はテキスト分類サービスのクライアント。
// 自由テキストをPARAカテゴリのいずれかに分類する。
type Classifier struct {
	httpClient *http.Client
	logger     *slog.Logger
	endpoint   string
}

// NewClassifier はClassifierの新しいインスタンスを生成する。
// baseURLには分類サービスのベースURLを指定する。
func NewClassifier(httpClient *http.Client, logger *slog.Logger, baseURL string) *Classifier {
	return &Classifier{
		httpClient: httpClient,
		logger:     logger,
		endpoint:   baseURL + "/classify",
	}
}

// classifyRequest は分類リクエストのボディ。
type classifyRequest struct {
	Text string `json:"text"`
}

// classifyResponse は分類レスポンスのボディ。
type classifyResponse struct {
	Category string `json:"category"`
}

// Classify はテキストをPARAカテゴリに分類する。
// サービスが4カテゴリ以外の値を返した場合はエラーを返す。
// 失敗時のフォールバック（Resourcesへの既定分類）は呼び出し元の責務。
func (c *Classifier) Classify(ctx context.Context, text string) (model.Category, error) {
	var resp classifyResponse
	if err := postJSON(ctx, c.httpClient, c.endpoint, classifyRequest{Text: text}, &resp); err != nil {
		c.logger.Error("分類サービスの呼び出しに失敗しました",
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("テキスト分類に失敗しました: %w", err)
	}

	category, err := model.ParseCategory(resp.Category)
	if err != nil {
		c.logger.Error("分類サービスが未知のカテゴリを返しました",
			slog.String("category", resp.Category),
		)
		return "", fmt.Errorf("分類結果が不正です: %w", err)
	}

	return category, nil
}
