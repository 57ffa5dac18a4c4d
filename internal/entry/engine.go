// Package entry はエントリの分類と管理を提供する。
package entry

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/hitoshi/paraman/internal/model"
)

// LinkResolver はURLからリンクメタデータを構築するインターフェース。
type LinkResolver interface {
	Resolve(ctx context.Context, rawURL string) (*model.LinkMetadata, error)
}

// Classifier はテキストからカテゴリを推定するコラボレータのインターフェース。
type Classifier interface {
	Classify(ctx context.Context, text string) (model.Category, error)
}

// EngineMetrics は分類エンジンが記録するメトリクスのインターフェース。
type EngineMetrics interface {
	RecordClassificationFallback()
	RecordLinkResolutionFailure()
}

// ClassifyInput は分類エンジンへの入力。
// ManualがnilのときはUI層の「Auto」（手動指定なし）を意味する。
type ClassifyInput struct {
	Text   string
	Manual *model.Category
}

// Classification は分類エンジンの出力。
// リンクメタデータの解決に成功した場合のみLinkが設定される。
type Classification struct {
	Category model.Category
	Link     *model.LinkMetadata
}

// CategorizationEngine は入力テキストをPARAカテゴリに割り当てる。
//
// 判定順序:
//  1. 空白のみのテキストはバリデーションエラー
//  2. URL形状のテキストはリンクメタデータを解決し、手動指定がなければResources
//  3. リンク解決に失敗した場合はリンクなしの分類パスへフォールバック
//  4. 手動指定があればそれを採用
//  5. 分類サービスに問い合わせ、失敗時はResourcesをデフォルトとする
type CategorizationEngine struct {
	resolver   LinkResolver
	classifier Classifier
	metrics    EngineMetrics
	logger     *slog.Logger
}

// NewCategorizationEngine はCategorizationEngineの新しいインスタンスを生成する。
func NewCategorizationEngine(resolver LinkResolver, classifier Classifier, metrics EngineMetrics, logger *slog.Logger) *CategorizationEngine {
	return &CategorizationEngine{
		resolver:   resolver,
		classifier: classifier,
		metrics:    metrics,
		logger:     logger,
	}
}

// Classify は入力をカテゴリに割り当てる。
// コラボレータの障害はフォールバックで吸収され、エラーとして伝播しない。
// エラーを返すのはタイトルが空白のみの場合だけ。
func (e *CategorizationEngine) Classify(ctx context.Context, input ClassifyInput) (*Classification, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, model.NewInvalidTitleError()
	}

	if IsURLShaped(text) {
		link, err := e.resolver.Resolve(ctx, text)
		if err == nil {
			category := model.CategoryResources
			if input.Manual != nil {
				category = *input.Manual
			}
			return &Classification{Category: category, Link: link}, nil
		}

		// リンク解決失敗: 生テキストとして分類パスを継続する
		e.metrics.RecordLinkResolutionFailure()
		e.logger.Warn("リンクメタデータの解決に失敗したためテキスト分類にフォールバックします",
			slog.String("url", text),
			slog.String("error", err.Error()),
		)
	}

	if input.Manual != nil {
		return &Classification{Category: *input.Manual}, nil
	}

	category, err := e.classifier.Classify(ctx, text)
	if err != nil {
		e.metrics.RecordClassificationFallback()
		e.logger.Warn("分類サービスの呼び出しに失敗したためResourcesにフォールバックします",
			slog.String("error", err.Error()),
		)
		return &Classification{Category: model.CategoryResources}, nil
	}

	return &Classification{Category: category}, nil
}

// IsURLShaped はテキストがURLとして扱うべき形状かを判定する。
// http/httpsスキームで始まり、ホストを持つ単一トークンのみをURLとみなす。
func IsURLShaped(text string) bool {
	if !strings.HasPrefix(text, "http://") && !strings.HasPrefix(text, "https://") {
		return false
	}
	if strings.ContainsAny(text, " \t\n") {
		return false
	}
	parsed, err := url.Parse(text)
	if err != nil {
		return false
	}
	return parsed.Hostname() != ""
}
