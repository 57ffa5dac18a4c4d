package assist

import (
	"context"
	"errors"

	"github.com/hitoshi/paraman/internal/model"
)

// ErrNotConfigured は対応する外部サービスのURLが未設定の場合に返される。
var ErrNotConfigured = errors.New("外部サービスが設定されていません")

// UnconfiguredClassifier は分類サービス未設定時のスタブ。
// 常にエラーを返し、呼び出し元のフォールバック（Resourcesへの既定分類）を
// 発動させる。
type UnconfiguredClassifier struct{}

// NewUnconfiguredClassifier はUnconfiguredClassifierを生成する。
func NewUnconfiguredClassifier() *UnconfiguredClassifier {
	return &UnconfiguredClassifier{}
}

// Classify は常にErrNotConfiguredを返す。
func (*UnconfiguredClassifier) Classify(ctx context.Context, text string) (model.Category, error) {
	return "", ErrNotConfigured
}

// UnconfiguredDecomposer は分解サービス未設定時のスタブ。
// 常にエラーを返し、呼び出し元はサブタスクを追加せず現状を返す。
type UnconfiguredDecomposer struct{}

// NewUnconfiguredDecomposer はUnconfiguredDecomposerを生成する。
func NewUnconfiguredDecomposer() *UnconfiguredDecomposer {
	return &UnconfiguredDecomposer{}
}

// Decompose は常にErrNotConfiguredを返す。
func (*UnconfiguredDecomposer) Decompose(ctx context.Context, title, description string) ([]string, error) {
	return nil, ErrNotConfigured
}
