package project

import "github.com/hitoshi/paraman/internal/model"

// Progress はプロジェクトの進捗率を計算する。
// サブタスクが0件なら0。それ以外は完了率の四捨五入（half-up）で、
// 結果は常に0以上100以下。サブタスクの順序には依存しない。
func Progress(p model.Project) int {
	total := len(p.Items)
	if total == 0 {
		return 0
	}

	completed := 0
	for _, item := range p.Items {
		if item.Completed {
			completed++
		}
	}

	// 100*completed/total の四捨五入を整数演算で行う
	return (200*completed + total) / (2 * total)
}

// IsActive はプロジェクトがアクティブ（一覧に表示すべき状態）かを返す。
// サブタスクが0件、または未完了のサブタスクが残っている場合にアクティブ。
// 毎回の読み取りで再計算され、保存されることはない。
func IsActive(p model.Project) bool {
	total := len(p.Items)
	if total == 0 {
		return true
	}

	completed := 0
	for _, item := range p.Items {
		if item.Completed {
			completed++
		}
	}
	return completed < total
}
