// Package model はドメインモデルを定義する。
package model

import "fmt"

// Category はPARA分類の4カテゴリを表す。
// 値はこの4つに閉じており、UI層の「Auto」は Category の値ではなく
// 「手動指定なし」として呼び出し側で *Category = nil で表現する。
type Category string

const (
	// CategoryProjects は期限付きの目標（サブタスクを持つ）を表す。
	CategoryProjects Category = "Projects"
	// CategoryAreas は継続的な責任領域を表す。
	CategoryAreas Category = "Areas"
	// CategoryResources は参照資料（アクション対象外）を表す。
	CategoryResources Category = "Resources"
	// CategoryArchives は完了・非アクティブ項目を表す。
	CategoryArchives Category = "Archives"
)

// AllCategories はサポートされる全カテゴリのリストを返す。
func AllCategories() []Category {
	return []Category{
		CategoryProjects,
		CategoryAreas,
		CategoryResources,
		CategoryArchives,
	}
}

// ParseCategory は文字列をCategoryに変換する。未知の値はエラーを返す。
func ParseCategory(raw string) (Category, error) {
	for _, c := range AllCategories() {
		if string(c) == raw {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category: %q", raw)
}

// IsActionable はカテゴリがアクション可能（完了フラグが意味を持つ）かを返す。
// Resourcesは参照資料であり、完了フラグは意味を持たない。
func (c Category) IsActionable() bool {
	return c != CategoryResources
}
