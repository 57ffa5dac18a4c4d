// Package project はプロジェクト集約の純粋な変更操作と派生計算を提供する。
//
// 変更操作はすべてコピーオンライト: 入力のProjectを変更せず、
// サブタスクをクローンした新しいProjectを返す。
// 未知のIDに対する操作はエラーではなくno-op（入力と同等の値を返す）。
package project

import (
	"time"

	"github.com/hitoshi/paraman/internal/model"
)

// cloneWithItems はプロジェクトの浅いコピーにサブタスクのクローンを載せて返す。
func cloneWithItems(p model.Project, items []model.ProjectItem) model.Project {
	out := p
	out.Items = items
	return out
}

// cloneItems はサブタスクのスライスをクローンする。
func cloneItems(items []model.ProjectItem) []model.ProjectItem {
	if items == nil {
		return nil
	}
	out := make([]model.ProjectItem, len(items))
	copy(out, items)
	return out
}

// AddItem はサブタスクを末尾に追加した新しいProjectを返す。
func AddItem(p model.Project, item model.ProjectItem) model.Project {
	items := make([]model.ProjectItem, 0, len(p.Items)+1)
	items = append(items, p.Items...)
	items = append(items, item)
	return cloneWithItems(p, items)
}

// ReplaceItem はIDが一致するサブタスクを丸ごと置き換えた新しいProjectを返す。
// 一致するIDがなければ入力と同等のProjectを返す（no-op）。
func ReplaceItem(p model.Project, item model.ProjectItem) model.Project {
	items := cloneItems(p.Items)
	for i := range items {
		if items[i].ID == item.ID {
			items[i] = item
			break
		}
	}
	return cloneWithItems(p, items)
}

// RemoveItem はIDが一致するサブタスクを取り除いた新しいProjectを返す。
// 一致するIDがなければ入力と同等のProjectを返す（no-op）。
func RemoveItem(p model.Project, itemID string) model.Project {
	items := make([]model.ProjectItem, 0, len(p.Items))
	for _, item := range p.Items {
		if item.ID == itemID {
			continue
		}
		items = append(items, item)
	}
	return cloneWithItems(p, items)
}

// Edits はプロジェクト本体の部分更新を表す。
// nilのフィールドは変更しない。ID、Slug、Itemsは対象外。
type Edits struct {
	Title       *string
	Description *string
	Deadline    *time.Time
}

// MergeEdits は部分更新を適用した新しいProjectを返す。
func MergeEdits(p model.Project, edits Edits) model.Project {
	out := cloneWithItems(p, cloneItems(p.Items))
	if edits.Title != nil {
		out.Title = *edits.Title
	}
	if edits.Description != nil {
		out.Description = *edits.Description
	}
	if edits.Deadline != nil {
		out.Deadline = edits.Deadline
	}
	return out
}
