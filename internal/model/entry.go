// Package model はドメインモデルを定義する。
package model

import "time"

// Entry は分類済みのコンテンツ単位（タスク・メモ・リンク）を表す。
// UI層ではTaskと呼ばれる。
type Entry struct {
	ID        string
	Title     string
	Category  Category
	Date      time.Time // エントリが紐づく暦日。自動で進めない。
	Completed bool      // CategoryがResourcesの場合は無視される。
	Link      *LinkMetadata
	Archive   *ArchivedProject
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLinkBearing はエントリがリンク由来（表示メタデータを持つ）かを返す。
func (e *Entry) IsLinkBearing() bool {
	return e.Link != nil
}

// IsArchivedProject はエントリがアーカイブ済みプロジェクトの凍結表現かを返す。
// 真の場合、このエントリは終端状態であり削除以外の変更は許可されない。
func (e *Entry) IsArchivedProject() bool {
	return e.Archive != nil
}

// LinkMetadata はリンク由来エントリの表示メタデータを表す。
// DisplayTitleとSlugは外部コラボレータから取得し、
// DomainとFaviconURLはURLから決定的に導出される。
type LinkMetadata struct {
	DisplayTitle string
	Domain       string // ホスト名。先頭の "www." は除去済み。
	FaviconURL   string // Domainから導出される参照文字列。取得・検証はしない。
	Slug         string
	IsPinned     bool // 作成時は常にfalse。ピン留めは後続のユーザー操作。
}

// ArchivedProject はアーカイブ済みプロジェクトの凍結スナップショットを表す。
// アーカイブ遷移時点のプロジェクト説明とサブ項目を保持する。
type ArchivedProject struct {
	Notes string // 凍結されたプロジェクト説明。
	Items []ArchivedItem
}

// ArchivedItem はアーカイブ時点のサブ項目スナップショットを表す。
type ArchivedItem struct {
	ID        string
	Title     string
	Completed bool
	Deadline  *time.Time
}
