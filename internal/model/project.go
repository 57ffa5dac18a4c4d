// Package model はドメインモデルを定義する。
package model

import "time"

// Term はプロジェクトの期間区分（中期/長期）を表す。
type Term string

const (
	// TermMid は中期プロジェクト。
	TermMid Term = "mid"
	// TermLong は長期プロジェクト。
	TermLong Term = "long"
)

// ParseTerm は文字列をTermに変換する。空文字列はTermMidを返す。
func ParseTerm(raw string) (Term, bool) {
	switch raw {
	case "", string(TermMid):
		return TermMid, true
	case string(TermLong):
		return TermLong, true
	}
	return "", false
}

// ProjectStatus はプロジェクトの状態を表す。
// アクティブなプロジェクトはStatusInProgressのみを使用する。
type ProjectStatus string

const (
	// StatusInProgress は進行中のプロジェクト状態。
	StatusInProgress ProjectStatus = "in_progress"
)

// ProjectItem はプロジェクトに属するサブタスクを表す。
// ちょうど1つのプロジェクトに排他的に所有され、プロジェクト間で共有されない。
type ProjectItem struct {
	ID        string
	Title     string
	Completed bool
	Deadline  *time.Time
}

// Project はサブタスクの集約を表す。
// Itemsは挿入順を保持し、Project自身が並べ替えることはない。
// Slugは作成時に1回だけ生成され、以後不変。
type Project struct {
	ID          string
	Title       string
	Description string
	Term        Term
	Deadline    *time.Time
	Status      ProjectStatus
	Slug        string
	Items       []ProjectItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
