// Package model はドメインモデルを定義する。
package model

import "time"

// JobPosition は採用ポジションを表す。
// IsActive=1のポジションのみ公開サイトの一覧に表示される。
type JobPosition struct {
	ID           int64
	PositionName string
	Description  string
	Requirements string
	Location     string
	Salary       string
	IsActive     int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// JobPositionInput は採用ポジション作成時の入力を表す。
// テキスト5項目はすべて必須。
type JobPositionInput struct {
	PositionName string
	Description  string
	Requirements string
	Location     string
	Salary       string
	IsActive     int
}

// JobPositionPatch は採用ポジション部分更新の入力を表す。
// nilフィールドは既存の値を変更しない。
type JobPositionPatch struct {
	PositionName *string
	Description  *string
	Requirements *string
	Location     *string
	Salary       *string
	IsActive     *int
}

// Empty は更新対象フィールドが1つもないかどうかを返す。
func (p *JobPositionPatch) Empty() bool {
	return p.PositionName == nil && p.Description == nil && p.Requirements == nil &&
		p.Location == nil && p.Salary == nil && p.IsActive == nil
}
