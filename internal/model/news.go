// Package model はドメインモデルを定義する。
package model

import "time"

// NewsCategory はNEWS記事のカテゴリを表す。
// 管理画面・公開サイトともに日本語ラベルをそのまま使用する。
type NewsCategory string

const (
	// CategoryAnnouncement はお知らせ。
	CategoryAnnouncement NewsCategory = "お知らせ"
	// CategoryImportant は重要なお知らせ。
	CategoryImportant NewsCategory = "重要なお知らせ"
	// CategoryPressRelease はプレスリリース。
	CategoryPressRelease NewsCategory = "プレスリリース"
	// CategoryMediaCoverage はメディア掲載。
	CategoryMediaCoverage NewsCategory = "メディア掲載"
)

// NewsCategories は定義済みカテゴリの一覧（表示順）。
var NewsCategories = []NewsCategory{
	CategoryAnnouncement,
	CategoryImportant,
	CategoryPressRelease,
	CategoryMediaCoverage,
}

// Valid は定義済みカテゴリかどうかを返す。
func (c NewsCategory) Valid() bool {
	switch c {
	case CategoryAnnouncement, CategoryImportant, CategoryPressRelease, CategoryMediaCoverage:
		return true
	}
	return false
}

// 公開フラグの値。0/1のint型エンコードは元スキーマ互換。
const (
	// FlagOff は非公開・非アクティブを表す。
	FlagOff = 0
	// FlagOn は公開・アクティブを表す。
	FlagOn = 1
)

// News は会社NEWS記事を表す。
// ContentはMarkdownテキスト。IsPublished=1の記事のみ公開サイトから参照できる。
type News struct {
	ID          int64
	Title       string
	Content     string
	Category    NewsCategory
	ImageURL    string
	PublishedAt time.Time
	IsPublished int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewsInput はNEWS作成時の入力を表す。
type NewsInput struct {
	Title       string
	Content     string
	Category    NewsCategory
	ImageURL    string
	PublishedAt time.Time
	IsPublished int
}

// NewsPatch はNEWS部分更新の入力を表す。
// nilフィールドは既存の値を変更しない。
type NewsPatch struct {
	Title       *string
	Content     *string
	Category    *NewsCategory
	ImageURL    *string
	PublishedAt *time.Time
	IsPublished *int
}

// Empty は更新対象フィールドが1つもないかどうかを返す。
func (p *NewsPatch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.Category == nil &&
		p.ImageURL == nil && p.PublishedAt == nil && p.IsPublished == nil
}
