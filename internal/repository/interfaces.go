// Package repository はデータ永続化のインターフェースを定義する。
//
// すべてのリポジトリはデータベース未接続（nilハンドル）を許容する。
// 読み取り系は空結果に縮退し、書き込み系はDATABASE_UNAVAILABLEエラーを返す。
// この非対称性は「公開サイトはDBなしでも描画できるが、管理操作の失敗は
// 黙殺しない」という要件による。
package repository

import (
	"context"

	"github.com/jinbei222125-wq/wojp-corporate/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByOpenID は外部IdPのopenIdでユーザーを検索する。
	// 見つからない場合・DB未接続の場合はnilを返す。
	FindByOpenID(ctx context.Context, openID string) (*model.User, error)

	// Upsert はopen_idをキーにユーザーをINSERTまたはUPDATEする。
	// nilフィールドは既存行の値を変更しない。
	// roleが未指定かつopen_idがオーナー識別子に一致する場合はadminを強制する。
	// last_signed_inが未指定の場合は現在時刻で補完する。
	Upsert(ctx context.Context, u model.UserUpsert) error
}

// NewsRepository はNEWS記事の永続化インターフェース。
// 一覧はすべてpublished_at降順（新しい順）で返す。
type NewsRepository interface {
	// ListPublished は公開済み記事のみを返す。
	ListPublished(ctx context.Context) ([]*model.News, error)

	// ListAll は公開/非公開を問わず全記事を返す。
	ListAll(ctx context.Context) ([]*model.News, error)

	// FindByID は指定IDの記事を取得する。公開フラグでは絞らない。
	// 見つからない場合・DB未接続の場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.News, error)

	// Create は記事を作成し、採番されたIDを返す。
	Create(ctx context.Context, in model.NewsInput) (int64, error)

	// Update は指定フィールドのみを更新する。対象行がなくてもエラーにしない。
	Update(ctx context.Context, id int64, patch model.NewsPatch) error

	// Delete は記事を削除する。存在しないIDの削除はエラーにしない（冪等）。
	Delete(ctx context.Context, id int64) error
}

// JobPositionRepository は採用ポジションの永続化インターフェース。
// 一覧はすべてcreated_at降順（新しい順）で返す。
type JobPositionRepository interface {
	// ListActive はアクティブなポジションのみを返す。
	ListActive(ctx context.Context) ([]*model.JobPosition, error)

	// ListAll はアクティブ/非アクティブを問わず全ポジションを返す。
	ListAll(ctx context.Context) ([]*model.JobPosition, error)

	// FindByID は指定IDのポジションを取得する。アクティブフラグでは絞らない。
	// 見つからない場合・DB未接続の場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.JobPosition, error)

	// Create はポジションを作成し、採番されたIDを返す。
	Create(ctx context.Context, in model.JobPositionInput) (int64, error)

	// Update は指定フィールドのみを更新する。対象行がなくてもエラーにしない。
	Update(ctx context.Context, id int64, patch model.JobPositionPatch) error

	// Delete はポジションを削除する。存在しないIDの削除はエラーにしない（冪等）。
	Delete(ctx context.Context, id int64) error
}
