package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jinbei222125-wq/wojp-corporate/internal/model"
)

const newsColumns = `id, title, content, category, image_url, published_at, is_published, created_at, updated_at`

// PostgresNewsRepo はPostgreSQLを使用したNEWS記事リポジトリ。
// dbがnilの場合は縮退モードとして動作する。
type PostgresNewsRepo struct {
	db *sql.DB
}

// NewPostgresNewsRepo はPostgresNewsRepoを生成する。
func NewPostgresNewsRepo(db *sql.DB) *PostgresNewsRepo {
	return &PostgresNewsRepo{db: db}
}

// ListPublished は公開済み記事をpublished_at降順で返す。
func (r *PostgresNewsRepo) ListPublished(ctx context.Context) ([]*model.News, error) {
	return r.list(ctx,
		`SELECT `+newsColumns+` FROM news WHERE is_published = 1 ORDER BY published_at DESC`)
}

// ListAll は全記事をpublished_at降順で返す。
func (r *PostgresNewsRepo) ListAll(ctx context.Context) ([]*model.News, error) {
	return r.list(ctx,
		`SELECT `+newsColumns+` FROM news ORDER BY published_at DESC`)
}

func (r *PostgresNewsRepo) list(ctx context.Context, query string) ([]*model.News, error) {
	if r.db == nil {
		return []*model.News{}, nil
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list news: %w", err)
	}
	defer rows.Close()

	items := []*model.News{}
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate news rows: %w", err)
	}

	return items, nil
}

// FindByID は指定IDの記事を取得する。公開フラグでは絞らない（公開判定は
// サービス層の責務）。見つからない場合・DB未接続の場合はnilを返す。
func (r *PostgresNewsRepo) FindByID(ctx context.Context, id int64) (*model.News, error) {
	if r.db == nil {
		return nil, nil
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT `+newsColumns+` FROM news WHERE id = $1`, id)

	n, err := scanNews(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find news by id: %w", err)
	}

	return n, nil
}

// Create は記事を作成し、採番されたIDを返す。
func (r *PostgresNewsRepo) Create(ctx context.Context, in model.NewsInput) (int64, error) {
	if r.db == nil {
		return 0, model.NewDatabaseUnavailableError()
	}

	var imageURL sql.NullString
	if in.ImageURL != "" {
		imageURL = sql.NullString{String: in.ImageURL, Valid: true}
	}

	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO news (title, content, category, image_url, published_at, is_published)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		in.Title, in.Content, string(in.Category), imageURL, in.PublishedAt, in.IsPublished,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create news: %w", err)
	}

	return id, nil
}

// Update は指定フィールドのみを更新する。対象行がなくてもエラーにしない。
func (r *PostgresNewsRepo) Update(ctx context.Context, id int64, patch model.NewsPatch) error {
	if patch.Empty() {
		return nil
	}
	if r.db == nil {
		return model.NewDatabaseUnavailableError()
	}

	query, args := buildNewsUpdate(id, patch)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update news: %w", err)
	}

	return nil
}

// buildNewsUpdate はUPDATE文と引数を構築する純関数。
// patchで指定されたフィールドのみをSET句に含める。
func buildNewsUpdate(id int64, patch model.NewsPatch) (string, []any) {
	var sets []string
	var args []any

	add := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Content != nil {
		add("content", *patch.Content)
	}
	if patch.Category != nil {
		add("category", string(*patch.Category))
	}
	if patch.ImageURL != nil {
		if *patch.ImageURL == "" {
			add("image_url", nil)
		} else {
			add("image_url", *patch.ImageURL)
		}
	}
	if patch.PublishedAt != nil {
		add("published_at", *patch.PublishedAt)
	}
	if patch.IsPublished != nil {
		add("is_published", *patch.IsPublished)
	}

	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE news SET %s WHERE id = $%d`,
		strings.Join(sets, ", "), len(args))

	return query, args
}

// Delete は記事を削除する。存在しないIDの削除はエラーにしない（冪等）。
func (r *PostgresNewsRepo) Delete(ctx context.Context, id int64) error {
	if r.db == nil {
		return model.NewDatabaseUnavailableError()
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM news WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete news: %w", err)
	}

	return nil
}

// rowScanner は*sql.Rowと*sql.Rowsの共通Scanインターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanNews(row rowScanner) (*model.News, error) {
	n := &model.News{}
	var category string
	var imageURL sql.NullString
	err := row.Scan(&n.ID, &n.Title, &n.Content, &category, &imageURL,
		&n.PublishedAt, &n.IsPublished, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	n.Category = model.NewsCategory(category)
	n.ImageURL = imageURL.String
	return n, nil
}

// compile-time interface check
var _ NewsRepository = (*PostgresNewsRepo)(nil)
