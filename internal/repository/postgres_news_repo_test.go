package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jinbei222125-wq/wojp-corporate/internal/model"
)

// PostgresNewsRepoはNewsRepositoryインターフェースを満たすことを検証
func TestPostgresNewsRepo_ImplementsInterface(t *testing.T) {
	var _ NewsRepository = (*PostgresNewsRepo)(nil)
}

// DB未接続時、一覧は空スライスを返しエラーにならない（縮退モード）
func TestPostgresNewsRepo_List_NilDB(t *testing.T) {
	repo := NewPostgresNewsRepo(nil)
	ctx := context.Background()

	published, err := repo.ListPublished(ctx)
	if err != nil {
		t.Fatalf("ListPublished: unexpected error: %v", err)
	}
	if published == nil || len(published) != 0 {
		t.Errorf("expected empty slice, got %v", published)
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: unexpected error: %v", err)
	}
	if all == nil || len(all) != 0 {
		t.Errorf("expected empty slice, got %v", all)
	}
}

// DB未接続時、単一取得はnilを返しエラーにならない
func TestPostgresNewsRepo_FindByID_NilDB(t *testing.T) {
	repo := NewPostgresNewsRepo(nil)

	n, err := repo.FindByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != nil {
		t.Errorf("expected nil, got %+v", n)
	}
}

// DB未接続時、書き込みはDATABASE_UNAVAILABLEエラーになる
func TestPostgresNewsRepo_Writes_NilDB(t *testing.T) {
	repo := NewPostgresNewsRepo(nil)
	ctx := context.Background()

	assertUnavailable := func(t *testing.T, err error) {
		t.Helper()
		var apiErr *model.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeDatabaseUnavailable {
			t.Errorf("expected DATABASE_UNAVAILABLE, got %v", err)
		}
	}

	_, err := repo.Create(ctx, model.NewsInput{
		Title:    "test",
		Content:  "body",
		Category: model.CategoryAnnouncement,
	})
	assertUnavailable(t, err)

	title := "updated"
	assertUnavailable(t, repo.Update(ctx, 1, model.NewsPatch{Title: &title}))

	assertUnavailable(t, repo.Delete(ctx, 1))
}

// 空patchのUpdateはDB未接続でもno-opで成功する
func TestPostgresNewsRepo_Update_EmptyPatchIsNoop(t *testing.T) {
	repo := NewPostgresNewsRepo(nil)

	if err := repo.Update(context.Background(), 1, model.NewsPatch{}); err != nil {
		t.Errorf("empty patch should be a no-op, got %v", err)
	}
}

// buildNewsUpdateが指定フィールドのみをSET句に含めることを検証
func TestBuildNewsUpdate_OnlyProvidedFields(t *testing.T) {
	title := "新タイトル"
	isPublished := 1

	query, args := buildNewsUpdate(42, model.NewsPatch{
		Title:       &title,
		IsPublished: &isPublished,
	})

	if !strings.Contains(query, "title = $1") {
		t.Errorf("SET句にtitleが含まれていない: %s", query)
	}
	if !strings.Contains(query, "is_published = $2") {
		t.Errorf("SET句にis_publishedが含まれていない: %s", query)
	}
	if strings.Contains(query, "content") {
		t.Errorf("未指定のcontentがSET句に含まれている: %s", query)
	}
	if !strings.Contains(query, "updated_at = now()") {
		t.Errorf("updated_atの更新がない: %s", query)
	}

	// title, is_published, idの3引数
	if len(args) != 3 {
		t.Errorf("args = %d, want 3", len(args))
	}
	if args[len(args)-1] != int64(42) {
		t.Errorf("最後の引数がidでない: %v", args)
	}
}

// 全フィールド指定時のbuildNewsUpdateを検証
func TestBuildNewsUpdate_AllFields(t *testing.T) {
	title := "t"
	content := "c"
	category := model.CategoryPressRelease
	imageURL := "https://example.com/a.png"
	publishedAt := time.Now()
	isPublished := 0

	query, args := buildNewsUpdate(1, model.NewsPatch{
		Title:       &title,
		Content:     &content,
		Category:    &category,
		ImageURL:    &imageURL,
		PublishedAt: &publishedAt,
		IsPublished: &isPublished,
	})

	for _, col := range []string{"title", "content", "category", "image_url", "published_at", "is_published"} {
		if !strings.Contains(query, col+" = $") {
			t.Errorf("SET句に%sが含まれていない: %s", col, query)
		}
	}
	if len(args) != 7 {
		t.Errorf("args = %d, want 7", len(args))
	}
}

// 空文字のImageURLはNULLとして保存されることを検証
func TestBuildNewsUpdate_EmptyImageURLBecomesNull(t *testing.T) {
	empty := ""

	_, args := buildNewsUpdate(1, model.NewsPatch{ImageURL: &empty})

	if args[0] != nil {
		t.Errorf("空文字のimage_urlはNULLになるべき: %v", args[0])
	}
}
