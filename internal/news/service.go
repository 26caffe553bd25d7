// Package news は会社NEWS記事のドメインロジックを提供する。
package news

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jinbei222125-wq/wojp-corporate/internal/model"
	"github.com/jinbei222125-wq/wojp-corporate/internal/repository"
	"github.com/jinbei222125-wq/wojp-corporate/internal/security"
)

// Service はNEWS記事のサービス層。
// 公開サイト向けの読み取りと管理画面向けのCRUDを提供する。
type Service struct {
	newsRepo      repository.NewsRepository
	sanitizer     security.ContentSanitizerService
	imageGuard    security.ImageURLGuardService
	imageVerifier ImageVerifierService
}

// NewService はServiceの新しいインスタンスを生成する。
// imageVerifierがnilの場合、画像URLの到達性確認をスキップする（テスト用）。
func NewService(
	newsRepo repository.NewsRepository,
	sanitizer security.ContentSanitizerService,
	imageGuard security.ImageURLGuardService,
	imageVerifier ImageVerifierService,
) *Service {
	return &Service{
		newsRepo:      newsRepo,
		sanitizer:     sanitizer,
		imageGuard:    imageGuard,
		imageVerifier: imageVerifier,
	}
}

// ListPublished は公開済み記事を新しい順で返す。
// DB未接続時は空スライスに縮退する。
func (s *Service) ListPublished(ctx context.Context) ([]*model.News, error) {
	return s.newsRepo.ListPublished(ctx)
}

// GetPublished は公開済み記事を1件取得する。
// 非公開記事は公開サイトから見えないため、存在しない扱いにする。
func (s *Service) GetPublished(ctx context.Context, id int64) (*model.News, error) {
	article, err := s.newsRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if article == nil || article.IsPublished != model.FlagOn {
		return nil, model.NewNewsNotFoundError(id)
	}
	return article, nil
}

// Categories は定義済みカテゴリの一覧を表示順で返す。
func (s *Service) Categories() []model.NewsCategory {
	return model.NewsCategories
}

// ListAll は公開/非公開を問わず全記事を新しい順で返す。管理画面用。
func (s *Service) ListAll(ctx context.Context) ([]*model.News, error) {
	return s.newsRepo.ListAll(ctx)
}

// Create は記事を作成し、作成された記事を返す。
// 新規記事は非公開（下書き）として作成され、明示的な公開操作を待つ。
func (s *Service) Create(ctx context.Context, in model.NewsInput) (*model.News, error) {
	if err := s.validateInput(&in); err != nil {
		return nil, err
	}
	if err := s.verifyImageURL(ctx, in.ImageURL); err != nil {
		return nil, err
	}

	if in.PublishedAt.IsZero() {
		in.PublishedAt = time.Now()
	}

	id, err := s.newsRepo.Create(ctx, in)
	if err != nil {
		return nil, err
	}

	slog.Info("news article created",
		slog.Int64("news_id", id),
		slog.String("category", string(in.Category)),
	)

	article, err := s.newsRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("作成した記事の取得に失敗しました: %w", err)
	}
	if article == nil {
		return nil, fmt.Errorf("作成した記事が見つかりません: id=%d", id)
	}
	return article, nil
}

// Update は記事の指定フィールドのみを更新し、更新後の記事を返す。
func (s *Service) Update(ctx context.Context, id int64, patch model.NewsPatch) (*model.News, error) {
	if err := s.validatePatch(&patch); err != nil {
		return nil, err
	}
	if patch.ImageURL != nil {
		if err := s.verifyImageURL(ctx, *patch.ImageURL); err != nil {
			return nil, err
		}
	}

	if err := s.newsRepo.Update(ctx, id, patch); err != nil {
		return nil, err
	}

	article, err := s.newsRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("更新した記事の取得に失敗しました: %w", err)
	}
	if article == nil {
		return nil, model.NewNewsNotFoundError(id)
	}

	slog.Info("news article updated", slog.Int64("news_id", id))

	return article, nil
}

// Delete は記事を削除する。存在しないIDの削除はエラーにしない（冪等）。
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.newsRepo.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("news article deleted", slog.Int64("news_id", id))
	return nil
}

// verifyImageURL は画像URLの到達性確認を行う。
// 静的検証（validateInput/validatePatch）を通過したURLに対して、
// SSRF防止付きクライアントで実際にアクセスできるかを確認する。
// 空URLはそのまま許容する（画像なし、または画像の削除）。
func (s *Service) verifyImageURL(ctx context.Context, rawURL string) error {
	if rawURL == "" || s.imageVerifier == nil {
		return nil
	}
	if err := s.imageVerifier.VerifyImageURL(ctx, rawURL); err != nil {
		return model.NewInvalidImageURLError(err.Error())
	}
	return nil
}

// validateInput は作成時の入力を検証し、本文をサニタイズする。
func (s *Service) validateInput(in *model.NewsInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return model.NewValidationError("タイトルは必須です。")
	}
	if strings.TrimSpace(in.Content) == "" {
		return model.NewValidationError("本文は必須です。")
	}
	if !in.Category.Valid() {
		return model.NewInvalidCategoryError(string(in.Category))
	}
	if in.ImageURL != "" {
		if err := s.imageGuard.ValidateURL(in.ImageURL); err != nil {
			return model.NewInvalidImageURLError(err.Error())
		}
	}
	if in.IsPublished != model.FlagOff && in.IsPublished != model.FlagOn {
		return model.NewValidationError("公開フラグは0または1を指定してください。")
	}

	// Markdown本文に埋め込まれたHTMLを無害化する
	in.Content = s.sanitizer.Sanitize(in.Content)

	return nil
}

// validatePatch は更新時の入力を検証し、本文をサニタイズする。
// nilフィールドは検証対象にしない。
func (s *Service) validatePatch(patch *model.NewsPatch) error {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return model.NewValidationError("タイトルは必須です。")
	}
	if patch.Content != nil && strings.TrimSpace(*patch.Content) == "" {
		return model.NewValidationError("本文は必須です。")
	}
	if patch.Category != nil && !patch.Category.Valid() {
		return model.NewInvalidCategoryError(string(*patch.Category))
	}
	// 空文字は画像の削除を意味するため検証しない
	if patch.ImageURL != nil && *patch.ImageURL != "" {
		if err := s.imageGuard.ValidateURL(*patch.ImageURL); err != nil {
			return model.NewInvalidImageURLError(err.Error())
		}
	}
	if patch.IsPublished != nil && *patch.IsPublished != model.FlagOff && *patch.IsPublished != model.FlagOn {
		return model.NewValidationError("公開フラグは0または1を指定してください。")
	}

	if patch.Content != nil {
		sanitized := s.sanitizer.Sanitize(*patch.Content)
		patch.Content = &sanitized
	}

	return nil
}
