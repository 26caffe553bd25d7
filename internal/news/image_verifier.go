// Package news は会社NEWS記事のドメインロジックを提供する。
package news

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jinbei222125-wq/wojp-corporate/internal/security"
)

// imageVerifyTimeout は画像URLの到達性確認のタイムアウト。
const imageVerifyTimeout = 10 * time.Second

// ImageVerifierService は画像URLの到達性確認機能のインターフェースを定義する。
type ImageVerifierService interface {
	// VerifyImageURL は画像URLに実際にアクセスし、画像として取得可能かを確認する。
	VerifyImageURL(ctx context.Context, rawURL string) error
}

// ImageVerifier はImageVerifierServiceの実装。
// 管理者が入力した画像URLへHEADリクエストを送り、到達性とContent-Typeを確認する。
type ImageVerifier struct {
	imageGuard security.ImageURLGuardService
}

// NewImageVerifier はImageVerifierの新しいインスタンスを生成する。
// imageGuardがnilの場合、SSRF防止なしの通常のHTTPクライアントを使用する（テスト用）。
func NewImageVerifier(imageGuard security.ImageURLGuardService) *ImageVerifier {
	return &ImageVerifier{
		imageGuard: imageGuard,
	}
}

// VerifyImageURL は画像URLに実際にアクセスし、画像として取得可能かを確認する。
// SSRF防止付きクライアント経由のため、DNS再バインディングで
// プライベートIPに解決されるURLはここでブロックされる。
func (v *ImageVerifier) VerifyImageURL(ctx context.Context, rawURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return fmt.Errorf("invalid image URL: %w", err)
	}

	client := v.getHTTPClient()
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("image URL unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("image URL returned status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("image URL returned non-image content type: %s", contentType)
	}

	return nil
}

// getHTTPClient はHTTPクライアントを取得する。
// ImageURLGuardが設定されている場合はSSRF防止付きクライアントを返す。
func (v *ImageVerifier) getHTTPClient() *http.Client {
	if v.imageGuard != nil {
		return v.imageGuard.NewSafeClient(imageVerifyTimeout)
	}
	return &http.Client{Timeout: imageVerifyTimeout}
}

// compile-time interface check
var _ ImageVerifierService = (*ImageVerifier)(nil)
