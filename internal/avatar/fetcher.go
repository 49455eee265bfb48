// Package avatar はプロフィール画像のプロキシ取得を提供する。
// IdPから受け取ったアバターURLは信頼できない入力であるため、
// SSRF防止付きクライアントでサーバー側から取得してUIに配信する。
// ブラウザをサードパーティの画像ホストに直接触れさせない。
package avatar

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// maxAvatarSize はアバター画像の最大サイズ（1MB）。
const maxAvatarSize = 1 * 1024 * 1024

// avatarTimeout はアバター取得のタイムアウト。
const avatarTimeout = 5 * time.Second

// SSRFValidator はSSRF防止機能のうちフェッチャーが必要とする部分。
type SSRFValidator interface {
	ValidateURL(rawURL string) error
	NewSafeClient(timeout time.Duration) *http.Client
}

// FetcherService はアバター取得のインターフェース。
type FetcherService interface {
	// Fetch は指定URLからアバター画像を取得する。
	// 取得失敗時はnilデータと空MIMEを返す（エラーは返さない）。
	Fetch(ctx context.Context, avatarURL string) (data []byte, mimeType string)
}

// Fetcher はアバター取得機能の実装。
type Fetcher struct {
	ssrfGuard SSRFValidator
}

// NewFetcher はFetcherの新しいインスタンスを生成する。
func NewFetcher(ssrfGuard SSRFValidator) *Fetcher {
	return &Fetcher{
		ssrfGuard: ssrfGuard,
	}
}

// Fetch は指定URLからアバター画像を取得する。
// 検証失敗・HTTP失敗・サイズ超過・画像以外のContent-Typeは
// すべてnilデータに退化する。UIはデフォルトアイコンで代替する。
func (f *Fetcher) Fetch(ctx context.Context, avatarURL string) ([]byte, string) {
	if avatarURL == "" {
		return nil, ""
	}

	// SSRF検証
	if f.ssrfGuard != nil {
		if err := f.ssrfGuard.ValidateURL(avatarURL); err != nil {
			slog.Warn("アバター取得: SSRFブロック", "url", avatarURL, "error", err)
			return nil, ""
		}
	}

	client := f.getHTTPClient()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, avatarURL, nil)
	if err != nil {
		slog.Warn("アバター取得: リクエスト作成失敗", "url", avatarURL, "error", err)
		return nil, ""
	}
	req.Header.Set("User-Agent", "Memoya/1.0 Notes Client")

	resp, err := client.Do(req)
	if err != nil {
		slog.Warn("アバター取得: HTTPリクエスト失敗", "url", avatarURL, "error", err)
		return nil, ""
	}
	defer resp.Body.Close()

	// 2xx以外は取得失敗として扱う
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("アバター取得: HTTPステータス異常", "url", avatarURL, "status", resp.StatusCode)
		return nil, ""
	}

	// レスポンスボディを読み込み（最大1MB）
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAvatarSize+1))
	if err != nil {
		slog.Warn("アバター取得: レスポンス読み取り失敗", "url", avatarURL, "error", err)
		return nil, ""
	}

	// サイズ超過チェック
	if int64(len(body)) > maxAvatarSize {
		slog.Warn("アバター取得: サイズ超過", "url", avatarURL, "size", len(body))
		return nil, ""
	}

	mimeType := extractMimeType(resp.Header.Get("Content-Type"))
	if !isImageMime(mimeType) {
		slog.Warn("アバター取得: 画像以外のContent-Type", "url", avatarURL, "contentType", mimeType)
		return nil, ""
	}

	return body, mimeType
}

// getHTTPClient はHTTPクライアントを取得する。
func (f *Fetcher) getHTTPClient() *http.Client {
	if f.ssrfGuard != nil {
		return f.ssrfGuard.NewSafeClient(avatarTimeout)
	}
	return &http.Client{Timeout: avatarTimeout}
}

// extractMimeType はContent-Typeヘッダーからパラメータを除いたMIMEタイプを取り出す。
func extractMimeType(contentType string) string {
	mime, _, found := strings.Cut(contentType, ";")
	if !found {
		mime = contentType
	}
	return strings.ToLower(strings.TrimSpace(mime))
}

// isImageMime はMIMEタイプが画像かを返す。
func isImageMime(mime string) bool {
	return strings.HasPrefix(mime, "image/")
}

// compile-time interface check
var _ FetcherService = (*Fetcher)(nil)
