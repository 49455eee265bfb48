// Package notes はノートバックエンドAPIのクライアントを提供する。
// 各操作は「検証済みトークンの受け取り → HTTPリクエスト → レスポンス変換」
// のパターンに従う。ネットワーク・パース失敗はこの境界で握りつぶし、
// 操作ごとの空値（空スライス・nil・false）に退化させる。
// 診断の詳細を犠牲にしてUIの単純さを優先する設計上の割り切りで、
// 失敗はログにのみ残る。
package notes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kenta/memoya/internal/model"
)

// maxResponseSize はバックエンドレスポンスの読み取り上限（5MB）。
const maxResponseSize = 5 * 1024 * 1024

// BackendMetricsRecorder はバックエンド呼び出しのメトリクス記録のインターフェース。
// nilの場合は記録しない。
type BackendMetricsRecorder interface {
	RecordBackendRequest(method string, statusCode int)
	RecordBackendLatency(duration time.Duration)
}

// Client はノートバックエンドAPIのクライアント。
// GET /notes, POST /notes, PUT /notes/{id}, DELETE /notes/{id} を呼び出す。
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    BackendMetricsRecorder
}

// NewClient はClientを生成する。
// baseURL末尾のスラッシュは取り除いて保持する。
func NewClient(httpClient *http.Client, baseURL string, logger *slog.Logger, metrics BackendMetricsRecorder) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
		metrics:    metrics,
	}
}

// notesResponse はGET /notesのレスポンスボディ。
type notesResponse struct {
	Notes []model.Note `json:"notes"`
}

// noteResponse は単一ノートを返す操作のレスポンスボディ。
type noteResponse struct {
	Note model.Note `json:"note"`
}

// List はノート一覧を取得する。
// バックエンドが返した順序を変更せずにそのまま返す。
// あらゆる失敗は空スライスに退化する（エラーは伝播しない）。
func (c *Client) List(ctx context.Context, token string) []model.Note {
	body, ok := c.do(ctx, http.MethodGet, "/notes", token, nil)
	if !ok {
		return []model.Note{}
	}

	var resp notesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("failed to parse notes response",
			slog.String("error", err.Error()),
		)
		return []model.Note{}
	}
	if resp.Notes == nil {
		return []model.Note{}
	}
	return resp.Notes
}

// Create はノートを作成する。失敗時はnilを返す。
func (c *Client) Create(ctx context.Context, token string, draft model.NoteDraft) *model.Note {
	payload, err := json.Marshal(draft)
	if err != nil {
		c.logger.Error("failed to marshal note draft",
			slog.String("error", err.Error()),
		)
		return nil
	}

	body, ok := c.do(ctx, http.MethodPost, "/notes", token, payload)
	if !ok {
		return nil
	}

	var resp noteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("failed to parse note response",
			slog.String("error", err.Error()),
		)
		return nil
	}
	return &resp.Note
}

// Update はノートを部分更新する。失敗時はnilを返す。
// パッチの空でないフィールドのみを送信する。
// 省略されたフィールドはバックエンド側で変更されない。
func (c *Client) Update(ctx context.Context, token, id string, patch model.NotePatch) *model.Note {
	fields := make(map[string]any)
	if patch.Title != "" {
		fields["title"] = patch.Title
	}
	if patch.Content != "" {
		fields["content"] = patch.Content
	}
	if len(patch.Tags) > 0 {
		fields["tags"] = patch.Tags
	}

	payload, err := json.Marshal(fields)
	if err != nil {
		c.logger.Error("failed to marshal note patch",
			slog.String("error", err.Error()),
		)
		return nil
	}

	body, ok := c.do(ctx, http.MethodPut, "/notes/"+id, token, payload)
	if !ok {
		return nil
	}

	var resp noteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("failed to parse note response",
			slog.String("error", err.Error()),
		)
		return nil
	}
	return &resp.Note
}

// Delete はノートを削除する。2xx以外・失敗時はfalseを返す。
func (c *Client) Delete(ctx context.Context, token, id string) bool {
	_, ok := c.do(ctx, http.MethodDelete, "/notes/"+id, token, nil)
	return ok
}

// do はバックエンドへのHTTPリクエストを1回実行する。
// トークンが空でない場合のみAuthorization: Bearerヘッダーを付与する。
// トークンが空の場合は未認証のままリクエストを送り、
// 拒否の判断はバックエンドに委ねる。
// 成功時（2xx）はレスポンスボディとtrueを、それ以外はfalseを返す。
func (c *Client) do(ctx context.Context, method, path, token string, payload []byte) ([]byte, bool) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		c.logger.Error("failed to create backend request",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return nil, false
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("backend request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return nil, false
	}
	defer resp.Body.Close()

	if c.metrics != nil {
		c.metrics.RecordBackendRequest(method, resp.StatusCode)
		c.metrics.RecordBackendLatency(time.Since(start))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		c.logger.Error("failed to read backend response",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return nil, false
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error(fmt.Sprintf("backend returned status %d", resp.StatusCode),
			slog.String("method", method),
			slog.String("path", path),
		)
		return nil, false
	}

	return body, true
}
