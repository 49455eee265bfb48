package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kenta/memoya/internal/middleware"
	"github.com/kenta/memoya/internal/model"
	"github.com/kenta/memoya/internal/notes"
	"github.com/kenta/memoya/internal/security"
)

// NotesClientInterface はノートハンドラーが必要とするバックエンド
// クライアントのインターフェース。
type NotesClientInterface interface {
	List(ctx context.Context, token string) []model.Note
	Create(ctx context.Context, token string, draft model.NoteDraft) *model.Note
	Update(ctx context.Context, token, id string, patch model.NotePatch) *model.Note
	Delete(ctx context.Context, token, id string) bool
}

// noteView はUIへ返すノートの表現。
// 本文はサニタイズ済みHTML、excerptは一覧表示用のプレーンテキスト抜粋。
type noteView struct {
	model.Note
	Excerpt string `json:"excerpt"`
}

// NoteHandler はノートCRUDのHTTPハンドラー。
// 各操作は「セッションからトークン取得 → バックエンド呼び出し →
// レスポンス変換」の順で進む。トークンが取得できない場合（未ミント・
// 期限切れ）でもリクエストは未認証のまま送り、拒否はバックエンドに委ねる。
type NoteHandler struct {
	client    NotesClientInterface
	accessor  SessionAccessorInterface
	sanitizer security.ContentSanitizerService
}

// NewNoteHandler はNoteHandlerを生成する。
func NewNoteHandler(client NotesClientInterface, accessor SessionAccessorInterface, sanitizer security.ContentSanitizerService) *NoteHandler {
	return &NoteHandler{
		client:    client,
		accessor:  accessor,
		sanitizer: sanitizer,
	}
}

// ListNotes はノート一覧を返す。
// GET /api/notes?q=検索語
//
// バックエンド障害時は空一覧（200）に退化する。
// クエリが指定された場合はタイトル・本文・タグで絞り込む。
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	token := h.tokenFromRequest(r)
	all := h.client.List(r.Context(), token)

	filtered := notes.Filter(all, r.URL.Query().Get("q"))

	views := make([]noteView, 0, len(filtered))
	for _, note := range filtered {
		views = append(views, h.view(note))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"notes": views,
	})
}

// CreateNote はノートを作成する。
// POST /api/notes
//
// タイトルと本文がともに空のリクエストはバックエンドに到達する前に
// 400で拒否する。
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var draft model.NoteDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewEmptyNoteError())
		return
	}

	if strings.TrimSpace(draft.Title) == "" && strings.TrimSpace(draft.Content) == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewEmptyNoteError())
		return
	}

	token := h.tokenFromRequest(r)
	note := h.client.Create(r.Context(), token, draft)
	if note == nil {
		middleware.WriteErrorResponse(w, http.StatusBadGateway, model.NewBackendFailedError())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"note": h.view(*note),
	})
}

// UpdateNote はノートを部分更新する。
// PUT /api/notes/{id}
//
// 空でないフィールドのみがバックエンドに送信される。
// フィールドを空文字列にクリアすることはこの経路ではできない。
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch model.NotePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewEmptyPatchError())
		return
	}

	if patch.IsEmpty() {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewEmptyPatchError())
		return
	}

	token := h.tokenFromRequest(r)
	note := h.client.Update(r.Context(), token, id, patch)
	if note == nil {
		middleware.WriteErrorResponse(w, http.StatusBadGateway, model.NewBackendFailedError())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"note": h.view(*note),
	})
}

// DeleteNote はノートを削除する。
// DELETE /api/notes/{id}
//
// バックエンドが2xx以外を返した場合は502を返し、UI側の一覧は変更されない。
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	token := h.tokenFromRequest(r)
	if !h.client.Delete(r.Context(), token, id) {
		middleware.WriteErrorResponse(w, http.StatusBadGateway, model.NewBackendFailedError())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// tokenFromRequest はリクエストのセッションから検証済みトークンを取得する。
// セッションが無い・トークンが期限切れの場合は空文字列を返す。
func (h *NoteHandler) tokenFromRequest(r *http.Request) string {
	sessionID, err := middleware.SessionIDFromContext(r.Context())
	if err != nil {
		return ""
	}
	return h.accessor.Token(r.Context(), sessionID)
}

// view はノートをUI向け表現に変換する。
// 本文をサニタイズし、一覧表示用の抜粋を付与する。
func (h *NoteHandler) view(note model.Note) noteView {
	sanitized := note
	if h.sanitizer != nil {
		sanitized.Content = h.sanitizer.Sanitize(note.Content)
	}
	return noteView{
		Note:    sanitized,
		Excerpt: notes.Excerpt(sanitized.Content, 0),
	}
}
