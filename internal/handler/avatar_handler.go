package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/kenta/memoya/internal/middleware"
	"github.com/kenta/memoya/internal/model"
)

// AvatarFetcherInterface はアバターハンドラーが必要とするフェッチャーの
// インターフェース。
type AvatarFetcherInterface interface {
	Fetch(ctx context.Context, avatarURL string) (data []byte, mimeType string)
}

// AvatarHandler はプロフィール画像のプロキシ配信ハンドラー。
// 配信するのは常にログイン中ユーザー自身のアバターのみで、
// 任意URLのオープンプロキシにはならない。
type AvatarHandler struct {
	fetcher  AvatarFetcherInterface
	accessor SessionAccessorInterface
}

// NewAvatarHandler はAvatarHandlerを生成する。
func NewAvatarHandler(fetcher AvatarFetcherInterface, accessor SessionAccessorInterface) *AvatarHandler {
	return &AvatarHandler{
		fetcher:  fetcher,
		accessor: accessor,
	}
}

// GetAvatar はログイン中ユーザーのアバター画像を配信する。
// GET /api/avatar
func (h *AvatarHandler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	sessionID, err := middleware.SessionIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	user := h.accessor.User(r.Context(), sessionID)
	if user == nil || user.Avatar == "" {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewNoAvatarError())
		return
	}

	data, mimeType := h.fetcher.Fetch(r.Context(), user.Avatar)
	if data == nil {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewNoAvatarError())
		return
	}

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}
