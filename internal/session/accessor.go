package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/kenta/memoya/internal/model"
	"github.com/kenta/memoya/internal/token"
)

// Accessor はセッションレコードの読み取りとローカル検証を提供する。
// ストアは構築時に明示的に注入し、アンビエントなグローバル状態には
// 依存しない。呼び出し側へはエラーを伝播せず、不正・期限切れ・不在は
// すべてゼロ値に正規化する（フェイルクローズド）。
type Accessor struct {
	store Store

	// now はテスト用に差し替え可能な時刻源。
	now func() time.Time
}

// NewAccessor はAccessorを生成する。
func NewAccessor(store Store) *Accessor {
	return &Accessor{
		store: store,
		now:   time.Now,
	}
}

// Token はセッションのアプリケーショントークンを返す。
// セッションが存在しない、トークンが3セグメント構造でない、
// または埋め込まれたexpが現在時刻を過ぎている場合は空文字列を返す。
// 署名のローカル検証は行わない（検証はバックエンドの責務）。
// 有効な場合は生のトークン文字列を変更せずそのまま返す。
func (a *Accessor) Token(ctx context.Context, sessionID string) string {
	session := a.read(ctx, sessionID)
	if session == nil {
		return ""
	}

	claims, err := token.DecodeUnverified(session.Token)
	if err != nil {
		slog.Warn("session holds a malformed token",
			slog.String("session_id", sessionID),
		)
		return ""
	}

	if token.Expired(claims, a.now()) {
		return ""
	}

	return session.Token
}

// User はセッションレコードのユーザープロフィールを返す。
// セッションが存在しない場合はnilを返す。
func (a *Accessor) User(ctx context.Context, sessionID string) *model.User {
	session := a.read(ctx, sessionID)
	if session == nil {
		return nil
	}
	user := session.User
	return &user
}

// IsAuthenticated はTokenが空でない場合にのみtrueを返す。
// Token/User/IsAuthenticatedは同一のストア読み取りから導出されるため、
// IsAuthenticatedがtrueでTokenが空という状態は観測されない。
func (a *Accessor) IsAuthenticated(ctx context.Context, sessionID string) bool {
	return a.Token(ctx, sessionID) != ""
}

// read はストアからセッションを1回読み取る。
// ストアのエラーはログに残し、呼び出し側には不在として扱わせる。
func (a *Accessor) read(ctx context.Context, sessionID string) *model.Session {
	if sessionID == "" {
		return nil
	}
	session, err := a.store.FindByID(ctx, sessionID)
	if err != nil {
		slog.Error("failed to read session store",
			slog.String("error", err.Error()),
		)
		return nil
	}
	return session
}
