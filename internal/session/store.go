// Package session はセッションレコードの保存と読み取り検証を提供する。
//
// セッションレコードはauthサービスだけが作成・削除し、
// 他のコンポーネントはAccessor経由の読み取りのみを行う。
package session

import (
	"context"
	"fmt"

	"github.com/kenta/memoya/internal/model"
	"github.com/kenta/memoya/internal/token"
)

// Store はセッションレコードの永続化インターフェース。
// FindByIDは存在しない・期限切れの場合に (nil, nil) を返す。
type Store interface {
	Create(ctx context.Context, session *model.Session) error
	FindByID(ctx context.Context, id string) (*model.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

// validateRecord はセッションレコードの不変条件を検証する。
// 構文的に正しいトークンを持たないレコードは存在してはならない。
func validateRecord(session *model.Session) error {
	if session == nil {
		return fmt.Errorf("session is required")
	}
	if session.ID == "" {
		return fmt.Errorf("session ID is required")
	}
	if !token.WellFormed(session.Token) {
		return fmt.Errorf("session token is not a well-formed three-segment token")
	}
	return nil
}
