// Package auth はOAuth認証フローとセッションブリッジを提供する。
//
// サインインイベントごとの処理は「交換 → ミント → セッション保存」の
// 直列チェーンで、途中のどの失敗も未認証状態に倒れる（フェイルクローズド）。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/kenta/memoya/internal/model"
	"github.com/kenta/memoya/internal/session"
)

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
// 将来的に複数IdP（Google, GitHub等）に対応するための抽象化。
type OAuthProvider interface {
	// GetLoginURL はOAuth認証URLを生成する。
	GetLoginURL(state string) string
	// ExchangeCode は認可コードを交換し、アイデンティティアサーションを取得する。
	ExchangeCode(ctx context.Context, code string) (*model.Identity, error)
}

// TokenMinter はアプリケーショントークンのミントのインターフェース。
type TokenMinter interface {
	Mint(identity model.Identity) (string, error)
}

// MetricsRecorder は認証フローのメトリクス記録のインターフェース。
// nilの場合は記録しない。
type MetricsRecorder interface {
	RecordSignInSuccess()
	RecordSignInFailure(reason string)
	RecordMintFailure()
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service はサインイン・サインアウトのビジネスロジックを提供する。
type Service struct {
	oauth    OAuthProvider
	minter   TokenMinter
	sessions session.Store
	metrics  MetricsRecorder
	config   ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	oauth OAuthProvider,
	minter TokenMinter,
	sessions session.Store,
	metrics MetricsRecorder,
	config ServiceConfig,
) *Service {
	return &Service{
		oauth:    oauth,
		minter:   minter,
		sessions: sessions,
		metrics:  metrics,
		config:   config,
	}
}

// GetLoginURL はOAuth認証URLを生成する。
func (s *Service) GetLoginURL(state string) string {
	return s.oauth.GetLoginURL(state)
}

// HandleCallback はOAuthコールバックを処理し、セッションを発行する。
//
// アプリケーショントークンのミントはこのメソッドの中でのみ行われるため、
// 1回のサインインイベントにつきミントは最大1回となる。
// HandleCallbackが返った時点でセッションレコードは永続化済みであり、
// 呼び出し側が読み戻しのために待つ必要はない。
func (s *Service) HandleCallback(ctx context.Context, code string) (*model.Session, error) {
	// 1. 認可コードを交換し、アイデンティティアサーションを取得
	identity, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		s.recordFailure("exchange")
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	// 2. バックエンド互換トークンをミント（サインインごとに1回のみ）
	appToken, err := s.minter.Mint(*identity)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordMintFailure()
		}
		s.recordFailure("mint")
		slog.Error("failed to mint application token",
			slog.String("error", err.Error()),
			slog.String("provider", identity.Provider),
		)
		return nil, fmt.Errorf("failed to mint application token: %w", err)
	}

	// 3. セッションレコードを作成して保存
	sessionID, err := generateSessionID()
	if err != nil {
		s.recordFailure("session_id")
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := time.Now()
	record := &model.Session{
		ID: sessionID,
		User: model.User{
			ID:     identity.ProviderUserID,
			Email:  identity.Email,
			Name:   identity.Name,
			Avatar: identity.AvatarURL,
		},
		Token:     appToken,
		ExpiresAt: now.Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: now,
	}

	if err := s.sessions.Create(ctx, record); err != nil {
		s.recordFailure("store")
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordSignInSuccess()
	}
	slog.Info("user signed in",
		slog.String("user_id", identity.ProviderUserID),
		slog.String("provider", identity.Provider),
	)

	return record, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessions.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// recordFailure はサインイン失敗をメトリクスに記録する。
func (s *Service) recordFailure(reason string) {
	if s.metrics != nil {
		s.metrics.RecordSignInFailure(reason)
	}
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
