// Package token はバックエンドAPI互換のアプリケーショントークンの
// ミントとローカル検査を提供する。
// 署名はHS256の共有シークレットで行い、シークレットはこのプロセスの外
// （ブラウザ等）には一切渡らない。
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kenta/memoya/internal/model"
)

// DefaultTTL はトークン有効期間のデフォルト値。
// 環境変数TOKEN_TTLで上書きできる。
const DefaultTTL = time.Hour

// Claims はバックエンドAPIが検証するアプリケーショントークンのクレーム。
// ペイロードは user_id, email, name, avatar と標準のiat/expのみ。
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	jwt.RegisteredClaims
}

// Minter はサインイン成功時にアプリケーショントークンを生成する。
// ミントはサインインイベントごとに最大1回のみ呼び出される。
type Minter struct {
	secret []byte
	ttl    time.Duration

	// now はテスト用に差し替え可能な時刻源。
	now func() time.Time
}

// NewMinter はMinterを生成する。
// シークレットが空の場合はフェイルクローズドとしてエラーを返し、
// 以後トークンが生成されることはない。
func NewMinter(secret string, ttl time.Duration) (*Minter, error) {
	if secret == "" {
		return nil, fmt.Errorf("signing secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Minter{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Mint はアイデンティティアサーションからHS256署名付きトークンを生成する。
// (identity, secret, clock) が同じなら出力も決定的。
func (m *Minter) Mint(identity model.Identity) (string, error) {
	if len(m.secret) == 0 {
		return "", fmt.Errorf("signing secret is not configured")
	}

	now := m.now()
	claims := Claims{
		UserID: identity.ProviderUserID,
		Email:  identity.Email,
		Name:   identity.Name,
		Avatar: identity.AvatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// TTL は設定されたトークン有効期間を返す。
func (m *Minter) TTL() time.Duration {
	return m.ttl
}
