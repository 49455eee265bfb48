package token

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DecodeUnverified は署名検証なしでトークンのクレームを取り出す。
// 署名の検証はAPIコールごとにバックエンドの責務であり、
// クライアント側はexpのローカルチェックにのみクレームを使用する。
// 3セグメント構造でない・ペイロードがデコードできない場合はエラーを返す。
func DecodeUnverified(raw string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("malformed token: %w", err)
	}
	return claims, nil
}

// Expired はクレームのexpがnowから見て有効期限切れかを返す。
// expが欠けているトークンは期限切れとして扱う（フェイルクローズド）。
func Expired(claims *Claims, now time.Time) bool {
	if claims == nil || claims.ExpiresAt == nil {
		return true
	}
	return !claims.ExpiresAt.Time.After(now)
}

// WellFormed はトークンがヘッダー・ペイロード・署名の3セグメント構造を
// 持つことを構文的に確認する。中身のデコードまでは行わない。
func WellFormed(raw string) bool {
	if raw == "" {
		return false
	}
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	return true
}
