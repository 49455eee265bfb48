// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// Googleのプロフィール情報から生成され、セッションレコードに保持される。
type User struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// Identity は外部IdPから取得したサインイン時のアサーションを表す。
// サインイン交換の間だけ存在する一時的な値で、永続化されない。
// プロフィール項目は信頼できない入力として単なる文字列のまま扱う。
type Identity struct {
	ProviderUserID string
	Email          string
	Name           string
	AvatarURL      string
	Provider       string // "google" 等
}

// Session はログインセッションのレコードを表す。
// ユーザープロフィールとミント済みアプリケーショントークンの組。
// 作成・削除はauthサービスのみが行い、他のコンポーネントは読み取り専用とする。
type Session struct {
	ID        string    `json:"id"`
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
