// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string `json:"code"`     // エラーコード
	Message  string `json:"message"`  // エラーメッセージ
	Category string `json:"category"` // カテゴリ: auth, validation, notes, system
	Action   string `json:"action"`   // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeAuthFailed    = "AUTH_FAILED"
	ErrCodeInvalidState  = "INVALID_STATE"
	ErrCodeEmptyNote     = "EMPTY_NOTE"
	ErrCodeEmptyPatch    = "EMPTY_PATCH"
	ErrCodeBackendFailed = "BACKEND_FAILED"
	ErrCodeNoAvatar      = "NO_AVATAR"
)

// NewAuthFailedError は認証失敗エラーを生成する。
// プロバイダー拒否・ユーザーキャンセル・ネットワーク障害はすべて
// この1種類に正規化する（詳細はログにのみ残す）。
func NewAuthFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthFailed,
		Message:  "認証に失敗しました。",
		Category: "auth",
		Action:   "もう一度サインインをお試しください。",
	}
}

// NewEmptyNoteError はタイトルと本文がともに空のノート作成エラーを生成する。
func NewEmptyNoteError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyNote,
		Message:  "タイトルか本文のどちらかを入力してください。",
		Category: "validation",
		Action:   "内容を入力してから保存してください。",
	}
}

// NewEmptyPatchError は更新対象フィールドが1つもない更新エラーを生成する。
func NewEmptyPatchError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyPatch,
		Message:  "更新する項目がありません。",
		Category: "validation",
		Action:   "変更したい項目を指定してください。",
	}
}

// NewBackendFailedError はノートバックエンドとの通信失敗エラーを生成する。
func NewBackendFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeBackendFailed,
		Message:  "ノートサーバーとの通信に失敗しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewNoAvatarError はアバター画像が取得できない場合のエラーを生成する。
func NewNoAvatarError() *APIError {
	return &APIError{
		Code:     ErrCodeNoAvatar,
		Message:  "アバター画像を取得できませんでした。",
		Category: "system",
		Action:   "プロフィール画像の設定を確認してください。",
	}
}
