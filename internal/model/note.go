package model

import "time"

// Note はバックエンドAPIが所有するノートを表す。
// クライアント側では表示用の一時的なコピーとしてのみ保持し、
// 真実のソースとしては扱わない。
type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteDraft はノート作成時の入力を表す。
type NoteDraft struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// NotePatch はノート更新時の部分入力を表す。
// 空でないフィールドのみがバックエンドに送信される。
// つまりupdate経由でフィールドを空文字列にクリアすることはできない
// （呼び出し側が守るべき設計上の制約）。
type NotePatch struct {
	Title   string   `json:"title,omitempty"`
	Content string   `json:"content,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// IsEmpty はパッチに送信対象のフィールドが1つもないことを返す。
func (p NotePatch) IsEmpty() bool {
	return p.Title == "" && p.Content == "" && len(p.Tags) == 0
}
