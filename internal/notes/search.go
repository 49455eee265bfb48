package notes

import (
	"strings"

	"github.com/kenta/memoya/internal/model"
)

// Filter はノート一覧をクエリ文字列で絞り込む。
// タイトル・本文・タグのいずれかに部分一致（大文字小文字を区別しない）
// したノートを、元の順序を保ったまま返す。
// クエリが空白のみの場合は全件を返す。
func Filter(all []model.Note, query string) []model.Note {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all
	}

	matched := make([]model.Note, 0, len(all))
	for _, note := range all {
		if matches(note, q) {
			matched = append(matched, note)
		}
	}
	return matched
}

// matches はノートが小文字化済みクエリに一致するかを返す。
func matches(note model.Note, q string) bool {
	if strings.Contains(strings.ToLower(note.Title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(note.Content), q) {
		return true
	}
	for _, tag := range note.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}
