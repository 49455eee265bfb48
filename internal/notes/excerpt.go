package notes

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// defaultExcerptLength は一覧表示用抜粋のデフォルト文字数。
const defaultExcerptLength = 200

// Excerpt はノート本文のHTMLからプレーンテキストの抜粋を生成する。
// script/style要素の中身は捨て、テキストノードを空白1つで連結した上で
// maxRunes文字（rune単位）に切り詰める。切り詰めた場合は末尾に「…」を付ける。
// maxRunesが0以下の場合はデフォルト長を使う。
func Excerpt(rawHTML string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = defaultExcerptLength
	}
	if rawHTML == "" {
		return ""
	}

	text := extractText(rawHTML)
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}

	runes := []rune(text)
	return strings.TrimSpace(string(runes[:maxRunes])) + "…"
}

// extractText はHTMLのテキストノードを順に取り出して連結する。
func extractText(rawHTML string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(rawHTML))

	var b strings.Builder
	skipDepth := 0

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOFを含む。パースできない断片はそこまでの結果を返す。
			return strings.Join(strings.Fields(b.String()), " ")

		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if isSkippedTag(string(name)) {
				skipDepth++
			}

		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if isSkippedTag(string(name)) && skipDepth > 0 {
				skipDepth--
			}

		case html.TextToken:
			if skipDepth == 0 {
				b.Write(tokenizer.Text())
				b.WriteByte(' ')
			}
		}
	}
}

// isSkippedTag はテキスト抽出の対象外とする要素かを返す。
func isSkippedTag(name string) bool {
	return name == "script" || name == "style"
}
