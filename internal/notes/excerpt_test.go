package notes

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name     string
		rawHTML  string
		maxRunes int
		want     string
	}{
		{
			name:     "空文字列",
			rawHTML:  "",
			maxRunes: 100,
			want:     "",
		},
		{
			name:     "プレーンテキストはそのまま",
			rawHTML:  "hello world",
			maxRunes: 100,
			want:     "hello world",
		},
		{
			name:     "タグを除去してテキストを連結",
			rawHTML:  "<p>first</p><p>second</p>",
			maxRunes: 100,
			want:     "first second",
		},
		{
			name:     "scriptの中身は捨てる",
			rawHTML:  "<p>visible</p><script>alert('x')</script>",
			maxRunes: 100,
			want:     "visible",
		},
		{
			name:     "styleの中身は捨てる",
			rawHTML:  "<style>body { color: red }</style><p>text</p>",
			maxRunes: 100,
			want:     "text",
		},
		{
			name:     "連続する空白をまとめる",
			rawHTML:  "<p>a\n\n  b\t c</p>",
			maxRunes: 100,
			want:     "a b c",
		},
		{
			name:     "日本語のテキスト",
			rawHTML:  "<h1>見出し</h1><p>本文です。</p>",
			maxRunes: 100,
			want:     "見出し 本文です。",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Excerpt(tt.rawHTML, tt.maxRunes); got != tt.want {
				t.Errorf("Excerpt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExcerpt_TruncatesAtRuneBoundary(t *testing.T) {
	// 200文字を超える日本語テキスト（rune単位で切ること）
	long := strings.Repeat("あ", 300)

	got := Excerpt("<p>"+long+"</p>", 0)

	if !strings.HasSuffix(got, "…") {
		t.Errorf("expected truncated excerpt to end with ellipsis: %q", got)
	}
	// 省略記号を除いた長さがデフォルト長以下であること
	body := strings.TrimSuffix(got, "…")
	if utf8.RuneCountInString(body) > 200 {
		t.Errorf("excerpt body has %d runes, want <= 200", utf8.RuneCountInString(body))
	}
	// バイト切りで文字が壊れていないこと
	if !utf8.ValidString(got) {
		t.Error("excerpt contains invalid UTF-8")
	}
}

func TestExcerpt_ShortTextNotTruncated(t *testing.T) {
	got := Excerpt("<p>short</p>", 10)
	if strings.HasSuffix(got, "…") {
		t.Errorf("short text must not be truncated: %q", got)
	}
	if got != "short" {
		t.Errorf("Excerpt() = %q, want %q", got, "short")
	}
}
