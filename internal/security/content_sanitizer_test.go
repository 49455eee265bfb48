package security

import (
	"strings"
	"testing"
)

func TestSanitize_RemovesScriptTags(t *testing.T) {
	s := NewContentSanitizer()

	input := `<p>本文</p><script>alert('xss')</script>`
	got := s.Sanitize(input)

	if strings.Contains(got, "<script>") || strings.Contains(got, "alert") {
		t.Errorf("Sanitize() = %q, script content must be removed", got)
	}
	if !strings.Contains(got, "<p>本文</p>") {
		t.Errorf("Sanitize() = %q, paragraph must be kept", got)
	}
}

func TestSanitize_RemovesEventAttributes(t *testing.T) {
	s := NewContentSanitizer()

	input := `<p onclick="alert('xss')">text</p>`
	got := s.Sanitize(input)

	if strings.Contains(got, "onclick") {
		t.Errorf("Sanitize() = %q, event attributes must be removed", got)
	}
}

func TestSanitize_RemovesIframeAndStyle(t *testing.T) {
	s := NewContentSanitizer()

	tests := []struct {
		name  string
		input string
		deny  string
	}{
		{name: "iframe", input: `<iframe src="https://evil.example.com"></iframe>`, deny: "<iframe"},
		{name: "style", input: `<style>body { display: none }</style>`, deny: "<style"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Sanitize(tt.input)
			if strings.Contains(got, tt.deny) {
				t.Errorf("Sanitize(%q) = %q", tt.input, got)
			}
		})
	}
}

func TestSanitize_KeepsAllowedFormatting(t *testing.T) {
	s := NewContentSanitizer()

	tests := []string{
		"<h1>見出し</h1>",
		"<h2>小見出し</h2>",
		"<ul><li>項目</li></ul>",
		"<ol><li>番号付き</li></ol>",
		"<blockquote>引用</blockquote>",
		"<pre><code>fmt.Println()</code></pre>",
		"<strong>強調</strong>",
		"<em>斜体</em>",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			if got := s.Sanitize(input); got != input {
				t.Errorf("Sanitize(%q) = %q, want unchanged", input, got)
			}
		})
	}
}

func TestSanitize_LinksGetNoReferrerAndTargetBlank(t *testing.T) {
	s := NewContentSanitizer()

	got := s.Sanitize(`<a href="https://example.com">link</a>`)

	if !strings.Contains(got, `href="https://example.com"`) {
		t.Errorf("Sanitize() = %q, href must be kept", got)
	}
	if !strings.Contains(got, `target="_blank"`) {
		t.Errorf("Sanitize() = %q, target=_blank must be added", got)
	}
	if !strings.Contains(got, "noreferrer") {
		t.Errorf("Sanitize() = %q, rel=noreferrer must be added", got)
	}
}

func TestSanitize_JavaScriptURLRemoved(t *testing.T) {
	s := NewContentSanitizer()

	got := s.Sanitize(`<a href="javascript:alert('xss')">link</a>`)

	if strings.Contains(got, "javascript:") {
		t.Errorf("Sanitize() = %q, javascript URLs must be removed", got)
	}
}

func TestSanitize_EmptyInput(t *testing.T) {
	s := NewContentSanitizer()

	if got := s.Sanitize(""); got != "" {
		t.Errorf("Sanitize(\"\") = %q, want empty string", got)
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	s := NewContentSanitizer()

	input := `<h1>見出し</h1><p>本文<script>x()</script></p><a href="https://example.com">link</a>`

	once := s.Sanitize(input)
	twice := s.Sanitize(once)

	if once != twice {
		t.Errorf("Sanitize is not idempotent:\nonce:  %q\ntwice: %q", once, twice)
	}
}
