package security

import (
	"strings"
	"testing"
)

// TestPlainText はタグが除去されることを検証する。
func TestPlainText(t *testing.T) {
	sanitizer := NewTextSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"空文字列はそのまま", "", ""},
		{"通常のテキストは変化しない", "Senior Developer", "Senior Developer"},
		{"scriptタグは中身ごと除去される", "Dev<script>alert(1)</script>", "Dev"},
		{"書式タグも除去される", "<strong>Lead</strong> Engineer", "Lead Engineer"},
		{"実体参照は元の文字に戻る", "R&D Manager", "R&D Manager"},
		{"前後の空白を除去する", "  Tokyo  ", "Tokyo"},
		{"不等号だけの文字列は残る", "a < b", "a < b"},
		{"実体参照で書かれたタグも除去される", "&lt;img src=x onerror=alert(1)&gt;", ""},
		{"実体参照で書かれたscriptは中身ごと除去される", "Dev&lt;script&gt;alert(1)&lt;/script&gt;", "Dev"},
		{"二重エンコードされたタグも除去される", "&amp;lt;img src=x onerror=alert(1)&amp;gt;Lead", "Lead"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizer.PlainText(tt.input); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestPlainText_NeverReturnsMarkup は戻り値を再度サニタイズしても変化しないことを検証する。
func TestPlainText_NeverReturnsMarkup(t *testing.T) {
	sanitizer := NewTextSanitizer()

	inputs := []string{
		"&lt;img src=x onerror=alert(1)&gt;",
		"&#60;svg onload=alert(1)&#62;",
		"&amp;amp;lt;b&amp;amp;gt;x",
		"<b>&lt;i&gt;nested&lt;/i&gt;</b>",
	}
	for _, in := range inputs {
		got := sanitizer.PlainText(in)
		if strings.Contains(got, "<") && strings.Contains(got, ">") {
			t.Errorf("PlainText(%q) = %q, contains markup", in, got)
		}
		if again := sanitizer.PlainText(got); again != got {
			t.Errorf("PlainText not idempotent for %q: %q -> %q", in, got, again)
		}
	}
}

// TestNotes は許可タグのみが残ることを検証する。
func TestNotes(t *testing.T) {
	sanitizer := NewTextSanitizer()

	tests := []struct {
		name           string
		input          string
		wantContains   []string
		wantNotContain []string
	}{
		{
			name:         "pタグとstrongタグは残る",
			input:        "<p>Promoted in <strong>2024</strong></p>",
			wantContains: []string{"<p>", "<strong>2024</strong>"},
		},
		{
			name:           "scriptタグは除去される",
			input:          "<p>ok</p><script>alert('xss')</script>",
			wantContains:   []string{"<p>ok</p>"},
			wantNotContain: []string{"<script", "alert"},
		},
		{
			name:           "on*属性は除去される",
			input:          `<p onclick="steal()">click</p>`,
			wantContains:   []string{"<p>click</p>"},
			wantNotContain: []string{"onclick"},
		},
		{
			name:           "リンクは除去される",
			input:          `<a href="https://evil.example.com">link</a>`,
			wantContains:   []string{"link"},
			wantNotContain: []string{"<a", "href"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.Notes(tt.input)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("Notes(%q) = %q, want to contain %q", tt.input, got, want)
				}
			}
			for _, bad := range tt.wantNotContain {
				if strings.Contains(got, bad) {
					t.Errorf("Notes(%q) = %q, must not contain %q", tt.input, got, bad)
				}
			}
		})
	}
}

// TestNotes_Idempotent は同一入力に対して同一出力を返すことを検証する。
func TestNotes_Idempotent(t *testing.T) {
	sanitizer := NewTextSanitizer()
	input := "<ul><li>one</li><li>two</li></ul><iframe src=x></iframe>"

	first := sanitizer.Notes(input)
	second := sanitizer.Notes(first)
	if first != second {
		t.Errorf("not idempotent: %q then %q", first, second)
	}
}
