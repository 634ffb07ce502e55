// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer は社員レコードの自由記述フィールドを保存前にサニタイズし、
// 画面表示時のXSSを防ぐ。bluemondayの許可リストポリシーを使用する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer は自由記述テキストのサニタイズ機能のインターフェースを定義する。
type TextSanitizer interface {
	// PlainText はすべてのHTMLタグを除去し、前後の空白を取り除いたプレーンテキストを返す。
	// 役職・住所・スキルなど1行のフィールドに使用する。
	PlainText(raw string) string

	// Notes は備考欄向けに簡易な書式タグ（p, br, ul, ol, li, strong, em）のみを残す。
	// script、style、on*属性、リンクは除去される。
	Notes(raw string) string
}

// maxUnescapePasses は実体参照の多重エンコードを展開する最大回数。
const maxUnescapePasses = 8

// textSanitizer はTextSanitizerの実装。
// bluemondayのポリシーはスレッドセーフなので共有して使う。
type textSanitizer struct {
	strict *bluemonday.Policy
	notes  *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerの新しいインスタンスを生成する。
func NewTextSanitizer() *textSanitizer {
	notes := bluemonday.NewPolicy()
	notes.AllowElements("p", "br", "ul", "ol", "li", "strong", "em")

	return &textSanitizer{
		strict: bluemonday.StrictPolicy(),
		notes:  notes,
	}
}

// PlainText はタグを除去したプレーンテキストを返す。
// StrictPolicyがエスケープした実体参照は元の文字に戻す。
// 戻した結果にタグが現れた場合は再度除去し、結果が変わらなくなるまで繰り返す。
func (s *textSanitizer) PlainText(raw string) string {
	if raw == "" {
		return ""
	}
	cur := raw
	for i := 0; i < maxUnescapePasses; i++ {
		next := html.UnescapeString(s.strict.Sanitize(cur))
		if next == cur {
			return strings.TrimSpace(cur)
		}
		cur = next
	}
	// 収束しない入力はエスケープ済みのまま返す
	return strings.TrimSpace(s.strict.Sanitize(cur))
}

// Notes は書式タグのみを残したHTMLを返す。
func (s *textSanitizer) Notes(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.TrimSpace(s.notes.Sanitize(raw))
}

var _ TextSanitizer = (*textSanitizer)(nil)
