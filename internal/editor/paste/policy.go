// Определяет политики безопасности для вставляемого из буфера обмена контента.
// Вставка - единственная точка, через которую в документ попадает чужой HTML,
// поэтому фрагмент проходит через bluemonday до парсинга в дерево.
//
// Основные возможности:
//   - Разрешение форматирующих тегов и таблиц, допустимых в документе редактора.
//   - Ограничение inline-стилей регулярными выражениями (цвета, размеры, шрифты).
//   - Строгая политика для извлечения плоского текста из HTML.
package paste

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var StripTagsPolicy *bluemonday.Policy = bluemonday.StrictPolicy()
var EditorPolicy *bluemonday.Policy = bluemonday.UGCPolicy()

func init() {
	colorRegexp := regexp.MustCompile(`^(#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})|rgb\((\d+),\s*(\d+),\s*(\d+)\)|inherit)$`)
	sizeRegexp := regexp.MustCompile(`^(\d+(\.\d+)?(px|em|rem|pt|in|pc|mm|cm|%)?|auto|inherit|initial|unset)$`)
	fontRegexp := regexp.MustCompile(`^[\w\s,'"-]+$`)
	lineHeightRegexp := regexp.MustCompile(`^(\d+(\.\d+)?|normal|inherit)$`)

	EditorPolicy.AllowAttrs("style").OnElements(
		"p", "div", "span", "b", "i", "u", "s", "a",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"table", "tr", "td", "th", "li", "blockquote", "img")

	EditorPolicy.AllowAttrs("data-colwidths").OnElements("table")
	EditorPolicy.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
	EditorPolicy.AllowAttrs("start").Matching(regexp.MustCompile(`^\d+$`)).OnElements("ol")

	EditorPolicy.AllowStyles("color", "background-color").Matching(colorRegexp).Globally()
	EditorPolicy.AllowStyles("font-size", "width", "height", "padding", "margin-left").Matching(sizeRegexp).Globally()
	EditorPolicy.AllowStyles("font-family").Matching(fontRegexp).Globally()
	EditorPolicy.AllowStyles("line-height").Matching(lineHeightRegexp).Globally()
	EditorPolicy.AllowStyles("text-align").Matching(bluemonday.CellAlign).Globally()

	EditorPolicy.AllowElements("hr", "sub", "sup")
	EditorPolicy.AllowImages()
}

// StripTags извлекает плоский текст из HTML: блочные открывающие теги дают
// переносы строк, остальная разметка срезается строгой политикой.
func StripTags(html string) string {
	res := strings.ReplaceAll(html, "<p>", "\n")
	res = strings.ReplaceAll(res, "<li>", "\n")
	res = strings.ReplaceAll(res, "<br>", "\n")
	res = strings.ReplaceAll(res, "<br/>", "\n")
	res = StripTagsPolicy.Sanitize(res)
	return strings.TrimSpace(res)
}
