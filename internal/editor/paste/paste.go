// Нормализация контента из буфера обмена. Хост передает уже извлеченные из
// платформенного буфера HTML и плоский текст; ядро по настроенной политике решает,
// вставлять текст, форматированный фрагмент или спросить пользователя, и строит
// очищенный фрагмент дерева для вставки в текущее выделение.
package paste

import (
	"strings"

	"github.com/aisa-it/aiplan-editor/internal/editor/doctree"
	"github.com/aisa-it/aiplan-editor/internal/editor/ederrors"
)

type Mode string

const (
	PlainText         Mode = "plainText"
	FormattedAndPlain Mode = "formattedAndPlainText"
)

type Decision int

const (
	InsertPlain Decision = iota
	InsertFormatted
	// AskUser - HTML выглядит внешне отформатированным (Word, Google Docs);
	// хост должен показать пользователю выбор до вставки.
	AskUser
)

// Маркеры офисной разметки, из-за которых вставка требует подтверждения.
var externalMarkers = []string{
	"mso-",
	"class=\"Mso",
	"class='Mso",
	"<o:p",
	"urn:schemas-microsoft",
	"docs-internal-guid",
}

// Decide выбирает способ вставки по политике и виду HTML.
func Decide(html *string, mode Mode) Decision {
	if mode == PlainText || html == nil || strings.TrimSpace(*html) == "" {
		return InsertPlain
	}
	if LooksExternal(*html) {
		return AskUser
	}
	return InsertFormatted
}

// LooksExternal распознает HTML, пришедший из офисных редакторов.
func LooksExternal(html string) bool {
	for _, marker := range externalMarkers {
		if strings.Contains(html, marker) {
			return true
		}
	}
	return false
}

// PlainFragment строит фрагмент из плоского текста: текстовые прогоны,
// разделенные <br> по переносам строк. Форматирование не переносится.
func PlainFragment(text string) ([]*doctree.Node, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if text == "" {
		return nil, ederrors.ErrUnsupportedPasteContent
	}
	var nodes []*doctree.Node
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			nodes = append(nodes, doctree.NewNode(doctree.LineBreak))
		}
		if line != "" {
			nodes = append(nodes, doctree.NewText(line))
		}
	}
	return nodes, nil
}

// FormattedFragment санитизирует HTML политикой редактора и парсит в ноды дерева.
func FormattedFragment(raw string) ([]*doctree.Node, error) {
	sanitized := EditorPolicy.Sanitize(raw)
	nodes, err := doctree.ParseFragment(sanitized)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, ederrors.ErrUnsupportedPasteContent
	}
	return nodes, nil
}
