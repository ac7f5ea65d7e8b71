// Строчное форматирование: переключение форматирующих оберток (жирный, курсив
// и т.д.), применение inline-стилей к диапазону и ввод текста с учетом
// отложенных форматов схлопнутого курсора.
package engine

import (
	"strings"

	"github.com/aisa-it/aiplan-editor/internal/editor/doctree"
	"github.com/aisa-it/aiplan-editor/internal/editor/selection"
	tableeditor "github.com/aisa-it/aiplan-editor/internal/editor/table-editor"
)

// hasMark сообщает, действует ли формат в ноде: либо через обертку
// соответствующего вида, либо через эквивалентный inline-стиль предка.
func hasMark(n *doctree.Node, kind doctree.Kind) bool {
	for p := n; p != nil; p = p.Parent() {
		if p.Kind == kind {
			return true
		}
		switch kind {
		case doctree.Bold:
			if w := p.Style("font-weight"); w == "bold" || w == "700" {
				return true
			}
		case doctree.Italic:
			if p.Style("font-style") == "italic" {
				return true
			}
		case doctree.Underline:
			if strings.Contains(p.Style("text-decoration"), "underline") {
				return true
			}
		case doctree.Strike:
			if strings.Contains(p.Style("text-decoration"), "line-through") {
				return true
			}
		}
	}
	return false
}

// markAncestorOfKind возвращает ближайшую обертку указанного вида над нодой
// (сама нода не учитывается).
func markAncestorOfKind(n *doctree.Node, kind doctree.Kind) *doctree.Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Kind == kind {
			return p
		}
	}
	return nil
}

// MarkActive сообщает, активен ли формат в текущем выделении (для подсветки
// кнопок тулбара). Отложенный toggle схлопнутого курсора инвертирует ответ.
func (e *Engine) MarkActive(kind doctree.Kind) bool {
	sel, ok := e.tracker.Current()
	if !ok {
		return false
	}
	active := false
	if sel.Collapsed() {
		active = hasMark(sel.Anchor.Node, kind)
	} else {
		start, end := selection.Ordered(e.doc, sel)
		texts := textNodesInRange(e.doc, start, end)
		if len(texts) > 0 {
			active = true
			for _, t := range texts {
				if !hasMark(t, kind) {
					active = false
					break
				}
			}
		}
	}
	if e.pendingMarks[kind] {
		return !active
	}
	return active
}

// sameCellScope проверяет, что границы диапазона не пересекают границу ячейки
// таблицы. Форматирование через границу ячеек - безопасный no-op.
func sameCellScope(start, end selection.Position) bool {
	return tableeditor.CellFor(start.Node) == tableeditor.CellFor(end.Node)
}

// toggleMark переключает форматирующую обертку. На схлопнутом курсоре формат
// откладывается и применится к следующему введенному тексту.
func (e *Engine) toggleMark(c *Context, kind doctree.Kind) error {
	if c.Sel.Collapsed() {
		e.pendingMarks[kind] = !e.pendingMarks[kind]
		c.NoChange()
		return nil
	}

	start, end := selection.Ordered(e.doc, c.Sel)
	if !sameCellScope(start, end) {
		c.NoChange()
		return nil
	}

	start, end = splitBoundaries(e.doc, c.Sel)
	texts := textNodesInRange(e.doc, start, end)
	if len(texts) == 0 {
		c.NoChange()
		return nil
	}

	allMarked := true
	for _, t := range texts {
		if markAncestorOfKind(t, kind) == nil {
			allMarked = false
			break
		}
	}

	if allMarked {
		for _, t := range texts {
			unwrapMark(t, kind)
		}
	} else {
		for _, t := range texts {
			if markAncestorOfKind(t, kind) == nil {
				wrapInline(t, doctree.NewNode(kind))
			}
		}
	}

	e.selectTexts(texts)
	return nil
}

// wrapInline оборачивает ноду на ее месте в дереве.
func wrapInline(t *doctree.Node, wrapper *doctree.Node) {
	parent := t.Parent()
	idx := t.Index()
	parent.InsertChildAt(idx, wrapper)
	wrapper.AppendChild(t)
}

// unwrapMark выносит текстовую ноду из всех оберток указанного вида,
// разрезая обертки так, что соседний текст остается отформатированным.
func unwrapMark(t *doctree.Node, kind doctree.Kind) {
	for {
		m := markAncestorOfKind(t, kind)
		if m == nil {
			return
		}
		isolateUnder(t, m)
		splitAroundChild(m, t)
	}
}

// selectTexts выделяет диапазон от начала первой до конца последней ноды.
func (e *Engine) selectTexts(texts []*doctree.Node) {
	if len(texts) == 0 {
		return
	}
	sel := selection.Selection{
		Anchor: selection.Position{Node: texts[0], Offset: 0},
		Focus:  caretAtEnd(texts[len(texts)-1]),
	}
	if err := e.tracker.Set(sel); err != nil {
		e.tracker.SeedDefault()
	}
}

// applyInlineStyle применяет inline-стиль к выделению. Значение запоминается
// как недавний выбор пользователя для разрешения стилей.
func (e *Engine) applyInlineStyle(c *Context, prop, value string) error {
	e.resolver.NoteChoice(prop, value)

	if c.Sel.Collapsed() {
		e.pendingStyles[prop] = value
		c.NoChange()
		return nil
	}

	start, end := selection.Ordered(e.doc, c.Sel)
	if !sameCellScope(start, end) {
		c.NoChange()
		return nil
	}

	start, end = splitBoundaries(e.doc, c.Sel)
	texts := textNodesInRange(e.doc, start, end)
	if len(texts) == 0 {
		c.NoChange()
		return nil
	}

	for _, t := range texts {
		parent := t.Parent()
		if parent.Kind == doctree.Span && parent.ChildCount() == 1 {
			parent.SetStyle(prop, value)
			continue
		}
		span := doctree.NewNode(doctree.Span)
		span.SetStyle(prop, value)
		wrapInline(t, span)
	}

	e.selectTexts(texts)
	return nil
}

// removeFormat снимает все строчное форматирование с выделения: обертки
// и стилевые span'ы разрезаются, текст поднимается к блоку.
func (e *Engine) removeFormat(c *Context) error {
	if c.Sel.Collapsed() {
		e.clearPending()
		c.NoChange()
		return nil
	}

	start, end := selection.Ordered(e.doc, c.Sel)
	if !sameCellScope(start, end) {
		c.NoChange()
		return nil
	}

	start, end = splitBoundaries(e.doc, c.Sel)
	texts := textNodesInRange(e.doc, start, end)
	if len(texts) == 0 {
		c.NoChange()
		return nil
	}

	for _, t := range texts {
		for {
			w := inlineWrapper(t)
			if w == nil {
				break
			}
			isolateUnder(t, w)
			splitAroundChild(w, t)
		}
	}

	e.selectTexts(texts)
	return nil
}

// inlineWrapper возвращает ближайшую форматирующую обертку или span над нодой.
func inlineWrapper(t *doctree.Node) *doctree.Node {
	for p := t.Parent(); p != nil && !p.Kind.IsBlock() && p.Kind != doctree.Root; p = p.Parent() {
		if p.Kind.IsMark() || p.Kind == doctree.Span {
			return p
		}
	}
	return nil
}

// insertTextAtCaret вставляет текст в позицию курсора. Отложенные форматы
// (toggle на схлопнутом курсоре) применяются к вставляемому тексту и
// сбрасываются.
func (e *Engine) insertTextAtCaret(pos selection.Position, text string) {
	if len(e.pendingMarks) == 0 && len(e.pendingStyles) == 0 {
		e.spliceText(pos, text)
		return
	}

	addMarks := make([]doctree.Kind, 0, len(e.pendingMarks))
	removeMarks := make(map[doctree.Kind]bool)
	for kind, on := range e.pendingMarks {
		if !on {
			continue
		}
		if hasMark(pos.Node, kind) {
			removeMarks[kind] = true
		} else {
			addMarks = append(addMarks, kind)
		}
	}

	// Содержимое: текст, завернутый в добавляемые обертки и стилевой span.
	inner := doctree.NewText(text)
	wrapped := inner
	if len(e.pendingStyles) > 0 {
		span := doctree.NewNode(doctree.Span)
		for prop, v := range e.pendingStyles {
			span.SetStyle(prop, v)
		}
		span.AppendChild(wrapped)
		wrapped = span
	}
	for _, kind := range addMarks {
		m := doctree.NewNode(kind)
		m.AppendChild(wrapped)
		wrapped = m
	}

	// Формат, активный только через inline-стиль предка, снять разрезом
	// оберток нельзя: снимаемой обертки нет.
	outer := outermostMark(pos.Node, removeMarks)

	if outer == nil {
		parent, idx := caretInsertPoint(pos)
		parent.InsertChildAt(idx, wrapped)
	} else {
		// Дерево разрезается над самой внешней снимаемой оберткой; обертки
		// между курсором и ней, не подлежащие снятию, восстанавливаются.
		keep := marksBetween(pos.Node, outer, removeMarks)
		for _, kind := range keep {
			m := doctree.NewNode(kind)
			m.AppendChild(wrapped)
			wrapped = m
		}
		target := outer.Parent()
		idx := splitUpTo(pos, target)
		target.InsertChildAt(idx, wrapped)
	}

	e.clearPending()
	e.setCaret(caretAtEnd(inner))
}

// spliceText вставляет текст без смены форматирования: в существующую
// текстовую ноду по смещению либо новой нодой в позицию элемента.
func (e *Engine) spliceText(pos selection.Position, text string) {
	if pos.Node.Kind == doctree.Text {
		runes := []rune(pos.Node.Text)
		off := pos.Offset
		if off > len(runes) {
			off = len(runes)
		}
		pos.Node.Text = string(runes[:off]) + text + string(runes[off:])
		e.setCaret(selection.Position{Node: pos.Node, Offset: off + len([]rune(text))})
		return
	}
	t := doctree.NewText(text)
	parent, idx := caretInsertPoint(pos)
	if parent.Kind == doctree.Root {
		p := doctree.NewNode(doctree.Paragraph)
		parent.InsertChildAt(idx, p)
		parent, idx = p, 0
	}
	parent.InsertChildAt(idx, t)
	e.setCaret(caretAtEnd(t))
}

// outermostMark возвращает самую внешнюю обертку из снимаемого набора.
func outermostMark(n *doctree.Node, kinds map[doctree.Kind]bool) *doctree.Node {
	var outer *doctree.Node
	for p := n.Parent(); p != nil; p = p.Parent() {
		if kinds[p.Kind] {
			outer = p
		}
	}
	return outer
}

// marksBetween собирает обертки от ноды до outer (не включая outer),
// которые не входят в снимаемый набор.
func marksBetween(n, outer *doctree.Node, skip map[doctree.Kind]bool) []doctree.Kind {
	var keep []doctree.Kind
	for p := n.Parent(); p != nil && p != outer; p = p.Parent() {
		if p.Kind.IsMark() && !skip[p.Kind] {
			keep = append(keep, p.Kind)
		}
	}
	return keep
}
