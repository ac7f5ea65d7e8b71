// Низкоуровневые операции над диапазонами: разрезание граничных текстовых нод,
// сбор текстовых нод диапазона, вставка фрагментов в позицию курсора и удаление
// выделенного содержимого.
package engine

import (
	"unicode/utf8"

	"github.com/aisa-it/aiplan-editor/internal/editor/doctree"
	"github.com/aisa-it/aiplan-editor/internal/editor/selection"
)

// splitBoundaries разрезает граничные текстовые ноды выделения так, чтобы
// диапазон покрывал только целые текстовые ноды. Возвращает упорядоченные
// границы после разрезов.
func splitBoundaries(root *doctree.Node, sel selection.Selection) (selection.Position, selection.Position) {
	start, end := selection.Ordered(root, sel)

	if start.Node.Kind == doctree.Text && start.Offset > 0 {
		sameNode := end.Node == start.Node
		rest := doctree.SplitText(start.Node, start.Offset)
		if rest == nil {
			// курсор в самом конце текста: граница после ноды
			start = afterPosition(start.Node)
		} else if rest != start.Node {
			if sameNode {
				end = selection.Position{Node: rest, Offset: end.Offset - start.Offset}
			}
			start = selection.Position{Node: rest, Offset: 0}
		}
	}

	if end.Node.Kind == doctree.Text {
		textLen := utf8.RuneCountInString(end.Node.Text)
		if end.Offset > 0 && end.Offset < textLen {
			doctree.SplitText(end.Node, end.Offset)
		}
	}

	return start, end
}

// textNodesInRange возвращает текстовые ноды, целиком лежащие между границами.
func textNodesInRange(root *doctree.Node, start, end selection.Position) []*doctree.Node {
	var out []*doctree.Node
	doctree.Walk(root, func(n *doctree.Node) bool {
		if n.Kind != doctree.Text {
			return false
		}
		textLen := utf8.RuneCountInString(n.Text)
		from := selection.Position{Node: n, Offset: 0}
		to := selection.Position{Node: n, Offset: textLen}
		if selection.Compare(start, from) <= 0 && selection.Compare(to, end) <= 0 {
			out = append(out, n)
		}
		return false
	})
	return out
}

// Атомарные ноды: удаляются диапазоном целиком, частичного покрытия не бывает.
var atomicKinds = map[doctree.Kind]bool{
	doctree.Image: true, doctree.Video: true, doctree.Rule: true,
	doctree.LineBreak: true, doctree.Table: true,
}

// atomicNodesInRange возвращает атомарные ноды, целиком лежащие между границами.
func atomicNodesInRange(root *doctree.Node, start, end selection.Position) []*doctree.Node {
	var out []*doctree.Node
	doctree.Walk(root, func(n *doctree.Node) bool {
		if !atomicKinds[n.Kind] || n.Parent() == nil {
			return false
		}
		from := selection.Position{Node: n.Parent(), Offset: n.Index()}
		to := selection.Position{Node: n.Parent(), Offset: n.Index() + 1}
		if selection.Compare(start, from) <= 0 && selection.Compare(to, end) <= 0 {
			out = append(out, n)
			return true
		}
		return false
	})
	return out
}

// afterPosition возвращает позицию сразу после ноды в ее родителе.
func afterPosition(n *doctree.Node) selection.Position {
	return selection.Position{Node: n.Parent(), Offset: n.Index() + 1}
}

// caretAtEnd возвращает позицию в конце текстовой ноды.
func caretAtEnd(t *doctree.Node) selection.Position {
	return selection.Position{Node: t, Offset: utf8.RuneCountInString(t.Text)}
}

// shallowClone копирует ноду без детей (новый ID).
func shallowClone(n *doctree.Node) *doctree.Node {
	c := doctree.NewNode(n.Kind)
	for k, v := range n.Attrs {
		c.SetAttr(k, v)
	}
	for k, v := range n.Styles {
		c.SetStyle(k, v)
	}
	return c
}

// splitAroundChild разрезает ноду p на [до c][c][после c], поднимая c на уровень
// родителя p. Пустые половины не создаются.
func splitAroundChild(p, c *doctree.Node) {
	parent := p.Parent()
	if parent == nil || c.Parent() != p {
		return
	}
	idx := c.Index()
	children := p.Children()

	var before, after *doctree.Node
	if idx > 0 {
		before = shallowClone(p)
		pre := make([]*doctree.Node, idx)
		copy(pre, children[:idx])
		for _, n := range pre {
			before.AppendChild(n)
		}
	}
	if n := p.ChildCount(); n > 1 {
		// после переноса "до" в p остались c и хвост
		rest := p.Children()
		if len(rest) > 1 {
			after = shallowClone(p)
			tail := make([]*doctree.Node, len(rest)-1)
			copy(tail, rest[1:])
			for _, n := range tail {
				after.AppendChild(n)
			}
		}
	}

	at := p.Index()
	c.Detach()
	if before != nil {
		parent.InsertChildAt(at, before)
		at++
	}
	parent.InsertChildAt(at, c)
	at++
	if after != nil {
		parent.InsertChildAt(at, after)
	}
	p.Detach()
}

// isolateUnder поднимает текстовую ноду t до прямого ребенка wrapper,
// разрезая промежуточных предков.
func isolateUnder(t, wrapper *doctree.Node) {
	for t.Parent() != nil && t.Parent() != wrapper {
		splitAroundChild(t.Parent(), t)
	}
}

// splitUpTo разрезает дерево от позиции pos вверх до уровня ancestor и
// возвращает индекс в ancestor, по которому можно вставлять.
func splitUpTo(pos selection.Position, ancestor *doctree.Node) int {
	node := pos.Node
	idx := pos.Offset
	if node.Kind == doctree.Text {
		rest := doctree.SplitText(node, pos.Offset)
		switch {
		case rest == nil:
			idx = node.Index() + 1
		case rest == node:
			idx = node.Index()
		default:
			idx = rest.Index()
		}
		node = node.Parent()
	}
	for node != ancestor && node.Parent() != nil {
		p := node
		children := p.Children()
		if idx < len(children) {
			right := shallowClone(p)
			tail := make([]*doctree.Node, len(children)-idx)
			copy(tail, children[idx:])
			for _, n := range tail {
				right.AppendChild(n)
			}
			p.Parent().InsertAfter(right, p)
		}
		idx = p.Index() + 1
		node = p.Parent()
	}
	return idx
}

// insertFragmentAt вставляет ноды фрагмента в позицию. Строчные ноды встают в
// точку курсора, блочные - после блока, содержащего курсор; порядок фрагмента
// сохраняется. Внутри ячейки таблицы блочные ноды остаются в ячейке: строка
// таблицы содержит только ячейки. Курсор остается после последней вставленной ноды.
func (e *Engine) insertFragmentAt(pos selection.Position, nodes []*doctree.Node) {
	if len(nodes) == 0 {
		return
	}

	inlineParent, inlineIdx := caretInsertPoint(pos)
	block := inlineParent.Block()
	if block == nil || block.Kind == doctree.TableRow {
		block = inlineParent
	}
	insideCell := block.Kind == doctree.TableCell || block.Kind == doctree.TableHead

	var last *doctree.Node
	for _, n := range nodes {
		if n.Kind.IsBlock() {
			if insideCell {
				if inlineParent != block {
					// точка вставки поднимается на уровень ячейки
					anchor := inlineParent
					for anchor.Parent() != block {
						anchor = anchor.Parent()
					}
					inlineParent, inlineIdx = block, anchor.Index()+1
				}
				inlineParent.InsertChildAt(inlineIdx, n)
				inlineIdx++
				last = n
				continue
			}
			target := block.Parent()
			if target == nil {
				target = block
				target.AppendChild(n)
			} else {
				target.InsertAfter(n, block)
			}
			block = n
		} else {
			if inlineParent.Kind == doctree.Root {
				// строчная нода на верхнем уровне оборачивается в параграф
				p := doctree.NewNode(doctree.Paragraph)
				inlineParent.InsertChildAt(inlineIdx, p)
				inlineParent = p
				inlineIdx = 0
			}
			inlineParent.InsertChildAt(inlineIdx, n)
			inlineIdx++
		}
		last = n
	}

	if last != nil {
		var caret selection.Position
		if last.Kind == doctree.Text {
			caret = caretAtEnd(last)
		} else {
			caret = afterPosition(last)
		}
		e.setCaret(caret)
	}
}

// caretInsertPoint приводит позицию к виду (родитель, индекс ребенка).
func caretInsertPoint(pos selection.Position) (*doctree.Node, int) {
	if pos.Node.Kind == doctree.Text {
		rest := doctree.SplitText(pos.Node, pos.Offset)
		switch {
		case rest == nil:
			return pos.Node.Parent(), pos.Node.Index() + 1
		case rest == pos.Node:
			return pos.Node.Parent(), pos.Node.Index()
		default:
			return rest.Parent(), rest.Index()
		}
	}
	return pos.Node, pos.Offset
}

// deleteRange удаляет содержимое выделения и возвращает схлопнутое выделение
// в начале бывшего диапазона. Блочные границы не сливаются: опустевшие блоки
// подчищает нормализация.
func (e *Engine) deleteRange(sel selection.Selection) selection.Selection {
	if sel.Collapsed() {
		return sel
	}
	start, end := splitBoundaries(e.doc, sel)

	// выделение в пределах одной текстовой ноды
	if start.Node == end.Node && start.Node.Kind == doctree.Text {
		runes := []rune(start.Node.Text)
		from, to := start.Offset, end.Offset
		if to > len(runes) {
			to = len(runes)
		}
		start.Node.Text = string(runes[:from]) + string(runes[to:])
		collapsed := selection.Selection{Anchor: start, Focus: start}
		e.setCaret(start)
		return collapsed
	}

	// запасная позиция на случай, если стартовая нода уходит вместе с диапазоном:
	// конец текста слева от диапазона либо место ноды в родителе
	fallback := start
	if start.Node.Kind == doctree.Text {
		if prev := start.Node.PrevSibling(); prev != nil && prev.Kind == doctree.Text {
			fallback = caretAtEnd(prev)
		} else {
			fallback = selection.Position{Node: start.Node.Parent(), Offset: start.Node.Index()}
		}
	}

	removed := textNodesInRange(e.doc, start, end)
	removed = append(removed, atomicNodesInRange(e.doc, start, end)...)
	for _, t := range removed {
		parent := t.Parent()
		t.Detach()
		pruneEmptyInline(parent)
	}

	caret := start
	if !e.doc.Contains(caret.Node) {
		caret = fallback
	}
	if !e.doc.Contains(caret.Node) {
		caret = selection.Position{Node: e.doc, Offset: 0}
	}
	e.setCaret(caret)
	return selection.Selection{Anchor: caret, Focus: caret}
}

// pruneEmptyInline удаляет опустевшие строчные обертки вверх по цепочке.
func pruneEmptyInline(n *doctree.Node) {
	for n != nil && !n.Kind.IsBlock() && n.Kind != doctree.Root && n.ChildCount() == 0 {
		parent := n.Parent()
		n.Detach()
		n = parent
	}
}

func (e *Engine) setCaret(pos selection.Position) {
	sel := selection.Selection{Anchor: pos, Focus: pos}
	if err := e.tracker.Set(sel); err != nil {
		e.tracker.SeedDefault()
	}
}
