// Блочное форматирование: смена вида блока, списки, выравнивание и отступы.
package engine

import (
	"strconv"
	"strings"

	"github.com/aisa-it/aiplan-editor/internal/editor/doctree"
	"github.com/aisa-it/aiplan-editor/internal/editor/ederrors"
	"github.com/aisa-it/aiplan-editor/internal/editor/selection"
)

const indentStepPx = 40

// Блоки, которые format-block может переназначить на другой вид.
var retargetable = map[doctree.Kind]bool{
	doctree.Paragraph: true, doctree.Div: true, doctree.Blockquote: true,
	doctree.Heading1: true, doctree.Heading2: true, doctree.Heading3: true,
	doctree.Heading4: true, doctree.Heading5: true, doctree.Heading6: true,
}

var formatBlockKinds = map[string]doctree.Kind{
	"p": doctree.Paragraph, "div": doctree.Div, "blockquote": doctree.Blockquote,
	"h1": doctree.Heading1, "h2": doctree.Heading2, "h3": doctree.Heading3,
	"h4": doctree.Heading4, "h5": doctree.Heading5, "h6": doctree.Heading6,
	"pre": doctree.Pre,
}

// targetBlocks возвращает блоки, затронутые выделением: блоки всех текстовых
// нод диапазона, для пустого диапазона - блок якоря.
func (e *Engine) targetBlocks(sel selection.Selection) []*doctree.Node {
	start, end := selection.Ordered(e.doc, sel)
	texts := textNodesInRange(e.doc, start, end)
	var blocks []*doctree.Node
	seen := make(map[*doctree.Node]bool)
	for _, t := range texts {
		b := t.Block()
		if b != nil && !seen[b] {
			seen[b] = true
			blocks = append(blocks, b)
		}
	}
	if len(blocks) == 0 {
		if b := start.Node.Block(); b != nil {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// formatBlock меняет вид блоков выделения. Особые случаи:
//   - цель "pre" переписывает весь документ одним преформатированным блоком
//     из его плоского текста (поведение унаследовано от первых версий
//     редактора и сохраняется);
//   - блок "pre" при смене на другой вид разбивается построчно: по блоку на
//     непустую строку, пустая строка дает пустой параграф с <br>.
func (e *Engine) formatBlock(c *Context, tag string) error {
	kind, ok := formatBlockKinds[strings.ToLower(strings.TrimSpace(tag))]
	if !ok {
		return ederrors.ErrStructuralViolation
	}

	if kind == doctree.Pre {
		return e.formatWholeDocumentPre()
	}

	blocks := e.targetBlocks(c.Sel)
	if len(blocks) == 0 {
		c.NoChange()
		return nil
	}

	changed := false
	for _, b := range blocks {
		switch {
		case b.Kind == doctree.Pre:
			splitPreInto(b, kind)
			changed = true
		case retargetable[b.Kind] && b.Kind != kind:
			b.Kind = kind
			changed = true
		}
	}
	if !changed {
		c.NoChange()
	}
	return nil
}

// formatWholeDocumentPre замещает содержимое документа одним pre-блоком
// с плоским текстом всего документа.
func (e *Engine) formatWholeDocumentPre() error {
	text := e.doc.PlainText()
	old := make([]*doctree.Node, len(e.doc.Children()))
	copy(old, e.doc.Children())
	for _, child := range old {
		child.Detach()
	}
	pre := doctree.NewNode(doctree.Pre)
	t := doctree.NewText(text)
	pre.AppendChild(t)
	e.doc.AppendChild(pre)
	e.setCaret(caretAtEnd(t))
	return nil
}

// splitPreInto разбивает pre-блок построчно на блоки вида kind.
func splitPreInto(pre *doctree.Node, kind doctree.Kind) {
	parent := pre.Parent()
	if parent == nil {
		return
	}
	lines := strings.Split(pre.PlainText(), "\n")
	ref := pre
	for _, line := range lines {
		b := doctree.NewNode(kind)
		if line == "" {
			b.AppendChild(doctree.NewNode(doctree.LineBreak))
		} else {
			b.AppendChild(doctree.NewText(line))
		}
		parent.InsertAfter(b, ref)
		ref = b
	}
	pre.Detach()
}

// toggleList оборачивает блоки выделения в список, снимает список или меняет
// его вид (нумерованный <-> маркированный).
func (e *Engine) toggleList(c *Context, kind doctree.Kind) error {
	blocks := e.targetBlocks(c.Sel)
	if len(blocks) == 0 {
		c.NoChange()
		return nil
	}

	if li := blocks[0].Ancestor(func(n *doctree.Node) bool { return n.Kind == doctree.ListItem }); li != nil {
		list := li.Parent()
		if list == nil {
			c.NoChange()
			return nil
		}
		if list.Kind == kind {
			e.unwrapListItems(list, blocks)
		} else {
			list.Kind = kind
		}
		return nil
	}

	list := doctree.NewNode(kind)
	first := blocks[0]
	// список встает на место первого блока; блоки внутри таблиц не трогаем
	parent := first.Parent()
	if parent == nil {
		c.NoChange()
		return nil
	}
	parent.InsertChildAt(first.Index(), list)
	for _, b := range blocks {
		if !retargetable[b.Kind] {
			continue
		}
		b.Kind = doctree.ListItem
		list.AppendChild(b)
	}
	if list.ChildCount() == 0 {
		list.Detach()
		c.NoChange()
	}
	return nil
}

// unwrapListItems выносит элементы списка, содержащие указанные блоки,
// на уровень списка и превращает их в параграфы.
func (e *Engine) unwrapListItems(list *doctree.Node, blocks []*doctree.Node) {
	seen := make(map[*doctree.Node]bool)
	var items []*doctree.Node
	for _, b := range blocks {
		li := b.Ancestor(func(n *doctree.Node) bool { return n.Kind == doctree.ListItem })
		if li != nil && li.Parent() == list && !seen[li] {
			seen[li] = true
			items = append(items, li)
		}
	}
	for _, li := range items {
		splitAroundChild(list, li)
		li.Kind = doctree.Paragraph
	}
}

// justify выставляет горизонтальное выравнивание блоков выделения.
func (e *Engine) justify(c *Context, align string) error {
	blocks := e.targetBlocks(c.Sel)
	if len(blocks) == 0 {
		c.NoChange()
		return nil
	}
	changed := false
	for _, b := range blocks {
		if b.Style("text-align") == align {
			continue
		}
		b.SetStyle("text-align", align)
		changed = true
	}
	if !changed {
		c.NoChange()
	}
	return nil
}

// changeIndent сдвигает отступ блоков выделения на шаг. Отрицательный шаг
// уменьшает отступ до нуля, нулевой отступ из карты стилей удаляется.
func (e *Engine) changeIndent(c *Context, stepPx int) error {
	blocks := e.targetBlocks(c.Sel)
	if len(blocks) == 0 {
		c.NoChange()
		return nil
	}
	changed := false
	for _, b := range blocks {
		cur := parsePx(b.Style("margin-left"))
		next := cur + stepPx
		if next < 0 {
			next = 0
		}
		if next == cur {
			continue
		}
		changed = true
		if next == 0 {
			b.RemoveStyle("margin-left")
		} else {
			b.SetStyle("margin-left", strconv.Itoa(next)+"px")
		}
	}
	if !changed {
		c.NoChange()
	}
	return nil
}

func parsePx(v string) int {
	v = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "px"))
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0
	}
	return int(f)
}
