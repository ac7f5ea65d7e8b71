// Команды вставки: HTML-фрагменты, ссылки, изображения, видео и таблицы,
// а также структурные операции над таблицей по текущему выделению.
package engine

import (
	"strconv"
	"strings"

	"github.com/aisa-it/aiplan-editor/internal/editor/doctree"
	"github.com/aisa-it/aiplan-editor/internal/editor/ederrors"
	"github.com/aisa-it/aiplan-editor/internal/editor/paste"
	"github.com/aisa-it/aiplan-editor/internal/editor/selection"
	tableeditor "github.com/aisa-it/aiplan-editor/internal/editor/table-editor"
)

// insertHTML вставляет санитизированный HTML-фрагмент в выделение.
func (e *Engine) insertHTML(c *Context, raw string) error {
	nodes, err := paste.FormattedFragment(raw)
	if err != nil {
		return err
	}
	sel := c.Sel
	if !sel.Collapsed() {
		sel = e.deleteRange(sel)
	}
	e.insertFragmentAt(sel.Anchor, nodes)
	return nil
}

// insertLink оборачивает выделенный текст в ссылку; на схлопнутом курсоре
// вставляется ссылка с URL в качестве текста.
func (e *Engine) insertLink(c *Context, url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		c.NoChange()
		return nil
	}

	if c.Sel.Collapsed() {
		a := doctree.NewNode(doctree.Anchor)
		a.SetAttr("href", url)
		a.AppendChild(doctree.NewText(url))
		e.insertFragmentAt(c.Sel.Anchor, []*doctree.Node{a})
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
		a := doctree.NewNode(doctree.Anchor)
		a.SetAttr("href", url)
		wrapInline(t, a)
	}
	e.selectTexts(texts)
	return nil
}

// insertImage вставляет изображение по URL в выделение.
func (e *Engine) insertImage(c *Context, url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		c.NoChange()
		return nil
	}
	img := doctree.NewNode(doctree.Image)
	img.SetAttr("src", url)
	e.insertFragmentAt(c.Sel.Anchor, []*doctree.Node{img})
	return nil
}

// insertVideo вставляет видео-фрейм по URL в выделение.
func (e *Engine) insertVideo(c *Context, url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		c.NoChange()
		return nil
	}
	v := doctree.NewNode(doctree.Video)
	v.SetAttr("src", url)
	v.SetAttr("frameborder", "0")
	v.SetAttr("allowfullscreen", "true")
	e.insertFragmentAt(c.Sel.Anchor, []*doctree.Node{v})
	return nil
}

// insertTable вставляет таблицу после блока с курсором. Значение команды -
// размер "RxC" (например "3x4"); без значения берутся размеры из конфигурации.
// Курсор встает в первую ячейку.
func (e *Engine) insertTable(c *Context, value string) error {
	rows, cols := e.cfg.Table.Rows, e.cfg.Table.Cols
	if r, cl, ok := parseTableSize(value); ok {
		rows, cols = r, cl
	}

	table := tableeditor.New(rows, cols, e.cfg.Table)
	e.insertFragmentAt(c.Sel.Anchor, []*doctree.Node{table})

	if firstRow := table.FirstChild(); firstRow != nil {
		if firstCell := firstRow.FirstChild(); firstCell != nil {
			e.setCaret(selection.Position{Node: firstCell, Offset: 0})
		}
	}
	return nil
}

func parseTableSize(value string) (rows, cols int, ok bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	parts := strings.Split(value, "x")
	if len(parts) != 2 {
		return 0, 0, false
	}
	r, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	c, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || r < 1 || c < 1 {
		return 0, 0, false
	}
	return r, c, true
}

// tableContext возвращает ячейку и таблицу для якоря выделения.
// Вне таблицы возвращается ErrTableContextRequired.
func tableContext(sel selection.Selection) (cell, table *doctree.Node, err error) {
	cell = tableeditor.CellFor(sel.Anchor.Node)
	if cell == nil {
		return nil, nil, ederrors.ErrTableContextRequired
	}
	table = tableeditor.TableFor(cell)
	if table == nil {
		return nil, nil, ederrors.ErrTableContextRequired
	}
	return cell, table, nil
}

func (e *Engine) tableInsertRow(c *Context, after bool) error {
	cell, table, err := tableContext(c.Sel)
	if err != nil {
		return err
	}
	return tableeditor.InsertRow(table, after, cell.Parent(), e.cfg.Table)
}

func (e *Engine) tableInsertColumn(c *Context, after bool) error {
	cell, table, err := tableContext(c.Sel)
	if err != nil {
		return err
	}
	return tableeditor.InsertColumn(table, after, cell, e.cfg.Table)
}

func (e *Engine) tableDeleteRow(c *Context) error {
	cell, _, err := tableContext(c.Sel)
	if err != nil {
		return err
	}
	return tableeditor.DeleteRow(cell.Parent())
}

func (e *Engine) tableDeleteColumn(c *Context) error {
	cell, table, err := tableContext(c.Sel)
	if err != nil {
		return err
	}
	return tableeditor.DeleteColumn(table, tableeditor.CellIndex(cell))
}

func (e *Engine) tableDelete(c *Context) error {
	_, table, err := tableContext(c.Sel)
	if err != nil {
		return err
	}
	tableeditor.Delete(table)
	return nil
}
