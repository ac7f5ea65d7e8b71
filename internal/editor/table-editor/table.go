// Пакет реализует структурные операции над таблицами документа: вставку и удаление
// строк и столбцов, удаление таблицы и поиск ячейки/таблицы для позиции курсора.
// Модель столбцов фиксированная: параллельный список ширин в процентах хранится
// на ноде таблицы и пересчитывается при каждом изменении числа столбцов.
//
// Основные возможности:
//   - Новые строки/ячейки - структурные клоны соседних с пустым содержимым и стилем ячейки по умолчанию.
//   - Равномерное перераспределение ширин столбцов (100 / число столбцов).
//   - Запрет операций, оставляющих таблицу без строк или столбцов.
package tableeditor

import (
	"strconv"
	"strings"

	"github.com/aisa-it/aiplan-editor/internal/editor/config"
	"github.com/aisa-it/aiplan-editor/internal/editor/doctree"
	"github.com/aisa-it/aiplan-editor/internal/editor/ederrors"
)

const colWidthsAttr = "data-colwidths"

// New создает таблицу rows x cols с ячейками в стиле по умолчанию.
func New(rows, cols int, def config.TableDefaults) *doctree.Node {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	table := doctree.NewNode(doctree.Table)
	for r := 0; r < rows; r++ {
		row := doctree.NewNode(doctree.TableRow)
		for c := 0; c < cols; c++ {
			row.AppendChild(newCell(doctree.TableCell, def))
		}
		table.AppendChild(row)
	}
	recalcWidths(table)
	return table
}

// newCell делает пустую ячейку: плейсхолдер <br> и стиль ячейки из конфигурации.
// Никакое форматирование соседних ячеек не наследуется.
func newCell(kind doctree.Kind, def config.TableDefaults) *doctree.Node {
	cell := doctree.NewNode(kind)
	if def.Border != "" {
		cell.SetStyle("border", def.Border)
	}
	if def.Padding != "" {
		cell.SetStyle("padding", def.Padding)
	}
	if def.CellFontFamily != "" {
		cell.SetStyle("font-family", def.CellFontFamily)
	}
	if def.CellFontSize != "" {
		cell.SetStyle("font-size", def.CellFontSize)
	}
	cell.AppendChild(doctree.NewNode(doctree.LineBreak))
	return cell
}

// Rows возвращает строки таблицы.
func Rows(table *doctree.Node) []*doctree.Node {
	var rows []*doctree.Node
	for _, c := range table.Children() {
		if c.Kind == doctree.TableRow {
			rows = append(rows, c)
		}
	}
	return rows
}

// Cells возвращает ячейки строки.
func Cells(row *doctree.Node) []*doctree.Node {
	var cells []*doctree.Node
	for _, c := range row.Children() {
		if c.Kind == doctree.TableCell || c.Kind == doctree.TableHead {
			cells = append(cells, c)
		}
	}
	return cells
}

// ColCount возвращает число столбцов (по первой строке).
func ColCount(table *doctree.Node) int {
	rows := Rows(table)
	if len(rows) == 0 {
		return 0
	}
	return len(Cells(rows[0]))
}

// InsertRow вставляет новую строку до или после refRow. Новая строка - структурный
// клон refRow: те же виды ячеек, но содержимое и стили сброшены к умолчаниям.
func InsertRow(table *doctree.Node, after bool, refRow *doctree.Node, def config.TableDefaults) error {
	if refRow == nil || refRow.Parent() != table {
		return ederrors.ErrTableContextRequired
	}
	row := doctree.NewNode(doctree.TableRow)
	for _, cell := range Cells(refRow) {
		row.AppendChild(newCell(cell.Kind, def))
	}
	if after {
		table.InsertAfter(row, refRow)
	} else {
		table.InsertBefore(row, refRow)
	}
	return nil
}

// InsertColumn вставляет столбец до или после столбца, содержащего refCell,
// во всех строках таблицы, и перераспределяет ширины.
func InsertColumn(table *doctree.Node, after bool, refCell *doctree.Node, def config.TableDefaults) error {
	row := refCell.Parent()
	if row == nil || row.Parent() != table {
		return ederrors.ErrTableContextRequired
	}
	colIdx := cellIndex(row, refCell)
	if colIdx < 0 {
		return ederrors.ErrTableContextRequired
	}
	insertAt := colIdx
	if after {
		insertAt++
	}
	for _, r := range Rows(table) {
		cells := Cells(r)
		kind := doctree.TableCell
		// вид ячейки берем от соседа по строке (th в строках заголовка)
		ref := colIdx
		if ref >= len(cells) {
			ref = len(cells) - 1
		}
		if ref >= 0 {
			kind = cells[ref].Kind
		}
		cell := newCell(kind, def)
		if insertAt >= len(cells) {
			r.AppendChild(cell)
		} else {
			r.InsertBefore(cell, cells[insertAt])
		}
	}
	recalcWidths(table)
	return nil
}

// DeleteRow удаляет строку. Последняя строка таблицы не удаляется.
func DeleteRow(row *doctree.Node) error {
	table := row.Parent()
	if table == nil || table.Kind != doctree.Table {
		return ederrors.ErrTableContextRequired
	}
	if len(Rows(table)) <= 1 {
		return ederrors.ErrLastRow
	}
	row.Detach()
	return nil
}

// DeleteColumn удаляет столбец по индексу во всех строках. Последний столбец
// не удаляется. Ширины перераспределяются.
func DeleteColumn(table *doctree.Node, colIdx int) error {
	if ColCount(table) <= 1 {
		return ederrors.ErrLastColumn
	}
	for _, r := range Rows(table) {
		cells := Cells(r)
		if colIdx >= 0 && colIdx < len(cells) {
			cells[colIdx].Detach()
		}
	}
	recalcWidths(table)
	return nil
}

// Delete удаляет таблицу целиком из родителя.
func Delete(table *doctree.Node) {
	table.Detach()
}

// CellFor возвращает ближайшую охватывающую ячейку для ноды, либо nil.
func CellFor(n *doctree.Node) *doctree.Node {
	return n.Ancestor(func(p *doctree.Node) bool {
		return p.Kind == doctree.TableCell || p.Kind == doctree.TableHead
	})
}

// TableFor возвращает ближайшую охватывающую таблицу для ноды, либо nil.
func TableFor(n *doctree.Node) *doctree.Node {
	return n.AncestorOfKind(doctree.Table)
}

// CellIndex возвращает индекс столбца ячейки в ее строке.
func CellIndex(cell *doctree.Node) int {
	row := cell.Parent()
	if row == nil {
		return -1
	}
	return cellIndex(row, cell)
}

func cellIndex(row, cell *doctree.Node) int {
	for i, c := range Cells(row) {
		if c == cell {
			return i
		}
	}
	return -1
}

// ColWidths возвращает список ширин столбцов в процентах.
func ColWidths(table *doctree.Node) []float64 {
	raw := table.Attr(colWidthsAttr)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	widths := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			continue
		}
		widths = append(widths, f)
	}
	return widths
}

// recalcWidths пересчитывает ширины равномерно: 100 / число столбцов на столбец.
func recalcWidths(table *doctree.Node) {
	cols := ColCount(table)
	if cols == 0 {
		return
	}
	w := strconv.FormatFloat(100/float64(cols), 'f', 2, 64)
	parts := make([]string, cols)
	for i := range parts {
		parts[i] = w
	}
	table.SetAttr(colWidthsAttr, strings.Join(parts, ","))
}
