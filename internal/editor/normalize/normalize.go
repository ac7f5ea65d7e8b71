// Пакет восстанавливает структурные инварианты дерева документа после мутаций.
// Вызывается движком команд после каждого изменения; проход идемпотентен —
// повторный запуск на уже нормализованном дереве ничего не меняет.
//
// Основные возможности:
//   - Подъем преформатированных блоков из параграфов, div и заголовков.
//   - Удаление пустых параграфов и div, оставшихся после переносов нод.
//   - Подавление font-size у заголовков и их строчных потомков.
package normalize

import (
	"github.com/aisa-it/aiplan-editor/internal/editor/doctree"
)

// Normalize приводит дерево к валидной форме. Нарушения чинятся на месте и
// не всплывают к вызывающему как ошибки.
func Normalize(root *doctree.Node) {
	for hoistPre(root) {
	}
	dropEmptyBlocks(root)
	stripHeadingFontSize(root)
}

// hoistPre поднимает <pre>, оказавшийся внутри параграфа, div или заголовка.
// Возвращает true, если что-то было перемещено (возможны каскадные нарушения).
func hoistPre(root *doctree.Node) bool {
	var pre *doctree.Node
	doctree.Walk(root, func(n *doctree.Node) bool {
		if pre != nil {
			return true
		}
		if n.Kind == doctree.Pre && n.Parent() != nil && invalidPreParent(n.Parent().Kind) {
			pre = n
			return true
		}
		return false
	})
	if pre == nil {
		return false
	}

	parent := pre.Parent()
	grand := parent.Parent()
	if grand == nil {
		return false
	}

	if parent.ChildCount() == 1 {
		// pre - единственное содержимое: родитель замещается им
		parent.RemoveChild(pre)
		grand.ReplaceChild(parent, pre)
	} else {
		parent.RemoveChild(pre)
		grand.InsertAfter(pre, parent)
	}
	return true
}

func invalidPreParent(k doctree.Kind) bool {
	return k == doctree.Paragraph || k == doctree.Div || k.IsHeading()
}

// dropEmptyBlocks удаляет параграфы и div без содержимого. Плейсхолдеры
// вида <p><br></p> содержимым считаются и не трогаются.
func dropEmptyBlocks(root *doctree.Node) {
	var empty []*doctree.Node
	doctree.Walk(root, func(n *doctree.Node) bool {
		if (n.Kind == doctree.Paragraph || n.Kind == doctree.Div) && !n.HasContent() {
			empty = append(empty, n)
			return true
		}
		return false
	})
	for _, n := range empty {
		n.Detach()
	}
}

// stripHeadingFontSize убирает явный font-size с заголовков и всех их потомков.
// Заголовки рендерятся семантическим размером; font-family и color сохраняются.
func stripHeadingFontSize(root *doctree.Node) {
	doctree.Walk(root, func(n *doctree.Node) bool {
		if !n.Kind.IsHeading() {
			return false
		}
		doctree.Walk(n, func(c *doctree.Node) bool {
			c.RemoveStyle("font-size")
			return false
		})
		return true
	})
}
