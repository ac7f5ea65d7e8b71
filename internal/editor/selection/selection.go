// Пакет отслеживает позицию пользователя в документе: пару позиций anchor/focus,
// указывающих в ноды дерева. Трекер хранит слабые ссылки в дерево — перед каждым
// использованием позиция проверяется на достижимость от корня, устаревшие позиции
// никогда не разыменовываются вслепую.
//
// Основные возможности:
//   - Сохранение и восстановление выделения по ID нод (переживает мутации дерева).
//   - Явная деградация: восстановление устаревшего выделения возвращает ErrStaleSelection.
//   - Посев выделения в начало первой содержательной ноды нового документа.
//   - Перепривязка выделения к новому дереву после undo/redo.
package selection

import (
	"log/slog"

	"github.com/gofrs/uuid"

	"github.com/aisa-it/aiplan-editor/internal/editor/doctree"
	"github.com/aisa-it/aiplan-editor/internal/editor/ederrors"
)

// Position - точка в дереве: для текстовых нод Offset считается в рунах,
// для элементов Offset является индексом ребенка.
type Position struct {
	Node   *doctree.Node
	Offset int
}

type Selection struct {
	Anchor Position
	Focus  Position
}

// Collapsed сообщает, является ли выделение курсором без диапазона.
func (s Selection) Collapsed() bool {
	return s.Anchor.Node == s.Focus.Node && s.Anchor.Offset == s.Focus.Offset
}

// Equal сообщает, совпадают ли выделения по нодам и смещениям.
func (s Selection) Equal(o Selection) bool {
	return s.Anchor == o.Anchor && s.Focus == o.Focus
}

// Saved - сериализуемое выделение, адресующее ноды по ID.
type Saved struct {
	AnchorID     uuid.UUID
	AnchorOffset int
	FocusID      uuid.UUID
	FocusOffset  int
}

// Provider - внешний источник "живого" выделения (хост-окружение).
// ok == false означает, что у хоста выделения нет (фокус ушел с документа).
type Provider interface {
	CurrentSelection(root *doctree.Node) (Selection, bool)
}

// Tracker хранит текущее и последнее сохраненное выделение для одного документа.
type Tracker struct {
	root    *doctree.Node
	current *Selection
	saved   *Saved
}

func NewTracker(root *doctree.Node) *Tracker {
	t := &Tracker{root: root}
	t.SeedDefault()
	return t
}

func (t *Tracker) Root() *doctree.Node { return t.root }

// SeedDefault ставит курсор в начало первой содержательной ноды, чтобы самая
// первая команда (до любого клика пользователя) имела определенную цель.
func (t *Tracker) SeedDefault() {
	pos := startPosition(t.root)
	t.current = &Selection{Anchor: pos, Focus: pos}
}

func startPosition(root *doctree.Node) Position {
	var first *doctree.Node
	doctree.Walk(root, func(n *doctree.Node) bool {
		if first != nil {
			return true
		}
		if n.Kind == doctree.Text {
			first = n
			return true
		}
		return false
	})
	if first != nil {
		return Position{Node: first, Offset: 0}
	}
	if fc := root.FirstChild(); fc != nil {
		return Position{Node: fc, Offset: 0}
	}
	return Position{Node: root, Offset: 0}
}

// Current возвращает текущее выделение, если обе позиции все еще достижимы от корня.
func (t *Tracker) Current() (Selection, bool) {
	if t.current == nil {
		return Selection{}, false
	}
	if !t.valid(t.current.Anchor) || !t.valid(t.current.Focus) {
		slog.Debug("Current selection points into removed nodes, dropped")
		t.current = nil
		return Selection{}, false
	}
	return *t.current, true
}

// Set устанавливает выделение. Позиции вне живого дерева отклоняются.
func (t *Tracker) Set(sel Selection) error {
	if !t.valid(sel.Anchor) || !t.valid(sel.Focus) {
		return ederrors.ErrStaleSelection
	}
	clamp(&sel.Anchor)
	clamp(&sel.Focus)
	t.current = &sel
	return nil
}

// Save снимает сохраняемую копию текущего выделения. Вызывается перед любой
// потерей фокуса (клики по тулбару, меню, диалогам).
func (t *Tracker) Save() Saved {
	sel, ok := t.Current()
	if !ok {
		pos := startPosition(t.root)
		sel = Selection{Anchor: pos, Focus: pos}
	}
	s := Saved{
		AnchorID:     sel.Anchor.Node.ID,
		AnchorOffset: sel.Anchor.Offset,
		FocusID:      sel.Focus.Node.ID,
		FocusOffset:  sel.Focus.Offset,
	}
	t.saved = &s
	return s
}

// LastSaved возвращает последнее сохраненное выделение.
func (t *Tracker) LastSaved() (Saved, bool) {
	if t.saved == nil {
		return Saved{}, false
	}
	return *t.saved, true
}

// Restore восстанавливает сохраненное выделение. Если ноды уже удалены из дерева,
// возвращается ErrStaleSelection; вызывающий обязан трактовать это как "нет выделения".
func (t *Tracker) Restore(s Saved) error {
	anchor := doctree.FindByID(t.root, s.AnchorID)
	focus := doctree.FindByID(t.root, s.FocusID)
	if anchor == nil || focus == nil {
		return ederrors.ErrStaleSelection
	}
	sel := Selection{
		Anchor: Position{Node: anchor, Offset: s.AnchorOffset},
		Focus:  Position{Node: focus, Offset: s.FocusOffset},
	}
	clamp(&sel.Anchor)
	clamp(&sel.Focus)
	t.current = &sel
	return nil
}

// Rebind переключает трекер на новое дерево (undo/redo подменяет документ целиком).
// Выделение переносится по ID нод; если ноды в новом дереве нет, курсор сеется заново.
func (t *Tracker) Rebind(root *doctree.Node) {
	old := t.current
	t.root = root
	if old != nil {
		anchor := doctree.FindByID(root, old.Anchor.Node.ID)
		focus := doctree.FindByID(root, old.Focus.Node.ID)
		if anchor != nil && focus != nil {
			sel := Selection{
				Anchor: Position{Node: anchor, Offset: old.Anchor.Offset},
				Focus:  Position{Node: focus, Offset: old.Focus.Offset},
			}
			clamp(&sel.Anchor)
			clamp(&sel.Focus)
			t.current = &sel
			return
		}
	}
	t.SeedDefault()
}

func (t *Tracker) valid(p Position) bool {
	return p.Node != nil && t.root.Contains(p.Node)
}

func clamp(p *Position) {
	if p.Offset < 0 {
		p.Offset = 0
	}
	max := p.Node.ChildCount()
	if p.Node.Kind == doctree.Text {
		max = len([]rune(p.Node.Text))
	}
	if p.Offset > max {
		p.Offset = max
	}
}

// Ordered возвращает позиции выделения в порядке документа (start, end).
func Ordered(root *doctree.Node, sel Selection) (Position, Position) {
	if Compare(sel.Anchor, sel.Focus) <= 0 {
		return sel.Anchor, sel.Focus
	}
	return sel.Focus, sel.Anchor
}

// Compare сравнивает две позиции в порядке документа. Позиция сравнивается
// как путь индексов от корня с добавленным смещением: позиция "перед ребенком k"
// предшествует любой позиции внутри этого ребенка.
func Compare(a, b Position) int {
	pa := posPath(a)
	pb := posPath(b)
	for i := 0; i < len(pa) && i < len(pb); i++ {
		if pa[i] != pb[i] {
			if pa[i] < pb[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(pa) < len(pb):
		return -1
	case len(pa) > len(pb):
		return 1
	}
	return 0
}

func posPath(p Position) []int {
	return append(nodePath(p.Node), p.Offset)
}

func nodePath(n *doctree.Node) []int {
	var p []int
	for c := n; c.Parent() != nil; c = c.Parent() {
		p = append(p, c.Index())
	}
	// разворот: от корня к ноде
	for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
		p[i], p[j] = p[j], p[i]
	}
	return p
}
