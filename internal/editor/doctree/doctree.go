// Пакет реализует дерево rich-text документа: блочные и строчные ноды с атрибутами и inline-стилями.
// Дерево является единственным представлением редактируемого контента; все команды редактора работают с ним напрямую.
//
// Основные возможности:
//   - Типизированные ноды (параграфы, заголовки, списки, таблицы, текстовые прогоны, форматирующие обертки).
//   - Карта стилей (property -> value) и карта атрибутов на каждой ноде.
//   - Мутаторы с поддержанием родительских ссылок (AppendChild, InsertBefore, RemoveChild и др.).
//   - Глубокое клонирование с сохранением ID нод для адресуемости снапшотов истории.
//   - Извлечение плоского текста документа.
package doctree

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/gofrs/uuid"
)

// Kind - вид ноды, совпадает с HTML-тегом, которым нода сериализуется.
type Kind string

const (
	Root       Kind = "body"
	Paragraph  Kind = "p"
	Heading1   Kind = "h1"
	Heading2   Kind = "h2"
	Heading3   Kind = "h3"
	Heading4   Kind = "h4"
	Heading5   Kind = "h5"
	Heading6   Kind = "h6"
	BulletList Kind = "ul"
	NumberList Kind = "ol"
	ListItem   Kind = "li"
	Blockquote Kind = "blockquote"
	Table      Kind = "table"
	TableRow   Kind = "tr"
	TableCell  Kind = "td"
	TableHead  Kind = "th"
	Pre        Kind = "pre"
	Rule       Kind = "hr"
	Div        Kind = "div"

	Text        Kind = "#text"
	LineBreak   Kind = "br"
	Bold        Kind = "b"
	Italic      Kind = "i"
	Underline   Kind = "u"
	Strike      Kind = "s"
	Subscript   Kind = "sub"
	Superscript Kind = "sup"
	Span        Kind = "span"
	Anchor      Kind = "a"
	Image       Kind = "img"
	Video       Kind = "iframe"
)

var blockKinds = map[Kind]bool{
	Paragraph: true, Heading1: true, Heading2: true, Heading3: true,
	Heading4: true, Heading5: true, Heading6: true,
	BulletList: true, NumberList: true, ListItem: true,
	Blockquote: true, Table: true, TableRow: true, TableCell: true,
	TableHead: true, Pre: true, Rule: true, Div: true,
}

var headingKinds = map[Kind]bool{
	Heading1: true, Heading2: true, Heading3: true,
	Heading4: true, Heading5: true, Heading6: true,
}

// Форматирующие строчные обертки, переключаемые toggle-командами.
var markKinds = map[Kind]bool{
	Bold: true, Italic: true, Underline: true, Strike: true,
	Subscript: true, Superscript: true,
}

func (k Kind) IsBlock() bool   { return blockKinds[k] }
func (k Kind) IsHeading() bool { return headingKinds[k] }
func (k Kind) IsMark() bool    { return markKinds[k] }

// Node - нода дерева документа. Text заполнен только для нод вида Text.
type Node struct {
	ID     uuid.UUID
	Kind   Kind
	Text   string
	Attrs  map[string]string
	Styles map[string]string

	parent   *Node
	children []*Node
}

// NewNode создает пустую ноду указанного вида с новым ID.
func NewNode(kind Kind) *Node {
	return &Node{
		ID:   uuid.Must(uuid.NewV4()),
		Kind: kind,
	}
}

// NewText создает текстовый прогон.
func NewText(text string) *Node {
	n := NewNode(Text)
	n.Text = text
	return n
}

func (n *Node) Parent() *Node     { return n.parent }
func (n *Node) Children() []*Node { return n.children }
func (n *Node) ChildCount() int   { return len(n.children) }

func (n *Node) FirstChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

func (n *Node) LastChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[len(n.children)-1]
}

// Index возвращает позицию ноды среди детей родителя, -1 для корня.
func (n *Node) Index() int {
	if n.parent == nil {
		return -1
	}
	for i, c := range n.parent.children {
		if c == n {
			return i
		}
	}
	return -1
}

func (n *Node) NextSibling() *Node {
	i := n.Index()
	if i < 0 || i+1 >= len(n.parent.children) {
		return nil
	}
	return n.parent.children[i+1]
}

func (n *Node) PrevSibling() *Node {
	i := n.Index()
	if i <= 0 {
		return nil
	}
	return n.parent.children[i-1]
}

func (n *Node) AppendChild(c *Node) {
	c.Detach()
	c.parent = n
	n.children = append(n.children, c)
}

func (n *Node) InsertChildAt(i int, c *Node) {
	c.Detach()
	if i < 0 {
		i = 0
	}
	if i > len(n.children) {
		i = len(n.children)
	}
	c.parent = n
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = c
}

// InsertBefore вставляет c перед ref среди детей n.
func (n *Node) InsertBefore(c, ref *Node) {
	n.InsertChildAt(ref.Index(), c)
}

// InsertAfter вставляет c сразу после ref среди детей n.
func (n *Node) InsertAfter(c, ref *Node) {
	n.InsertChildAt(ref.Index()+1, c)
}

func (n *Node) RemoveChild(c *Node) {
	i := c.Index()
	if i < 0 || c.parent != n {
		return
	}
	n.children = append(n.children[:i], n.children[i+1:]...)
	c.parent = nil
}

// ReplaceChild ставит newChild на место oldChild.
func (n *Node) ReplaceChild(oldChild, newChild *Node) {
	i := oldChild.Index()
	if i < 0 || oldChild.parent != n {
		return
	}
	newChild.Detach()
	newChild.parent = n
	n.children[i] = newChild
	oldChild.parent = nil
}

// Detach отцепляет ноду от родителя, если он есть.
func (n *Node) Detach() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
}

func (n *Node) Attr(key string) string {
	return n.Attrs[key]
}

func (n *Node) SetAttr(key, value string) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[key] = value
}

func (n *Node) Style(prop string) string {
	return n.Styles[prop]
}

func (n *Node) SetStyle(prop, value string) {
	if n.Styles == nil {
		n.Styles = make(map[string]string)
	}
	n.Styles[prop] = value
}

func (n *Node) RemoveStyle(prop string) {
	delete(n.Styles, prop)
}

// Clone делает глубокую копию поддерева. ID нод сохраняются: снапшоты истории
// остаются адресуемыми для сохраненных позиций курсора.
func (n *Node) Clone() *Node {
	c := &Node{
		ID:   n.ID,
		Kind: n.Kind,
		Text: n.Text,
	}
	if n.Attrs != nil {
		c.Attrs = make(map[string]string, len(n.Attrs))
		for k, v := range n.Attrs {
			c.Attrs[k] = v
		}
	}
	if n.Styles != nil {
		c.Styles = make(map[string]string, len(n.Styles))
		for k, v := range n.Styles {
			c.Styles[k] = v
		}
	}
	for _, child := range n.children {
		c.AppendChild(child.Clone())
	}
	return c
}

// Walk обходит поддерево в порядке документа. Если f возвращает true,
// потомки текущей ноды не посещаются.
func Walk(n *Node, f func(*Node) bool) {
	if f(n) {
		return
	}
	// f может менять детей; обходим по снимку
	children := make([]*Node, len(n.children))
	copy(children, n.children)
	for _, c := range children {
		Walk(c, f)
	}
}

// Contains сообщает, лежит ли other в поддереве n (включая n == other).
func (n *Node) Contains(other *Node) bool {
	for p := other; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// FindByID ищет ноду по ID в поддереве root.
func FindByID(root *Node, id uuid.UUID) *Node {
	var found *Node
	Walk(root, func(n *Node) bool {
		if n.ID == id {
			found = n
			return true
		}
		return false
	})
	return found
}

// Ancestor возвращает ближайшего предка (включая саму ноду), удовлетворяющего pred.
func (n *Node) Ancestor(pred func(*Node) bool) *Node {
	for p := n; p != nil; p = p.parent {
		if pred(p) {
			return p
		}
	}
	return nil
}

// AncestorOfKind возвращает ближайшего предка указанного вида.
func (n *Node) AncestorOfKind(kind Kind) *Node {
	return n.Ancestor(func(p *Node) bool { return p.Kind == kind })
}

// Block возвращает ближайший блочный предок ноды (включая саму ноду).
func (n *Node) Block() *Node {
	return n.Ancestor(func(p *Node) bool { return p.Kind.IsBlock() })
}

// PlainText извлекает текст поддерева. Блоки разделяются переносом строки,
// <br> дает перенос внутри блока.
func (n *Node) PlainText() string {
	var sb strings.Builder
	writePlainText(n, &sb)
	return strings.TrimRight(sb.String(), "\n")
}

func writePlainText(n *Node, sb *strings.Builder) {
	switch n.Kind {
	case Text:
		sb.WriteString(n.Text)
		return
	case LineBreak:
		sb.WriteByte('\n')
		return
	case Image, Video, Rule:
		return
	}
	for _, c := range n.children {
		writePlainText(c, sb)
	}
	if n.Kind.IsBlock() && n.Kind != TableRow {
		sb.WriteByte('\n')
	}
}

// TextLen возвращает длину плоского текста поддерева в рунах.
func (n *Node) TextLen() int {
	return utf8.RuneCountInString(n.PlainText())
}

// HasContent сообщает, есть ли в поддереве видимое содержимое:
// непробельный текст либо атомарные ноды (картинки, таблицы, разделители).
func (n *Node) HasContent() bool {
	has := false
	Walk(n, func(c *Node) bool {
		switch c.Kind {
		case Text:
			if strings.TrimSpace(c.Text) != "" {
				has = true
				return true
			}
		case Image, Video, Rule, Table, LineBreak:
			has = true
			return true
		}
		return false
	})
	return has
}

// SplitText разрезает текстовую ноду по руне off и возвращает вторую половину,
// вставленную следом за первой. При off на границе возвращается исходная нода
// (off == 0) либо nil (off в конце).
func SplitText(t *Node, off int) *Node {
	if t.Kind != Text || t.parent == nil {
		return nil
	}
	runes := []rune(t.Text)
	if off <= 0 {
		return t
	}
	if off >= len(runes) {
		return nil
	}
	rest := NewText(string(runes[off:]))
	t.Text = string(runes[:off])
	t.parent.InsertAfter(rest, t)
	return rest
}

// NewDocument возвращает минимальный пустой документ: <p><br></p>.
func NewDocument() *Node {
	root := NewNode(Root)
	p := NewNode(Paragraph)
	p.AppendChild(NewNode(LineBreak))
	root.AppendChild(p)
	return root
}

// styleString сериализует карту стилей в атрибут style с детерминированным
// порядком свойств.
func styleString(styles map[string]string) string {
	if len(styles) == 0 {
		return ""
	}
	keys := make([]string, 0, len(styles))
	for k := range styles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+styles[k])
	}
	return strings.Join(parts, "; ")
}
